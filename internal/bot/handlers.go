package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"referral-contest-bot/internal/service"
	"referral-contest-bot/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func (b *Bot) handleMessage(ctx context.Context, m *tgbotapi.Message) error {
	if len(m.NewChatMembers) > 0 {
		return b.handleNewMembers(ctx, m)
	}
	if m.Contact != nil {
		return b.handleContact(ctx, m)
	}

	if !m.Chat.IsPrivate() {
		return nil
	}

	if m.IsCommand() {
		switch m.Command() {
		case "start":
			return b.handleStart(ctx, m)
		case "help":
			return b.reply(m.Chat.ID, helpMessage())
		case "admin":
			return b.handleAdminMenu(ctx, m)
		case "participants":
			return b.handleParticipants(ctx, m)
		case "setwinner":
			return b.handleDraw(ctx, m)
		case "setdate":
			return b.handleSetDate(ctx, m)
		case "addadmin":
			return b.handleAddAdmin(ctx, m)
		case "addreferral":
			return b.handleAddReferral(ctx, m)
		case "winners":
			return b.handleWinners(ctx, m)
		}
		return b.reply(m.Chat.ID, helpMessage())
	}

	// Plain text falls through to the main menu.
	return b.replyWithKeyboard(m.Chat.ID, welcomeMessage(), mainMenuKeyboard())
}

func (b *Bot) handleStart(ctx context.Context, m *tgbotapi.Message) error {
	log := logger.Logger()
	from := m.From

	user, err := b.referrals.Register(ctx, from.ID, from.UserName, from.FirstName)
	if err != nil {
		return err
	}

	if code := strings.TrimSpace(m.CommandArguments()); code != "" {
		if !b.isGroupMember(from.ID) {
			if err := b.reply(m.Chat.ID, joinGroupFirstMessage(b.group)); err != nil {
				return err
			}
			return b.replyWithKeyboard(m.Chat.ID, welcomeMessage(), mainMenuKeyboard())
		}

		referrer, err := b.referrals.Attribute(ctx, code, from.ID)
		switch {
		case err == nil:
			if nErr := b.notify(referrer.TelegramID, referralSuccessMessage(user.FirstName)); nErr != nil {
				log.Warn("failed to notify referrer",
					zap.Int64("referrer_id", referrer.TelegramID), zap.Error(nErr))
			}
		case errors.Is(err, service.ErrUnknownReferralCode),
			errors.Is(err, service.ErrSelfReferral),
			errors.Is(err, service.ErrAlreadyAttributed):
			// Invalid, own or already-used code: the start flow continues
			// silently.
			log.Info("referral code not attributed",
				zap.String("code", code), zap.Int64("user_id", from.ID), zap.Error(err))
		default:
			return err
		}
	}

	return b.replyWithKeyboard(m.Chat.ID, welcomeMessage(), mainMenuKeyboard())
}

// handleNewMembers feeds code-less group joins into the pending-marker
// matching path.
func (b *Bot) handleNewMembers(ctx context.Context, m *tgbotapi.Message) error {
	log := logger.Logger()

	for _, member := range m.NewChatMembers {
		if member.IsBot {
			continue
		}

		if _, err := b.referrals.Register(ctx, member.ID, member.UserName, member.FirstName); err != nil {
			log.Error("failed to register joining member",
				zap.Int64("user_id", member.ID), zap.Error(err))
			continue
		}

		referrer, attributed, err := b.referrals.AttributeGroupJoin(ctx, member.ID)
		if err != nil {
			log.Error("failed to attribute group join",
				zap.Int64("user_id", member.ID), zap.Error(err))
			continue
		}
		if !attributed {
			continue
		}

		log.Info("group join attributed",
			zap.Int64("referrer_id", referrer.TelegramID), zap.Int64("user_id", member.ID))

		if nErr := b.notify(referrer.TelegramID, referralSuccessMessage(member.FirstName)); nErr != nil {
			log.Warn("failed to notify referrer",
				zap.Int64("referrer_id", referrer.TelegramID), zap.Error(nErr))
		}
	}

	return nil
}

func (b *Bot) handleContact(ctx context.Context, m *tgbotapi.Message) error {
	if m.Contact.UserID != m.From.ID {
		// Only accept the sender's own contact card.
		return nil
	}

	err := b.referrals.SavePhone(ctx, m.From.ID, m.Contact.PhoneNumber)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return b.reply(m.Chat.ID, startFirstMessage)
		}
		return err
	}

	return b.reply(m.Chat.ID, phoneSavedMessage)
}

func (b *Bot) handleAdminMenu(ctx context.Context, m *tgbotapi.Message) error {
	if !b.admins.IsAdmin(ctx, m.From.ID) {
		return b.reply(m.Chat.ID, adminRejectionMessage)
	}
	return b.replyWithKeyboard(m.Chat.ID, adminMenuMessage, adminMenuKeyboard())
}

func (b *Bot) handleParticipants(ctx context.Context, m *tgbotapi.Message) error {
	if !b.admins.IsAdmin(ctx, m.From.ID) {
		return b.reply(m.Chat.ID, adminRejectionMessage)
	}

	participants, err := b.contest.Participants(ctx)
	if err != nil {
		return err
	}

	return b.reply(m.Chat.ID, participantsMessage(participants))
}

func (b *Bot) handleDraw(ctx context.Context, m *tgbotapi.Message) error {
	log := logger.Logger()

	if !b.admins.IsAdmin(ctx, m.From.ID) {
		return b.reply(m.Chat.ID, adminRejectionMessage)
	}

	result, err := b.contest.Draw(ctx)
	switch {
	case errors.Is(err, service.ErrNotEnoughParticipants):
		return b.reply(m.Chat.ID, notEnoughParticipantsMessage)
	case errors.Is(err, service.ErrDrawAlreadyCompleted):
		return b.reply(m.Chat.ID, drawCompletedMessage)
	case err != nil:
		return err
	}

	if err := b.reply(m.Chat.ID, drawResultMessage(result)); err != nil {
		return err
	}

	// Winner notifications are best-effort; a failed send never affects
	// the recorded outcome.
	if nErr := b.notify(result.FirstPlace.TelegramID, firstPrizeNotification); nErr != nil {
		log.Warn("failed to notify first place winner",
			zap.Int64("user_id", result.FirstPlace.TelegramID), zap.Error(nErr))
	}
	for _, w := range result.VoucherWinners {
		if nErr := b.notify(w.TelegramID, voucherPrizeNotification); nErr != nil {
			log.Warn("failed to notify voucher winner",
				zap.Int64("user_id", w.TelegramID), zap.Error(nErr))
		}
	}

	return nil
}

func (b *Bot) handleSetDate(ctx context.Context, m *tgbotapi.Message) error {
	if !b.admins.IsAdmin(ctx, m.From.ID) {
		return b.reply(m.Chat.ID, adminRejectionMessage)
	}

	date := strings.TrimSpace(m.CommandArguments())
	if date == "" {
		return b.reply(m.Chat.ID, setDateUsageMessage)
	}

	err := b.contest.SetContestDate(ctx, date)
	if err != nil {
		if errors.Is(err, service.ErrInvalidContestDate) {
			return b.reply(m.Chat.ID, setDateUsageMessage)
		}
		return err
	}

	return b.reply(m.Chat.ID, dateSetMessage(date))
}

func (b *Bot) handleAddAdmin(ctx context.Context, m *tgbotapi.Message) error {
	if !b.admins.IsAdmin(ctx, m.From.ID) {
		return b.reply(m.Chat.ID, adminRejectionMessage)
	}

	args := strings.Fields(m.CommandArguments())
	if len(args) == 0 {
		return b.reply(m.Chat.ID, addAdminUsageMessage)
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return b.reply(m.Chat.ID, invalidIdentifierMessage)
	}

	username := ""
	if len(args) > 1 {
		username = args[1]
	}

	if err := b.admins.AddAdmin(ctx, id, username); err != nil {
		return err
	}

	return b.reply(m.Chat.ID, adminAddedMessage(id))
}

func (b *Bot) handleAddReferral(ctx context.Context, m *tgbotapi.Message) error {
	if !b.admins.IsAdmin(ctx, m.From.ID) {
		return b.reply(m.Chat.ID, adminRejectionMessage)
	}

	args := strings.Fields(m.CommandArguments())
	if len(args) != 2 {
		return b.reply(m.Chat.ID, addReferralUsageMessage)
	}

	referrerID, err1 := strconv.ParseInt(args[0], 10, 64)
	referredID, err2 := strconv.ParseInt(args[1], 10, 64)
	if err1 != nil || err2 != nil {
		return b.reply(m.Chat.ID, invalidIdentifierMessage)
	}

	err := b.referrals.AttributeManual(ctx, referrerID, referredID)
	switch {
	case errors.Is(err, service.ErrSelfReferral):
		return b.reply(m.Chat.ID, selfReferralMessage)
	case errors.Is(err, service.ErrUserNotFound):
		return b.reply(m.Chat.ID, referrerNotFoundMessage)
	case errors.Is(err, service.ErrAlreadyAttributed):
		return b.reply(m.Chat.ID, alreadyAttributedMessage)
	case err != nil:
		return err
	}

	return b.reply(m.Chat.ID, referralRecordedMessage(referrerID, referredID))
}

func (b *Bot) handleWinners(ctx context.Context, m *tgbotapi.Message) error {
	if !b.admins.IsAdmin(ctx, m.From.ID) {
		return b.reply(m.Chat.ID, adminRejectionMessage)
	}

	winners, err := b.contest.Winners(ctx)
	if err != nil {
		return err
	}

	return b.reply(m.Chat.ID, winnersMessage(winners))
}
