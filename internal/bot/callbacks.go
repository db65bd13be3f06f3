package bot

import (
	"context"
	"errors"

	"referral-contest-bot/internal/service"
	"referral-contest-bot/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		logger.Logger().Warn("failed to answer callback", zap.Error(err))
	}

	userID := q.From.ID
	chatID := q.Message.Chat.ID
	messageID := q.Message.MessageID

	switch q.Data {
	case "my_results":
		stats, err := b.referrals.Stats(ctx, userID)
		if err != nil {
			return err
		}
		return b.edit(chatID, messageID, myResultsMessage(stats), backKeyboard())

	case "invite_friends":
		link, err := b.referrals.CreatePendingInvite(ctx, userID)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				return b.edit(chatID, messageID, startFirstMessage, backKeyboard())
			}
			return err
		}
		return b.edit(chatID, messageID, inviteFriendsMessage(link, b.threshold, b.group), inviteKeyboard(link))

	case "rules":
		settings, err := b.contest.Settings(ctx)
		if err != nil {
			return err
		}
		return b.edit(chatID, messageID, rulesMessage(settings.ContestDate, b.threshold, b.group), backKeyboard())

	case "back_to_menu":
		return b.edit(chatID, messageID, welcomeMessage(), mainMenuKeyboard())

	case "admin_participants":
		if !b.admins.IsAdmin(ctx, userID) {
			return b.edit(chatID, messageID, adminRejectionMessage, backKeyboard())
		}
		participants, err := b.contest.Participants(ctx)
		if err != nil {
			return err
		}
		return b.edit(chatID, messageID, participantsMessage(participants), adminBackKeyboard())

	case "admin_select_winner":
		if !b.admins.IsAdmin(ctx, userID) {
			return b.edit(chatID, messageID, adminRejectionMessage, backKeyboard())
		}
		return b.edit(chatID, messageID, drawHintMessage, adminBackKeyboard())

	case "admin_set_date":
		if !b.admins.IsAdmin(ctx, userID) {
			return b.edit(chatID, messageID, adminRejectionMessage, backKeyboard())
		}
		return b.edit(chatID, messageID, setDateUsageMessage, adminBackKeyboard())

	case "admin_winners":
		if !b.admins.IsAdmin(ctx, userID) {
			return b.edit(chatID, messageID, adminRejectionMessage, backKeyboard())
		}
		winners, err := b.contest.Winners(ctx)
		if err != nil {
			return err
		}
		return b.edit(chatID, messageID, winnersMessage(winners), adminBackKeyboard())

	case "admin_menu":
		if !b.admins.IsAdmin(ctx, userID) {
			return b.edit(chatID, messageID, adminRejectionMessage, backKeyboard())
		}
		return b.edit(chatID, messageID, adminMenuMessage, adminMenuKeyboard())
	}

	return nil
}

func (b *Bot) edit(chatID int64, messageID int, text string, kb tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, kb)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := b.api.Send(msg)
	return err
}
