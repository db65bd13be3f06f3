package bot

import (
	"context"

	"referral-contest-bot/internal/service"
	"referral-contest-bot/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Config carries the transport-level settings the bot needs. Group is the
// contest group username without the @; empty disables the membership gate.
type Config struct {
	Token     string
	Group     string
	Threshold int
}

type Bot struct {
	api       *tgbotapi.BotAPI
	referrals service.ReferralServiceI
	contest   service.ContestServiceI
	admins    service.AdminServiceI
	group     string
	threshold int
}

func New(cfg Config, referrals service.ReferralServiceI, contest service.ContestServiceI, admins service.AdminServiceI) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	api.Debug = false

	logger.Logger().Info("bot authorized", zap.String("username", api.Self.UserName))

	return &Bot{
		api:       api,
		referrals: referrals,
		contest:   contest,
		admins:    admins,
		group:     cfg.Group,
		threshold: cfg.Threshold,
	}, nil
}

// Run consumes updates one at a time until the context is cancelled. Each
// update is processed to completion before the next is read, so storage
// mutations never overlap.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	u.AllowedUpdates = []string{"message", "callback_query"}

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case upd := <-updates:
			b.handleUpdate(ctx, upd)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, upd tgbotapi.Update) {
	log := logger.Logger()

	switch {
	case upd.Message != nil:
		if err := b.handleMessage(ctx, upd.Message); err != nil {
			log.Error("failed to handle message",
				zap.Int64("chat_id", upd.Message.Chat.ID), zap.Error(err))
		}
	case upd.CallbackQuery != nil:
		if err := b.handleCallback(ctx, upd.CallbackQuery); err != nil {
			log.Error("failed to handle callback",
				zap.String("data", upd.CallbackQuery.Data), zap.Error(err))
		}
	}
}

func (b *Bot) reply(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) replyWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = kb
	_, err := b.api.Send(msg)
	return err
}

// notify sends a direct message outside the triggering conversation.
// Failures are the caller's to log; they never roll back recorded state.
func (b *Bot) notify(userID int64, text string) error {
	msg := tgbotapi.NewMessage(userID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := b.api.Send(msg)
	return err
}

// isGroupMember queries the gateway for the user's membership in the
// contest group. Gateway errors count as not-a-member.
func (b *Bot) isGroupMember(userID int64) bool {
	if b.group == "" {
		return true
	}

	member, err := b.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			SuperGroupUsername: "@" + b.group,
			UserID:             userID,
		},
	})
	if err != nil {
		logger.Logger().Warn("membership check failed, treating as non-member",
			zap.Int64("user_id", userID), zap.Error(err))
		return false
	}

	switch member.Status {
	case "member", "administrator", "creator":
		return true
	}
	return false
}
