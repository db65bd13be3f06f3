package bot

import (
	"fmt"
	"strings"

	"referral-contest-bot/internal/model"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	adminRejectionMessage = "❌ You do not have admin rights."

	adminMenuMessage = "🔧 *Admin panel*\n\nPick an action:"

	notEnoughParticipantsMessage = "❌ At least 6 eligible participants are required to run the draw."

	drawCompletedMessage = "❌ Winners have already been selected for this contest."

	drawHintMessage = "🎯 Run /setwinner to draw the winners. The draw needs at least 6 eligible participants and can be run only once."

	setDateUsageMessage = "📅 To set the contest date:\n`/setdate DD.MM.YYYY`\n\nFor example: `/setdate 25.12.2026`"

	addAdminUsageMessage = "👤 To add an admin:\n`/addadmin USER_ID [username]`\n\nFor example: `/addadmin 123456789`"

	addReferralUsageMessage = "🔗 To record a referral manually:\n`/addreferral REFERRER_ID REFERRED_ID`"

	invalidIdentifierMessage = "❌ Invalid user identifier."

	selfReferralMessage = "❌ A user cannot refer themselves."

	referrerNotFoundMessage = "❌ Referrer not found."

	alreadyAttributedMessage = "ℹ️ This referral is already recorded."

	startFirstMessage = "❌ Please run /start first."

	phoneSavedMessage = "✅ Your phone number has been saved."

	firstPrizeNotification = "🎉 *Congratulations!* 🎉\n\nYou took 1st place in the contest and won a *Blender*!\n\nContact the administrators to claim your prize."

	voucherPrizeNotification = "🎉 *Congratulations!* 🎉\n\nYou won a *100,000 soum voucher* in the contest!\n\nContact the administrators to claim your prize."
)

func welcomeMessage() string {
	return `🎉 *Welcome to the appliance store contest!*

Invite friends through your personal link to earn the right to take part in the prize draw.

🏆 *Prizes:*
• 1st place: Blender
• 5 winners: 100,000 soum voucher

Pick one of the buttons below:`
}

func myResultsMessage(stats *model.ReferralStats) string {
	if stats.Eligible {
		return fmt.Sprintf(`📊 *Your results:*

✅ Invited friends: %d
✅ Contest entry: granted

🎉 Congratulations! You are in the draw!`, stats.ReferralCount)
	}

	return fmt.Sprintf(`📊 *Your results:*

👥 Invited friends: %d
❌ Contest entry: not yet

Invite %d more friend(s) to enter the draw.`, stats.ReferralCount, stats.Needed)
}

func inviteFriendsMessage(link string, threshold int, group string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "👥 *Invite your friends!*\n\n")
	fmt.Fprintf(&sb, "Invite at least %d friend(s) to enter the contest.\n\n", threshold)
	fmt.Fprintf(&sb, "🔗 *Your personal link:*\n`%s`\n\n", link)
	sb.WriteString("Share this link with your friends. You get credit each time someone starts the bot through it.")
	if group != "" {
		fmt.Fprintf(&sb, "\n\n⚠️ *Important:* your friends must join @%s before starting the bot.", group)
	}
	return sb.String()
}

func rulesMessage(contestDate string, threshold int, group string) string {
	dateInfo := "📅 *Contest date:* to be announced by the admins"
	if contestDate != "" {
		dateInfo = fmt.Sprintf("📅 *Contest date:* %s", contestDate)
	}

	var sb strings.Builder
	sb.WriteString("📋 *Contest rules:*\n\n*🎯 Entry requirements:*\n")
	if group != "" {
		fmt.Fprintf(&sb, "• Membership in @%s is required\n", group)
	}
	fmt.Fprintf(&sb, "• Invite at least %d friend(s)\n", threshold)
	sb.WriteString("• Only real accounts are counted\n\n")
	sb.WriteString(`*🏆 Prizes:*
• 1st place: Blender
• 5 winners: 100,000 soum voucher

*📝 How winners are picked:*
• Winners are drawn at random
• Only participants who met every requirement take part
• Results are final once announced

`)
	sb.WriteString(dateInfo)
	sb.WriteString("\n\n*📞 Contact:*\nReach out to the administrators with any questions.")
	return sb.String()
}

func helpMessage() string {
	return `ℹ️ *Help:*

This bot runs the appliance store contest.

*Commands:*
• /start — start the bot
• /help — this message

*How it works:*
1. Start the bot
2. Invite your friends
3. Earn your contest entry
4. Good luck in the draw!

Press the "Rules" button for details.`
}

func referralSuccessMessage(firstName string) string {
	return fmt.Sprintf(`🎉 *New referral!*

%s joined through your link!

Your referral count has been updated. Check "My results" for details.`, firstName)
}

func joinGroupFirstMessage(group string) string {
	if group == "" {
		return startFirstMessage
	}
	return fmt.Sprintf("⚠️ Please join @%s first, then open the referral link again.", group)
}

func participantsMessage(participants []*model.Participant) string {
	if len(participants) == 0 {
		return "📋 Nobody is eligible for the contest yet."
	}

	var sb strings.Builder
	sb.WriteString("👥 *Contest participants:*\n\n")
	for i, p := range participants {
		username := "no username"
		if p.Username != "" {
			username = "@" + p.Username
		}
		fmt.Fprintf(&sb, "%d. %s (%s)\n   Referrals: %d\n\n", i+1, p.FirstName, username, p.ReferralCount)
	}
	fmt.Fprintf(&sb, "*Total participants: %d*", len(participants))
	return sb.String()
}

func drawResultMessage(result *model.DrawResult) string {
	var sb strings.Builder
	sb.WriteString("🎉 *Winners selected!*\n\n")

	fp := result.FirstPlace
	fmt.Fprintf(&sb, "🥇 *1st place (Blender):*\n%s", fp.FirstName)
	if fp.Username != "" {
		fmt.Fprintf(&sb, " (@%s)", fp.Username)
	}
	fmt.Fprintf(&sb, "\nReferrals: %d\n\n", fp.ReferralCount)

	sb.WriteString("🎁 *Voucher winners (100,000 soum):*\n")
	for i, w := range result.VoucherWinners {
		fmt.Fprintf(&sb, "%d. %s", i+1, w.FirstName)
		if w.Username != "" {
			fmt.Fprintf(&sb, " (@%s)", w.Username)
		}
		fmt.Fprintf(&sb, " — %d referrals\n", w.ReferralCount)
	}

	return sb.String()
}

func winnersMessage(winners []*model.Winner) string {
	if len(winners) == 0 {
		return "🏆 No winners recorded yet."
	}

	var sb strings.Builder
	sb.WriteString("🏆 *Winners:*\n\n")
	for _, w := range winners {
		username := "no username"
		if w.Username != "" {
			username = "@" + w.Username
		}
		fmt.Fprintf(&sb, "👤 %s (%s)\n🎁 %s\n📅 %s\n\n",
			w.FirstName, username, w.Prize, w.SelectedAt.Format("02.01.2006 15:04"))
	}
	return sb.String()
}

func dateSetMessage(date string) string {
	return fmt.Sprintf("✅ Contest date set: *%s*", date)
}

func adminAddedMessage(id int64) string {
	return fmt.Sprintf("✅ Admin added: %d", id)
}

func referralRecordedMessage(referrerID, referredID int64) string {
	return fmt.Sprintf("✅ Referral recorded: %d → %d", referrerID, referredID)
}

func mainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 My results", "my_results"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👥 Invite friends", "invite_friends"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Rules", "rules"),
		),
	)
}

func backKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Main menu", "back_to_menu"),
		),
	)
}

func inviteKeyboard(link string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("📤 Share link", "https://t.me/share/url?url="+link),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Main menu", "back_to_menu"),
		),
	)
}

func adminMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👥 Participants", "admin_participants"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎯 Select winners", "admin_select_winner"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 Set date", "admin_set_date"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏆 Winners", "admin_winners"),
		),
	)
}

func adminBackKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Admin panel", "admin_menu"),
		),
	)
}
