// Package filters ограничивает работу бота чатом сообщества и личками
// его участников.
package filters

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"ecopunkt.ru/recycle-bot/internal/features/members"
)

// ChatFilter решает, обслуживать ли сообщение.
type ChatFilter struct {
	communityChatID int64
	memberService   *members.Service
	bot             *tgbotapi.BotAPI
}

// NewChatFilter создаёт фильтр доступа.
func NewChatFilter(communityChatID int64, memberService *members.Service, bot *tgbotapi.BotAPI) *ChatFilter {
	return &ChatFilter{
		communityChatID: communityChatID,
		memberService:   memberService,
		bot:             bot,
	}
}

// CheckAccess пропускает сообщения из чата сообщества и личные
// сообщения его участников. Неизвестного в личке проверяем через
// Telegram API и досоздаём в БД.
func (f *ChatFilter) CheckAccess(ctx context.Context, message *tgbotapi.Message) bool {
	if message == nil || message.Chat == nil {
		log.WithField("component", "ChatFilter").Warn("nil message/chat")
		return false
	}
	if message.From == nil {
		log.WithFields(log.Fields{
			"component": "ChatFilter",
			"chat_id":   message.Chat.ID,
			"chat_type": message.Chat.Type,
		}).Warn("nil message.From (сервисное сообщение?)")
		return false
	}
	if f.communityChatID == 0 {
		log.WithField("component", "ChatFilter").Error("communityChatID не задан (ошибка конфига)")
		return false
	}

	chatID := message.Chat.ID
	userID := message.From.ID

	logger := log.WithFields(log.Fields{
		"component": "ChatFilter",
		"chat_id":   chatID,
		"user_id":   userID,
	})

	if chatID == f.communityChatID {
		return true
	}

	if message.Chat.IsPrivate() {
		isMember, err := f.memberService.IsMember(ctx, userID)
		if err != nil {
			logger.WithError(err).Error("Ошибка проверки участника в БД")
			return false
		}
		if isMember {
			return true
		}

		// БД не знает пользователя — спрашиваем Telegram
		cm, err := f.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
			ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
				ChatID: f.communityChatID,
				UserID: userID,
			},
		})
		if err != nil {
			logger.WithError(err).Error("Ошибка проверки участника через Telegram")
			return false
		}

		switch cm.Status {
		case "creator", "administrator", "member", "restricted":
			if err := f.memberService.EnsureMember(
				ctx, userID,
				message.From.UserName,
				message.From.FirstName,
				message.From.LastName,
			); err != nil {
				logger.WithError(err).Warn("Не удалось досоздать участника в БД, пропускаем всё равно")
			}
			logger.WithField("tg_status", cm.Status).Info("Участник подтверждён через Telegram")
			return true

		default:
			logger.WithField("tg_status", cm.Status).Info("Отказ: не участник чата сообщества")
			msg := tgbotapi.NewMessage(chatID, "❌ Бот работает только для участников чата сообщества")
			if _, sendErr := f.bot.Send(msg); sendErr != nil {
				logger.WithError(sendErr).Warn("Не удалось отправить отказ")
			}
			return false
		}
	}

	// Чужие группы игнорируем
	logger.Debug("Отказ: посторонний чат")
	return false
}
