// Package community — handlers.go обрабатывает команды:
// !совет (случайный совет), !совет <текст> (добавить свой),
// а также благодарности через ответ на сообщение.
package community

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"ecopunkt.ru/recycle-bot/internal/common"
)

// Handler обрабатывает команды сообщества.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт новый обработчик команд сообщества.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleTip обрабатывает команду !совет.
// Без аргументов — случайный совет, с текстом — добавление своего.
func (h *Handler) HandleTip(ctx context.Context, chatID, userID int64, args []string) {
	if len(args) == 0 {
		tip, err := h.service.RandomTip(ctx)
		if err != nil {
			h.sendMessage(chatID, "Советов пока нет. Добавьте первый: !совет <текст>")
			return
		}
		h.sendMessage(chatID, "💡 "+tip.Text)
		return
	}

	text := strings.TrimSpace(strings.Join(args, " "))
	if len([]rune(text)) < 10 {
		h.sendMessage(chatID, "Совет слишком короткий, напишите подробнее")
		return
	}

	if err := h.service.AddTip(ctx, userID, text); err != nil {
		log.WithError(err).Error("Ошибка добавления совета")
		h.sendMessage(chatID, "❌ Не удалось сохранить совет")
		return
	}
	h.sendMessage(chatID, "💡 Совет сохранён, спасибо!")
}

// HandleThanks регистрирует благодарность из ответа на сообщение.
// Вызывается ботом, когда текст ответа распознан как благодарность.
func (h *Handler) HandleThanks(ctx context.Context, chatID, fromUserID, toUserID int64, fromName, toName string) {
	err := h.service.GiveThanks(ctx, fromUserID, toUserID)
	switch {
	case err == nil:
		h.sendMessage(chatID, "🙏 "+fromName+" благодарит "+toName+"!")
	case errors.Is(err, common.ErrThanksSelf):
		// Самоблагодарность молча игнорируем, чтобы не спамить чат
	case errors.Is(err, common.ErrThanksDailyLimit):
		h.sendMessage(chatID, "На сегодня лимит благодарностей исчерпан")
	case errors.Is(err, common.ErrThanksAlreadyGave):
		// Кулдаун на пару — тоже молча
	default:
		log.WithError(err).Error("Ошибка регистрации благодарности")
	}
}

// sendMessage — вспомогательный метод для отправки текстовых сообщений.
func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
