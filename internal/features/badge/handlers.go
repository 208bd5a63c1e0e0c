// Package badge — handlers.go обрабатывает команду !прогресс.
package badge

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// Handler обрабатывает команды значков.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт обработчик команд значков.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleProgress обрабатывает команду !прогресс — показывает прогресс
// по каждому семейству значков.
//
// Формат ответа:
//
//	🏅 Прогресс значков:
//	Пластик: 3200/5000 (64%) → уровень 2
//	Бумага: все уровни собраны ✅
func (h *Handler) HandleProgress(ctx context.Context, chatID int64, userID int64) {
	progress, err := h.service.GetProgress(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения прогресса")
		h.sendMessage(chatID, "❌ Ошибка получения прогресса")
		return
	}

	var sb strings.Builder
	sb.WriteString("🏅 Прогресс значков:\n")
	for _, p := range progress {
		if p.FullyEarned {
			sb.WriteString(fmt.Sprintf("%s: все уровни собраны ✅\n", p.Family.RussianTitle()))
			continue
		}
		sb.WriteString(fmt.Sprintf("%s: %d/%d (%.0f%%) → уровень %d\n",
			p.Family.RussianTitle(), p.Current, p.Required, p.Percentage, p.NextLevel))
	}

	h.sendMessage(chatID, sb.String())
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
