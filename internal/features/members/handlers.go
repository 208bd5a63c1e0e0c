// Package members — handlers.go обрабатывает команды:
// !профиль (агрегаты и статистика), !анонимно (переключение скрытого режима).
package members

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"ecopunkt.ru/recycle-bot/internal/common"
)

// Handler обрабатывает команды участников.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт новый обработчик команд участников.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleProfile обрабатывает команду !профиль — показывает агрегаты пользователя.
//
// Формат ответа:
//
//	♻️ @username
//	Экобаллы: 137.5 экобаллов
//	Сэкономлено: 12.40 кг CO₂
func (h *Handler) HandleProfile(ctx context.Context, chatID int64, userID int64) {
	m, err := h.service.GetByUserID(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения профиля")
		h.sendMessage(chatID, "❌ Ошибка получения профиля")
		return
	}

	text := fmt.Sprintf("♻️ %s\nЭкобаллы: %s\nСэкономлено: %s",
		m.DisplayName(), common.FormatPoints(m.TotalPoints), common.FormatEmissions(m.TotalCO2))
	if m.IsAnonymous {
		text += "\n🕶 Скрытый режим включён"
	}
	h.sendMessage(chatID, text)
}

// HandleToggleAnonymous обрабатывает команду !анонимно.
// В скрытом режиме сдачи учитываются, но значки публично не начисляются.
func (h *Handler) HandleToggleAnonymous(ctx context.Context, chatID int64, userID int64) {
	anonymous, err := h.service.ToggleAnonymous(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка переключения анонимности")
		h.sendMessage(chatID, "❌ Не удалось переключить режим")
		return
	}

	if anonymous {
		h.sendMessage(chatID, "🕶 Скрытый режим включён: активность не будет публичной, значки не начисляются")
	} else {
		h.sendMessage(chatID, "👁 Скрытый режим выключен: активность снова публичная")
	}
}

// sendMessage — вспомогательный метод для отправки текстовых сообщений.
func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
