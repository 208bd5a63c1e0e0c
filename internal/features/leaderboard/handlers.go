// Package leaderboard — handlers.go обрабатывает команды:
// !топ (по экобаллам), !топ значки (по числу значков).
package leaderboard

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"ecopunkt.ru/recycle-bot/internal/common"
)

// Handler обрабатывает команды рейтингов.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт новый обработчик команд рейтингов.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleTop обрабатывает команду !топ [значки].
func (h *Handler) HandleTop(ctx context.Context, chatID int64, args []string) {
	byBadges := len(args) > 0 && strings.EqualFold(args[0], "значки")

	var (
		rows  []*Row
		err   error
		title string
		value func(*Row) string
	)
	if byBadges {
		rows, err = h.service.TopByBadgeCount(ctx)
		title = "🏅 Топ по значкам:"
		value = func(r *Row) string {
			return strconv.FormatInt(r.BadgeCount, 10) + " " + common.PluralizeBadges(int(r.BadgeCount))
		}
	} else {
		rows, err = h.service.TopByPoints(ctx)
		title = "🏆 Топ по экобаллам:"
		value = func(r *Row) string { return common.FormatPoints(r.Points) }
	}
	if err != nil {
		log.WithError(err).Error("Ошибка получения рейтинга")
		h.sendMessage(chatID, "❌ Не удалось получить рейтинг")
		return
	}
	if len(rows) == 0 {
		h.sendMessage(chatID, "Рейтинг пока пуст — станьте первым!")
		return
	}

	h.sendMessage(chatID, title+FormatRows(rows, value))
}

// sendMessage — вспомогательный метод для отправки текстовых сообщений.
func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
