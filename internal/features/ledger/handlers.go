// Package ledger — handlers.go обрабатывает команды:
// !сдал <категория> <граммы> — регистрация сдачи вторсырья,
// !история — последние сдачи пользователя.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"ecopunkt.ru/recycle-bot/internal/common"
)

// Handler обрабатывает команды журнала сдач.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт новый обработчик команд журнала.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleSubmit обрабатывает команду !сдал <категория> <граммы>.
//
// Пример: !сдал пластик 500
func (h *Handler) HandleSubmit(ctx context.Context, chatID, userID int64, args []string) {
	if len(args) < 2 {
		h.sendMessage(chatID, "Формат: !сдал <категория> <граммы>\nКатегории: пластик, бумага, стекло, металл, электроника, масло, органика")
		return
	}

	category, ok := ParseCategory(args[0])
	if !ok {
		h.sendMessage(chatID, fmt.Sprintf("Неизвестная категория «%s». Доступны: пластик, бумага, стекло, металл, электроника, масло, органика", args[0]))
		return
	}

	grams, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		h.sendMessage(chatID, "Граммы должны быть целым числом, например: !сдал пластик 500")
		return
	}

	result, err := h.service.RecordEntry(ctx, userID, category, grams)
	if err != nil {
		h.sendMessage(chatID, submitErrorText(err))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("♻️ Принято: %s, %s!", category.Title(), common.FormatGrams(grams)))
	if result.PointsDelta > 0 {
		sb.WriteString(fmt.Sprintf("\n+%s", common.FormatPoints(result.PointsDelta)))
	}
	if result.EmissionsDelta > 0 {
		sb.WriteString(fmt.Sprintf("\nСэкономлено: %s", common.FormatEmissions(result.EmissionsDelta)))
	}
	for _, title := range result.NewBadges {
		sb.WriteString(fmt.Sprintf("\n🏅 Новый значок: %s!", title))
	}
	h.sendMessage(chatID, sb.String())
}

// HandleHistory обрабатывает команду !история — последние 10 сдач.
func (h *Handler) HandleHistory(ctx context.Context, chatID, userID int64) {
	entries, err := h.service.History(ctx, userID, 10)
	if err != nil {
		log.WithError(err).Error("Ошибка получения истории сдач")
		h.sendMessage(chatID, "❌ Не удалось получить историю")
		return
	}
	if len(entries) == 0 {
		h.sendMessage(chatID, "История пуста. Зарегистрируйте первую сдачу: !сдал пластик 500")
		return
	}

	var sb strings.Builder
	sb.WriteString("📋 Последние сдачи:\n")
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("\n%s — %s, %s",
			common.FormatDateTime(e.CreatedAt), e.Category.Title(), common.FormatGrams(e.AmountGrams)))
	}
	h.sendMessage(chatID, sb.String())
}

// submitErrorText переводит ошибки регистрации сдачи в текст для пользователя.
func submitErrorText(err error) string {
	switch {
	case errors.Is(err, common.ErrInvalidAmount):
		return "Вес сдачи должен быть положительным и не больше 100 кг за раз"
	case errors.Is(err, common.ErrUnknownCategory):
		return "Неизвестная категория вторсырья"
	case errors.Is(err, common.ErrUserNotFound):
		return "Сначала напишите что-нибудь в чат, чтобы бот вас зарегистрировал"
	case errors.Is(err, common.ErrUserBanned):
		return "Ваши сдачи не принимаются"
	default:
		log.WithError(err).Error("Ошибка регистрации сдачи")
		return "❌ Не удалось зарегистрировать сдачу, попробуйте позже"
	}
}

// sendMessage — вспомогательный метод для отправки текстовых сообщений.
func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
