// Package challenge — handlers.go обрабатывает команды:
// !челленджи (список открытых), !вступить <id>, !челлендж <название> [цель_кг] [дней].
package challenge

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"ecopunkt.ru/recycle-bot/internal/common"
)

// Handler обрабатывает команды челленджей.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт новый обработчик команд челленджей.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleList обрабатывает команду !челленджи — список открытых челленджей.
func (h *Handler) HandleList(ctx context.Context, chatID int64) {
	open, err := h.service.ListOpen(ctx, 10)
	if err != nil {
		log.WithError(err).Error("Ошибка получения списка челленджей")
		h.sendMessage(chatID, "❌ Не удалось получить список челленджей")
		return
	}
	if len(open) == 0 {
		h.sendMessage(chatID, "Пока нет открытых челленджей. Создайте свой: !челлендж <название> [цель_кг] [дней]")
		return
	}

	var sb strings.Builder
	sb.WriteString("🌍 Открытые челленджи:\n")
	for _, c := range open {
		sb.WriteString(fmt.Sprintf("\n#%d «%s»", c.ID, c.Title))
		if c.TargetGrams != nil {
			sb.WriteString(fmt.Sprintf(" — %s из %s (%.0f%%)",
				common.FormatGrams(c.CurrentProgress), common.FormatGrams(*c.TargetGrams), c.PercentDone()))
		}
		if c.Deadline != nil {
			sb.WriteString(fmt.Sprintf(", до %s", common.FormatDateTime(*c.Deadline)))
			if days := common.DaysLeft(*c.Deadline); days > 0 {
				sb.WriteString(fmt.Sprintf(" (осталось %d %s)", days, common.PluralizeDays(days)))
			}
		}
	}
	sb.WriteString("\n\nВступить: !вступить <номер>")
	h.sendMessage(chatID, sb.String())
}

// HandleJoin обрабатывает команду !вступить <id>.
func (h *Handler) HandleJoin(ctx context.Context, chatID, userID int64, args []string) {
	if len(args) < 1 {
		h.sendMessage(chatID, "Формат: !вступить <номер челленджа>")
		return
	}
	challengeID, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
	if err != nil {
		h.sendMessage(chatID, "Номер челленджа должен быть числом, например: !вступить 3")
		return
	}

	if _, err := h.service.Join(ctx, userID, challengeID); err != nil {
		h.sendMessage(chatID, joinErrorText(err))
		return
	}
	// Подтверждение уходит личным уведомлением из сервиса
}

// HandleCreate обрабатывает команду !челлендж <название> [цель_кг] [дней].
// Название — одно слово или фраза в кавычках.
func (h *Handler) HandleCreate(ctx context.Context, chatID, userID int64, args []string) {
	title, rest := parseTitle(args)
	if title == "" {
		h.sendMessage(chatID, "Формат: !челлендж \"Название\" [цель_кг] [дней]")
		return
	}

	var targetGrams *int64
	var deadline *time.Time
	if len(rest) >= 1 {
		kg, err := strconv.ParseFloat(rest[0], 64)
		if err != nil || kg <= 0 {
			h.sendMessage(chatID, "Цель должна быть положительным числом килограммов")
			return
		}
		g := int64(kg * 1000)
		targetGrams = &g
	}
	if len(rest) >= 2 {
		days, err := strconv.Atoi(rest[1])
		if err != nil || days <= 0 {
			h.sendMessage(chatID, "Срок должен быть положительным числом дней")
			return
		}
		d := common.GetMoscowTime().AddDate(0, 0, days)
		deadline = &d
	}

	c, err := h.service.Create(ctx, userID, title, targetGrams, true, deadline)
	if err != nil {
		log.WithError(err).Error("Ошибка создания челленджа")
		h.sendMessage(chatID, "❌ Не удалось создать челлендж")
		return
	}

	text := fmt.Sprintf("🌍 Челлендж #%d «%s» создан! Вступить: !вступить %d", c.ID, c.Title, c.ID)
	h.sendMessage(chatID, text)
}

// parseTitle выделяет название: фраза в кавычках либо первое слово.
func parseTitle(args []string) (string, []string) {
	if len(args) == 0 {
		return "", nil
	}
	if strings.HasPrefix(args[0], "\"") || strings.HasPrefix(args[0], "«") {
		joined := strings.Join(args, " ")
		joined = strings.NewReplacer("«", "\"", "»", "\"").Replace(joined)
		parts := strings.SplitN(joined, "\"", 3)
		if len(parts) == 3 {
			return strings.TrimSpace(parts[1]), strings.Fields(parts[2])
		}
		return "", nil
	}
	return args[0], args[1:]
}

// joinErrorText переводит ошибки вступления в понятный пользователю текст.
func joinErrorText(err error) string {
	switch {
	case errors.Is(err, common.ErrChallengeNotFound):
		return "❌ Челлендж с таким номером не найден"
	case errors.Is(err, common.ErrChallengeCompleted):
		return "Этот челлендж уже завершён"
	case errors.Is(err, common.ErrChallengeExpired):
		return "У этого челленджа прошёл дедлайн"
	case errors.Is(err, common.ErrChallengePrivate):
		return "Это приватный челлендж, вступить нельзя"
	case errors.Is(err, common.ErrAlreadyJoined):
		return "Вы уже участвуете в этом челлендже"
	case errors.Is(err, common.ErrChallengeLimit):
		return "Достигнут лимит активных челленджей. Завершите один из текущих"
	default:
		log.WithError(err).Error("Ошибка вступления в челлендж")
		return "❌ Не удалось вступить в челлендж"
	}
}

// sendMessage — вспомогательный метод для отправки текстовых сообщений.
func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
