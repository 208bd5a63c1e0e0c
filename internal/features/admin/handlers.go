// Package admin — handlers.go обрабатывает админ-команды:
// !админ (вход), !выход, !бан/!разбан @user, !стата,
// !стереть @user (полное удаление данных), !оффчеллендж.
package admin

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
	"ecopunkt.ru/recycle-bot/internal/config"
	"ecopunkt.ru/recycle-bot/internal/features/challenge"
)

// ChallengeCreator — создание челленджей от имени админа.
type ChallengeCreator interface {
	Create(ctx context.Context, creatorID int64, title string, targetGrams *int64, isPublic bool, deadline *time.Time) (*challenge.Challenge, error)
}

// Handler обрабатывает админ-команды.
type Handler struct {
	service    *Service
	challenges ChallengeCreator
	bot        *tgbotapi.BotAPI
	cfg        *config.Config
}

// NewHandler создаёт новый обработчик админ-команд.
func NewHandler(service *Service, challenges ChallengeCreator, bot *tgbotapi.BotAPI, cfg *config.Config) *Handler {
	return &Handler{service: service, challenges: challenges, bot: bot, cfg: cfg}
}

// HandleAdmin обрабатывает команду !админ — вход в админ-панель.
// Пароль запрашивается отдельным сообщением, чтобы не светился в команде.
func (h *Handler) HandleAdmin(ctx context.Context, chatID, userID int64) {
	if !h.service.IsAdmin(userID) {
		h.sendMessage(chatID, "У вас нет прав администратора")
		return
	}
	if h.service.HasActiveSession(ctx, userID) {
		h.sendMessage(chatID, adminPanelText)
		return
	}
	h.service.SetState(userID, StateAwaitingPassword)
	h.sendMessage(chatID, "Введите пароль администратора:")
}

// HandlePasswordInput обрабатывает сообщение с паролем, когда диалог
// находится в состоянии ожидания пароля. Возвращает true, если
// сообщение было поглощено как пароль.
func (h *Handler) HandlePasswordInput(ctx context.Context, chatID, userID int64, text string) bool {
	state := h.service.GetState(userID)
	if state == nil || state.State != StateAwaitingPassword {
		return false
	}
	h.service.ClearState(userID)

	err := h.service.VerifyPassword(ctx, userID, text)
	switch {
	case err == nil:
		h.sendMessage(chatID, "✅ Вход выполнен\n\n"+adminPanelText)
	case errors.Is(err, common.ErrTooManyAttempts):
		h.sendMessage(chatID, "⛔ Слишком много попыток, подождите 1 час")
	case errors.Is(err, common.ErrWrongPassword):
		h.sendMessage(chatID, "❌ Неверный пароль")
	default:
		log.WithError(err).Error("Ошибка проверки пароля")
		h.sendMessage(chatID, "❌ Ошибка входа, попробуйте позже")
	}
	return true
}

// HandleLogout обрабатывает команду !выход.
func (h *Handler) HandleLogout(ctx context.Context, chatID, userID int64) {
	if err := h.service.Logout(ctx, userID); err != nil {
		log.WithError(err).Error("Ошибка выхода из админ-панели")
	}
	h.sendMessage(chatID, "Сессия завершена")
}

// HandleBan обрабатывает команды !бан @user и !разбан @user.
func (h *Handler) HandleBan(ctx context.Context, chatID, userID int64, args []string, banned bool) {
	if !h.requireSession(ctx, chatID, userID) {
		return
	}
	if len(args) < 1 {
		h.sendMessage(chatID, "Формат: !бан @username")
		return
	}

	m, err := h.service.SetBanned(ctx, args[0], banned)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			h.sendMessage(chatID, "Участник не найден")
			return
		}
		log.WithError(err).Error("Ошибка изменения статуса бана")
		h.sendMessage(chatID, "❌ Не удалось изменить статус")
		return
	}

	if banned {
		h.sendMessage(chatID, fmt.Sprintf("🚫 %s заблокирован", m.DisplayName()))
	} else {
		h.sendMessage(chatID, fmt.Sprintf("✅ %s разблокирован", m.DisplayName()))
	}
}

// HandleErase обрабатывает команду !стереть @user — полное удаление
// данных участника (журнал, агрегаты, значки, достижения).
func (h *Handler) HandleErase(ctx context.Context, chatID, userID int64, args []string) {
	if !h.requireSession(ctx, chatID, userID) {
		return
	}
	if len(args) < 1 {
		h.sendMessage(chatID, "Формат: !стереть @username")
		return
	}

	m, err := h.service.EraseUser(ctx, args[0])
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			h.sendMessage(chatID, "Участник не найден")
			return
		}
		log.WithError(err).Error("Ошибка удаления данных")
		h.sendMessage(chatID, "❌ Не удалось удалить данные")
		return
	}
	h.sendMessage(chatID, fmt.Sprintf("🗑 Данные %s удалены", m.DisplayName()))
}

// HandleStats обрабатывает команду !стата — сводка по сообществу.
func (h *Handler) HandleStats(ctx context.Context, chatID, userID int64) {
	if !h.requireSession(ctx, chatID, userID) {
		return
	}

	s, err := h.service.GetStats(ctx)
	if err != nil {
		log.WithError(err).Error("Ошибка сбора статистики")
		h.sendMessage(chatID, "❌ Не удалось собрать статистику")
		return
	}

	text := fmt.Sprintf(
		"📊 Сводка:\nУчастников: %d\nСдач: %d\nСобрано: %s\nЭкобаллов: %.1f\nСэкономлено: %s\nЗначков выдано: %d",
		s.Members, s.Entries, common.FormatGrams(s.TotalGrams),
		s.TotalPoints, common.FormatEmissions(s.TotalCO2), s.BadgesIssued)
	h.sendMessage(chatID, text)
}

// HandleOfficialChallenge обрабатывает команду
// !оффчеллендж "Название" <цель_кг> [дней] — создаёт публичный челлендж
// и анонсирует его в общем чате.
func (h *Handler) HandleOfficialChallenge(ctx context.Context, chatID, userID int64, args []string) {
	if !h.requireSession(ctx, chatID, userID) {
		return
	}

	title, rest := splitQuotedTitle(args)
	if title == "" || len(rest) < 1 {
		h.sendMessage(chatID, "Формат: !оффчеллендж \"Название\" <цель_кг> [дней]")
		return
	}

	kg, err := strconv.ParseFloat(rest[0], 64)
	if err != nil || kg <= 0 {
		h.sendMessage(chatID, "Цель должна быть положительным числом килограммов")
		return
	}
	target := int64(kg * 1000)

	var deadline *time.Time
	if len(rest) >= 2 {
		days, err := strconv.Atoi(rest[1])
		if err != nil || days <= 0 {
			h.sendMessage(chatID, "Срок должен быть положительным числом дней")
			return
		}
		d := common.GetMoscowTime().AddDate(0, 0, days)
		deadline = &d
	}

	c, err := h.challenges.Create(ctx, userID, title, &target, true, deadline)
	if err != nil {
		log.WithError(err).Error("Ошибка создания официального челленджа")
		h.sendMessage(chatID, "❌ Не удалось создать челлендж")
		return
	}

	announce := fmt.Sprintf("📣 Новый челлендж сообщества: «%s»!\nЦель: %s\nВступить: !вступить %d",
		c.Title, common.FormatGrams(target), c.ID)
	h.sendMessage(h.cfg.CommunityChatID, announce)
	h.sendMessage(chatID, fmt.Sprintf("Челлендж #%d создан и анонсирован", c.ID))
}

// requireSession проверяет права и активную сессию.
func (h *Handler) requireSession(ctx context.Context, chatID, userID int64) bool {
	if !h.service.IsAdmin(userID) {
		h.sendMessage(chatID, "У вас нет прав администратора")
		return false
	}
	if !h.service.HasActiveSession(ctx, userID) {
		h.sendMessage(chatID, "Сессия истекла. Войдите заново: !админ")
		return false
	}
	return true
}

// splitQuotedTitle выделяет название в кавычках и остаток аргументов.
func splitQuotedTitle(args []string) (string, []string) {
	joined := strings.Join(args, " ")
	joined = strings.NewReplacer("«", "\"", "»", "\"").Replace(joined)
	parts := strings.SplitN(joined, "\"", 3)
	if len(parts) != 3 {
		return "", nil
	}
	return strings.TrimSpace(parts[1]), strings.Fields(parts[2])
}

const adminPanelText = `🔧 Админ-панель:
!бан @user — заблокировать участника
!разбан @user — разблокировать
!стереть @user — удалить все данные участника
!стата — сводка по сообществу
!оффчеллендж "Название" <цель_кг> [дней] — челлендж сообщества
!выход — завершить сессию`

// sendMessage — вспомогательный метод для отправки текстовых сообщений.
func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
