// Package community — service.go содержит логику советов и благодарностей:
// суточный лимит, кулдаун на пару пользователей, запрет самоблагодарности.
// Сервис же поставляет движку значков социальные счётчики.
package community

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"ecopunkt.ru/recycle-bot/internal/common"
	"ecopunkt.ru/recycle-bot/internal/config"
	"ecopunkt.ru/recycle-bot/internal/features/badge"
)

// Store — операции хранилища сообщества. Реализуется Repository.
type Store interface {
	CreateTip(ctx context.Context, authorID int64, text string) (int64, error)
	RandomTip(ctx context.Context) (*Tip, error)
	CountTipsByAuthor(ctx context.Context, userID int64) (int64, error)
	CreateThanks(ctx context.Context, fromUserID, toUserID int64) error
	CountThanksGivenSince(ctx context.Context, fromUserID int64, since time.Time) (int, error)
	HasThanksBetweenSince(ctx context.Context, fromUserID, toUserID int64, since time.Time) (bool, error)
	CountThanksReceived(ctx context.Context, userID int64) (int64, error)
}

// Visibility — проверка скрытого режима пользователя.
type Visibility interface {
	IsContributionVisible(ctx context.Context, userID int64) bool
}

// BadgeChecker — пересчёт порогов и выдача новых значков.
type BadgeChecker interface {
	CheckAndAward(ctx context.Context, userID int64) ([]badge.Badge, error)
}

// Service — советы и благодарности.
type Service struct {
	store      Store
	visibility Visibility
	badges     BadgeChecker
	cfg        *config.Config
}

// NewService создаёт сервис сообщества. Движок значков подключается
// позже через BindBadges: он сам зависит от счётчиков этого сервиса.
func NewService(store Store, visibility Visibility, cfg *config.Config) *Service {
	return &Service{store: store, visibility: visibility, cfg: cfg}
}

// BindBadges подключает движок значков после его создания.
func (s *Service) BindBadges(badges BadgeChecker) {
	s.badges = badges
}

// AddTip добавляет совет и пересчитывает значки автора.
func (s *Service) AddTip(ctx context.Context, authorID int64, text string) error {
	if _, err := s.store.CreateTip(ctx, authorID, text); err != nil {
		return err
	}

	log.WithField("author_id", authorID).Info("Добавлен совет")
	s.recheckBadges(ctx, authorID)
	return nil
}

// RandomTip возвращает случайный совет.
func (s *Service) RandomTip(ctx context.Context) (*Tip, error) {
	return s.store.RandomTip(ctx)
}

// GiveThanks регистрирует благодарность.
//
// Отказы:
//   - самоблагодарность;
//   - исчерпан суточный лимит THANKS_DAILY_LIMIT;
//   - этой паре пользователей действует кулдаун.
func (s *Service) GiveThanks(ctx context.Context, fromUserID, toUserID int64) error {
	if fromUserID == toUserID {
		return common.ErrThanksSelf
	}

	now := time.Now()
	dayStart := now.Add(-24 * time.Hour)

	given, err := s.store.CountThanksGivenSince(ctx, fromUserID, dayStart)
	if err != nil {
		return err
	}
	if given >= s.cfg.ThanksDailyLimit {
		return common.ErrThanksDailyLimit
	}

	cooldownStart := now.Add(-time.Duration(s.cfg.ThanksCooldownSameUserHours) * time.Hour)
	already, err := s.store.HasThanksBetweenSince(ctx, fromUserID, toUserID, cooldownStart)
	if err != nil {
		return err
	}
	if already {
		return common.ErrThanksAlreadyGave
	}

	if err := s.store.CreateThanks(ctx, fromUserID, toUserID); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"from_user_id": fromUserID,
		"to_user_id":   toUserID,
	}).Info("Благодарность")

	s.recheckBadges(ctx, toUserID)
	return nil
}

// recheckBadges пересчитывает значки, если пользователь не в скрытом
// режиме. Ошибка пересчёта не рушит исходную операцию.
func (s *Service) recheckBadges(ctx context.Context, userID int64) {
	if s.badges == nil || !s.visibility.IsContributionVisible(ctx, userID) {
		return
	}
	if _, err := s.badges.CheckAndAward(ctx, userID); err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка пересчёта значков")
	}
}

// TipsAuthored возвращает число советов пользователя (счётчик для значков).
func (s *Service) TipsAuthored(ctx context.Context, userID int64) (int64, error) {
	return s.store.CountTipsByAuthor(ctx, userID)
}

// ThanksReceived возвращает число полученных благодарностей (счётчик для значков).
func (s *Service) ThanksReceived(ctx context.Context, userID int64) (int64, error) {
	return s.store.CountThanksReceived(ctx, userID)
}
