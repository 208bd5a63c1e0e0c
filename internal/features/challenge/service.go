// Package challenge — service.go содержит бизнес-логику челленджей:
// вступление с лимитами, продвижение прогресса после каждой сдачи,
// детект завершения и раздачу награды всем участникам.
package challenge

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"ecopunkt.ru/recycle-bot/internal/common"
	"ecopunkt.ru/recycle-bot/internal/config"
	"ecopunkt.ru/recycle-bot/internal/features/achievement"
	"ecopunkt.ru/recycle-bot/internal/notify"
)

// Store — операции хранилища челленджей. Реализуется Repository.
type Store interface {
	Create(ctx context.Context, c *Challenge) (*Challenge, error)
	GetByID(ctx context.Context, id int64) (*Challenge, error)
	ListActiveForUser(ctx context.Context, userID int64) ([]*Challenge, error)
	ListOpen(ctx context.Context, limit int) ([]*Challenge, error)
	AddProgress(ctx context.Context, challengeID, grams int64) (int64, *int64, error)
	ClaimCompletion(ctx context.Context, challengeID int64) (bool, error)
	CloseExpired(ctx context.Context, now time.Time) ([]*Challenge, error)
	AddParticipant(ctx context.Context, userID, challengeID int64) (bool, error)
	IsParticipant(ctx context.Context, userID, challengeID int64) (bool, error)
	CountActiveForUser(ctx context.Context, userID int64) (int, error)
	ListParticipants(ctx context.Context, challengeID int64) ([]int64, error)
}

// Rewards — подмножество сервиса достижений, нужное челленджам.
type Rewards interface {
	Create(ctx context.Context, title, description string) (int64, error)
	GetByID(ctx context.Context, id int64) (*achievement.Achievement, error)
	Award(ctx context.Context, userID, achievementID int64) (bool, error)
}

// Service управляет челленджами.
type Service struct {
	store    Store
	rewards  Rewards
	notifier notify.Notifier
	cfg      *config.Config
}

// NewService создаёт сервис челленджей.
func NewService(store Store, rewards Rewards, notifier notify.Notifier, cfg *config.Config) *Service {
	return &Service{store: store, rewards: rewards, notifier: notifier, cfg: cfg}
}

// Create создаёт челлендж вместе с достижением-наградой.
// Награда создаётся ПЕРВОЙ: челлендж без награды — ошибка данных,
// которую мы потом не сможем починить в момент завершения.
func (s *Service) Create(ctx context.Context, creatorID int64, title string, targetGrams *int64, isPublic bool, deadline *time.Time) (*Challenge, error) {
	rewardID, err := s.rewards.Create(ctx, title,
		fmt.Sprintf("За участие в челлендже «%s»", title))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания награды: %w", err)
	}

	c := &Challenge{
		Title:       title,
		TargetGrams: targetGrams,
		IsPublic:    isPublic,
		CreatorID:   creatorID,
		RewardID:    &rewardID,
		Deadline:    deadline,
	}
	created, err := s.store.Create(ctx, c)
	if err != nil {
		return nil, err
	}

	// Создатель участвует автоматически
	if _, err := s.store.AddParticipant(ctx, creatorID, created.ID); err != nil {
		log.WithError(err).WithField("challenge_id", created.ID).Error("Ошибка автозаписи создателя")
	}

	log.WithFields(log.Fields{
		"challenge_id": created.ID,
		"creator_id":   creatorID,
		"public":       isPublic,
	}).Info("Челлендж создан")
	return created, nil
}

// Join записывает пользователя в челлендж.
//
// Проверки (все ДО записи, любая ошибка — отказ без побочных эффектов):
//   - челлендж существует, не завершён, дедлайн не прошёл;
//   - приватный челлендж доступен только создателю;
//   - пользователь ещё не участвует;
//   - у пользователя меньше CHALLENGE_MAX_ACTIVE активных участий.
//
// При успехе уходит два уведомления: вступившему (с целью и дедлайном)
// и создателю (если это не он сам).
func (s *Service) Join(ctx context.Context, userID, challengeID int64) (*Participation, error) {
	c, err := s.store.GetByID(ctx, challengeID)
	if err != nil {
		return nil, common.ErrChallengeNotFound
	}
	if c.Completed {
		return nil, common.ErrChallengeCompleted
	}
	if c.IsExpired(time.Now()) {
		return nil, common.ErrChallengeExpired
	}
	if !c.IsPublic && c.CreatorID != userID {
		return nil, common.ErrChallengePrivate
	}

	joined, err := s.store.IsParticipant(ctx, userID, challengeID)
	if err != nil {
		return nil, err
	}
	if joined {
		return nil, common.ErrAlreadyJoined
	}

	active, err := s.store.CountActiveForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if active >= s.cfg.ChallengeMaxActive {
		return nil, common.ErrChallengeLimit
	}

	inserted, err := s.store.AddParticipant(ctx, userID, challengeID)
	if err != nil {
		return nil, err
	}
	if !inserted {
		// Гонка двух одновременных вступлений — второй получает отказ
		return nil, common.ErrAlreadyJoined
	}

	log.WithFields(log.Fields{
		"user_id":      userID,
		"challenge_id": challengeID,
	}).Info("Вступление в челлендж")

	s.notifier.Notify(userID, joinConfirmation(c))
	if c.CreatorID != userID {
		s.notifier.Notify(c.CreatorID,
			fmt.Sprintf("👥 В ваш челлендж «%s» вступил новый участник!", c.Title))
	}

	return &Participation{UserID: userID, ChallengeID: challengeID, JoinedAt: time.Now()}, nil
}

// AdvanceForUser добавляет граммы сдачи ко всем активным челленджам
// пользователя. Завершившиеся при этом челленджи раздают награду
// всем участникам.
//
// Ошибка одного челленджа не мешает остальным; первая ошибка
// возвращается вызывающей стороне для лога.
func (s *Service) AdvanceForUser(ctx context.Context, userID int64, grams int64) error {
	active, err := s.store.ListActiveForUser(ctx, userID)
	if err != nil {
		return err
	}

	var firstErr error
	for _, c := range active {
		current, target, err := s.store.AddProgress(ctx, c.ID, grams)
		if err != nil {
			// Челлендж могли завершить параллельно — это не ошибка сдачи
			log.WithError(err).WithField("challenge_id", c.ID).Debug("Прогресс не добавлен")
			continue
		}

		if target == nil || current < *target {
			continue
		}

		// Цель достигнута. Завершает и раздаёт награды ровно один вызов.
		won, err := s.store.ClaimCompletion(ctx, c.ID)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if !won {
			continue
		}

		if err := s.rewardParticipants(ctx, c); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// rewardParticipants раздаёт достижение-награду ВСЕМ участникам
// завершённого челленджа, не только автору завершающей сдачи.
// Идемпотентность выдачи держится на уникальном индексе user_achievements.
func (s *Service) rewardParticipants(ctx context.Context, c *Challenge) error {
	if c.RewardID == nil {
		// Ошибка данных: челлендж создан в обход сервиса. Шумим, не глотаем.
		log.WithFields(log.Fields{
			"challenge_id": c.ID,
			"title":        c.Title,
		}).Error("ЧЕЛЛЕНДЖ ЗАВЕРШЁН БЕЗ НАГРАДЫ — это баг данных")
		return common.ErrRewardNotConfigured
	}

	participants, err := s.store.ListParticipants(ctx, c.ID)
	if err != nil {
		return err
	}

	text := fmt.Sprintf("🏆 Челлендж «%s» завершён! Награда за участие уже у вас.", c.Title)
	for _, uid := range participants {
		inserted, err := s.rewards.Award(ctx, uid, *c.RewardID)
		if err != nil {
			log.WithError(err).WithFields(log.Fields{
				"user_id":      uid,
				"challenge_id": c.ID,
			}).Error("Ошибка выдачи награды участнику")
			continue
		}
		if inserted {
			s.notifier.Notify(uid, text)
		}
	}

	log.WithFields(log.Fields{
		"challenge_id": c.ID,
		"participants": len(participants),
	}).Info("Челлендж завершён, награды разданы")
	return nil
}

// ListOpen возвращает публичные незавершённые челленджи.
func (s *Service) ListOpen(ctx context.Context, limit int) ([]*Challenge, error) {
	return s.store.ListOpen(ctx, limit)
}

// GetByID возвращает челлендж.
func (s *Service) GetByID(ctx context.Context, id int64) (*Challenge, error) {
	return s.store.GetByID(ctx, id)
}

// CloseExpired закрывает просроченные челленджи и уведомляет участников.
// Запускается кроном раз в сутки.
func (s *Service) CloseExpired(ctx context.Context) error {
	expired, err := s.store.CloseExpired(ctx, time.Now())
	if err != nil {
		return err
	}
	for _, c := range expired {
		participants, err := s.store.ListParticipants(ctx, c.ID)
		if err != nil {
			log.WithError(err).WithField("challenge_id", c.ID).Error("Ошибка получения участников")
			continue
		}
		s.notifier.NotifyMany(participants,
			fmt.Sprintf("⌛ Челлендж «%s» завершён по дедлайну (%s из цели).",
				c.Title, fmt.Sprintf("%.0f%%", c.PercentDone())))
	}
	if len(expired) > 0 {
		log.WithField("count", len(expired)).Info("Просроченные челленджи закрыты")
	}
	return nil
}

// joinConfirmation собирает текст подтверждения вступления.
func joinConfirmation(c *Challenge) string {
	text := fmt.Sprintf("✅ Вы вступили в челлендж «%s»!", c.Title)
	if c.TargetGrams != nil {
		text += fmt.Sprintf("\nЦель: %s", common.FormatGrams(*c.TargetGrams))
	}
	if c.Deadline != nil {
		text += fmt.Sprintf("\nДедлайн: %s", common.FormatDateTime(*c.Deadline))
		if days := common.DaysLeft(*c.Deadline); days > 0 {
			text += fmt.Sprintf(" (осталось %d %s)", days, common.PluralizeDays(days))
		}
	}
	return text
}
