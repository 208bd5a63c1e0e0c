// Package ledger — service.go содержит основную бизнес-логику записи сдач.
// Сервис выполняет конвейер: валидация → оценка CO2 → запись журнала
// с атомарным инкрементом агрегатов → продвижение челленджей → проверка значков.
// Каждый шаг фиксирует своё состояние до начала следующего: упавший
// хвост конвейера не откатывает уже записанную сдачу.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"

	"ecopunkt.ru/recycle-bot/internal/common"
	"ecopunkt.ru/recycle-bot/internal/emissions"
	"ecopunkt.ru/recycle-bot/internal/features/badge"
	"ecopunkt.ru/recycle-bot/internal/features/members"
)

// Store — операции хранилища журнала. Реализуется Repository.
type Store interface {
	RecordEntry(ctx context.Context, userID int64, category Category, grams int64, points, co2 float64) (*Entry, error)
	ListForUser(ctx context.Context, userID int64, limit int) ([]*Entry, error)
	DeleteForUser(ctx context.Context, userID int64) error
}

// MemberDirectory — доступ к участникам (существование, бан, видимость).
type MemberDirectory interface {
	GetByUserID(ctx context.Context, userID int64) (*members.Member, error)
}

// ChallengeAdvancer — продвижение прогресса челленджей после сдачи.
type ChallengeAdvancer interface {
	AdvanceForUser(ctx context.Context, userID int64, grams int64) error
}

// BadgeChecker — пересчёт порогов и выдача новых значков.
type BadgeChecker interface {
	CheckAndAward(ctx context.Context, userID int64) ([]badge.Badge, error)
}

// Service — журнал сдач вторсырья.
type Service struct {
	store      Store
	members    MemberDirectory
	estimator  emissions.Estimator
	challenges ChallengeAdvancer
	badges     BadgeChecker
	points     *PointsTable
}

// NewService создаёт сервис журнала.
func NewService(store Store, memberDir MemberDirectory, estimator emissions.Estimator,
	challenges ChallengeAdvancer, badges BadgeChecker, points *PointsTable) *Service {
	return &Service{
		store:      store,
		members:    memberDir,
		estimator:  estimator,
		challenges: challenges,
		badges:     badges,
		points:     points,
	}
}

// RecordEntry записывает сдачу вторсырья.
//
// Конвейер:
//  1. Валидация (категория, вес, участник) — ДО любой записи.
//  2. Оценка CO2 у внешнего сервиса. Недоступен/таймаут → 0, операция не падает.
//  3. Запись журнала + атомарный инкремент агрегатов (одна транзакция БД).
//  4. Продвижение челленджей участника.
//  5. Проверка значков — только если активность участника публична.
//
// Ошибки шагов 4-5 логируются, но не откатывают сдачу: оба шага
// идемпотентны и безопасно повторяются следующей сдачей.
func (s *Service) RecordEntry(ctx context.Context, userID int64, category Category, grams int64) (*Result, error) {
	// Шаг 1: валидация до любой записи
	if !category.Valid() {
		return nil, common.ErrUnknownCategory
	}
	if grams <= 0 || grams > MaxEntryGrams {
		return nil, common.ErrInvalidAmount
	}

	member, err := s.members.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("ошибка проверки участника: %w", err)
	}
	if member.IsBanned {
		return nil, common.ErrUserBanned
	}

	// Шаг 2: оценка CO2 — строго best-effort
	co2 := s.estimateCO2(ctx, grams, category)
	points := s.points.PointsFor(category, grams)

	// Шаг 3: запись + агрегаты
	entry, err := s.store.RecordEntry(ctx, userID, category, grams, points, co2)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id":  userID,
		"category": category,
		"grams":    grams,
		"points":   points,
		"co2_kg":   co2,
	}).Info("Сдача записана")

	result := &Result{
		Entry:          entry,
		PointsDelta:    points,
		EmissionsDelta: co2,
	}

	// Шаг 4: челленджи. Сдача уже в журнале — ошибку не поднимаем.
	if err := s.challenges.AdvanceForUser(ctx, userID, grams); err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Ошибка продвижения челленджей")
	}

	// Шаг 5: значки. Для скрытых пользователей пропускаем вызов целиком:
	// решение принимается здесь, а не внутри движка значков.
	if member.IsContributionVisible() {
		newBadges, err := s.badges.CheckAndAward(ctx, userID)
		if err != nil {
			log.WithError(err).WithField("user_id", userID).Error("Ошибка проверки значков")
		}
		result.NewBadges = badgeTitles(newBadges)
	}

	return result, nil
}

// estimateCO2 спрашивает внешний сервис. Любая ошибка → 0 и Warn в лог.
func (s *Service) estimateCO2(ctx context.Context, grams int64, category Category) float64 {
	co2, err := s.estimator.Estimate(ctx, grams, string(category))
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"category": category,
			"grams":    grams,
		}).Warn("Оценка CO2 недоступна, записываем 0")
		return 0
	}
	return co2
}

// History возвращает последние сдачи пользователя.
func (s *Service) History(ctx context.Context, userID int64, limit int) ([]*Entry, error) {
	return s.store.ListForUser(ctx, userID, limit)
}

// Erase удаляет журнал пользователя и обнуляет агрегаты (стирание аккаунта).
func (s *Service) Erase(ctx context.Context, userID int64) error {
	return s.store.DeleteForUser(ctx, userID)
}

func badgeTitles(badges []badge.Badge) []string {
	if len(badges) == 0 {
		return nil
	}
	out := make([]string, 0, len(badges))
	for _, b := range badges {
		out = append(out, b.Title())
	}
	return out
}
