// Package leaderboard — service.go отдаёт рейтинги и собирает текст
// еженедельной публикации в общий чат.
package leaderboard

import (
	"context"
	"fmt"
	"strings"

	"ecopunkt.ru/recycle-bot/internal/common"
	"ecopunkt.ru/recycle-bot/internal/config"
)

// Store — читающие запросы рейтингов. Реализуется Repository.
type Store interface {
	TopByPoints(ctx context.Context, limit int) ([]*Row, error)
	TopByBadgeCount(ctx context.Context, limit int) ([]*Row, error)
}

// Service — рейтинги участников.
type Service struct {
	store Store
	cfg   *config.Config
}

// NewService создаёт сервис рейтингов.
func NewService(store Store, cfg *config.Config) *Service {
	return &Service{store: store, cfg: cfg}
}

// TopByPoints возвращает рейтинг по экобаллам.
func (s *Service) TopByPoints(ctx context.Context) ([]*Row, error) {
	return s.store.TopByPoints(ctx, s.cfg.LeaderboardSize)
}

// TopByBadgeCount возвращает рейтинг по значкам.
func (s *Service) TopByBadgeCount(ctx context.Context) ([]*Row, error) {
	return s.store.TopByBadgeCount(ctx, s.cfg.LeaderboardSize)
}

// WeeklyDigest собирает текст еженедельной публикации рейтинга.
// Пустая строка — публиковать нечего.
func (s *Service) WeeklyDigest(ctx context.Context) (string, error) {
	rows, err := s.TopByPoints(ctx)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("🏆 Рейтинг недели:\n")
	sb.WriteString(FormatRows(rows, func(r *Row) string {
		return common.FormatPoints(r.Points)
	}))
	sb.WriteString("\nСдавайте вторсырьё — !сдал <категория> <граммы>")
	return sb.String(), nil
}

// FormatRows форматирует строки рейтинга с медалями первой тройке.
func FormatRows(rows []*Row, value func(*Row) string) string {
	medals := []string{"🥇", "🥈", "🥉"}
	var sb strings.Builder
	for i, r := range rows {
		prefix := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			prefix = medals[i]
		}
		sb.WriteString(fmt.Sprintf("\n%s %s — %s", prefix, r.DisplayName(), value(r)))
	}
	return sb.String()
}
