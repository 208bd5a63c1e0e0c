// Package achievement — service.go содержит логику выдачи достижений.
package achievement

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Store — операции хранилища, нужные сервису достижений.
// Реализуется Repository; в тестах подменяется фейком.
type Store interface {
	Create(ctx context.Context, title, description string) (int64, error)
	GetByID(ctx context.Context, id int64) (*Achievement, error)
	Award(ctx context.Context, userID, achievementID int64) (bool, error)
	ListForUser(ctx context.Context, userID int64) ([]*Achievement, error)
}

// Service управляет каталогом достижений и их выдачей.
type Service struct {
	store Store
}

// NewService создаёт сервис достижений.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create добавляет достижение в каталог (например, награду нового челленджа).
func (s *Service) Create(ctx context.Context, title, description string) (int64, error) {
	return s.store.Create(ctx, title, description)
}

// GetByID возвращает достижение по ID.
func (s *Service) GetByID(ctx context.Context, id int64) (*Achievement, error) {
	return s.store.GetByID(ctx, id)
}

// Award идемпотентно выдаёт достижение пользователю.
// Возвращает true только при первой выдаче — по этому флагу вызывающая
// сторона решает, отправлять ли уведомление.
func (s *Service) Award(ctx context.Context, userID, achievementID int64) (bool, error) {
	inserted, err := s.store.Award(ctx, userID, achievementID)
	if err != nil {
		return false, err
	}
	if inserted {
		log.WithFields(log.Fields{
			"user_id":        userID,
			"achievement_id": achievementID,
		}).Info("Достижение выдано")
	}
	return inserted, nil
}

// ListForUser возвращает достижения пользователя.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]*Achievement, error) {
	return s.store.ListForUser(ctx, userID)
}
