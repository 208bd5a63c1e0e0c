// Package badge — service.go содержит движок выдачи значков.
//
// Движок — чистый пересчёт: накопленные значения считаются от источников
// (журнал сдач, советы, благодарности), уже выданные значки исключаются
// запросом. Никакого дифа «было/стало» — повторный запуск с теми же
// данными всегда возвращает пустой список.
package badge

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"ecopunkt.ru/recycle-bot/internal/notify"
)

// Store — операции хранилища значков. Реализуется Repository.
type Store interface {
	WasteTotals(ctx context.Context, userID int64) (map[Family]int64, error)
	ListUnearned(ctx context.Context, userID int64, family Family, value int64) ([]Badge, error)
	InsertUserBadge(ctx context.Context, userID, badgeID int64) (bool, error)
	ListByFamily(ctx context.Context, family Family) ([]Badge, error)
	EarnedLevels(ctx context.Context, userID int64) (map[Family]int, error)
	CountForUser(ctx context.Context, userID int64) (int, error)
}

// SocialCounters — счётчики социальной активности, которые поставляет
// окружающая система (советы, благодарности). Для движка это внешний
// источник только на чтение.
type SocialCounters interface {
	TipsAuthored(ctx context.Context, userID int64) (int64, error)
	ThanksReceived(ctx context.Context, userID int64) (int64, error)
}

// Service — движок значков.
type Service struct {
	store    Store
	social   SocialCounters
	notifier notify.Notifier
}

// NewService создаёт движок значков.
func NewService(store Store, social SocialCounters, notifier notify.Notifier) *Service {
	return &Service{store: store, social: social, notifier: notifier}
}

// CheckAndAward пересчитывает все семейства и выдаёт новые значки.
//
// Одна сдача может пройти сразу несколько порогов (12 кг пластика за раз
// при порогах 1/5/10 кг) — выдаются ВСЕ пройденные уровни, не только
// старший. За каждый реально вставленный значок — ровно одно уведомление.
//
// Вызывать можно когда угодно и сколько угодно раз: без новой активности
// результат пустой. Скрытых пользователей отсекает вызывающая сторона —
// сам движок безопасен всегда.
func (s *Service) CheckAndAward(ctx context.Context, userID int64) ([]Badge, error) {
	values, err := s.familyValues(ctx, userID)
	if err != nil {
		return nil, err
	}

	var awarded []Badge
	for _, family := range Families {
		candidates, err := s.store.ListUnearned(ctx, userID, family, values[family])
		if err != nil {
			return awarded, err
		}
		for _, b := range candidates {
			inserted, err := s.store.InsertUserBadge(ctx, userID, b.ID)
			if err != nil {
				log.WithError(err).WithFields(log.Fields{
					"user_id":  userID,
					"badge_id": b.ID,
				}).Error("Ошибка выдачи значка")
				continue
			}
			if !inserted {
				// Гонка с параллельной проверкой — значок уже выдан
				continue
			}
			awarded = append(awarded, b)
			s.notifier.Notify(userID, fmt.Sprintf("🏅 Новый значок: %s!", b.Title()))
			log.WithFields(log.Fields{
				"user_id": userID,
				"family":  b.Family,
				"level":   b.Level,
			}).Info("Значок выдан")
		}
	}

	return awarded, nil
}

// familyValues собирает накопленные значения всех семейств.
func (s *Service) familyValues(ctx context.Context, userID int64) (map[Family]int64, error) {
	values := make(map[Family]int64, len(Families))

	totals, err := s.store.WasteTotals(ctx, userID)
	if err != nil {
		return nil, err
	}
	var grandTotal int64
	for family := range wasteFamilies {
		values[family] = totals[family]
		grandTotal += totals[family]
	}
	values[FamilyTotalWaste] = grandTotal

	tips, err := s.social.TipsAuthored(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка счётчика советов: %w", err)
	}
	values[FamilyContributions] = tips

	thanks, err := s.social.ThanksReceived(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка счётчика благодарностей: %w", err)
	}
	values[FamilyLikesReceived] = thanks

	return values, nil
}

// GetProgress возвращает прогресс пользователя по каждому семейству:
// текущее значение, порог следующего уровня и процент до него.
func (s *Service) GetProgress(ctx context.Context, userID int64) ([]Progress, error) {
	values, err := s.familyValues(ctx, userID)
	if err != nil {
		return nil, err
	}
	earned, err := s.store.EarnedLevels(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]Progress, 0, len(Families))
	for _, family := range Families {
		catalog, err := s.store.ListByFamily(ctx, family)
		if err != nil {
			return nil, err
		}
		if len(catalog) == 0 {
			continue
		}

		p := Progress{Family: family, Current: values[family]}
		maxLevel := earned[family]
		if maxLevel >= catalog[len(catalog)-1].Level {
			p.FullyEarned = true
			p.Percentage = 100
		} else {
			// Первый уровень выше уже полученного — следующая цель
			for _, b := range catalog {
				if b.Level > maxLevel {
					p.Required = b.Criteria
					p.NextLevel = b.Level
					break
				}
			}
			if p.Required > 0 {
				p.Percentage = float64(p.Current) / float64(p.Required) * 100
				if p.Percentage > 100 {
					p.Percentage = 100
				}
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// CountForUser возвращает число значков пользователя (для профиля).
func (s *Service) CountForUser(ctx context.Context, userID int64) (int, error) {
	return s.store.CountForUser(ctx, userID)
}
