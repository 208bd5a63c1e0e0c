// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: ежедневное закрытие просроченных
// челленджей и еженедельная публикация рейтинга.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// ExpiredCloser — ежедневная уборка просроченных челленджей.
type ExpiredCloser interface {
	CloseExpired(ctx context.Context) error
}

// DigestSource — текст еженедельной публикации рейтинга.
type DigestSource interface {
	WeeklyDigest(ctx context.Context) (string, error)
}

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron       *cron.Cron
	challenges ExpiredCloser
	digest     DigestSource
	chatID     int64
	sendFunc   func(chatID int64, text string)
}

// NewScheduler создаёт планировщик задач с московским часовым поясом.
func NewScheduler(challenges ExpiredCloser, digest DigestSource, communityChatID int64, sendFunc func(chatID int64, text string)) *Scheduler {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		log.WithError(err).Warn("Не удалось загрузить Europe/Moscow, используем UTC+3")
		loc = time.FixedZone("MSK", 3*60*60)
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		challenges: challenges,
		digest:     digest,
		chatID:     communityChatID,
		sendFunc:   sendFunc,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) {
	// Закрытие просроченных челленджей в 00:05 по Москве
	s.cron.AddFunc("5 0 * * *", func() {
		log.Info("[CRON] Закрытие просроченных челленджей")
		if err := s.challenges.CloseExpired(ctx); err != nil {
			log.WithError(err).Error("[CRON] Ошибка закрытия челленджей")
		}
	})

	// Рейтинг недели — понедельник 10:00 по Москве
	s.cron.AddFunc("0 10 * * 1", func() {
		log.Info("[CRON] Публикация рейтинга недели")
		text, err := s.digest.WeeklyDigest(ctx)
		if err != nil {
			log.WithError(err).Error("[CRON] Ошибка сбора рейтинга")
			return
		}
		if text == "" {
			log.Debug("[CRON] Рейтинг пуст, публикация пропущена")
			return
		}
		s.sendFunc(s.chatID, text)
	})

	s.cron.Start()
	log.Info("Планировщик задач запущен (Europe/Moscow)")
}

// Stop останавливает планировщик.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
