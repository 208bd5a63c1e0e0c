// Package challenge управляет коллективными челленджами по сдаче вторсырья.
// models.go описывает структуры челленджа и участия.
package challenge

import "time"

// Challenge — коллективная цель («сдадим тонну пластика до конца месяца»).
//
// CurrentProgress монотонно не убывает и НИКОГДА не превышает TargetGrams
// в хранимом состоянии: добавление прогресса ограничено сверху на стороне БД.
// Completed — терминальное состояние, после него прогресс не пишется.
type Challenge struct {
	ID              int64      `db:"id"`
	Title           string     `db:"title"`
	Description     string     `db:"description"`
	TargetGrams     *int64     `db:"target_grams"` // nil = бессрочная копилка без цели
	CurrentProgress int64      `db:"current_progress"`
	IsPublic        bool       `db:"is_public"`
	CreatorID       int64      `db:"creator_id"`
	RewardID        *int64     `db:"reward_achievement_id"` // Достижение-награда за завершение
	Deadline        *time.Time `db:"deadline"`              // nil = без дедлайна
	Completed       bool       `db:"completed"`
	CompletedAt     *time.Time `db:"completed_at"`
	CreatedAt       time.Time  `db:"created_at"`
}

// IsExpired сообщает, прошёл ли дедлайн (незавершённого) челленджа.
func (c *Challenge) IsExpired(now time.Time) bool {
	return c.Deadline != nil && now.After(*c.Deadline)
}

// PercentDone возвращает процент выполнения (0 для челленджей без цели).
func (c *Challenge) PercentDone() float64 {
	if c.TargetGrams == nil || *c.TargetGrams == 0 {
		return 0
	}
	return float64(c.CurrentProgress) / float64(*c.TargetGrams) * 100
}

// Participation — участие пользователя в челлендже.
// Пара (user_id, challenge_id) уникальна.
type Participation struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	ChallengeID int64     `db:"challenge_id"`
	JoinedAt    time.Time `db:"joined_at"`
}
