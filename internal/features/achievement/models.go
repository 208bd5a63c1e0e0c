// Package achievement управляет разовыми наградами (достижениями).
// Достижение — это награда «за событие», в отличие от значков,
// которые считаются от накопленных порогов. Сейчас достижения
// выдаются за завершение челленджей.
// models.go описывает структуры данных достижений.
package achievement

import "time"

// Achievement — запись каталога достижений.
type Achievement struct {
	ID          int64     `db:"id"`
	Title       string    `db:"title"`       // Название («Неделя без пластика»)
	Description string    `db:"description"` // Описание, показывается в списке наград
	CreatedAt   time.Time `db:"created_at"`
}

// UserAchievement — факт получения достижения пользователем.
// Пара (user_id, achievement_id) уникальна: повторная выдача — no-op.
type UserAchievement struct {
	ID            int64     `db:"id"`
	UserID        int64     `db:"user_id"`
	AchievementID int64     `db:"achievement_id"`
	EarnedAt      time.Time `db:"earned_at"`
}
