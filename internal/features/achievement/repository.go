// Package achievement — repository.go выполняет операции с таблицами
// achievements и user_achievements.
package achievement

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository предоставляет методы для работы с достижениями.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий достижений.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create добавляет достижение в каталог и возвращает его ID.
func (r *Repository) Create(ctx context.Context, title, description string) (int64, error) {
	query := `
		INSERT INTO achievements (title, description)
		VALUES ($1, $2)
		RETURNING id
	`
	var id int64
	if err := r.db.QueryRow(ctx, query, title, description).Scan(&id); err != nil {
		return 0, fmt.Errorf("ошибка создания достижения: %w", err)
	}
	return id, nil
}

// GetByID возвращает достижение по ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Achievement, error) {
	query := `SELECT id, title, description, created_at FROM achievements WHERE id = $1`
	var a Achievement
	err := r.db.QueryRow(ctx, query, id).Scan(&a.ID, &a.Title, &a.Description, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("достижение не найдено (id=%d): %w", id, err)
		}
		return nil, fmt.Errorf("ошибка чтения достижения (id=%d): %w", id, err)
	}
	return &a, nil
}

// Award выдаёт достижение пользователю.
// Идемпотентно: уникальный индекс (user_id, achievement_id) + ON CONFLICT DO NOTHING.
// Возвращает true, если строка реально вставлена (первая выдача),
// и false, если достижение уже было — это не ошибка.
func (r *Repository) Award(ctx context.Context, userID, achievementID int64) (bool, error) {
	query := `
		INSERT INTO user_achievements (user_id, achievement_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, achievement_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, userID, achievementID)
	if err != nil {
		return false, fmt.Errorf("ошибка выдачи достижения: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListForUser возвращает достижения пользователя в порядке получения.
func (r *Repository) ListForUser(ctx context.Context, userID int64) ([]*Achievement, error) {
	query := `
		SELECT a.id, a.title, a.description, a.created_at
		FROM achievements a
		JOIN user_achievements ua ON ua.achievement_id = a.id
		WHERE ua.user_id = $1
		ORDER BY ua.earned_at
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения достижений: %w", err)
	}
	defer rows.Close()

	var out []*Achievement
	for rows.Next() {
		var a Achievement
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования достижения: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// DeleteForUser удаляет все награды пользователя (стирание аккаунта).
func (r *Repository) DeleteForUser(ctx context.Context, userID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM user_achievements WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("ошибка удаления достижений пользователя: %w", err)
	}
	return nil
}
