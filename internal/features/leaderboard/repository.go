package leaderboard

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository — читающие запросы рейтингов. Ничего не пишет.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий рейтингов.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TopByPoints возвращает участников по убыванию экобаллов.
// Нулевые балансы не показываются; при равенстве — кто раньше вступил.
func (r *Repository) TopByPoints(ctx context.Context, limit int) ([]*Row, error) {
	query := `
		SELECT m.user_id, m.username, m.first_name, m.is_anonymous, m.total_points,
		       (SELECT COUNT(*) FROM user_badges ub WHERE ub.user_id = m.user_id)
		FROM members m
		WHERE m.is_banned = FALSE AND m.total_points > 0
		ORDER BY m.total_points DESC, m.id ASC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса рейтинга по баллам: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

// TopByBadgeCount возвращает участников по числу значков.
// INNER JOIN отсекает тех, у кого значков нет вовсе.
func (r *Repository) TopByBadgeCount(ctx context.Context, limit int) ([]*Row, error) {
	query := `
		SELECT m.user_id, m.username, m.first_name, m.is_anonymous, m.total_points,
		       COUNT(ub.badge_id) AS badge_count
		FROM members m
		JOIN user_badges ub ON ub.user_id = m.user_id
		WHERE m.is_banned = FALSE
		GROUP BY m.id, m.user_id, m.username, m.first_name, m.is_anonymous, m.total_points
		ORDER BY badge_count DESC, m.id ASC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса рейтинга по значкам: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

func scanRows(rows pgx.Rows) ([]*Row, error) {
	var result []*Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.UserID, &row.Username, &row.FirstName,
			&row.IsAnonymous, &row.Points, &row.BadgeCount); err != nil {
			return nil, fmt.Errorf("ошибка чтения строки рейтинга: %w", err)
		}
		result = append(result, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка обхода рейтинга: %w", err)
	}
	return result, nil
}
