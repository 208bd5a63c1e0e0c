// Package badge — repository.go выполняет операции с таблицами badges
// и user_badges, а также считает накопленные значения из журнала сдач.
package badge

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository предоставляет методы для работы с каталогом и выдачей значков.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий значков.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// WasteTotals возвращает сумму граммов по каждой категории журнала сдач.
// Категории без сдач в карте отсутствуют.
func (r *Repository) WasteTotals(ctx context.Context, userID int64) (map[Family]int64, error) {
	query := `
		SELECT category, COALESCE(SUM(amount_grams), 0)
		FROM waste_entries
		WHERE user_id = $1
		GROUP BY category
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчёта сумм по категориям: %w", err)
	}
	defer rows.Close()

	totals := make(map[Family]int64)
	for rows.Next() {
		var category string
		var total int64
		if err := rows.Scan(&category, &total); err != nil {
			return nil, fmt.Errorf("ошибка сканирования суммы: %w", err)
		}
		totals[Family(category)] = total
	}
	return totals, rows.Err()
}

// ListUnearned возвращает значки семейства с порогом <= value,
// которых у пользователя ещё нет, по возрастанию уровня.
//
// «Уже выдан» проверяется исключающим подзапросом — пересчёт от источника,
// а не диф состояний: повторный вызов после сбоя всегда безопасен.
func (r *Repository) ListUnearned(ctx context.Context, userID int64, family Family, value int64) ([]Badge, error) {
	query := `
		SELECT id, category, level, criteria_value, created_at
		FROM badges
		WHERE category = $2
		  AND criteria_value <= $3
		  AND id NOT IN (SELECT badge_id FROM user_badges WHERE user_id = $1)
		ORDER BY level
	`
	rows, err := r.db.Query(ctx, query, userID, family, value)
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска новых значков: %w", err)
	}
	defer rows.Close()

	var out []Badge
	for rows.Next() {
		var b Badge
		if err := rows.Scan(&b.ID, &b.Family, &b.Level, &b.Criteria, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования значка: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// InsertUserBadge выдаёт значок. Идемпотентно: уникальный индекс
// (user_id, badge_id) + ON CONFLICT DO NOTHING. Возвращает true, если
// строка реально вставлена; false на гонке двух одновременных проверок —
// это «уже выдан», не ошибка.
func (r *Repository) InsertUserBadge(ctx context.Context, userID, badgeID int64) (bool, error) {
	query := `
		INSERT INTO user_badges (user_id, badge_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, badge_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, userID, badgeID)
	if err != nil {
		return false, fmt.Errorf("ошибка выдачи значка: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListByFamily возвращает все уровни семейства по возрастанию.
func (r *Repository) ListByFamily(ctx context.Context, family Family) ([]Badge, error) {
	query := `
		SELECT id, category, level, criteria_value, created_at
		FROM badges
		WHERE category = $1
		ORDER BY level
	`
	rows, err := r.db.Query(ctx, query, family)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения каталога: %w", err)
	}
	defer rows.Close()

	var out []Badge
	for rows.Next() {
		var b Badge
		if err := rows.Scan(&b.ID, &b.Family, &b.Level, &b.Criteria, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования значка: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// EarnedLevels возвращает максимальный полученный уровень по каждому семейству.
func (r *Repository) EarnedLevels(ctx context.Context, userID int64) (map[Family]int, error) {
	query := `
		SELECT b.category, MAX(b.level)
		FROM user_badges ub
		JOIN badges b ON b.id = ub.badge_id
		WHERE ub.user_id = $1
		GROUP BY b.category
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения полученных уровней: %w", err)
	}
	defer rows.Close()

	levels := make(map[Family]int)
	for rows.Next() {
		var family string
		var level int
		if err := rows.Scan(&family, &level); err != nil {
			return nil, fmt.Errorf("ошибка сканирования уровня: %w", err)
		}
		levels[Family(family)] = level
	}
	return levels, rows.Err()
}

// CountForUser возвращает число значков пользователя.
func (r *Repository) CountForUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM user_badges WHERE user_id = $1`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта значков: %w", err)
	}
	return count, nil
}

// DeleteForUser удаляет все значки пользователя (стирание аккаунта).
func (r *Repository) DeleteForUser(ctx context.Context, userID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM user_badges WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("ошибка удаления значков пользователя: %w", err)
	}
	return nil
}
