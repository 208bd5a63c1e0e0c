// Package ledger — repository.go выполняет операции с таблицей waste_entries
// и агрегатами участника. Запись сдачи и инкремент агрегатов идут в одной
// транзакции БД: либо происходят обе, либо ни одной.
package ledger

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository предоставляет методы для работы с журналом сдач.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий журнала.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// RecordEntry вставляет запись журнала и атомарно увеличивает агрегаты
// участника на подсчитанные дельты.
//
// Инкремент — строго серверный (`total_points = total_points + $2`),
// а не чтение-изменение-запись: параллельные сдачи одного пользователя
// не должны терять обновления.
func (r *Repository) RecordEntry(ctx context.Context, userID int64, category Category, grams int64, points, co2 float64) (*Entry, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var e Entry
	err = tx.QueryRow(ctx, `
		INSERT INTO waste_entries (user_id, category, amount_grams)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, category, amount_grams, created_at
	`, userID, category, grams).Scan(&e.ID, &e.UserID, &e.Category, &e.AmountGrams, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("ошибка записи сдачи: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE members
		SET total_points = total_points + $2,
		    total_emissions = total_emissions + $3,
		    updated_at = NOW()
		WHERE user_id = $1
	`, userID, points, co2)
	if err != nil {
		return nil, fmt.Errorf("ошибка обновления агрегатов: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return &e, nil
}

// ListForUser возвращает последние N сдач пользователя.
func (r *Repository) ListForUser(ctx context.Context, userID int64, limit int) ([]*Entry, error) {
	query := `
		SELECT id, user_id, category, amount_grams, created_at
		FROM waste_entries
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения сдач: %w", err)
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Category, &e.AmountGrams, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования сдачи: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// DeleteForUser удаляет все сдачи пользователя и обнуляет его агрегаты.
// Единственная операция удаления в журнале — стирание аккаунта.
func (r *Repository) DeleteForUser(ctx context.Context, userID int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM waste_entries WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("ошибка удаления сдач: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE members SET total_points = 0, total_emissions = 0, updated_at = NOW()
		WHERE user_id = $1
	`, userID); err != nil {
		return fmt.Errorf("ошибка обнуления агрегатов: %w", err)
	}

	return tx.Commit(ctx)
}
