package community

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository — хранилище советов и благодарностей в PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий сообщества.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateTip сохраняет совет.
func (r *Repository) CreateTip(ctx context.Context, authorID int64, text string) (int64, error) {
	query := `
		INSERT INTO tips (author_id, text)
		VALUES ($1, $2)
		RETURNING id`

	var id int64
	if err := r.pool.QueryRow(ctx, query, authorID, text).Scan(&id); err != nil {
		return 0, fmt.Errorf("ошибка сохранения совета: %w", err)
	}
	return id, nil
}

// RandomTip возвращает случайный совет. pgx.ErrNoRows — советов ещё нет.
func (r *Repository) RandomTip(ctx context.Context) (*Tip, error) {
	query := `
		SELECT id, author_id, text, created_at
		FROM tips
		ORDER BY RANDOM()
		LIMIT 1`

	var t Tip
	err := r.pool.QueryRow(ctx, query).Scan(&t.ID, &t.AuthorID, &t.Text, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения совета: %w", err)
	}
	return &t, nil
}

// CountTipsByAuthor возвращает число советов пользователя.
func (r *Repository) CountTipsByAuthor(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM tips WHERE author_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта советов: %w", err)
	}
	return count, nil
}

// CreateThanks сохраняет благодарность.
func (r *Repository) CreateThanks(ctx context.Context, fromUserID, toUserID int64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO thanks (from_user_id, to_user_id) VALUES ($1, $2)`,
		fromUserID, toUserID)
	if err != nil {
		return fmt.Errorf("ошибка сохранения благодарности: %w", err)
	}
	return nil
}

// CountThanksGivenSince возвращает число благодарностей, отправленных
// пользователем начиная с указанного момента. Используется для
// суточного лимита.
func (r *Repository) CountThanksGivenSince(ctx context.Context, fromUserID int64, since time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM thanks WHERE from_user_id = $1 AND created_at >= $2`,
		fromUserID, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта благодарностей: %w", err)
	}
	return count, nil
}

// HasThanksBetweenSince проверяет, благодарил ли уже один пользователь
// другого начиная с указанного момента (кулдаун на пару).
func (r *Repository) HasThanksBetweenSince(ctx context.Context, fromUserID, toUserID int64, since time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM thanks
			WHERE from_user_id = $1 AND to_user_id = $2 AND created_at >= $3
		)`, fromUserID, toUserID, since).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки благодарности: %w", err)
	}
	return exists, nil
}

// CountThanksReceived возвращает число полученных благодарностей.
func (r *Repository) CountThanksReceived(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM thanks WHERE to_user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта полученных благодарностей: %w", err)
	}
	return count, nil
}
