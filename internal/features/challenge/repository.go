// Package challenge — repository.go выполняет операции с таблицами
// challenges и challenge_participants.
//
// Два запроса здесь несут главные инварианты:
//   - AddProgress: серверный инкремент с верхней границей (LEAST) —
//     прогресс не теряет обновления при параллельных сдачах и никогда
//     не переливается за цель;
//   - ClaimCompletion: перевод в завершённое состояние через
//     `WHERE completed = FALSE` — ровно один вызов «выигрывает» и
//     раздаёт награды, сколько бы сдач ни пришло одновременно.
package challenge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const challengeColumns = `id, title, description, target_grams, current_progress, is_public,
	       creator_id, reward_achievement_id, deadline, completed, completed_at, created_at`

// Repository предоставляет методы для работы с челленджами.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий челленджей.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новый челлендж и возвращает его с заполненным ID.
func (r *Repository) Create(ctx context.Context, c *Challenge) (*Challenge, error) {
	query := `
		INSERT INTO challenges (title, description, target_grams, is_public, creator_id,
		                        reward_achievement_id, deadline)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + challengeColumns
	created, err := scanChallenge(r.db.QueryRow(ctx, query,
		c.Title, c.Description, c.TargetGrams, c.IsPublic, c.CreatorID, c.RewardID, c.Deadline,
	))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания челленджа: %w", err)
	}
	return created, nil
}

// GetByID возвращает челлендж по ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Challenge, error) {
	query := `SELECT ` + challengeColumns + ` FROM challenges WHERE id = $1`
	c, err := scanChallenge(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("челлендж не найден (id=%d): %w", id, err)
		}
		return nil, fmt.Errorf("ошибка чтения челленджа (id=%d): %w", id, err)
	}
	return c, nil
}

// ListActiveForUser возвращает незавершённые челленджи, в которых участвует
// пользователь.
func (r *Repository) ListActiveForUser(ctx context.Context, userID int64) ([]*Challenge, error) {
	query := `
		SELECT ` + challengeColumns + `
		FROM challenges c
		JOIN challenge_participants p ON p.challenge_id = c.id
		WHERE p.user_id = $1 AND c.completed = FALSE
		ORDER BY c.id
	`
	return r.queryChallenges(ctx, query, userID)
}

// ListOpen возвращает публичные незавершённые челленджи (для списка в чате).
func (r *Repository) ListOpen(ctx context.Context, limit int) ([]*Challenge, error) {
	query := `
		SELECT ` + challengeColumns + `
		FROM challenges c
		WHERE c.is_public = TRUE AND c.completed = FALSE
		ORDER BY c.id
		LIMIT $1
	`
	return r.queryChallenges(ctx, query, limit)
}

// AddProgress атомарно добавляет граммы к прогрессу незавершённого челленджа.
// Верхняя граница — цель: если добавка перелилась бы за target_grams,
// сохраняется ровно target_grams. Для челленджей без цели границы нет.
//
// Возвращает прогресс и цель ПОСЛЕ добавления. Если челлендж уже завершён
// (строка не подошла под WHERE) — возвращает ошибку с pgx.ErrNoRows.
func (r *Repository) AddProgress(ctx context.Context, challengeID, grams int64) (current int64, target *int64, err error) {
	query := `
		UPDATE challenges
		SET current_progress = LEAST(current_progress + $2,
		                             COALESCE(target_grams, current_progress + $2)),
		    updated_at = NOW()
		WHERE id = $1 AND completed = FALSE
		RETURNING current_progress, target_grams
	`
	err = r.db.QueryRow(ctx, query, challengeID, grams).Scan(&current, &target)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil, fmt.Errorf("челлендж завершён или не найден (id=%d): %w", challengeID, err)
		}
		return 0, nil, fmt.Errorf("ошибка добавления прогресса: %w", err)
	}
	return current, target, nil
}

// ClaimCompletion переводит челлендж в завершённое состояние.
// Возвращает true только тому вызову, который реально перевёл строку —
// при одновременных завершающих сдачах награды раздаёт ровно один.
func (r *Repository) ClaimCompletion(ctx context.Context, challengeID int64) (bool, error) {
	query := `
		UPDATE challenges
		SET completed = TRUE, completed_at = NOW(), updated_at = NOW()
		WHERE id = $1
		  AND completed = FALSE
		  AND target_grams IS NOT NULL
		  AND current_progress >= target_grams
	`
	tag, err := r.db.Exec(ctx, query, challengeID)
	if err != nil {
		return false, fmt.Errorf("ошибка завершения челленджа: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// CloseExpired закрывает незавершённые челленджи с прошедшим дедлайном
// и возвращает их список (для уведомления участников). Награда за
// просроченный челлендж не выдаётся.
func (r *Repository) CloseExpired(ctx context.Context, now time.Time) ([]*Challenge, error) {
	query := `
		UPDATE challenges
		SET completed = TRUE, completed_at = NOW(), updated_at = NOW()
		WHERE completed = FALSE AND deadline IS NOT NULL AND deadline < $1
		RETURNING ` + challengeColumns
	return r.queryChallenges(ctx, query, now)
}

// AddParticipant записывает участие. На дубликате пары (user, challenge)
// не вставляет ничего — гонку двойного вступления ловит уникальный индекс.
// Возвращает true, если участие реально создано.
func (r *Repository) AddParticipant(ctx context.Context, userID, challengeID int64) (bool, error) {
	query := `
		INSERT INTO challenge_participants (user_id, challenge_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, challenge_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, userID, challengeID)
	if err != nil {
		return false, fmt.Errorf("ошибка записи участия: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// IsParticipant проверяет, участвует ли пользователь в челлендже.
func (r *Repository) IsParticipant(ctx context.Context, userID, challengeID int64) (bool, error) {
	query := `
		SELECT EXISTS(SELECT 1 FROM challenge_participants
		              WHERE user_id = $1 AND challenge_id = $2)
	`
	var exists bool
	if err := r.db.QueryRow(ctx, query, userID, challengeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("ошибка проверки участия: %w", err)
	}
	return exists, nil
}

// CountActiveForUser считает участия пользователя в НЕзавершённых челленджах.
// Лимит «максимум 3» проверяется только в момент вступления: завершение
// челленджа освобождает слот само собой.
func (r *Repository) CountActiveForUser(ctx context.Context, userID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM challenge_participants p
		JOIN challenges c ON c.id = p.challenge_id
		WHERE p.user_id = $1 AND c.completed = FALSE
	`
	var count int
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта активных участий: %w", err)
	}
	return count, nil
}

// ListParticipants возвращает user_id всех участников челленджа
// в порядке вступления.
func (r *Repository) ListParticipants(ctx context.Context, challengeID int64) ([]int64, error) {
	query := `
		SELECT user_id FROM challenge_participants
		WHERE challenge_id = $1
		ORDER BY joined_at
	`
	rows, err := r.db.Query(ctx, query, challengeID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения участников: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ошибка сканирования участника: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *Repository) queryChallenges(ctx context.Context, query string, args ...interface{}) ([]*Challenge, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса челленджей: %w", err)
	}
	defer rows.Close()

	var out []*Challenge
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования челленджа: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanChallenge(row pgx.Row) (*Challenge, error) {
	var c Challenge
	err := row.Scan(
		&c.ID, &c.Title, &c.Description, &c.TargetGrams, &c.CurrentProgress,
		&c.IsPublic, &c.CreatorID, &c.RewardID, &c.Deadline,
		&c.Completed, &c.CompletedAt, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
