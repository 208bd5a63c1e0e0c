// Package admin — service.go содержит логику аутентификации, управления
// сессиями и административных действий: бан, удаление данных, статистика.
package admin

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/argon2"

	"ecopunkt.ru/recycle-bot/internal/common"
	"ecopunkt.ru/recycle-bot/internal/config"
	"ecopunkt.ru/recycle-bot/internal/features/members"
)

// MemberAdmin — операции над участниками, доступные админам.
type MemberAdmin interface {
	GetByUsername(ctx context.Context, username string) (*members.Member, error)
	SetBanned(ctx context.Context, userID int64, banned bool) error
}

// Eraser — удаление пользовательских данных одной подсистемы.
// Журнал сдач, значки и достижения реализуют его по отдельности,
// сервис прогоняет все при полном удалении аккаунта.
type Eraser interface {
	DeleteForUser(ctx context.Context, userID int64) error
}

// Service управляет админ-панелью.
type Service struct {
	repo     *Repository
	members  MemberAdmin
	erasers  []Eraser
	cfg      *config.Config
	states   map[int64]*State // Состояния диалогов (in-memory)
	statesMu sync.RWMutex
}

// NewService создаёт сервис админ-панели.
func NewService(repo *Repository, memberAdmin MemberAdmin, erasers []Eraser, cfg *config.Config) *Service {
	return &Service{
		repo:    repo,
		members: memberAdmin,
		erasers: erasers,
		cfg:     cfg,
		states:  make(map[int64]*State),
	}
}

// IsAdmin проверяет, входит ли пользователь в список администраторов.
func (s *Service) IsAdmin(userID int64) bool {
	for _, id := range s.cfg.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// VerifyPassword проверяет пароль администратора по хешу Argon2id.
// Защита от brute-force: 3 неудачные попытки = блокировка на 1 час.
func (s *Service) VerifyPassword(ctx context.Context, userID int64, password string) error {
	attempts, err := s.repo.GetRecentAttempts(ctx, userID, 1*time.Hour)
	if err != nil {
		return err
	}
	if attempts >= 3 {
		return common.ErrTooManyAttempts
	}

	match := verifyArgon2id(password, s.cfg.AdminPasswordHash)

	if err := s.repo.LogAttempt(ctx, userID, match); err != nil {
		log.WithError(err).Error("Ошибка записи попытки входа")
	}

	if !match {
		return common.ErrWrongPassword
	}

	session := &Session{
		UserID:       userID,
		SessionToken: generateSecureToken(),
		ExpiresAt:    time.Now().Add(24 * time.Hour),
	}
	return s.repo.CreateSession(ctx, session)
}

// HasActiveSession проверяет, есть ли у пользователя активная сессия.
func (s *Service) HasActiveSession(ctx context.Context, userID int64) bool {
	session, err := s.repo.GetActiveSession(ctx, userID)
	if err != nil || session == nil {
		return false
	}
	if err := s.repo.UpdateActivity(ctx, userID); err != nil {
		log.WithError(err).Debug("Не удалось обновить активность сессии")
	}
	return true
}

// Logout деактивирует сессию администратора.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	return s.repo.DeactivateSession(ctx, userID)
}

// SetBanned банит или разбанивает участника по username.
func (s *Service) SetBanned(ctx context.Context, username string, banned bool) (*members.Member, error) {
	m, err := s.members.GetByUsername(ctx, strings.TrimPrefix(username, "@"))
	if err != nil {
		return nil, common.ErrUserNotFound
	}
	if err := s.members.SetBanned(ctx, m.UserID, banned); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id": m.UserID,
		"banned":  banned,
	}).Warn("Изменён статус бана")
	return m, nil
}

// EraseUser удаляет ВСЕ данные участника: журнал сдач с обнулением
// агрегатов, значки, достижения. Необратимо.
func (s *Service) EraseUser(ctx context.Context, username string) (*members.Member, error) {
	m, err := s.members.GetByUsername(ctx, strings.TrimPrefix(username, "@"))
	if err != nil {
		return nil, common.ErrUserNotFound
	}

	for _, e := range s.erasers {
		if err := e.DeleteForUser(ctx, m.UserID); err != nil {
			return nil, fmt.Errorf("ошибка удаления данных пользователя %d: %w", m.UserID, err)
		}
	}

	log.WithField("user_id", m.UserID).Warn("Данные участника удалены")
	return m, nil
}

// GetStats возвращает сводку по сообществу.
func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	return s.repo.GetStats(ctx)
}

// GetState возвращает текущее состояние диалога.
func (s *Service) GetState(userID int64) *State {
	s.statesMu.RLock()
	defer s.statesMu.RUnlock()

	state, ok := s.states[userID]
	if !ok {
		return nil
	}
	if time.Now().After(state.ExpiresAt) {
		return nil
	}
	return state
}

// SetState устанавливает состояние диалога с 5-минутным таймаутом.
func (s *Service) SetState(userID int64, stateName string) {
	s.statesMu.Lock()
	defer s.statesMu.Unlock()

	s.states[userID] = &State{
		State:     stateName,
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}
}

// ClearState сбрасывает состояние диалога.
func (s *Service) ClearState(userID int64) {
	s.statesMu.Lock()
	defer s.statesMu.Unlock()
	delete(s.states, userID)
}

// --- Криптографические утилиты ---

// verifyArgon2id проверяет пароль по хешу Argon2id.
// Формат хеша: $argon2id$v=19$m=65536,t=3,p=2$<salt_base64>$<hash_base64>
func verifyArgon2id(password, encodedHash string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		log.Error("Некорректный формат хеша Argon2id")
		return false
	}

	var memory uint32
	var iterations uint32
	var parallelism uint8
	_, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism)
	if err != nil {
		log.WithError(err).Error("Ошибка парсинга параметров Argon2id")
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования соли")
		return false
	}

	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования хеша")
		return false
	}

	computedHash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(expectedHash)))

	// Сравнение в постоянном времени (защита от timing attack)
	return subtle.ConstantTimeCompare(computedHash, expectedHash) == 1
}

// generateSecureToken генерирует криптографически безопасный токен сессии.
func generateSecureToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return base64.URLEncoding.EncodeToString(b)
}
