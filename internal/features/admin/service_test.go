package admin

import (
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/argon2"

	"ecopunkt.ru/recycle-bot/internal/config"
)

// encodeArgon2id собирает хеш в том же формате, что scripts/generate_hash.go.
// Параметры маленькие, чтобы тесты не тормозили.
func encodeArgon2id(password string) string {
	salt := []byte("0123456789abcdef")
	var (
		memory      uint32 = 1024
		iterations  uint32 = 1
		parallelism uint8  = 1
	)
	hash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, 32)
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory, iterations, parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)
}

func TestVerifyArgon2id(t *testing.T) {
	encoded := encodeArgon2id("секретный-пароль")

	assert.True(t, verifyArgon2id("секретный-пароль", encoded))
	assert.False(t, verifyArgon2id("неверный", encoded))
	assert.False(t, verifyArgon2id("", encoded))
}

func TestVerifyArgon2idBrokenHash(t *testing.T) {
	assert.False(t, verifyArgon2id("пароль", "не-хеш-вообще"))
	assert.False(t, verifyArgon2id("пароль", "$argon2id$v=19$m=abc,t=3,p=2$c2FsdA$aGFzaA"))
	assert.False(t, verifyArgon2id("пароль", "$argon2id$v=19$m=1024,t=1,p=1$%%%$aGFzaA"))
}

func TestIsAdmin(t *testing.T) {
	svc := &Service{cfg: &config.Config{AdminIDs: []int64{100, 200}}}

	assert.True(t, svc.IsAdmin(100))
	assert.True(t, svc.IsAdmin(200))
	assert.False(t, svc.IsAdmin(300))
}

func TestDialogStates(t *testing.T) {
	svc := &Service{states: make(map[int64]*State)}

	assert.Nil(t, svc.GetState(42))

	svc.SetState(42, StateAwaitingPassword)
	state := svc.GetState(42)
	assert.NotNil(t, state)
	assert.Equal(t, StateAwaitingPassword, state.State)

	svc.ClearState(42)
	assert.Nil(t, svc.GetState(42))
}

func TestDialogStateExpires(t *testing.T) {
	svc := &Service{states: make(map[int64]*State)}
	svc.states[42] = &State{
		State:     StateAwaitingPassword,
		ExpiresAt: time.Now().Add(-time.Second),
	}

	assert.Nil(t, svc.GetState(42), "просроченное состояние не возвращается")
}

func TestGenerateSecureToken(t *testing.T) {
	a := generateSecureToken()
	b := generateSecureToken()

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
