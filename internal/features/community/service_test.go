package community

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecopunkt.ru/recycle-bot/internal/common"
	"ecopunkt.ru/recycle-bot/internal/config"
	"ecopunkt.ru/recycle-bot/internal/features/badge"
)

type fakeStore struct {
	mu     sync.Mutex
	tips   []*Tip
	thanks []*Thanks
}

func (f *fakeStore) CreateTip(_ context.Context, authorID int64, text string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &Tip{ID: int64(len(f.tips) + 1), AuthorID: authorID, Text: text, CreatedAt: time.Now()}
	f.tips = append(f.tips, t)
	return t.ID, nil
}

func (f *fakeStore) RandomTip(_ context.Context) (*Tip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.tips) == 0 {
		return nil, pgx.ErrNoRows
	}
	return f.tips[0], nil
}

func (f *fakeStore) CountTipsByAuthor(_ context.Context, userID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, t := range f.tips {
		if t.AuthorID == userID {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) CreateThanks(_ context.Context, fromUserID, toUserID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.thanks = append(f.thanks, &Thanks{
		ID: int64(len(f.thanks) + 1), FromUserID: fromUserID, ToUserID: toUserID, CreatedAt: time.Now(),
	})
	return nil
}

func (f *fakeStore) CountThanksGivenSince(_ context.Context, fromUserID int64, since time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, th := range f.thanks {
		if th.FromUserID == fromUserID && !th.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) HasThanksBetweenSince(_ context.Context, fromUserID, toUserID int64, since time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, th := range f.thanks {
		if th.FromUserID == fromUserID && th.ToUserID == toUserID && !th.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CountThanksReceived(_ context.Context, userID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, th := range f.thanks {
		if th.ToUserID == userID {
			count++
		}
	}
	return count, nil
}

type fakeVisibility struct {
	hidden map[int64]bool
}

func (f *fakeVisibility) IsContributionVisible(_ context.Context, userID int64) bool {
	return !f.hidden[userID]
}

type fakeBadges struct {
	mu    sync.Mutex
	users []int64
}

func (f *fakeBadges) CheckAndAward(_ context.Context, userID int64) ([]badge.Badge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = append(f.users, userID)
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{ThanksDailyLimit: 5, ThanksCooldownSameUserHours: 24}
}

func newTestService(store *fakeStore, vis *fakeVisibility, badges *fakeBadges) *Service {
	svc := NewService(store, vis, testConfig())
	svc.BindBadges(badges)
	return svc
}

func TestGiveThanksSelf(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakeVisibility{}, &fakeBadges{})
	err := svc.GiveThanks(context.Background(), 1, 1)
	assert.ErrorIs(t, err, common.ErrThanksSelf)
}

func TestGiveThanksDailyLimit(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &fakeVisibility{}, &fakeBadges{})

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.GiveThanks(context.Background(), 1, int64(10+i)))
	}

	err := svc.GiveThanks(context.Background(), 1, 99)
	assert.ErrorIs(t, err, common.ErrThanksDailyLimit)
	assert.Len(t, store.thanks, 5)
}

func TestGiveThanksSameUserCooldown(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &fakeVisibility{}, &fakeBadges{})

	require.NoError(t, svc.GiveThanks(context.Background(), 1, 2))

	err := svc.GiveThanks(context.Background(), 1, 2)
	assert.ErrorIs(t, err, common.ErrThanksAlreadyGave)

	// Другому пользователю — можно
	assert.NoError(t, svc.GiveThanks(context.Background(), 1, 3))
}

func TestGiveThanksTriggersBadgeRecheckForRecipient(t *testing.T) {
	badges := &fakeBadges{}
	svc := newTestService(&fakeStore{}, &fakeVisibility{}, badges)

	require.NoError(t, svc.GiveThanks(context.Background(), 1, 2))
	assert.Equal(t, []int64{2}, badges.users)
}

func TestGiveThanksHiddenRecipientSkipsBadges(t *testing.T) {
	badges := &fakeBadges{}
	vis := &fakeVisibility{hidden: map[int64]bool{2: true}}
	store := &fakeStore{}
	svc := newTestService(store, vis, badges)

	require.NoError(t, svc.GiveThanks(context.Background(), 1, 2))

	// Благодарность записана, но пересчёт значков не запускался
	assert.Len(t, store.thanks, 1)
	assert.Empty(t, badges.users)
}

func TestAddTipCountsTowardsBadges(t *testing.T) {
	badges := &fakeBadges{}
	store := &fakeStore{}
	svc := newTestService(store, &fakeVisibility{}, badges)

	require.NoError(t, svc.AddTip(context.Background(), 1, "Сполосните банку перед сдачей"))

	count, err := svc.TipsAuthored(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, []int64{1}, badges.users)
}

func TestSocialCounters(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(store, &fakeVisibility{}, &fakeBadges{})

	require.NoError(t, svc.GiveThanks(context.Background(), 1, 2))
	require.NoError(t, svc.GiveThanks(context.Background(), 3, 2))

	received, err := svc.ThanksReceived(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), received)
}
