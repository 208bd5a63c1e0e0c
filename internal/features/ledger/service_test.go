package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecopunkt.ru/recycle-bot/internal/common"
	"ecopunkt.ru/recycle-bot/internal/features/badge"
	"ecopunkt.ru/recycle-bot/internal/features/members"
)

// fakeStore имитирует репозиторий журнала. Агрегаты инкрементируются
// под мьютексом, как это делает сервер БД.
type fakeStore struct {
	mu          sync.Mutex
	entries     []*Entry
	totalPoints map[int64]float64
	totalCO2    map[int64]float64
	failInsert  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		totalPoints: make(map[int64]float64),
		totalCO2:    make(map[int64]float64),
	}
}

func (f *fakeStore) RecordEntry(_ context.Context, userID int64, category Category, grams int64, points, co2 float64) (*Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInsert != nil {
		return nil, f.failInsert
	}
	e := &Entry{
		ID:          int64(len(f.entries) + 1),
		UserID:      userID,
		Category:    category,
		AmountGrams: grams,
		CreatedAt:   time.Now(),
	}
	f.entries = append(f.entries, e)
	f.totalPoints[userID] += points
	f.totalCO2[userID] += co2
	return e, nil
}

func (f *fakeStore) ListForUser(_ context.Context, userID int64, limit int) ([]*Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Entry
	for _, e := range f.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) DeleteForUser(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept []*Entry
	for _, e := range f.entries {
		if e.UserID != userID {
			kept = append(kept, e)
		}
	}
	f.entries = kept
	f.totalPoints[userID] = 0
	f.totalCO2[userID] = 0
	return nil
}

type fakeMembers struct {
	members map[int64]*members.Member
}

func (f *fakeMembers) GetByUserID(_ context.Context, userID int64) (*members.Member, error) {
	m, ok := f.members[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return m, nil
}

type fakeEstimator struct {
	co2 float64
	err error
}

func (f *fakeEstimator) Estimate(_ context.Context, _ int64, _ string) (float64, error) {
	return f.co2, f.err
}

type fakeAdvancer struct {
	mu    sync.Mutex
	calls []int64
	err   error
}

func (f *fakeAdvancer) AdvanceForUser(_ context.Context, userID int64, _ int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, userID)
	return f.err
}

type fakeBadges struct {
	mu     sync.Mutex
	calls  int
	badges []badge.Badge
	err    error
}

func (f *fakeBadges) CheckAndAward(_ context.Context, _ int64) ([]badge.Badge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.badges, f.err
}

func newTestService(store *fakeStore, dir *fakeMembers, est *fakeEstimator, adv *fakeAdvancer, bd *fakeBadges) *Service {
	return NewService(store, dir, est, adv, bd, NewPointsTable(nil))
}

func visibleMember(userID int64) *fakeMembers {
	return &fakeMembers{members: map[int64]*members.Member{
		userID: {UserID: userID, FirstName: "Лена"},
	}}
}

func TestRecordEntryHappyPath(t *testing.T) {
	store := newFakeStore()
	adv := &fakeAdvancer{}
	bd := &fakeBadges{badges: []badge.Badge{{Family: badge.FamilyPlastic, Level: 1, Criteria: 1000}}}
	svc := newTestService(store, visibleMember(7), &fakeEstimator{co2: 1.25}, adv, bd)

	result, err := svc.RecordEntry(context.Background(), 7, Plastic, 500)
	require.NoError(t, err)

	assert.InDelta(t, 15.0, result.PointsDelta, 1e-9) // 500 * 0.03
	assert.InDelta(t, 1.25, result.EmissionsDelta, 1e-9)
	assert.Len(t, result.NewBadges, 1)
	assert.Equal(t, []int64{7}, adv.calls)
	assert.InDelta(t, 15.0, store.totalPoints[7], 1e-9)
	assert.InDelta(t, 1.25, store.totalCO2[7], 1e-9)
}

func TestRecordEntryValidation(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, visibleMember(7), &fakeEstimator{}, &fakeAdvancer{}, &fakeBadges{})

	_, err := svc.RecordEntry(context.Background(), 7, Category("WOOD"), 100)
	assert.ErrorIs(t, err, common.ErrUnknownCategory)

	_, err = svc.RecordEntry(context.Background(), 7, Plastic, 0)
	assert.ErrorIs(t, err, common.ErrInvalidAmount)

	_, err = svc.RecordEntry(context.Background(), 7, Plastic, -50)
	assert.ErrorIs(t, err, common.ErrInvalidAmount)

	// Абсурдный вес (10 тонн) режется лимитом одной сдачи
	_, err = svc.RecordEntry(context.Background(), 7, Plastic, 10_000_000)
	assert.ErrorIs(t, err, common.ErrInvalidAmount)

	_, err = svc.RecordEntry(context.Background(), 7, Plastic, MaxEntryGrams+1)
	assert.ErrorIs(t, err, common.ErrInvalidAmount)

	// Ровно на границе — принимается
	_, err = svc.RecordEntry(context.Background(), 7, Plastic, MaxEntryGrams)
	assert.NoError(t, err)
	assert.Len(t, store.entries, 1)
	store.entries = nil

	_, err = svc.RecordEntry(context.Background(), 999, Plastic, 100)
	assert.ErrorIs(t, err, common.ErrUserNotFound)

	// Ни одна отклонённая операция не должна оставить след в журнале
	assert.Empty(t, store.entries)
}

func TestRecordEntryBannedUser(t *testing.T) {
	dir := &fakeMembers{members: map[int64]*members.Member{
		7: {UserID: 7, IsBanned: true},
	}}
	store := newFakeStore()
	svc := newTestService(store, dir, &fakeEstimator{}, &fakeAdvancer{}, &fakeBadges{})

	_, err := svc.RecordEntry(context.Background(), 7, Plastic, 100)
	assert.ErrorIs(t, err, common.ErrUserBanned)
	assert.Empty(t, store.entries)
}

func TestRecordEntryEstimatorFailureRecordsZero(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, visibleMember(7),
		&fakeEstimator{err: errors.New("connection refused")}, &fakeAdvancer{}, &fakeBadges{})

	result, err := svc.RecordEntry(context.Background(), 7, Paper, 1000)
	require.NoError(t, err)

	assert.InDelta(t, 0.0, result.EmissionsDelta, 1e-9)
	assert.Len(t, store.entries, 1)
	assert.InDelta(t, 20.0, store.totalPoints[7], 1e-9)
}

func TestRecordEntryDownstreamFailuresDoNotRollBack(t *testing.T) {
	store := newFakeStore()
	adv := &fakeAdvancer{err: errors.New("challenge db down")}
	bd := &fakeBadges{err: errors.New("badge db down")}
	svc := newTestService(store, visibleMember(7), &fakeEstimator{co2: 1}, adv, bd)

	result, err := svc.RecordEntry(context.Background(), 7, Plastic, 100)
	require.NoError(t, err)
	assert.Len(t, store.entries, 1)
	assert.Empty(t, result.NewBadges)
}

func TestRecordEntryAnonymousSkipsBadges(t *testing.T) {
	dir := &fakeMembers{members: map[int64]*members.Member{
		7: {UserID: 7, IsAnonymous: true},
	}}
	bd := &fakeBadges{badges: []badge.Badge{{Family: badge.FamilyPlastic, Level: 1}}}
	adv := &fakeAdvancer{}
	svc := newTestService(newFakeStore(), dir, &fakeEstimator{}, adv, bd)

	result, err := svc.RecordEntry(context.Background(), 7, Plastic, 100)
	require.NoError(t, err)

	// Движок значков не вызывался вовсе, но челленджи продвинулись
	assert.Zero(t, bd.calls)
	assert.Empty(t, result.NewBadges)
	assert.Equal(t, []int64{7}, adv.calls)
}

func TestRecordEntryConcurrentNoLostUpdates(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, visibleMember(7), &fakeEstimator{co2: 0.5}, &fakeAdvancer{}, &fakeBadges{})

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.RecordEntry(context.Background(), 7, Plastic, 100)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, store.entries, n)
	assert.InDelta(t, float64(n)*3.0, store.totalPoints[7], 1e-6)
	assert.InDelta(t, float64(n)*0.5, store.totalCO2[7], 1e-6)
}

func TestEraseClearsJournal(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, visibleMember(7), &fakeEstimator{}, &fakeAdvancer{}, &fakeBadges{})

	_, err := svc.RecordEntry(context.Background(), 7, Plastic, 100)
	require.NoError(t, err)

	require.NoError(t, svc.Erase(context.Background(), 7))
	assert.Empty(t, store.entries)
	assert.Zero(t, store.totalPoints[7])
}
