package badge

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore хранит каталог и выданные значки в памяти. Выдача защищена
// мьютексом ровно так, как её защищает уникальный индекс в БД.
type fakeStore struct {
	mu      sync.Mutex
	catalog []Badge
	earned  map[int64]map[int64]bool // userID → badgeID
	totals  map[int64]map[Family]int64
}

func newFakeStore(catalog []Badge) *fakeStore {
	return &fakeStore{
		catalog: catalog,
		earned:  make(map[int64]map[int64]bool),
		totals:  make(map[int64]map[Family]int64),
	}
}

func (f *fakeStore) setTotals(userID int64, totals map[Family]int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.totals[userID] = totals
}

func (f *fakeStore) WasteTotals(_ context.Context, userID int64) (map[Family]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[Family]int64)
	for fam, v := range f.totals[userID] {
		out[fam] = v
	}
	return out, nil
}

func (f *fakeStore) ListUnearned(_ context.Context, userID int64, family Family, value int64) ([]Badge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Badge
	for _, b := range f.catalog {
		if b.Family != family || b.Criteria > value {
			continue
		}
		if f.earned[userID][b.ID] {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out, nil
}

func (f *fakeStore) InsertUserBadge(_ context.Context, userID, badgeID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.earned[userID] == nil {
		f.earned[userID] = make(map[int64]bool)
	}
	if f.earned[userID][badgeID] {
		return false, nil
	}
	f.earned[userID][badgeID] = true
	return true, nil
}

func (f *fakeStore) ListByFamily(_ context.Context, family Family) ([]Badge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Badge
	for _, b := range f.catalog {
		if b.Family == family {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out, nil
}

func (f *fakeStore) EarnedLevels(_ context.Context, userID int64) (map[Family]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[Family]int)
	for _, b := range f.catalog {
		if f.earned[userID][b.ID] && b.Level > out[b.Family] {
			out[b.Family] = b.Level
		}
	}
	return out, nil
}

func (f *fakeStore) CountForUser(_ context.Context, userID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.earned[userID]), nil
}

type fakeSocial struct {
	tips   int64
	thanks int64
}

func (f *fakeSocial) TipsAuthored(_ context.Context, _ int64) (int64, error)   { return f.tips, nil }
func (f *fakeSocial) ThanksReceived(_ context.Context, _ int64) (int64, error) { return f.thanks, nil }

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeNotifier) Notify(_ int64, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, text)
}

func (f *fakeNotifier) NotifyMany(userIDs []int64, text string) {
	for range userIDs {
		f.Notify(0, text)
	}
}

func plasticCatalog() []Badge {
	return []Badge{
		{ID: 1, Family: FamilyPlastic, Level: 1, Criteria: 1000},
		{ID: 2, Family: FamilyPlastic, Level: 2, Criteria: 5000},
		{ID: 3, Family: FamilyPlastic, Level: 3, Criteria: 10000},
		{ID: 4, Family: FamilyPlastic, Level: 4, Criteria: 25000},
		{ID: 5, Family: FamilyPlastic, Level: 5, Criteria: 50000},
	}
}

func TestCheckAndAwardCrossesSeveralLevelsAtOnce(t *testing.T) {
	store := newFakeStore(plasticCatalog())
	store.setTotals(7, map[Family]int64{FamilyPlastic: 12000})
	notifier := &fakeNotifier{}
	svc := NewService(store, &fakeSocial{}, notifier)

	awarded, err := svc.CheckAndAward(context.Background(), 7)
	require.NoError(t, err)

	// 12 кг пластика разом проходит пороги 1, 5 и 10 кг — три значка.
	// TOTAL_WASTE в каталоге нет, так что только пластиковое семейство.
	require.Len(t, awarded, 3)
	assert.Equal(t, 1, awarded[0].Level)
	assert.Equal(t, 2, awarded[1].Level)
	assert.Equal(t, 3, awarded[2].Level)
	assert.Len(t, notifier.messages, 3)
}

func TestCheckAndAwardIsIdempotent(t *testing.T) {
	store := newFakeStore(plasticCatalog())
	store.setTotals(7, map[Family]int64{FamilyPlastic: 6000})
	svc := NewService(store, &fakeSocial{}, &fakeNotifier{})

	first, err := svc.CheckAndAward(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, first, 2)

	// Повторный запуск без новой активности — пусто, без ошибок
	second, err := svc.CheckAndAward(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestCheckAndAwardConcurrentDuplicateRace(t *testing.T) {
	store := newFakeStore(plasticCatalog())
	store.setTotals(7, map[Family]int64{FamilyPlastic: 12000})
	notifier := &fakeNotifier{}
	svc := NewService(store, &fakeSocial{}, notifier)

	var wg sync.WaitGroup
	results := make([][]Badge, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			awarded, err := svc.CheckAndAward(context.Background(), 7)
			assert.NoError(t, err)
			results[idx] = awarded
		}(i)
	}
	wg.Wait()

	// Сколько бы проверок ни бежало параллельно, каждый значок
	// достаётся ровно одной из них.
	total := 0
	for _, r := range results {
		total += len(r)
	}
	assert.Equal(t, 3, total)
	assert.Len(t, notifier.messages, 3)
}

func TestCheckAndAwardSocialFamilies(t *testing.T) {
	catalog := []Badge{
		{ID: 10, Family: FamilyContributions, Level: 1, Criteria: 1},
		{ID: 11, Family: FamilyContributions, Level: 2, Criteria: 5},
		{ID: 20, Family: FamilyLikesReceived, Level: 1, Criteria: 1},
	}
	store := newFakeStore(catalog)
	svc := NewService(store, &fakeSocial{tips: 5, thanks: 0}, &fakeNotifier{})

	awarded, err := svc.CheckAndAward(context.Background(), 7)
	require.NoError(t, err)

	require.Len(t, awarded, 2)
	for _, b := range awarded {
		assert.Equal(t, FamilyContributions, b.Family)
	}
}

func TestCheckAndAwardTotalWasteAcrossCategories(t *testing.T) {
	catalog := []Badge{
		{ID: 30, Family: FamilyTotalWaste, Level: 1, Criteria: 5000},
	}
	store := newFakeStore(catalog)
	// По отдельности ни одна категория порог не проходит, суммарно — да
	store.setTotals(7, map[Family]int64{FamilyPlastic: 3000, FamilyPaper: 2500})
	svc := NewService(store, &fakeSocial{}, &fakeNotifier{})

	awarded, err := svc.CheckAndAward(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, awarded, 1)
	assert.Equal(t, FamilyTotalWaste, awarded[0].Family)
}

func TestGetProgress(t *testing.T) {
	store := newFakeStore(plasticCatalog())
	store.setTotals(7, map[Family]int64{FamilyPlastic: 2500})
	svc := NewService(store, &fakeSocial{}, &fakeNotifier{})

	// Сначала выдаём первый уровень
	_, err := svc.CheckAndAward(context.Background(), 7)
	require.NoError(t, err)

	progress, err := svc.GetProgress(context.Background(), 7)
	require.NoError(t, err)

	var plastic *Progress
	for i := range progress {
		if progress[i].Family == FamilyPlastic {
			plastic = &progress[i]
		}
	}
	require.NotNil(t, plastic)

	assert.Equal(t, int64(2500), plastic.Current)
	assert.Equal(t, int64(5000), plastic.Required)
	assert.Equal(t, 2, plastic.NextLevel)
	assert.InDelta(t, 50.0, plastic.Percentage, 1e-9)
	assert.False(t, plastic.FullyEarned)
}
