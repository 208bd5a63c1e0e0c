package leaderboard

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecopunkt.ru/recycle-bot/internal/config"
)

// fakeMember — участник в фейковом хранилище. Поле id имитирует
// первичный ключ members.id (порядок регистрации).
type fakeMember struct {
	id          int64
	userID      int64
	username    string
	firstName   string
	isAnonymous bool
	isBanned    bool
	points      float64
	badges      int64
}

// fakeStore повторяет семантику SQL-запросов рейтинга: забаненные
// отфильтрованы, нулевые значения не попадают в выборку, сортировка
// по убыванию значения со стабильным тай-брейком по id.
type fakeStore struct {
	members []fakeMember
}

func (f *fakeStore) TopByPoints(_ context.Context, limit int) ([]*Row, error) {
	var eligible []fakeMember
	for _, m := range f.members {
		if !m.isBanned && m.points > 0 {
			eligible = append(eligible, m)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].points != eligible[j].points {
			return eligible[i].points > eligible[j].points
		}
		return eligible[i].id < eligible[j].id
	})
	return toRows(eligible, limit), nil
}

func (f *fakeStore) TopByBadgeCount(_ context.Context, limit int) ([]*Row, error) {
	// INNER JOIN по user_badges: у кого нет ни одного значка — нет и строк
	var eligible []fakeMember
	for _, m := range f.members {
		if !m.isBanned && m.badges > 0 {
			eligible = append(eligible, m)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].badges != eligible[j].badges {
			return eligible[i].badges > eligible[j].badges
		}
		return eligible[i].id < eligible[j].id
	})
	return toRows(eligible, limit), nil
}

func toRows(members []fakeMember, limit int) []*Row {
	if len(members) > limit {
		members = members[:limit]
	}
	rows := make([]*Row, 0, len(members))
	for _, m := range members {
		rows = append(rows, &Row{
			UserID:      m.userID,
			Username:    m.username,
			FirstName:   m.firstName,
			IsAnonymous: m.isAnonymous,
			Points:      m.points,
			BadgeCount:  m.badges,
		})
	}
	return rows
}

func newTestService(store *fakeStore) *Service {
	return NewService(store, &config.Config{LeaderboardSize: 10})
}

func userIDs(rows []*Row) []int64 {
	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.UserID)
	}
	return ids
}

func TestZeroBadgeUserAbsentFromBadgeBoard(t *testing.T) {
	store := &fakeStore{members: []fakeMember{
		{id: 1, userID: 100, username: "sborshik", points: 120, badges: 3},
		// Баллы есть, значков нет: в рейтинге баллов есть, в рейтинге значков — нет
		{id: 2, userID: 200, username: "novichok", points: 40, badges: 0},
	}}
	svc := newTestService(store)

	byPoints, err := svc.TopByPoints(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{100, 200}, userIDs(byPoints))

	byBadges, err := svc.TopByBadgeCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{100}, userIDs(byBadges))
}

func TestZeroPointsAndBannedExcluded(t *testing.T) {
	store := &fakeStore{members: []fakeMember{
		{id: 1, userID: 100, points: 120, badges: 3},
		{id: 2, userID: 200, points: 0, badges: 0},
		{id: 3, userID: 300, points: 500, badges: 7, isBanned: true},
	}}
	svc := newTestService(store)

	byPoints, err := svc.TopByPoints(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{100}, userIDs(byPoints))

	byBadges, err := svc.TopByBadgeCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{100}, userIDs(byBadges))
}

func TestPointsTiebreakByRegistrationOrder(t *testing.T) {
	store := &fakeStore{members: []fakeMember{
		{id: 3, userID: 300, points: 50},
		{id: 1, userID: 100, points: 50},
		{id: 2, userID: 200, points: 80},
	}}
	svc := newTestService(store)

	rows, err := svc.TopByPoints(context.Background())
	require.NoError(t, err)

	// 80 баллов впереди; при равных 50 — кто раньше зарегистрировался
	assert.Equal(t, []int64{200, 100, 300}, userIDs(rows))
}

func TestLeaderboardSizeLimit(t *testing.T) {
	store := &fakeStore{}
	for i := int64(1); i <= 15; i++ {
		store.members = append(store.members, fakeMember{
			id: i, userID: 100 + i, points: float64(100 - i), badges: 1,
		})
	}
	svc := NewService(store, &config.Config{LeaderboardSize: 5})

	rows, err := svc.TopByPoints(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 5)
	assert.Equal(t, int64(101), rows[0].UserID)
}

func TestWeeklyDigest(t *testing.T) {
	store := &fakeStore{members: []fakeMember{
		{id: 1, userID: 100, username: "sborshik", points: 120},
		{id: 2, userID: 200, firstName: "Мария", points: 80},
		{id: 3, userID: 300, isAnonymous: true, points: 40},
	}}
	svc := newTestService(store)

	digest, err := svc.WeeklyDigest(context.Background())
	require.NoError(t, err)

	assert.Contains(t, digest, "🏆 Рейтинг недели")
	assert.Contains(t, digest, "🥇 @sborshik")
	assert.Contains(t, digest, "🥈 Мария")
	assert.Contains(t, digest, "🥉 Аноним")
	assert.NotContains(t, digest, "300", "ID скрытого участника не светится")
}

func TestWeeklyDigestEmptyWhenNoRows(t *testing.T) {
	svc := newTestService(&fakeStore{})

	digest, err := svc.WeeklyDigest(context.Background())
	require.NoError(t, err)
	assert.Empty(t, digest)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "@sborshik", (&Row{Username: "sborshik"}).DisplayName())
	assert.Equal(t, "Мария", (&Row{FirstName: "Мария"}).DisplayName())
	assert.Equal(t, "Аноним", (&Row{Username: "sborshik", IsAnonymous: true}).DisplayName())
	assert.Equal(t, "Участник", (&Row{}).DisplayName())
}
