// Package leaderboard — рейтинги участников по экобаллам и значкам.
package leaderboard

// Row — строка рейтинга.
type Row struct {
	UserID      int64
	Username    string
	FirstName   string
	IsAnonymous bool
	Points      float64
	BadgeCount  int64
}

// DisplayName возвращает имя для вывода в рейтинге.
// Скрытые пользователи показываются обезличенно.
func (r *Row) DisplayName() string {
	if r.IsAnonymous {
		return "Аноним"
	}
	if r.Username != "" {
		return "@" + r.Username
	}
	if r.FirstName != "" {
		return r.FirstName
	}
	return "Участник"
}
