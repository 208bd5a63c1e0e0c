// Package members управляет участниками экосообщества: регистрацией, агрегатами, флагами.
// models.go описывает структуры данных для работы с таблицей members.
package members

import "time"

// Member представляет участника сообщества в базе данных.
// Каждый пользователь, написавший в COMMUNITY_CHAT_ID, автоматически
// создаётся в этой таблице.
//
// Поля TotalPoints и TotalEmissions — накопительные агрегаты журнала сдач.
// Их меняет ТОЛЬКО атомарный инкремент в ledger.Repository; любое другое
// изменение — баг.
type Member struct {
	ID          int64     `db:"id"`           // Автоинкрементный ID записи в БД
	UserID      int64     `db:"user_id"`      // Telegram user ID (уникальный)
	Username    string    `db:"username"`     // @username (может быть пустым)
	FirstName   string    `db:"first_name"`   // Имя пользователя
	LastName    string    `db:"last_name"`    // Фамилия (может быть пустой)
	IsAdmin     bool      `db:"is_admin"`     // Флаг администратора
	IsBanned    bool      `db:"is_banned"`    // Флаг бана
	IsAnonymous bool      `db:"is_anonymous"` // Скрывать активность (значки не выдаются публично)
	TotalPoints float64   `db:"total_points"` // Сумма экобаллов за все сдачи
	TotalCO2    float64   `db:"total_emissions"` // Сэкономленный CO2-эквивалент, кг
	JoinedAt    time.Time `db:"joined_at"`    // Когда вступил в чат
	CreatedAt   time.Time `db:"created_at"`   // Когда запись создана в БД
	UpdatedAt   time.Time `db:"updated_at"`   // Последнее обновление записи
}

// UpdateInfo содержит данные для обновления информации о пользователе.
// Используется, когда пользователь возвращается в чат и его имя/username могли измениться.
type UpdateInfo struct {
	Username  string // Новый @username
	FirstName string // Новое имя
	LastName  string // Новая фамилия
}

// DisplayName возвращает отображаемое имя пользователя.
// Если есть @username — возвращает его, иначе — имя + фамилию.
func (m *Member) DisplayName() string {
	if m.Username != "" {
		return "@" + m.Username
	}
	name := m.FirstName
	if m.LastName != "" {
		name += " " + m.LastName
	}
	return name
}

// IsContributionVisible сообщает, можно ли публично связывать активность
// с этим пользователем. Скрытым пользователям значки не начисляются —
// решение принимает вызывающая сторона (ledger/community), а не движок значков.
func (m *Member) IsContributionVisible() bool {
	return !m.IsAnonymous
}
