// Package community — советы по переработке и благодарности между участниками.
package community

import "time"

// Tip — совет по переработке, добавленный участником.
type Tip struct {
	ID        int64     `db:"id"`
	AuthorID  int64     `db:"author_id"`
	Text      string    `db:"text"`
	CreatedAt time.Time `db:"created_at"`
}

// Thanks — благодарность одного участника другому.
type Thanks struct {
	ID         int64     `db:"id"`
	FromUserID int64     `db:"from_user_id"`
	ToUserID   int64     `db:"to_user_id"`
	CreatedAt  time.Time `db:"created_at"`
}
