// Package ledger ведёт журнал сдач вторсырья — ядро всей геймификации.
// models.go описывает категории вторсырья и структуру записи журнала.
package ledger

import (
	"strings"
	"time"
)

// Category — категория вторсырья. Хранится в БД текстом.
type Category string

// Фиксированный набор категорий. Новые категории — только через миграцию
// каталога значков, иначе пороги считать не от чего.
const (
	Plastic    Category = "PLASTIC"
	Paper      Category = "PAPER"
	Glass      Category = "GLASS"
	Metal      Category = "METAL"
	Electronic Category = "ELECTRONIC"
	OilFats    Category = "OIL_FATS"
	Organic    Category = "ORGANIC"
)

// Categories — все категории в стабильном порядке.
var Categories = []Category{Plastic, Paper, Glass, Metal, Electronic, OilFats, Organic}

// MaxEntryGrams — верхняя граница веса одной сдачи (100 кг).
// Больше за раз физически не приносят; всё сверх — опечатка или накрутка.
const MaxEntryGrams int64 = 100_000

// Valid сообщает, входит ли категория в фиксированный набор.
func (c Category) Valid() bool {
	switch c {
	case Plastic, Paper, Glass, Metal, Electronic, OilFats, Organic:
		return true
	}
	return false
}

// Title возвращает русское название категории для сообщений.
func (c Category) Title() string {
	switch c {
	case Plastic:
		return "пластик"
	case Paper:
		return "бумага"
	case Glass:
		return "стекло"
	case Metal:
		return "металл"
	case Electronic:
		return "электроника"
	case OilFats:
		return "масла и жиры"
	case Organic:
		return "органика"
	}
	return string(c)
}

// categoryAliases — разговорные названия категорий для парсинга команды
// «сдал <категория> <граммы>».
var categoryAliases = map[string]Category{
	"пластик":     Plastic,
	"plastic":     Plastic,
	"бумага":      Paper,
	"макулатура":  Paper,
	"paper":       Paper,
	"стекло":      Glass,
	"glass":       Glass,
	"металл":      Metal,
	"жесть":       Metal,
	"metal":       Metal,
	"электроника": Electronic,
	"техника":     Electronic,
	"electronic":  Electronic,
	"масло":       OilFats,
	"жиры":        OilFats,
	"oil":         OilFats,
	"органика":    Organic,
	"компост":     Organic,
	"organic":     Organic,
}

// ParseCategory разбирает пользовательский ввод в категорию.
// Принимает и разговорные русские названия, и канонические имена enum.
func ParseCategory(s string) (Category, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := categoryAliases[s]; ok {
		return c, true
	}
	c := Category(strings.ToUpper(s))
	return c, c.Valid()
}

// Entry — запись журнала сдач. Создаётся один раз и никогда не меняется;
// удаление возможно только целиком по пользователю (стирание аккаунта).
type Entry struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	Category    Category  `db:"category"`
	AmountGrams int64     `db:"amount_grams"`
	CreatedAt   time.Time `db:"created_at"`
}

// Result — итог операции «записать сдачу»: сама запись, дельты агрегатов
// и значки, начисленные этой сдачей.
type Result struct {
	Entry          *Entry
	PointsDelta    float64
	EmissionsDelta float64
	NewBadges      []string // названия новых значков («ПЛАСТИК, уровень 2»)
}
