// Package badge реализует движок значков: пересчёт накопленных значений
// по семействам и выдачу значков за пройденные пороги.
// models.go описывает каталог значков и семейства порогов.
package badge

import (
	"fmt"
	"time"
)

// Family — семейство порогов. Семь семейств повторяют категории вторсырья,
// остальные — синтетические: суммарный вес, число советов, число благодарностей.
type Family string

const (
	FamilyPlastic    Family = "PLASTIC"
	FamilyPaper      Family = "PAPER"
	FamilyGlass      Family = "GLASS"
	FamilyMetal      Family = "METAL"
	FamilyElectronic Family = "ELECTRONIC"
	FamilyOilFats    Family = "OIL_FATS"
	FamilyOrganic    Family = "ORGANIC"

	FamilyTotalWaste    Family = "TOTAL_WASTE"
	FamilyContributions Family = "CONTRIBUTIONS"
	FamilyLikesReceived Family = "LIKES_RECEIVED"
)

// Families — все семейства в стабильном порядке. Порядок важен:
// он определяет порядок выдачи и уведомлений при одной проверке.
var Families = []Family{
	FamilyPlastic, FamilyPaper, FamilyGlass, FamilyMetal,
	FamilyElectronic, FamilyOilFats, FamilyOrganic,
	FamilyTotalWaste, FamilyContributions, FamilyLikesReceived,
}

// wasteFamilies — семейства, чьё значение считается из журнала сдач.
var wasteFamilies = map[Family]bool{
	FamilyPlastic: true, FamilyPaper: true, FamilyGlass: true, FamilyMetal: true,
	FamilyElectronic: true, FamilyOilFats: true, FamilyOrganic: true,
}

// RussianTitle возвращает русское название семейства.
func (f Family) RussianTitle() string {
	switch f {
	case FamilyPlastic:
		return "Пластик"
	case FamilyPaper:
		return "Бумага"
	case FamilyGlass:
		return "Стекло"
	case FamilyMetal:
		return "Металл"
	case FamilyElectronic:
		return "Электроника"
	case FamilyOilFats:
		return "Масла и жиры"
	case FamilyOrganic:
		return "Органика"
	case FamilyTotalWaste:
		return "Всего сдано"
	case FamilyContributions:
		return "Советы"
	case FamilyLikesReceived:
		return "Благодарности"
	}
	return string(f)
}

// Badge — запись каталога значков. Пара (category, level) уникальна.
// Criteria — порог в граммах для весовых семейств и в штуках для остальных.
type Badge struct {
	ID        int64     `db:"id"`
	Family    Family    `db:"category"`
	Level     int       `db:"level"` // 1..5, по возрастанию
	Criteria  int64     `db:"criteria_value"`
	CreatedAt time.Time `db:"created_at"`
}

// Title возвращает отображаемое название значка.
// Пример: «Пластик — уровень 2».
func (b Badge) Title() string {
	return fmt.Sprintf("%s — уровень %d", b.Family.RussianTitle(), b.Level)
}

// UserBadge — факт получения значка. Пара (user_id, badge_id) уникальна —
// это и есть страховка от двойной выдачи.
type UserBadge struct {
	ID       int64     `db:"id"`
	UserID   int64     `db:"user_id"`
	BadgeID  int64     `db:"badge_id"`
	EarnedAt time.Time `db:"earned_at"`
}

// Progress — прогресс пользователя по одному семейству.
type Progress struct {
	Family      Family
	Current     int64   // Накопленное значение
	Required    int64   // Порог следующего уровня (0, если все уровни собраны)
	Percentage  float64 // Процент до следующего уровня, 0..100
	FullyEarned bool    // Все уровни семейства собраны
	NextLevel   int     // Номер следующего уровня (0, если собраны все)
}
