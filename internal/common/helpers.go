// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: русская плюрализация, форматирование чисел и веса, работа с временем.
package common

import (
	"fmt"
	"math"
	"time"
)

// PluralizeGrams возвращает правильную форму слова «грамм» для числа n.
//
// Правила русского языка:
//   - n%10==1 И n%100!=11 → "грамм" (1, 21, 31, 101, ...)
//   - n%10 в [2,3,4] И n%100 НЕ в [12,13,14] → "грамма" (2, 3, 4, 22, 23, ...)
//   - Остальные случаи → "граммов" (0, 5-20, 25-30, 100, ...)
func PluralizeGrams(n int64) string {
	absN := int64(math.Abs(float64(n)))
	lastDigit := absN % 10
	lastTwoDigits := absN % 100

	if lastDigit == 1 && lastTwoDigits != 11 {
		return "грамм"
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return "грамма"
	}
	return "граммов"
}

// PluralizeBadges возвращает правильную форму слова «значок».
//
// Примеры:
//
//	PluralizeBadges(1) → "значок"
//	PluralizeBadges(3) → "значка"
//	PluralizeBadges(7) → "значков"
func PluralizeBadges(n int) string {
	absN := int(math.Abs(float64(n)))
	lastDigit := absN % 10
	lastTwoDigits := absN % 100

	if lastDigit == 1 && lastTwoDigits != 11 {
		return "значок"
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return "значка"
	}
	return "значков"
}

// PluralizeDays возвращает правильную форму слова «день» для числа n.
//
// Правила:
//   - 1, 21, 31 → "день"
//   - 2-4, 22-24 → "дня"
//   - 5-20, 25-30 → "дней"
func PluralizeDays(n int) string {
	absN := int(math.Abs(float64(n)))
	lastDigit := absN % 10
	lastTwoDigits := absN % 100

	if lastDigit == 1 && lastTwoDigits != 11 {
		return "день"
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return "дня"
	}
	return "дней"
}

// FormatGrams форматирует вес в читабельную строку.
// До килограмма — в граммах, дальше — в килограммах с одним знаком.
//
// Примеры:
//
//	FormatGrams(500)   → "500 граммов"
//	FormatGrams(1500)  → "1.5 кг"
//	FormatGrams(12000) → "12.0 кг"
func FormatGrams(grams int64) string {
	if grams < 1000 {
		return fmt.Sprintf("%d %s", grams, PluralizeGrams(grams))
	}
	return fmt.Sprintf("%.1f кг", float64(grams)/1000)
}

// FormatPoints форматирует экобаллы с одним знаком после запятой.
// Пример: FormatPoints(37.5) → "37.5 экобаллов"
func FormatPoints(points float64) string {
	return fmt.Sprintf("%.1f экобаллов", points)
}

// FormatEmissions форматирует сэкономленный CO2-эквивалент.
// Пример: FormatEmissions(1.234) → "1.23 кг CO₂"
func FormatEmissions(kg float64) string {
	return fmt.Sprintf("%.2f кг CO₂", kg)
}

// GetMoscowTime возвращает текущее время в часовом поясе Москвы (Europe/Moscow).
// Используется для дневных лимитов благодарностей и дедлайнов челленджей.
func GetMoscowTime() time.Time {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		// Если не удалось загрузить — используем UTC+3 вручную
		loc = time.FixedZone("MSK", 3*60*60)
	}
	return time.Now().In(loc)
}

// GetMoscowDate возвращает только дату (без времени) в часовом поясе Москвы.
func GetMoscowDate() time.Time {
	t := GetMoscowTime()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysLeft возвращает число полных календарных дней от сегодняшней
// московской даты до дедлайна. 0 — дедлайн сегодня, отрицательное — прошёл.
func DaysLeft(deadline time.Time) int {
	today := GetMoscowDate()
	d := deadline.In(today.Location())
	deadlineDate := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, today.Location())
	return int(deadlineDate.Sub(today).Hours() / 24)
}

// FormatDateTime форматирует время в формат "02.01.2006 15:04" (день.месяц.год часы:минуты).
// Используется для отображения дедлайнов челленджей.
func FormatDateTime(t time.Time) string {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		loc = time.FixedZone("MSK", 3*60*60)
	}
	return t.In(loc).Format("02.01.2006 15:04")
}
