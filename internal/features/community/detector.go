package community

import "strings"

// thanksMarkers — слова и символы, по которым ответ на сообщение
// считается благодарностью.
var thanksMarkers = []string{
	"спасибо",
	"благодарю",
	"благодарочка",
	"спс",
	"👍",
	"🙏",
	"❤️",
}

// IsThanks определяет, является ли текст благодарностью.
// Работает только для ответов на чужие сообщения — вызывающая сторона
// должна проверить наличие ReplyToMessage сама.
func IsThanks(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return false
	}
	for _, marker := range thanksMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
