// Package middleware содержит промежуточные обработчики для логирования,
// восстановления после паники и rate-limiting.
package middleware

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// LogMessage логирует входящее сообщение: user_id, chat_id, username,
// первые 50 символов текста и признак ответа (важно для детекции благодарностей).
func LogMessage(message *tgbotapi.Message) {
	if message == nil || message.From == nil {
		return
	}

	// Обрезаем по рунам: команды у нас кириллические, срез по байтам
	// порезал бы символ пополам.
	text := []rune(message.Text)
	if len(text) > 50 {
		text = append(text[:50], '…')
	}

	log.WithFields(log.Fields{
		"user_id":  message.From.ID,
		"chat_id":  message.Chat.ID,
		"username": message.From.UserName,
		"text":     string(text),
		"is_reply": message.ReplyToMessage != nil,
	}).Debug("Входящее сообщение")
}
