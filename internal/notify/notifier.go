// Package notify отправляет пользователям уведомления о наградах и событиях.
// Доставка «отправил и забыл»: ошибки логируются, но никогда не влияют
// на уже записанное состояние (значок в базе важнее пропущенного сообщения).
package notify

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// Notifier — приёмник уведомлений, адресованных пользователю.
// Реализации не возвращают ошибку: неудачная доставка — не ошибка бизнес-логики.
type Notifier interface {
	// Notify отправляет личное сообщение пользователю.
	Notify(userID int64, text string)
	// NotifyMany отправляет одно и то же сообщение списку пользователей.
	NotifyMany(userIDs []int64, text string)
}

// TelegramNotifier отправляет уведомления личными сообщениями через Bot API.
type TelegramNotifier struct {
	api *tgbotapi.BotAPI
}

// NewTelegramNotifier создаёт Telegram-реализацию приёмника уведомлений.
func NewTelegramNotifier(api *tgbotapi.BotAPI) *TelegramNotifier {
	return &TelegramNotifier{api: api}
}

// Notify отправляет сообщение пользователю. Если пользователь не начинал
// диалог с ботом, Telegram вернёт ошибку — это нормально, просто логируем.
func (n *TelegramNotifier) Notify(userID int64, text string) {
	msg := tgbotapi.NewMessage(userID, text)
	if _, err := n.api.Send(msg); err != nil {
		log.WithError(err).WithField("user_id", userID).Debug("Не удалось отправить уведомление")
		return
	}
	log.WithField("user_id", userID).Debug("Уведомление отправлено")
}

// NotifyMany отправляет сообщение каждому из списка по очереди.
func (n *TelegramNotifier) NotifyMany(userIDs []int64, text string) {
	for _, id := range userIDs {
		n.Notify(id, text)
	}
}
