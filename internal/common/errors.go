// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Эти ошибки позволяют обработчикам различать типы проблем
// и отправлять пользователю понятные сообщения.
package common

import "errors"

// Ошибки журнала сдачи вторсырья
var (
	// ErrUnknownCategory — категория вторсырья не из списка допустимых
	ErrUnknownCategory = errors.New("неизвестная категория вторсырья")
	// ErrInvalidAmount — некорректный вес (ноль, отрицательный или больше лимита одной сдачи)
	ErrInvalidAmount = errors.New("вес должен быть положительным и не больше 100 кг за одну сдачу")
	// ErrUserNotFound — пользователь не найден в базе
	ErrUserNotFound = errors.New("пользователь не найден")
	// ErrUserBanned — пользователь заблокирован, его сдачи не принимаются
	ErrUserBanned = errors.New("пользователь заблокирован")
)

// Ошибки челленджей
var (
	// ErrChallengeNotFound — челлендж с таким ID не существует
	ErrChallengeNotFound = errors.New("челлендж не найден")
	// ErrChallengePrivate — челлендж приватный, вступить может только создатель
	ErrChallengePrivate = errors.New("это приватный челлендж")
	// ErrChallengeCompleted — челлендж уже завершён, вступить нельзя
	ErrChallengeCompleted = errors.New("челлендж уже завершён")
	// ErrChallengeExpired — дедлайн челленджа прошёл
	ErrChallengeExpired = errors.New("срок челленджа истёк")
	// ErrAlreadyJoined — пользователь уже участвует в этом челлендже
	ErrAlreadyJoined = errors.New("вы уже участвуете в этом челлендже")
	// ErrChallengeLimit — пользователь уже участвует в максимуме активных челленджей
	ErrChallengeLimit = errors.New("превышен лимит активных челленджей")
	// ErrRewardNotConfigured — у завершившегося челленджа нет награды.
	// Это ошибка данных, а не пользователя: челлендж создан без достижения-награды.
	ErrRewardNotConfigured = errors.New("у челленджа не настроена награда")
)

// Ошибки благодарностей (источник LIKES_RECEIVED для значков)
var (
	// ErrThanksSelf — попытка поблагодарить самого себя
	ErrThanksSelf = errors.New("нельзя благодарить самого себя")
	// ErrThanksDailyLimit — лимит благодарностей на день исчерпан
	ErrThanksDailyLimit = errors.New("лимит благодарностей на сегодня исчерпан")
	// ErrThanksAlreadyGave — этого пользователя сегодня уже благодарили
	ErrThanksAlreadyGave = errors.New("вы уже благодарили этого пользователя сегодня")
)

// Ошибки админки
var (
	// ErrNotAdmin — пользователь не является администратором
	ErrNotAdmin = errors.New("у вас нет прав администратора")
	// ErrWrongPassword — неверный пароль
	ErrWrongPassword = errors.New("неверный пароль")
	// ErrTooManyAttempts — слишком много неудачных попыток входа
	ErrTooManyAttempts = errors.New("слишком много попыток, подождите 1 час")
	// ErrSessionExpired — сессия истекла
	ErrSessionExpired = errors.New("сессия истекла, авторизуйтесь заново")
)
