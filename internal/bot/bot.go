// Package bot содержит главный модуль бота — инициализацию, запуск и остановку.
// bot.go подключает обработчики фич и запускает polling.
package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"ecopunkt.ru/recycle-bot/internal/bot/filters"
	"ecopunkt.ru/recycle-bot/internal/bot/middleware"
	"ecopunkt.ru/recycle-bot/internal/config"
	"ecopunkt.ru/recycle-bot/internal/features/admin"
	"ecopunkt.ru/recycle-bot/internal/features/badge"
	"ecopunkt.ru/recycle-bot/internal/features/challenge"
	"ecopunkt.ru/recycle-bot/internal/features/community"
	"ecopunkt.ru/recycle-bot/internal/features/leaderboard"
	"ecopunkt.ru/recycle-bot/internal/features/ledger"
	"ecopunkt.ru/recycle-bot/internal/features/members"
)

// Bot — главная структура бота, объединяющая все компоненты.
type Bot struct {
	api *tgbotapi.BotAPI
	cfg *config.Config

	chatFilter  *filters.ChatFilter
	rateLimiter *middleware.RateLimiter

	memberService *members.Service

	memberHandler      *members.Handler
	ledgerHandler      *ledger.Handler
	badgeHandler       *badge.Handler
	challengeHandler   *challenge.Handler
	communityHandler   *community.Handler
	leaderboardHandler *leaderboard.Handler
	adminHandler       *admin.Handler

	parser *CommandParser

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
}

// New создаёт новый экземпляр бота со всеми зависимостями.
func New(
	api *tgbotapi.BotAPI,
	cfg *config.Config,
	memberService *members.Service,
	memberHandler *members.Handler,
	ledgerHandler *ledger.Handler,
	badgeHandler *badge.Handler,
	challengeHandler *challenge.Handler,
	communityHandler *community.Handler,
	leaderboardHandler *leaderboard.Handler,
	adminHandler *admin.Handler,
	chatFilter *filters.ChatFilter,
) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		api:                api,
		cfg:                cfg,
		chatFilter:         chatFilter,
		rateLimiter:        middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		memberService:      memberService,
		memberHandler:      memberHandler,
		ledgerHandler:      ledgerHandler,
		badgeHandler:       badgeHandler,
		challengeHandler:   challengeHandler,
		communityHandler:   communityHandler,
		leaderboardHandler: leaderboardHandler,
		adminHandler:       adminHandler,
		parser:             NewCommandParser(),
		inflight:           make(chan struct{}, maxInFlight),
	}
}

// Start запускает polling обновлений от Telegram.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.BotUpdateTimeoutSeconds

	updates := b.api.GetUpdatesChan(u)

	log.WithFields(log.Fields{
		"max_inflight": b.cfg.BotMaxInflight,
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает сообщения...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			b.api.StopReceivingUpdates()
			b.rateLimiter.Close()
			return

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				return
			}

			// лимит параллелизма
			b.inflight <- struct{}{}
			go func(upd tgbotapi.Update) {
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer middleware.RecoverFromPanic(update.UpdateID)

	// Событие вступления новых участников
	if update.Message != nil && update.Message.NewChatMembers != nil {
		if update.Message.Chat != nil && update.Message.Chat.ID == b.cfg.CommunityChatID {
			b.handleNewMembers(ctx, update.Message.NewChatMembers)
		}
		return
	}

	if update.Message == nil || update.Message.Text == "" {
		return
	}

	message := update.Message
	middleware.LogMessage(message)

	if !b.chatFilter.CheckAccess(ctx, message) {
		return
	}

	if message.From != nil && !b.rateLimiter.Allow(message.From.ID) {
		log.WithField("user_id", message.From.ID).Debug("rate limited")
		return
	}

	chatID := message.Chat.ID
	userID := message.From.ID

	if err := b.memberService.EnsureMember(ctx, userID,
		message.From.UserName, message.From.FirstName, message.From.LastName,
	); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("EnsureMember failed")
	}

	// В личке сообщение может быть паролем админа
	if message.Chat.IsPrivate() {
		if b.adminHandler.HandlePasswordInput(ctx, chatID, userID, message.Text) {
			return
		}
	}

	// Благодарность ответом на сообщение
	if message.ReplyToMessage != nil && message.ReplyToMessage.From != nil &&
		community.IsThanks(message.Text) {
		b.communityHandler.HandleThanks(ctx, chatID, userID, message.ReplyToMessage.From.ID,
			displayName(message.From), displayName(message.ReplyToMessage.From))
		return
	}

	cmd, args, isCommand := b.parser.ParseCommand(message.Text)
	if isCommand {
		b.routeCommand(ctx, chatID, userID, message.Chat.IsPrivate(), cmd, args)
	}
}

// routeCommand маршрутизирует команду к нужному обработчику.
func (b *Bot) routeCommand(ctx context.Context, chatID, userID int64, private bool, cmd string, args []string) {
	log.WithFields(log.Fields{
		"cmd":  cmd,
		"args": args,
	}).Debug("routing command")

	switch cmd {
	case "start", "help", "помощь":
		b.sendMessage(chatID, helpText)

	case "сдал", "сдала":
		b.ledgerHandler.HandleSubmit(ctx, chatID, userID, args)

	case "история":
		b.ledgerHandler.HandleHistory(ctx, chatID, userID)

	case "профиль":
		b.memberHandler.HandleProfile(ctx, chatID, userID)

	case "анонимно":
		b.memberHandler.HandleToggleAnonymous(ctx, chatID, userID)

	case "прогресс":
		b.badgeHandler.HandleProgress(ctx, chatID, userID)

	case "топ":
		b.leaderboardHandler.HandleTop(ctx, chatID, args)

	case "челленджи":
		if b.cfg.FeatureChallengesEnabled {
			b.challengeHandler.HandleList(ctx, chatID)
		} else {
			b.sendMessage(chatID, "Челленджи временно отключены")
		}

	case "вступить":
		if b.cfg.FeatureChallengesEnabled {
			b.challengeHandler.HandleJoin(ctx, chatID, userID, args)
		}

	case "челлендж":
		if b.cfg.FeatureChallengesEnabled {
			b.challengeHandler.HandleCreate(ctx, chatID, userID, args)
		}

	case "совет":
		if b.cfg.FeatureTipsEnabled {
			b.communityHandler.HandleTip(ctx, chatID, userID, args)
		}

	// Админ-команды работают только в личке
	case "админ":
		if private {
			b.adminHandler.HandleAdmin(ctx, chatID, userID)
		}
	case "выход":
		if private {
			b.adminHandler.HandleLogout(ctx, chatID, userID)
		}
	case "бан":
		if private {
			b.adminHandler.HandleBan(ctx, chatID, userID, args, true)
		}
	case "разбан":
		if private {
			b.adminHandler.HandleBan(ctx, chatID, userID, args, false)
		}
	case "стереть":
		if private {
			b.adminHandler.HandleErase(ctx, chatID, userID, args)
		}
	case "стата":
		if private {
			b.adminHandler.HandleStats(ctx, chatID, userID)
		}
	case "оффчеллендж":
		if private {
			b.adminHandler.HandleOfficialChallenge(ctx, chatID, userID, args)
		}
	}
}

// handleNewMembers обрабатывает вступление новых участников.
func (b *Bot) handleNewMembers(ctx context.Context, newMembers []tgbotapi.User) {
	for _, user := range newMembers {
		if err := b.memberService.HandleNewMember(ctx, user.ID, user.UserName, user.FirstName, user.LastName); err != nil {
			log.WithError(err).WithField("user_id", user.ID).Warn("HandleNewMember failed")
		}
		log.WithField("user", user.UserName).Info("Новый участник обработан")
	}
}

// displayName выбирает имя для упоминания в чате.
func displayName(u *tgbotapi.User) string {
	if u.UserName != "" {
		return "@" + u.UserName
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return "участник"
}

const helpText = `♻️ Я считаю сдачу вторсырья. Команды:
!сдал <категория> <граммы> — зарегистрировать сдачу
!история — последние сдачи
!профиль — экобаллы и CO₂
!прогресс — прогресс по значкам
!топ [значки] — рейтинг
!челленджи / !вступить <id> / !челлендж — челленджи
!совет [текст] — советы по переработке
!анонимно — скрытый режим
Поблагодарить — ответьте «спасибо» на сообщение`

// SendMessage отправляет сообщение в произвольный чат (для планировщика).
func (b *Bot) SendMessage(chatID int64, text string) {
	b.sendMessage(chatID, text)
}

// sendMessage — утилита для отправки сообщений.
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}

// CommandParser парсит русские команды с префиксами !, . и /
type CommandParser struct {
	validPrefixes []string
}

// NewCommandParser создаёт парсер команд.
func NewCommandParser() *CommandParser {
	return &CommandParser{
		validPrefixes: []string{"!", ".", "/"},
	}
}

// ParseCommand разбирает текст на команду и аргументы.
func (p *CommandParser) ParseCommand(text string) (string, []string, bool) {
	text = strings.TrimSpace(text)

	hasPrefix := false
	for _, prefix := range p.validPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			hasPrefix = true
			break
		}
	}

	if !hasPrefix {
		return "", nil, false
	}

	text = strings.TrimSpace(text)
	parts := strings.Fields(text)

	if len(parts) == 0 {
		return "", nil, false
	}

	command := strings.ToLower(parts[0])
	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}

	return command, args, true
}
