// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, репозитории, сервисы, обработчики,
// фильтры и собирает всё в один объект Bot.
package app

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"ecopunkt.ru/recycle-bot/internal/bot"
	"ecopunkt.ru/recycle-bot/internal/bot/filters"
	"ecopunkt.ru/recycle-bot/internal/config"
	"ecopunkt.ru/recycle-bot/internal/db/postgres"
	"ecopunkt.ru/recycle-bot/internal/emissions"
	"ecopunkt.ru/recycle-bot/internal/features/achievement"
	"ecopunkt.ru/recycle-bot/internal/features/admin"
	"ecopunkt.ru/recycle-bot/internal/features/badge"
	"ecopunkt.ru/recycle-bot/internal/features/challenge"
	"ecopunkt.ru/recycle-bot/internal/features/community"
	"ecopunkt.ru/recycle-bot/internal/features/leaderboard"
	"ecopunkt.ru/recycle-bot/internal/features/ledger"
	"ecopunkt.ru/recycle-bot/internal/features/members"
	"ecopunkt.ru/recycle-bot/internal/jobs"
	"ecopunkt.ru/recycle-bot/internal/notify"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	DB        *pgxpool.Pool
	BotAPI    *tgbotapi.BotAPI
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Telegram Bot API ===
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	botAPI.Debug = cfg.AppEnv == "development"
	log.Infof("Авторизован как @%s", botAPI.Self.UserName)

	notifier := notify.NewTelegramNotifier(botAPI)
	estimator := emissions.NewClient(cfg.EmissionsAPIURL, cfg.EmissionsTimeout)

	// === 3. Репозитории ===
	memberRepo := members.NewRepository(pool)
	ledgerRepo := ledger.NewRepository(pool)
	badgeRepo := badge.NewRepository(pool)
	achievementRepo := achievement.NewRepository(pool)
	challengeRepo := challenge.NewRepository(pool)
	communityRepo := community.NewRepository(pool)
	leaderboardRepo := leaderboard.NewRepository(pool)
	adminRepo := admin.NewRepository(pool)

	// === 4. Сервисы ===
	memberService := members.NewService(memberRepo)
	achievementService := achievement.NewService(achievementRepo)
	communityService := community.NewService(communityRepo, memberService, cfg)
	badgeService := badge.NewService(badgeRepo, communityService, notifier)
	communityService.BindBadges(badgeService)
	challengeService := challenge.NewService(challengeRepo, achievementService, notifier, cfg)
	pointsTable := ledger.NewPointsTable(cfg.LedgerExtraCoefficients)
	ledgerService := ledger.NewService(ledgerRepo, memberService, estimator,
		challengeService, badgeService, pointsTable)
	leaderboardService := leaderboard.NewService(leaderboardRepo, cfg)
	adminService := admin.NewService(adminRepo, memberService,
		[]admin.Eraser{ledgerRepo, badgeRepo, achievementRepo}, cfg)

	// === 5. Обработчики ===
	memberHandler := members.NewHandler(memberService, botAPI)
	ledgerHandler := ledger.NewHandler(ledgerService, botAPI)
	badgeHandler := badge.NewHandler(badgeService, botAPI)
	challengeHandler := challenge.NewHandler(challengeService, botAPI)
	communityHandler := community.NewHandler(communityService, botAPI)
	leaderboardHandler := leaderboard.NewHandler(leaderboardService, botAPI)
	adminHandler := admin.NewHandler(adminService, challengeService, botAPI, cfg)

	// === 6. Фильтры ===
	chatFilter := filters.NewChatFilter(cfg.CommunityChatID, memberService, botAPI)

	// === 7. Собираем бота ===
	b := bot.New(
		botAPI, cfg,
		memberService,
		memberHandler,
		ledgerHandler,
		badgeHandler,
		challengeHandler,
		communityHandler,
		leaderboardHandler,
		adminHandler,
		chatFilter,
	)

	// === 8. Планировщик задач ===
	scheduler := jobs.NewScheduler(challengeService, leaderboardService, cfg.CommunityChatID, b.SendMessage)

	return &App{
		Bot:       b,
		Scheduler: scheduler,
		DB:        pool,
		BotAPI:    botAPI,
	}, nil
}

// runMigrations выполняет все SQL-миграции.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if err := postgres.InitMigrations(ctx, pool); err != nil {
		return err
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Members},
		{2, migration002WasteEntries},
		{3, migration003Badges},
		{4, migration004Achievements},
		{5, migration005Challenges},
		{6, migration006Community},
		{7, migration007Admin},
	}

	for _, m := range migrations {
		applied, err := postgres.ExecMigrationSQL(ctx, pool, m.version, m.sql)
		if err != nil {
			return fmt.Errorf("миграция %d: %w", m.version, err)
		}
		if applied {
			log.Infof("Миграция %d применена", m.version)
		}
	}

	return nil
}

// SQL-миграции встроены в код для упрощения деплоя.

var migration001Members = `
CREATE TABLE IF NOT EXISTS members (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT UNIQUE NOT NULL,
    username VARCHAR(255),
    first_name VARCHAR(255) NOT NULL,
    last_name VARCHAR(255),
    is_admin BOOLEAN DEFAULT FALSE,
    is_banned BOOLEAN DEFAULT FALSE,
    is_anonymous BOOLEAN DEFAULT FALSE,
    total_points DOUBLE PRECISION DEFAULT 0,
    total_emissions DOUBLE PRECISION DEFAULT 0,
    joined_at TIMESTAMP DEFAULT NOW(),
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_members_user_id ON members(user_id);
CREATE INDEX IF NOT EXISTS idx_members_username ON members(username);
CREATE INDEX IF NOT EXISTS idx_members_total_points ON members(total_points DESC);
`

var migration002WasteEntries = `
CREATE TABLE IF NOT EXISTS waste_entries (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES members(user_id),
    category VARCHAR(32) NOT NULL,
    amount_grams BIGINT NOT NULL,
    created_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_waste_entries_user_id ON waste_entries(user_id);
CREATE INDEX IF NOT EXISTS idx_waste_entries_user_category ON waste_entries(user_id, category);
CREATE INDEX IF NOT EXISTS idx_waste_entries_created_at ON waste_entries(created_at DESC);
`

var migration003Badges = `
CREATE TABLE IF NOT EXISTS badges (
    id BIGSERIAL PRIMARY KEY,
    category VARCHAR(32) NOT NULL,
    level INTEGER NOT NULL,
    criteria_value BIGINT NOT NULL,
    created_at TIMESTAMP DEFAULT NOW(),
    UNIQUE (category, level)
);
CREATE TABLE IF NOT EXISTS user_badges (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES members(user_id),
    badge_id BIGINT NOT NULL REFERENCES badges(id),
    earned_at TIMESTAMP DEFAULT NOW(),
    UNIQUE (user_id, badge_id)
);
CREATE INDEX IF NOT EXISTS idx_user_badges_user_id ON user_badges(user_id);

INSERT INTO badges (category, level, criteria_value) VALUES
    ('PLASTIC', 1, 1000), ('PLASTIC', 2, 5000), ('PLASTIC', 3, 10000), ('PLASTIC', 4, 25000), ('PLASTIC', 5, 50000),
    ('PAPER', 1, 1000), ('PAPER', 2, 5000), ('PAPER', 3, 10000), ('PAPER', 4, 25000), ('PAPER', 5, 50000),
    ('GLASS', 1, 1000), ('GLASS', 2, 5000), ('GLASS', 3, 10000), ('GLASS', 4, 25000), ('GLASS', 5, 50000),
    ('METAL', 1, 1000), ('METAL', 2, 5000), ('METAL', 3, 10000), ('METAL', 4, 25000), ('METAL', 5, 50000),
    ('ELECTRONIC', 1, 1000), ('ELECTRONIC', 2, 5000), ('ELECTRONIC', 3, 10000), ('ELECTRONIC', 4, 25000), ('ELECTRONIC', 5, 50000),
    ('OIL_FATS', 1, 1000), ('OIL_FATS', 2, 5000), ('OIL_FATS', 3, 10000), ('OIL_FATS', 4, 25000), ('OIL_FATS', 5, 50000),
    ('ORGANIC', 1, 1000), ('ORGANIC', 2, 5000), ('ORGANIC', 3, 10000), ('ORGANIC', 4, 25000), ('ORGANIC', 5, 50000),
    ('TOTAL_WASTE', 1, 5000), ('TOTAL_WASTE', 2, 20000), ('TOTAL_WASTE', 3, 50000), ('TOTAL_WASTE', 4, 100000), ('TOTAL_WASTE', 5, 250000),
    ('CONTRIBUTIONS', 1, 1), ('CONTRIBUTIONS', 2, 5), ('CONTRIBUTIONS', 3, 15), ('CONTRIBUTIONS', 4, 30), ('CONTRIBUTIONS', 5, 50),
    ('LIKES_RECEIVED', 1, 1), ('LIKES_RECEIVED', 2, 10), ('LIKES_RECEIVED', 3, 25), ('LIKES_RECEIVED', 4, 50), ('LIKES_RECEIVED', 5, 100)
ON CONFLICT (category, level) DO NOTHING;
`

var migration004Achievements = `
CREATE TABLE IF NOT EXISTS achievements (
    id BIGSERIAL PRIMARY KEY,
    title VARCHAR(255) NOT NULL,
    description TEXT,
    created_at TIMESTAMP DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS user_achievements (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES members(user_id),
    achievement_id BIGINT NOT NULL REFERENCES achievements(id),
    earned_at TIMESTAMP DEFAULT NOW(),
    UNIQUE (user_id, achievement_id)
);
CREATE INDEX IF NOT EXISTS idx_user_achievements_user_id ON user_achievements(user_id);
`

var migration005Challenges = `
CREATE TABLE IF NOT EXISTS challenges (
    id BIGSERIAL PRIMARY KEY,
    title VARCHAR(255) NOT NULL,
    description TEXT,
    target_grams BIGINT,
    current_progress BIGINT NOT NULL DEFAULT 0,
    is_public BOOLEAN DEFAULT TRUE,
    creator_id BIGINT NOT NULL REFERENCES members(user_id),
    reward_achievement_id BIGINT REFERENCES achievements(id),
    deadline TIMESTAMP,
    completed BOOLEAN DEFAULT FALSE,
    completed_at TIMESTAMP,
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_challenges_completed ON challenges(completed);
CREATE INDEX IF NOT EXISTS idx_challenges_deadline ON challenges(deadline);
CREATE TABLE IF NOT EXISTS challenge_participants (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES members(user_id),
    challenge_id BIGINT NOT NULL REFERENCES challenges(id),
    joined_at TIMESTAMP DEFAULT NOW(),
    UNIQUE (user_id, challenge_id)
);
CREATE INDEX IF NOT EXISTS idx_challenge_participants_user ON challenge_participants(user_id);
CREATE INDEX IF NOT EXISTS idx_challenge_participants_challenge ON challenge_participants(challenge_id);
`

var migration006Community = `
CREATE TABLE IF NOT EXISTS tips (
    id BIGSERIAL PRIMARY KEY,
    author_id BIGINT NOT NULL REFERENCES members(user_id),
    text TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_tips_author_id ON tips(author_id);
CREATE TABLE IF NOT EXISTS thanks (
    id BIGSERIAL PRIMARY KEY,
    from_user_id BIGINT NOT NULL REFERENCES members(user_id),
    to_user_id BIGINT NOT NULL REFERENCES members(user_id),
    created_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_thanks_from_user ON thanks(from_user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_thanks_to_user ON thanks(to_user_id);
`

var migration007Admin = `
CREATE TABLE IF NOT EXISTS admin_sessions (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT REFERENCES members(user_id),
    session_token VARCHAR(255) UNIQUE,
    authenticated_at TIMESTAMP DEFAULT NOW(),
    expires_at TIMESTAMP,
    last_activity TIMESTAMP DEFAULT NOW(),
    is_active BOOLEAN DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS idx_admin_sessions_user_id ON admin_sessions(user_id);
CREATE TABLE IF NOT EXISTS admin_login_attempts (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT,
    attempt_time TIMESTAMP DEFAULT NOW(),
    success BOOLEAN DEFAULT FALSE
);
`
