// Package config загружает конфигурацию бота из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Telegram ---
	AdminIDsRaw      string  `envconfig:"ADMIN_IDS" required:"true"`
	AdminIDs         []int64 `envconfig:"-"` // заполним вручную
	TelegramBotToken string  `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	// ID чата экосообщества (единственный разрешённый групповой чат)
	CommunityChatID int64 `envconfig:"COMMUNITY_CHAT_ID" required:"true"`

	// --- Database ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	// Дефолт ставим "postgres" (имя сервиса в docker-compose), а для локалки переопределяй DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"botuser"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"recycle_bot"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Europe/Moscow"`

	// --- Bot runtime ---
	// Сколько апдейтов обрабатываем параллельно. Иначе "go на каждый апдейт" = утечка памяти при флуде.
	BotMaxInflight int `envconfig:"BOT_MAX_INFLIGHT" default:"64"`
	// Таймаут long polling (секунды)
	BotUpdateTimeoutSeconds int `envconfig:"BOT_UPDATE_TIMEOUT_SECONDS" default:"60"`

	// --- Admin ---
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH" required:"true"`

	// --- Ledger ---
	// Коэффициенты экобаллов за грамм для категорий без встроенного значения
	// (ELECTRONIC, OIL_FATS, ORGANIC). Формат: "electronic:0.05,organic:0.005".
	LedgerExtraCoefficientsRaw string             `envconfig:"LEDGER_EXTRA_COEFFICIENTS" default:""`
	LedgerExtraCoefficients    map[string]float64 `envconfig:"-"`

	// --- Emissions API (внешний расчёт CO2-эквивалента) ---
	EmissionsAPIURL  string        `envconfig:"EMISSIONS_API_URL" default:"http://emissions:8080"`
	EmissionsTimeout time.Duration `envconfig:"EMISSIONS_TIMEOUT" default:"2s"`

	// --- Challenges ---
	ChallengeMaxActive int `envconfig:"CHALLENGE_MAX_ACTIVE" default:"3"`

	// --- Thanks (благодарности) ---
	ThanksDailyLimit            int `envconfig:"THANKS_DAILY_LIMIT" default:"5"`
	ThanksCooldownSameUserHours int `envconfig:"THANKS_COOLDOWN_SAME_USER_HOURS" default:"24"`

	// --- Leaderboard ---
	LeaderboardSize int `envconfig:"LEADERBOARD_SIZE" default:"10"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"10"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// --- Feature Flags ---
	FeatureChallengesEnabled bool `envconfig:"FEATURE_CHALLENGES_ENABLED" default:"true"`
	FeatureTipsEnabled       bool `envconfig:"FEATURE_TIPS_ENABLED" default:"true"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) Validate() error {
	if c.CommunityChatID == 0 {
		return fmt.Errorf("COMMUNITY_CHAT_ID не задан или равен 0")
	}
	if c.BotMaxInflight <= 0 {
		return fmt.Errorf("BOT_MAX_INFLIGHT должен быть > 0")
	}
	if c.BotUpdateTimeoutSeconds <= 0 {
		return fmt.Errorf("BOT_UPDATE_TIMEOUT_SECONDS должен быть > 0")
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if c.ChallengeMaxActive <= 0 {
		return fmt.Errorf("CHALLENGE_MAX_ACTIVE должен быть > 0")
	}
	if c.EmissionsTimeout <= 0 {
		return fmt.Errorf("EMISSIONS_TIMEOUT должен быть > 0")
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	ids, err := parseInt64CSV(cfg.AdminIDsRaw)
	if err != nil {
		return nil, fmt.Errorf("ADMIN_IDS parse: %w", err)
	}
	cfg.AdminIDs = ids

	coeffs, err := parseCoefficientCSV(cfg.LedgerExtraCoefficientsRaw)
	if err != nil {
		return nil, fmt.Errorf("LEDGER_EXTRA_COEFFICIENTS parse: %w", err)
	}
	cfg.LedgerExtraCoefficients = coeffs

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseInt64CSV(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad int64 %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// parseCoefficientCSV разбирает строку вида "electronic:0.05,organic:0.005"
// в карту категория → коэффициент.
func parseCoefficientCSV(s string) (map[string]float64, error) {
	out := make(map[string]float64)
	s = strings.TrimSpace(s)
	if s == "" {
		return out, nil
	}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		key, val, found := strings.Cut(pair, ":")
		if !found {
			return nil, fmt.Errorf("bad pair %q (нужен формат категория:коэффициент)", pair)
		}
		coeff, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, fmt.Errorf("bad float %q: %w", val, err)
		}
		if coeff < 0 {
			return nil, fmt.Errorf("коэффициент %q отрицательный", pair)
		}
		out[strings.ToUpper(strings.TrimSpace(key))] = coeff
	}
	return out, nil
}
