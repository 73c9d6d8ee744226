package shared

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Notify modes.
const (
	NotifyOff  = "off"
	NotifyLink = "link"
	NotifySend = "send"
)

type Config struct {
	AppEnv      string   `envconfig:"APP_ENV" default:"prod"`
	HTTPAddr    string   `envconfig:"HTTP_ADDR" default:":8080"`
	MetricsAddr string   `envconfig:"METRICS_ADDR"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`

	HTTPTimeout     time.Duration `envconfig:"HTTP_TIMEOUT" default:"60s"`
	PipelineTimeout time.Duration `envconfig:"PIPELINE_TIMEOUT" default:"50s"`
	UpstreamTimeout time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"20s"`

	OpenAIKey         string  `envconfig:"OPENAI_API_KEY"`
	OpenAIKeyLegacy   string  `envconfig:"OPEN_API_KEY"`
	OpenAIBaseURL     string  `envconfig:"OPENAI_BASE_URL"`
	OpenAIModel       string  `envconfig:"OPENAI_MODEL" default:"gpt-3.5-turbo-16k"`
	OpenAIMaxTokens   int     `envconfig:"OPENAI_MAX_TOKENS" default:"250"`
	OpenAITemperature float32 `envconfig:"OPENAI_TEMPERATURE" default:"0.7"`

	MapsKey     string `envconfig:"YANDEX_MAPS_API_KEY"`
	MapsBaseURL string `envconfig:"YANDEX_MAPS_BASE_URL" default:"https://search-maps.yandex.ru/v1/"`
	MapsLang    string `envconfig:"MAPS_LANG" default:"ru_RU"`
	MapsCityLL  string `envconfig:"MAPS_CITY_LL" default:"76.945465,43.238293"` // Almaty
	MapsCitySpn string `envconfig:"MAPS_CITY_SPN" default:"0.45,0.3"`
	MapsRPS     int    `envconfig:"MAPS_RPS" default:"5"`

	TwilioSID     string `envconfig:"ACCOUNT_SID"`
	TwilioToken   string `envconfig:"AUTH_TOKEN"`
	TwilioBaseURL string `envconfig:"TWILIO_BASE_URL" default:"https://api.twilio.com"`
	TwilioFrom    string `envconfig:"TWILIO_FROM" default:"whatsapp:+14155238886"` // Twilio WhatsApp sandbox
	NotifyMode    string `envconfig:"NOTIFY_MODE" default:"link"`

	RedisAddr    string        `envconfig:"REDIS_ADDR"`
	RedisPass    string        `envconfig:"REDIS_PASSWORD"`
	RedisDB      int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL     time.Duration `envconfig:"CACHE_TTL" default:"24h"`
	MissCacheTTL time.Duration `envconfig:"MISS_CACHE_TTL" default:"15m"`

	MySQLDSN string `envconfig:"MYSQL_DSN"`

	MaxLocationRunes   int    `envconfig:"MAX_LOCATION_RUNES" default:"100"`
	GeneratePromptFile string `envconfig:"PROMPT_GENERATE_FILE"`
	ExtractPromptFile  string `envconfig:"PROMPT_EXTRACT_FILE"`
	ApologyTemplate    string `envconfig:"APOLOGY_TEMPLATE"`

	// Loaded from the prompt files above; empty means built-in defaults.
	GeneratePrompt string `ignored:"true"`
	ExtractPrompt  string `ignored:"true"`
}

// Load reads .env (if present) and the process environment. It exits on invalid config.
func Load() Config {
	_ = godotenv.Load()

	c, err := FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if c.OpenAIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is empty")
	}
	if c.MapsKey == "" {
		log.Warn().Msg("YANDEX_MAPS_API_KEY is empty")
	}
	if c.NotifyMode == NotifySend && (c.TwilioSID == "" || c.TwilioToken == "") {
		log.Warn().Msg("NOTIFY_MODE=send without ACCOUNT_SID/AUTH_TOKEN, falling back to link")
		c.NotifyMode = NotifyLink
	}
	return c
}

// FromEnv builds a Config from the environment only.
func FromEnv() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, fmt.Errorf("envconfig: %w", err)
	}
	if c.OpenAIKey == "" {
		c.OpenAIKey = c.OpenAIKeyLegacy
	}

	c.NotifyMode = strings.ToLower(strings.TrimSpace(c.NotifyMode))
	switch c.NotifyMode {
	case NotifyOff, NotifyLink, NotifySend:
	default:
		return Config{}, fmt.Errorf("NOTIFY_MODE must be one of off|link|send, got %q", c.NotifyMode)
	}
	if c.PipelineTimeout <= 0 || c.UpstreamTimeout <= 0 {
		return Config{}, fmt.Errorf("PIPELINE_TIMEOUT and UPSTREAM_TIMEOUT must be positive")
	}

	var err error
	if c.GeneratePrompt, err = readOptional(c.GeneratePromptFile); err != nil {
		return Config{}, err
	}
	if c.ExtractPrompt, err = readOptional(c.ExtractPromptFile); err != nil {
		return Config{}, err
	}
	return c, nil
}

func readOptional(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read prompt %s: %w", path, err)
	}
	return strings.TrimSpace(string(b)), nil
}
