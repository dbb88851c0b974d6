package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type NudgeTime struct {
	Hour   int
	Minute int
}

func (n NudgeTime) String() string {
	return fmt.Sprintf("%02d:%02d", n.Hour, n.Minute)
}

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	ServerPort string
	JWTSecret  string

	BotToken       string
	WebhookBaseURL string
	WebhookSecret  string
	AdminChatID    int64

	// Named IANA zone used for "today" boundaries and nudge trigger times.
	TimezoneName string
	Timezone     *time.Location
	NudgeTimes   []NudgeTime

	OpenAIAPIKey string
	OpenAIAPIURL string
	OpenAIModel  string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("db_host", "localhost")
	viper.SetDefault("db_port", "5432")
	viper.SetDefault("db_user", "postgres")
	viper.SetDefault("db_password", "postgres")
	viper.SetDefault("db_name", "mcqbot")
	viper.SetDefault("server_port", "8080")
	viper.SetDefault("tz_name", "UTC")
	viper.SetDefault("daily_nudge_times", "09:00,19:00")
	viper.SetDefault("openai_api_url", "https://api.openai.com/v1")
	viper.SetDefault("openai_model", "gpt-4o-mini")

	// Env vars alone are enough; a config.yaml is optional.
	_ = viper.ReadInConfig()

	cfg := &Config{
		DBHost:         viper.GetString("db_host"),
		DBPort:         viper.GetString("db_port"),
		DBUser:         viper.GetString("db_user"),
		DBPassword:     viper.GetString("db_password"),
		DBName:         viper.GetString("db_name"),
		ServerPort:     viper.GetString("server_port"),
		JWTSecret:      viper.GetString("jwt_secret"),
		BotToken:       viper.GetString("bot_token"),
		WebhookBaseURL: viper.GetString("webhook_base_url"),
		WebhookSecret:  viper.GetString("webhook_secret"),
		AdminChatID:    viper.GetInt64("admin_chat_id"),
		TimezoneName:   viper.GetString("tz_name"),
		OpenAIAPIKey:   viper.GetString("openai_api_key"),
		OpenAIAPIURL:   viper.GetString("openai_api_url"),
		OpenAIModel:    viper.GetString("openai_model"),
	}

	loc, err := time.LoadLocation(cfg.TimezoneName)
	if err != nil {
		return nil, fmt.Errorf("invalid TZ_NAME %q: %w", cfg.TimezoneName, err)
	}
	cfg.Timezone = loc

	cfg.NudgeTimes, err = ParseNudgeTimes(viper.GetString("daily_nudge_times"))
	if err != nil {
		return nil, fmt.Errorf("invalid DAILY_NUDGE_TIMES: %w", err)
	}

	return cfg, nil
}

// ParseNudgeTimes parses a comma-separated list of HH:MM trigger times,
// e.g. "09:00,19:30".
func ParseNudgeTimes(s string) ([]NudgeTime, error) {
	var times []NudgeTime
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		hm := strings.SplitN(part, ":", 2)
		if len(hm) != 2 {
			return nil, fmt.Errorf("%q is not in HH:MM format", part)
		}
		hour, err := strconv.Atoi(hm[0])
		if err != nil || hour < 0 || hour > 23 {
			return nil, fmt.Errorf("%q has an invalid hour", part)
		}
		minute, err := strconv.Atoi(hm[1])
		if err != nil || minute < 0 || minute > 59 {
			return nil, fmt.Errorf("%q has an invalid minute", part)
		}
		times = append(times, NudgeTime{Hour: hour, Minute: minute})
	}
	if len(times) == 0 {
		return nil, fmt.Errorf("no trigger times configured")
	}
	return times, nil
}
