package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Port           string   `mapstructure:"port"`
		Env            string   `mapstructure:"env"`
		AllowedOrigins []string `mapstructure:"allowed_origins"`
		PublicURL      string   `mapstructure:"public_url"`
	} `mapstructure:"app"`
	DB struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
	} `mapstructure:"redis"`
	RateLimit struct {
		Limit  int           `mapstructure:"limit"`
		Window time.Duration `mapstructure:"window"`
	} `mapstructure:"rate_limit"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
	} `mapstructure:"kafka"`
	LLM struct {
		APIKey  string        `mapstructure:"api_key"`
		BaseURL string        `mapstructure:"base_url"`
		Model   string        `mapstructure:"model"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"llm"`
	Cloudinary struct {
		CloudName string `mapstructure:"cloud_name"`
		ApiKey    string `mapstructure:"api_key"`
		ApiSecret string `mapstructure:"api_secret"`
	} `mapstructure:"cloudinary"`
	Tracing struct {
		OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
		SampleRatio  float64 `mapstructure:"sample_ratio"`
	} `mapstructure:"tracing"`
}

// LLMEnabled reports whether a text-generation backend has been configured.
func (c Config) LLMEnabled() bool {
	return c.LLM.APIKey != ""
}

func LoadConfig(path string) (cfg Config, err error) {
	v := viper.New()

	if err := godotenv.Load(path + "/.env"); err != nil {
		log.Println("warning: .env file not found, use default.")
	}

	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err = v.ReadInConfig(); err != nil {
		log.Printf("note: config.yaml not found, read env only. Error: %v", err)
	}

	v.SetDefault("app.port", "5000")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("app.public_url", "http://localhost:3000")
	v.SetDefault("rate_limit.limit", 20)
	v.SetDefault("rate_limit.window", time.Minute)
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.timeout", 15*time.Second)
	v.SetDefault("tracing.sample_ratio", 1.0)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("app.port", "APP_PORT", "PORT")
	v.BindEnv("app.env", "APP_ENV")
	v.BindEnv("app.allowed_origins", "CORS_ALLOWED_ORIGINS")
	v.BindEnv("app.public_url", "PUBLIC_URL")
	v.BindEnv("db.dsn", "DB_DSN")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("rate_limit.limit", "RATE_LIMIT_LIMIT")
	v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")

	v.BindEnv("llm.api_key", "LLM_API_KEY")
	v.BindEnv("llm.base_url", "LLM_BASE_URL")
	v.BindEnv("llm.model", "LLM_MODEL")
	v.BindEnv("llm.timeout", "LLM_TIMEOUT")

	v.BindEnv("cloudinary.cloud_name", "CLOUDINARY_CLOUD_NAME")
	v.BindEnv("cloudinary.api_key", "CLOUDINARY_API_KEY")
	v.BindEnv("cloudinary.api_secret", "CLOUDINARY_API_SECRET")

	v.BindEnv("tracing.otlp_endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT", "JAEGER_OTLP_ENDPOINT")
	v.BindEnv("tracing.sample_ratio", "TRACING_SAMPLE_RATIO")

	err = v.Unmarshal(&cfg)
	return
}
