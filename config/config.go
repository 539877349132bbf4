package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

var Cfg Config

type Config struct {
	// 服务配置
	ServerPort  string `env:"SERVER_PORT" envDefault:"8890"`
	ServerHost  string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // development, staging, production
	ServiceName string `env:"SERVICE_NAME" envDefault:"nosnooze"`

	// Redis 配置，闹钟列表和响铃会话都存在这里
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"anz"`

	// RabbitMQ 配置
	RabbitMQAddr     string `env:"RABBITMQ_ADDR" envDefault:"localhost"`
	RabbitMQPort     string `env:"RABBITMQ_PORT" envDefault:"5672"`
	RabbitMQUsername string `env:"RABBITMQ_USERNAME" envDefault:"guest"`
	RabbitMQPassword string `env:"RABBITMQ_PASSWORD" envDefault:"guest"`
	RabbitMQVhost    string `env:"RABBITMQ_VHOST" envDefault:"/"`

	// 闹钟列表存储 key，整张列表作为一个文档整存整取
	AlarmStoreKey string `env:"ALARM_STORE_KEY" envDefault:"alarms:all"`

	// 触发器扫描间隔（秒），平台只保证 best-effort
	EvaluateIntervalSeconds int `env:"EVALUATE_INTERVAL_SECONDS" envDefault:"60"`
	// 扫描锁 TTL（秒），持有者崩溃后由 TTL 兜底
	EvaluateLockSeconds int `env:"EVALUATE_LOCK_SECONDS" envDefault:"30"`

	// 响铃会话配置
	SessionTTLHours      int `env:"SESSION_TTL_HOURS" envDefault:"24"`
	SnoozeDefaultMinutes int `env:"SNOOZE_DEFAULT_MINUTES" envDefault:"5"`
	SnoozeMaxMinutes     int `env:"SNOOZE_MAX_MINUTES" envDefault:"30"`

	// 挑战配置
	CaptchaLength        int `env:"CHALLENGE_CAPTCHA_LENGTH" envDefault:"5"`
	CaptchaRegenFailures int `env:"CHALLENGE_CAPTCHA_REGEN_FAILURES" envDefault:"3"` // 连续失败这么多次后换一张
	FakeButtonCount      int `env:"CHALLENGE_FAKE_BUTTON_COUNT" envDefault:"8"`

	// Snowflake ID 生成器配置
	SnowflakeMachineID  int64 `env:"SNOWFLAKE_MACHINE_ID" envDefault:"1"`
	SnowflakeDataCenter int64 `env:"SNOWFLAKE_DATACENTER_ID" envDefault:"1"`

	// 日志配置
	LoggerLevel      string `env:"LOGGER_LEVEL" envDefault:"INFO"`
	LoggerFormat     string `env:"LOGGER_FORMAT" envDefault:"text"` // json, text
	LoggerOutputPath string `env:"LOGGER_OUTPUT_PATH" envDefault:"stdout"`

	// 链路追踪配置
	TracingEnabled bool   `env:"TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint   string `env:"OTLP_ENDPOINT" envDefault:"localhost:4317"`

	// 速率限制配置, 配置在中间件内
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPS     int  `env:"RATE_LIMIT_RPS" envDefault:"100"`
}

func init() {

	if err := godotenv.Load(); err != nil {

		log.Printf("WARN: Cannot load .env file: %v, using environment variables", err)
	}

	Cfg = Config{}
	if err := env.Parse(&Cfg); err != nil {
		log.Fatalf("Failed to parse environment variables: %v", err)
	}

	validateConfig()
}

func validateConfig() {
	if Cfg.EvaluateIntervalSeconds <= 0 {
		log.Fatal("EVALUATE_INTERVAL_SECONDS must be positive")
	}

	if Cfg.SnoozeDefaultMinutes <= 0 || Cfg.SnoozeDefaultMinutes > Cfg.SnoozeMaxMinutes {
		log.Fatal("SNOOZE_DEFAULT_MINUTES must be in (0, SNOOZE_MAX_MINUTES]")
	}

	if Cfg.CaptchaRegenFailures <= 0 {
		log.Fatal("CHALLENGE_CAPTCHA_REGEN_FAILURES must be positive")
	}
}

func (c *Config) GetRabbitMQURL() string {
	return "amqp://" + c.RabbitMQUsername + ":" + c.RabbitMQPassword + "@" + c.RabbitMQAddr + ":" + c.RabbitMQPort + c.RabbitMQVhost
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
