package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Mongo MongoConfig
	Redis RedisConfig
	Sim   SimConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=parcel_tracking"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// SimConfig tunes the position simulator and its consumer.
type SimConfig struct {
	TickMS          int `env:"SIM_TICK_MS,           default=2000"`
	ConsumeMS       int `env:"SIM_CONSUME_MS,        default=1000"`
	StepsPerSegment int `env:"SIM_STEPS_PER_SEGMENT, default=5"`
	DwellTicks      int `env:"SIM_DWELL_TICKS,       default=5"`
	QueueCapacity   int `env:"SIM_QUEUE_CAPACITY,    default=1024"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}
