package envs

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"redigolite/pkg/utils"
)

const DefaultEnvFile = ".env"

type Envs struct {
	RedigoHost             string        `env:"REDIGO_HOST" envDefault:"127.0.0.1"`
	RedigoPort             int           `env:"REDIGO_PORT" envDefault:"6379"`
	DataExpirationInterval time.Duration `env:"DATA_EXPIRATION_INTERVAL" envDefault:"1m"` // 0 disables the background sweep
	MaxBulkLength          uint64        `env:"MAX_BULK_LENGTH" envDefault:"536870912"`
	MaxArrayLength         uint64        `env:"MAX_ARRAY_LENGTH" envDefault:"1048576"`
	StoreShardCount        int           `env:"STORE_SHARD_COUNT" envDefault:"16"`
	LogLevel               string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat              string        `env:"LOG_FORMAT" envDefault:"text"`
	MetricsAddr            string        `env:"METRICS_ADDR" envDefault:""`
}

// LoadEnv loads path into the process environment when it exists.
// Variables already set in the environment win over the file.
func LoadEnv(path string) (bool, error) {
	if path == "" {
		path = DefaultEnvFile
	}
	if !utils.FileExists(path) {
		return false, nil
	}
	if err := godotenv.Load(path); err != nil {
		return false, fmt.Errorf("loading %s: %w", path, err)
	}
	return true, nil
}

func Gets() (Envs, error) {
	var envs Envs

	if err := env.Parse(&envs); err != nil {
		return Envs{}, fmt.Errorf("parsing env variables: %w", err)
	}
	if err := envs.Validate(); err != nil {
		return Envs{}, err
	}

	return envs, nil
}

func (envs Envs) Validate() error {
	if envs.RedigoPort < 0 || envs.RedigoPort > 65535 {
		return fmt.Errorf("REDIGO_PORT %d out of range", envs.RedigoPort)
	}
	if envs.StoreShardCount <= 0 || envs.StoreShardCount&(envs.StoreShardCount-1) != 0 {
		return fmt.Errorf("STORE_SHARD_COUNT %d is not a power of two", envs.StoreShardCount)
	}
	if envs.DataExpirationInterval < 0 {
		return fmt.Errorf("DATA_EXPIRATION_INTERVAL %s is negative", envs.DataExpirationInterval)
	}
	if envs.MaxBulkLength == 0 || envs.MaxArrayLength == 0 {
		return fmt.Errorf("MAX_BULK_LENGTH and MAX_ARRAY_LENGTH must be positive")
	}
	return nil
}

func (envs Envs) Addr() string {
	return net.JoinHostPort(envs.RedigoHost, strconv.Itoa(envs.RedigoPort))
}
