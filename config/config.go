package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Config struct {
	Bind       string
	Port       int
	MongoURI   string
	MongoDB    string
	RedisAddr  string
	BackendURL string
	JWTSecret  string
	// AdminPasswordHash is an optional bcrypt hash accepted in addition to
	// the time-derived admin code.
	AdminPasswordHash string
	LogLevel          string
	LogFormat         string
	LogFile           string
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if c.JWTSecret == "" {
		return errors.New("jwt secret must not be empty")
	}
	if c.MongoURI == "" {
		return errors.New("mongo uri must not be empty")
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}

// InitMongo connects to the metadata database and verifies the connection
// with a ping before returning the database handle.
func InitMongo(ctx context.Context, cfg *Config) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return client.Database(cfg.MongoDB), nil
}

func InitRedis(cfg *Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
}
