package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is read from LEKHONI_-prefixed environment variables, with an
// optional .env file for development.
type Config struct {
	Port          uint16 `default:"8080"`
	StorageDriver string `split_words:"true" default:"memory"`
	MongoURL      string `envconfig:"MONGO_URL"`
	MongoDBName   string `envconfig:"MONGO_DB_NAME" default:"lekhoni"`
	RedisURL      string `envconfig:"REDIS_URL"`
	JWTSecret     string `envconfig:"JWT_SECRET" default:"dev-secret"`
	CookieName    string `split_words:"true" default:"lekhoni_session"`
	CookieSecure  bool   `split_words:"true"`
	CORSOrigin    string `envconfig:"CORS_ORIGIN" default:"http://localhost:5173"`
	UploadDir     string `split_words:"true" default:"static/uploads"`
}

func Load() (Config, error) {
	_ = godotenv.Load() // ok if missing in prod

	var c Config
	if err := envconfig.Process("lekhoni", &c); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if c.StorageDriver == "mongo" && c.MongoURL == "" {
		return Config{}, fmt.Errorf("load config: LEKHONI_MONGO_URL is required with the mongo driver")
	}
	return c, nil
}
