package config

import "github.com/joho/godotenv"

type Config interface {
	EnvConfig
	APIConfig
	StorageConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type mainConfig struct {
	EnvVars
	API
	Storage
}

// New loads an optional .env file and returns the environment backed config.
func New() Config {
	_ = godotenv.Load()
	return mainConfig{}
}
