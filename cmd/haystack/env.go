package main

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// envConfig carries settings that usually live in the environment or a
// .env file. Command-line flags override these.
type envConfig struct {
	DBPath       string `envconfig:"HAYSTACK_DB" default:"haystack-db"`
	WeaviateURL  string `envconfig:"WEAVIATE_URL" default:"http://localhost:8080"`
	Provider     string `envconfig:"HAYSTACK_PROVIDER" default:"gemini"`
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	AIHost       string `envconfig:"HAYSTACK_AI_HOST"`
	Tenant       string `envconfig:"HAYSTACK_TENANT"`
	Password     string `envconfig:"HAYSTACK_PASSWORD"`
}

// loadEnv reads .env if present, then the process environment. A
// missing .env file is not an error; shell variables win anyway.
func loadEnv() (*envConfig, error) {
	_ = godotenv.Load()

	var cfg envConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
