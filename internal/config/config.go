package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	FREDBaseURL string
	OpenAIKey   string
	LLMModel    string
	Workers     int
	Env         string
}

func LoadConfig() Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️  .env file not found, using system environment variables")
	}

	workers := 1
	if v := os.Getenv("REPORT_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			workers = n
		}
	}

	return Config{
		FREDBaseURL: os.Getenv("FRED_BASE_URL"),
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		LLMModel:    os.Getenv("LLM_MODEL"),
		Workers:     workers,
		Env:         os.Getenv("ENV"),
	}
}
