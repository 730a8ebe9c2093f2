package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

var (
	LogLevel         string
	GameBaseURL      string
	RequestTimeout   time.Duration
	RelayRunAddress  string
	RelayPassword    string
	DatabaseDialect  string
	DatabaseURI      string
	PhrasesFile      string
	GameUsername     string
	GamePasswordHash string
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using default values")
	}

	LogLevel = os.Getenv("LOG_LEVEL")
	if LogLevel == "" {
		LogLevel = "info"
	}

	GameBaseURL = os.Getenv("GAME_BASE_URL")
	if GameBaseURL == "" {
		GameBaseURL = "https://www.kingdomofloathing.com/"
	}

	RequestTimeout = 30 * time.Second
	if raw := os.Getenv("REQUEST_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			RequestTimeout = d
		} else {
			log.Printf("Invalid REQUEST_TIMEOUT %q, using %s", raw, RequestTimeout)
		}
	}

	RelayRunAddress = os.Getenv("RELAY_RUN_ADDRESS")
	if RelayRunAddress == "" {
		RelayRunAddress = "127.0.0.1:60080"
	}

	RelayPassword = os.Getenv("RELAY_PASSWORD")
	if RelayPassword == "" {
		RelayPassword = "mafia"
	}

	DatabaseDialect = os.Getenv("DB_DIALECT")
	if DatabaseDialect == "" {
		DatabaseDialect = "sqlite"
	}

	DatabaseURI = os.Getenv("DATABASE_URI")
	if DatabaseURI == "" {
		DatabaseURI = "settings.sqlite"
	}

	PhrasesFile = os.Getenv("PHRASES_FILE")

	GameUsername = os.Getenv("GAME_USERNAME")
	GamePasswordHash = os.Getenv("GAME_PASSWORD_HASH")
}
