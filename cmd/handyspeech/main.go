package main

import (
	"github.com/joho/godotenv"

	"github.com/lmonteir/handyspeech/internal/adapters/cli"
)

func main() {
	// Optional .env with API keys; absence is fine.
	_ = godotenv.Load()

	cli.Execute()
}
