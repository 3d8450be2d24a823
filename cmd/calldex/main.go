package main

import (
	"log"

	"calldex/cmd/internal/app"

	"github.com/joho/godotenv"
)

func main() {
	// Missing .env is fine; real deployments configure the environment
	// directly.
	_ = godotenv.Load()

	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
