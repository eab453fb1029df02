package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/Lllllllleong/civilex/internal/cli"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	cli.Execute()
}
