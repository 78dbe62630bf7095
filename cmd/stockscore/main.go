package main

import (
	"os"

	"github.com/wonny/stockscore/backend/cmd/stockscore/commands"
)

// main is the entry point for the stockscore CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/stockscore [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
