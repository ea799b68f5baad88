// main.go
//
// Entry point for the linewords go-server.
// Loads .env, configures zerolog, loads the word table, then serves the
// HTTP API and sweeps idle sessions in the background.

package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/linewords/internal/config"
	"github.com/robalobadob/linewords/internal/httpserver"
	"github.com/robalobadob/linewords/internal/words"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	if err := words.Init(cfg.WordsFile); err != nil {
		log.Fatal().Err(err).Str("file", cfg.WordsFile).Msg("failed to load word table")
	}
	db := words.Default()
	log.Info().Ints("grades", db.Grades()).Msg("word table loaded")

	srv := httpserver.New(cfg, db)
	go srv.RunSweeper(context.Background())

	log.Info().Str("port", cfg.Port).Msg("starting go-server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
