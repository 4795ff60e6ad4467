package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/colorguess/assets"
	"github.com/robalobadob/colorguess/internal/clipboard"
	"github.com/robalobadob/colorguess/internal/config"
	"github.com/robalobadob/colorguess/internal/history"
	"github.com/robalobadob/colorguess/internal/httpserver"
	"github.com/robalobadob/colorguess/internal/logging"
	"github.com/robalobadob/colorguess/internal/names"
	"github.com/robalobadob/colorguess/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	logOut := os.Stderr
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.LogFile).Msg("open log file")
		}
		defer f.Close()
		logOut = f
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat, logOut)

	if cfg.InsecureSecret() {
		log.Warn().Msg("SESSION_SECRET not set; using the development secret")
	}

	if err := names.Init(cfg.ColorNamesFile); err != nil {
		log.Fatal().Err(err).Msg("failed to load color names")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := history.Open(ctx, cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("db", cfg.DBPath).Msg("open history")
	}
	defer db.Close()

	mem := store.NewMemoryStore()
	go store.RunSweeper(ctx, mem, cfg.SessionTTL, time.Minute)

	srv := httpserver.New(httpserver.Deps{
		Store:             mem,
		History:           history.NewStore(db),
		Clipboard:         clipboard.New(cfg.Clipboard),
		Web:               assets.Web(),
		Secret:            []byte(cfg.SessionSecret),
		SecureCookies:     strings.HasPrefix(cfg.ClientOrigin, "https://"),
		ClientOrigin:      cfg.ClientOrigin,
		DailySalt:         cfg.DailySalt,
		DefaultDifficulty: cfg.Difficulty(),
		Namer:             names.Name,
	})

	log.Info().Str("port", cfg.Port).Str("difficulty", cfg.DefaultDifficulty).Msg("starting colorguess")
	if err := srv.Start(ctx, ":"+cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
