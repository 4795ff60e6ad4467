package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/colorguess/internal/clipboard"
	"github.com/robalobadob/colorguess/internal/color"
	"github.com/robalobadob/colorguess/internal/config"
	"github.com/robalobadob/colorguess/internal/daily"
	"github.com/robalobadob/colorguess/internal/game"
	"github.com/robalobadob/colorguess/internal/history"
	"github.com/robalobadob/colorguess/internal/logging"
	"github.com/robalobadob/colorguess/internal/names"
	"github.com/robalobadob/colorguess/internal/term"
)

const localPlayer = "local"

var (
	dailyFlag = flag.Bool("daily", false, "play today's daily palette")
	levelFlag = flag.String("level", "", "difficulty: easy or hard (default from DEFAULT_DIFFICULTY)")
)

func main() {
	flag.Parse()

	base := config.Default()
	base.Clipboard = clipboard.ModeSystem
	cfg, err := config.LoadWith(base)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// stdout is the screen: log to a file or nowhere
	var logOut io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	logging.Setup(cfg.LogLevel, "json", logOut)

	if err := names.Init(cfg.ColorNamesFile); err != nil {
		fmt.Fprintf(os.Stderr, "load color names: %v\n", err)
		os.Exit(1)
	}

	d := cfg.Difficulty()
	if *levelFlag != "" {
		if d, err = game.ParseDifficulty(*levelFlag); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(2)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := history.Open(ctx, cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open history: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := run(ctx, cfg, d, db); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, d game.Difficulty, db *sql.DB) error {
	hist := history.NewStore(db)
	opt := game.Options{Difficulty: d, Namer: names.Name}
	if *dailyFlag {
		now := time.Now()
		played, err := hist.DailyPlayed(ctx, localPlayer, daily.DateKey(now), d.Swatches())
		if err != nil {
			return err
		}
		if played {
			fmt.Printf("Daily %s (%s) already solved.\n", daily.DateKey(now), d)
			return nil
		}
		opt.Generator = color.NewGenerator(daily.Seed(now, cfg.DailySalt, d))
		opt.Daily = true
		opt.DailyDate = daily.DateKey(now)
	}
	sess := game.NewSession("terminal", localPlayer, opt)
	defer sess.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	// restore the terminal even if the game panics
	defer func() {
		if r := recover(); r != nil {
			screen.Fini()
			fmt.Fprintf(os.Stderr, "colorguess crashed: %v\n%s\n", r, debug.Stack())
			os.Exit(1)
		}
	}()
	defer screen.Fini()

	var chimes *term.Chimes
	if cfg.Sound {
		chimes = term.NewChimes()
		defer chimes.Close()
	}

	app := term.New(screen, term.Options{
		Session:   sess,
		Clipboard: clipboard.New(cfg.Clipboard),
		Chimes:    chimes,
		OnRound: func(r game.RoundSummary) {
			date := r.DailyDate
			if date == "" {
				date = daily.DateKey(time.Now())
			}
			err := hist.InsertRound(ctx, history.Round{
				PlayerID:   localPlayer,
				SessionID:  sess.ID(),
				Round:      r.Round,
				Date:       date,
				Difficulty: r.Difficulty.Swatches(),
				Target:     r.Target.String(),
				Misses:     r.Misses,
				ElapsedMs:  r.Elapsed.Milliseconds(),
				Daily:      r.Daily,
			})
			if err != nil {
				log.Warn().Err(err).Msg("record round")
			}
		},
	})
	return app.Run(ctx)
}
