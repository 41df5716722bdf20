package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/shinyyama/broadcast-feed/internal/config"
	"github.com/shinyyama/broadcast-feed/internal/db"
	"github.com/shinyyama/broadcast-feed/internal/logctx"
	"github.com/shinyyama/broadcast-feed/internal/repository"
	"github.com/shinyyama/broadcast-feed/internal/seed"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "seed",
		Usage: "Fill the feed database with demo profiles, follows and messages",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "profiles",
				Usage: "Number of demo profiles",
				Value: 5,
			},
			&cli.IntFlag{
				Name:  "messages",
				Usage: "Number of original messages",
				Value: 50,
			},
			&cli.Float64Flag{
				Name:  "broadcast-ratio",
				Usage: "Share of original messages that get re-broadcast",
				Value: 0.2,
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent message writers",
				Value: 4,
			},
			&cli.StringFlag{
				Name:  "user-prefix",
				Usage: "Prefix for seeded user names",
				Value: "user",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: func(c *cli.Context) error {
			_ = godotenv.Load()
			logctx.Setup(c.String("log-level"), true)
			return nil
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
}

func run(c *cli.Context) error {
	ctx := logctx.WithRID(context.Background(), "seed")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("sql db: %w", err)
	}
	defer sqlDB.Close()

	if err := db.Migrate(gdb); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	h := repository.NewHandle(gdb)
	s := seed.New(repository.NewProfileRepository(h), repository.NewMessageRepository(h))
	res, err := s.Run(ctx, seed.Options{
		Profiles:       c.Int("profiles"),
		Messages:       c.Int("messages"),
		BroadcastRatio: c.Float64("broadcast-ratio"),
		Workers:        c.Int("workers"),
		UserPrefix:     c.String("user-prefix"),
	})
	if err != nil {
		return err
	}
	log.Info().
		Int("profiles", res.Profiles).
		Int("follows", res.Follows).
		Int("messages", res.Messages).
		Int("broadcasts", res.Broadcasts).
		Int("failed", res.Failed).
		Msg("seed completed")
	return nil
}
