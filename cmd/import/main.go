// Command import loads a legacy NDJSON comment dump into the comments table,
// mapping the old boolean approval flag onto the moderation states.
//
//	import -file comments.ndjson
//	import -down   # roll back the last migration
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/blog-comment-moderation/internal/cache"
	"github.com/blog-comment-moderation/internal/config"
	"github.com/blog-comment-moderation/internal/database"
	"github.com/blog-comment-moderation/internal/repository"
	"github.com/blog-comment-moderation/internal/service"
	"github.com/blog-comment-moderation/pkg/logger"
)

func main() {
	file := flag.String("file", "-", "NDJSON dump to import, - for stdin")
	down := flag.Bool("down", false, "roll back the last migration and exit")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "json")
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if *down {
		if err := db.MigrateDown(cfg.Database.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("Failed to roll back migration")
		}
		return
	}

	if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	var in io.Reader = os.Stdin
	if *file != "-" {
		f, err := os.Open(*file)
		if err != nil {
			log.Fatal().Err(err).Str("file", *file).Msg("Failed to open import file")
		}
		defer f.Close()
		in = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The running server keeps its own cache; this one only satisfies the service wiring
	c, err := cache.New(1, cfg.Cache.TTL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create cache")
	}
	services := service.NewServices(repository.New(db), c, cfg, log)

	result, err := services.Import.ImportLegacyComments(ctx, in)
	if err != nil {
		log.Error().Err(err).Msg("Import aborted")
	}
	if result != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(result)
	}
	if err != nil {
		os.Exit(1)
	}
}
