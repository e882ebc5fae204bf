package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/Houeta/scrum-agent/internal/config"
	"github.com/Houeta/scrum-agent/internal/repository"
	"github.com/jackc/pgx/v5/stdlib"
)

func main() {
	dir := flag.String("dir", "migrations", "directory with goose SQL migrations")
	flag.Parse()

	if err := run(context.Background(), config.MustLoad(), *dir); err != nil {
		log.Fatal(err)
	}

	log.Println("✅ Migrations applied successfully")
}

// run applies every pending migration from dir to the configured database.
func run(ctx context.Context, cfg *config.Config, dir string) error {
	dbpool, err := repository.NewDatabase(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("failed to connect to DB: %w", err)
	}
	defer dbpool.Close()

	return repository.Migrate(stdlib.OpenDBFromPool(dbpool), dir)
}
