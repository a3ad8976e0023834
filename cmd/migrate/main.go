package main

import (
	"database/sql"
	"errors"
	"flag"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rbroggi/gestionusers/internal/config"
	log "github.com/sirupsen/logrus"
)

var (
	down = flag.Bool("down", false, "run migration down")
	dir  = flag.String("dir", "db/migrations", "directory holding the migrations, relative to the working directory")
)

func run() error {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return err
	}

	db, err := sql.Open("postgres", cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(*dir)
	if err != nil {
		return err
	}
	source := "file://" + filepath.ToSlash(abs)
	log.WithField("migrations", source).Info("using migrations")

	m, err := migrate.NewWithDatabaseInstance(source, "postgres", driver)
	if err != nil {
		return err
	}
	if *down {
		err = m.Down()
	} else {
		err = m.Up()
	}
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info("schema already up to date")
		return nil
	}
	return err
}

func main() {
	log.SetFormatter(&log.JSONFormatter{})
	flag.Parse()

	if err := run(); err != nil {
		log.WithError(err).WithField("down", *down).Fatal("migration failed")
	}
	log.WithField("down", *down).Info("migration applied")
}
