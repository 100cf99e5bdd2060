package main

import (
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"booking-service/internal/config"
	"booking-service/migrations"
	"booking-service/pkg/sl"
)

// usage: migrate [up|down|force <version>]
func main() {
	cfg := config.MustLoad()

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	db, err := sql.Open("postgres", cfg.StoragePath)
	if err != nil {
		log.Error("open db", sl.Err(err))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		log.Error("ping db", sl.Err(err))
		os.Exit(1)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Error("db driver", sl.Err(err))
		os.Exit(1)
	}

	srcDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		log.Error("source driver", sl.Err(err))
		os.Exit(1)
	}

	m, err := migrate.NewWithInstance("iofs", srcDriver, "postgres", dbDriver)
	if err != nil {
		log.Error("create migrator", sl.Err(err))
		os.Exit(1)
	}
	defer func() { _, _ = m.Close() }()

	cmd := "up"
	if len(os.Args) >= 2 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "up":
		err = m.Up()
	case "down":
		err = m.Steps(-1)
	case "force":
		if len(os.Args) < 3 {
			log.Error("force needs a version")
			os.Exit(2)
		}
		version, convErr := strconv.Atoi(os.Args[2])
		if convErr != nil {
			log.Error("invalid version", sl.Err(convErr))
			os.Exit(2)
		}
		err = m.Force(version)
	default:
		log.Error("unknown command", slog.String("cmd", cmd))
		os.Exit(2)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Error("migrate "+cmd, sl.Err(err))
		os.Exit(1)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		log.Error("read version", sl.Err(err))
		os.Exit(1)
	}

	log.Info("migrations complete", slog.String("cmd", cmd), slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
}
