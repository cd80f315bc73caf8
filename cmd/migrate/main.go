// Command migrate applies, rolls back, or inspects schema migrations.
//
// Usage:
//
//	migrate up
//	migrate down [N]
//	migrate force VERSION
//	migrate version
package main

import (
	"fmt"
	"os"
	"strconv"

	"aquatrack/internal/config"
	"aquatrack/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(os.Args[1:]); err != nil {
		logger.Get().Fatalf("Migration error: %v", err)
	}
}

func run(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: migrate <up|down|force|version> [arg]")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	m, err := migrate.New("file://migrations", cfg.MigrateURL())
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m)

	switch cmd := args[0]; cmd {
	case "up":
		return up(m)
	case "down":
		steps := 1
		if len(args) > 1 {
			if steps, err = strconv.Atoi(args[1]); err != nil {
				return fmt.Errorf("invalid step count %q: %w", args[1], err)
			}
		}
		return down(m, steps)
	case "force":
		if len(args) < 2 {
			return fmt.Errorf("usage: migrate force VERSION")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		return force(m, version)
	case "version":
		return printVersion(m)
	default:
		return fmt.Errorf("unknown command: %s (use up, down, force, or version)", cmd)
	}
}

func up(m *migrate.Migrate) error {
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration up failed: %w", err)
	}
	logger.Get().Info("Migrations applied successfully")
	return nil
}

func down(m *migrate.Migrate, steps int) error {
	if err := m.Steps(-steps); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration down failed: %w", err)
	}
	logger.Get().Infof("Rolled back %d migration(s)", steps)
	return nil
}

// force resets a dirty migration state to the given version without running
// any migration.
func force(m *migrate.Migrate, version int) error {
	if err := m.Force(version); err != nil {
		return fmt.Errorf("force failed: %w", err)
	}
	logger.Get().Infof("Forced version to %d", version)
	return nil
}

func printVersion(m *migrate.Migrate) error {
	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("failed to get version: %w", err)
	}
	logger.Get().Infof("Version: %d, Dirty: %v", version, dirty)
	return nil
}

func closeMigrate(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		logger.Get().Warnf("migrate source close error: %v", srcErr)
	}
	if dbErr != nil {
		logger.Get().Warnf("migrate database close error: %v", dbErr)
	}
}
