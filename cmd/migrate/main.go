package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"nsn-odds-data/internal/db"

	"github.com/joho/godotenv"
)

const (
	cmdUp      = "up"
	cmdDown    = "down"
	cmdSteps   = "steps"
	cmdVersion = "version"
	cmdForce   = "force"

	usage = "usage: go run ./cmd/migrate [up|down [n]|steps n|version|force v]"
)

type migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Version() (uint, bool, error)
	Force(version int) error
	Close() error
}

var (
	loadEnvFunc     = godotenv.Load
	newMigratorFunc = func(dsn string) (migrator, error) { return db.NewMigrationManager(dsn) }
)

func main() {
	loadEnvFunc()

	if len(os.Args) < 2 {
		log.Fatal(usage)
	}

	dsn := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(dsn) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	m, err := newMigratorFunc(dsn)
	if err != nil {
		log.Fatalf("open migrations: %v", err)
	}
	defer m.Close()

	msg, err := run(m, os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	log.Println(msg)
}

func intArg(args []string, i int, def int) (int, error) {
	if len(args) <= i {
		return def, nil
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", args[i])
	}
	return n, nil
}

// run executes one command and returns the line to report.
func run(m migrator, args []string) (string, error) {
	switch args[0] {
	case cmdUp:
		if err := m.Up(); err != nil {
			return "", err
		}
		return "migrations up complete", nil
	case cmdDown:
		n, err := intArg(args, 1, 1)
		if err != nil || n <= 0 {
			return "", fmt.Errorf("invalid down steps: %v", args[1:])
		}
		if n == 1 {
			err = m.Down()
		} else {
			err = m.Steps(-n)
		}
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("migrations down complete (%d rolled back)", n), nil
	case cmdSteps:
		n, err := intArg(args, 1, 0)
		if err != nil || n == 0 {
			return "", fmt.Errorf("steps needs a non-zero count")
		}
		if err := m.Steps(n); err != nil {
			return "", err
		}
		return fmt.Sprintf("migrated %d steps", n), nil
	case cmdVersion:
		version, dirty, err := m.Version()
		if err != nil {
			return "", err
		}
		if version == 0 {
			return "no migrations applied", nil
		}
		if dirty {
			return fmt.Sprintf("current version: %d (dirty)", version), nil
		}
		return fmt.Sprintf("current version: %d", version), nil
	case cmdForce:
		if len(args) < 2 {
			return "", fmt.Errorf("force needs a version")
		}
		v, err := intArg(args, 1, 0)
		if err != nil {
			return "", err
		}
		if err := m.Force(v); err != nil {
			return "", err
		}
		return fmt.Sprintf("forced version %d", v), nil
	default:
		return "", fmt.Errorf("unknown command %q. %s", args[0], usage)
	}
}
