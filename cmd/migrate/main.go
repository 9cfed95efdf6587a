package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"ordermgmt-be/internal/db"
	"ordermgmt-be/internal/logger"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

var openDB = sql.Open

func main() {
	_ = godotenv.Load()
	logger.Init(os.Getenv("APP_ENV"))
	defer logger.Sync()

	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

// run parses the flags, opens DB_URL with the chosen driver and migrates it.
func run(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	mode := fs.String("mode", "up", "migration mode: up or down")
	dir := fs.String("dir", "migrations/postgres", "directory holding the .sql migrations")
	driver := fs.String("driver", db.DriverPostgres, "database driver: postgres or sqlite")
	if err := fs.Parse(args); err != nil {
		return err
	}

	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		return errors.New("DB_URL not set in environment")
	}

	conn, err := openDB(*driver, dbURL)
	if err != nil {
		return fmt.Errorf("failed to connect db: %w", err)
	}
	defer conn.Close()

	return db.Migrate(conn, *mode, *dir)
}
