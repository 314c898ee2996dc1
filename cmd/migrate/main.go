package main

import (
	"flag"
	"os"

	"ai-chat-be/internal/config"
	"ai-chat-be/pkg/database"

	"github.com/fatih/color"
	"gorm.io/gorm/logger"
)

func main() {
	dsnFlag := flag.String("dsn", "", "database connection string (defaults to DB_CONNECTION_STRING)")
	verbose := flag.Bool("v", false, "log every SQL statement")
	flag.Parse()

	// 1. Load Environment Variables
	cfg := config.Load()

	dsn := *dsnFlag
	if dsn == "" {
		dsn = cfg.Database.Connection
	}
	if dsn == "" {
		color.Red("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	level := logger.Warn
	if *verbose {
		level = logger.Info
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.Open(dsn, level)
	if err != nil {
		color.Red("Error: Failed to connect to database: %v", err)
		os.Exit(1)
	}

	color.Cyan("Starting GORM migration...")

	// 3. AutoMigrate
	models := database.Models()
	color.Yellow("Running AutoMigrate for %d tables...", len(models))
	if err := database.AutoMigrate(db); err != nil {
		color.Red("Error: Migration failed: %v", err)
		os.Exit(1)
	}

	color.Green("Migration completed successfully.")
}
