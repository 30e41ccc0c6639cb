package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/lokalo/lokalo-backend/internal/config"
	"github.com/lokalo/lokalo-backend/internal/insights"
	"github.com/lokalo/lokalo-backend/internal/migration"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Schema bootstrap: runs GORM AutoMigrate against MySQL and, when
// configured, creates the ClickHouse analytics table.
func main() {
	configPath := flag.String("config", "", "config file path (default configs/config.<APP_ENV>.yaml)")
	verbose := flag.Bool("verbose", false, "verbose SQL logging")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	path := *configPath
	if path == "" {
		path = "configs/config." + config.Env() + ".yaml"
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logLevel := gormlogger.Warn
	if *verbose {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get underlying DB: %v", err)
	}
	defer sqlDB.Close()

	start := time.Now()
	if err := migration.Run(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Printf("MySQL schema migrated in %v", time.Since(start))

	if cfg.ClickHouse.Host == "" {
		log.Println("ClickHouse not configured, skipping analytics schema")
		return
	}

	ch, err := insights.NewClient(insights.ClientConfig{
		Host:     cfg.ClickHouse.Host,
		Port:     cfg.ClickHouse.Port,
		Database: cfg.ClickHouse.Database,
		User:     cfg.ClickHouse.User,
		Password: cfg.ClickHouse.Password,
	})
	if err != nil {
		log.Fatalf("Failed to connect to ClickHouse: %v", err)
	}
	defer ch.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := ch.EnsureSchema(ctx); err != nil {
		log.Fatalf("ClickHouse schema failed: %v", err)
	}
	log.Println("ClickHouse analytics schema ready")
}
