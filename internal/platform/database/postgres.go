package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"coursehub/internal/platform/config"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/jmoiron/sqlx"
)

var DB *sqlx.DB

func Connect() {
	db, err := Open(config.AppConfig.DBConnStr, config.AppConfig.DBMaxConns)
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	DB = db
	fmt.Println("Successfully connected to PostgreSQL database!")
}

// Open dials Postgres through the pgx stdlib driver and wraps it for sqlx.
func Open(dsn string, maxConns int) (*sqlx.DB, error) {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if maxConns <= 0 {
		maxConns = 25
	}
	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetMaxIdleConns(maxConns)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return sqlx.NewDb(sqlDB, "pgx"), nil
}

func Close() {
	if DB != nil {
		DB.Close()
		fmt.Println("Database connection closed.")
	}
}
