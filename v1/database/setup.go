package database

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to the database selected by cfg.Type and configures the
// connection pool. The returned *gorm.DB is safe for concurrent use.
func Open(cfg Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.Type, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get %s database instance: %w", cfg.Type, err)
	}

	details := cfg.ConnectionDetails.withDefaults()
	sqlDB.SetMaxOpenConns(details.MaxOpenConns)
	sqlDB.SetMaxIdleConns(details.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(details.ConnMaxLifetime)

	return db, nil
}

// Dialector returns the gorm dialector for cfg.Type without connecting.
func Dialector(cfg Config) (gorm.Dialector, error) {
	switch cfg.Type {
	case TypePostgres:
		return postgres.Open(PostgresDSN(cfg.Connection)), nil
	case TypeMariaDB:
		return mysql.Open(MariaDBDSN(cfg.Connection)), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s (must be 'postgres' or 'mariadb')", cfg.Type)
	}
}

// PostgresDSN builds a key/value connection string for PostgreSQL.
func PostgresDSN(c Connection) string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DbName, sslMode)
}

// MariaDBDSN builds a go-sql-driver DSN.
// Format: username:password@tcp(host:port)/dbname?param=value
func MariaDBDSN(c Connection) string {
	charset := c.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=UTC",
		c.User, c.Password, c.Host, c.Port, c.DbName, charset)
}

func (d ConnectionDetails) withDefaults() ConnectionDetails {
	if d.MaxOpenConns <= 0 {
		d.MaxOpenConns = DefaultMaxOpenConns
	}
	if d.MaxIdleConns <= 0 {
		d.MaxIdleConns = DefaultMaxIdleConns
	}
	if d.ConnMaxLifetime <= 0 {
		d.ConnMaxLifetime = DefaultConnMaxLifetime
	}
	return d
}
