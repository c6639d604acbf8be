// Package database opens the gorm connection used by the SQL storage adapter.
//
// The dialect is chosen by Config.Type: "postgres" uses gorm.io/driver/postgres
// and "mariadb" uses gorm.io/driver/mysql. Connection pool limits default to
// 50 open, 25 idle and a one minute lifetime.
//
// # Usage
//
//	db, err := database.Open(database.PostgresConfig(database.Connection{
//		Host:     "localhost",
//		Port:     "5432",
//		User:     "peek",
//		Password: "secret",
//		DbName:   "peek",
//	}))
//
// With fx, database.FXModule provides *gorm.DB, pings it on start and closes
// the pool on stop.
package database
