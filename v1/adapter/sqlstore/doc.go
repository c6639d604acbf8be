// Package sqlstore is a peek storage adapter backed by a relational database
// through gorm. PostgreSQL and MariaDB/MySQL are supported via v1/database.
//
// Measurements live in a single table:
//
//	peek_measurements(request_id, key, value, updated_at)
//
// keyed by (request_id, key). value holds the JSON encoding of the measured
// value and updated_at is refreshed on every write, which Requests and Purge
// use to order and expire requests.
//
//	db, _ := database.Open(database.PostgresConfig(conn))
//	store, err := sqlstore.New(db)
//	if err != nil {
//		return err
//	}
//	p.UseAdapter(store)
package sqlstore
