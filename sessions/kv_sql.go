package sessions

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

const createTableSQL = `CREATE TABLE IF NOT EXISTS session_kv (
	session_id TEXT NOT NULL,
	key TEXT NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (session_id, key)
)`

// DB is a session database handle together with its placeholder dialect.
type DB struct {
	*sql.DB
	driver string
}

// OpenDB opens the session database and creates the session_kv table.
func OpenDB(driver, dsn string) (*DB, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("[sessions OpenDB] unsupported driver %q", driver)
	}
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("[sessions OpenDB] open %s: %w", driver, err)
	}
	db := NewDB(conn, driver)
	if err := db.Migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// NewDB wraps an existing connection; tests pass a sqlmock connection here.
func NewDB(conn *sql.DB, driver string) *DB {
	return &DB{DB: conn, driver: driver}
}

func (db *DB) Migrate() error {
	if _, err := db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("[sessions Migrate] create session_kv: %w", err)
	}
	return nil
}

// query converts a template with %s placeholders to the driver's syntax.
func (db *DB) query(queryTemplate string, paramCount int) string {
	placeholders := make([]interface{}, paramCount)
	for i := 0; i < paramCount; i++ {
		if db.driver == DriverPostgres {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
		} else {
			placeholders[i] = "?"
		}
	}
	return fmt.Sprintf(queryTemplate, placeholders...)
}

// SQLKV is a KV confined to one session namespace of the session_kv table.
type SQLKV struct {
	db        *DB
	namespace string
}

var _ KV = (*SQLKV)(nil)

func NewSQLKV(db *DB, namespace string) *SQLKV {
	return &SQLKV{db: db, namespace: namespace}
}

func (s *SQLKV) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(
		s.db.query(`SELECT value FROM session_kv WHERE session_id = %s AND key = %s`, 2),
		s.namespace, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLKV) Set(key, value string) error {
	_, err := s.db.Exec(
		s.db.query(`INSERT INTO session_kv (session_id, key, value) VALUES (%s, %s, %s) ON CONFLICT (session_id, key) DO UPDATE SET value = excluded.value`, 3),
		s.namespace, key, value,
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *SQLKV) Delete(keys ...string) error {
	q := s.db.query(`DELETE FROM session_kv WHERE session_id = %s AND key = %s`, 2)
	for _, k := range keys {
		if _, err := s.db.Exec(q, s.namespace, k); err != nil {
			return fmt.Errorf("delete %s: %w", k, err)
		}
	}
	return nil
}

// Drop removes every key of the namespace.
func (s *SQLKV) Drop() error {
	_, err := s.db.Exec(s.db.query(`DELETE FROM session_kv WHERE session_id = %s`, 1), s.namespace)
	if err != nil {
		return fmt.Errorf("drop session %s: %w", s.namespace, err)
	}
	return nil
}
