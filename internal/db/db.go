package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// BusyTimeoutMS bounds how long a counter upsert waits on the write lock.
const BusyTimeoutMS = 5000

// Open connects to the ad store at path, applies connection pragmas and
// brings the schema up to date. ":memory:" yields a private store.
func Open(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ad store: %w", err)
	}

	// Every connection shares the same file, and ":memory:" must stay on one.
	conn.SetMaxOpenConns(1)

	for _, p := range pragmas(path) {
		if _, err := conn.Exec(p); err != nil {
			conn.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	if err := Migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate ad store: %w", err)
	}
	return conn, nil
}

func pragmas(path string) []string {
	p := []string{
		fmt.Sprintf("PRAGMA busy_timeout=%d", BusyTimeoutMS),
		"PRAGMA synchronous=NORMAL",
	}
	if !isMemory(path) {
		p = append(p, "PRAGMA journal_mode=WAL")
	}
	return p
}

func isMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}
