// Package cache implements the optional content-addressed compile cache
// (§10.6): the kind/type/STG stages are pure functions of the source text,
// so a SQLite-backed table keyed by its SHA-256 hash can skip re-running
// them entirely on a cache hit. This is an accelerator wired in behind
// cmd/htlc's --cache flag; the core pipeline stages never import this
// package or know it exists.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"

	_ "modernc.org/sqlite"
	"gopkg.in/yaml.v3"

	"github.com/htlc-project/htlc/internal/stg"
	"github.com/htlc-project/htlc/internal/stgwire"
)

// Cache is a content-addressed store of compiled STG programs, backed by a
// local SQLite database file.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if necessary) the cache database at path.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	const schema = `CREATE TABLE IF NOT EXISTS compiled (
		source_hash TEXT PRIMARY KEY,
		program_yaml TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Key hashes the given source text (SHA-256, hex-encoded) into the
// cache's lookup key; nothing besides source is hashed.
func Key(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Lookup returns the cached STG program for key, or nil if absent.
func (c *Cache) Lookup(key string) (*stg.Program, error) {
	var blob string
	err := c.db.QueryRow(`SELECT program_yaml FROM compiled WHERE source_hash = ?`, key).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying cache: %w", err)
	}

	var wire stgwire.Program
	if err := yaml.Unmarshal([]byte(blob), &wire); err != nil {
		return nil, fmt.Errorf("decoding cached program: %w", err)
	}
	return stgwire.ToProgram(&wire)
}

// Store persists prog under key, replacing any prior entry.
func (c *Cache) Store(key string, prog *stg.Program) error {
	wire := stgwire.FromProgram(prog)
	blob, err := yaml.Marshal(wire)
	if err != nil {
		return fmt.Errorf("encoding program for cache: %w", err)
	}
	_, err = c.db.Exec(`INSERT INTO compiled (source_hash, program_yaml) VALUES (?, ?)
		ON CONFLICT(source_hash) DO UPDATE SET program_yaml = excluded.program_yaml`, key, string(blob))
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}
