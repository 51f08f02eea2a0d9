/*
Package cache keeps a history of conversions in a SQLite database.

Each row records one asset of one batch. The batch is identified by a random
run id, the outcome is stored as a MessagePack blob.
*/
package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/vmihailenco/msgpack/v5"
)

// Summary is the stored outcome of converting one asset.
type Summary struct {
	Artifact     string  `msgpack:"artifact"`
	Tiles        int     `msgpack:"tiles"`
	Compression  string  `msgpack:"compression"`
	Ratio        float64 `msgpack:"ratio"`
	Frames       int     `msgpack:"frames"`
	LargestFrame int     `msgpack:"largest_frame"`
	Maps         int     `msgpack:"maps"`
	// Error is set when the conversion failed.
	Error string `msgpack:"error,omitempty"`
}

// Record is one history row.
type Record struct {
	ID      int64
	Run     uuid.UUID
	Time    time.Time
	Config  string
	Name    string
	Summary Summary
}

// Store is the history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at file.
func Open(file string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_busy_timeout=5000", file))
	if err != nil {
		return nil, err
	}
	// Assets are recorded concurrently, SQLite only takes one writer
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS conversion (id INTEGER PRIMARY KEY NOT NULL, run TEXT NOT NULL, time INTEGER NOT NULL, config TEXT NOT NULL, name TEXT NOT NULL, summary BLOB NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE INDEX IF NOT EXISTS conversion_config ON conversion (config, time)"); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db: db,
	}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add stores r and returns its row id.
func (s *Store) Add(r Record) (int64, error) {
	b, err := msgpack.Marshal(&r.Summary)
	if err != nil {
		return 0, err
	}

	result, err := s.db.Exec("INSERT INTO conversion (run, time, config, name, summary) VALUES (?, ?, ?, ?, ?)", r.Run.String(), r.Time.UnixNano(), r.Config, r.Name, b)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scan(row scanner) (Record, error) {
	var (
		r    Record
		run  string
		ns   int64
		blob []byte
	)
	if err := row.Scan(&r.ID, &run, &ns, &r.Config, &r.Name, &blob); err != nil {
		return Record{}, err
	}

	id, err := uuid.Parse(run)
	if err != nil {
		return Record{}, err
	}
	r.Run = id
	r.Time = time.Unix(0, ns)

	if err := msgpack.Unmarshal(blob, &r.Summary); err != nil {
		return Record{}, err
	}
	return r, nil
}

// List returns up to limit records, newest first. A limit below one returns
// every record.
func (s *Store) List(limit int) ([]Record, error) {
	if limit < 1 {
		limit = -1
	}

	rows, err := s.db.Query("SELECT id, run, time, config, name, summary FROM conversion ORDER BY time DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		r, err := scan(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Last returns the newest record for the configuration file config, or nil
// if it was never converted.
func (s *Store) Last(config string) (*Record, error) {
	row := s.db.QueryRow("SELECT id, run, time, config, name, summary FROM conversion WHERE config = ? ORDER BY time DESC, id DESC LIMIT 1", config)
	switch r, err := scan(row); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		return &r, nil
	default:
		return nil, err
	}
}
