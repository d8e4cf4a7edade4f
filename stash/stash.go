// Package stash persists named snapshots of object records in a local
// SQLite database, so a layout can be pulled from the target, kept, and
// pushed back or compared later.
package stash

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"github.com/Sopitive/forgebridge/codec"
	"github.com/Sopitive/forgebridge/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	name         TEXT    NOT NULL UNIQUE,
	created_at   TEXT    NOT NULL,
	record_count INTEGER NOT NULL,
	payload      BLOB    NOT NULL
);
`

// Info describes one stored snapshot.
type Info struct {
	Name      string
	CreatedAt time.Time
	Records   int
}

// Store is a snapshot database. Safe for concurrent use; database/sql
// serializes access to the single connection.
type Store struct {
	db  *sql.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// Open opens (creating if needed) a snapshot database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseStash, errors.KindInvalidData, err, "open database")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.PhaseStash, errors.KindInvalidData, err, "apply schema")
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(errors.PhaseStash, errors.KindInvalidData, err, "init compressor")
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(errors.PhaseStash, errors.KindInvalidData, err, "init decompressor")
	}

	return &Store{db: db, enc: enc, dec: dec}, nil
}

// Close releases the database and codec resources.
func (s *Store) Close() error {
	s.enc.Close()
	s.dec.Close()
	return s.db.Close()
}

// Save stores records under name, replacing any snapshot with the same name.
func (s *Store) Save(name string, records []codec.Record) error {
	raw, err := yaml.Marshal(records)
	if err != nil {
		return errors.Wrap(errors.PhaseStash, errors.KindInvalidData, err, "marshal records")
	}
	payload := s.enc.EncodeAll(raw, nil)

	_, err = s.db.Exec(`
		INSERT INTO snapshots (name, created_at, record_count, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			created_at = excluded.created_at,
			record_count = excluded.record_count,
			payload = excluded.payload`,
		name, time.Now().UTC().Format(time.RFC3339), len(records), payload)
	if err != nil {
		return errors.Wrap(errors.PhaseStash, errors.KindWriteFailed, err, fmt.Sprintf("save snapshot %q", name))
	}
	return nil
}

// Load returns the records stored under name.
func (s *Store) Load(name string) ([]codec.Record, error) {
	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM snapshots WHERE name = ?`, name).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound(errors.PhaseStash, "snapshot", name)
	}
	if err != nil {
		return nil, errors.Wrap(errors.PhaseStash, errors.KindInvalidData, err, "query snapshot")
	}

	raw, err := s.dec.DecodeAll(payload, nil)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseStash, errors.KindInvalidData, err, "decompress snapshot")
	}

	var records []codec.Record
	if err := yaml.Unmarshal(raw, &records); err != nil {
		return nil, errors.Wrap(errors.PhaseStash, errors.KindInvalidData, err, "unmarshal records")
	}
	return records, nil
}

// Delete removes the snapshot stored under name.
func (s *Store) Delete(name string) error {
	res, err := s.db.Exec(`DELETE FROM snapshots WHERE name = ?`, name)
	if err != nil {
		return errors.Wrap(errors.PhaseStash, errors.KindWriteFailed, err, "delete snapshot")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NotFound(errors.PhaseStash, "snapshot", name)
	}
	return nil
}

// List returns all snapshots, newest first.
func (s *Store) List() ([]Info, error) {
	rows, err := s.db.Query(`
		SELECT name, created_at, record_count
		FROM snapshots ORDER BY created_at DESC, name`)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseStash, errors.KindInvalidData, err, "list snapshots")
	}
	defer rows.Close()

	var out []Info
	for rows.Next() {
		var info Info
		var ts string
		if err := rows.Scan(&info.Name, &ts, &info.Records); err != nil {
			return nil, errors.Wrap(errors.PhaseStash, errors.KindInvalidData, err, "scan snapshot row")
		}
		if t, perr := time.Parse(time.RFC3339, ts); perr == nil {
			info.CreatedAt = t
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.PhaseStash, errors.KindInvalidData, err, "iterate snapshots")
	}
	return out, nil
}
