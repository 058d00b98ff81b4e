package bitpast

import (
	"database/sql"
	"fmt"

	"github.com/bodgit/bitpast/pack"
	"github.com/klauspost/compress/zstd"
	_ "github.com/mattn/go-sqlite3"
)

// Store remembers conversions in an SQLite database. Payloads are stored
// compressed and keyed by the SHA-1 of the source image and the settings
// used.
type Store struct {
	db      *sql.DB
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// Entry describes a stored conversion.
type Entry struct {
	SHA1   string
	Config string
	Size   int
}

// NewStore opens, or creates, the database in file.
func NewStore(file string) (*Store, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=5000", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS source (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL UNIQUE)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS conversion (id INTEGER PRIMARY KEY NOT NULL, source_id INTEGER NOT NULL, config TEXT NOT NULL, size INTEGER NOT NULL, payload BLOB NOT NULL, UNIQUE(source_id, config), FOREIGN KEY(source_id) REFERENCES source(id))"); err != nil {
		db.Close()
		return nil, err
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, err
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		db.Close()
		return nil, err
	}

	return &Store{
		db:      db,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	s.decoder.Close()
	if err := s.encoder.Close(); err != nil {
		s.db.Close()
		return err
	}
	return s.db.Close()
}

func (s *Store) addSource(sha string) (int64, error) {
	// Batch workers may race to add the same source
	if _, err := s.db.Exec("INSERT OR IGNORE INTO source (sha1) VALUES (?)", sha); err != nil {
		return 0, err
	}

	var id int64
	if err := s.db.QueryRow("SELECT id FROM source WHERE sha1 = ?", sha).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// Add stores the payload of r for the source with the given SHA-1,
// replacing any earlier conversion with the same settings.
func (s *Store) Add(sha string, r *Result) error {
	b, err := r.Payload.MarshalBinary()
	if err != nil {
		return err
	}

	source, err := s.addSource(sha)
	if err != nil {
		return err
	}

	if _, err := s.db.Exec("INSERT OR REPLACE INTO conversion (source_id, config, size, payload) VALUES (?, ?, ?, ?)", source, r.Config.Key(), len(b), s.encoder.EncodeAll(b, nil)); err != nil {
		return err
	}

	return nil
}

// Find returns the stored conversion of the source with the given SHA-1
// using cfg, or nil if there is none.
func (s *Store) Find(sha string, cfg Config) (*Result, error) {
	var blob []byte
	switch err := s.db.QueryRow("SELECT c.payload FROM conversion AS c JOIN source AS s ON c.source_id = s.id WHERE s.sha1 = ? AND c.config = ?", sha, cfg.Key()).Scan(&blob); err {
	case sql.ErrNoRows:
		return nil, nil
	case nil:
		b, err := s.decoder.DecodeAll(blob, nil)
		if err != nil {
			return nil, err
		}

		p := new(pack.Payload)
		if err := p.UnmarshalBinary(b); err != nil {
			return nil, err
		}

		return Restore(cfg, p)
	default:
		return nil, err
	}
}

// Entries lists every stored conversion.
func (s *Store) Entries() ([]Entry, error) {
	rows, err := s.db.Query("SELECT s.sha1, c.config, c.size FROM conversion AS c JOIN source AS s ON c.source_id = s.id ORDER BY s.sha1, c.config")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.SHA1, &e.Config, &e.Size); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
