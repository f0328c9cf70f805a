// Package store caches fitted forecaster models in sqlite so a country's forecast is
// only trained once per window.
package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"time"

	"github.com/aouyang1/go-covidcast/dataset"
	"github.com/aouyang1/go-covidcast/forecaster"
	"github.com/goccy/go-json"

	_ "github.com/glebarez/go-sqlite"
)

const MemoryPath = ":memory:"

var (
	ErrNotFound   = errors.New("model not found")
	ErrClosed     = errors.New("store is closed")
	ErrInvalidKey = errors.New("invalid model key")
	ErrMismatched = errors.New("mismatched series lengths")
)

const schema = `
CREATE TABLE IF NOT EXISTS models (
	country    TEXT NOT NULL,
	metric     TEXT NOT NULL,
	start_date TEXT NOT NULL,
	end_date    TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	model       TEXT NOT NULL,
	created_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (country, metric, start_date, end_date, fingerprint)
)`

// Key identifies a model by the series and training window it was fit on. Fingerprint
// separates models fit on different data or options over the same window.
type Key struct {
	Country     string         `json:"country"`
	Metric      dataset.Metric `json:"metric"`
	Start       time.Time      `json:"start"`
	End         time.Time      `json:"end"`
	Fingerprint string         `json:"fingerprint"`
}

// Valid reports if the key names a country, an ordered window and a fingerprint
func (k Key) Valid() bool {
	return k.Country != "" && k.Fingerprint != "" &&
		!k.Start.IsZero() && !k.End.IsZero() && !k.End.Before(k.Start)
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s/%s/%s", k.Country, k.Metric,
		k.Start.Format(time.DateOnly), k.End.Format(time.DateOnly), k.Fingerprint)
}

// Fingerprint hashes a training series and the options it is fit with
func Fingerprint(t []time.Time, y []float64, opt *forecaster.Options) (string, error) {
	if len(t) != len(y) {
		return "", fmt.Errorf("%d times and %d values, %w", len(t), len(y), ErrMismatched)
	}
	h := fnv.New64a()
	var buf [8]byte
	for i := range t {
		binary.LittleEndian.PutUint64(buf[:], uint64(t[i].UnixNano()))
		h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(y[i]))
		h.Write(buf[:])
	}
	if opt != nil {
		payload, err := json.Marshal(opt)
		if err != nil {
			return "", fmt.Errorf("unable to encode forecaster options, %w", err)
		}
		h.Write(payload)
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

// Entry is a listed model key with the time it was stored
type Entry struct {
	Key       Key       `json:"key"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is a sqlite backed model cache safe for concurrent use
type Store struct {
	db *sql.DB
}

// Open opens or creates the model cache at path. MemoryPath keeps the cache in memory.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("unable to open model store, %w", err)
	}
	// every connection to an in memory database is a separate database
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// migrate creates the models table, dropping a cache written without fingerprints
func migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("unable to create models table, %w", err)
	}
	if _, err := db.ExecContext(ctx, `SELECT fingerprint FROM models LIMIT 0`); err == nil {
		return nil
	}
	if _, err := db.ExecContext(ctx, `DROP TABLE models`); err != nil {
		return fmt.Errorf("unable to drop stale models table, %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("unable to create models table, %w", err)
	}
	return nil
}

// Put stores a model replacing any model with the same key
func (s *Store) Put(ctx context.Context, key Key, model forecaster.Model) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	if !key.Valid() {
		return fmt.Errorf("%s, %w", key, ErrInvalidKey)
	}
	payload, err := json.Marshal(model)
	if err != nil {
		return fmt.Errorf("unable to encode model, %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO models (country, metric, start_date, end_date, fingerprint, model)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (country, metric, start_date, end_date, fingerprint)
		DO UPDATE SET model = excluded.model, created_at = CURRENT_TIMESTAMP`,
		key.Country, key.Metric.String(),
		key.Start.Format(time.DateOnly), key.End.Format(time.DateOnly),
		key.Fingerprint, string(payload),
	)
	if err != nil {
		return fmt.Errorf("unable to store model %s, %w", key, err)
	}
	return nil
}

// Get loads the model stored under key, ErrNotFound if there is none
func (s *Store) Get(ctx context.Context, key Key) (forecaster.Model, error) {
	var model forecaster.Model
	if s == nil || s.db == nil {
		return model, ErrClosed
	}

	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT model FROM models
		WHERE country = ? AND metric = ? AND start_date = ? AND end_date = ? AND fingerprint = ?`,
		key.Country, key.Metric.String(),
		key.Start.Format(time.DateOnly), key.End.Format(time.DateOnly),
		key.Fingerprint,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return model, fmt.Errorf("%s, %w", key, ErrNotFound)
	}
	if err != nil {
		return model, fmt.Errorf("unable to load model %s, %w", key, err)
	}

	if err := json.Unmarshal([]byte(payload), &model); err != nil {
		return model, fmt.Errorf("unable to decode model %s, %w", key, err)
	}
	return model, nil
}

// Delete removes the model stored under key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key Key) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM models
		WHERE country = ? AND metric = ? AND start_date = ? AND end_date = ? AND fingerprint = ?`,
		key.Country, key.Metric.String(),
		key.Start.Format(time.DateOnly), key.End.Format(time.DateOnly),
		key.Fingerprint,
	)
	if err != nil {
		return fmt.Errorf("unable to delete model %s, %w", key, err)
	}
	return nil
}

// List returns every stored key ordered by country, metric and window
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT country, metric, start_date, end_date, fingerprint, created_at FROM models
		ORDER BY country, metric, start_date, end_date, fingerprint`)
	if err != nil {
		return nil, fmt.Errorf("unable to list models, %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                             Entry
			metric, start, end, createdAt string
		)
		if err := rows.Scan(&e.Key.Country, &metric, &start, &end, &e.Key.Fingerprint, &createdAt); err != nil {
			return nil, fmt.Errorf("unable to scan model key, %w", err)
		}
		if e.Key.Metric, err = dataset.ParseMetric(metric); err != nil {
			return nil, err
		}
		if e.Key.Start, err = time.Parse(time.DateOnly, start); err != nil {
			return nil, err
		}
		if e.Key.End, err = time.Parse(time.DateOnly, end); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the database
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// sqlite timestamps come back as text or, for DATETIME columns, as times formatted by
// database/sql
var timestampLayouts = []string{time.DateTime, time.RFC3339Nano}

func parseTimestamp(s string) (time.Time, error) {
	var err error
	for _, layout := range timestampLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse timestamp %q, %w", s, err)
}
