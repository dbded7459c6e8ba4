// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package store implements the cache-archive registry: a small sqlite
// database under the cache-archive root that indexes built LPT and
// LMLA images, so a decoder process can discover and validate a
// previously built pair without re-reading every image file on disk.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaDDL string

// Record is one row of the images table: the on-disk location of a
// built component keyed by its topology fingerprint, plus the
// checksums image.Read needs to decide whether the file is still
// valid.
type Record struct {
	Component       string
	Fingerprint     string
	FormatVersion   uint32
	ConfigChecksum  uint32
	ContentChecksum uint32
	Path            string
	BuiltAt         time.Time
}

// Store is an open handle to the cache-archive database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the cache-archive database under
// root, applying the schema if it is missing.
func Open(root string) (*Store, error) {
	if fi, err := os.Stat(root); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("store: stat %s: %w", root, err)
		}
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, fmt.Errorf("store: mkdir %s: %w", root, err)
		}
	} else if !fi.IsDir() {
		return nil, ErrInvalidPath
	}

	path := filepath.Join(root, "cache-archive.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put records or replaces the image built for (component, fingerprint).
func (s *Store) Put(ctx context.Context, r Record) error {
	const stmt = `
		INSERT INTO images (component, fingerprint, format_version, config_checksum, content_checksum, path, built_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (component, fingerprint) DO UPDATE SET
			format_version   = excluded.format_version,
			config_checksum  = excluded.config_checksum,
			content_checksum = excluded.content_checksum,
			path             = excluded.path,
			built_at         = excluded.built_at
	`
	_, err := s.db.ExecContext(ctx, stmt,
		r.Component, r.Fingerprint, r.FormatVersion, r.ConfigChecksum, r.ContentChecksum, r.Path, r.BuiltAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("store: put %s/%s: %w", r.Component, r.Fingerprint, err)
	}
	return nil
}

// Lookup returns the record for (component, fingerprint), or
// ErrNotFound if no image has been built for that key.
func (s *Store) Lookup(ctx context.Context, component, fingerprint string) (Record, error) {
	const stmt = `
		SELECT format_version, config_checksum, content_checksum, path, built_at
		FROM images WHERE component = ? AND fingerprint = ?
	`
	row := s.db.QueryRowContext(ctx, stmt, component, fingerprint)

	var r Record
	var builtAt string
	err := row.Scan(&r.FormatVersion, &r.ConfigChecksum, &r.ContentChecksum, &r.Path, &builtAt)
	if err == sql.ErrNoRows {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("store: lookup %s/%s: %w", component, fingerprint, err)
	}
	r.Component, r.Fingerprint = component, fingerprint
	r.BuiltAt, err = time.Parse(time.RFC3339Nano, builtAt)
	if err != nil {
		return Record{}, fmt.Errorf("store: parse built_at: %w", err)
	}
	return r, nil
}

// Delete removes the record for (component, fingerprint), if any.
func (s *Store) Delete(ctx context.Context, component, fingerprint string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM images WHERE component = ? AND fingerprint = ?`, component, fingerprint)
	if err != nil {
		return fmt.Errorf("store: delete %s/%s: %w", component, fingerprint, err)
	}
	return nil
}
