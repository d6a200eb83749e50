package artifact

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/multierr"
	_ "modernc.org/sqlite"
)

const localMigration = `
CREATE TABLE IF NOT EXISTS artifacts (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	version     INTEGER NOT NULL,
	type        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	digest      TEXT NOT NULL,
	filename    TEXT NOT NULL,
	size        INTEGER NOT NULL,
	created_at  TEXT NOT NULL,
	UNIQUE (name, version)
);

CREATE TABLE IF NOT EXISTS aliases (
	name    TEXT NOT NULL,
	alias   TEXT NOT NULL,
	version INTEGER NOT NULL,
	PRIMARY KEY (name, alias)
);

CREATE INDEX IF NOT EXISTS idx_artifacts_digest ON artifacts(digest);
`

const artifactColumns = `id, name, version, type, description, digest, filename, size, created_at`

// LocalStore keeps content-addressed blobs under root/blobs and the registry
// of names, versions and aliases in a SQLite database at root/registry.db.
type LocalStore struct {
	mu          sync.Mutex
	db          *sql.DB
	root        string
	downloadDir string
}

// NewLocal opens (creating if needed) a store rooted at root. Fetched files
// are copied below downloadDir, which defaults to root/downloads.
func NewLocal(ctx context.Context, root, downloadDir string) (*LocalStore, error) {
	if err := os.MkdirAll(filepath.Join(root, "blobs"), 0o755); err != nil {
		return nil, eris.Wrapf(err, "artifact: create %s", root)
	}
	if downloadDir == "" {
		downloadDir = filepath.Join(root, "downloads")
	}
	db, err := sql.Open("sqlite", filepath.Join(root, "registry.db"))
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	if _, err := db.ExecContext(ctx, localMigration); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "sqlite: migrate")
	}
	return &LocalStore{db: db, root: root, downloadDir: downloadDir}, nil
}

func (s *LocalStore) Close() error {
	return s.db.Close()
}

func (s *LocalStore) blobPath(digest string) string {
	return filepath.Join(s.root, "blobs", strings.TrimPrefix(digest, "sha256:"))
}

// Publish stores the file at path as the next version of meta.Name and moves
// the latest alias to it. Content identical to the current latest version is
// not stored again; the existing version is returned.
func (s *LocalStore) Publish(ctx context.Context, path string, meta Meta) (*Artifact, error) {
	if err := validateMeta(meta); err != nil {
		return nil, err
	}
	digest, size, err := s.writeBlob(path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	latest, err := s.resolve(ctx, Ref{Name: meta.Name, Version: Latest})
	switch {
	case err == nil && latest.Digest == digest:
		return latest, nil
	case err != nil && !errors.Is(err, ErrNotFound):
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	var next int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version) + 1, 0) FROM artifacts WHERE name = ?`, meta.Name,
	).Scan(&next); err != nil {
		return nil, eris.Wrapf(err, "sqlite: next version of %s", meta.Name)
	}

	a := &Artifact{
		ID:          uuid.New().String(),
		Name:        meta.Name,
		Version:     next,
		Type:        meta.Type,
		Description: meta.Description,
		Digest:      digest,
		Filename:    filepath.Base(path),
		Size:        size,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO artifacts (`+artifactColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.Version, a.Type, a.Description, a.Digest, a.Filename, a.Size,
		a.CreatedAt.Format(time.RFC3339Nano),
	); err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert %s", a.Ref())
	}
	if err := setAlias(ctx, tx, a.Name, Latest, a.Version); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit")
	}
	a.Aliases = []string{Latest}
	return a, nil
}

// writeBlob hashes the file while copying it into the blob directory.
func (s *LocalStore) writeBlob(path string) (digest string, size int64, err error) {
	src, err := os.Open(path)
	if err != nil {
		return "", 0, eris.Wrapf(err, "artifact: open %s", path)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(filepath.Join(s.root, "blobs"), ".upload-*")
	if err != nil {
		return "", 0, eris.Wrap(err, "artifact: create temp blob")
	}
	defer os.Remove(tmp.Name())

	h := sha256.New()
	size, err = io.Copy(io.MultiWriter(tmp, h), src)
	err = multierr.Append(err, tmp.Close())
	if err != nil {
		return "", 0, eris.Wrapf(err, "artifact: copy %s", path)
	}
	digest = "sha256:" + hex.EncodeToString(h.Sum(nil))
	dst := s.blobPath(digest)
	if _, statErr := os.Stat(dst); statErr == nil {
		return digest, size, nil
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", 0, eris.Wrapf(err, "artifact: store blob %s", digest)
	}
	return digest, size, nil
}

func (s *LocalStore) Resolve(ctx context.Context, ref string) (*Artifact, error) {
	r, err := ParseRef(ref)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, r)
}

func (s *LocalStore) resolve(ctx context.Context, r Ref) (*Artifact, error) {
	version, ok := r.Number()
	if !ok {
		err := s.db.QueryRowContext(ctx,
			`SELECT version FROM aliases WHERE name = ? AND alias = ?`, r.Name, r.Version,
		).Scan(&version)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "%s", r)
		}
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: resolve alias %s", r)
		}
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+artifactColumns+` FROM artifacts WHERE name = ? AND version = ?`, r.Name, version)
	a, err := scanArtifact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "%s", r)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get %s", r)
	}
	if a.Aliases, err = s.aliasesOf(ctx, a.Name, a.Version); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *LocalStore) aliasesOf(ctx context.Context, name string, version int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT alias FROM aliases WHERE name = ? AND version = ? ORDER BY alias`, name, version)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: aliases of %s", name)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var alias string
		if err := rows.Scan(&alias); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan alias")
		}
		out = append(out, alias)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate aliases")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArtifact(row rowScanner) (*Artifact, error) {
	var a Artifact
	var created string
	if err := row.Scan(&a.ID, &a.Name, &a.Version, &a.Type, &a.Description, &a.Digest, &a.Filename, &a.Size, &created); err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, eris.Wrapf(err, "artifact: parse created_at of %s", a.Ref())
	}
	a.CreatedAt = t
	return &a, nil
}

// Fetch copies the referenced blob to downloadDir/<name>/vN/<filename>.
func (s *LocalStore) Fetch(ctx context.Context, ref string) (string, error) {
	a, err := s.Resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	rc, err := s.Open(ctx, a)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	dst := downloadPath(s.downloadDir, a)
	if err := writeFile(dst, rc); err != nil {
		return "", err
	}
	return dst, nil
}

func (s *LocalStore) Open(ctx context.Context, a *Artifact) (io.ReadCloser, error) {
	f, err := os.Open(s.blobPath(a.Digest))
	if err != nil {
		return nil, eris.Wrapf(err, "artifact: open blob of %s", a.Ref())
	}
	return f, nil
}

// Alias points name:alias at an existing version.
func (s *LocalStore) Alias(ctx context.Context, name, alias string, version int) error {
	if err := validAlias(alias); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.resolve(ctx, Ref{Name: name, Version: VersionTag(version)}); err != nil {
		return err
	}
	return setAlias(ctx, s.db, name, alias, version)
}

func (s *LocalStore) Versions(ctx context.Context, name string) ([]Artifact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+artifactColumns+` FROM artifacts WHERE name = ? ORDER BY version`, name)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list %s", name)
	}
	defer rows.Close()
	var out []Artifact
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: scan %s", name)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrapf(err, "sqlite: iterate %s", name)
	}
	if len(out) == 0 {
		return nil, eris.Wrapf(ErrNotFound, "%s", name)
	}
	return out, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func setAlias(ctx context.Context, db execer, name, alias string, version int) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO aliases (name, alias, version) VALUES (?, ?, ?)
		 ON CONFLICT(name, alias) DO UPDATE SET version = excluded.version`,
		name, alias, version,
	)
	return eris.Wrapf(err, "sqlite: set alias %s:%s", name, alias)
}
