// Package artifact is a versioned, immutable artifact store. Artifacts are
// addressed by references of the form name, name:latest, name:vN or
// name:<alias>.
package artifact

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"go.uber.org/multierr"
)

//go:generate mockgen -source=store.go -destination=mock_store.go -package=artifact Store

var (
	ErrNotFound    = eris.New("artifact not found")
	ErrInvalidRef  = eris.New("invalid artifact reference")
	ErrInvalidMeta = eris.New("invalid artifact metadata")
)

// Latest is the alias moved to the newest version on every publish.
const Latest = "latest"

// Store fetches artifacts to local files and publishes local files as new versions.
type Store interface {
	Fetch(ctx context.Context, ref string) (string, error)
	Publish(ctx context.Context, path string, meta Meta) (*Artifact, error)
}

// Meta describes an artifact being published.
type Meta struct {
	Name        string `json:"name" form:"name" binding:"required" validate:"required"`
	Type        string `json:"type" form:"type" binding:"required" validate:"required"`
	Description string `json:"description" form:"description"`
}

// Artifact is one immutable version of a named artifact.
type Artifact struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Version     int       `json:"version"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Digest      string    `json:"digest"`
	Filename    string    `json:"filename"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
	Aliases     []string  `json:"aliases,omitempty"`
}

// Ref returns the pinned reference name:vN.
func (a *Artifact) Ref() string { return a.Name + ":" + VersionTag(a.Version) }

// VersionTag formats a version number as vN.
func VersionTag(v int) string { return "v" + strconv.Itoa(v) }

// Ref is a parsed artifact reference. Version is vN or an alias.
type Ref struct {
	Name    string
	Version string
}

func (r Ref) String() string { return r.Name + ":" + r.Version }

// Number reports the pinned version when Version has the form vN.
func (r Ref) Number() (int, bool) {
	return parseVersion(r.Version)
}

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ParseRef parses name, name:latest, name:vN or name:<alias>.
func ParseRef(s string) (Ref, error) {
	name, version, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		version = Latest
	}
	if !namePattern.MatchString(name) || !namePattern.MatchString(version) {
		return Ref{}, eris.Wrapf(ErrInvalidRef, "%q", s)
	}
	return Ref{Name: name, Version: version}, nil
}

func parseVersion(s string) (int, bool) {
	if len(s) < 2 || s[0] != 'v' {
		return 0, false
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func validAlias(alias string) error {
	if !namePattern.MatchString(alias) {
		return eris.Wrapf(ErrInvalidRef, "alias %q", alias)
	}
	if _, ok := parseVersion(alias); ok {
		return eris.Wrapf(ErrInvalidRef, "alias %q looks like a version", alias)
	}
	return nil
}

var validate = validator.New()

func validateMeta(meta Meta) error {
	if err := validate.Struct(meta); err != nil {
		return eris.Wrapf(ErrInvalidMeta, "%v", err)
	}
	if !namePattern.MatchString(meta.Name) {
		return eris.Wrapf(ErrInvalidRef, "name %q", meta.Name)
	}
	return nil
}

// downloadPath is where a fetched artifact lands below dir.
func downloadPath(dir string, a *Artifact) string {
	return filepath.Join(dir, a.Name, VersionTag(a.Version), a.Filename)
}

func writeFile(dst string, r io.Reader) (err error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return eris.Wrapf(err, "artifact: create %s", filepath.Dir(dst))
	}
	f, err := os.Create(dst)
	if err != nil {
		return eris.Wrapf(err, "artifact: create %s", dst)
	}
	defer func() { err = multierr.Append(err, f.Close()) }()
	if _, err := io.Copy(f, r); err != nil {
		return eris.Wrapf(err, "artifact: write %s", dst)
	}
	return nil
}

// Close releases the store's resources when it holds any.
func Close(s Store) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
