package artifact

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

type memoryEntry struct {
	artifact Artifact
	content  []byte
}

// MemoryStore keeps artifacts in memory. Fetch materializes them below dir.
type MemoryStore struct {
	mu       sync.RWMutex
	dir      string
	versions map[string][]memoryEntry
	aliases  map[string]map[string]int
}

func NewMemoryStore(dir string) *MemoryStore {
	return &MemoryStore{
		dir:      dir,
		versions: map[string][]memoryEntry{},
		aliases:  map[string]map[string]int{},
	}
}

func (s *MemoryStore) Publish(ctx context.Context, path string, meta Meta) (*Artifact, error) {
	if err := validateMeta(meta); err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "artifact: read %s", path)
	}
	sum := sha256.Sum256(content)
	digest := "sha256:" + hex.EncodeToString(sum[:])

	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.versions[meta.Name]
	if v, ok := s.aliases[meta.Name][Latest]; ok && entries[v].artifact.Digest == digest {
		return s.withAliases(entries[v].artifact), nil
	}
	a := Artifact{
		ID:          uuid.New().String(),
		Name:        meta.Name,
		Version:     len(entries),
		Type:        meta.Type,
		Description: meta.Description,
		Digest:      digest,
		Filename:    filepath.Base(path),
		Size:        int64(len(content)),
		CreatedAt:   time.Now().UTC(),
	}
	s.versions[meta.Name] = append(entries, memoryEntry{artifact: a, content: content})
	if s.aliases[meta.Name] == nil {
		s.aliases[meta.Name] = map[string]int{}
	}
	s.aliases[meta.Name][Latest] = a.Version
	return s.withAliases(a), nil
}

func (s *MemoryStore) Resolve(ctx context.Context, ref string) (*Artifact, error) {
	e, err := s.entry(ref)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.withAliases(e.artifact), nil
}

func (s *MemoryStore) Fetch(ctx context.Context, ref string) (string, error) {
	e, err := s.entry(ref)
	if err != nil {
		return "", err
	}
	dst := downloadPath(s.dir, &e.artifact)
	if err := writeFile(dst, bytes.NewReader(e.content)); err != nil {
		return "", err
	}
	return dst, nil
}

func (s *MemoryStore) Open(ctx context.Context, a *Artifact) (io.ReadCloser, error) {
	e, err := s.entry(a.Ref())
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(e.content)), nil
}

func (s *MemoryStore) Alias(ctx context.Context, name, alias string, version int) error {
	if err := validAlias(alias); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if version < 0 || version >= len(s.versions[name]) {
		return eris.Wrapf(ErrNotFound, "%s:%s", name, VersionTag(version))
	}
	if s.aliases[name] == nil {
		s.aliases[name] = map[string]int{}
	}
	s.aliases[name][alias] = version
	return nil
}

func (s *MemoryStore) Versions(ctx context.Context, name string) ([]Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.versions[name]
	if len(entries) == 0 {
		return nil, eris.Wrapf(ErrNotFound, "%s", name)
	}
	out := make([]Artifact, len(entries))
	for i, e := range entries {
		out[i] = *s.withAliases(e.artifact)
	}
	return out, nil
}

func (s *MemoryStore) entry(ref string) (memoryEntry, error) {
	r, err := ParseRef(ref)
	if err != nil {
		return memoryEntry{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := r.Number()
	if !ok {
		v, ok = s.aliases[r.Name][r.Version]
	}
	entries := s.versions[r.Name]
	if !ok || v >= len(entries) {
		return memoryEntry{}, eris.Wrapf(ErrNotFound, "%s", r)
	}
	return entries[v], nil
}

// withAliases copies a and attaches the aliases pointing at it. Callers hold mu.
func (s *MemoryStore) withAliases(a Artifact) *Artifact {
	a.Aliases = nil
	for alias, v := range s.aliases[a.Name] {
		if v == a.Version {
			a.Aliases = append(a.Aliases, alias)
		}
	}
	sort.Strings(a.Aliases)
	return &a
}
