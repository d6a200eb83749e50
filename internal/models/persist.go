package models

import (
    "encoding/gob"
    "os"
    "path/filepath"

    "github.com/rotisserie/eris"
    "go.uber.org/multierr"

    "mlsteps/internal/data"
)

// Save gob-encodes v to path, replacing any existing file.
func Save(path string, v any) (err error) {
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
        return eris.Wrap(err, "create model dir")
    }
    f, err := os.Create(path)
    if err != nil {
        return eris.Wrapf(err, "create %s", path)
    }
    defer func() { err = multierr.Append(err, f.Close()) }()
    return eris.Wrapf(gob.NewEncoder(f).Encode(v), "encode %s", path)
}

// Load decodes a gob file written by Save into v.
func Load(path string, v any) error {
    f, err := os.Open(path)
    if err != nil {
        if os.IsNotExist(err) {
            return eris.Wrapf(data.ErrNotFound, "%s", path)
        }
        return eris.Wrapf(err, "open %s", path)
    }
    defer f.Close()
    return eris.Wrapf(gob.NewDecoder(f).Decode(v), "decode %s", path)
}
