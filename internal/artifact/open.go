package artifact

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"mlsteps/internal/config"
)

// Open builds the store selected by cfg.Backend: "local" (default) or "http".
func Open(ctx context.Context, cfg config.ArtifactConfig) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "local":
		s, err := NewLocal(ctx, cfg.Root, cfg.DownloadDir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "http":
		if cfg.URL == "" {
			return nil, eris.New("artifact: http backend needs a url")
		}
		return NewHTTPStore(cfg.URL, cfg.DownloadDir), nil
	}
	return nil, eris.Errorf("artifact: unknown backend %q", cfg.Backend)
}
