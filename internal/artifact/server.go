package artifact

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Registry is a Store that can also be browsed and tagged, as served over HTTP.
type Registry interface {
	Store
	Resolve(ctx context.Context, ref string) (*Artifact, error)
	Open(ctx context.Context, a *Artifact) (io.ReadCloser, error)
	Alias(ctx context.Context, name, alias string, version int) error
	Versions(ctx context.Context, name string) ([]Artifact, error)
}

var (
	_ Registry = (*LocalStore)(nil)
	_ Registry = (*MemoryStore)(nil)
	_ Store    = (*HTTPStore)(nil)
)

// Server exposes a Registry over HTTP.
type Server struct {
	reg    Registry
	logger *zap.Logger
	tmpDir string
}

// NewServer serves reg. Uploads are staged in tmpDir (os.TempDir when empty).
func NewServer(reg Registry, tmpDir string, logger *zap.Logger) *Server {
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	return &Server{reg: reg, logger: logger, tmpDir: tmpDir}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog)
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.POST("/artifacts", s.handlePublish)
	r.GET("/artifacts/:name", s.handleVersions)
	r.GET("/artifacts/:name/:version", s.handleResolve)
	r.GET("/artifacts/:name/:version/file", s.handleFile)
	r.PUT("/artifacts/:name/aliases/:alias", s.handleAlias)
	return r
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Router()}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("registry listening", zap.String("addr", addr))
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("registry shutting down")
		return srv.Shutdown(context.Background())
	}
}

func (s *Server) accessLog(c *gin.Context) {
	c.Next()
	s.logger.Info("request",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", c.Writer.Status()),
	)
}

func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrInvalidRef), errors.Is(err, ErrInvalidMeta):
		status = http.StatusBadRequest
	default:
		s.logger.Error("registry request failed", zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func (s *Server) handlePublish(c *gin.Context) {
	var meta Meta
	if err := c.ShouldBind(&meta); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return
	}
	if err := os.MkdirAll(s.tmpDir, 0o755); err != nil {
		s.fail(c, err)
		return
	}
	dir, err := os.MkdirTemp(s.tmpDir, "upload-")
	if err != nil {
		s.fail(c, err)
		return
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, path); err != nil {
		s.fail(c, err)
		return
	}
	a, err := s.reg.Publish(c.Request.Context(), path, meta)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.logger.Info("artifact published", zap.String("ref", a.Ref()), zap.String("digest", a.Digest))
	c.JSON(http.StatusCreated, a)
}

func (s *Server) handleVersions(c *gin.Context) {
	as, err := s.reg.Versions(c.Request.Context(), c.Param("name"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": as})
}

func (s *Server) resolve(c *gin.Context) (*Artifact, bool) {
	a, err := s.reg.Resolve(c.Request.Context(), c.Param("name")+":"+c.Param("version"))
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	return a, true
}

func (s *Server) handleResolve(c *gin.Context) {
	if a, ok := s.resolve(c); ok {
		c.JSON(http.StatusOK, a)
	}
}

func (s *Server) handleFile(c *gin.Context) {
	a, ok := s.resolve(c)
	if !ok {
		return
	}
	rc, err := s.reg.Open(c.Request.Context(), a)
	if err != nil {
		s.fail(c, err)
		return
	}
	defer rc.Close()
	c.DataFromReader(http.StatusOK, a.Size, "application/octet-stream", rc, map[string]string{
		"Content-Disposition": `attachment; filename="` + a.Filename + `"`,
		"X-Artifact-Version":  strconv.Itoa(a.Version),
		"X-Artifact-Digest":   a.Digest,
	})
}

type aliasRequest struct {
	Version *int `json:"version" binding:"required,min=0"`
}

func (s *Server) handleAlias(c *gin.Context) {
	var req aliasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	name, alias := c.Param("name"), c.Param("alias")
	if err := s.reg.Alias(c.Request.Context(), name, alias, *req.Version); err != nil {
		s.fail(c, err)
		return
	}
	a, err := s.reg.Resolve(c.Request.Context(), name+":"+alias)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}
