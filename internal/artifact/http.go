package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/multierr"
)

// HTTPStore talks to a registry Server.
type HTTPStore struct {
	BaseURL     string
	DownloadDir string
	Client      *http.Client
}

func NewHTTPStore(baseURL, downloadDir string) *HTTPStore {
	return &HTTPStore{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		DownloadDir: downloadDir,
		Client:      &http.Client{Timeout: 5 * time.Minute},
	}
}

func (s *HTTPStore) endpoint(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return s.BaseURL + "/artifacts/" + strings.Join(escaped, "/")
}

func (s *HTTPStore) Resolve(ctx context.Context, ref string) (*Artifact, error) {
	r, err := ParseRef(ref)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint(r.Name, r.Version), nil)
	if err != nil {
		return nil, eris.Wrap(err, "artifact: build request")
	}
	var a Artifact
	if err := s.do(req, &a); err != nil {
		return nil, eris.Wrapf(err, "artifact: resolve %s", r)
	}
	return &a, nil
}

func (s *HTTPStore) Fetch(ctx context.Context, ref string) (string, error) {
	a, err := s.Resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint(a.Name, VersionTag(a.Version), "file"), nil)
	if err != nil {
		return "", eris.Wrap(err, "artifact: build request")
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return "", eris.Wrapf(err, "artifact: download %s", a.Ref())
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return "", eris.Wrapf(err, "artifact: download %s", a.Ref())
	}
	dst := downloadPath(s.DownloadDir, a)
	if err := writeFile(dst, resp.Body); err != nil {
		return "", err
	}
	return dst, nil
}

func (s *HTTPStore) Publish(ctx context.Context, path string, meta Meta) (*Artifact, error) {
	if err := validateMeta(meta); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "artifact: open %s", path)
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		err := writeForm(mw, f, filepath.Base(path), meta)
		pw.CloseWithError(multierr.Append(err, mw.Close()))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/artifacts", pr)
	if err != nil {
		pr.Close()
		return nil, eris.Wrap(err, "artifact: build request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	var a Artifact
	if err := s.do(req, &a); err != nil {
		return nil, eris.Wrapf(err, "artifact: publish %s", meta.Name)
	}
	return &a, nil
}

func writeForm(mw *multipart.Writer, f io.Reader, filename string, meta Meta) error {
	for k, v := range map[string]string{"name": meta.Name, "type": meta.Type, "description": meta.Description} {
		if err := mw.WriteField(k, v); err != nil {
			return err
		}
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, f)
	return err
}

func (s *HTTPStore) Alias(ctx context.Context, name, alias string, version int) error {
	if err := validAlias(alias); err != nil {
		return err
	}
	body := strings.NewReader(fmt.Sprintf(`{"version":%d}`, version))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.endpoint(name, "aliases", alias), body)
	if err != nil {
		return eris.Wrap(err, "artifact: build request")
	}
	req.Header.Set("Content-Type", "application/json")
	return eris.Wrapf(s.do(req, nil), "artifact: alias %s:%s", name, alias)
}

func (s *HTTPStore) do(req *http.Request, out any) error {
	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type errorBody struct {
	Error string `json:"error"`
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode < 300 {
		return nil
	}
	var body errorBody
	_ = json.NewDecoder(resp.Body).Decode(&body)
	switch resp.StatusCode {
	case http.StatusNotFound:
		return eris.Wrap(ErrNotFound, body.Error)
	case http.StatusBadRequest:
		return eris.Wrap(ErrInvalidRef, body.Error)
	}
	return eris.Errorf("registry returned %s: %s", resp.Status, body.Error)
}
