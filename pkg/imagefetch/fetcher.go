// Package imagefetch downloads the preview image of an asset from the dataset's
// image host.
package imagefetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"scenedb-tools/pkg/layout"
)

// Outcome of a Fetch call.
type Outcome int

const (
	Cached Outcome = iota
	Downloaded
	Unavailable
)

func (o Outcome) String() string {
	switch o {
	case Cached:
		return "cached"
	case Downloaded:
		return "downloaded"
	case Unavailable:
		return "unavailable"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

type Fetcher struct {
	BaseURL *url.URL
	Client  *http.Client
	// Limiter paces requests to the image host; nil means unlimited.
	Limiter *rate.Limiter
	Tree    layout.Tree
	Logger  zerolog.Logger
}

// New returns a fetcher for images under baseURL. A positive rps limits the
// request rate.
func New(baseURL string, rps float64, tree layout.Tree, logger zerolog.Logger) (*Fetcher, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse image base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("image base url %q needs a scheme and host", baseURL)
	}
	f := &Fetcher{
		BaseURL: u,
		Client:  http.DefaultClient,
		Tree:    tree,
		Logger:  logger,
	}
	if rps > 0 {
		f.Limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return f, nil
}

// URL is the image location of id: <base>/<id>.jpg.
func (f *Fetcher) URL(id string) string {
	u := *f.BaseURL
	u.Path = u.Path + "/" + id + layout.ImageExt
	return u.String()
}

// Fetch downloads the preview of id unless it is already present. A non-200
// response is logged and reported as Unavailable; it is not an error.
func (f *Fetcher) Fetch(ctx context.Context, id string) (Outcome, error) {
	dst := f.Tree.ImagePath(id)
	if _, err := os.Stat(dst); err == nil {
		return Cached, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return Cached, err
	}

	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return Unavailable, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL(id), nil)
	if err != nil {
		return Unavailable, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return Unavailable, fmt.Errorf("download image %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		f.Logger.Warn().Str("id", id).Int("status", resp.StatusCode).
			Msg("could not download representative image (continuing anyway)")
		return Unavailable, nil
	}

	if err := writeAtomic(dst, resp.Body); err != nil {
		return Unavailable, fmt.Errorf("save image %s: %w", id, err)
	}
	return Downloaded, nil
}

func writeAtomic(dst string, r io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
