package imagefetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"scenedb-tools/pkg/layout"
)

const imagePrefix = "/SceneModeling/Database/SceneImagesB"

// imageHost serves <prefix>/<id>.jpg for the ids in images and 404 otherwise.
func imageHost(t *testing.T, images map[string]string, hits *atomic.Int32) *httptest.Server {
	r := chi.NewRouter()
	r.Get(imagePrefix+"/{file}", func(w http.ResponseWriter, req *http.Request) {
		hits.Add(1)
		file := chi.URLParam(req, "file")
		body, ok := images[file]
		if !ok {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte(body))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func newFetcher(t *testing.T, srv *httptest.Server) (*Fetcher, layout.Tree) {
	tree := layout.New(t.TempDir())
	require.NoError(t, tree.EnsureTree())
	f, err := New(srv.URL+imagePrefix+"/", 0, tree, zerolog.Nop())
	require.NoError(t, err)
	return f, tree
}

func TestFetch_DownloadsThenCaches(t *testing.T) {
	var hits atomic.Int32
	srv := imageHost(t, map[string]string{"chair.jpg": "\xff\xd8jpeg"}, &hits)
	f, tree := newFetcher(t, srv)

	require.Equal(t, srv.URL+imagePrefix+"/chair.jpg", f.URL("chair"))

	out, err := f.Fetch(context.Background(), "chair")
	require.NoError(t, err)
	require.Equal(t, Downloaded, out)

	data, err := os.ReadFile(tree.ImagePath("chair"))
	require.NoError(t, err)
	require.Equal(t, "\xff\xd8jpeg", string(data))

	out, err = f.Fetch(context.Background(), "chair")
	require.NoError(t, err)
	require.Equal(t, Cached, out)
	require.Equal(t, int32(1), hits.Load(), "cached images are not requested again")
}

func TestFetch_Non200IsNotFatal(t *testing.T) {
	var hits atomic.Int32
	srv := imageHost(t, nil, &hits)
	f, tree := newFetcher(t, srv)

	out, err := f.Fetch(context.Background(), "missing")
	require.NoError(t, err)
	require.Equal(t, Unavailable, out)

	_, err = os.Stat(tree.ImagePath("missing"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestFetch_TransportErrorPropagates(t *testing.T) {
	var hits atomic.Int32
	srv := imageHost(t, nil, &hits)
	f, _ := newFetcher(t, srv)
	srv.Close()

	_, err := f.Fetch(context.Background(), "chair")
	require.Error(t, err)
}

func TestNew_RateLimit(t *testing.T) {
	tree := layout.New(t.TempDir())

	f, err := New("http://images.example/base", 2, tree, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, f.Limiter)

	f, err = New("http://images.example/base", 0, tree, zerolog.Nop())
	require.NoError(t, err)
	require.Nil(t, f.Limiter)

	_, err = New("not a url", 0, tree, zerolog.Nop())
	require.Error(t, err)
}
