// Package server serves a converted asset tree to the viewer over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"scenedb-tools/pkg/layout"
	"scenedb-tools/pkg/metadata"
	"scenedb-tools/pkg/store"
)

// kinds maps URL kinds to the subdirectory holding them.
var kinds = map[string]string{
	"model":    layout.ModelDirName,
	"geometry": layout.GeometryDirName,
	"texture":  layout.TextureDirName,
	"metadata": layout.MetadataDirName,
	"image":    layout.ImageDirName,
}

type Server struct {
	h        http.Handler
	store    store.Store
	logger   zerolog.Logger
	requests *prometheus.CounterVec
}

// New builds the routes over st.
func New(st store.Store, logger zerolog.Logger) *Server {
	s := &Server{
		store:  st,
		logger: logger,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scenedb_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(s.requests)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.count)

	r.Get("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Get("/data/{kind}/{name}", s.getArtifact)
	r.Get("/api/assets", s.listAssets)
	r.Get("/api/assets/{id}", s.getAsset)

	s.h = gzhttp.GzipHandler(r)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.h
}

// count records one request per matched route pattern.
func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	})
}

func (s *Server) getArtifact(w http.ResponseWriter, r *http.Request) {
	dir, ok := kinds[chi.URLParam(r, "kind")]
	if !ok {
		http.NotFound(w, r)
		return
	}
	name := dir + "/" + chi.URLParam(r, "name")
	data, ok := s.get(w, r, name)
	if !ok {
		return
	}

	etag := `"` + strconv.FormatUint(xxhash.Sum64(data), 16) + `"`
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if match := r.Header.Get("If-None-Match"); match != "" && etagMatch(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", store.ContentType(name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

func (s *Server) listAssets(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.List(r.Context(), layout.ModelDirName+"/")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ids := make([]string, 0, len(names))
	for _, n := range names {
		base := strings.TrimPrefix(n, layout.ModelDirName+"/")
		if strings.Contains(base, "/") || !strings.HasSuffix(base, layout.ModelExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(base, layout.ModelExt))
	}
	sort.Strings(ids)
	writeJSON(w, ids)
}

func (s *Server) getAsset(w http.ResponseWriter, r *http.Request) {
	data, ok := s.get(w, r, layout.MetadataDirName+"/"+chi.URLParam(r, "id")+layout.MetadataExt)
	if !ok {
		return
	}
	var rec metadata.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, rec)
}

// get loads name, answering 404 or 500 itself when it cannot.
func (s *Server) get(w http.ResponseWriter, r *http.Request, name string) ([]byte, bool) {
	data, err := s.store.Get(r.Context(), name)
	switch {
	case err == nil:
		return data, true
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrInvalidName):
		http.NotFound(w, r)
	default:
		s.fail(w, r, err)
	}
	return nil, false
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func etagMatch(header, etag string) bool {
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part == "*" || strings.TrimPrefix(part, "W/") == etag {
			return true
		}
	}
	return false
}
