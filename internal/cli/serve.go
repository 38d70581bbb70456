package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/aarforge/aarforge/pkg/cache"
	"github.com/aarforge/aarforge/pkg/export"
	"github.com/aarforge/aarforge/pkg/observability"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve [build file]",
		Short: "Serve the expanded rule graph over HTTP",
		Long: `Serve the expanded rule graph over HTTP.

The serve command expands the build file once at startup and exposes the
resulting rule graph:

  GET  /graph.json       full node and edge list
  GET  /graph.dot        Graphviz source (?detailed=1 for rule kinds)
  GET  /graph.svg        rendered diagram (?detailed=1 for rule kinds)
  POST /snapshots        persist a snapshot of the graph
  GET  /snapshots        list persisted snapshots
  GET  /snapshots/{id}   fetch one snapshot

Snapshots are stored in MongoDB when AARFORGE_MONGO_URI is set, otherwise
in process memory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), args[0], addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable render caching")

	return cmd
}

// graphServer bundles the state the HTTP handlers need.
type graphServer struct {
	cli       *CLI
	buildFile string
	graph     export.Graph
	store     export.SnapshotStore
	cache     cache.Cache
	keyer     cache.Keyer
}

// runServe expands the build file and serves it until ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, input, addr string, noCache bool) error {
	reg, _, err := c.loadAndEnhance(ctx, input, "")
	if err != nil {
		return err
	}

	store, err := newSnapshotStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	s := &graphServer{
		cli:       c,
		buildFile: input,
		graph:     export.FromRegistry(reg),
		store:     store,
		cache:     newRenderCache(ctx, noCache),
		keyer:     cache.NewDefaultKeyer(),
	}
	defer s.cache.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	c.Logger.Infof("Serving rule graph on %s", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// newSnapshotStore selects the snapshot backend from the environment.
func newSnapshotStore(ctx context.Context) (export.SnapshotStore, error) {
	if uri := os.Getenv(mongoURIEnv); uri != "" {
		return export.NewMongoStore(ctx, uri)
	}
	return export.NewMemoryStore(), nil
}

func (s *graphServer) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/graph.json", s.handleGraphJSON)
	r.Get("/graph.dot", s.handleGraphDOT)
	r.Get("/graph.svg", s.handleGraphSVG)
	r.Post("/snapshots", s.handleSnapshotCreate)
	r.Get("/snapshots", s.handleSnapshotList)
	r.Get("/snapshots/{id}", s.handleSnapshotGet)

	return r
}

func (s *graphServer) handleGraphJSON(w http.ResponseWriter, r *http.Request) {
	data, err := s.graph.Marshal()
	if err != nil {
		httpError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *graphServer) handleGraphDOT(w http.ResponseWriter, r *http.Request) {
	dot := export.ToDOT(s.graph, export.DOTOptions{Detailed: detailedParam(r)})
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	_, _ = fmt.Fprint(w, dot)
}

func (s *graphServer) handleGraphSVG(w http.ResponseWriter, r *http.Request) {
	detailed := detailedParam(r)
	dot := export.ToDOT(s.graph, export.DOTOptions{Detailed: detailed})

	key := s.keyer.RenderKey(cache.Hash([]byte(dot)), cache.RenderKeyOpts{
		Format:   formatSVG,
		Detailed: detailed,
	})
	if data, ok, err := s.cache.Get(r.Context(), key); err == nil && ok {
		observability.Cache().OnCacheHit(r.Context(), "render")
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(data)
		return
	}
	observability.Cache().OnCacheMiss(r.Context(), "render")

	data, err := export.RenderSVG(dot)
	if err != nil {
		httpError(w, http.StatusInternalServerError, err)
		return
	}
	if err := s.cache.Set(r.Context(), key, data, renderTTL); err != nil {
		s.cli.Logger.Debugf("Render cache store failed: %v", err)
	} else {
		observability.Cache().OnCacheSet(r.Context(), "render", len(data))
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(data)
}

func (s *graphServer) handleSnapshotCreate(w http.ResponseWriter, r *http.Request) {
	snap := export.NewSnapshot(s.buildFile, s.graph)
	if err := s.store.Save(r.Context(), snap); err != nil {
		httpError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (s *graphServer) handleSnapshotList(w http.ResponseWriter, r *http.Request) {
	snaps, err := s.store.List(r.Context())
	if err != nil {
		httpError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, snaps)
}

func (s *graphServer) handleSnapshotGet(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// detailedParam reports whether the request asked for detailed labels.
func detailedParam(r *http.Request) bool {
	v := r.URL.Query().Get("detailed")
	return v == "1" || v == "true"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
