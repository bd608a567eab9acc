package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/soup/pkg/buildinfo"
	"github.com/matzehuels/soup/pkg/errors"
	pkgio "github.com/matzehuels/soup/pkg/io"
	"github.com/matzehuels/soup/pkg/observability"
	"github.com/matzehuels/soup/pkg/provider"
	"github.com/matzehuels/soup/pkg/render/nodelink"
)

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		s.instrument,
	)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/snapshot", s.withSnapshot(s.handleSnapshot))
		r.Get("/graph", s.withSnapshot(s.handleGraph))
		r.Get("/graphs", s.withSnapshot(s.handleGraphs))
		r.Get("/graphs/{id}", s.withSnapshot(s.handlePackageGraph))
		r.Get("/packages", s.withSnapshot(s.handlePackages))
		r.Get("/packages/{id}", s.withSnapshot(s.handlePackage))
		r.Get("/notifications", s.withSnapshot(s.handleNotifications))
		r.Post("/reload", s.handleReload)
	})
	return r
}

// instrument reports requests to the HTTP hooks and the debug log.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, time.Since(start))
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

type snapshotHandler func(w http.ResponseWriter, r *http.Request, snap *provider.Snapshot)

// withSnapshot answers 503 until the first snapshot is published.
func (s *Server) withSnapshot(h snapshotHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := s.store.Load()
		if snap == nil {
			writeError(w, http.StatusServiceUnavailable, "no snapshot available yet")
			return
		}
		h(w, r, snap)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	}
	if snap := s.store.Load(); snap != nil {
		body["snapshot"] = snap.ID
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request, snap *provider.Snapshot) {
	var buf bytes.Buffer
	if err := pkgio.WriteSnapshot(snap, &buf); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(buf.Bytes())
}

// handleGraph serves the graph as a node and edge list by default;
// ?format=levels, dot or svg select other encodings.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request, snap *provider.Snapshot) {
	detailed := r.URL.Query().Get("detailed") == "true"
	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		var buf bytes.Buffer
		if err := pkgio.WriteJSON(snap.Graph, &buf); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(buf.Bytes())
	case "levels":
		writeJSON(w, http.StatusOK, snap.Graph)
	case "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
		_, _ = w.Write([]byte(nodelink.ToDOT(snap.Graph, nodelink.Options{Detailed: detailed, Provider: snap.Provider})))
	case "svg":
		svg, err := nodelink.RenderSVG(r.Context(), nodelink.ToDOT(snap.Graph, nodelink.Options{Detailed: detailed, Provider: snap.Provider}))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(svg)
	default:
		writeError(w, http.StatusBadRequest, "unknown format "+strconv.Quote(format)+" (want json, levels, dot or svg)")
	}
}

func (s *Server) handleGraphs(w http.ResponseWriter, r *http.Request, snap *provider.Snapshot) {
	graphs := make([]provider.PackageGraph, 0)
	for _, id := range snap.Provider.GraphIDs() {
		g, _ := snap.Provider.GetPackageGraph(id)
		graphs = append(graphs, g)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"root_package_graph_id": snap.Provider.RootPackageGraphID(),
		"graphs":                graphs,
	})
}

func (s *Server) handlePackageGraph(w http.ResponseWriter, r *http.Request, snap *provider.Snapshot) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	g, err := snap.Provider.GetPackageGraph(id)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handlePackages(w http.ResponseWriter, r *http.Request, snap *provider.Snapshot) {
	pkgs := make([]provider.PackageInfo, 0)
	for _, id := range snap.Provider.PackageIDs() {
		p, _ := snap.Provider.GetPackageInfo(id)
		pkgs = append(pkgs, p)
	}
	writeJSON(w, http.StatusOK, pkgs)
}

func (s *Server) handlePackage(w http.ResponseWriter, r *http.Request, snap *provider.Snapshot) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := snap.Provider.GetPackageInfo(id)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request, snap *provider.Snapshot) {
	writeJSON(w, http.StatusOK, snap.Notifications)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	res, err := s.Reload(r.Context(), true)
	if err != nil {
		s.logger.Error("reload failed", "err", err)
		writeError(w, http.StatusUnprocessableEntity, errors.UserMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"snapshot":      res.Snapshot.ID,
		"packages":      res.Stats.NodeCount,
		"levels":        res.Stats.Depth,
		"notifications": res.Stats.Notifications,
		"truncated":     res.Snapshot.Truncated,
	})
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id "+strconv.Quote(raw))
		return 0, false
	}
	return id, true
}

func writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, errors.ErrCodeNotFound) {
		writeError(w, http.StatusNotFound, errors.UserMessage(err))
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
