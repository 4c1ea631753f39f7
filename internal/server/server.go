// Package server exposes an outline over HTTP for shared browsing.
//
// The server holds one document in memory. Reads return the flattened
// outline; toggles flip a node's expanded flag and persist the resulting
// view state, so CLI and HTTP viewers of the same document stay in sync.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apperrors "github.com/treelinehq/treeline/pkg/errors"
	"github.com/treelinehq/treeline/pkg/outline"
	"github.com/treelinehq/treeline/pkg/tree"
	"github.com/treelinehq/treeline/pkg/viewstate"
)

// Server serves one outline document.
type Server struct {
	mu          sync.Mutex
	tree        *tree.Tree[outline.Entry]
	fingerprint string
	store       viewstate.Store
	logger      *log.Logger
}

// New creates a server for the given tree. The store may be nil, in which
// case view-state changes live only as long as the process.
func New(t *tree.Tree[outline.Entry], fingerprint string, store viewstate.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		tree:        t,
		fingerprint: fingerprint,
		store:       store,
		logger:      logger,
	}
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/outline", s.handleOutline)
	r.Post("/api/nodes/{path}/toggle", s.handleToggle)

	return r
}

// nodeView is the JSON shape of one flattened outline row.
type nodeView struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Path        string `json:"path"`
	Level       int    `json:"level"`
	Expanded    bool   `json:"expanded"`
	Highlighted bool   `json:"highlighted"`
	HasChildren bool   `json:"has_children"`
}

type outlineResponse struct {
	Fingerprint string     `json:"fingerprint"`
	Nodes       []nodeView `json:"nodes"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// handleOutline returns the flattened outline. By default only rows whose
// ancestors are all expanded are included; ?all=1 returns every row.
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	all := r.URL.Query().Get("all") == "1"

	s.mu.Lock()
	nodes := s.tree.Flatten(tree.FlattenOptions{ExpandedOnly: !all})
	views := make([]nodeView, len(nodes))
	for i, n := range nodes {
		views[i] = toView(n)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, outlineResponse{
		Fingerprint: s.fingerprint,
		Nodes:       views,
	})
}

// handleToggle flips the expanded flag of the node at the given path.
// The path is "root" or dash-joined child indices, e.g. "0-1".
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	path, err := parsePath(chi.URLParam(r, "path"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	n, err := s.tree.FindInPath(path)
	if err != nil {
		s.mu.Unlock()
		if errors.Is(err, tree.ErrInvalidPath) {
			writeError(w, http.StatusNotFound, "no node at path")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	n.Expanded = !n.Expanded
	view := toView(n)
	st := viewstate.Capture(s.tree)
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Set(r.Context(), s.fingerprint, st); err != nil {
			s.logger.Warnf("persist view state: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, view)
}

func toView(n *tree.Node[outline.Entry]) nodeView {
	path := make([]string, 0, n.Level())
	for _, i := range n.Path() {
		path = append(path, strconv.Itoa(i))
	}
	return nodeView{
		ID:          n.Data.ID,
		Label:       n.Data.Label,
		Path:        strings.Join(path, "-"),
		Level:       n.Level(),
		Expanded:    n.Expanded,
		Highlighted: n.Highlighted,
		HasChildren: n.HasChildren(),
	}
}

func parsePath(raw string) ([]int, error) {
	if raw == "root" {
		return nil, nil
	}
	segs := strings.Split(raw, "-")
	path := make([]int, len(segs))
	for i, seg := range segs {
		v, err := strconv.Atoi(seg)
		if err != nil || v < 0 {
			return nil, apperrors.New(apperrors.ErrCodeInvalidPath, "path segments must be non-negative integers")
		}
		path[i] = v
	}
	return path, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
