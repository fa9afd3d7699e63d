// Package web serves the last compiled scenario over HTTP: the flat graph,
// node lookups, a structural summary, compile events over SSE and
// prometheus metrics.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/ritzau/deflex-graph/pkg/export"
	"github.com/ritzau/deflex-graph/pkg/graph"
	"github.com/ritzau/deflex-graph/pkg/label"
	"github.com/ritzau/deflex-graph/pkg/logging"
	"github.com/ritzau/deflex-graph/pkg/model"
	"github.com/ritzau/deflex-graph/pkg/pubsub"
	"github.com/ritzau/deflex-graph/pkg/scenario"
)

// shutdownTimeout bounds how long Start waits for open requests on shutdown
const shutdownTimeout = 5 * time.Second

// compiled is everything the handlers read from one compilation
type compiled struct {
	document *export.Document
	network  *graph.Network
	byID     map[string]*model.GraphNode
	snapshot *graph.Snapshot
	diff     graph.Diff
}

// Server represents the web server
type Server struct {
	router    *mux.Router
	publisher *pubsub.SSEPublisher
	metrics   *Metrics

	mu       sync.RWMutex
	current  *compiled
	lastErr  error
	scenario string
}

// NewServer creates a new web server. A nil metrics set gets a fresh one.
func NewServer(metrics *Metrics) *Server {
	if metrics == nil {
		metrics = NewMetrics()
	}

	publisher := pubsub.NewSSEPublisher()

	// Only the current state is replayed to new subscribers
	publisher.ConfigureTopic(pubsub.TopicCompileStatus, pubsub.TopicConfig{BufferSize: 10})
	publisher.ConfigureTopic(pubsub.TopicNetworkGraph, pubsub.TopicConfig{BufferSize: 5})

	s := &Server{
		router:    mux.NewRouter(),
		publisher: publisher,
		metrics:   metrics,
	}
	s.setupRoutes()
	return s
}

// Handler returns the root handler of the server
func (s *Server) Handler() http.Handler {
	return s.router
}

// Metrics returns the metrics set of the server
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// PublishStatus publishes a compile status event
func (s *Server) PublishStatus(status pubsub.CompileStatus) error {
	return s.publisher.Publish(pubsub.TopicCompileStatus, status.State, status)
}

// CompileSucceeded makes a compiled scenario and its document the ones
// served, records the compilation and notifies subscribers.
func (s *Server) CompileSucceeded(sc *scenario.Scenario, doc *export.Document, duration time.Duration) error {
	if doc == nil || sc.Nodes() == nil {
		return fmt.Errorf("publish %q: %w", sc.Name, export.ErrNotCompiled)
	}

	c := &compiled{
		document: doc,
		network:  graph.Build(sc.Nodes()),
		byID:     make(map[string]*model.GraphNode, len(doc.Graph.Nodes)),
	}
	for _, n := range doc.Graph.Nodes {
		c.byID[n.ID] = n
	}

	s.mu.Lock()
	var previous *graph.Snapshot
	if s.current != nil {
		previous = s.current.snapshot
	}
	c.diff = graph.Compare(previous, doc.Graph)
	c.snapshot = graph.NewSnapshot(doc.Graph)
	s.current = c
	s.lastErr = nil
	s.scenario = sc.Name
	s.mu.Unlock()

	s.metrics.RecordCompile(ResultSuccess, duration)
	s.metrics.SetNetwork(doc.Summary)

	runID := doc.Metadata.RunID
	if err := s.PublishStatus(pubsub.CompileStatus{
		State:    pubsub.StateReady,
		Scenario: sc.Name,
		RunID:    runID,
		Message:  fmt.Sprintf("compiled %d nodes", doc.Summary.Nodes),
	}); err != nil {
		return err
	}
	return s.publisher.Publish(pubsub.TopicNetworkGraph, pubsub.StateReady, pubsub.NetworkGraphData{
		RunID:   runID,
		Nodes:   doc.Summary.Nodes,
		Flows:   doc.Summary.Flows,
		Buses:   doc.Summary.Buses,
		Islands: doc.Summary.Islands,
		Issues:  len(doc.Summary.Issues),
		Full:    c.diff.FullGraph,
		Added:   len(c.diff.AddedNodes) + len(c.diff.AddedEdges),
		Removed: len(c.diff.RemovedNodes) + len(c.diff.RemovedEdges),
		Changed: len(c.diff.ModifiedNodes) + len(c.diff.ModifiedEdges),
	})
}

// CompileFailed records a failed compilation. The previously compiled
// scenario, if any, stays available.
func (s *Server) CompileFailed(name string, compileErr error, duration time.Duration) error {
	s.mu.Lock()
	s.lastErr = compileErr
	s.scenario = name
	s.mu.Unlock()

	s.metrics.RecordCompile(ResultFailure, duration)

	return s.PublishStatus(pubsub.CompileStatus{
		State:    pubsub.StateFailed,
		Scenario: name,
		Error:    compileErr.Error(),
	})
}

func (s *Server) setupRoutes() {
	s.router.Use(logging.RequestIDMiddleware)
	s.router.Use(s.metrics.Middleware)

	s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	// SSE subscription endpoint
	s.router.HandleFunc("/api/events/{topic}", s.handleSubscribe).Methods(http.MethodGet)

	s.router.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet)
	s.router.HandleFunc("/api/summary", s.handleSummary).Methods(http.MethodGet)
	s.router.HandleFunc("/api/document", s.handleDocument).Methods(http.MethodGet)
	s.router.HandleFunc("/api/graph", s.handleGraph).Methods(http.MethodGet)
	s.router.HandleFunc("/api/nodes", s.handleNodes).Methods(http.MethodGet)
	s.router.HandleFunc("/api/nodes/{label}", s.handleNode).Methods(http.MethodGet)
	s.router.HandleFunc("/api/nodes/{label}/neighbourhood", s.handleNeighbourhood).Methods(http.MethodGet)
	s.router.HandleFunc("/api/diff", s.handleDiff).Methods(http.MethodGet)
}

// served returns the served compilation or writes 503 when there is none
func (s *Server) served(w http.ResponseWriter) (*compiled, bool) {
	s.mu.RLock()
	c := s.current
	s.mu.RUnlock()

	if c == nil {
		http.Error(w, "no compiled scenario", http.StatusServiceUnavailable)
		return nil, false
	}
	return c, true
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.ErrorContext(r.Context(), "failed to encode response", "path", r.URL.Path, "error", err)
	}
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	topic := mux.Vars(r)["topic"]
	if topic != pubsub.TopicCompileStatus && topic != pubsub.TopicNetworkGraph {
		http.Error(w, fmt.Sprintf("unknown topic %q", topic), http.StatusNotFound)
		return
	}

	sub, err := s.publisher.Subscribe(r.Context(), topic)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, _ := w.(http.Flusher)

	// Initial comment establishes the stream before the first event
	fmt.Fprint(w, ": connected\n\n")
	if flusher != nil {
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := pubsub.WriteSSE(w, event); err != nil {
				logging.WarnContext(r.Context(), "error writing SSE event", "topic", topic, "error", err)
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

// Status is the response of /api/status
type Status struct {
	Scenario string `json:"scenario"`
	Ready    bool   `json:"ready"`
	RunID    string `json:"runId,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	status := Status{Scenario: s.scenario, Ready: s.current != nil}
	if s.current != nil {
		status.RunID = s.current.document.Metadata.RunID
	}
	if s.lastErr != nil {
		status.Error = s.lastErr.Error()
	}
	s.mu.RUnlock()

	writeJSON(w, r, status)
}

// SummaryResponse is the response of /api/summary
type SummaryResponse struct {
	Metadata scenario.Metadata `json:"metadata"`
	Summary  graph.Summary     `json:"summary"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	c, ok := s.served(w)
	if !ok {
		return
	}
	writeJSON(w, r, SummaryResponse{Metadata: c.document.Metadata, Summary: c.document.Summary})
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	c, ok := s.served(w)
	if !ok {
		return
	}

	format := export.FormatJSON
	contentType := "application/json"
	if r.URL.Query().Get("format") == string(export.FormatYAML) {
		format = export.FormatYAML
		contentType = "application/yaml"
	}

	w.Header().Set("Content-Type", contentType)
	if err := c.document.Encode(w, format); err != nil {
		logging.ErrorContext(r.Context(), "failed to encode document", "format", format, "error", err)
	}
}

// nodeFilter matches graph nodes against the category, tag and region
// query parameters. Empty parameters match everything.
type nodeFilter struct {
	category, tag, region string
}

func filterFrom(r *http.Request) nodeFilter {
	q := r.URL.Query()
	return nodeFilter{category: q.Get("category"), tag: q.Get("tag"), region: q.Get("region")}
}

func (f nodeFilter) empty() bool {
	return f == nodeFilter{}
}

func (f nodeFilter) match(n *model.GraphNode) bool {
	return (f.category == "" || n.Category == f.category) &&
		(f.tag == "" || n.Tag == f.tag) &&
		(f.region == "" || n.Region == f.region)
}

// filterGraph keeps the matching nodes and the edges between them
func filterGraph(g *model.Graph, f nodeFilter) *model.Graph {
	if f.empty() {
		return g
	}
	return subgraph(g, f.match)
}

// subgraph keeps the nodes accepted by keep and the edges between them
func subgraph(g *model.Graph, keep func(*model.GraphNode) bool) *model.Graph {
	out := model.NewGraph()
	kept := make(map[string]bool)
	for _, n := range g.Nodes {
		if keep(n) {
			out.AddNode(n)
			kept[n.ID] = true
		}
	}
	for _, e := range g.Edges {
		if kept[e.Source] && kept[e.Target] {
			out.AddEdge(e)
		}
	}
	return out
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	c, ok := s.served(w)
	if !ok {
		return
	}
	writeJSON(w, r, filterGraph(c.document.Graph, filterFrom(r)))
}

func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	c, ok := s.served(w)
	if !ok {
		return
	}

	f := filterFrom(r)
	nodes := make([]*model.GraphNode, 0, len(c.document.Graph.Nodes))
	for _, n := range c.document.Graph.Nodes {
		if f.match(n) {
			nodes = append(nodes, n)
		}
	}
	writeJSON(w, r, nodes)
}

// NodeDetail is a node with the labels of its direct neighbours
type NodeDetail struct {
	Node         *model.GraphNode `json:"node"`
	Predecessors []label.Label    `json:"predecessors"`
	Successors   []label.Label    `json:"successors"`
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	c, ok := s.served(w)
	if !ok {
		return
	}

	l, err := label.Parse(mux.Vars(r)["label"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	node, ok := c.byID[l.String()]
	if !ok {
		http.Error(w, fmt.Sprintf("node %s not found", l), http.StatusNotFound)
		return
	}

	writeJSON(w, r, NodeDetail{
		Node:         node,
		Predecessors: c.network.Predecessors(l),
		Successors:   c.network.Successors(l),
	})
}

// defaultDepth is the neighbourhood depth when none is requested
const defaultDepth = 1

func (s *Server) handleNeighbourhood(w http.ResponseWriter, r *http.Request) {
	c, ok := s.served(w)
	if !ok {
		return
	}

	l, err := label.Parse(mux.Vars(r)["label"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	depth := defaultDepth
	if v := r.URL.Query().Get("depth"); v != "" {
		depth, err = strconv.Atoi(v)
		if err != nil || depth < 0 {
			http.Error(w, fmt.Sprintf("invalid depth %q", v), http.StatusBadRequest)
			return
		}
	}

	labels, ok := graph.Neighbourhood(c.network, l, depth)
	if !ok {
		http.Error(w, fmt.Sprintf("node %s not found", l), http.StatusNotFound)
		return
	}

	ids := make(map[string]bool, len(labels))
	for _, nl := range labels {
		ids[nl.String()] = true
	}
	writeJSON(w, r, subgraph(c.document.Graph, func(n *model.GraphNode) bool { return ids[n.ID] }))
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	c, ok := s.served(w)
	if !ok {
		return
	}
	writeJSON(w, r, c.diff)
}

// Start serves on the given port until ctx is canceled
func (s *Server) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log := logging.New("web")

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting web server", "url", fmt.Sprintf("http://localhost:%d", port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.publisher.Close()
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down web server")

	// Closing the publisher ends open event streams
	s.publisher.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
