package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/promptml/promptml"
	"github.com/promptml/promptml/internal/catalog"
	"github.com/promptml/promptml/internal/metrics"
	"github.com/promptml/promptml/internal/session"
	"github.com/promptml/promptml/internal/store"
	"github.com/promptml/promptml/internal/token"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// Server previews stored snippets in a browser: parsed structure,
// rendered output, and live variable edits pushed over websockets
type Server struct {
	cfg      Config
	store    *store.Store
	catalog  *catalog.Catalog
	parser   *promptml.Parser
	renderer *promptml.Renderer
	sessions *session.Manager
	tokens   *token.Service
	conns    *ConnectionRegistry
	stats    *metrics.Collector
	pages    *template.Template
	upgrader websocket.Upgrader

	httpSrv *http.Server
	done    chan struct{}
}

// New assembles a server over an open snippet store. A nil collector
// gets replaced with a fresh one.
func New(cfg Config, st *store.Store, stats *metrics.Collector) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if stats == nil {
		stats = metrics.NewCollector()
	}

	tokens, err := token.NewService(cfg.SessionTTL, stats)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	pages, err := template.ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}

	renderer := newPreviewRenderer(stats)
	cat := catalog.Default()

	return &Server{
		cfg:      cfg,
		store:    st,
		catalog:  cat,
		parser:   promptml.NewParser(promptml.BuildRegistry(cat, renderer), promptml.WithParseMetrics(stats)),
		renderer: renderer,
		sessions: session.NewManager(cfg.SessionTTL),
		tokens:   tokens,
		conns:    NewConnectionRegistry(),
		stats:    stats,
		pages:    pages,
		done:     make(chan struct{}),
	}, nil
}

// Handler returns the route table. Exposed separately so tests can mount
// it on httptest servers.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /preview/{name}", s.handlePreview)
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	return mux
}

// Start listens on the configured address and blocks until the listener
// fails or Shutdown runs
func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go s.janitor()

	log.Printf("preview server listening on %s", s.cfg.Addr)
	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the listener and the session janitor
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.done)
	if s.httpSrv == nil {
		return nil
	}
	log.Printf("preview server shutting down")
	return s.httpSrv.Shutdown(ctx)
}

// janitor drops expired sessions once a minute
func (s *Server) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sessions.CleanupExpired()
		case <-s.done:
			return
		}
	}
}

type indexData struct {
	Snippets   []*store.Snippet
	Components []string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snippets, err := s.store.List(r.Context())
	if err != nil {
		http.Error(w, "failed to list snippets", http.StatusInternalServerError)
		return
	}
	s.renderPage(w, "index.html.tmpl", indexData{
		Snippets:   snippets,
		Components: s.catalog.Names(),
	})
}

type previewData struct {
	Name   string
	Token  string
	Body   template.HTML
	Source string
	Ranges []promptml.ElementRange
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	snip, err := s.store.Get(r.Context(), name)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "failed to load snippet", http.StatusInternalServerError)
		return
	}
	if len(snip.Source) > s.cfg.MaxDocumentBytes {
		http.Error(w, "document too large", http.StatusRequestEntityTooLarge)
		return
	}

	root := s.parser.Parse(snip.Source)

	// a "vars" mapping in meta blocks seeds the session variables
	vars := promptml.Context{}
	if directives, err := promptml.MetaDirectives(root); err == nil {
		if seed, ok := directives["vars"].(map[string]any); ok {
			for k, v := range seed {
				vars[k] = v
			}
		}
	}

	sess, err := s.sessions.Create(snip.Name, vars)
	if err != nil {
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}
	tok, err := s.tokens.Issue(sess.ID, snip.Name)
	if err != nil {
		http.Error(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	body, err := s.renderPreview(root, sess.Vars)
	if err != nil {
		http.Error(w, "failed to render preview", http.StatusInternalServerError)
		return
	}

	s.renderPage(w, "preview.html.tmpl", previewData{
		Name:   snip.Name,
		Token:  tok,
		Body:   template.HTML(body),
		Source: snip.Source,
		Ranges: promptml.DetectElements(root),
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	claims, err := s.tokens.Verify(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}
	sess, ok := s.sessions.Get(claims.SessionID)
	if !ok {
		http.Error(w, "session expired", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &Connection{Conn: conn, SessionID: sess.ID}
	s.conns.Register(c)
	defer func() {
		s.conns.Unregister(c)
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		msg, err := parseMessage(data)
		if err != nil {
			writeUpdate(c, update{Error: err.Error()})
			continue
		}
		s.handleAction(r.Context(), c, msg)
	}
}

// handleAction dispatches one client frame
func (s *Server) handleAction(ctx context.Context, c *Connection, msg message) {
	switch msg.Action {
	case "set":
		name := msg.getString("name")
		if name == "" {
			writeUpdate(c, update{Error: "set requires a name"})
			return
		}
		if !msg.has("value") {
			writeUpdate(c, update{Error: "set requires a value"})
			return
		}
		vars, ok := s.sessions.SetVar(c.SessionID, name, msg.Data["value"])
		if !ok {
			writeUpdate(c, update{Error: "session expired"})
			return
		}
		s.broadcast(ctx, c.SessionID, vars)
	default:
		writeUpdate(c, update{Error: fmt.Sprintf("unknown action %q", msg.Action)})
	}
}

// broadcast re-renders the session's snippet and pushes the result to
// every connection watching it
func (s *Server) broadcast(ctx context.Context, sessionID string, vars promptml.Context) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}

	frame := update{}
	snip, err := s.store.Get(ctx, sess.Snippet)
	if err != nil {
		frame.Error = "snippet no longer available"
	} else if body, err := s.renderPreview(s.parser.Parse(snip.Source), vars); err != nil {
		frame.Error = err.Error()
	} else {
		frame.HTML = body
	}

	for _, conn := range s.conns.GetBySession(sessionID) {
		// write failures are reaped by each connection's read loop
		_ = writeUpdate(conn, frame)
	}
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	payload := struct {
		metrics.Stats
		Connections int `json:"connections"`
		Sessions    int `json:"sessions"`
	}{s.stats.Snapshot(), s.conns.Count(), s.sessions.Count()}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode metrics: %v", err)
	}
}

// renderPreview turns a parsed tree into the annotated, minified HTML
// fragment shown in the preview pane
func (s *Server) renderPreview(root *promptml.Node, vars promptml.Context) (string, error) {
	out, err := s.renderer.Render(root, vars)
	if err != nil {
		return "", err
	}
	annotated, err := annotateHTML(out)
	if err != nil {
		return "", err
	}
	return minifyHTML(annotated), nil
}

func (s *Server) renderPage(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.pages.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("failed to render %s: %v", name, err)
	}
}
