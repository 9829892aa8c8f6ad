// Package server is the local web view over stored briefings.
package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/brevita-ai/brevita/internal/briefing"
	"github.com/brevita-ai/brevita/internal/export"
	"github.com/brevita-ai/brevita/internal/history"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New()

// Server is the HTTP server for browsing briefing history.
type Server struct {
	store *history.Store
	auth  history.AuthState
	pages map[string]*template.Template
	mux   *http.ServeMux
}

// New creates a new Server. The auth state is fixed for the lifetime of
// the process.
func New(store *history.Store, auth history.AuthState) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown": renderMarkdown,
		"formatTimestamp": func(millis int64) string {
			return time.UnixMilli(millis).Format("2006-01-02 15:04")
		},
	}

	// Parse base template first
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// For each page template, clone the base and parse the page into the clone.
	// This gives each page its own {{define "content"}} and {{define "title"}}.
	pageNames := []string{"index.html", "briefing.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{store: store, auth: auth, pages: pages, mux: http.NewServeMux()}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	// Static files
	staticSub, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	// Routes
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/briefing/", s.handleBriefing)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	items, err := s.store.GetAll(r.Context(), s.auth)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	category := r.URL.Query().Get("category")
	triage := r.URL.Query().Get("triage")
	items = filterItems(items, category, triage)

	s.render(w, "index.html", map[string]any{
		"Items":      items,
		"Category":   category,
		"Triage":     triage,
		"Categories": briefing.Categories,
	})
}

// filterItems narrows the list by category and triage status. Pinned items
// surface first within the existing newest-first order.
func filterItems(items []briefing.HistoryItem, category, triage string) []briefing.HistoryItem {
	filtered := make([]briefing.HistoryItem, 0, len(items))
	for _, it := range items {
		if category != "" && it.Data.Meta.Category != category {
			continue
		}
		if triage != "" && it.TriageStatus != triage {
			continue
		}
		filtered = append(filtered, it)
	}

	ordered := make([]briefing.HistoryItem, 0, len(filtered))
	for _, it := range filtered {
		if it.Pinned {
			ordered = append(ordered, it)
		}
	}
	for _, it := range filtered {
		if !it.Pinned {
			ordered = append(ordered, it)
		}
	}
	return ordered
}

func (s *Server) handleBriefing(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/briefing/")
	if path == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	id, action, hasAction := strings.Cut(path, "/")
	if hasAction {
		s.handleAction(w, r, id, action)
		return
	}

	item, err := s.store.Get(r.Context(), s.auth, id)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if item == nil {
		http.NotFound(w, r)
		return
	}

	s.render(w, "briefing.html", map[string]any{
		"Item":     item,
		"Document": export.Markdown(&item.Data),
		"Statuses": []string{briefing.TriageNew, briefing.TriageReview, briefing.TriageClosed},
	})
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request, id, action string) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/briefing/"+id, http.StatusFound)
		return
	}

	var err error
	redirect := "/briefing/" + id
	switch action {
	case "pin":
		err = s.store.UpdatePin(r.Context(), s.auth, id, true)
	case "unpin":
		err = s.store.UpdatePin(r.Context(), s.auth, id, false)
	case "triage":
		err = s.store.UpdateTriageStatus(r.Context(), s.auth, id, r.FormValue("status"))
	case "delete":
		err = s.store.Delete(r.Context(), s.auth, id)
		redirect = "/"
	default:
		http.NotFound(w, r)
		return
	}

	if err != nil {
		log.Printf("Action %s on %s failed: %v", action, id, err)
		http.Error(w, "Action failed", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, redirect, http.StatusFound)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// Serve starts the HTTP server on the given port.
func Serve(store *history.Store, auth history.AuthState, port int) error {
	srv, err := New(store, auth)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
