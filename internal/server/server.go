package server

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/joeblew999/plat-sitemap/internal/api"
	"github.com/joeblew999/plat-sitemap/internal/api/editor"
	"github.com/joeblew999/plat-sitemap/internal/db"
	"github.com/joeblew999/plat-sitemap/internal/humastar"
	"github.com/joeblew999/plat-sitemap/internal/service"
	"github.com/joeblew999/plat-sitemap/internal/store"
	"github.com/joeblew999/plat-sitemap/internal/templates"
)

// Items is the item backend the server reads and writes.
type Items interface {
	service.ItemStore
	api.ItemReader
}

// Config holds the server configuration.
type Config struct {
	Host    string
	Port    string
	DataDir string
	Logger  *slog.Logger
	// Items replaces the DuckDB store when set.
	Items Items
}

// Server is the site map HTTP server.
type Server struct {
	config   Config
	mux      *http.ServeMux
	humaAPI  huma.API
	db       *sql.DB
	items    Items
	sessions *service.Sessions
	renderer *templates.Renderer
	links    *humastar.Links
	log      *slog.Logger
}

// New creates a new site map server.
func New(cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	mux := http.NewServeMux()
	links := humastar.NewLinks()

	// Create Huma API with humago (pure stdlib) adapter
	humaConfig := huma.DefaultConfig("plat-sitemap API", "1.0.0")
	humaConfig.Info.Description = "Interactive construction site maps: sessions, hit testing, selection and graphic editing."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}
	humaConfig.Transformers = append(humaConfig.Transformers, links.Transformer())

	humaAPI := humago.New(mux, humaConfig)

	s := &Server{
		config:  cfg,
		mux:     mux,
		humaAPI: humaAPI,
		links:   links,
		log:     log,
		items:   cfg.Items,
	}

	if s.items == nil {
		conn, err := db.Get(db.Config{DataDir: cfg.DataDir, DBName: "sitemap"})
		if err != nil {
			log.Warn("item database unavailable", "data_dir", cfg.DataDir, "error", err)
			s.items = store.Offline{}
		} else {
			s.db = conn
			s.items = store.New(conn)
		}
	}

	renderer, err := templates.Default()
	if err != nil {
		log.Error("loading fragment templates", "error", err)
	}
	s.renderer = renderer
	s.sessions = service.NewSessions(s.items, service.NewEventBus(), log)

	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// OpenAPI returns the OpenAPI document of the server.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

// Sessions returns the live map sessions.
func (s *Server) Sessions() *service.Sessions {
	return s.sessions
}

// Close closes server resources.
func (s *Server) Close() error {
	if s.db == nil {
		return nil
	}
	return db.Close()
}

func (s *Server) routes() {
	// REST API routes (OpenAPI-documented JSON endpoints)
	huma.AutoRegister(s.humaAPI, api.NewAPIHandler(&api.Services{
		Sessions: s.sessions,
		Items:    s.items,
	}))
	api.NewInfoHandler(s.config.DataDir, s.db != nil).RegisterRoutes(s.humaAPI)

	// Datastar SSE routes for the map page
	editor.NewPointerHandler(s.sessions, s.renderer).RegisterRoutes(s.humaAPI)
	editor.NewEventHandler(s.sessions, s.renderer).RegisterRoutes(s.humaAPI)
	editor.NewSiteHandler(s.sessions, s.renderer).RegisterRoutes(s.humaAPI)

	s.links.Discover(s.humaAPI)

	s.mux.HandleFunc("/", s.handleRoot)
}

// handleRoot opens a new map session and serves its page.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.renderer == nil {
		http.Error(w, "templates unavailable", http.StatusInternalServerError)
		return
	}

	sess := s.sessions.Create()
	base := "/api/v1/sessions/" + sess.ID
	html, err := s.renderer.Render("map", map[string]string{
		"Session": sess.ID,
		"Signals": `{"lng": 0, "lat": 0, "selected": "", "hovered": "", "rightclicked": "", "popup": false, "error": "", "success": ""}`,
		"Events":  base + "/events",
		"Click":   base + "/pointer/click",
		"Move":    base + "/pointer/move",
		"Context": base + "/pointer/context",
		"Sites":   base + "/sites/stream",
	})
	if err != nil {
		s.log.Error("rendering map page", "session", sess.ID, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	for _, link := range s.links.For("/health") {
		w.Header().Add("Link", link)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}
