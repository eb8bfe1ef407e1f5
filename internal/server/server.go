package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bhi-elliot/ScrappyMart/internal/handler"
	"github.com/bhi-elliot/ScrappyMart/internal/liststore"
	"github.com/bhi-elliot/ScrappyMart/internal/middleware"
	ws "github.com/bhi-elliot/ScrappyMart/internal/websocket"
)

const (
	importRateLimit  = 30
	importRateWindow = time.Minute
)

type Server struct {
	store   *liststore.Store
	hub     *ws.Hub
	listH   *handler.ListHandler
	importH *handler.ImportHandler
	limiter *middleware.RateLimiter
	logger  *slog.Logger
}

func New(store *liststore.Store, catalog handler.PresetCatalog, hub *ws.Hub, logger *slog.Logger) *Server {
	return &Server{
		store:   store,
		hub:     hub,
		listH:   handler.NewListHandler(store, logger.With("component", "lists")),
		importH: handler.NewImportHandler(store, catalog, logger.With("component", "import")),
		limiter: middleware.NewRateLimiter(importRateLimit, importRateWindow, 0),
		logger:  logger,
	}
}

// Notify returns a liststore change hook that pushes each event to hub.
func Notify(hub *ws.Hub) func(liststore.Event) {
	return func(e liststore.Event) {
		hub.Broadcast(ws.NewMessage("list", string(e.Kind), e.ListID, nil))
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(s.logger.With("component", "http")))

	r.Get("/health", s.healthHandler)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", ws.Handler(s.hub, s.logger.With("component", "websocket")))

	r.Route("/api", func(r chi.Router) {
		r.Route("/lists", func(r chi.Router) {
			r.Get("/", s.listH.List)
			r.Post("/", s.listH.Create)
			r.Get("/{id}", s.listH.Get)
			r.Patch("/{id}", s.listH.Rename)
			r.Delete("/{id}", s.listH.Delete)
			r.Get("/{id}/share", s.listH.Share)
			r.Get("/{id}/export", s.listH.Export)
		})

		r.Route("/active", func(r chi.Router) {
			r.Get("/", s.listH.Active)
			r.Put("/", s.listH.SetActive)
			r.Get("/share", s.listH.ShareActive)

			r.Post("/items", s.listH.SetQuantity)
			r.Delete("/items/checked", s.listH.ClearChecked)
			r.Post("/items/{itemID}/toggle", s.listH.ToggleItem)
			r.Put("/items/{itemID}/phase", s.listH.MoveItem)

			r.Post("/categories", s.listH.AddCategory)
			r.Patch("/categories/{id}", s.listH.RenameCategory)
			r.Delete("/categories/{id}", s.listH.DeleteCategory)
		})

		r.Route("/import", func(r chi.Router) {
			r.With(middleware.RateLimit(s.limiter)).Post("/link", s.importH.IntakeLink)
			r.With(middleware.RateLimit(s.limiter)).Post("/file", s.importH.ImportFile)
			r.Get("/pending", s.importH.Pending)
			r.Post("/pending/overwrite", s.importH.Overwrite)
			r.Post("/pending/new", s.importH.ImportAsNew)
			r.Delete("/pending", s.importH.CancelPending)
			r.Delete("/notice", s.importH.DismissNotice)
		})

		r.Get("/presets", s.importH.Presets)
		r.With(middleware.RateLimit(s.limiter)).Post("/presets/{filename}/import", s.importH.ImportPreset)
	})

	return r
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"lists":   len(s.store.Lists()),
		"clients": s.hub.ClientCount(),
	})
}
