package httpapp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/cesargomez89/mixtape/internal/app"
	"github.com/cesargomez89/mixtape/internal/constants"
	"github.com/cesargomez89/mixtape/internal/logger"
)

type Handler struct {
	Tracks         *app.TrackService
	Logger         *logger.Logger
	MaxUploadBytes int64
}

func NewHandler(tracks *app.TrackService, maxUploadBytes int64, log *logger.Logger) *Handler {
	return &Handler{
		Tracks:         tracks,
		Logger:         log.WithComponent("http"),
		MaxUploadBytes: maxUploadBytes,
	}
}

// NewRouter builds the full HTTP surface with its middleware stack.
func NewRouter(h *Handler, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(h.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Range"},
		ExposedHeaders: []string{"Content-Length", "Content-Range", "Content-Disposition", "Accept-Ranges"},
		MaxAge:         300,
	}))

	h.RegisterRoutes(r)
	return r
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Get(constants.UploadsURLPrefix+"{filename}", h.Download)

	r.Route("/api/tracks", h.trackRoutes)
	r.Route("/tracks", h.trackRoutes)
}

func (h *Handler) trackRoutes(r chi.Router) {
	r.Get("/", h.ListTracks)
	r.Post("/upload", h.UploadTrack)
	r.Get("/stream/{filename}", h.StreamTrack)
	r.Get("/{id}", h.GetTrack)
	r.Patch("/{id}", h.UpdateTrack)
	r.Delete("/{id}", h.DeleteTrack)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse())
}
