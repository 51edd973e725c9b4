package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dev-nick421/immich-swipe/internal/adapters/notify"
	"github.com/dev-nick421/immich-swipe/internal/core/domain"
	"github.com/dev-nick421/immich-swipe/internal/core/services"
)

const defaultHistoryLimit = 50

type Deps struct {
	Controller     *services.ReviewController
	Settings       *services.SettingsStore
	Stats          *services.StatsService
	Assets         services.AssetService
	History        services.ReviewRepository
	Feed           *notify.Feed
	Server         string
	User           string
	MetricsHandler http.Handler
}

type handler struct {
	deps Deps
}

func NewRouter(deps Deps) http.Handler {
	h := &handler{deps: deps}

	r := chi.NewRouter()
	r.Get("/healthz", h.health)
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Route("/review", func(r chi.Router) {
			r.Get("/", h.reviewState)
			r.Post("/load", h.load)
			r.Post("/keep", h.keep)
			r.Post("/delete", h.delete)
			r.Post("/undo", h.undo)
			r.Post("/swipe/{direction}", h.swipe)
		})
		r.Get("/settings", h.getSettings)
		r.Put("/settings", h.putSettings)
		r.Get("/stats", h.getStats)
		r.Delete("/stats", h.resetStats)
		r.Get("/notifications", h.notifications)
		r.Get("/albums", h.albums)
		r.Get("/history", h.history)
	})
	return r
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *handler) reviewState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Controller.State())
}

func (h *handler) load(w http.ResponseWriter, r *http.Request) {
	h.act(w, h.deps.Controller.LoadInitial(r.Context()))
}

func (h *handler) keep(w http.ResponseWriter, r *http.Request) {
	h.act(w, h.deps.Controller.Keep(r.Context()))
}

func (h *handler) delete(w http.ResponseWriter, r *http.Request) {
	h.act(w, h.deps.Controller.Delete(r.Context()))
}

func (h *handler) undo(w http.ResponseWriter, r *http.Request) {
	h.act(w, h.deps.Controller.Undo(r.Context()))
}

func (h *handler) swipe(w http.ResponseWriter, r *http.Request) {
	dir, err := services.ParseDirection(chi.URLParam(r, "direction"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.act(w, h.deps.Controller.Commit(r.Context(), dir))
}

// act answers every review action with the resulting state. The state
// already carries a message for empty and filtered-out outcomes, and for a
// keep or delete that was applied before the next fetch failed.
func (h *handler) act(w http.ResponseWriter, err error) {
	state := h.deps.Controller.State()
	switch {
	case err == nil, errors.Is(err, services.ErrAllVideos), errors.Is(err, services.ErrAdvanceFailed):
		writeJSON(w, http.StatusOK, state)
	case errors.Is(err, services.ErrNoCurrentAsset):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error(), State: &state})
	default:
		log.Printf("review action failed: %v", err)
		writeJSON(w, http.StatusBadGateway, errorBody{Error: err.Error(), State: &state})
	}
}

func (h *handler) getSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Settings.Snapshot())
}

type settingsPatch struct {
	Order      *domain.OrderMode `json:"order"`
	SkipVideos *bool             `json:"skipVideos"`
}

func (h *handler) putSettings(w http.ResponseWriter, r *http.Request) {
	var patch settingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	next := h.deps.Settings.Snapshot()
	if patch.Order != nil {
		next.Order = *patch.Order
	}
	if patch.SkipVideos != nil {
		next.SkipVideos = *patch.SkipVideos
	}
	if _, err := domain.ParseOrderMode(string(next.Order)); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.deps.Settings.Update(next); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Settings.Snapshot())
}

func (h *handler) getStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Stats.Snapshot())
}

func (h *handler) resetStats(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Stats.Reset(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Stats.Snapshot())
}

func (h *handler) notifications(w http.ResponseWriter, r *http.Request) {
	if h.deps.Feed == nil {
		writeJSON(w, http.StatusOK, []notify.Notification{})
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Feed.Active())
}

func (h *handler) albums(w http.ResponseWriter, r *http.Request) {
	albums, err := h.deps.Assets.ListAlbums(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	if albums == nil {
		albums = []domain.Album{}
	}
	writeJSON(w, http.StatusOK, albums)
}

type historyEntry struct {
	UID        string              `json:"uid"`
	AssetID    string              `json:"assetID"`
	Action     domain.ReviewAction `json:"action"`
	ReviewedAt string              `json:"reviewedAt"`
}

func (h *handler) history(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	records, err := h.deps.History.ListRecent(r.Context(), h.deps.Server, h.deps.User, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	entries := make([]historyEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, historyEntry{
			UID:        rec.UID,
			AssetID:    rec.AssetID,
			Action:     rec.Action,
			ReviewedAt: rec.ReviewedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, entries)
}

type errorBody struct {
	Error string                `json:"error"`
	State *services.ReviewState `json:"state,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encoding response: %v", err)
	}
}
