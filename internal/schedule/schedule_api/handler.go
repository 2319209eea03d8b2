package schedule_api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"ms-schedule/internal/auth"
	"ms-schedule/internal/config"
	"ms-schedule/internal/flash"
	"ms-schedule/internal/logger"
	"ms-schedule/internal/metrics"
	"ms-schedule/internal/models"
	"ms-schedule/internal/schedule"
	"ms-schedule/internal/schedule/export"
)

type FlashStore interface {
	Add(ctx context.Context, userID string, msg flash.Message) error
	Pop(ctx context.Context, userID string) ([]flash.Message, error)
}

type Handler struct {
	Service *schedule.ScheduleService
	Flash   FlashStore
	Metrics *metrics.Metrics
	Logger  *logger.Logger
	Config  *config.Config
	pages   *pages
}

func NewHandler(service *schedule.ScheduleService, flashes FlashStore, m *metrics.Metrics, log *logger.Logger, cfg *config.Config) *Handler {
	return &Handler{
		Service: service,
		Flash:   flashes,
		Metrics: m,
		Logger:  log,
		Config:  cfg,
		pages:   mustParsePages(cfg.Conference.Location()),
	}
}

// RegisterRoutes mounts every schedule route on r. The caller decides which
// middleware (auth, feature flags) wraps them.
func (h *Handler) RegisterRoutes(r chi.Router) {
	prefix := h.Service.Normalizer.LinkPrefix

	r.Get("/schedule", h.GetSchedule)
	r.Get("/schedule.json", h.exportHandler(export.FormatJSON))
	r.Get("/schedule.frab", h.exportHandler(export.FormatFrab))
	r.Get("/schedule.ical", h.exportHandler(export.FormatICal))

	r.Get("/line-up", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, prefix, http.StatusFound)
	})
	r.Get(prefix, h.GetLineUp)
	r.Get("/favourites", h.GetFavourites)

	r.Get(prefix+"/external/{ref}", h.ExternalDetail)
	r.Post(prefix+"/external/{ref}", h.ExternalDetail)
	r.Get(prefix+"/{ref}", h.ProposalDetail)
	r.Post(prefix+"/{ref}", h.ProposalDetail)
}

func (h *Handler) exportOptions() export.Options {
	return export.Options{
		Title:    h.Config.Conference.Title,
		Location: h.Service.Normalizer.Location,
	}
}

func (h *Handler) viewer(r *http.Request) (schedule.Viewer, error) {
	return h.Service.LoadViewer(r.Context(), auth.UserID(r.Context()))
}

func (h *Handler) scheduledItems(r *http.Request) ([]schedule.ScheduledItem, error) {
	viewer, err := h.viewer(r)
	if err != nil {
		return nil, err
	}
	return h.Service.GetScheduledItems(r.Context(), viewer, schedule.ParseFilters(r.URL.Query()))
}

func (h *Handler) exportHandler(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := h.scheduledItems(r)
		if err != nil {
			h.serverError(w, "load schedule", err)
			return
		}

		body, err := export.Export(format, items, h.exportOptions())
		if err != nil {
			h.serverError(w, "export "+format, err)
			return
		}

		h.Metrics.Export(format, len(items))
		h.Logger.LogExport(format, len(items))

		w.Header().Set("Content-Type", export.ContentType(format))
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}
}

func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	items, err := h.scheduledItems(r)
	if err != nil {
		h.serverError(w, "load schedule", err)
		return
	}

	withEvents := make(map[string]struct{}, len(items))
	for _, item := range items {
		withEvents[item.Venue] = struct{}{}
	}
	venues, err := h.Service.ResolvePriorityOrderedVenues(r.Context(), withEvents)
	if err != nil {
		h.serverError(w, "resolve venues", err)
		return
	}

	h.render(w, "schedule.html", schedulePage{
		basePage: h.base(r, nil),
		Venues:   export.VenueColumns(venues),
		Items:    export.Present(items, h.Service.Normalizer.Location),
	})
}

func (h *Handler) GetLineUp(w http.ResponseWriter, r *http.Request) {
	lineUp, err := h.Service.GetLineUp(r.Context())
	if err != nil {
		h.serverError(w, "load line-up", err)
		return
	}

	h.render(w, "line_up.html", listPage{
		basePage:  h.base(r, nil),
		Proposals: h.proposalEntries(lineUp.Proposals),
		Externals: h.externalEntries(lineUp.Externals),
	})
}

func (h *Handler) GetFavourites(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		http.Redirect(w, r, loginURL(h.Config.Auth.LoginURL, r.URL.Path), http.StatusFound)
		return
	}

	favs, err := h.Service.GetFavourites(r.Context(), userID)
	if err != nil {
		h.serverError(w, "load favourites", err)
		return
	}

	h.render(w, "favourites.html", listPage{
		basePage:  h.base(r, nil),
		Proposals: h.proposalEntries(favs.Proposals),
		Externals: h.externalEntries(favs.Externals),
	})
}

func (h *Handler) ProposalDetail(w http.ResponseWriter, r *http.Request) {
	id, slug, ok := parseRef(chi.URLParam(r, "ref"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	p, err := h.Service.GetProposal(r.Context(), id)
	if errors.Is(err, schedule.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.serverError(w, "load proposal", err)
		return
	}

	canonical := h.Service.Normalizer.ProposalLink(p.ID, p.Slug())
	if slug != p.Slug() {
		http.Redirect(w, r, canonical, http.StatusFound)
		return
	}

	if userID := auth.UserID(r.Context()); r.Method == http.MethodPost && userID != "" {
		added, err := h.Service.ToggleProposalFavourite(r.Context(), userID, p)
		if err != nil {
			h.serverError(w, "toggle favourite", err)
			return
		}
		h.afterToggle(r.Context(), userID, models.TargetProposal, p.Title, added)
		http.Redirect(w, r, canonical, http.StatusFound)
		return
	}

	viewer, err := h.viewer(r)
	if err != nil {
		h.serverError(w, "load viewer", err)
		return
	}

	page := detailPage{
		basePage:    h.base(r, &viewer),
		Entry:       h.proposalEntry(*p),
		Description: p.Description,
		IsFavourite: viewer.Favourites.Proposals.Has(p.ID),
	}
	h.render(w, "detail.html", page)
}

func (h *Handler) ExternalDetail(w http.ResponseWriter, r *http.Request) {
	id, slug, ok := parseRef(chi.URLParam(r, "ref"))
	if !ok {
		http.NotFound(w, r)
		return
	}

	e, err := h.Service.GetExternalEvent(r.Context(), id)
	if errors.Is(err, schedule.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.serverError(w, "load external event", err)
		return
	}

	canonical := h.Service.Normalizer.ExternalLink(e.ID, e.Slug())
	if slug != e.Slug() {
		http.Redirect(w, r, canonical, http.StatusFound)
		return
	}

	if userID := auth.UserID(r.Context()); r.Method == http.MethodPost && userID != "" {
		added, err := h.Service.ToggleEventFavourite(r.Context(), userID, e)
		if err != nil {
			h.serverError(w, "toggle favourite", err)
			return
		}
		h.afterToggle(r.Context(), userID, models.TargetExternal, e.Summary, added)
		http.Redirect(w, r, canonical, http.StatusFound)
		return
	}

	viewer, err := h.viewer(r)
	if err != nil {
		h.serverError(w, "load viewer", err)
		return
	}

	page := detailPage{
		basePage:    h.base(r, &viewer),
		Entry:       h.externalEntry(*e),
		Description: e.Description,
		IsFavourite: viewer.Favourites.Events.Has(e.ID),
	}
	h.render(w, "detail.html", page)
}

func (h *Handler) afterToggle(ctx context.Context, userID, target, title string, added bool) {
	action := models.FavouriteRemoved
	text := fmt.Sprintf(`Removed "%s" from favourites`, title)
	if added {
		action = models.FavouriteAdded
		text = fmt.Sprintf(`Added "%s" to favourites`, title)
	}
	h.Metrics.FavouriteToggled(target, action)

	if h.Flash == nil {
		return
	}
	if err := h.Flash.Add(ctx, userID, flash.Message{Category: "info", Text: text}); err != nil {
		h.Logger.Warn("FLASH", err.Error())
	}
}

func (h *Handler) serverError(w http.ResponseWriter, what string, err error) {
	h.Logger.Error("SCHEDULE", fmt.Sprintf("Failed to %s: %v", what, err))
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// parseRef splits "<id>[-<slug>]".
func parseRef(ref string) (int64, string, bool) {
	idPart, slug, _ := strings.Cut(ref, "-")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		return 0, "", false
	}
	return id, slug, true
}

func loginURL(base, next string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set("next", next)
	u.RawQuery = q.Encode()
	return u.String()
}
