package schedule_api

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"time"

	"ms-schedule/internal/auth"
	"ms-schedule/internal/flash"
	"ms-schedule/internal/models"
	"ms-schedule/internal/schedule"
	"ms-schedule/internal/schedule/export"
)

//go:embed templates/*.html
var templateFS embed.FS

type pages struct {
	set *template.Template
}

func mustParsePages(loc *time.Location) *pages {
	funcs := template.FuncMap{
		"when": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.In(loc).Format("Mon 15:04")
		},
	}
	return &pages{set: template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))}
}

type basePage struct {
	Title    string
	UserID   string
	LineUp   string
	Messages []flash.Message
}

type schedulePage struct {
	basePage
	Venues []export.VenueColumn
	Items  []export.PresentedItem
}

type entry struct {
	Title   string
	Speaker string
	Venue   string
	Type    string
	Link    string
	Start   time.Time
	Cost    string
}

type listPage struct {
	basePage
	Proposals []entry
	Externals []entry
}

type detailPage struct {
	basePage
	Entry       entry
	Description string
	IsFavourite bool
}

// base pops pending flash messages only for pages that show them.
func (h *Handler) base(r *http.Request, viewer *schedule.Viewer) basePage {
	page := basePage{
		Title:  h.Config.Conference.Title,
		UserID: auth.UserID(r.Context()),
		LineUp: h.Service.Normalizer.LinkPrefix,
	}
	if viewer == nil || viewer.IsAnonymous() || h.Flash == nil {
		return page
	}
	msgs, err := h.Flash.Pop(r.Context(), viewer.UserID)
	if err != nil {
		h.Logger.Warn("FLASH", err.Error())
	}
	page.Messages = msgs
	return page
}

func (h *Handler) render(w http.ResponseWriter, name string, data interface{}) {
	var buf bytes.Buffer
	if err := h.pages.set.ExecuteTemplate(&buf, name, data); err != nil {
		h.serverError(w, "render "+name, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func (h *Handler) proposalEntry(p models.Proposal) entry {
	e := entry{
		Title:   p.Title,
		Speaker: p.SpeakerName(),
		Type:    p.Type,
		Link:    h.Service.Normalizer.ProposalLink(p.ID, p.Slug()),
	}
	if p.Venue != nil {
		e.Venue = p.Venue.Name
	}
	if p.ScheduledTime != nil {
		e.Start = h.Service.Normalizer.Localize(*p.ScheduledTime)
	}
	if p.Type == models.TypeWorkshop && p.Cost != "" {
		e.Cost = p.Cost
	}
	return e
}

func (h *Handler) proposalEntries(ps []models.Proposal) []entry {
	out := make([]entry, 0, len(ps))
	for _, p := range ps {
		out = append(out, h.proposalEntry(p))
	}
	return out
}

func (h *Handler) externalEntry(ev models.CalendarEvent) entry {
	return entry{
		Title: ev.Summary,
		Venue: ev.Venue(ev.Source),
		Type:  models.TypeTalk,
		Link:  h.Service.Normalizer.ExternalLink(ev.ID, ev.Slug()),
		Start: ev.StartDT,
	}
}

func (h *Handler) externalEntries(evs []models.CalendarEvent) []entry {
	out := make([]entry, 0, len(evs))
	for _, ev := range evs {
		out = append(out, h.externalEntry(ev))
	}
	return out
}
