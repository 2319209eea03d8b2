package export

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"ms-schedule/internal/schedule"
)

const frabDateLayout = "2006-01-02"

type frabSchedule struct {
	XMLName    xml.Name       `xml:"schedule"`
	Version    string         `xml:"version"`
	Conference frabConference `xml:"conference"`
	Days       []frabDay      `xml:"day"`
}

type frabConference struct {
	Title            string `xml:"title"`
	Acronym          string `xml:"acronym"`
	Start            string `xml:"start,omitempty"`
	End              string `xml:"end,omitempty"`
	Days             int    `xml:"days"`
	TimeslotDuration string `xml:"timeslot_duration"`
}

type frabDay struct {
	Index int        `xml:"index,attr"`
	Date  string     `xml:"date,attr"`
	Start string     `xml:"start,attr"`
	End   string     `xml:"end,attr"`
	Rooms []frabRoom `xml:"room"`
}

type frabRoom struct {
	Name   string      `xml:"name,attr"`
	Events []frabEvent `xml:"event"`
}

type frabEvent struct {
	GUID        string        `xml:"guid,attr"`
	ID          int64         `xml:"id,attr"`
	Date        string        `xml:"date"`
	Start       string        `xml:"start"`
	Duration    string        `xml:"duration"`
	Room        string        `xml:"room"`
	Slug        string        `xml:"slug"`
	URL         string        `xml:"url"`
	Title       string        `xml:"title"`
	Subtitle    string        `xml:"subtitle"`
	Track       string        `xml:"track"`
	Type        string        `xml:"type"`
	Language    string        `xml:"language"`
	Abstract    string        `xml:"abstract"`
	Description string        `xml:"description"`
	Recording   frabRecording `xml:"recording"`
	Persons     []frabPerson  `xml:"persons>person"`
	Links       struct{}      `xml:"links"`
}

type frabRecording struct {
	License string `xml:"license"`
	Optout  bool   `xml:"optout"`
}

type frabPerson struct {
	ID   int    `xml:"id,attr"`
	Name string `xml:",chardata"`
}

// Frab renders the frab schedule interchange format: one day per local date,
// one room per venue in first-seen order, events sorted by start.
func Frab(items []schedule.ScheduledItem, opts Options) ([]byte, error) {
	loc := opts.location()

	sorted := make([]schedule.ScheduledItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	var days []*frabDay
	dayIndex := map[string]*frabDay{}
	dayBounds := map[string][2]time.Time{}
	roomIndex := map[string]map[string]int{}

	for _, item := range sorted {
		start := item.Start.In(loc)
		end := item.End.In(loc)
		date := start.Format(frabDateLayout)

		day, ok := dayIndex[date]
		if !ok {
			day = &frabDay{Date: date}
			dayIndex[date] = day
			roomIndex[date] = map[string]int{}
			dayBounds[date] = [2]time.Time{start, end}
			days = append(days, day)
		}
		bounds := dayBounds[date]
		if end.After(bounds[1]) {
			bounds[1] = end
		}
		dayBounds[date] = bounds

		idx, ok := roomIndex[date][item.Venue]
		if !ok {
			idx = len(day.Rooms)
			roomIndex[date][item.Venue] = idx
			day.Rooms = append(day.Rooms, frabRoom{Name: item.Venue})
		}
		day.Rooms[idx].Events = append(day.Rooms[idx].Events, frabEventFor(item, start, end))
	}

	doc := frabSchedule{
		Version: opts.now().In(loc).Format("2006-01-02 15:04"),
		Conference: frabConference{
			Title:            opts.Title,
			Acronym:          acronym(opts.Title),
			Days:             len(days),
			TimeslotDuration: "00:10",
		},
	}
	for i, day := range days {
		bounds := dayBounds[day.Date]
		day.Index = i + 1
		day.Start = bounds[0].Format(time.RFC3339)
		day.End = bounds[1].Format(time.RFC3339)
		doc.Days = append(doc.Days, *day)
	}
	if len(days) > 0 {
		doc.Conference.Start = days[0].Date
		doc.Conference.End = days[len(days)-1].Date
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal frab schedule: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

func frabEventFor(item schedule.ScheduledItem, start, end time.Time) frabEvent {
	ev := frabEvent{
		GUID:        uuid.NewSHA1(uuid.NameSpaceURL, []byte(string(item.Source)+":"+item.ID)).String(),
		ID:          item.RowID,
		Date:        start.Format(time.RFC3339),
		Start:       start.Format("15:04"),
		Duration:    frabDuration(end.Sub(start)),
		Room:        item.Venue,
		Slug:        item.Slug,
		URL:         item.Link,
		Title:       item.Title,
		Type:        item.Type,
		Language:    "en",
		Abstract:    item.Description,
		Description: item.Description,
		Recording:   frabRecording{Optout: !item.MayRecord},
	}
	if item.Speaker != "" {
		ev.Persons = []frabPerson{{ID: 0, Name: item.Speaker}}
	}
	return ev
}

func frabDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d.Minutes())
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func acronym(title string) string {
	return strings.ToLower(strings.Join(strings.Fields(title), ""))
}
