// Package calendar exports show lineups as iCalendar feeds.
package calendar

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"showscheduler/internal/domain"
)

const productID = "-//showscheduler//lineup//EN"

type icsExporter struct {
	domain string
	now    func() time.Time
}

// NewICSExporter returns an exporter that writes one VEVENT per band.
// Event UIDs are scoped to uidDomain.
func NewICSExporter(uidDomain string) domain.CalendarExporter {
	if uidDomain == "" {
		uidDomain = "showscheduler.local"
	}
	return &icsExporter{domain: uidDomain, now: time.Now}
}

func (e *icsExporter) Export(show *domain.Show) ([]byte, error) {
	if show == nil {
		return nil, fmt.Errorf("export calendar: %w", domain.ErrNotFound)
	}
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	stamp := e.now().UTC()
	for _, b := range show.Bands {
		ev := cal.AddEvent(fmt.Sprintf("band-%d-show-%d@%s", b.ID, show.ID, e.domain))
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(b.StartTime)
		ev.SetEndAt(b.EndTime)
		ev.SetSummary(b.BandName)
		ev.SetLocation(show.Venue)
		ev.SetDescription(show.ShowName)
	}
	return []byte(cal.Serialize()), nil
}
