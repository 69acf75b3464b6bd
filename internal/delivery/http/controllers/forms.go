package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"showscheduler/internal/domain"
)

// indexPageSize is the number of rows on the HTML listings.
const indexPageSize = 6

// Form field layouts, as sent by <input type="date"> and <input type="time">.
const (
	formDateLayout = time.DateOnly
	formTimeLayout = "15:04"
)

// indexQuery reads the listing parameters. A new searchString starts again
// at page 1; otherwise the search carried in currentFilter is kept.
func indexQuery(r *http.Request) (search string, page int) {
	q := r.URL.Query()
	page = 1
	if s := strings.TrimSpace(q.Get("searchString")); s != "" {
		return s, page
	}
	if v, err := strconv.Atoi(q.Get("pageNumber")); err == nil && v > 1 {
		page = v
	}
	return strings.TrimSpace(q.Get("currentFilter")), page
}

func parseDate(field, v string) (time.Time, error) {
	d, err := time.Parse(formDateLayout, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, &domain.ValidationError{Field: field, Message: field + " must be a date (YYYY-MM-DD)"}
	}
	return d, nil
}

// parseClock accepts HH:MM and HH:MM:SS. The date part is replaced later by
// domain.AdjustBandTimes.
func parseClock(field, v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	t, err := time.Parse(formTimeLayout, v)
	if err != nil {
		t, err = time.Parse(time.TimeOnly, v)
	}
	if err != nil {
		return time.Time{}, &domain.ValidationError{Field: field, Message: field + " must be a time (HH:MM)"}
	}
	return t, nil
}

// showFromForm builds a show from the posted form. The show is returned even
// on error so the form can be redisplayed with what was typed.
func showFromForm(r *http.Request) (*domain.Show, error) {
	show := &domain.Show{
		ShowName: r.PostFormValue("show_name"),
		Venue:    r.PostFormValue("venue"),
	}
	date, err := parseDate("date", r.PostFormValue("date"))
	if err != nil {
		return show, err
	}
	show.Date = date
	return show, nil
}

func bandFromForm(r *http.Request) (*domain.Band, error) {
	band := &domain.Band{BandName: r.PostFormValue("band_name")}
	showID, err := strconv.ParseInt(r.PostFormValue("show_id"), 10, 64)
	if err != nil || showID < 1 {
		return band, &domain.ValidationError{Field: "show_id", Message: "show_id is required"}
	}
	band.ShowID = showID
	if band.StartTime, err = parseClock("start_time", r.PostFormValue("start_time")); err != nil {
		return band, err
	}
	if band.EndTime, err = parseClock("end_time", r.PostFormValue("end_time")); err != nil {
		return band, err
	}
	return band, nil
}

// formWeeks reads the residency length; blank means a single show.
func formWeeks(r *http.Request) (int, error) {
	v := strings.TrimSpace(r.PostFormValue("weeks"))
	if v == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &domain.ValidationError{Field: "weeks", Message: "weeks must be a number"}
	}
	return n, nil
}

// safeReturnURL keeps redirects on this site.
func safeReturnURL(v string) string {
	if v == "" || !strings.HasPrefix(v, "/") || strings.HasPrefix(v, "//") || strings.HasPrefix(v, "/\\") {
		return "/shows"
	}
	return v
}
