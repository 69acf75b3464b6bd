package domain

import (
	"context"
	"strings"
	"time"
)

// MaxNameLength bounds show names, venues and band names.
const MaxNameLength = 50

// Show is a single-date event at a venue with a lineup of bands.
// swagger:model Show
type Show struct {
	ID        int64     `json:"id"`
	Date      time.Time `json:"date"`
	ShowName  string    `json:"show_name"`
	Venue     string    `json:"venue"`
	Bands     []*Band   `json:"bands,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewShow returns a new Show with the given fields. ID is set by the repository on create.
func NewShow(date time.Time, showName, venue string) *Show {
	return &Show{
		Date:     DateOf(date),
		ShowName: showName,
		Venue:    venue,
	}
}

// Normalize trims names and truncates Date to midnight.
func (s *Show) Normalize() {
	s.ShowName = strings.TrimSpace(s.ShowName)
	s.Venue = strings.TrimSpace(s.Venue)
	s.Date = DateOf(s.Date)
}

// Validate checks required fields and lengths.
func (s *Show) Validate() error {
	if s.Date.IsZero() {
		return invalid("date", "date is required")
	}
	if err := validateName("show_name", s.ShowName); err != nil {
		return err
	}
	return validateName("venue", s.Venue)
}

// Headliner returns the band with the latest start time, or nil if the lineup is empty.
// Equal start times go to the higher ID.
func (s *Show) Headliner() *Band {
	var head *Band
	for _, b := range s.Bands {
		if head == nil || b.StartTime.After(head.StartTime) || (b.StartTime.Equal(head.StartTime) && b.ID > head.ID) {
			head = b
		}
	}
	return head
}

// ShowOption is an id/name pair for pick lists.
type ShowOption struct {
	ID       int64  `json:"id"`
	ShowName string `json:"show_name"`
}

// ShowRepository defines the interface for show storage
type ShowRepository interface {
	Create(ctx context.Context, show *Show) error
	GetByID(ctx context.Context, id int64) (*Show, error)
	// GetByIDForUpdate loads the show and, inside a transaction, locks its row until the transaction ends.
	GetByIDForUpdate(ctx context.Context, id int64) (*Show, error)
	// GetByIDWithBands loads the show and its lineup ordered by start time, latest first.
	GetByIDWithBands(ctx context.Context, id int64) (*Show, error)
	// List returns one page ordered by date (newest first) with each show's headliner attached, plus the total match count.
	List(ctx context.Context, search string, params PaginationParams) ([]*Show, int, error)
	ListByDate(ctx context.Context, date time.Time) ([]*Show, error)
	ListOptions(ctx context.Context) ([]ShowOption, error)
	Update(ctx context.Context, show *Show) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

// ShowService defines the business logic for shows.
type ShowService interface {
	List(ctx context.Context, search string, params PaginationParams) (Page[*Show], error)
	Get(ctx context.Context, id int64) (*Show, error)
	Create(ctx context.Context, show *Show) error
	CreateResidency(ctx context.Context, show *Show, weeks int) ([]*Show, error)
	Update(ctx context.Context, show *Show) error
	Delete(ctx context.Context, id int64) error
	Calendar(ctx context.Context, id int64) ([]byte, error)
}

func validateName(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return invalid(field, field+" is required")
	}
	if len([]rune(v)) > MaxNameLength {
		return invalid(field, field+" must be at most 50 characters")
	}
	return nil
}

// CalendarExporter encodes a show's lineup as an iCalendar document.
type CalendarExporter interface {
	Export(show *Show) ([]byte, error)
}
