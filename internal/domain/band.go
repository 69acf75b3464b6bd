package domain

import (
	"context"
	"strings"
	"time"
)

// Band is a performer booked into a time slot of a show.
// swagger:model Band
type Band struct {
	ID        int64     `json:"id"`
	ShowID    int64     `json:"show_id"`
	BandName  string    `json:"band_name"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Show      *Show     `json:"show,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewBand returns a new Band with the given fields. ID is set by the repository on create.
func NewBand(showID int64, bandName string, startTime, endTime time.Time) *Band {
	return &Band{
		ShowID:    showID,
		BandName:  bandName,
		StartTime: startTime,
		EndTime:   endTime,
	}
}

// Slot returns the band's booked interval.
func (b *Band) Slot() Slot {
	return Slot{Start: b.StartTime, End: b.EndTime}
}

// Normalize trims the band name.
func (b *Band) Normalize() {
	b.BandName = strings.TrimSpace(b.BandName)
}

// Validate checks required fields and lengths. Time ordering is checked by ValidateBandSlot.
func (b *Band) Validate() error {
	if b.ShowID <= 0 {
		return invalid("show_id", "show_id is required")
	}
	return validateName("band_name", b.BandName)
}

// BandRepository defines the interface for band storage
type BandRepository interface {
	Create(ctx context.Context, band *Band) error
	GetByID(ctx context.Context, id int64) (*Band, error)
	// List returns one page ordered by band name with the parent show attached, plus the total match count.
	List(ctx context.Context, search string, params PaginationParams) ([]*Band, int, error)
	ListByShowID(ctx context.Context, showID int64) ([]*Band, error)
	// ListByNameOnDate returns bookings of a band name (case-insensitive) in any show on the given date.
	ListByNameOnDate(ctx context.Context, bandName string, date time.Time) ([]*Band, error)
	Update(ctx context.Context, band *Band) error
	Delete(ctx context.Context, id int64) error
	// ShiftShowBands moves every band of a show by the given number of days.
	ShiftShowBands(ctx context.Context, showID int64, days int) error
	// LockBookings serializes writes that book the given band names on date
	// until the surrounding transaction ends.
	LockBookings(ctx context.Context, date time.Time, bandNames ...string) error
}

// BandService defines the business logic for bands.
type BandService interface {
	List(ctx context.Context, search string, params PaginationParams) (Page[*Band], error)
	Get(ctx context.Context, id int64) (*Band, error)
	Create(ctx context.Context, band *Band) error
	Update(ctx context.Context, band *Band) error
	Delete(ctx context.Context, id int64) error
	ShowOptions(ctx context.Context) ([]ShowOption, error)
}
