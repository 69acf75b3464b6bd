package services

import (
	"context"
	"fmt"
	"time"

	"showscheduler/internal/domain"

	"github.com/teambition/rrule-go"
)

// MaxResidencyWeeks bounds CreateResidency.
const MaxResidencyWeeks = 12

type showService struct {
	tx             domain.Transactor
	showRepo       domain.ShowRepository
	bandRepo       domain.BandRepository
	calendar       domain.CalendarExporter
	notifier       domain.Notifier
	contextTimeout time.Duration
	now            func() time.Time
}

// NewShowService creates a ShowService. Each write runs its checks and
// statements in one transaction from tx. A nil notifier disables change notifications.
func NewShowService(tx domain.Transactor, showRepo domain.ShowRepository, bandRepo domain.BandRepository, calendar domain.CalendarExporter, notifier domain.Notifier, timeout time.Duration) domain.ShowService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &showService{
		tx:             tx,
		showRepo:       showRepo,
		bandRepo:       bandRepo,
		calendar:       calendar,
		notifier:       notifier,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *showService) List(ctx context.Context, search string, params domain.PaginationParams) (domain.Page[*domain.Show], error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	params = normalizePage(params)
	shows, total, err := s.showRepo.List(ctx, search, params)
	if err != nil {
		return domain.Page[*domain.Show]{}, fmt.Errorf("list shows: %w", err)
	}
	return domain.NewPage(shows, params, total), nil
}

func (s *showService) Get(ctx context.Context, id int64) (*domain.Show, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	show, err := s.showRepo.GetByIDWithBands(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get show: %w", err)
	}
	return show, nil
}

func (s *showService) Create(ctx context.Context, show *domain.Show) error {
	tctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	show.Normalize()
	if err := show.Validate(); err != nil {
		return err
	}
	err := s.tx.WithinTx(tctx, func(ctx context.Context) error {
		if err := s.checkConflicts(ctx, show); err != nil {
			return err
		}
		now := s.now().UTC()
		show.CreatedAt = now
		show.UpdatedAt = now
		if err := s.showRepo.Create(ctx, show); err != nil {
			return fmt.Errorf("create show: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.notifier.ShowChanged(ctx, domain.ScheduleAdded, show)
	return nil
}

// CreateResidency books the same show on weeks consecutive weeks starting at
// show.Date. The run is stored in one transaction, so either every week is
// booked or none is.
func (s *showService) CreateResidency(ctx context.Context, show *domain.Show, weeks int) ([]*domain.Show, error) {
	tctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if weeks < 1 || weeks > MaxResidencyWeeks {
		return nil, &domain.ValidationError{Field: "weeks", Message: fmt.Sprintf("weeks must be between 1 and %d", MaxResidencyWeeks)}
	}
	show.Normalize()
	if err := show.Validate(); err != nil {
		return nil, err
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.WEEKLY,
		Count:   weeks,
		Dtstart: show.Date,
	})
	if err != nil {
		return nil, fmt.Errorf("build residency rule: %w", err)
	}

	var run []*domain.Show
	err = s.tx.WithinTx(tctx, func(ctx context.Context) error {
		run = make([]*domain.Show, 0, weeks)
		for _, date := range rule.All() {
			candidate := domain.NewShow(date, show.ShowName, show.Venue)
			if err := s.checkConflicts(ctx, candidate); err != nil {
				return err
			}
			run = append(run, candidate)
		}

		now := s.now().UTC()
		for _, candidate := range run {
			candidate.CreatedAt = now
			candidate.UpdatedAt = now
			if err := s.showRepo.Create(ctx, candidate); err != nil {
				return fmt.Errorf("create residency show %s: %w", candidate.Date.Format(time.DateOnly), err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, candidate := range run {
		s.notifier.ShowChanged(ctx, domain.ScheduleAdded, candidate)
	}
	*show = *run[0]
	return run, nil
}

// Update saves show and moves its lineup by the same number of days as its
// date. The show row stays locked until the lineup has moved.
func (s *showService) Update(ctx context.Context, show *domain.Show) error {
	tctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	show.Normalize()
	err := s.tx.WithinTx(tctx, func(ctx context.Context) error {
		existing, err := s.showRepo.GetByIDForUpdate(ctx, show.ID)
		if err != nil {
			return fmt.Errorf("get show: %w", err)
		}
		if err := show.Validate(); err != nil {
			return err
		}
		if err := s.checkConflicts(ctx, show); err != nil {
			return err
		}

		days := int(show.Date.Sub(existing.Date).Round(24*time.Hour) / (24 * time.Hour))
		if days != 0 {
			if err := s.checkShiftedBands(ctx, show, days); err != nil {
				return err
			}
		}

		show.CreatedAt = existing.CreatedAt
		show.UpdatedAt = s.now().UTC()
		if err := s.showRepo.Update(ctx, show); err != nil {
			return fmt.Errorf("update show: %w", err)
		}
		if err := s.bandRepo.ShiftShowBands(ctx, show.ID, days); err != nil {
			return fmt.Errorf("shift show bands: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.notifier.ShowChanged(ctx, domain.ScheduleUpdated, show)
	return nil
}

func (s *showService) Delete(ctx context.Context, id int64) error {
	tctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	show, err := s.showRepo.GetByID(tctx, id)
	if err != nil {
		return fmt.Errorf("get show: %w", err)
	}
	if err := s.showRepo.Delete(tctx, id); err != nil {
		return fmt.Errorf("delete show: %w", err)
	}
	s.notifier.ShowChanged(ctx, domain.ScheduleRemoved, show)
	return nil
}

func (s *showService) Calendar(ctx context.Context, id int64) ([]byte, error) {
	show, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	out, err := s.calendar.Export(show)
	if err != nil {
		return nil, fmt.Errorf("export calendar: %w", err)
	}
	return out, nil
}

func (s *showService) checkConflicts(ctx context.Context, show *domain.Show) error {
	existing, err := s.showRepo.ListByDate(ctx, show.Date)
	if err != nil {
		return fmt.Errorf("list shows on date: %w", err)
	}
	return domain.ValidateShow(show, existing)
}

// checkShiftedBands verifies that moving the show's lineup by days does not
// double-book any of its bands at another show on the new date.
func (s *showService) checkShiftedBands(ctx context.Context, show *domain.Show, days int) error {
	bands, err := s.bandRepo.ListByShowID(ctx, show.ID)
	if err != nil {
		return fmt.Errorf("list show bands: %w", err)
	}
	names := make([]string, 0, len(bands))
	for _, b := range bands {
		names = append(names, b.BandName)
	}
	if err := s.bandRepo.LockBookings(ctx, show.Date, names...); err != nil {
		return err
	}
	for _, b := range bands {
		moved := *b
		moved.StartTime = b.StartTime.AddDate(0, 0, days)
		moved.EndTime = b.EndTime.AddDate(0, 0, days)

		bookings, err := s.bandRepo.ListByNameOnDate(ctx, b.BandName, show.Date)
		if err != nil {
			return fmt.Errorf("list band bookings: %w", err)
		}
		var elsewhere []*domain.Band
		for _, other := range bookings {
			if other.ShowID != show.ID {
				elsewhere = append(elsewhere, other)
			}
		}
		if err := domain.ValidateBandSlot(&moved, nil, elsewhere); err != nil {
			return err
		}
	}
	return nil
}

type nopNotifier struct{}

func (nopNotifier) ShowChanged(context.Context, domain.ScheduleAction, *domain.Show) {}
