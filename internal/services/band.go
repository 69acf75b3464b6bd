package services

import (
	"context"
	"fmt"
	"time"

	"showscheduler/internal/domain"
)

type bandService struct {
	tx             domain.Transactor
	bandRepo       domain.BandRepository
	showRepo       domain.ShowRepository
	contextTimeout time.Duration
	now            func() time.Time
}

// NewBandService creates a BandService that enforces the lineup rules on every write.
func NewBandService(tx domain.Transactor, bandRepo domain.BandRepository, showRepo domain.ShowRepository, timeout time.Duration) domain.BandService {
	return &bandService{
		tx:             tx,
		bandRepo:       bandRepo,
		showRepo:       showRepo,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *bandService) List(ctx context.Context, search string, params domain.PaginationParams) (domain.Page[*domain.Band], error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	params = normalizePage(params)
	bands, total, err := s.bandRepo.List(ctx, search, params)
	if err != nil {
		return domain.Page[*domain.Band]{}, fmt.Errorf("list bands: %w", err)
	}
	return domain.NewPage(bands, params, total), nil
}

func (s *bandService) Get(ctx context.Context, id int64) (*domain.Band, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	band, err := s.bandRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get band: %w", err)
	}
	return band, nil
}

func (s *bandService) Create(ctx context.Context, band *domain.Band) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	band.Normalize()
	if err := band.Validate(); err != nil {
		return err
	}
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.schedule(ctx, band); err != nil {
			return err
		}
		now := s.now().UTC()
		band.CreatedAt = now
		band.UpdatedAt = now
		if err := s.bandRepo.Create(ctx, band); err != nil {
			return fmt.Errorf("create band: %w", err)
		}
		return nil
	})
}

func (s *bandService) Update(ctx context.Context, band *domain.Band) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	band.Normalize()
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.bandRepo.GetByID(ctx, band.ID)
		if err != nil {
			return fmt.Errorf("get band: %w", err)
		}
		if err := band.Validate(); err != nil {
			return err
		}
		if err := s.schedule(ctx, band); err != nil {
			return err
		}
		band.CreatedAt = existing.CreatedAt
		band.UpdatedAt = s.now().UTC()
		if err := s.bandRepo.Update(ctx, band); err != nil {
			return fmt.Errorf("update band: %w", err)
		}
		return nil
	})
}

func (s *bandService) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.bandRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete band: %w", err)
	}
	return nil
}

func (s *bandService) ShowOptions(ctx context.Context) ([]domain.ShowOption, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	opts, err := s.showRepo.ListOptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list show options: %w", err)
	}
	if opts == nil {
		opts = []domain.ShowOption{}
	}
	return opts, nil
}

// schedule anchors the band on its show's date and checks the slot against
// the lineup and the band's other bookings that day. It must run inside a
// transaction: the show row lock serializes lineup changes and the booking
// lock serializes the band's schedule on that date.
func (s *bandService) schedule(ctx context.Context, band *domain.Band) error {
	show, err := s.showRepo.GetByIDForUpdate(ctx, band.ShowID)
	if err != nil {
		return fmt.Errorf("get show: %w", err)
	}
	if err := s.bandRepo.LockBookings(ctx, show.Date, band.BandName); err != nil {
		return err
	}
	domain.AdjustBandTimes(band, show.Date)
	band.Show = show

	lineup, err := s.bandRepo.ListByShowID(ctx, show.ID)
	if err != nil {
		return fmt.Errorf("list show bands: %w", err)
	}
	bookings, err := s.bandRepo.ListByNameOnDate(ctx, band.BandName, show.Date)
	if err != nil {
		return fmt.Errorf("list band bookings: %w", err)
	}
	return domain.ValidateBandSlot(band, lineup, bookings)
}
