package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"showscheduler/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed sql/seed.yaml
var seedYAML []byte

type seedFile struct {
	Shows []struct {
		Date      string `yaml:"date"`
		Name      string `yaml:"name"`
		Venue     string `yaml:"venue"`
		Headliner string `yaml:"headliner"`
	} `yaml:"shows"`
	HeadlinerSlot struct {
		Start string `yaml:"start"`
		End   string `yaml:"end"`
	} `yaml:"headliner_slot"`
}

// SeedShow is a show with its lineup as loaded from the seed file.
type SeedShow struct {
	Show  *domain.Show
	Bands []*domain.Band
}

// LoadSeed parses the embedded seed file into shows with anchored band times.
func LoadSeed() ([]SeedShow, error) {
	var f seedFile
	if err := yaml.Unmarshal(seedYAML, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	start, err := time.Parse("15:04", f.HeadlinerSlot.Start)
	if err != nil {
		return nil, fmt.Errorf("parse seed start: %w", err)
	}
	end, err := time.Parse("15:04", f.HeadlinerSlot.End)
	if err != nil {
		return nil, fmt.Errorf("parse seed end: %w", err)
	}
	out := make([]SeedShow, 0, len(f.Shows))
	for _, s := range f.Shows {
		date, err := time.Parse(time.DateOnly, s.Date)
		if err != nil {
			return nil, fmt.Errorf("parse seed date %q: %w", s.Date, err)
		}
		show := domain.NewShow(date, s.Name, s.Venue)
		band := domain.NewBand(0, s.Headliner, start, end)
		domain.AdjustBandTimes(band, show.Date)
		out = append(out, SeedShow{Show: show, Bands: []*domain.Band{band}})
	}
	return out, nil
}

// Seed inserts the initial schedule when the shows table is empty.
// It reports whether anything was inserted.
func Seed(ctx context.Context, db *sql.DB) (bool, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM shows`).Scan(&count); err != nil {
		return false, fmt.Errorf("count shows: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	seed, err := LoadSeed()
	if err != nil {
		return false, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for _, s := range seed {
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO shows (date, show_name, venue, created_at, updated_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			s.Show.Date, s.Show.ShowName, s.Show.Venue, now, now,
		).Scan(&s.Show.ID); err != nil {
			return false, fmt.Errorf("seed show %q: %w", s.Show.ShowName, err)
		}
		for _, b := range s.Bands {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO bands (show_id, band_name, start_time, end_time, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
				s.Show.ID, b.BandName, b.StartTime, b.EndTime, now, now,
			); err != nil {
				return false, fmt.Errorf("seed band %q: %w", b.BandName, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit seed: %w", err)
	}
	return true, nil
}
