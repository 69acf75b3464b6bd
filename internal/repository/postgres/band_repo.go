package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"showscheduler/internal/domain"
)

type bandRepository struct {
	DB *sql.DB
}

// NewBandRepository returns a domain.BandRepository implemented with Postgres.
func NewBandRepository(db *sql.DB) domain.BandRepository {
	return &bandRepository{DB: db}
}

// bandWithShowColumns selects a band joined to its parent show (aliases b and s).
const bandWithShowColumns = `b.id, b.show_id, b.band_name, b.start_time, b.end_time, b.created_at, b.updated_at,
		s.id, s.date, s.show_name, s.venue, s.created_at, s.updated_at`

func scanBandWithShow(row interface{ Scan(...any) error }) (*domain.Band, error) {
	b := &domain.Band{Show: &domain.Show{}}
	err := row.Scan(
		&b.ID, &b.ShowID, &b.BandName, &b.StartTime, &b.EndTime, &b.CreatedAt, &b.UpdatedAt,
		&b.Show.ID, &b.Show.Date, &b.Show.ShowName, &b.Show.Venue, &b.Show.CreatedAt, &b.Show.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *bandRepository) queryBands(ctx context.Context, query string, args ...any) ([]*domain.Band, error) {
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	bands := make([]*domain.Band, 0)
	for rows.Next() {
		b, err := scanBandWithShow(rows)
		if err != nil {
			return nil, err
		}
		bands = append(bands, b)
	}
	return bands, rows.Err()
}

func (r *bandRepository) Create(ctx context.Context, b *domain.Band) error {
	query := `
		INSERT INTO bands (show_id, band_name, start_time, end_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	return conn(ctx, r.DB).QueryRowContext(ctx, query, b.ShowID, b.BandName, b.StartTime, b.EndTime, b.CreatedAt, b.UpdatedAt).Scan(&b.ID)
}

func (r *bandRepository) GetByID(ctx context.Context, id int64) (*domain.Band, error) {
	query := `
		SELECT ` + bandWithShowColumns + `
		FROM bands b
		JOIN shows s ON s.id = b.show_id
		WHERE b.id = $1
	`
	b, err := scanBandWithShow(conn(ctx, r.DB).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *bandRepository) List(ctx context.Context, search string, params domain.PaginationParams) ([]*domain.Band, int, error) {
	where := ""
	args := []any{}
	n := 1
	if search = strings.TrimSpace(search); search != "" {
		where = fmt.Sprintf(`WHERE b.band_name ILIKE $%d`, n)
		args = append(args, likePattern(search))
		n++
	}

	var total int
	if err := conn(ctx, r.DB).QueryRowContext(ctx, `SELECT COUNT(*) FROM bands b `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM bands b
		JOIN shows s ON s.id = b.show_id
		%s
		ORDER BY b.band_name ASC, b.id ASC
		LIMIT $%d OFFSET $%d
	`, bandWithShowColumns, where, n, n+1)
	args = append(args, params.PageSize, params.Offset())

	bands, err := r.queryBands(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return bands, total, nil
}

func (r *bandRepository) ListByShowID(ctx context.Context, showID int64) ([]*domain.Band, error) {
	query := `
		SELECT ` + bandWithShowColumns + `
		FROM bands b
		JOIN shows s ON s.id = b.show_id
		WHERE b.show_id = $1
		ORDER BY b.start_time ASC
	`
	return r.queryBands(ctx, query, showID)
}

func (r *bandRepository) ListByNameOnDate(ctx context.Context, bandName string, date time.Time) ([]*domain.Band, error) {
	query := `
		SELECT ` + bandWithShowColumns + `
		FROM bands b
		JOIN shows s ON s.id = b.show_id
		WHERE LOWER(TRIM(b.band_name)) = LOWER(TRIM($1)) AND s.date = $2
		ORDER BY b.start_time ASC
	`
	return r.queryBands(ctx, query, bandName, domain.DateOf(date))
}

func (r *bandRepository) Update(ctx context.Context, b *domain.Band) error {
	query := `
		UPDATE bands SET show_id = $1, band_name = $2, start_time = $3, end_time = $4, updated_at = $5
		WHERE id = $6
	`
	result, err := conn(ctx, r.DB).ExecContext(ctx, query, b.ShowID, b.BandName, b.StartTime, b.EndTime, b.UpdatedAt, b.ID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *bandRepository) Delete(ctx context.Context, id int64) error {
	result, err := conn(ctx, r.DB).ExecContext(ctx, `DELETE FROM bands WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *bandRepository) ShiftShowBands(ctx context.Context, showID int64, days int) error {
	if days == 0 {
		return nil
	}
	query := `
		UPDATE bands
		SET start_time = start_time + make_interval(days => $1),
		    end_time = end_time + make_interval(days => $1),
		    updated_at = NOW()
		WHERE show_id = $2
	`
	_, err := conn(ctx, r.DB).ExecContext(ctx, query, days, showID)
	return err
}

// LockBookings takes one transaction-scoped advisory lock per distinct band
// name on date. Keys are taken in sorted order so concurrent callers cannot
// deadlock each other.
func (r *bandRepository) LockBookings(ctx context.Context, date time.Time, bandNames ...string) error {
	day := domain.DateOf(date).Format(time.DateOnly)
	seen := make(map[string]struct{}, len(bandNames))
	keys := make([]string, 0, len(bandNames))
	for _, name := range bandNames {
		key := "band:" + strings.ToLower(strings.TrimSpace(name)) + ":" + day
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if _, err := conn(ctx, r.DB).ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
			return fmt.Errorf("lock booking %s: %w", key, err)
		}
	}
	return nil
}
