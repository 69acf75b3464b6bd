package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"showscheduler/internal/domain"

	"github.com/lib/pq"
)

type showRepository struct {
	DB *sql.DB
}

// NewShowRepository returns a domain.ShowRepository implemented with Postgres.
func NewShowRepository(db *sql.DB) domain.ShowRepository {
	return &showRepository{DB: db}
}

const showColumns = `s.id, s.date, s.show_name, s.venue, s.created_at, s.updated_at`

func scanShow(row interface{ Scan(...any) error }, s *domain.Show, extra ...any) error {
	dest := append([]any{&s.ID, &s.Date, &s.ShowName, &s.Venue, &s.CreatedAt, &s.UpdatedAt}, extra...)
	return row.Scan(dest...)
}

func (r *showRepository) Create(ctx context.Context, s *domain.Show) error {
	query := `
		INSERT INTO shows (date, show_name, venue, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, s.Date, s.ShowName, s.Venue, s.CreatedAt, s.UpdatedAt).Scan(&s.ID)
	return showWriteError(err)
}

// showWriteError maps the unique indexes on shows to the matching ConflictError.
func showWriteError(err error) error {
	var perr *pq.Error
	if errors.As(err, &perr) && perr.Code == "23505" {
		switch perr.Constraint {
		case "shows_date_venue_key":
			return &domain.ConflictError{Kind: domain.ConflictVenue}
		case "shows_date_name_key":
			return &domain.ConflictError{Kind: domain.ConflictShowName}
		}
	}
	return err
}

func (r *showRepository) GetByID(ctx context.Context, id int64) (*domain.Show, error) {
	query := `SELECT ` + showColumns + ` FROM shows s WHERE s.id = $1`
	s := &domain.Show{}
	if err := scanShow(conn(ctx, r.DB).QueryRowContext(ctx, query, id), s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *showRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Show, error) {
	query := `SELECT ` + showColumns + ` FROM shows s WHERE s.id = $1 FOR UPDATE`
	s := &domain.Show{}
	if err := scanShow(conn(ctx, r.DB).QueryRowContext(ctx, query, id), s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *showRepository) GetByIDWithBands(ctx context.Context, id int64) (*domain.Show, error) {
	s, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rows, err := conn(ctx, r.DB).QueryContext(ctx, `
		SELECT id, show_id, band_name, start_time, end_time, created_at, updated_at
		FROM bands
		WHERE show_id = $1
		ORDER BY start_time DESC, id DESC
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	s.Bands = make([]*domain.Band, 0)
	for rows.Next() {
		b := &domain.Band{}
		if err := rows.Scan(&b.ID, &b.ShowID, &b.BandName, &b.StartTime, &b.EndTime, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		s.Bands = append(s.Bands, b)
	}
	return s, rows.Err()
}

func (r *showRepository) List(ctx context.Context, search string, params domain.PaginationParams) ([]*domain.Show, int, error) {
	where := ""
	args := []any{}
	n := 1
	if search = strings.TrimSpace(search); search != "" {
		where = fmt.Sprintf(`WHERE s.show_name ILIKE $%d`, n)
		args = append(args, likePattern(search))
		n++
	}

	var total int
	if err := conn(ctx, r.DB).QueryRowContext(ctx, `SELECT COUNT(*) FROM shows s `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s, h.id, h.band_name, h.start_time, h.end_time
		FROM shows s
		LEFT JOIN LATERAL (
			SELECT b.id, b.band_name, b.start_time, b.end_time
			FROM bands b
			WHERE b.show_id = s.id
			ORDER BY b.start_time DESC, b.id DESC
			LIMIT 1
		) h ON true
		%s
		ORDER BY s.date DESC, s.id DESC
		LIMIT $%d OFFSET $%d
	`, showColumns, where, n, n+1)
	args = append(args, params.PageSize, params.Offset())

	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	shows := make([]*domain.Show, 0)
	for rows.Next() {
		s := &domain.Show{}
		var headID sql.NullInt64
		var headName sql.NullString
		var headStart, headEnd sql.NullTime
		if err := scanShow(rows, s, &headID, &headName, &headStart, &headEnd); err != nil {
			return nil, 0, err
		}
		if headID.Valid {
			s.Bands = []*domain.Band{{
				ID:        headID.Int64,
				ShowID:    s.ID,
				BandName:  headName.String,
				StartTime: headStart.Time,
				EndTime:   headEnd.Time,
			}}
		}
		shows = append(shows, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return shows, total, nil
}

func (r *showRepository) ListByDate(ctx context.Context, date time.Time) ([]*domain.Show, error) {
	query := `SELECT ` + showColumns + ` FROM shows s WHERE s.date = $1 ORDER BY s.id`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, domain.DateOf(date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	shows := make([]*domain.Show, 0)
	for rows.Next() {
		s := &domain.Show{}
		if err := scanShow(rows, s); err != nil {
			return nil, err
		}
		shows = append(shows, s)
	}
	return shows, rows.Err()
}

func (r *showRepository) ListOptions(ctx context.Context) ([]domain.ShowOption, error) {
	rows, err := conn(ctx, r.DB).QueryContext(ctx, `SELECT id, show_name FROM shows ORDER BY show_name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var opts []domain.ShowOption
	for rows.Next() {
		var o domain.ShowOption
		if err := rows.Scan(&o.ID, &o.ShowName); err != nil {
			return nil, err
		}
		opts = append(opts, o)
	}
	return opts, rows.Err()
}

func (r *showRepository) Update(ctx context.Context, s *domain.Show) error {
	query := `
		UPDATE shows SET date = $1, show_name = $2, venue = $3, updated_at = $4
		WHERE id = $5
	`
	result, err := conn(ctx, r.DB).ExecContext(ctx, query, s.Date, s.ShowName, s.Venue, s.UpdatedAt, s.ID)
	if err != nil {
		return showWriteError(err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *showRepository) Delete(ctx context.Context, id int64) error {
	result, err := conn(ctx, r.DB).ExecContext(ctx, `DELETE FROM shows WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *showRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := conn(ctx, r.DB).QueryRowContext(ctx, `SELECT COUNT(*) FROM shows`).Scan(&n)
	return n, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps s for a substring ILIKE match, escaping wildcards.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
