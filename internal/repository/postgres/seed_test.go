package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSeed(t *testing.T) {
	seed, err := LoadSeed()
	require.NoError(t, err)
	require.Len(t, seed, 15)

	for _, s := range seed {
		require.NoError(t, s.Show.Validate(), s.Show.ShowName)
		require.Len(t, s.Bands, 1)
		b := s.Bands[0]
		assert.Equal(t, s.Show.Date.Add(22*time.Hour), b.StartTime, s.Show.ShowName)
		assert.Equal(t, s.Show.Date.Add(23*time.Hour+30*time.Minute), b.EndTime, s.Show.ShowName)
	}
}

func TestSeed_SkipsWhenShowsExist(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM shows`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	inserted, err := Seed(context.Background(), db)
	require.NoError(t, err)
	assert.False(t, inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSeed_InsertsInTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	seed, err := LoadSeed()
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM shows`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	for i := range seed {
		mock.ExpectQuery(`INSERT INTO shows`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(i + 1)))
		mock.ExpectExec(`INSERT INTO bands`).WillReturnResult(sqlmock.NewResult(int64(i+1), 1))
	}
	mock.ExpectCommit()

	inserted, err := Seed(context.Background(), db)
	require.NoError(t, err)
	assert.True(t, inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}
