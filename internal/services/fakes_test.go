package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"showscheduler/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// memStore backs the in-memory show and band repositories so joins behave like the database.
type memStore struct {
	mu     sync.Mutex
	nextID int64
	shows  map[int64]*domain.Show
	bands  map[int64]*domain.Band
}

func newMemStore() *memStore {
	return &memStore{shows: map[int64]*domain.Show{}, bands: map[int64]*domain.Band{}}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

// snapshot deep-copies the stored rows so a failed transaction can be undone.
func (m *memStore) snapshot() *memStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := newMemStore()
	cp.nextID = m.nextID
	for id, s := range m.shows {
		sc := *s
		cp.shows[id] = &sc
	}
	for id, b := range m.bands {
		bc := *b
		cp.bands[id] = &bc
	}
	return cp
}

func (m *memStore) restore(snap *memStore) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID, m.shows, m.bands = snap.nextID, snap.shows, snap.bands
}

// memTransactor runs one transaction at a time and restores the store when fn fails.
type memTransactor struct {
	store     *memStore
	mu        sync.Mutex
	rollbacks int
}

func (t *memTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	snap := t.store.snapshot()
	if err := fn(ctx); err != nil {
		t.store.restore(snap)
		t.rollbacks++
		return err
	}
	return nil
}

func day(y int, mo time.Month, d int) time.Time {
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

func clock(h, m int) time.Time {
	return time.Date(0, 1, 1, h, m, 0, 0, time.UTC)
}

// addShow stores a show directly, bypassing validation.
func (m *memStore) addShow(date time.Time, name, venue string) *domain.Show {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := domain.NewShow(date, name, venue)
	s.ID = m.id()
	m.shows[s.ID] = s
	cp := *s
	return &cp
}

// addBand stores a band anchored on its show's date, bypassing validation.
func (m *memStore) addBand(showID int64, name string, start, end time.Time) *domain.Band {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := domain.NewBand(showID, name, start, end)
	domain.AdjustBandTimes(b, m.shows[showID].Date)
	b.ID = m.id()
	m.bands[b.ID] = b
	cp := *b
	return &cp
}

type memShowRepo struct {
	*memStore
	listErr   error
	// createErr is returned by the failAt-th Create call (1-based).
	createErr error
	failAt    int
	creates   int
}

func (r *memShowRepo) Create(_ context.Context, s *domain.Show) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.createErr != nil && r.creates == r.failAt {
		return r.createErr
	}
	s.ID = r.id()
	cp := *s
	cp.Bands = nil
	r.shows[s.ID] = &cp
	return nil
}

func (r *memShowRepo) GetByID(_ context.Context, id int64) (*domain.Show, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memShowRepo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Show, error) {
	return r.GetByID(ctx, id)
}

func (r *memShowRepo) GetByIDWithBands(ctx context.Context, id int64) (*domain.Show, error) {
	s, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s.Bands = []*domain.Band{}
	for _, b := range r.bands {
		if b.ShowID == id {
			cp := *b
			s.Bands = append(s.Bands, &cp)
		}
	}
	sort.Slice(s.Bands, func(i, j int) bool { return s.Bands[i].StartTime.After(s.Bands[j].StartTime) })
	return s, nil
}

func (r *memShowRepo) List(ctx context.Context, search string, params domain.PaginationParams) ([]*domain.Show, int, error) {
	if r.listErr != nil {
		return nil, 0, r.listErr
	}
	r.mu.Lock()
	var all []*domain.Show
	for _, s := range r.shows {
		if search == "" || strings.Contains(strings.ToLower(s.ShowName), strings.ToLower(strings.TrimSpace(search))) {
			all = append(all, s)
		}
	}
	r.mu.Unlock()
	sort.Slice(all, func(i, j int) bool { return all[i].Date.After(all[j].Date) })
	total := len(all)
	start := min(params.Offset(), total)
	end := min(start+params.PageSize, total)
	out := make([]*domain.Show, 0, end-start)
	for _, s := range all[start:end] {
		full, _ := r.GetByIDWithBands(ctx, s.ID)
		if h := full.Headliner(); h != nil {
			full.Bands = []*domain.Band{h}
		}
		out = append(out, full)
	}
	return out, total, nil
}

func (r *memShowRepo) ListByDate(_ context.Context, date time.Time) ([]*domain.Show, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Show
	for _, s := range r.shows {
		if domain.SameDate(s.Date, date) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memShowRepo) ListOptions(_ context.Context) ([]domain.ShowOption, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ShowOption
	for _, s := range r.shows {
		out = append(out, domain.ShowOption{ID: s.ID, ShowName: s.ShowName})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ShowName < out[j].ShowName })
	return out, nil
}

func (r *memShowRepo) Update(_ context.Context, s *domain.Show) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.shows[s.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *s
	cp.Bands = nil
	r.shows[s.ID] = &cp
	return nil
}

func (r *memShowRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.shows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.shows, id)
	for bid, b := range r.bands {
		if b.ShowID == id {
			delete(r.bands, bid)
		}
	}
	return nil
}

func (r *memShowRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.shows), nil
}

type memBandRepo struct {
	*memStore
	shiftErr error
	locks    []string
}

func (r *memBandRepo) withShow(b *domain.Band) *domain.Band {
	cp := *b
	if s, ok := r.shows[b.ShowID]; ok {
		sc := *s
		cp.Show = &sc
	}
	return &cp
}

func (r *memBandRepo) Create(_ context.Context, b *domain.Band) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.ID = r.id()
	cp := *b
	cp.Show = nil
	r.bands[b.ID] = &cp
	return nil
}

func (r *memBandRepo) GetByID(_ context.Context, id int64) (*domain.Band, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bands[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.withShow(b), nil
}

func (r *memBandRepo) List(_ context.Context, search string, params domain.PaginationParams) ([]*domain.Band, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*domain.Band
	for _, b := range r.bands {
		if search == "" || strings.Contains(strings.ToLower(b.BandName), strings.ToLower(search)) {
			all = append(all, r.withShow(b))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].BandName < all[j].BandName })
	total := len(all)
	start := min(params.Offset(), total)
	end := min(start+params.PageSize, total)
	return all[start:end], total, nil
}

func (r *memBandRepo) ListByShowID(_ context.Context, showID int64) ([]*domain.Band, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Band
	for _, b := range r.bands {
		if b.ShowID == showID {
			out = append(out, r.withShow(b))
		}
	}
	return out, nil
}

func (r *memBandRepo) ListByNameOnDate(_ context.Context, name string, date time.Time) ([]*domain.Band, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Band
	for _, b := range r.bands {
		s, ok := r.shows[b.ShowID]
		if ok && domain.SameDate(s.Date, date) && strings.EqualFold(strings.TrimSpace(b.BandName), strings.TrimSpace(name)) {
			out = append(out, r.withShow(b))
		}
	}
	return out, nil
}

func (r *memBandRepo) Update(_ context.Context, b *domain.Band) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bands[b.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *b
	cp.Show = nil
	r.bands[b.ID] = &cp
	return nil
}

func (r *memBandRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bands[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.bands, id)
	return nil
}

func (r *memBandRepo) ShiftShowBands(_ context.Context, showID int64, days int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.shiftErr != nil {
		return r.shiftErr
	}
	for _, b := range r.bands {
		if b.ShowID == showID {
			b.StartTime = b.StartTime.AddDate(0, 0, days)
			b.EndTime = b.EndTime.AddDate(0, 0, days)
		}
	}
	return nil
}

func (r *memBandRepo) LockBookings(_ context.Context, date time.Time, names ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range names {
		r.locks = append(r.locks, strings.ToLower(strings.TrimSpace(n))+"@"+date.Format(time.DateOnly))
	}
	return nil
}

type notification struct {
	action domain.ScheduleAction
	showID int64
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *recordingNotifier) ShowChanged(_ context.Context, action domain.ScheduleAction, show *domain.Show) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{action: action, showID: show.ID})
}

type fakeCalendar struct {
	got *domain.Show
	err error
}

func (f *fakeCalendar) Export(show *domain.Show) ([]byte, error) {
	f.got = show
	if f.err != nil {
		return nil, f.err
	}
	return []byte("BEGIN:VCALENDAR"), nil
}

// fakeUserRepo implements domain.UserRepository for tests.
type fakeUserRepo struct {
	byEmail   map[string]*domain.User
	getErr    error
	createErr error
	created   int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*domain.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	f.created++
	u.ID = int64(f.created)
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

// fakePasswordHasher implements domain.PasswordHasher for tests.
type fakePasswordHasher struct{}

func (fakePasswordHasher) GenerateSalt() (string, error) { return "salt", nil }
func (fakePasswordHasher) Hash(salt, password string) (string, error) {
	return "hash-" + salt + password, nil
}
func (fakePasswordHasher) Compare(hash, salt, password string) error {
	if hash != "hash-"+salt+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokenIssuer implements domain.TokenIssuer for tests.
type fakeTokenIssuer struct {
	err   error
	roles []string
}

func (f *fakeTokenIssuer) Issue(userID, _ string, roles []string, _ time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.roles = roles
	return "token-" + userID, nil
}
