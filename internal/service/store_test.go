package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"booking-service/internal/models"
	"booking-service/internal/schedule"
	"booking-service/internal/storage"
	"booking-service/internal/video"
	"booking-service/pkg/response"
)

// memStore is an in-memory Store. Units of work are serialized by txMu the
// way the professional row lock serializes them in Postgres, and rolled back
// by restoring a snapshot.
type memStore struct {
	txMu sync.Mutex

	mu            sync.Mutex
	professionals map[string]*models.Professional
	clients       map[string]*models.Client
	windows       map[string]*models.AvailabilityWindow
	blocks        map[string]*models.TimeBlock
	bookings      map[string]*models.Booking
	purchases     map[string]string
}

func newMemStore() *memStore {
	return &memStore{
		professionals: map[string]*models.Professional{},
		clients:       map[string]*models.Client{},
		windows:       map[string]*models.AvailabilityWindow{},
		blocks:        map[string]*models.TimeBlock{},
		bookings:      map[string]*models.Booking{},
		purchases:     map[string]string{},
	}
}

func (m *memStore) balance(clientID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clients[clientID].CreditBalance
}

func (m *memStore) bookingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bookings)
}

func (m *memStore) BeginTx(_ context.Context) (storage.Tx, error) {
	m.txMu.Lock()

	m.mu.Lock()
	defer m.mu.Unlock()

	snap := &memTx{store: m, balances: map[string]int{}, bookings: map[string]models.Booking{}}
	for id, c := range m.clients {
		snap.balances[id] = c.CreditBalance
	}
	for id, b := range m.bookings {
		snap.bookings[id] = *b
	}
	return snap, nil
}

func (m *memStore) GetProfessional(_ context.Context, id string) (*models.Professional, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.professionals[id]
	if !ok {
		return nil, response.ErrProfessionalNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) GetClient(_ context.Context, id string) (*models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[id]
	if !ok {
		return nil, response.ErrClientNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) AddCredits(_ context.Context, clientID string, amount int, paymentRef string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[clientID]
	if !ok {
		return 0, false, response.ErrClientNotFound
	}
	if owner, seen := m.purchases[paymentRef]; seen {
		if owner != clientID {
			return 0, false, response.ErrConflict
		}
		return c.CreditBalance, false, nil
	}
	m.purchases[paymentRef] = clientID
	c.CreditBalance += amount
	return c.CreditBalance, true, nil
}

func (m *memStore) UpsertAvailabilityWindow(_ context.Context, w *models.AvailabilityWindow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.professionals[w.ProfessionalID]; !ok {
		return response.ErrProfessionalNotFound
	}
	cp := *w
	cp.UpdatedAt = time.Now()
	m.windows[w.ProfessionalID] = &cp
	return nil
}

func (m *memStore) GetAvailabilityWindow(_ context.Context, professionalID string) (*models.AvailabilityWindow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.windows[professionalID]
	if !ok {
		return nil, response.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (m *memStore) DeleteAvailabilityWindow(_ context.Context, professionalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.windows[professionalID]; !ok {
		return response.ErrNotFound
	}
	delete(m.windows, professionalID)
	return nil
}

func (m *memStore) CreateTimeBlock(_ context.Context, block *models.TimeBlock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.professionals[block.ProfessionalID]; !ok {
		return response.ErrProfessionalNotFound
	}
	cp := *block
	m.blocks[block.ID] = &cp
	return nil
}

func (m *memStore) GetTimeBlock(_ context.Context, id string) (*models.TimeBlock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blocks[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memStore) ListTimeBlocks(_ context.Context, professionalID string, from, to *time.Time) ([]*models.TimeBlock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.TimeBlock
	for _, b := range m.blocks {
		if b.ProfessionalID != professionalID {
			continue
		}
		if to != nil && !b.Start.Before(*to) {
			continue
		}
		if from != nil && !b.End.After(*from) {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (m *memStore) UpdateTimeBlock(_ context.Context, block *models.TimeBlock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blocks[block.ID]; !ok {
		return response.ErrNotFound
	}
	cp := *block
	m.blocks[block.ID] = &cp
	return nil
}

func (m *memStore) DeleteTimeBlock(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blocks[id]; !ok {
		return response.ErrNotFound
	}
	delete(m.blocks, id)
	return nil
}

func (m *memStore) GetBooking(_ context.Context, id string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memStore) ListBookings(_ context.Context, professionalID, clientID, status *string) ([]*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Booking
	for _, b := range m.bookings {
		if professionalID != nil && b.ProfessionalID != *professionalID {
			continue
		}
		if clientID != nil && b.ClientID != *clientID {
			continue
		}
		if status != nil && string(b.Status) != *status {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (m *memStore) ListScheduledBookings(_ context.Context, professionalID string, from, to time.Time) ([]*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Booking
	for _, b := range m.bookings {
		if b.ProfessionalID == professionalID && b.Status == models.BookingScheduled &&
			schedule.Overlaps(b.StartTime, b.EndTime, from, to) {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) CompleteElapsedBookings(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, b := range m.bookings {
		if b.Status == models.BookingScheduled && b.EndTime.Before(now) {
			b.Status = models.BookingCompleted
			n++
		}
	}
	return n, nil
}

func (m *memStore) CompleteBooking(_ context.Context, id string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || b.Status != models.BookingScheduled || b.EndTime.After(now) {
		return false, nil
	}
	b.Status = models.BookingCompleted
	return true, nil
}

type memTx struct {
	store    *memStore
	balances map[string]int
	bookings map[string]models.Booking
	done     bool
}

func (t *memTx) LockProfessional(_ context.Context, professionalID string) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if _, ok := t.store.professionals[professionalID]; !ok {
		return response.ErrProfessionalNotFound
	}
	return nil
}

func (t *memTx) HasConflict(_ context.Context, professionalID string, start, end time.Time) (bool, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	return t.store.overlapsLocked(professionalID, start, end), nil
}

func (m *memStore) overlapsLocked(professionalID string, start, end time.Time) bool {
	for _, b := range m.bookings {
		if b.ProfessionalID == professionalID && b.Status == models.BookingScheduled &&
			schedule.Overlaps(start, end, b.StartTime, b.EndTime) {
			return true
		}
	}
	for _, b := range m.blocks {
		if b.ProfessionalID == professionalID && schedule.Overlaps(start, end, b.Start, b.End) {
			return true
		}
	}
	return false
}

func (t *memTx) DebitCredit(_ context.Context, clientID string) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	c, ok := t.store.clients[clientID]
	if !ok || c.CreditBalance < 1 {
		return response.ErrInsufficientCredits
	}
	c.CreditBalance--
	return nil
}

func (t *memTx) RefundCredit(_ context.Context, clientID string) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	c, ok := t.store.clients[clientID]
	if !ok {
		return response.ErrClientNotFound
	}
	c.CreditBalance++
	return nil
}

func (t *memTx) InsertBooking(_ context.Context, b *models.Booking) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.store.overlapsLocked(b.ProfessionalID, b.StartTime, b.EndTime) {
		return response.ErrSlotConflict
	}
	cp := *b
	cp.CreatedAt = time.Now()
	b.CreatedAt = cp.CreatedAt
	t.store.bookings[b.ID] = &cp
	return nil
}

func (t *memTx) GetBookingForUpdate(ctx context.Context, bookingID string) (*models.Booking, error) {
	return t.store.GetBooking(ctx, bookingID)
}

func (t *memTx) SetBookingStatus(_ context.Context, bookingID string, from, to models.BookingStatus) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	b, ok := t.store.bookings[bookingID]
	if !ok || b.Status != from {
		return response.ErrBookingNotScheduled
	}
	b.Status = to
	return nil
}

func (t *memTx) Commit() error {
	if t.done {
		return errors.New("tx already done")
	}
	t.done = true
	t.store.txMu.Unlock()
	return nil
}

func (t *memTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true

	t.store.mu.Lock()
	for id, bal := range t.balances {
		t.store.clients[id].CreditBalance = bal
	}
	t.store.bookings = map[string]*models.Booking{}
	for id, b := range t.bookings {
		cp := b
		t.store.bookings[id] = &cp
	}
	t.store.mu.Unlock()

	t.store.txMu.Unlock()
	return nil
}

type fakeVideo struct {
	err      error
	sessions atomic.Int32
	// afterCreate runs once a room exists, inside the booking transaction.
	afterCreate func()

	mu      sync.Mutex
	deleted []string
}

func (v *fakeVideo) CreateSession(_ context.Context) (string, error) {
	if v.err != nil {
		return "", v.err
	}
	n := v.sessions.Add(1)
	if v.afterCreate != nil {
		v.afterCreate()
	}
	return fmt.Sprintf("room-%d", n), nil
}

func (v *fakeVideo) DeleteSession(_ context.Context, sessionID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.deleted = append(v.deleted, sessionID)
	return nil
}

func (v *fakeVideo) IssueToken(sessionID, userID string, role video.Role, _ time.Time, _ map[string]string) (string, error) {
	return fmt.Sprintf("%s|%s|%s", sessionID, userID, role), nil
}

type scheduledTask struct {
	bookingID string
	at        time.Time
}

type fakeScheduler struct {
	mu    sync.Mutex
	tasks []scheduledTask
	err   error
}

func (f *fakeScheduler) ScheduleCompletion(_ context.Context, bookingID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, scheduledTask{bookingID: bookingID, at: at})
	return f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
