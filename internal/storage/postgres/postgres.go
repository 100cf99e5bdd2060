package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"booking-service/internal/models"
	"booking-service/internal/schedule"
	"booking-service/internal/storage"
	"booking-service/pkg/response"

	"github.com/lib/pq"
)

const (
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
	codeExclusionViolation  = "23P01"
)

type Storage struct {
	db *sql.DB
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

// NewWithDB wraps an already opened handle.
func NewWithDB(db *sql.DB) *Storage {
	return &Storage{db: db}
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

func (s *Storage) BeginTx(ctx context.Context) (storage.Tx, error) {
	const op = "storage.postgres.BeginTx"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Tx{tx: tx}, nil
}

// #### accounts ####

func (s *Storage) GetProfessional(ctx context.Context, id string) (*models.Professional, error) {
	const op = "storage.postgres.GetProfessional"

	var p models.Professional

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, status FROM professionals WHERE id=$1`, id).
		Scan(&p.ID, &p.Name, &p.Email, &p.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrProfessionalNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &p, nil
}

func (s *Storage) GetClient(ctx context.Context, id string) (*models.Client, error) {
	const op = "storage.postgres.GetClient"

	var c models.Client

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, credit_balance FROM clients WHERE id=$1`, id).
		Scan(&c.ID, &c.Name, &c.Email, &c.CreditBalance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrClientNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &c, nil
}

// AddCredits records a confirmed purchase and credits the client once per
// payment reference. applied is false when the reference was already seen.
func (s *Storage) AddCredits(ctx context.Context, clientID string, amount int, paymentRef string) (balance int, applied bool, err error) {
	const op = "storage.postgres.AddCredits"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("%s: begin tx: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO credit_purchases (payment_ref, client_id, amount)
		VALUES ($1, $2, $3)
		ON CONFLICT (payment_ref) DO NOTHING`,
		paymentRef, clientID, amount,
	)
	if err != nil {
		if pqCode(err) == codeForeignKeyViolation {
			return 0, false, fmt.Errorf("%s: %w", op, response.ErrClientNotFound)
		}
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}

	if n == 0 {
		// compared as uuid so the textual form of clientID does not matter
		var sameOwner bool
		err := tx.QueryRowContext(ctx,
			`SELECT client_id = $2::uuid FROM credit_purchases WHERE payment_ref=$1`,
			paymentRef, clientID).Scan(&sameOwner)
		if err != nil {
			return 0, false, fmt.Errorf("%s: %w", op, err)
		}
		if !sameOwner {
			return 0, false, fmt.Errorf("%s: payment_ref belongs to another client: %w", op, response.ErrConflict)
		}

		err = tx.QueryRowContext(ctx,
			`SELECT credit_balance FROM clients WHERE id=$1`, clientID).Scan(&balance)
		if err != nil {
			return 0, false, fmt.Errorf("%s: %w", op, err)
		}

		return balance, false, nil
	}

	err = tx.QueryRowContext(ctx,
		`UPDATE clients SET credit_balance = credit_balance + $2
		WHERE id=$1
		RETURNING credit_balance`,
		clientID, amount,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, fmt.Errorf("%s: %w", op, response.ErrClientNotFound)
		}
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("%s: commit: %w", op, err)
	}

	return balance, true, nil
}

// #### availability windows ####

func (s *Storage) UpsertAvailabilityWindow(ctx context.Context, w *models.AvailabilityWindow) error {
	const op = "storage.postgres.UpsertAvailabilityWindow"

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO availability_windows
		(professional_id, daily_start_time, daily_end_time, status, updated_at)
		VALUES ($1, $2::time, $3::time, $4, now())
		ON CONFLICT (professional_id)
		DO UPDATE
		SET daily_start_time = EXCLUDED.daily_start_time,
			daily_end_time = EXCLUDED.daily_end_time,
			status = EXCLUDED.status,
			updated_at = now()`,
		w.ProfessionalID,
		clockArg(w.DailyStart),
		clockArg(w.DailyEnd),
		string(w.Status),
	)
	if err != nil {
		if pqCode(err) == codeForeignKeyViolation {
			return fmt.Errorf("%s: %w", op, response.ErrProfessionalNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) GetAvailabilityWindow(ctx context.Context, professionalID string) (*models.AvailabilityWindow, error) {
	const op = "storage.postgres.GetAvailabilityWindow"

	var (
		w          models.AvailabilityWindow
		start, end string
	)

	err := s.db.QueryRowContext(ctx,
		`SELECT professional_id,
			to_char(daily_start_time, 'HH24:MI:SS'),
			to_char(daily_end_time, 'HH24:MI:SS'),
			status, updated_at
		FROM availability_windows WHERE professional_id=$1`, professionalID).
		Scan(&w.ProfessionalID, &start, &end, &w.Status, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if w.DailyStart, err = schedule.ParseClock(start); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if w.DailyEnd, err = schedule.ParseClock(end); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &w, nil
}

func (s *Storage) DeleteAvailabilityWindow(ctx context.Context, professionalID string) error {
	const op = "storage.postgres.DeleteAvailabilityWindow"

	res, err := s.db.ExecContext(ctx, `DELETE FROM availability_windows WHERE professional_id=$1`, professionalID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return expectAffected(op, res, response.ErrNotFound)
}

// #### time blocks ####

func (s *Storage) CreateTimeBlock(ctx context.Context, block *models.TimeBlock) error {
	const op = "storage.postgres.CreateTimeBlock"

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO time_blocks (id, professional_id, start_time, end_time, reason, type)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		block.ID, block.ProfessionalID, block.Start, block.End, block.Reason, string(block.Type),
	)
	if err != nil {
		if pqCode(err) == codeForeignKeyViolation {
			return fmt.Errorf("%s: %w", op, response.ErrProfessionalNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) GetTimeBlock(ctx context.Context, id string) (*models.TimeBlock, error) {
	const op = "storage.postgres.GetTimeBlock"

	var b models.TimeBlock

	err := s.db.QueryRowContext(ctx,
		`SELECT id, professional_id, start_time, end_time, reason, type
		FROM time_blocks WHERE id=$1`, id).
		Scan(&b.ID, &b.ProfessionalID, &b.Start, &b.End, &b.Reason, &b.Type)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &b, nil
}

// ListTimeBlocks returns the professional's blocks intersecting [from, to);
// nil bounds are open.
func (s *Storage) ListTimeBlocks(ctx context.Context, professionalID string, from, to *time.Time) ([]*models.TimeBlock, error) {
	const op = "storage.postgres.ListTimeBlocks"

	query := `SELECT id, professional_id, start_time, end_time, reason, type
		FROM time_blocks WHERE professional_id=$1`
	args := []any{professionalID}

	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND start_time < $%d", len(args))
	}
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND end_time > $%d", len(args))
	}
	query += " ORDER BY start_time"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var blocks []*models.TimeBlock
	for rows.Next() {
		var b models.TimeBlock
		if err := rows.Scan(&b.ID, &b.ProfessionalID, &b.Start, &b.End, &b.Reason, &b.Type); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		blocks = append(blocks, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return blocks, nil
}

func (s *Storage) UpdateTimeBlock(ctx context.Context, block *models.TimeBlock) error {
	const op = "storage.postgres.UpdateTimeBlock"

	res, err := s.db.ExecContext(ctx,
		`UPDATE time_blocks
		SET start_time=$2, end_time=$3, reason=$4, type=$5
		WHERE id=$1`,
		block.ID, block.Start, block.End, block.Reason, string(block.Type),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return expectAffected(op, res, response.ErrNotFound)
}

func (s *Storage) DeleteTimeBlock(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteTimeBlock"

	res, err := s.db.ExecContext(ctx, `DELETE FROM time_blocks WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return expectAffected(op, res, response.ErrNotFound)
}

// #### bookings ####

const bookingColumns = `id, professional_id, client_id, start_time, end_time, status, session_id,
	client_name, client_phone, client_age, client_gender, note, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var b models.Booking

	err := row.Scan(
		&b.ID,
		&b.ProfessionalID,
		&b.ClientID,
		&b.StartTime,
		&b.EndTime,
		&b.Status,
		&b.SessionID,
		&b.ClientName,
		&b.ClientPhone,
		&b.ClientAge,
		&b.ClientGender,
		&b.Note,
		&b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

func (s *Storage) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	const op = "storage.postgres.GetBooking"

	b, err := scanBooking(s.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return b, nil
}

func (s *Storage) ListBookings(ctx context.Context, professionalID, clientID, status *string) ([]*models.Booking, error) {
	const op = "storage.postgres.ListBookings"

	var (
		conds []string
		args  []any
	)

	if professionalID != nil {
		args = append(args, *professionalID)
		conds = append(conds, fmt.Sprintf("professional_id=$%d", len(args)))
	}
	if clientID != nil {
		args = append(args, *clientID)
		conds = append(conds, fmt.Sprintf("client_id=$%d", len(args)))
	}
	if status != nil {
		args = append(args, *status)
		conds = append(conds, fmt.Sprintf("status=$%d", len(args)))
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY start_time"

	return s.queryBookings(ctx, op, query, args...)
}

// ListScheduledBookings returns the professional's SCHEDULED bookings
// intersecting [from, to) in one query.
func (s *Storage) ListScheduledBookings(ctx context.Context, professionalID string, from, to time.Time) ([]*models.Booking, error) {
	const op = "storage.postgres.ListScheduledBookings"

	return s.queryBookings(ctx, op,
		`SELECT `+bookingColumns+` FROM bookings
		WHERE professional_id=$1
		AND status='SCHEDULED'
		AND start_time < $3
		AND end_time > $2
		ORDER BY start_time`,
		professionalID, from, to,
	)
}

func (s *Storage) queryBookings(ctx context.Context, op, query string, args ...any) ([]*models.Booking, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return bookings, nil
}

// CompleteElapsedBookings flips every SCHEDULED booking that ended before now.
func (s *Storage) CompleteElapsedBookings(ctx context.Context, now time.Time) (int64, error) {
	const op = "storage.postgres.CompleteElapsedBookings"

	res, err := s.db.ExecContext(ctx,
		`UPDATE bookings SET status='COMPLETED'
		WHERE status='SCHEDULED' AND end_time < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return n, nil
}

// CompleteBooking flips a single booking if it is still SCHEDULED and has ended.
func (s *Storage) CompleteBooking(ctx context.Context, id string, now time.Time) (bool, error) {
	const op = "storage.postgres.CompleteBooking"

	res, err := s.db.ExecContext(ctx,
		`UPDATE bookings SET status='COMPLETED'
		WHERE id=$1 AND status='SCHEDULED' AND end_time <= $2`, id, now)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return n > 0, nil
}

// #### booking transaction ####

type Tx struct {
	tx *sql.Tx
}

func (t *Tx) LockProfessional(ctx context.Context, professionalID string) error {
	const op = "storage.postgres.Tx.LockProfessional"

	var id string
	err := t.tx.QueryRowContext(ctx,
		`SELECT id FROM professionals WHERE id=$1 FOR UPDATE`, professionalID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: %w", op, response.ErrProfessionalNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (t *Tx) HasConflict(ctx context.Context, professionalID string, start, end time.Time) (bool, error) {
	const op = "storage.postgres.Tx.HasConflict"

	var conflict bool
	err := t.tx.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE professional_id=$1 AND status='SCHEDULED'
			AND start_time < $3 AND end_time > $2
		) OR EXISTS (
			SELECT 1 FROM time_blocks
			WHERE professional_id=$1
			AND start_time < $3 AND end_time > $2
		)`,
		professionalID, start, end,
	).Scan(&conflict)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return conflict, nil
}

func (t *Tx) DebitCredit(ctx context.Context, clientID string) error {
	const op = "storage.postgres.Tx.DebitCredit"

	res, err := t.tx.ExecContext(ctx,
		`UPDATE clients SET credit_balance = credit_balance - 1
		WHERE id=$1 AND credit_balance >= 1`, clientID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return expectAffected(op, res, response.ErrInsufficientCredits)
}

func (t *Tx) RefundCredit(ctx context.Context, clientID string) error {
	const op = "storage.postgres.Tx.RefundCredit"

	res, err := t.tx.ExecContext(ctx,
		`UPDATE clients SET credit_balance = credit_balance + 1 WHERE id=$1`, clientID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return expectAffected(op, res, response.ErrClientNotFound)
}

func (t *Tx) InsertBooking(ctx context.Context, b *models.Booking) error {
	const op = "storage.postgres.Tx.InsertBooking"

	err := t.tx.QueryRowContext(ctx,
		`INSERT INTO bookings
		(id, professional_id, client_id, start_time, end_time, status, session_id,
		client_name, client_phone, client_age, client_gender, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at`,
		b.ID,
		b.ProfessionalID,
		b.ClientID,
		b.StartTime,
		b.EndTime,
		string(b.Status),
		b.SessionID,
		b.ClientName,
		b.ClientPhone,
		b.ClientAge,
		b.ClientGender,
		b.Note,
	).Scan(&b.CreatedAt)
	if err != nil {
		switch pqCode(err) {
		case codeExclusionViolation, codeUniqueViolation:
			return fmt.Errorf("%s: %w", op, response.ErrSlotConflict)
		case codeForeignKeyViolation:
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (t *Tx) GetBookingForUpdate(ctx context.Context, bookingID string) (*models.Booking, error) {
	const op = "storage.postgres.Tx.GetBookingForUpdate"

	b, err := scanBooking(t.tx.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id=$1 FOR UPDATE`, bookingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return b, nil
}

func (t *Tx) SetBookingStatus(ctx context.Context, bookingID string, from, to models.BookingStatus) error {
	const op = "storage.postgres.Tx.SetBookingStatus"

	res, err := t.tx.ExecContext(ctx,
		`UPDATE bookings SET status=$3 WHERE id=$1 AND status=$2`,
		bookingID, string(from), string(to))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if from == models.BookingScheduled {
		return expectAffected(op, res, response.ErrBookingNotScheduled)
	}
	return expectAffected(op, res, response.ErrConflict)
}

func (t *Tx) Commit() error {
	return t.tx.Commit()
}

func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

// #### helpers ####

func expectAffected(op string, res sql.Result, none error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, none)
	}
	return nil
}

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func clockArg(d time.Duration) string {
	return schedule.FormatClockSeconds(d)
}
