package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const appointmentCols = `id, patient_id, doctor_id, date, start_time, duration_minutes,
	department, type, reason, status, created_at, updated_at`

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID, &a.PatientID, &a.DoctorID, &a.Date, &a.StartTime, &a.DurationMinutes,
		&a.Department, &a.Type, &a.Reason, &a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a booking. The partial unique index on
// (doctor_id, date, start_time) WHERE status <> 'cancelled' is the real
// double-booking guard; a violation surfaces as ErrSlotTaken.
func (r *PostgresRepository) Create(ctx context.Context, a *Appointment) error {
	query := `
		INSERT INTO appointments (patient_id, doctor_id, date, start_time, duration_minutes, department, type, reason, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		a.PatientID, a.DoctorID, a.Date, a.StartTime, a.DurationMinutes,
		a.Department, a.Type, a.Reason, a.Status,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrSlotTaken
		}
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	query := fmt.Sprintf(`SELECT %s FROM appointments WHERE id = $1`, appointmentCols)
	a, err := scanAppointment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Appointment, error) {
	query := fmt.Sprintf(`
		UPDATE appointments SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING %s`, appointmentCols)

	a, err := scanAppointment(r.pool.QueryRow(ctx, query, id, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update appointment status: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	where := []string{}
	args := []any{}

	if f.PatientID != uuid.Nil {
		args = append(args, f.PatientID)
		where = append(where, fmt.Sprintf("patient_id = $%d", len(args)))
	}
	if f.DoctorID != uuid.Nil {
		args = append(args, f.DoctorID)
		where = append(where, fmt.Sprintf("doctor_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if !f.Date.IsZero() {
		args = append(args, f.Date)
		where = append(where, fmt.Sprintf("date = $%d", len(args)))
	}

	clause := ""
	if len(where) > 0 {
		clause = "WHERE " + where[0]
		for _, w := range where[1:] {
			clause += " AND " + w
		}
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM appointments %s`, clause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM appointments %s ORDER BY date DESC, start_time DESC LIMIT $%d OFFSET $%d`,
		appointmentCols, clause, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	appts := []*Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan appointment: %w", err)
		}
		appts = append(appts, a)
	}
	return appts, total, rows.Err()
}

func (r *PostgresRepository) BookedTimes(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]string, error) {
	query := `
		SELECT start_time FROM appointments
		WHERE doctor_id = $1 AND date = $2 AND status <> $3
		ORDER BY start_time`

	rows, err := r.pool.Query(ctx, query, doctorID, date, StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("booked times: %w", err)
	}
	defer rows.Close()

	times := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan booked time: %w", err)
		}
		times = append(times, t)
	}
	return times, rows.Err()
}
