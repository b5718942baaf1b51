package record

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const recordCols = `id, patient_id, doctor_id, date, diagnosis, treatment,
	notes, department, attachments, created_at, updated_at`

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(
		&rec.ID, &rec.PatientID, &rec.DoctorID, &rec.Date, &rec.Diagnosis,
		&rec.Treatment, &rec.Notes, &rec.Department, &rec.Attachments,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *PostgresRepository) Create(ctx context.Context, rec *Record) error {
	query := `
		INSERT INTO medical_records (patient_id, doctor_id, date, diagnosis, treatment, notes, department, attachments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		rec.PatientID, rec.DoctorID, rec.Date, rec.Diagnosis,
		rec.Treatment, rec.Notes, rec.Department, rec.Attachments,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert medical record: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	query := fmt.Sprintf(`SELECT %s FROM medical_records WHERE id = $1`, recordCols)
	rec, err := scanRecord(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get medical record: %w", err)
	}
	return rec, nil
}

func (r *PostgresRepository) Update(ctx context.Context, rec *Record) error {
	query := `
		UPDATE medical_records SET
			diagnosis = $2, treatment = $3, notes = $4, department = $5,
			attachments = $6, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		rec.ID, rec.Diagnosis, rec.Treatment, rec.Notes, rec.Department, rec.Attachments,
	).Scan(&rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update medical record: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM medical_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete medical record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, f Filter, limit, offset int) ([]*Record, int, error) {
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

	clause := ""
	if len(where) > 0 {
		clause = "WHERE " + where[0]
		for _, w := range where[1:] {
			clause += " AND " + w
		}
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM medical_records %s`, clause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count medical records: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM medical_records %s ORDER BY date DESC LIMIT $%d OFFSET $%d`,
		recordCols, clause, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list medical records: %w", err)
	}
	defer rows.Close()

	records := []*Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan medical record: %w", err)
		}
		records = append(records, rec)
	}
	return records, total, rows.Err()
}
