package prescription

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const prescriptionCols = `id, patient_id, doctor_id, date, medications,
	notes, refills, created_at, updated_at`

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func scanPrescription(row pgx.Row) (*Prescription, error) {
	var p Prescription
	err := row.Scan(
		&p.ID, &p.PatientID, &p.DoctorID, &p.Date, &p.Medications,
		&p.Notes, &p.Refills, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p *Prescription) error {
	query := `
		INSERT INTO prescriptions (patient_id, doctor_id, date, medications, notes, refills)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		p.PatientID, p.DoctorID, p.Date, p.Medications, p.Notes, p.Refills,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert prescription: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	query := fmt.Sprintf(`SELECT %s FROM prescriptions WHERE id = $1`, prescriptionCols)
	p, err := scanPrescription(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get prescription: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, p *Prescription) error {
	query := `
		UPDATE prescriptions SET
			medications = $2, notes = $3, refills = $4, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query, p.ID, p.Medications, p.Notes, p.Refills).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update prescription: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM prescriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete prescription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, f Filter, limit, offset int) ([]*Prescription, int, error) {
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
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM prescriptions %s`, clause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count prescriptions: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM prescriptions %s ORDER BY date DESC LIMIT $%d OFFSET $%d`,
		prescriptionCols, clause, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list prescriptions: %w", err)
	}
	defer rows.Close()

	prescriptions := []*Prescription{}
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan prescription: %w", err)
		}
		prescriptions = append(prescriptions, p)
	}
	return prescriptions, total, rows.Err()
}
