package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountCols = `id, name, email, password_hash, role,
	specialization, department, available_days, available_from, available_to,
	birth_date, gender, blood_group, medical_history,
	created_at, updated_at`

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(
		&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Role,
		&a.Specialization, &a.Department, &a.AvailableDays, &a.AvailableFrom, &a.AvailableTo,
		&a.BirthDate, &a.Gender, &a.BloodGroup, &a.MedicalHistory,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PostgresRepository) Create(ctx context.Context, a *Account) error {
	query := `
		INSERT INTO accounts (name, email, password_hash, role,
			specialization, department, available_days, available_from, available_to,
			birth_date, gender, blood_group, medical_history)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		a.Name, a.Email, a.PasswordHash, a.Role,
		a.Specialization, a.Department, a.AvailableDays, a.AvailableFrom, a.AvailableTo,
		a.BirthDate, a.Gender, a.BloodGroup, a.MedicalHistory,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE id = $1`, accountCols)
	a, err := scanAccount(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE lower(email) = lower($1)`, accountCols)
	a, err := scanAccount(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) Update(ctx context.Context, a *Account) error {
	query := `
		UPDATE accounts SET
			name = $2, email = $3, password_hash = $4,
			specialization = $5, department = $6,
			available_days = $7, available_from = $8, available_to = $9,
			birth_date = $10, gender = $11, blood_group = $12, medical_history = $13,
			updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		a.ID, a.Name, a.Email, a.PasswordHash,
		a.Specialization, a.Department,
		a.AvailableDays, a.AvailableFrom, a.AvailableTo,
		a.BirthDate, a.Gender, a.BloodGroup, a.MedicalHistory,
	).Scan(&a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEmailTaken
		}
		return fmt.Errorf("update account: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, role string, limit, offset int) ([]*Account, int, error) {
	where := ""
	args := []any{}
	if role != "" {
		where = "WHERE role = $1"
		args = append(args, role)
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM accounts %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM accounts %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		accountCols, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []*Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, total, rows.Err()
}
