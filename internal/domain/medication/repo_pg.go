package medication

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const medicationCols = `id, name, dosage_options, frequency_options, route_options,
	price, stock_quantity, manufacturer, description, created_at, updated_at`

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func scanMedication(row pgx.Row) (*Medication, error) {
	var m Medication
	err := row.Scan(
		&m.ID, &m.Name, &m.DosageOptions, &m.FrequencyOptions, &m.RouteOptions,
		&m.Price, &m.StockQuantity, &m.Manufacturer, &m.Description,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.deriveStock()
	return &m, nil
}

func (r *PostgresRepository) Create(ctx context.Context, m *Medication) error {
	query := `
		INSERT INTO medications (name, dosage_options, frequency_options, route_options,
			price, stock_quantity, manufacturer, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		m.Name, m.DosageOptions, m.FrequencyOptions, m.RouteOptions,
		m.Price, m.StockQuantity, m.Manufacturer, m.Description,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrNameTaken
		}
		return fmt.Errorf("insert medication: %w", err)
	}
	m.deriveStock()
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Medication, error) {
	query := fmt.Sprintf(`SELECT %s FROM medications WHERE id = $1`, medicationCols)
	m, err := scanMedication(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get medication: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) Update(ctx context.Context, m *Medication) error {
	query := `
		UPDATE medications SET
			name = $2, dosage_options = $3, frequency_options = $4, route_options = $5,
			price = $6, stock_quantity = $7, manufacturer = $8, description = $9,
			updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		m.ID, m.Name, m.DosageOptions, m.FrequencyOptions, m.RouteOptions,
		m.Price, m.StockQuantity, m.Manufacturer, m.Description,
	).Scan(&m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrNameTaken
		}
		return fmt.Errorf("update medication: %w", err)
	}
	m.deriveStock()
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM medications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete medication: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, search string, limit, offset int) ([]*Medication, int, error) {
	where := ""
	args := []any{}
	if search != "" {
		where = "WHERE name ILIKE $1"
		args = append(args, "%"+search+"%")
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM medications %s`, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count medications: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM medications %s ORDER BY name LIMIT $%d OFFSET $%d`,
		medicationCols, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list medications: %w", err)
	}
	defer rows.Close()

	meds := []*Medication{}
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan medication: %w", err)
		}
		meds = append(meds, m)
	}
	return meds, total, rows.Err()
}
