package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const billCols = `id, patient_id, amount, status, due_date, payment_method,
	paid_at, created_at, updated_at`

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func scanBill(row pgx.Row) (*Bill, error) {
	var b Bill
	err := row.Scan(
		&b.ID, &b.PatientID, &b.Amount, &b.Status, &b.DueDate,
		&b.PaymentMethod, &b.PaidAt, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts the bill and its line items in one transaction.
func (r *PostgresRepository) Create(ctx context.Context, b *Bill) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO bills (patient_id, amount, status, due_date, payment_method, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err = tx.QueryRow(ctx, query,
		b.PatientID, b.Amount, b.Status, b.DueDate, b.PaymentMethod, b.PaidAt,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert bill: %w", err)
	}

	if err := insertItems(ctx, tx, b); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Bill, error) {
	query := fmt.Sprintf(`SELECT %s FROM bills WHERE id = $1`, billCols)
	b, err := scanBill(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get bill: %w", err)
	}
	if err := r.loadItems(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Update rewrites the bill row and replaces its line items.
func (r *PostgresRepository) Update(ctx context.Context, b *Bill) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE bills SET
			amount = $2, status = $3, due_date = $4, payment_method = $5,
			paid_at = $6, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err = tx.QueryRow(ctx, query,
		b.ID, b.Amount, b.Status, b.DueDate, b.PaymentMethod, b.PaidAt,
	).Scan(&b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update bill: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM bill_items WHERE bill_id = $1`, b.ID); err != nil {
		return fmt.Errorf("clear bill items: %w", err)
	}
	if err := insertItems(ctx, tx, b); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// bill_items rows go with the bill via ON DELETE CASCADE.
	tag, err := r.pool.Exec(ctx, `DELETE FROM bills WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, f Filter, limit, offset int) ([]*Bill, int, error) {
	where := []string{}
	args := []any{}

	if f.PatientID != uuid.Nil {
		args = append(args, f.PatientID)
		where = append(where, fmt.Sprintf("patient_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	clause := ""
	if len(where) > 0 {
		clause = "WHERE " + where[0]
		for _, w := range where[1:] {
			clause += " AND " + w
		}
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM bills %s`, clause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count bills: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM bills %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		billCols, clause, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	bills := []*Bill{}
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan bill: %w", err)
		}
		bills = append(bills, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for _, b := range bills {
		if err := r.loadItems(ctx, b); err != nil {
			return nil, 0, err
		}
	}
	return bills, total, nil
}

func (r *PostgresRepository) loadItems(ctx context.Context, b *Bill) error {
	query := `
		SELECT id, bill_id, description, quantity, unit_price, line_total
		FROM bill_items WHERE bill_id = $1 ORDER BY id`

	rows, err := r.pool.Query(ctx, query, b.ID)
	if err != nil {
		return fmt.Errorf("load bill items: %w", err)
	}
	defer rows.Close()

	b.Items = []LineItem{}
	for rows.Next() {
		var item LineItem
		if err := rows.Scan(&item.ID, &item.BillID, &item.Description,
			&item.Quantity, &item.UnitPrice, &item.LineTotal); err != nil {
			return fmt.Errorf("scan bill item: %w", err)
		}
		b.Items = append(b.Items, item)
	}
	return rows.Err()
}

func insertItems(ctx context.Context, tx pgx.Tx, b *Bill) error {
	for i := range b.Items {
		item := &b.Items[i]
		item.BillID = b.ID
		err := tx.QueryRow(ctx, `
			INSERT INTO bill_items (bill_id, description, quantity, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			item.BillID, item.Description, item.Quantity, item.UnitPrice, item.LineTotal,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("insert bill item: %w", err)
		}
	}
	return nil
}
