package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tender-backend/internal/storage"
)

func (s *Storage) CreateCustomer(ctx context.Context, name string) (*storage.Customer, error) {
	const op = "storage.mysql.CreateCustomer"

	res, err := s.db.ExecContext(ctx, "INSERT INTO customers (name) VALUES (?)", name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetCustomer(ctx, id)
}

func (s *Storage) GetCustomer(ctx context.Context, id int64) (*storage.Customer, error) {
	const op = "storage.mysql.GetCustomer"

	var c storage.Customer
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_at, updated_at FROM customers WHERE id = ?", id,
	).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrCustomerNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &c, nil
}

func (s *Storage) ListCustomers(ctx context.Context) ([]storage.Customer, error) {
	const op = "storage.mysql.ListCustomers"

	rows, err := s.db.QueryContext(ctx, "SELECT id, name, created_at, updated_at FROM customers ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	customers := []storage.Customer{}
	for rows.Next() {
		var c storage.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		customers = append(customers, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return customers, nil
}

func (s *Storage) UpdateCustomer(ctx context.Context, id int64, name string) (*storage.Customer, error) {
	const op = "storage.mysql.UpdateCustomer"

	res, err := s.db.ExecContext(ctx, "UPDATE customers SET name = ? WHERE id = ?", name, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := expectOneRow(op, res, storage.ErrCustomerNotFound); err != nil {
		return nil, err
	}

	return s.GetCustomer(ctx, id)
}

func (s *Storage) DeleteCustomer(ctx context.Context, id int64) error {
	const op = "storage.mysql.DeleteCustomer"

	res, err := s.db.ExecContext(ctx, "DELETE FROM customers WHERE id = ?", id)
	if err != nil {
		if mysqlErrNumber(err) == errRowIsReferenced {
			return fmt.Errorf("%s: %w", op, storage.ErrCustomerInUse)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return expectOneRow(op, res, storage.ErrCustomerNotFound)
}
