package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"tender-backend/internal/storage"
)

const orderColumns = `
	o.id, o.contract_number, o.complect_name, o.customer_id, o.owner_id,
	o.status, o.type, o.parameters, o.file_path, o.documentation_sheet,
	o.created_at, o.updated_at,
	c.id, c.name, c.created_at, c.updated_at,
	u.id, u.username, u.email, u.phone, u.about, u.role, u.created_at, u.updated_at`

const orderFrom = `
	FROM orders o
	JOIN customers c ON c.id = o.customer_id
	JOIN users u ON u.id = o.owner_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*storage.Order, error) {
	var (
		o        storage.Order
		c        storage.Customer
		u        storage.User
		filePath sql.NullString
	)

	err := row.Scan(
		&o.ID, &o.ContractNumber, &o.ComplectName, &o.CustomerID, &o.OwnerID,
		&o.Status, &o.Type, &o.Parameters, &filePath, &o.DocumentationSheet,
		&o.CreatedAt, &o.UpdatedAt,
		&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt,
		&u.ID, &u.Username, &u.Email, &u.Phone, &u.About, &u.Role, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if filePath.Valid {
		o.FilePath = &filePath.String
	}
	o.Customer = &c
	o.Owner = &u

	return &o, nil
}

func (s *Storage) CreateOrder(ctx context.Context, o *storage.Order) (int64, error) {
	const op = "storage.mysql.CreateOrder"

	stmt := `
		INSERT INTO orders (contract_number, complect_name, customer_id, owner_id,
			status, type, parameters, file_path, documentation_sheet)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := s.db.ExecContext(ctx, stmt,
		o.ContractNumber, o.ComplectName, o.CustomerID, o.OwnerID,
		o.Status, o.Type, o.Parameters, o.FilePath, o.DocumentationSheet,
	)
	if err != nil {
		if mysqlErrNumber(err) == errNoReferencedRow {
			return 0, fmt.Errorf("%s: %w", op, referencedNotFound(err))
		}
		return 0, fmt.Errorf("%s: ошибка создания заказа: %w", op, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetOrder(ctx context.Context, id int64) (*storage.Order, error) {
	const op = "storage.mysql.GetOrder"

	row := s.db.QueryRowContext(ctx, "SELECT "+orderColumns+orderFrom+" WHERE o.id = ?", id)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrOrderNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return o, nil
}

func (s *Storage) ListOrders(ctx context.Context, filter storage.OrderFilter) ([]*storage.Order, error) {
	const op = "storage.mysql.ListOrders"

	var (
		where []string
		args  []any
	)
	if !filter.From.IsZero() {
		where = append(where, "o.created_at >= ?")
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		where = append(where, "o.created_at < ?")
		args = append(args, filter.To)
	}
	if filter.Status != "" {
		where = append(where, "o.status = ?")
		args = append(args, filter.Status)
	}
	if filter.Type != "" {
		where = append(where, "o.type = ?")
		args = append(args, filter.Type)
	}

	stmt := "SELECT " + orderColumns + orderFrom
	if len(where) > 0 {
		stmt += " WHERE " + strings.Join(where, " AND ")
	}
	stmt += " ORDER BY o.id"

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: ошибка получения заказов: %w", op, err)
	}
	defer rows.Close()

	orders := []*storage.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: ошибка сканирования строк: %w", op, err)
	}

	return orders, nil
}

// UpdateOrder writes every mutable column of o in one statement,
// including the parameter bag and the artifact path.
func (s *Storage) UpdateOrder(ctx context.Context, o *storage.Order) error {
	const op = "storage.mysql.UpdateOrder"

	stmt := `
		UPDATE orders SET
			contract_number = ?, complect_name = ?, customer_id = ?, owner_id = ?,
			status = ?, type = ?, parameters = ?, file_path = ?, documentation_sheet = ?
		WHERE id = ?`

	res, err := s.db.ExecContext(ctx, stmt,
		o.ContractNumber, o.ComplectName, o.CustomerID, o.OwnerID,
		o.Status, o.Type, o.Parameters, o.FilePath, o.DocumentationSheet,
		o.ID,
	)
	if err != nil {
		if mysqlErrNumber(err) == errNoReferencedRow {
			return fmt.Errorf("%s: %w", op, referencedNotFound(err))
		}
		return fmt.Errorf("%s: ошибка обновления заказа: %w", op, err)
	}

	return expectOneRow(op, res, storage.ErrOrderNotFound)
}

func (s *Storage) DeleteOrder(ctx context.Context, id int64) error {
	const op = "storage.mysql.DeleteOrder"

	res, err := s.db.ExecContext(ctx, "DELETE FROM orders WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return expectOneRow(op, res, storage.ErrOrderNotFound)
}

func expectOneRow(op string, res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, notFound)
	}
	return nil
}

// referencedNotFound разбирает, на какой внешний ключ упала вставка.
func referencedNotFound(err error) error {
	if strings.Contains(err.Error(), "fk_orders_owner") {
		return storage.ErrUserNotFound
	}
	return storage.ErrCustomerNotFound
}
