package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sergeybelanov/shop/internal/domain"
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

const orderColumns = `id, customer_id, order_number,
	customer_name, customer_email, customer_phone,
	ship_street, ship_city, ship_state, ship_zip_code, ship_country,
	status, cancellation_reason, version, created_at, updated_at`

func (r *orderRepository) Create(order domain.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	name, email, phone := customerInfoColumns(order.CustomerInfo)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`,
		order.ID, order.CustomerID, order.OrderNumber,
		name, email, phone,
		order.ShippingAddress.Street, order.ShippingAddress.City,
		order.ShippingAddress.State, order.ShippingAddress.ZipCode,
		order.ShippingAddress.Country,
		string(order.Status), order.CancellationReason,
		order.Version, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: order %s", domain.ErrVersionConflict, order.ID)
		}
		return fmt.Errorf("insert order: %w", err)
	}

	if err = insertItems(ctx, tx, order.ID, order.Items); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create order: %w", err)
	}
	return nil
}

func (r *orderRepository) Get(id domain.OrderID) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
	`, id)
	order, err := scanOrder(row)
	if err != nil {
		return domain.Order{}, err
	}

	items, err := r.loadItems(ctx, order.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Items = items
	return order, nil
}

func (r *orderRepository) List() ([]domain.Order, error) {
	return r.list(`SELECT ` + orderColumns + ` FROM orders ORDER BY created_at, id`)
}

func (r *orderRepository) ListByCustomer(customerID domain.CustomerID, limit int) ([]domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC, id DESC
	`
	if limit > 0 {
		return r.list(query+" LIMIT $2", customerID, limit)
	}
	return r.list(query, customerID)
}

func (r *orderRepository) ListByStatus(status domain.OrderStatus) ([]domain.Order, error) {
	return r.list(`
		SELECT `+orderColumns+`
		FROM orders
		WHERE status = $1
		ORDER BY created_at, id
	`, string(status))
}

func (r *orderRepository) Exists(id domain.OrderID) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM orders WHERE id = $1`, id).Scan(&one)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("check order exists: %w", err)
}

func (r *orderRepository) Save(order domain.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	name, email, phone := customerInfoColumns(order.CustomerInfo)
	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET order_number = $1,
		    customer_name = $2,
		    customer_email = $3,
		    customer_phone = $4,
		    ship_street = $5,
		    ship_city = $6,
		    ship_state = $7,
		    ship_zip_code = $8,
		    ship_country = $9,
		    status = $10,
		    cancellation_reason = $11,
		    version = version + 1,
		    updated_at = $12
		WHERE id = $13
		  AND version = $14
	`,
		order.OrderNumber, name, email, phone,
		order.ShippingAddress.Street, order.ShippingAddress.City,
		order.ShippingAddress.State, order.ShippingAddress.ZipCode,
		order.ShippingAddress.Country,
		string(order.Status), order.CancellationReason,
		order.UpdatedAt, order.ID, order.Version,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		var exists bool
		exists, err = r.existsTx(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		if !exists {
			err = domain.ErrOrderNotFound
			return err
		}
		err = fmt.Errorf("%w: order %s version %d", domain.ErrVersionConflict, order.ID, order.Version)
		return err
	}

	// Позиции переписываются целиком: их немного, а diff не стоит сложности.
	if _, err = tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, order.ID); err != nil {
		return fmt.Errorf("clear order items: %w", err)
	}
	if err = insertItems(ctx, tx, order.ID, order.Items); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save order: %w", err)
	}
	return nil
}

func (r *orderRepository) Delete(id domain.OrderID) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) list(query string, args ...any) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	for i := range orders {
		items, err := r.loadItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r *orderRepository) loadItems(ctx context.Context, orderID domain.OrderID) ([]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, product_name, unit_price_amount, unit_price_currency, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY position, id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var (
			item     domain.OrderItem
			amount   decimal.Decimal
			currency string
			quantity int
		)
		if err := rows.Scan(&item.ID, &item.ProductID, &item.ProductName, &amount, &currency, &quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}

		price, err := domain.NewMoney(amount, currency)
		if err != nil {
			return nil, fmt.Errorf("restore item price: %w", err)
		}
		qty, err := domain.NewQuantity(quantity)
		if err != nil {
			return nil, fmt.Errorf("restore item quantity: %w", err)
		}
		item.UnitPrice = price
		item.Quantity = qty
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return items, nil
}

func (r *orderRepository) existsTx(ctx context.Context, tx *sql.Tx, id domain.OrderID) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM orders WHERE id = $1`, id).Scan(&one)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("check order exists: %w", err)
}

func insertItems(ctx context.Context, tx *sql.Tx, orderID domain.OrderID, items []domain.OrderItem) error {
	for pos, item := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (
				id, order_id, product_id, product_name,
				unit_price_amount, unit_price_currency, quantity, position
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`,
			item.ID, orderID, item.ProductID, item.ProductName,
			item.UnitPrice.Amount(), item.UnitPrice.Currency(),
			item.Quantity.Value(), pos,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		order              domain.Order
		status             string
		name, email, phone sql.NullString
	)
	err := row.Scan(
		&order.ID, &order.CustomerID, &order.OrderNumber,
		&name, &email, &phone,
		&order.ShippingAddress.Street, &order.ShippingAddress.City,
		&order.ShippingAddress.State, &order.ShippingAddress.ZipCode,
		&order.ShippingAddress.Country,
		&status, &order.CancellationReason,
		&order.Version, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("scan order: %w", err)
	}

	order.Status = domain.OrderStatus(status)
	if name.Valid || email.Valid {
		order.CustomerInfo = &domain.CustomerInfo{
			Name:  name.String,
			Email: email.String,
			Phone: phone.String,
		}
	}
	return order, nil
}

func customerInfoColumns(info *domain.CustomerInfo) (name, email, phone sql.NullString) {
	if info == nil {
		return
	}
	name = sql.NullString{String: info.Name, Valid: true}
	email = sql.NullString{String: info.Email, Valid: true}
	phone = sql.NullString{String: info.Phone, Valid: true}
	return
}

var _ domain.OrderRepository = (*orderRepository)(nil)
