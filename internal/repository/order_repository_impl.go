package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/lumakart/fulfillment-service/internal/domain"
	pkgdto "github.com/lumakart/fulfillment-service/pkg/dto"
	"github.com/lumakart/fulfillment-service/pkg/errs"
)

type OrderRepositoryImpl struct {
	db *sqlx.DB
	tx *sqlx.Tx
}

func CreateOrderRepository(db *sqlx.DB) OrderRepository {
	return &OrderRepositoryImpl{
		db: db,
	}
}

func (r *OrderRepositoryImpl) ext() sqlx.ExtContext {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *OrderRepositoryImpl) AddOrder(ctx context.Context, data domain.Order) (err error) {
	_, err = sqlx.NamedExecContext(ctx, r.ext(), `INSERT INTO orders(id, user_id, shipping_address, shipping_method, shipping_cost, voucher_code, voucher_discount, subtotal, total, payment_method, order_status, payment_status, refund_eligible, created_at, updated_at)
		VALUES (:id, :user_id, :shipping_address, :shipping_method, :shipping_cost, :voucher_code, :voucher_discount, :subtotal, :total, :payment_method, :order_status, :payment_status, :refund_eligible, :created_at, :updated_at)`, data)
	if err != nil {
		log.Error().Err(err).Str("component", "AddOrder").Msg("")
		return
	}

	return nil
}

func (r *OrderRepositoryImpl) AddOrderItems(ctx context.Context, data []domain.OrderItem) (err error) {
	_, err = sqlx.NamedExecContext(ctx, r.ext(), `INSERT INTO order_items(order_id, product_id, product_name, unit_price, quantity, created_at)
		VALUES (:order_id, :product_id, :product_name, :unit_price, :quantity, :created_at)`, data)
	if err != nil {
		log.Error().Err(err).Str("component", "AddOrderItems").Msg("")
		return
	}

	return nil
}

func (r *OrderRepositoryImpl) GetOrderByID(ctx context.Context, id string) (data domain.Order, err error) {
	err = sqlx.GetContext(ctx, r.ext(), &data, "SELECT * FROM orders WHERE id = $1", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return data, errs.ErrNotFound
		}
		log.Error().Err(err).Str("component", "GetOrderByID").Msg("")
		return data, errs.ErrInternalServer
	}

	err = sqlx.SelectContext(ctx, r.ext(), &data.Items, "SELECT * FROM order_items WHERE order_id = $1 ORDER BY id", id)
	if err != nil {
		log.Error().Err(err).Str("component", "GetOrderByID").Msg("")
		return data, errs.ErrInternalServer
	}

	err = sqlx.SelectContext(ctx, r.ext(), &data.StatusHistory, "SELECT * FROM order_status_history WHERE order_id = $1 ORDER BY id", id)
	if err != nil {
		log.Error().Err(err).Str("component", "GetOrderByID").Msg("")
		return data, errs.ErrInternalServer
	}

	return
}

func (r *OrderRepositoryImpl) GetOrders(ctx context.Context, filter pkgdto.Filter) (data []domain.Order, err error) {
	query := "SELECT * FROM orders WHERE 1=1"

	args := make(map[string]interface{})

	if filter.OrderStatus != "" {
		query += " AND order_status = :order_status"
		args["order_status"] = filter.OrderStatus
	}

	if filter.PaymentStatus != "" {
		query += " AND payment_status = :payment_status"
		args["payment_status"] = filter.PaymentStatus
	}

	if filter.UserID != "" {
		query += " AND user_id = :user_id"
		args["user_id"] = filter.UserID
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit != 0 && filter.Page != 0 {
		offset := (filter.Page - 1) * filter.Limit
		query += " LIMIT :limit OFFSET :offset"
		args["limit"] = filter.Limit
		args["offset"] = offset
	}

	query, argList, err := sqlx.Named(query, args)
	if err != nil {
		log.Error().Err(err).Str("component", "GetOrders").Msg("")
		return nil, err
	}

	query = r.ext().Rebind(query)
	err = sqlx.SelectContext(ctx, r.ext(), &data, query, argList...)
	if err != nil {
		log.Error().Err(err).Str("component", "GetOrders").Msg("")
		return nil, err
	}

	return
}

func (r *OrderRepositoryImpl) UpdateOrderStatus(ctx context.Context, orderID string, status string) (err error) {
	_, err = r.ext().ExecContext(ctx, "UPDATE orders SET order_status = $1, updated_at = $2 WHERE id = $3", status, time.Now().Unix(), orderID)
	if err != nil {
		log.Error().Err(err).Str("component", "UpdateOrderStatus").Msg("")
		return
	}

	return nil
}

func (r *OrderRepositoryImpl) UpdatePaymentStatus(ctx context.Context, orderID string, status string, paidAt *int64) (err error) {
	_, err = r.ext().ExecContext(ctx, "UPDATE orders SET payment_status = $1, paid_at = COALESCE($2, paid_at), updated_at = $3 WHERE id = $4", status, paidAt, time.Now().Unix(), orderID)
	if err != nil {
		log.Error().Err(err).Str("component", "UpdatePaymentStatus").Msg("")
		return
	}

	return nil
}

func (r *OrderRepositoryImpl) MarkRefundEligible(ctx context.Context, orderID string) (err error) {
	_, err = r.ext().ExecContext(ctx, "UPDATE orders SET refund_eligible = TRUE, updated_at = $1 WHERE id = $2", time.Now().Unix(), orderID)
	if err != nil {
		log.Error().Err(err).Str("component", "MarkRefundEligible").Msg("")
		return
	}

	return nil
}

func (r *OrderRepositoryImpl) AddStatusHistory(ctx context.Context, entry domain.StatusHistoryEntry) (err error) {
	_, err = sqlx.NamedExecContext(ctx, r.ext(), `INSERT INTO order_status_history(order_id, status, note, actor, created_at)
		VALUES (:order_id, :status, :note, :actor, :created_at)`, entry)
	if err != nil {
		log.Error().Err(err).Str("component", "AddStatusHistory").Msg("")
		return
	}

	return nil
}

func (r *OrderRepositoryImpl) AddPaymentInstrument(ctx context.Context, data domain.PaymentInstrument) (err error) {
	_, err = sqlx.NamedExecContext(ctx, r.ext(), `INSERT INTO payment_instruments(id, order_id, kind, amount, reference, expired_at, created_at)
		VALUES (:id, :order_id, :kind, :amount, :reference, :expired_at, :created_at)`, data)
	if err != nil {
		log.Error().Err(err).Str("component", "AddPaymentInstrument").Msg("")
		return
	}

	return nil
}

func (r *OrderRepositoryImpl) GetActiveInstrument(ctx context.Context, orderID string) (data domain.PaymentInstrument, found bool, err error) {
	err = sqlx.GetContext(ctx, r.ext(), &data, "SELECT * FROM payment_instruments WHERE order_id = $1 AND deleted_at IS NULL ORDER BY created_at DESC LIMIT 1", orderID)
	if err != nil {
		if err == sql.ErrNoRows {
			return data, false, nil
		}
		log.Error().Err(err).Str("component", "GetActiveInstrument").Msg("")
		return data, false, errs.ErrInternalServer
	}

	return data, true, nil
}

func (r *OrderRepositoryImpl) DeactivateInstruments(ctx context.Context, orderID string) (err error) {
	_, err = r.ext().ExecContext(ctx, "UPDATE payment_instruments SET deleted_at = $1 WHERE order_id = $2 AND deleted_at IS NULL", time.Now().Unix(), orderID)
	if err != nil {
		log.Error().Err(err).Str("component", "DeactivateInstruments").Msg("")
		return
	}

	return nil
}

func (r *OrderRepositoryImpl) GetExpiredWaitingOrders(ctx context.Context, now int64) (data []domain.Order, err error) {
	err = sqlx.SelectContext(ctx, r.ext(), &data, `SELECT o.* FROM orders o
		JOIN payment_instruments pi ON pi.order_id = o.id AND pi.deleted_at IS NULL
		WHERE o.payment_status = $1 AND pi.expired_at < $2`, domain.PaymentWaiting, now)
	if err != nil {
		log.Error().Err(err).Str("component", "GetExpiredWaitingOrders").Msg("")
		return nil, err
	}

	return
}

func (r *OrderRepositoryImpl) HandleTrx(ctx context.Context, fn func(ctx context.Context, repo OrderRepository) error) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	trxRepo := &OrderRepositoryImpl{
		db: r.db,
		tx: tx,
	}

	err = fn(ctx, trxRepo)

	return err
}
