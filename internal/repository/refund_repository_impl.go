package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/lumakart/fulfillment-service/internal/domain"
	pkgdto "github.com/lumakart/fulfillment-service/pkg/dto"
	"github.com/lumakart/fulfillment-service/pkg/errs"
)

type RefundRepositoryImpl struct {
	db *sqlx.DB
}

func CreateRefundRepository(db *sqlx.DB) RefundRepository {
	return &RefundRepositoryImpl{
		db: db,
	}
}

func (r *RefundRepositoryImpl) AddRefund(ctx context.Context, data domain.Refund) (err error) {
	_, err = r.db.NamedExecContext(ctx, `INSERT INTO refunds(id, order_id, type, reason, description, amount, status, created_at, updated_at)
		VALUES (:id, :order_id, :type, :reason, :description, :amount, :status, :created_at, :updated_at)`, data)
	if err != nil {
		log.Error().Err(err).Str("component", "AddRefund").Msg("")
		return
	}

	return nil
}

func (r *RefundRepositoryImpl) AddRefundEvidence(ctx context.Context, data []domain.RefundEvidence) (err error) {
	_, err = r.db.NamedExecContext(ctx, `INSERT INTO refund_evidence(refund_id, media_kind, url, size_bytes, uploaded_at)
		VALUES (:refund_id, :media_kind, :url, :size_bytes, :uploaded_at)`, data)
	if err != nil {
		log.Error().Err(err).Str("component", "AddRefundEvidence").Msg("")
		return
	}

	return nil
}

func (r *RefundRepositoryImpl) AddRefundStatusHistory(ctx context.Context, entry domain.RefundStatusEntry) (err error) {
	_, err = r.db.NamedExecContext(ctx, `INSERT INTO refund_status_history(refund_id, status, note, actor, created_at)
		VALUES (:refund_id, :status, :note, :actor, :created_at)`, entry)
	if err != nil {
		log.Error().Err(err).Str("component", "AddRefundStatusHistory").Msg("")
		return
	}

	return nil
}

func (r *RefundRepositoryImpl) GetRefundByID(ctx context.Context, id string) (data domain.Refund, err error) {
	err = r.db.GetContext(ctx, &data, "SELECT * FROM refunds WHERE id = $1", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return data, errs.ErrNotFound
		}
		log.Error().Err(err).Str("component", "GetRefundByID").Msg("")
		return data, errs.ErrInternalServer
	}

	err = r.db.SelectContext(ctx, &data.Evidence, "SELECT * FROM refund_evidence WHERE refund_id = $1 ORDER BY id", id)
	if err != nil {
		log.Error().Err(err).Str("component", "GetRefundByID").Msg("")
		return data, errs.ErrInternalServer
	}

	err = r.db.SelectContext(ctx, &data.StatusHistory, "SELECT * FROM refund_status_history WHERE refund_id = $1 ORDER BY id", id)
	if err != nil {
		log.Error().Err(err).Str("component", "GetRefundByID").Msg("")
		return data, errs.ErrInternalServer
	}

	return
}

func (r *RefundRepositoryImpl) GetRefunds(ctx context.Context, filter pkgdto.Filter) (data []domain.Refund, err error) {
	query := "SELECT * FROM refunds WHERE 1=1"

	args := make(map[string]interface{})

	if filter.OrderStatus != "" {
		query += " AND status = :status"
		args["status"] = filter.OrderStatus
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
		log.Error().Err(err).Str("component", "GetRefunds").Msg("")
		return nil, err
	}

	query = r.db.Rebind(query)
	err = r.db.SelectContext(ctx, &data, query, argList...)
	if err != nil {
		log.Error().Err(err).Str("component", "GetRefunds").Msg("")
		return nil, err
	}

	return
}

func (r *RefundRepositoryImpl) GetActiveRefundByOrderID(ctx context.Context, orderID string) (data domain.Refund, found bool, err error) {
	err = r.db.GetContext(ctx, &data, "SELECT * FROM refunds WHERE order_id = $1 AND status NOT IN ($2, $3) LIMIT 1",
		orderID, domain.RefundRejected, domain.RefundCompleted)
	if err != nil {
		if err == sql.ErrNoRows {
			return data, false, nil
		}
		log.Error().Err(err).Str("component", "GetActiveRefundByOrderID").Msg("")
		return data, false, errs.ErrInternalServer
	}

	return data, true, nil
}

func (r *RefundRepositoryImpl) GetRefundsByOrderID(ctx context.Context, orderID string) (data []domain.Refund, err error) {
	err = r.db.SelectContext(ctx, &data, "SELECT * FROM refunds WHERE order_id = $1 ORDER BY created_at", orderID)
	if err != nil {
		log.Error().Err(err).Str("component", "GetRefundsByOrderID").Msg("")
		return nil, errs.ErrInternalServer
	}

	return
}

func (r *RefundRepositoryImpl) UpdateRefund(ctx context.Context, data domain.Refund) (err error) {
	_, err = r.db.NamedExecContext(ctx, `UPDATE refunds SET status = :status, reviewed_by = :reviewed_by, reviewed_at = :reviewed_at, review_note = :review_note,
		return_courier = :return_courier, return_tracking = :return_tracking, shipped_at = :shipped_at, received_at = :received_at,
		refunded_at = :refunded_at, refund_method = :refund_method, updated_at = :updated_at WHERE id = :id`, data)
	if err != nil {
		log.Error().Err(err).Str("component", "UpdateRefund").Msg("")
		return
	}

	return nil
}
