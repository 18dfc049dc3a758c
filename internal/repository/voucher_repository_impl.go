package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/lumakart/fulfillment-service/internal/domain"
	"github.com/lumakart/fulfillment-service/pkg/errs"
)

type VoucherRepositoryImpl struct {
	db *sqlx.DB
}

func CreateVoucherRepository(db *sqlx.DB) VoucherRepository {
	return &VoucherRepositoryImpl{
		db: db,
	}
}

func (r *VoucherRepositoryImpl) AddVoucher(ctx context.Context, data domain.Voucher) (err error) {
	_, err = r.db.NamedExecContext(ctx, `INSERT INTO vouchers(code, discount, consumed, order_id, created_at, updated_at)
		VALUES (:code, :discount, :consumed, :order_id, :created_at, :updated_at)`, data)
	if err != nil {
		log.Error().Err(err).Str("component", "AddVoucher").Msg("")
		return
	}

	return nil
}

func (r *VoucherRepositoryImpl) GetVoucherByCode(ctx context.Context, code string) (data domain.Voucher, found bool, err error) {
	err = r.db.GetContext(ctx, &data, "SELECT * FROM vouchers WHERE code = $1", code)
	if err != nil {
		if err == sql.ErrNoRows {
			return data, false, nil
		}
		log.Error().Err(err).Str("component", "GetVoucherByCode").Msg("")
		return data, false, errs.ErrInternalServer
	}

	return data, true, nil
}

// ConsumeVoucher flips the voucher to consumed only if it is still
// available, so two orders can never consume the same voucher.
func (r *VoucherRepositoryImpl) ConsumeVoucher(ctx context.Context, code string, orderID string) (consumed bool, err error) {
	result, err := r.db.ExecContext(ctx, "UPDATE vouchers SET consumed = TRUE, order_id = $1, updated_at = $2 WHERE code = $3 AND consumed = FALSE",
		orderID, time.Now().Unix(), code)
	if err != nil {
		log.Error().Err(err).Str("component", "ConsumeVoucher").Msg("")
		return false, errs.ErrInternalServer
	}

	rows, err := result.RowsAffected()
	if err != nil {
		log.Error().Err(err).Str("component", "ConsumeVoucher").Msg("")
		return false, errs.ErrInternalServer
	}

	return rows == 1, nil
}

// RestoreVoucherByOrderID is idempotent: the conditional update makes a
// second restore for the same order a no-op.
func (r *VoucherRepositoryImpl) RestoreVoucherByOrderID(ctx context.Context, orderID string) (restored bool, err error) {
	result, err := r.db.ExecContext(ctx, "UPDATE vouchers SET consumed = FALSE, order_id = NULL, updated_at = $1 WHERE order_id = $2 AND consumed = TRUE",
		time.Now().Unix(), orderID)
	if err != nil {
		log.Error().Err(err).Str("component", "RestoreVoucherByOrderID").Msg("")
		return false, errs.ErrInternalServer
	}

	rows, err := result.RowsAffected()
	if err != nil {
		log.Error().Err(err).Str("component", "RestoreVoucherByOrderID").Msg("")
		return false, errs.ErrInternalServer
	}

	return rows == 1, nil
}
