package repository

import (
	"errors"
	"time"

	"fixserv/internal/domain"
	"fixserv/internal/models"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("payment not found")

// ErrStaleUpdate means a guarded update matched no row: the payment moved
// to another state between our read and write. Callers re-read and decide.
var ErrStaleUpdate = errors.New("payment state changed concurrently")

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(p *models.Payment) error {
	return r.db.Create(p).Error
}

func (r *PaymentRepository) GetByID(id string) (*models.Payment, error) {
	var p models.Payment
	err := r.db.Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetByOrderID(orderID string) (*models.Payment, error) {
	var p models.Payment
	err := r.db.Where("gateway_order_id = ?", orderID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) GetByIdempotencyKey(key string) (*models.Payment, error) {
	var p models.Payment
	err := r.db.Where("idempotency_key = ?", key).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// MarkPaid performs the created -> paid transition as a conditional update.
// Only a row still in status created is touched, so under concurrent
// verifies at most one caller wins; the loser sees ErrStaleUpdate.
func (r *PaymentRepository) MarkPaid(orderID, paymentID, signature string, at time.Time) error {
	res := r.db.Model(&models.Payment{}).
		Where("gateway_order_id = ? AND status = ?", orderID, domain.PaymentCreated).
		Updates(map[string]interface{}{
			"gateway_payment_id": paymentID,
			"gateway_signature":  signature,
			"status":             domain.PaymentPaid,
			"paid_at":            at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleUpdate
	}
	return nil
}

// RefundUpdate carries the state computed by the service for one refund.
// ExpectedRefundAmount is the cumulative total read before the gateway
// call; the update only lands if it still matches, preventing a concurrent
// refund from double-applying.
type RefundUpdate struct {
	RefundID             string
	Delta                int64
	ExpectedRefundAmount int64
	NewStatus            string
	RefundStatus         string
	Reason               string
	At                   time.Time
	SyncPending          bool
}

func (r *PaymentRepository) ApplyRefund(id string, upd RefundUpdate) error {
	res := r.db.Model(&models.Payment{}).
		Where("id = ? AND status IN ? AND refund_amount = ?",
			id,
			[]string{domain.PaymentPaid, domain.PaymentPartiallyRefunded},
			upd.ExpectedRefundAmount).
		Updates(map[string]interface{}{
			"status":        upd.NewStatus,
			"refund_id":     upd.RefundID,
			"refund_amount": upd.ExpectedRefundAmount + upd.Delta,
			"refund_status": upd.RefundStatus,
			"refund_reason": upd.Reason,
			"refunded_at":   upd.At,
			"sync_pending":  upd.SyncPending,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleUpdate
	}
	return nil
}

func (r *PaymentRepository) ListByUser(userID string, page, limit int, status string) ([]models.Payment, int64, error) {
	q := r.db.Model(&models.Payment{}).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var payments []models.Payment
	err := q.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&payments).Error
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

func (r *PaymentRepository) MarkSyncPending(id string) error {
	return r.db.Model(&models.Payment{}).Where("id = ?", id).
		Update("sync_pending", true).Error
}

func (r *PaymentRepository) MarkSyncDone(id string) error {
	return r.db.Model(&models.Payment{}).Where("id = ?", id).
		Update("sync_pending", false).Error
}

func (r *PaymentRepository) ListSyncPending(limit int) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Where("sync_pending = ? AND booking_id <> ''", true).
		Order("updated_at ASC").
		Limit(limit).
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// PingDB checks database connectivity for the health endpoint.
func (r *PaymentRepository) PingDB() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
