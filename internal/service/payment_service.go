package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"fixserv/config"
	"fixserv/internal/domain"
	"fixserv/internal/models"
	"fixserv/internal/repository"
	"fixserv/pkg/gateway"

	"github.com/google/uuid"
)

// Store is the narrow persistence surface PaymentService needs.
// *repository.PaymentRepository implements it.
type Store interface {
	Create(p *models.Payment) error
	GetByID(id string) (*models.Payment, error)
	GetByOrderID(orderID string) (*models.Payment, error)
	GetByIdempotencyKey(key string) (*models.Payment, error)
	MarkPaid(orderID, paymentID, signature string, at time.Time) error
	ApplyRefund(id string, upd repository.RefundUpdate) error
	ListByUser(userID string, page, limit int, status string) ([]models.Payment, int64, error)
	MarkSyncPending(id string) error
	MarkSyncDone(id string) error
	ListSyncPending(limit int) ([]models.Payment, error)
	PingDB() error
}

type PaymentService struct {
	store Store
	gw    gateway.Client
	sync  BookingSync
	notif *NotificationService
	cfg   *config.Config
}

func NewPaymentService(store Store, gw gateway.Client, sync BookingSync, notif *NotificationService, cfg *config.Config) *PaymentService {
	return &PaymentService{store: store, gw: gw, sync: sync, notif: notif, cfg: cfg}
}

type CreateOrderInput struct {
	Amount          int64
	ServiceName     string
	ServiceType     string
	BookingID       string
	BookingDate     string
	BookingTimeSlot string
	Address         string
	City            string
	Pincode         string
	Notes           string
}

type OrderView struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type CreateOrderResult struct {
	Order     OrderView `json:"order"`
	PaymentID string    `json:"payment_id"`
	Key       string    `json:"key"`
	Mode      string    `json:"mode"`
}

// paise converts a major-unit rupee amount to minor units at the gateway
// boundary. Amounts are stored and exchanged with clients in rupees.
func paise(amount int64) int64 {
	return amount * 100
}

// CreateOrder creates a gateway order and persists a Payment in status
// created. Orders linked to a booking are idempotent per
// user+booking+amount; a retried create returns the existing order.
func (s *PaymentService) CreateOrder(ctx context.Context, userID, phone string, in CreateOrderInput) (*CreateOrderResult, error) {
	if in.Amount < 1 {
		return nil, ErrInvalidAmount
	}
	if s.cfg.Razorpay.KeyID == "" || s.cfg.Razorpay.KeySecret == "" {
		return nil, ErrConfiguration
	}

	receipt := fmt.Sprintf("rcpt_%d_%s", time.Now().UnixMilli(), uuid.New().String()[:8])
	idemKey := receipt
	if in.BookingID != "" {
		idemKey = fmt.Sprintf("user:%s:booking:%s:amount:%d", userID, in.BookingID, in.Amount)
		if existing, err := s.store.GetByIdempotencyKey(idemKey); err == nil && existing.Status != domain.PaymentFailed {
			log.Printf("[PAY] create-order dedup hit user=%s booking=%s order=%s", userID, in.BookingID, existing.GatewayOrderID)
			return s.orderResult(existing), nil
		}
	}

	notes := map[string]string{"service_name": in.ServiceName}
	if in.BookingID != "" {
		notes["booking_id"] = in.BookingID
	}
	order, err := s.gw.CreateOrder(ctx, paise(in.Amount), domain.DefaultCurrency, receipt, notes)
	if err != nil {
		return nil, err
	}

	p := &models.Payment{
		ID:              uuid.New().String(),
		UserID:          userID,
		UserPhone:       phone,
		GatewayOrderID:  order.ID,
		Amount:          in.Amount,
		Currency:        domain.DefaultCurrency,
		Status:          domain.PaymentCreated,
		ServiceName:     in.ServiceName,
		ServiceType:     in.ServiceType,
		BookingID:       in.BookingID,
		BookingDate:     in.BookingDate,
		BookingTimeSlot: in.BookingTimeSlot,
		Address:         in.Address,
		City:            in.City,
		Pincode:         in.Pincode,
		Notes:           in.Notes,
		IdempotencyKey:  idemKey,
	}
	if err := s.store.Create(p); err != nil {
		return nil, fmt.Errorf("persist payment: %w", err)
	}
	log.Printf("[PAY] order created payment=%s order=%s user=%s amount=%d", p.ID, order.ID, userID, in.Amount)
	return s.orderResult(p), nil
}

func (s *PaymentService) orderResult(p *models.Payment) *CreateOrderResult {
	return &CreateOrderResult{
		Order: OrderView{
			ID:       p.GatewayOrderID,
			Amount:   p.Amount,
			Currency: p.Currency,
		},
		PaymentID: p.ID,
		Key:       s.cfg.Razorpay.KeyID,
		Mode:      s.cfg.Razorpay.GatewayMode(),
	}
}

type VerifyInput struct {
	OrderID   string
	PaymentID string
	Signature string
}

// PaymentView is the sanitized payment returned after verification.
type PaymentView struct {
	ID          string     `json:"id"`
	OrderID     string     `json:"order_id"`
	PaymentID   string     `json:"payment_id"`
	Amount      int64      `json:"amount"`
	Status      string     `json:"status"`
	ServiceName string     `json:"service_name"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
}

func paymentView(p *models.Payment) *PaymentView {
	return &PaymentView{
		ID:          p.ID,
		OrderID:     p.GatewayOrderID,
		PaymentID:   p.GatewayPaymentID,
		Amount:      p.Amount,
		Status:      p.Status,
		ServiceName: p.ServiceName,
		PaidAt:      p.PaidAt,
	}
}

// VerifyPayment checks the confirmation signature and performs the
// created -> paid transition. Re-delivery of the same confirmation is an
// idempotent success; the signature check runs before any state is read.
func (s *PaymentService) VerifyPayment(ctx context.Context, in VerifyInput) (*PaymentView, error) {
	if in.OrderID == "" || in.PaymentID == "" || in.Signature == "" {
		return nil, ErrMissingFields
	}
	if s.cfg.Razorpay.KeySecret == "" {
		return nil, ErrConfiguration
	}
	if !gateway.VerifySignature(in.OrderID, in.PaymentID, in.Signature, s.cfg.Razorpay.KeySecret) {
		return nil, ErrInvalidSignature
	}

	err := s.store.MarkPaid(in.OrderID, in.PaymentID, in.Signature, time.Now())
	if errors.Is(err, repository.ErrStaleUpdate) {
		// Lost the conditional update: either the row is gone or another
		// verify already won. The gateway retries redirects, so an
		// already-paid row with the same payment id is a success.
		p, gerr := s.store.GetByOrderID(in.OrderID)
		if errors.Is(gerr, repository.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		if gerr != nil {
			return nil, fmt.Errorf("load payment: %w", gerr)
		}
		if p.GatewayPaymentID == in.PaymentID {
			log.Printf("[PAY] verify repeat order=%s status=%s", in.OrderID, p.Status)
			return paymentView(p), nil
		}
		return nil, ErrOrderConflict
	}
	if err != nil {
		return nil, fmt.Errorf("mark paid: %w", err)
	}

	p, err := s.store.GetByOrderID(in.OrderID)
	if err != nil {
		return nil, fmt.Errorf("load payment: %w", err)
	}
	log.Printf("[PAY] verified payment=%s order=%s user=%s", p.ID, in.OrderID, p.UserID)

	if p.BookingID != "" {
		if err := s.sync.SetPaymentStatus(ctx, p.BookingID, domain.PaymentPaid); err != nil {
			log.Printf("[PAY] booking sync failed payment=%s booking=%s: %v", p.ID, p.BookingID, err)
			if merr := s.store.MarkSyncPending(p.ID); merr != nil {
				log.Printf("[PAY] mark sync pending failed payment=%s: %v", p.ID, merr)
			}
		}
	}
	s.notif.SendPaymentConfirmation(p.UserPhone, p.Amount, p.ServiceName)
	return paymentView(p), nil
}

type RefundInput struct {
	PaymentID string
	Amount    int64 // 0 means refund the full remaining balance
	Reason    string
}

type RefundResult struct {
	RefundID         string `json:"refund_id"`
	Amount           int64  `json:"amount"`
	Status           string `json:"status"`
	GatewayPaymentID string `json:"gateway_payment_id"`
}

// Refund issues a full or partial refund. All preconditions are checked
// before the gateway call; cumulative refunds never exceed the charge.
func (s *PaymentService) Refund(ctx context.Context, userID string, in RefundInput) (*RefundResult, error) {
	if in.Amount < 0 {
		return nil, ErrInvalidAmount
	}
	p, err := s.store.GetByID(in.PaymentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load payment: %w", err)
	}
	if p.UserID != userID {
		return nil, ErrPaymentNotFound
	}
	if p.RefundStatus == domain.RefundProcessed || p.Status == domain.PaymentRefunded {
		return nil, ErrAlreadyRefunded
	}
	if p.Status != domain.PaymentPaid && p.Status != domain.PaymentPartiallyRefunded {
		return nil, ErrNotRefundable
	}
	if p.GatewayPaymentID == "" {
		return nil, ErrMissingGatewayRef
	}
	headroom := p.RefundHeadroom()
	if headroom <= 0 {
		return nil, ErrAlreadyRefunded
	}
	effective := in.Amount
	if effective == 0 || effective > headroom {
		effective = headroom
	}

	notes := map[string]string{}
	if in.Reason != "" {
		notes["reason"] = in.Reason
	}
	refund, err := s.gw.CreateRefund(ctx, p.GatewayPaymentID, paise(effective), notes)
	if err != nil {
		return nil, err
	}

	newTotal := p.RefundAmount + effective
	newStatus := domain.PaymentPartiallyRefunded
	refundStatus := domain.RefundPartial
	if newTotal >= p.Amount {
		newStatus = domain.PaymentRefunded
		refundStatus = domain.RefundProcessed
	}
	err = s.store.ApplyRefund(p.ID, repository.RefundUpdate{
		RefundID:             refund.ID,
		Delta:                effective,
		ExpectedRefundAmount: p.RefundAmount,
		NewStatus:            newStatus,
		RefundStatus:         refundStatus,
		Reason:               in.Reason,
		At:                   time.Now(),
	})
	if errors.Is(err, repository.ErrStaleUpdate) {
		// Gateway refund succeeded but a concurrent refund changed the row
		// first. Money moved; the record needs manual reconciliation.
		log.Printf("[PAY] REFUND RECORD MISMATCH payment=%s gateway_refund=%s amount=%d: %v", p.ID, refund.ID, effective, err)
		return nil, fmt.Errorf("refund %s issued but record update lost a concurrent write: %w", refund.ID, err)
	}
	if err != nil {
		log.Printf("[PAY] REFUND RECORD MISMATCH payment=%s gateway_refund=%s amount=%d: %v", p.ID, refund.ID, effective, err)
		return nil, fmt.Errorf("persist refund: %w", err)
	}
	log.Printf("[PAY] refunded payment=%s refund=%s amount=%d status=%s", p.ID, refund.ID, effective, newStatus)

	if p.BookingID != "" {
		if err := s.syncRefund(ctx, p.BookingID, newStatus); err != nil {
			log.Printf("[PAY] booking sync failed payment=%s booking=%s: %v", p.ID, p.BookingID, err)
			if merr := s.store.MarkSyncPending(p.ID); merr != nil {
				log.Printf("[PAY] mark sync pending failed payment=%s: %v", p.ID, merr)
			}
		}
	}
	s.notif.SendRefundNotice(p.UserPhone, effective, p.ServiceName)

	return &RefundResult{
		RefundID:         refund.ID,
		Amount:           effective,
		Status:           newStatus,
		GatewayPaymentID: p.GatewayPaymentID,
	}, nil
}

func (s *PaymentService) syncRefund(ctx context.Context, bookingID, paymentStatus string) error {
	if err := s.sync.SetPaymentStatus(ctx, bookingID, paymentStatus); err != nil {
		return err
	}
	return s.sync.SetBookingStatus(ctx, bookingID, domain.BookingCancelled)
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type HistoryResult struct {
	Payments   []models.Payment `json:"payments"`
	Pagination Pagination       `json:"pagination"`
}

func (s *PaymentService) History(ctx context.Context, userID string, page, limit int, status string) (*HistoryResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if !domain.ValidPaymentStatus(status) {
		status = ""
	}
	payments, total, err := s.store.ListByUser(userID, page, limit, status)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &HistoryResult{
		Payments: payments,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

type HealthCheck struct {
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

type HealthReport struct {
	Status string                 `json:"status"`
	Checks map[string]HealthCheck `json:"checks"`
}

// Health reports operational readiness: gateway credentials, database
// connectivity and the auth secret. Degraded when any check fails.
func (s *PaymentService) Health(ctx context.Context) *HealthReport {
	checks := map[string]HealthCheck{}

	gwCheck := HealthCheck{OK: true, Detail: s.cfg.Razorpay.GatewayMode()}
	if s.cfg.Razorpay.KeyID == "" || s.cfg.Razorpay.KeySecret == "" {
		gwCheck = HealthCheck{OK: false, Detail: "credentials missing"}
	} else if err := s.gw.Ping(ctx); err != nil {
		gwCheck = HealthCheck{OK: false, Detail: err.Error()}
	}
	checks["gateway"] = gwCheck

	dbCheck := HealthCheck{OK: true}
	if err := s.store.PingDB(); err != nil {
		dbCheck = HealthCheck{OK: false, Detail: err.Error()}
	}
	checks["database"] = dbCheck

	authCheck := HealthCheck{OK: s.cfg.JWT.AccessSecret != ""}
	if !authCheck.OK {
		authCheck.Detail = "auth secret missing"
	}
	checks["auth_secret"] = authCheck

	report := &HealthReport{Status: "ok", Checks: checks}
	for _, c := range checks {
		if !c.OK {
			report.Status = "degraded"
			break
		}
	}
	return report
}
