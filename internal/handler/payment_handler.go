package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"fixserv/internal/middleware"
	"fixserv/internal/service"
	"fixserv/pkg/gateway"

	"github.com/gin-gonic/gin"
)

// PaymentAPI is the service surface the HTTP layer depends on.
type PaymentAPI interface {
	CreateOrder(ctx context.Context, userID, phone string, in service.CreateOrderInput) (*service.CreateOrderResult, error)
	VerifyPayment(ctx context.Context, in service.VerifyInput) (*service.PaymentView, error)
	Refund(ctx context.Context, userID string, in service.RefundInput) (*service.RefundResult, error)
	History(ctx context.Context, userID string, page, limit int, status string) (*service.HistoryResult, error)
	Health(ctx context.Context) *service.HealthReport
}

type PaymentHandler struct {
	svc PaymentAPI
}

func NewPaymentHandler(svc PaymentAPI) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

type createOrderRequest struct {
	Amount          int64  `json:"amount"`
	ServiceName     string `json:"service_name" binding:"required"`
	ServiceType     string `json:"service_type"`
	BookingID       string `json:"booking_id"`
	BookingDate     string `json:"booking_date"`
	BookingTimeSlot string `json:"booking_time_slot"`
	Address         string `json:"address"`
	City            string `json:"city"`
	Pincode         string `json:"pincode"`
	Notes           string `json:"notes"`
}

func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.svc.CreateOrder(c.Request.Context(), middleware.GetUserID(c), middleware.GetUserPhone(c), service.CreateOrderInput{
		Amount:          req.Amount,
		ServiceName:     req.ServiceName,
		ServiceType:     req.ServiceType,
		BookingID:       req.BookingID,
		BookingDate:     req.BookingDate,
		BookingTimeSlot: req.BookingTimeSlot,
		Address:         req.Address,
		City:            req.City,
		Pincode:         req.Pincode,
		Notes:           req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type verifyRequest struct {
	GatewayOrderID   string `json:"gateway_order_id"`
	GatewayPaymentID string `json:"gateway_payment_id"`
	GatewaySignature string `json:"gateway_signature"`
}

func (h *PaymentHandler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view, err := h.svc.VerifyPayment(c.Request.Context(), service.VerifyInput{
		OrderID:   req.GatewayOrderID,
		PaymentID: req.GatewayPaymentID,
		Signature: req.GatewaySignature,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": view})
}

type refundRequest struct {
	PaymentID string `json:"payment_id" binding:"required"`
	Amount    int64  `json:"amount"`
	Reason    string `json:"reason"`
}

func (h *PaymentHandler) Refund(c *gin.Context) {
	var req refundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.svc.Refund(c.Request.Context(), middleware.GetUserID(c), service.RefundInput{
		PaymentID: req.PaymentID,
		Amount:    req.Amount,
		Reason:    req.Reason,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"refund": res})
}

func (h *PaymentHandler) History(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	res, err := h.svc.History(c.Request.Context(), middleware.GetUserID(c), page, limit, c.Query("status"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// writeError maps service errors to HTTP statuses. Gateway and persistence
// failures surface as 500 with enough detail to retry safely.
func writeError(c *gin.Context, err error) {
	var gerr *gateway.Error
	switch {
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrMissingFields),
		errors.Is(err, service.ErrInvalidSignature),
		errors.Is(err, service.ErrMissingGatewayRef):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPaymentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotRefundable),
		errors.Is(err, service.ErrAlreadyRefunded),
		errors.Is(err, service.ErrOrderConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &gerr):
		c.JSON(http.StatusInternalServerError, gin.H{"error": gerr.Description, "code": gerr.Code})
	case errors.Is(err, service.ErrConfiguration):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
