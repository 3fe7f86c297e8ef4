package router

import (
	"time"

	"fixserv/config"
	"fixserv/internal/handler"
	"fixserv/internal/middleware"
	"fixserv/internal/repository"
	"fixserv/internal/service"
	"fixserv/pkg/gateway"
	"fixserv/pkg/sms"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB) (*gin.Engine, *service.Reconciler) {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	paymentRepo := repository.NewPaymentRepository(db)

	gwClient := gateway.NewRazorpayClient(cfg.Razorpay.BaseURL, cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, cfg.Razorpay.Mode)

	var sender sms.Sender = sms.NoopSender{}
	if cfg.SMS.APIKey != "" {
		sender = sms.NewFast2SMSSender(cfg.SMS.APIKey, cfg.SMS.BaseURL, cfg.SMS.Sender)
	}
	notifSvc := service.NewNotificationService(sender)

	bookingSync := service.NewGormBookingSync(db)
	paymentSvc := service.NewPaymentService(paymentRepo, gwClient, bookingSync, notifSvc, cfg)
	reconciler := service.NewReconciler(paymentRepo, bookingSync, cfg.Recon.Interval, cfg.Recon.BatchSize)

	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	healthHandler := handler.NewHealthHandler(paymentSvc)

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	{
		api.GET("/health", healthHandler.Check)

		payments := api.Group("/payments")
		payments.Use(authMw)
		{
			payments.GET("/history", paymentHandler.History)
			payments.POST("/create-order", paymentHandler.CreateOrder)
			payments.POST("/verify", paymentHandler.Verify)
			payments.POST("/refund", paymentHandler.Refund)
		}
	}

	return r, reconciler
}
