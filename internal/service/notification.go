package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"fixserv/pkg/sms"
)

// NotificationService composes payment SMS messages and sends them
// fire-and-forget. Every failure is logged and swallowed; notification
// delivery never affects the payment result.
type NotificationService struct {
	sender sms.Sender
}

func NewNotificationService(sender sms.Sender) *NotificationService {
	return &NotificationService{sender: sender}
}

func (s *NotificationService) SendPaymentConfirmation(phone string, amount int64, serviceName string) {
	if phone == "" {
		return
	}
	msg := fmt.Sprintf("Payment of Rs.%d received for %s. Thank you for choosing FixServ.", amount, serviceName)
	s.send(phone, msg)
}

func (s *NotificationService) SendRefundNotice(phone string, amount int64, serviceName string) {
	if phone == "" {
		return
	}
	msg := fmt.Sprintf("Refund of Rs.%d initiated for %s. It will reflect in 5-7 business days.", amount, serviceName)
	s.send(phone, msg)
}

func (s *NotificationService) send(phone, msg string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.sender.Send(ctx, phone, msg); err != nil {
			log.Printf("[SMS] send to %s failed: %v", phone, err)
		}
	}()
}
