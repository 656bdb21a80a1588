package email

import (
	"fmt"
	"net"
	"net/smtp"
)

// Service handles email sending via SMTP
type Service struct {
	host     string
	port     string
	from     string
	currency string
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewService creates a new email service
func NewService(host, port, from, currency string) *Service {
	return &Service{
		host:     host,
		port:     port,
		from:     from,
		currency: currency,
		sendMail: smtp.SendMail,
	}
}

// SendOrderConfirmation sends an order confirmation email
func (s *Service) SendOrderConfirmation(to string, summary OrderSummary) error {
	subject := fmt.Sprintf("Order confirmation (order %s)", shortID(summary.OrderID))
	return s.send(to, subject, BuildOrderConfirmationBody(summary, s.currency))
}

// SendPaymentApproved tells the customer their manual payment was verified.
func (s *Service) SendPaymentApproved(to, orderID string) error {
	subject := fmt.Sprintf("Payment approved (order %s)", shortID(orderID))
	return s.send(to, subject, BuildPaymentApprovedBody(orderID))
}

// SendPaymentDeclined tells the customer why their payment was rejected.
func (s *Service) SendPaymentDeclined(to, orderID, reason string) error {
	subject := fmt.Sprintf("Payment declined (order %s)", shortID(orderID))
	return s.send(to, subject, BuildPaymentDeclinedBody(orderID, reason))
}

func (s *Service) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	return s.sendMail(net.JoinHostPort(s.host, s.port), nil, s.from, []string{to}, []byte(msg))
}

func shortID(orderID string) string {
	if len(orderID) > 8 {
		return orderID[:8]
	}
	return orderID
}
