package email

import (
	"context"
	"fmt"
	"time"

	"reuse-market/internal/config"
	"reuse-market/utils"

	"github.com/mailgun/mailgun-go/v5"
)

// Service sends marketplace notification emails through Mailgun. When the
// Mailgun credentials are absent the service stays disabled and every send
// becomes an error the caller can log and move past.
type Service struct {
	client      mailgun.Mailgun
	domain      string
	senderEmail string
	senderName  string
	enabled     bool
}

func NewService(cfg *config.Config) *Service {
	enabled := cfg.MailgunDomain != "" && cfg.MailgunAPIKey != ""

	var client mailgun.Mailgun
	if enabled {
		client = mailgun.NewMailgun(cfg.MailgunAPIKey)
	}

	return &Service{
		client:      client,
		domain:      cfg.MailgunDomain,
		senderEmail: cfg.MailgunSenderEmail,
		senderName:  cfg.MailgunSenderName,
		enabled:     enabled,
	}
}

func (s *Service) IsEnabled() bool {
	return s.enabled
}

// SendBidAccepted notifies a bidder that the seller accepted their offer.
func (s *Service) SendBidAccepted(ctx context.Context, toEmail, itemName, bidID string) error {
	if !s.enabled {
		return fmt.Errorf("email service is not configured")
	}

	subject := "Your Bid Has Been Accepted"
	body := fmt.Sprintf("Congratulations! Your offer on %q has been accepted. Reply to the seller to arrange pickup. (bid %s)", itemName, bidID)

	message := mailgun.NewMessage(
		s.domain,
		fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail),
		subject,
		body,
		toEmail,
	)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	resp, err := s.client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send acceptance email to %s: %w", toEmail, err)
	}

	utils.Info("acceptance email sent", map[string]any{"to": toEmail, "message_id": resp})
	return nil
}
