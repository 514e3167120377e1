package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"sceneforge/internal/application/billing/usecases"
	sharedConfig "sceneforge/internal/shared/config"
	"sceneforge/internal/shared/logger"
)

// ReceiptMailer sends payment receipt emails over SMTP. It implements the
// billing usecases' ReceiptSender interface; delivery failures never affect
// settlement, callers log and move on.
type ReceiptMailer struct {
	cfg    sharedConfig.EmailConfig
	dialer *gomail.Dialer
	logger logger.Interface
}

func NewReceiptMailer(cfg sharedConfig.EmailConfig, log logger.Interface) *ReceiptMailer {
	return &ReceiptMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		logger: log,
	}
}

func (m *ReceiptMailer) SendPaymentReceipt(ctx context.Context, cmd usecases.ReceiptCommand) error {
	if cmd.Email == "" {
		return fmt.Errorf("receipt has no recipient address")
	}

	name := cmd.FirstName
	if name == "" {
		name = "there"
	}

	subject := fmt.Sprintf("Payment receipt %s", cmd.TransactionID)

	htmlBody := fmt.Sprintf(`
		<html>
		<body>
			<h2>Thank you for your payment</h2>
			<p>Hi %s,</p>
			<p>We received your payment of <strong>%s %s</strong>.</p>
			<p>Transaction ID: %s</p>
			<p>Paid at: %s</p>
			<p>Your SceneForge Pro access is now active.</p>
		</body>
		</html>
	`, name, cmd.Amount, cmd.Currency, cmd.TransactionID, cmd.PaidAt.Format("2006-01-02 15:04 MST"))

	plainBody := fmt.Sprintf(`
Hi %s,

We received your payment of %s %s.

Transaction ID: %s
Paid at: %s

Your SceneForge Pro access is now active.
	`, name, cmd.Amount, cmd.Currency, cmd.TransactionID, cmd.PaidAt.Format("2006-01-02 15:04 MST"))

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.cfg.FromAddress, m.cfg.FromName)
	msg.SetHeader("To", cmd.Email)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", plainBody)
	msg.AddAlternative("text/html", htmlBody)

	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(msg)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send payment receipt: %w", err)
		}
	}

	m.logger.Debugw("payment receipt sent",
		"transaction_id", cmd.TransactionID,
		"email", cmd.Email,
	)
	return nil
}
