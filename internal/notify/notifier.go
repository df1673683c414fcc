package notify

import (
	"context" // Request scoped cancellation

	"github.com/sirupsen/logrus" // Structured logging
)

// ResetMessage is what the mail worker needs to send a reset link
type ResetMessage struct {
	UserID uint   `json:"user_id"` // Recipient user
	Email  string `json:"email"`   // Recipient address
	Name   string `json:"name"`    // Greeting name
	URL    string `json:"url"`     // Reset link including the token
}

// Notifier dispatches out-of-band password reset notifications
type Notifier interface {
	SendPasswordReset(ctx context.Context, msg ResetMessage) error
}

// LogNotifier only records that a reset was requested; used when no broker is configured
type LogNotifier struct {
	log *logrus.Logger // Destination logger
}

// NewLogNotifier creates a LogNotifier; nil uses the standard logger
func NewLogNotifier(log *logrus.Logger) *LogNotifier {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LogNotifier{log: log}
}

// SendPasswordReset logs the request without the link, which carries a secret token
func (n *LogNotifier) SendPasswordReset(_ context.Context, msg ResetMessage) error {
	n.log.WithFields(logrus.Fields{
		"user_id": msg.UserID, // Recipient user
		"email":   msg.Email,  // Recipient address
	}).Info("Password reset requested; no broker configured, notification not delivered")
	return nil
}
