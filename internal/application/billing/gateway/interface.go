// Package gateway defines the capability interface every payment gateway
// adapter implements. Session creation and callback verification are the only
// two operations the settlement core needs; everything gateway-specific
// (canonical hash strings, signature headers) stays inside the adapter.
package gateway

import (
	"context"
	"net/http"

	vo "sceneforge/internal/domain/billing/valueobjects"
)

// CallbackStatus is the adapter-normalized outcome of a verified callback.
type CallbackStatus string

const (
	CallbackStatusSuccess   CallbackStatus = "success"
	CallbackStatusFailed    CallbackStatus = "failed"
	CallbackStatusCancelled CallbackStatus = "cancelled"
	CallbackStatusPending   CallbackStatus = "pending"
)

// PaymentGateway is implemented once per provider: payu (domestic) and
// stripe (international).
type PaymentGateway interface {
	Name() vo.Gateway

	// CreateSession builds the outbound payment request, including the
	// message-authentication code over the gateway's canonical field order.
	CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionDescriptor, error)

	// VerifyCallback authenticates an inbound notification and normalizes it.
	// A payload whose authentication code does not verify returns a signature
	// mismatch error; the payload's own status field is never trusted without
	// a matching code.
	VerifyCallback(req *http.Request) (*CallbackData, error)
}

// CreateSessionRequest carries everything an adapter needs to build a session.
type CreateSessionRequest struct {
	TransactionID    string
	AmountMinorUnits int64
	Currency         string
	ProductInfo      string
	FirstName        string
	Email            string
	Phone            string
	TargetTier       string
}

// SessionDescriptor is what the caller needs to redirect the user: the target
// URL and the complete field map to post with it.
type SessionDescriptor struct {
	RedirectURL string
	Method      string
	Fields      map[string]string
}

// CallbackData is a verified, normalized gateway notification.
type CallbackData struct {
	TransactionID        string
	GatewayTransactionID string
	Status               CallbackStatus
	AmountMinorUnits     int64
	Currency             string
	Email                string
	FirstName            string
	ErrorMessage         string
	Raw                  map[string]string
}
