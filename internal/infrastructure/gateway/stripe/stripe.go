// Package stripe implements the international payment gateway adapter. The
// gateway speaks form-encoded HTTP for session creation and signed JSON
// webhooks for settlement.
package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"sceneforge/internal/application/billing/gateway"
	vo "sceneforge/internal/domain/billing/valueobjects"
	"sceneforge/internal/shared/biztime"
	"sceneforge/internal/shared/config"
	apperrors "sceneforge/internal/shared/errors"
)

const (
	checkoutSessionsPath = "/v1/checkout/sessions"
	signatureHeader      = "Stripe-Signature"

	// Webhooks older than this are rejected to bound replay windows.
	signatureTolerance = 5 * time.Minute

	// maxWebhookBody caps how much of a webhook request we read.
	maxWebhookBody = 1 << 20
)

// Gateway is the Stripe adapter.
type Gateway struct {
	secretKey     string
	webhookSecret string
	apiBaseURL    string
	successURL    string
	cancelURL     string
	httpClient    *http.Client

	// now is swappable for webhook tolerance tests.
	now func() time.Time
}

func NewGateway(cfg *config.StripeConfig) *Gateway {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Gateway{
		secretKey:     cfg.SecretKey,
		webhookSecret: cfg.WebhookSecret,
		apiBaseURL:    strings.TrimRight(cfg.APIBaseURL, "/"),
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
		httpClient:    &http.Client{Timeout: timeout},
		now:           biztime.NowUTC,
	}
}

func (g *Gateway) Name() vo.Gateway {
	return vo.GatewayStripe
}

// checkoutSession is the subset of the session object we consume.
type checkoutSession struct {
	ID                string            `json:"id"`
	URL               string            `json:"url"`
	ClientReferenceID string            `json:"client_reference_id"`
	AmountTotal       int64             `json:"amount_total"`
	Currency          string            `json:"currency"`
	CustomerEmail     string            `json:"customer_email"`
	PaymentIntent     string            `json:"payment_intent"`
	PaymentStatus     string            `json:"payment_status"`
	Metadata          map[string]string `json:"metadata"`
}

// CreateSession creates a hosted checkout session and returns its URL. Unlike
// the domestic gateway there is no client-side form post; the redirect is the
// whole session.
func (g *Gateway) CreateSession(ctx context.Context, req gateway.CreateSessionRequest) (*gateway.SessionDescriptor, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("client_reference_id", req.TransactionID)
	form.Set("customer_email", req.Email)
	form.Set("success_url", g.successURL)
	form.Set("cancel_url", g.cancelURL)
	form.Set("payment_method_types[0]", "card")
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", strings.ToLower(req.Currency))
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(req.AmountMinorUnits, 10))
	form.Set("line_items[0][price_data][product_data][name]", req.ProductInfo)
	form.Set("metadata[transaction_id]", req.TransactionID)
	form.Set("metadata[target_tier]", req.TargetTier)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.apiBaseURL+checkoutSessionsPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build session request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.secretKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return nil, apperrors.NewGatewayUnavailableError("stripe session request timed out")
		}
		return nil, apperrors.NewGatewayUnavailableError(err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxWebhookBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read session response: %w", err)
	}
	if resp.StatusCode >= 500 {
		return nil, apperrors.NewGatewayUnavailableError(fmt.Sprintf("stripe returned %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stripe session creation failed with status %d: %s", resp.StatusCode, string(body))
	}

	var session checkoutSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session response: %w", err)
	}
	if session.URL == "" {
		return nil, fmt.Errorf("stripe session response missing redirect URL")
	}

	return &gateway.SessionDescriptor{
		RedirectURL: session.URL,
		Method:      http.MethodGet,
		Fields:      map[string]string{"session_id": session.ID},
	}, nil
}

// webhookEvent is the envelope every webhook carries.
type webhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// VerifyCallback authenticates a webhook against the Stripe-Signature header
// and normalizes the embedded checkout session.
func (g *Gateway) VerifyCallback(req *http.Request) (*gateway.CallbackData, error) {
	payload, err := io.ReadAll(io.LimitReader(req.Body, maxWebhookBody))
	if err != nil {
		return nil, apperrors.NewValidationError("failed to read webhook body", err.Error())
	}

	if err := g.verifySignature(payload, req.Header.Get(signatureHeader)); err != nil {
		return nil, err
	}

	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, apperrors.NewValidationError("malformed webhook payload", err.Error())
	}

	var session checkoutSession
	if err := json.Unmarshal(event.Data.Object, &session); err != nil {
		return nil, apperrors.NewValidationError("malformed webhook session object", err.Error())
	}

	transactionID := session.ClientReferenceID
	if transactionID == "" {
		transactionID = session.Metadata["transaction_id"]
	}
	if transactionID == "" {
		return nil, apperrors.NewValidationError("webhook session missing transaction reference")
	}

	return &gateway.CallbackData{
		TransactionID:        transactionID,
		GatewayTransactionID: session.PaymentIntent,
		Status:               normalizeEvent(event.Type, session.PaymentStatus),
		AmountMinorUnits:     session.AmountTotal,
		Currency:             strings.ToUpper(session.Currency),
		Email:                session.CustomerEmail,
		Raw:                  map[string]string{"event_type": event.Type, "session_id": session.ID},
	}, nil
}

// verifySignature checks the t=...,v1=... header: v1 is
// HMAC-SHA256(secret, "<t>.<payload>") and t must be within tolerance.
func (g *Gateway) verifySignature(payload []byte, header string) error {
	if header == "" {
		return apperrors.NewSignatureMismatchError("missing signature header")
	}

	var timestamp string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			timestamp = value
		case "v1":
			signatures = append(signatures, value)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return apperrors.NewSignatureMismatchError("malformed signature header")
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return apperrors.NewSignatureMismatchError("invalid signature timestamp")
	}
	age := g.now().Sub(time.Unix(ts, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return apperrors.NewSignatureMismatchError("signature timestamp outside tolerance")
	}

	mac := hmac.New(sha256.New, []byte(g.webhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}
	return apperrors.NewSignatureMismatchError("no matching v1 signature")
}

func normalizeEvent(eventType, paymentStatus string) gateway.CallbackStatus {
	switch eventType {
	case "checkout.session.completed":
		// Async payment methods complete the session before the money moves.
		if paymentStatus == "paid" {
			return gateway.CallbackStatusSuccess
		}
		return gateway.CallbackStatusPending
	case "checkout.session.async_payment_succeeded":
		return gateway.CallbackStatusSuccess
	case "checkout.session.expired":
		return gateway.CallbackStatusCancelled
	default:
		return gateway.CallbackStatusFailed
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
