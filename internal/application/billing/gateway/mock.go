package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	vo "sceneforge/internal/domain/billing/valueobjects"
)

// MockGateway is a stand-in adapter for local development and tests.
type MockGateway struct {
	shouldSucceed bool
}

func NewMockGateway(shouldSucceed bool) *MockGateway {
	return &MockGateway{
		shouldSucceed: shouldSucceed,
	}
}

func (m *MockGateway) Name() vo.Gateway {
	return vo.GatewayPayU
}

func (m *MockGateway) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionDescriptor, error) {
	return &SessionDescriptor{
		RedirectURL: fmt.Sprintf("https://mock-payment.example.com/pay?txnid=%s", req.TransactionID),
		Method:      http.MethodPost,
		Fields: map[string]string{
			"txnid":  req.TransactionID,
			"amount": fmt.Sprintf("%d", req.AmountMinorUnits),
		},
	}, nil
}

func (m *MockGateway) VerifyCallback(req *http.Request) (*CallbackData, error) {
	if err := req.ParseForm(); err != nil {
		return nil, fmt.Errorf("failed to parse form: %w", err)
	}

	txnid := req.FormValue("txnid")
	if txnid == "" {
		return nil, fmt.Errorf("missing txnid")
	}

	status := CallbackStatusSuccess
	if !m.shouldSucceed {
		status = CallbackStatusFailed
	}

	return &CallbackData{
		TransactionID:        txnid,
		GatewayTransactionID: fmt.Sprintf("MOCK_%d", time.Now().Unix()),
		Status:               status,
		AmountMinorUnits:     99900,
		Currency:             "INR",
		Raw:                  map[string]string{},
	}, nil
}
