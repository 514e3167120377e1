package payu

import (
	"context"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sceneforge/internal/application/billing/gateway"
	"sceneforge/internal/shared/config"
	apperrors "sceneforge/internal/shared/errors"
)

func testGateway() *Gateway {
	return NewGateway(&config.PayUConfig{
		MerchantKey:  "gtKFFx",
		MerchantSalt: "TESTSALT",
		BaseURL:      "https://test.payu.in",
		SuccessURL:   "https://app.example.com/api/payu/success",
		FailureURL:   "https://app.example.com/api/payu/failure",
	})
}

func sessionRequest() gateway.CreateSessionRequest {
	return gateway.CreateSessionRequest{
		TransactionID:    "SF20260829120000abcd1234",
		AmountMinorUnits: 99900,
		Currency:         "INR",
		ProductInfo:      "SceneForge Pro",
		FirstName:        "Alice",
		Email:            "alice@example.com",
		Phone:            "9999999999",
		TargetTier:       "pro",
	}
}

// Pinned against the canonical string
// key|txnid|amount|productinfo|firstname|email|udf1|udf2|udf3|udf4|udf5||||||SALT.
const wantRequestHash = "d957cee6d6d698e0b9439a1c88c1077aaee679df42a37ea0288385ec637bb81126ebfc4ce8df23f734c2bc0d339631262db9540a8b5d9c59f0a216ec0d314bc7"

// Pinned against SALT|status|udf5|udf4|udf3|udf2|udf1|email|firstname|productinfo|amount|txnid|key.
const wantResponseHash = "10c9a537c7086e30a79b7be5664fac504a19b7a9933caccb5e12905e25803c169d94fdb24d87cad35cb8c794b2a26ae4e07b54dee7f6c5d2144c570be25bd725"

func TestCreateSession_RequestHashVector(t *testing.T) {
	g := testGateway()

	session, err := g.CreateSession(context.Background(), sessionRequest())
	require.NoError(t, err)

	assert.Equal(t, "https://test.payu.in/_payment", session.RedirectURL)
	assert.Equal(t, "POST", session.Method)
	assert.Equal(t, "999.00", session.Fields["amount"])
	assert.Equal(t, "pro", session.Fields["udf1"])
	assert.Equal(t, wantRequestHash, session.Fields["hash"])
}

func callbackForm(hash string) url.Values {
	return url.Values{
		"txnid":       {"SF20260829120000abcd1234"},
		"mihpayid":    {"403993715527037121"},
		"status":      {"success"},
		"amount":      {"999.00"},
		"productinfo": {"SceneForge Pro"},
		"firstname":   {"Alice"},
		"email":       {"alice@example.com"},
		"udf1":        {"pro"},
		"hash":        {hash},
	}
}

func postCallback(t *testing.T, form url.Values) *gateway.CallbackData {
	t.Helper()

	req := httptest.NewRequest("POST", "/api/payu/success", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	data, err := testGateway().VerifyCallback(req)
	require.NoError(t, err)
	return data
}

func TestVerifyCallback_ResponseHashVector(t *testing.T) {
	data := postCallback(t, callbackForm(wantResponseHash))

	assert.Equal(t, "SF20260829120000abcd1234", data.TransactionID)
	assert.Equal(t, "403993715527037121", data.GatewayTransactionID)
	assert.Equal(t, gateway.CallbackStatusSuccess, data.Status)
	assert.Equal(t, int64(99900), data.AmountMinorUnits)
	assert.Equal(t, "INR", data.Currency)
}

func TestVerifyCallback_RejectsBadHash(t *testing.T) {
	form := callbackForm(strings.Repeat("0", 128))

	req := httptest.NewRequest("POST", "/api/payu/success", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	_, err := testGateway().VerifyCallback(req)
	require.Error(t, err)
	assert.True(t, apperrors.IsSignatureMismatch(err))
}

// Changing any signed field invalidates the code even when the hash itself is
// a previously valid one.
func TestVerifyCallback_RejectsTamperedAmount(t *testing.T) {
	form := callbackForm(wantResponseHash)
	form.Set("amount", "1.00")

	req := httptest.NewRequest("POST", "/api/payu/success", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	_, err := testGateway().VerifyCallback(req)
	require.Error(t, err)
	assert.True(t, apperrors.IsSignatureMismatch(err))
}

func TestVerifyCallback_MissingFields(t *testing.T) {
	g := testGateway()

	req := httptest.NewRequest("POST", "/api/payu/success", strings.NewReader("status=success"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	_, err := g.VerifyCallback(req)
	assert.True(t, apperrors.IsValidationError(err))

	req = httptest.NewRequest("POST", "/api/payu/success", strings.NewReader("txnid=SF-1&status=success"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	_, err = g.VerifyCallback(req)
	assert.True(t, apperrors.IsSignatureMismatch(err))
}

func TestNormalizeStatus(t *testing.T) {
	cases := map[string]gateway.CallbackStatus{
		"success":       gateway.CallbackStatusSuccess,
		"SUCCESS":       gateway.CallbackStatusSuccess,
		"pending":       gateway.CallbackStatusPending,
		"in progress":   gateway.CallbackStatusPending,
		"cancel":        gateway.CallbackStatusCancelled,
		"userCancelled": gateway.CallbackStatusCancelled,
		"failure":       gateway.CallbackStatusFailed,
		"bogus":         gateway.CallbackStatusFailed,
		"":              gateway.CallbackStatusFailed,
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeStatus(in), "status %q", in)
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"999.00", 99900, false},
		{"1.00", 100, false},
		{"1.5", 150, false},
		{"0.99", 99, false},
		{"1000", 100000, false},
		{"1.999", 199, false},
		{"", 0, true},
		{"abc", 0, true},
	}
	for _, tc := range cases {
		got, err := parseAmount(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "amount %q", tc.in)
			continue
		}
		require.NoError(t, err, "amount %q", tc.in)
		assert.Equal(t, tc.want, got, "amount %q", tc.in)
	}
}
