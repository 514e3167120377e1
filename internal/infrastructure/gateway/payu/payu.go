// Package payu implements the domestic payment gateway adapter. The gateway's
// protocol is a signed form POST: we redirect the user with a sha512 code over
// a fixed field order, and the gateway calls back with the same fields signed
// in reverse order.
package payu

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"sceneforge/internal/application/billing/gateway"
	vo "sceneforge/internal/domain/billing/valueobjects"
	"sceneforge/internal/shared/config"
	apperrors "sceneforge/internal/shared/errors"
)

// paymentPath is the gateway's hosted checkout endpoint.
const paymentPath = "/_payment"

// Gateway is the PayU adapter.
type Gateway struct {
	merchantKey  string
	merchantSalt string
	baseURL      string
	successURL   string
	failureURL   string
}

func NewGateway(cfg *config.PayUConfig) *Gateway {
	return &Gateway{
		merchantKey:  cfg.MerchantKey,
		merchantSalt: cfg.MerchantSalt,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		successURL:   cfg.SuccessURL,
		failureURL:   cfg.FailureURL,
	}
}

func (g *Gateway) Name() vo.Gateway {
	return vo.GatewayPayU
}

// CreateSession builds the signed field map the client posts to the gateway.
func (g *Gateway) CreateSession(ctx context.Context, req gateway.CreateSessionRequest) (*gateway.SessionDescriptor, error) {
	amount := vo.NewMoney(req.AmountMinorUnits, req.Currency).FixedDecimalString()

	fields := map[string]string{
		"key":              g.merchantKey,
		"txnid":            req.TransactionID,
		"amount":           amount,
		"productinfo":      req.ProductInfo,
		"firstname":        req.FirstName,
		"email":            req.Email,
		"phone":            req.Phone,
		"surl":             g.successURL,
		"furl":             g.failureURL,
		"service_provider": "payu_paisa",
		"udf1":             req.TargetTier,
		"udf2":             "",
		"udf3":             "",
		"udf4":             "",
		"udf5":             "",
	}
	fields["hash"] = g.requestHash(fields)

	return &gateway.SessionDescriptor{
		RedirectURL: g.baseURL + paymentPath,
		Method:      http.MethodPost,
		Fields:      fields,
	}, nil
}

// requestHash computes
// sha512(key|txnid|amount|productinfo|firstname|email|udf1|udf2|udf3|udf4|udf5||||||SALT).
// The trailing empty segments are part of the gateway's contract: every
// optional field is present in the canonical string even when unused.
func (g *Gateway) requestHash(fields map[string]string) string {
	parts := []string{
		fields["key"],
		fields["txnid"],
		fields["amount"],
		fields["productinfo"],
		fields["firstname"],
		fields["email"],
		fields["udf1"],
		fields["udf2"],
		fields["udf3"],
		fields["udf4"],
		fields["udf5"],
		"", "", "", "", "",
		g.merchantSalt,
	}
	return sha512Hex(strings.Join(parts, "|"))
}

// responseHash computes the callback code: the request order reversed with the
// status inserted after the salt.
func (g *Gateway) responseHash(form map[string]string) string {
	parts := []string{
		g.merchantSalt,
		form["status"],
		form["udf5"],
		form["udf4"],
		form["udf3"],
		form["udf2"],
		form["udf1"],
		form["email"],
		form["firstname"],
		form["productinfo"],
		form["amount"],
		form["txnid"],
		g.merchantKey,
	}
	return sha512Hex(strings.Join(parts, "|"))
}

// VerifyCallback authenticates the gateway's form POST and normalizes it.
func (g *Gateway) VerifyCallback(req *http.Request) (*gateway.CallbackData, error) {
	if err := req.ParseForm(); err != nil {
		return nil, apperrors.NewValidationError("failed to parse callback form", err.Error())
	}

	form := make(map[string]string, len(req.PostForm))
	for key := range req.PostForm {
		form[key] = req.PostForm.Get(key)
	}

	if form["txnid"] == "" {
		return nil, apperrors.NewValidationError("callback missing txnid")
	}
	received := strings.ToLower(form["hash"])
	if received == "" {
		return nil, apperrors.NewSignatureMismatchError("callback missing hash")
	}

	expected := g.responseHash(form)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(received)) != 1 {
		return nil, apperrors.NewSignatureMismatchError(
			fmt.Sprintf("hash mismatch for txnid %s", form["txnid"]))
	}

	amountMinorUnits, err := parseAmount(form["amount"])
	if err != nil {
		return nil, apperrors.NewValidationError("invalid callback amount", err.Error())
	}

	return &gateway.CallbackData{
		TransactionID:        form["txnid"],
		GatewayTransactionID: form["mihpayid"],
		Status:               normalizeStatus(form["status"]),
		AmountMinorUnits:     amountMinorUnits,
		Currency:             "INR",
		Email:                form["email"],
		FirstName:            form["firstname"],
		ErrorMessage:         form["error_Message"],
		Raw:                  form,
	}, nil
}

// normalizeStatus maps the gateway's status vocabulary onto ours. Anything
// unrecognized is treated as failed; a verified hash over a garbage status is
// still not a success.
func normalizeStatus(status string) gateway.CallbackStatus {
	switch strings.ToLower(status) {
	case "success":
		return gateway.CallbackStatusSuccess
	case "pending", "in progress":
		return gateway.CallbackStatusPending
	case "cancel", "cancelled", "usercancelled":
		return gateway.CallbackStatusCancelled
	default:
		return gateway.CallbackStatusFailed
	}
}

// parseAmount converts the gateway's fixed-decimal string to minor units
// without going through floats.
func parseAmount(s string) (int64, error) {
	whole, frac, found := strings.Cut(s, ".")
	if whole == "" {
		return 0, fmt.Errorf("empty amount")
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	var cents int64
	if found {
		if len(frac) > 2 {
			frac = frac[:2]
		}
		for len(frac) < 2 {
			frac += "0"
		}
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
	}
	return units*100 + cents, nil
}

func sha512Hex(s string) string {
	sum := sha512.Sum512([]byte(s))
	return hex.EncodeToString(sum[:])
}
