package valueobjects

import "fmt"

// Gateway identifies a payment gateway adapter. Two concrete adapters exist:
// payu for domestic (INR) settlement, stripe for international cards.
type Gateway string

const (
	GatewayPayU   Gateway = "payu"
	GatewayStripe Gateway = "stripe"
)

func NewGateway(s string) (Gateway, error) {
	g := Gateway(s)
	if !g.IsValid() {
		return "", fmt.Errorf("unknown payment gateway: %s", s)
	}
	return g, nil
}

func (g Gateway) IsValid() bool {
	switch g {
	case GatewayPayU, GatewayStripe:
		return true
	default:
		return false
	}
}

func (g Gateway) String() string {
	return string(g)
}
