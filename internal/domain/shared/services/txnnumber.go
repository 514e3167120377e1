package services

import (
	"fmt"

	"sceneforge/internal/shared/biztime"
	"sceneforge/internal/shared/id"
)

// TransactionNumberGenerator mints ledger transaction IDs.
type TransactionNumberGenerator interface {
	Generate(prefix string) string
}

// DefaultTransactionNumberGenerator produces IDs of the form
// PREFIX + utc timestamp + base62 random suffix. IDs double as callback
// references, so the next ID must not be predictable from prior ones.
type DefaultTransactionNumberGenerator struct{}

func NewTransactionNumberGenerator() TransactionNumberGenerator {
	return &DefaultTransactionNumberGenerator{}
}

func (g *DefaultTransactionNumberGenerator) Generate(prefix string) string {
	now := biztime.NowUTC()
	return fmt.Sprintf("%s%s%s",
		prefix,
		now.Format("20060102150405"),
		id.MustGenerate(8),
	)
}
