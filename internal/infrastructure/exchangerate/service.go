package exchangerate

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	vo "sceneforge/internal/domain/billing/valueobjects"
	sharedConfig "sceneforge/internal/shared/config"
	"sceneforge/internal/shared/logger"
)

// StaticRateService converts settled amounts into the configured display
// currency using fixed rates from configuration. Rates are expressed as the
// number of source currency units per one display currency unit, e.g.
// rates["INR"] = 83.0 means 83 INR buys 1 USD.
//
// Display only. The transaction ledger always stays in the settlement
// currency; a bad rate here can never corrupt stored amounts.
type StaticRateService struct {
	displayCurrency string
	rates           map[string]float64
	printer         *message.Printer
	logger          logger.Interface
}

func NewStaticRateService(cfg sharedConfig.ExchangeRateConfig, log logger.Interface) *StaticRateService {
	rates := make(map[string]float64, len(cfg.Rates))
	for code, rate := range cfg.Rates {
		rates[strings.ToUpper(code)] = rate
	}

	display := strings.ToUpper(cfg.DisplayCurrency)
	if display == "" {
		display = "USD"
	}

	return &StaticRateService{
		displayCurrency: display,
		rates:           rates,
		printer:         message.NewPrinter(language.English),
		logger:          log,
	}
}

// Display renders the amount in the display currency with two fraction
// digits. Returns an error when no rate is configured for the amount's
// currency; callers fall back to the settlement currency.
func (s *StaticRateService) Display(ctx context.Context, amount vo.Money) (string, string, error) {
	source := strings.ToUpper(amount.Currency())

	if source == s.displayCurrency {
		return amount.FixedDecimalString(), s.displayCurrency, nil
	}

	rate, ok := s.rates[source]
	if !ok || rate <= 0 {
		return "", "", fmt.Errorf("no exchange rate configured for %s", source)
	}

	converted := float64(amount.AmountMinorUnits()) / 100 / rate
	value := s.printer.Sprint(number.Decimal(converted,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))

	return value, s.displayCurrency, nil
}
