// Package metrics exposes prometheus counters for the settlement core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sceneforge"

var (
	// PaymentSessionsTotal counts outbound payment sessions by gateway.
	PaymentSessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_sessions_total",
			Help:      "Total number of payment sessions created",
		},
		[]string{"gateway"},
	)

	// CallbacksTotal counts inbound gateway callbacks by gateway and outcome.
	// Outcomes: success, failed, cancelled, pending, replay, amount_mismatch,
	// signature_mismatch, invalid_payload, unknown_transaction.
	CallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_callbacks_total",
			Help:      "Total number of payment gateway callbacks processed",
		},
		[]string{"gateway", "outcome"},
	)

	// QuotaDenialsTotal counts business-rule quota denials by kind.
	QuotaDenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quota_denials_total",
			Help:      "Total number of quota check denials",
		},
		[]string{"kind"},
	)

	// TokenReissuesTotal counts tokens re-minted by the reconciler.
	TokenReissuesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_reissues_total",
			Help:      "Total number of entitlement tokens reissued after divergence",
		},
	)

	// StuckUpgradesRepairedTotal counts paid-but-not-upgraded users healed by the sweep.
	StuckUpgradesRepairedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stuck_upgrades_repaired_total",
			Help:      "Total number of successful transactions whose entitlement upgrade was completed by the sweep",
		},
	)
)
