package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OffersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_offers_total",
			Help: "Assignment offers by result",
		},
		[]string{"result"},
	)

	AssignmentReleasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_assignment_releases_total",
			Help: "Assignments released back to the unassigned queue by cause",
		},
		[]string{"cause"},
	)

	DeliveryPINFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_delivery_pin_failures_total",
			Help: "Delivery attempts rejected because of a wrong PIN",
		},
	)

	LocationPingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_location_pings_total",
			Help: "Courier location pings by result",
		},
		[]string{"result"},
	)

	SubscriptionsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dispatch_subscriptions_active",
			Help: "Open order/fleet subscriptions",
		},
		[]string{"kind"},
	)
)
