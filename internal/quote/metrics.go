package quote

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	quoteRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_requests_total",
		Help: "Quote requests by outcome reason",
	}, []string{"reason"})

	quoteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quote_build_duration_seconds",
		Help:    "End to end quote build time including catalog reads",
		Buckets: prometheus.DefBuckets,
	})

	quoteListings = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quote_listings_resolved",
		Help:    "Listings returned by the catalog per quote",
		Buckets: []float64{0, 5, 10, 25, 50, 100, 250, 500, 1000},
	})

	quoteStores = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quote_stores_selected",
		Help:    "Stores that made it into the comparison matrix",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13},
	})
)

func recordQuote(reason Reason, listings, stores int, start time.Time) {
	quoteRequests.WithLabelValues(string(reason)).Inc()
	quoteDuration.Observe(time.Since(start).Seconds())
	quoteListings.Observe(float64(listings))
	quoteStores.Observe(float64(stores))
}
