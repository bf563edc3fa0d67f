package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type CreditMetrics struct {
	DecisionsTotal *prometheus.CounterVec
	LoansCreated   prometheus.Counter
	PaymentsTotal  *prometheus.CounterVec
	LoansPaidOff   prometheus.Counter
}

type ExposureMetrics struct {
	CustomersScanned   prometheus.Gauge
	CustomersOverLimit prometheus.Gauge
	TotalExposure      prometheus.Gauge
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "credit_engine_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Credit = CreditMetrics{
		DecisionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_engine_decisions_total",
				Help: "Total number of eligibility decisions by outcome and reason.",
			},
			[]string{"outcome", "reason"},
		),
		LoansCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "credit_engine_loans_created_total",
				Help: "Total number of loans persisted after approval.",
			},
		),
		PaymentsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "credit_engine_payments_total",
				Help: "Total number of payment attempts by status.",
			},
			[]string{"status"},
		),
		LoansPaidOff: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "credit_engine_loans_paid_off_total",
				Help: "Total number of loans fully repaid.",
			},
		),
	}

	Exposure = ExposureMetrics{
		CustomersScanned: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "credit_engine_exposure_customers_scanned",
				Help: "Customers with active loans evaluated by the last exposure snapshot.",
			},
		),
		CustomersOverLimit: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "credit_engine_exposure_customers_over_limit",
				Help: "Customers whose active exposure exceeded the approved limit in the last snapshot.",
			},
		),
		TotalExposure: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "credit_engine_exposure_total",
				Help: "Sum of active principal across all customers in the last snapshot.",
			},
		),
	}
)

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordDecision(approved bool, reason string) {
	outcome := "rejected"
	if approved {
		outcome = "approved"
	}
	Credit.DecisionsTotal.WithLabelValues(outcome, reason).Inc()
}

func RecordLoanCreated() {
	Credit.LoansCreated.Inc()
}

func RecordPayment(status string) {
	Credit.PaymentsTotal.WithLabelValues(status).Inc()
}

func RecordLoanPaidOff() {
	Credit.LoansPaidOff.Inc()
}

func RecordExposureSnapshot(scanned, overLimit int, totalExposure float64) {
	Exposure.CustomersScanned.Set(float64(scanned))
	Exposure.CustomersOverLimit.Set(float64(overLimit))
	Exposure.TotalExposure.Set(totalExposure)
}
