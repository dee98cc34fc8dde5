package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	reservationOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pensionado",
			Name:      "reservation_operations_total",
			Help:      "Reservation operations by kind and outcome.",
		},
		[]string{"operation", "result"},
	)

	storeErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pensionado",
			Name:      "store_errors_total",
			Help:      "Reservation storage failures by operation.",
		},
		[]string{"operation"},
	)

	corruptTables = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pensionado",
			Name:      "store_corrupt_reads_total",
			Help:      "Reads of an unparseable reservation table.",
		},
	)
)

const (
	ResultOK        = "ok"
	ResultRejected  = "rejected"
	ResultError     = "error"
	ResultNoop      = "noop"
	ResultNotFound  = "not_found"
	ResultDuplicate = "in_flight"
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(reservationOps, storeErrors, corruptTables)
	})
}

// WriteTextfile dumps the default registry in the node-exporter textfile format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}

func IncReservationOp(operation, result string) {
	reservationOps.WithLabelValues(operation, result).Inc()
}

func IncStoreError(operation string) {
	storeErrors.WithLabelValues(operation).Inc()
}

func IncCorruptTable() {
	corruptTables.Inc()
}
