package query

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// rowsDropped counts page rows omitted because their author could not be
// resolved. A steady climb usually means member/user rows were purged
// while their messages were not.
var rowsDropped = promauto.NewCounter(prometheus.CounterOpts{
	Name: "chatstore_page_rows_dropped_total",
	Help: "Page rows dropped due to unresolvable author identity.",
})
