package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records order lifecycle events.
type OrderMetrics struct {
	created        *prometheus.CounterVec
	statusUpdates  *prometheus.CounterVec
	codeCollisions prometheus.Counter
	noteConflicts  prometheus.Counter
	unusualMoves   prometheus.Counter
}

// NewOrderMetrics registers the order metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Design requests created, by flow type.",
	}, []string{"flow"})
	statusUpdates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_updates_total",
		Help: "Status updates applied, by target status.",
	}, []string{"status"})
	codeCollisions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_code_collisions_total",
		Help: "Human-readable order codes regenerated after a duplicate.",
	})
	noteConflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_note_conflicts_total",
		Help: "Concurrent status writes that had to be retried.",
	})
	unusualMoves := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "order_unusual_transitions_total",
		Help: "Status updates flagged as unusual.",
	})
	reg.MustRegister(created, statusUpdates, codeCollisions, noteConflicts, unusualMoves)
	return &OrderMetrics{
		created:        created,
		statusUpdates:  statusUpdates,
		codeCollisions: codeCollisions,
		noteConflicts:  noteConflicts,
		unusualMoves:   unusualMoves,
	}
}

// IncCreated counts a newly created order.
func (m *OrderMetrics) IncCreated(flow string) {
	if m == nil || m.created == nil {
		return
	}
	m.created.WithLabelValues(normalizeLabel(flow)).Inc()
}

// IncStatusUpdate counts an applied status update.
func (m *OrderMetrics) IncStatusUpdate(status string) {
	if m == nil || m.statusUpdates == nil {
		return
	}
	m.statusUpdates.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncCodeCollision counts a regenerated order code.
func (m *OrderMetrics) IncCodeCollision() {
	if m == nil || m.codeCollisions == nil {
		return
	}
	m.codeCollisions.Inc()
}

// IncNoteConflict counts a retried concurrent write.
func (m *OrderMetrics) IncNoteConflict() {
	if m == nil || m.noteConflicts == nil {
		return
	}
	m.noteConflicts.Inc()
}

// IncUnusualTransition counts a flagged status move.
func (m *OrderMetrics) IncUnusualTransition() {
	if m == nil || m.unusualMoves == nil {
		return
	}
	m.unusualMoves.Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
