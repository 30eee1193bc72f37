package models

import (
	"fmt"
	"strings"
)

// OrderStatus is the fulfillment status of a design request
type OrderStatus string

const (
	StatusNew        OrderStatus = "New"
	StatusContacted  OrderStatus = "Contacted"
	StatusQuoted     OrderStatus = "Quoted"
	StatusProduction OrderStatus = "Production"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

// progressSteps is the order the tracking page renders its progress bar in.
// Cancelled is terminal and sits outside the sequence.
var progressSteps = []OrderStatus{
	StatusNew,
	StatusContacted,
	StatusQuoted,
	StatusProduction,
	StatusShipped,
	StatusDelivered,
}

// AllStatuses returns the full taxonomy, progress steps first then Cancelled
func AllStatuses() []OrderStatus {
	all := ProgressSteps()
	return append(all, StatusCancelled)
}

// ProgressSteps returns a copy of the ordered non-Cancelled statuses
func ProgressSteps() []OrderStatus {
	steps := make([]OrderStatus, len(progressSteps))
	copy(steps, progressSteps)
	return steps
}

// ProgressIndex is the position of s in ProgressSteps, or -1 for Cancelled and unknown values
func ProgressIndex(s OrderStatus) int {
	for i, step := range progressSteps {
		if step == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is one of the seven taxonomy values
func (s OrderStatus) Valid() bool {
	return s == StatusCancelled || ProgressIndex(s) >= 0
}

// IsTerminal reports whether s ends the lifecycle
func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// ParseStatus validates a raw status value. Matching is exact.
func ParseStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown order status %q", raw)
	}
	return s, nil
}

// TransitionAdvice flags status moves an admin might not have meant to make.
// It never blocks a transition.
type TransitionAdvice struct {
	Unusual bool   `json:"unusual"`
	Reason  string `json:"reason,omitempty"`
}

// CheckTransition inspects a from→to status move
func CheckTransition(from, to OrderStatus) TransitionAdvice {
	if from == to {
		return TransitionAdvice{}
	}

	if from.IsTerminal() {
		switch {
		case from == StatusDelivered && to == StatusCancelled:
			return TransitionAdvice{Unusual: true, Reason: "cancelling an order that was already delivered"}
		default:
			return TransitionAdvice{Unusual: true, Reason: "re-opening a " + strings.ToLower(string(from)) + " order"}
		}
	}
	if to == StatusCancelled {
		return TransitionAdvice{}
	}

	fromIdx, toIdx := ProgressIndex(from), ProgressIndex(to)
	if fromIdx < 0 || toIdx < 0 {
		return TransitionAdvice{}
	}
	if toIdx < fromIdx {
		return TransitionAdvice{Unusual: true, Reason: fmt.Sprintf("moving backwards from %s to %s", from, to)}
	}
	if toIdx-fromIdx > 1 {
		return TransitionAdvice{Unusual: true, Reason: fmt.Sprintf("skipping %d step(s) between %s and %s", toIdx-fromIdx-1, from, to)}
	}
	return TransitionAdvice{}
}
