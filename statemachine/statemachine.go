// Package statemachine is the single authority on order lifecycle
// transitions. Every status write in the service layer goes through it;
// caller-supplied status strings are never trusted.
package statemachine

import (
	"fmt"

	"github.com/mohdyaserkt/Multi-Vendor-eCommerce-Prototype/models"
)

// InvalidTransitionError names the current and requested states so callers
// can surface the rejection as a conflict rather than a crash.
type InvalidTransitionError struct {
	Field string
	From  string
	To    string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition from %s to %s", e.Field, e.From, e.To)
}

// DELIVERED and CANCELLED are terminal: no outgoing edges.
var orderTransitions = map[string][]string{
	models.OrderStatusPending:   {models.OrderStatusConfirmed, models.OrderStatusCancelled},
	models.OrderStatusConfirmed: {models.OrderStatusShipped, models.OrderStatusCancelled},
	models.OrderStatusShipped:   {models.OrderStatusDelivered, models.OrderStatusCancelled},
	models.OrderStatusDelivered: {},
	models.OrderStatusCancelled: {},
}

var paymentTransitions = map[string][]string{
	models.PaymentStatusPending:  {models.PaymentStatusPaid, models.PaymentStatusFailed},
	models.PaymentStatusFailed:   {models.PaymentStatusPending, models.PaymentStatusPaid},
	models.PaymentStatusPaid:     {models.PaymentStatusRefunded},
	models.PaymentStatusRefunded: {},
}

// ValidateOrderStatus checks a status transition against the order graph.
func ValidateOrderStatus(from, to string) error {
	return validate("status", orderTransitions, from, to)
}

// ValidatePaymentStatus checks a transition against the payment graph.
func ValidatePaymentStatus(from, to string) error {
	return validate("paymentStatus", paymentTransitions, from, to)
}

// IsOrderStatus reports whether s is a known order status.
func IsOrderStatus(s string) bool {
	_, ok := orderTransitions[s]
	return ok
}

// IsPaymentStatus reports whether s is a known payment status.
func IsPaymentStatus(s string) bool {
	_, ok := paymentTransitions[s]
	return ok
}

func validate(field string, graph map[string][]string, from, to string) error {
	targets, ok := graph[from]
	if !ok {
		return &InvalidTransitionError{Field: field, From: from, To: to}
	}
	for _, t := range targets {
		if t == to {
			return nil
		}
	}
	return &InvalidTransitionError{Field: field, From: from, To: to}
}
