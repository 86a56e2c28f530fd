package domain

type CheckoutStatus string

const (
	CheckoutStatusIdle           CheckoutStatus = "IDLE"
	CheckoutStatusCartReview     CheckoutStatus = "CART_REVIEW"
	CheckoutStatusOrderCaptured  CheckoutStatus = "ORDER_CAPTURED"
	CheckoutStatusPaymentPending CheckoutStatus = "PAYMENT_PENDING"
	CheckoutStatusConfirmed      CheckoutStatus = "CONFIRMED"
)

var transitions = map[CheckoutStatus][]CheckoutStatus{
	CheckoutStatusIdle:           {CheckoutStatusCartReview},
	CheckoutStatusCartReview:     {CheckoutStatusOrderCaptured, CheckoutStatusIdle},
	CheckoutStatusOrderCaptured:  {CheckoutStatusPaymentPending, CheckoutStatusIdle},
	CheckoutStatusPaymentPending: {CheckoutStatusConfirmed, CheckoutStatusIdle},
	CheckoutStatusConfirmed:      {CheckoutStatusIdle},
}

// CanTransitionTo reports whether the pipeline may move from one status to the next.
// The only backward move is to Idle, when the checkout panel is closed.
func CanTransitionTo(from, to CheckoutStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusConfirmed
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}
