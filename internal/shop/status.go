package shop

type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentCancelled PaymentStatus = "CANCELLED"
)

var validNext = map[PaymentStatus]map[PaymentStatus]bool{
	PaymentCompleted: {PaymentCancelled: true},
	PaymentCancelled: {},
}

// CanTransition reports whether a payment may move from one status to
// another. Cancellation is one-way: a cancelled payment never comes back.
func CanTransition(from, to PaymentStatus) bool {
	return validNext[from][to]
}
