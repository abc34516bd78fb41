package shop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPageMeta(t *testing.T) {
	assert.Equal(t, PageMeta{Total: 0, Page: 1, Limit: 20, TotalPages: 0}, NewPageMeta(0, 1, 20))
	assert.Equal(t, PageMeta{Total: 40, Page: 1, Limit: 20, TotalPages: 2}, NewPageMeta(40, 1, 20))
	assert.Equal(t, PageMeta{Total: 41, Page: 3, Limit: 20, TotalPages: 3}, NewPageMeta(41, 3, 20))
}

func TestPaymentStatusTransitions(t *testing.T) {
	assert.True(t, CanTransition(PaymentCompleted, PaymentCancelled))
	assert.False(t, CanTransition(PaymentCancelled, PaymentCompleted))
	assert.False(t, CanTransition(PaymentCancelled, PaymentCancelled))
}
