package kafka

import (
	"context"
	"testing"
)

// Graceful shutdown signals the producer twice: Close() from main and the
// context cancellation stopping the loop. Whichever select branch wins, the
// inbox must only be closed once and WaitClosed must return.

func TestProducerShutdownCloseThenCancel(t *testing.T) {
	for i := 0; i < 200; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		p := NewProducer([]string{"localhost:9092"}, "test.topic", 16)
		p.Start(ctx)
		p.Close()
		cancel()
		p.WaitClosed()
	}
}

func TestProducerShutdownCancelThenClose(t *testing.T) {
	for i := 0; i < 200; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		p := NewProducer([]string{"localhost:9092"}, "test.topic", 16)
		p.Start(ctx)
		cancel()
		p.Close()
		p.WaitClosed()
	}
}
