package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/certibase/backend/internal/domain/events"
)

func TestEventBusPublishInOrder(t *testing.T) {
	bus := NewEventBus()

	var calls []string
	bus.Subscribe(events.LeadConverted, func(ctx context.Context, payload interface{}) error {
		calls = append(calls, "first")
		return nil
	})
	bus.Subscribe(events.LeadConverted, func(ctx context.Context, payload interface{}) error {
		calls = append(calls, "second")
		return nil
	})

	err := bus.Publish(context.Background(), events.LeadConverted, events.LeadConvertedPayload{LeadID: "l1"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestEventBusHandlerErrorStopsChain(t *testing.T) {
	bus := NewEventBus()

	called := false
	bus.Subscribe(events.OpportunityWon, func(ctx context.Context, payload interface{}) error {
		return errors.New("handler failure")
	})
	bus.Subscribe(events.OpportunityWon, func(ctx context.Context, payload interface{}) error {
		called = true
		return nil
	})

	err := bus.Publish(context.Background(), events.OpportunityWon, events.OpportunityWonPayload{})
	assert.Error(t, err)
	assert.False(t, called)
}

func TestEventBusNoHandlers(t *testing.T) {
	bus := NewEventBus()
	assert.NoError(t, bus.Publish(context.Background(), events.ContractActivated, nil))
}

func TestEventBusPublishAsync(t *testing.T) {
	bus := NewEventBus()

	var wg sync.WaitGroup
	wg.Add(1)
	var got interface{}
	bus.Subscribe(events.CertificationIssued, func(ctx context.Context, payload interface{}) error {
		got = payload
		wg.Done()
		return nil
	})

	bus.PublishAsync(events.CertificationIssued, events.CertificationIssuedPayload{CertificationID: "c1"})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("async handler was not invoked")
	}

	payload, ok := got.(events.CertificationIssuedPayload)
	assert.True(t, ok)
	assert.Equal(t, "c1", payload.CertificationID)
}

func TestEventBusClear(t *testing.T) {
	bus := NewEventBus()

	called := false
	bus.Subscribe(events.PipelineAdvanced, func(ctx context.Context, payload interface{}) error {
		called = true
		return nil
	})
	bus.Clear()

	assert.NoError(t, bus.Publish(context.Background(), events.PipelineAdvanced, nil))
	assert.False(t, called)
}
