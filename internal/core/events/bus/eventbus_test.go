package bus

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct{ Value int }

func (testEvent) Type() string { return "test.event" }

type otherEvent struct{}

func (otherEvent) Type() string { return "test.other" }

type testObserver struct {
	publishCount   int
	deliveredCount int
	lastErr        error
}

func (o *testObserver) OnPublish(_ string, _ Event) {
	o.publishCount++
}

func (o *testObserver) OnDelivered(_ string, handlers int, err error, _ int64) {
	o.deliveredCount += handlers
	o.lastErr = err
}

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	got := 0
	_, err := b.Subscribe("test.event", func(e Event) error {
		got += e.(testEvent).Value
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, b.Publish(testEvent{Value: 3}))
	assert.Equal(t, 3, got)
	assert.NoError(t, b.Publish(otherEvent{}))
	assert.Equal(t, 3, got)
}

func TestDeliveryFollowsSubscriptionOrder(t *testing.T) {
	b := New()
	var order []int
	for i := range 16 {
		_, err := b.Subscribe("test.event", func(Event) error {
			order = append(order, i)
			return nil
		})
		require.NoError(t, err)
	}
	require.NoError(t, b.Publish(testEvent{}))
	for i, v := range order {
		assert.Equal(t, i, v)
	}
	assert.Len(t, order, 16)
}

func TestCancel(t *testing.T) {
	b := New()
	calls := 0
	s1, _ := b.Subscribe("test.event", func(Event) error { calls++; return nil })
	s2, _ := b.Subscribe("test.event", func(Event) error { calls += 10; return nil })
	require.Equal(t, 2, b.Subscribers("test.event"))

	require.NoError(t, s1.Cancel())
	assert.False(t, s1.IsActive())
	assert.True(t, s2.IsActive())
	assert.NotEqual(t, s1.ID(), s2.ID())
	require.NoError(t, s1.Cancel())
	require.NoError(t, b.Unsubscribe(nil))

	require.NoError(t, b.Publish(testEvent{}))
	assert.Equal(t, 10, calls)
	assert.Equal(t, 1, b.Subscribers("test.event"))
}

func TestCancelDuringDelivery(t *testing.T) {
	b := New()
	calls := 0
	var s2 Subscription
	_, _ = b.Subscribe("test.event", func(Event) error {
		_ = s2.Cancel()
		return nil
	})
	s2, _ = b.Subscribe("test.event", func(Event) error { calls++; return nil })

	require.NoError(t, b.Publish(testEvent{}))
	require.NoError(t, b.Publish(testEvent{}))
	assert.Equal(t, 1, calls)
}

func TestHandlerErrorsJoined(t *testing.T) {
	b := New()
	e1 := errors.New("first")
	e2 := errors.New("second")
	_, _ = b.Subscribe("test.event", func(Event) error { return e1 })
	_, _ = b.Subscribe("test.event", func(Event) error { return nil })
	_, _ = b.Subscribe("test.event", func(Event) error { return e2 })

	err := b.Publish(testEvent{})
	require.Error(t, err)
	assert.ErrorIs(t, err, e1)
	assert.ErrorIs(t, err, e2)

	err = b.PublishBatch(testEvent{}, otherEvent{}, testEvent{})
	assert.ErrorIs(t, err, e1)
}

func TestSubscribeValidation(t *testing.T) {
	b := New()
	_, err := b.Subscribe("", func(Event) error { return nil })
	assert.ErrorIs(t, err, ErrEmptyEventType)
	_, err = b.Subscribe("x", nil)
	assert.ErrorIs(t, err, ErrNilHandler)
	assert.ErrorIs(t, b.Publish(nil), ErrNilEvent)
}

func TestFilters(t *testing.T) {
	b := New()
	obs := &testObserver{}
	b.AddObserver(obs)
	calls := 0
	_, _ = b.Subscribe("test.event", func(Event) error { calls++; return nil })

	odd := func(e Event) bool { return e.(testEvent).Value%2 == 1 }
	require.NoError(t, b.PublishWithFilters(testEvent{Value: 2}, odd))
	require.NoError(t, b.PublishWithFilters(testEvent{Value: 3}, odd))
	assert.Equal(t, 1, calls)
	assert.Equal(t, uint64(1), b.GetMetrics().DroppedByFilters)
}

func TestObserverMetricsOptional(t *testing.T) {
	b := New()
	_, _ = b.Subscribe("test.event", func(Event) error { return nil })
	_ = b.Publish(testEvent{})
	assert.Zero(t, b.GetMetrics().Published)

	obs := &testObserver{}
	b.AddObserver(obs)
	_ = b.Publish(testEvent{})
	m := b.GetMetrics()
	assert.Equal(t, uint64(1), m.Published)
	assert.Equal(t, uint64(1), m.DeliveredHandlers)
	assert.Equal(t, uint64(1), m.SubscribersActive)
	assert.Equal(t, 1, obs.publishCount)
	assert.Equal(t, 1, obs.deliveredCount)

	b.RemoveObserver(obs)
	_ = b.Publish(testEvent{})
	assert.Equal(t, 1, obs.publishCount)
}

func TestSubscribeTo(t *testing.T) {
	b := New()
	sum := 0
	var subs Subscriptions
	s, err := SubscribeTo(b, func(e testEvent) error {
		sum += e.Value
		return nil
	})
	require.NoError(t, err)
	subs.Add(s)
	subs.Add(nil)
	require.Len(t, subs, 1)

	require.NoError(t, b.Publish(testEvent{Value: 4}))
	assert.Equal(t, 4, sum)

	require.NoError(t, subs.Cancel())
	require.NoError(t, b.Publish(testEvent{Value: 4}))
	assert.Equal(t, 4, sum)
	assert.Empty(t, subs)
}

type impostor struct{}

func (impostor) Type() string { return "test.event" }

func TestSubscribeToMismatch(t *testing.T) {
	b := New()
	_, err := SubscribeTo(b, func(testEvent) error { return nil })
	require.NoError(t, err)
	assert.ErrorIs(t, b.Publish(impostor{}), ErrEventTypeMismatch)
}
