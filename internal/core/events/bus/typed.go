package bus

import (
	"errors"
	"fmt"
)

// SubscribeTo registers a handler for events of type T. The routing key is
// taken from the zero value of T, so T must be a value type whose Type method
// does not depend on its fields.
func SubscribeTo[T Event](b EventBus, handler func(T) error) (Subscription, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	var zero T
	etype := zero.Type()
	return b.Subscribe(etype, func(e Event) error {
		ev, ok := e.(T)
		if !ok {
			return fmt.Errorf("%w: %s delivered %T", ErrEventTypeMismatch, etype, e)
		}
		return handler(ev)
	})
}

// Subscriptions is a set of handles owned by one consumer.
type Subscriptions []Subscription

// Add appends sub, ignoring nil.
func (s *Subscriptions) Add(sub Subscription) {
	if sub != nil {
		*s = append(*s, sub)
	}
}

// Cancel cancels every handle and empties the set.
func (s *Subscriptions) Cancel() error {
	var all error
	for _, sub := range *s {
		if err := sub.Cancel(); err != nil {
			all = errors.Join(all, err)
		}
	}
	*s = (*s)[:0]
	return all
}
