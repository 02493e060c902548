package nav

// Value is a synchronously observed value. Subscribers run on the writer's
// goroutine, in subscription order, only when the value actually changes.
type Value[T comparable] struct {
	v      T
	nextID int
	subs   []subscriber[T]
}

type subscriber[T comparable] struct {
	id int
	fn func(T)
}

// NewValue returns a Value holding initial.
func NewValue[T comparable](initial T) *Value[T] {
	return &Value[T]{v: initial}
}

// Get returns the current value.
func (o *Value[T]) Get() T { return o.v }

// Set stores v and notifies subscribers. Returns false when v equals the
// current value, in which case nobody is notified.
func (o *Value[T]) Set(v T) bool {
	if v == o.v {
		return false
	}
	o.v = v
	// Copy so a subscriber may unsubscribe during notification.
	subs := append([]subscriber[T](nil), o.subs...)
	for _, s := range subs {
		s.fn(v)
	}
	return true
}

// Subscribe registers fn and returns a function that removes it.
func (o *Value[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	o.nextID++
	id := o.nextID
	o.subs = append(o.subs, subscriber[T]{id: id, fn: fn})
	return func() {
		for i, s := range o.subs {
			if s.id == id {
				o.subs = append(o.subs[:i], o.subs[i+1:]...)
				return
			}
		}
	}
}
