package dashboard

// Slot exclusively owns one rendered instance. Replacing the instance releases
// the previous one first, so two instances never share a render target.
type Slot[T any] struct {
	current *T
	release func(T)
}

// NewSlot returns an empty slot. release is called on every instance the slot
// gives up; it may be nil.
func NewSlot[T any](release func(T)) *Slot[T] {
	return &Slot[T]{release: release}
}

// Replace tears down the current instance, if any, and installs v.
func (s *Slot[T]) Replace(v T) {
	s.Release()
	s.current = &v
}

// Release tears down the current instance and leaves the slot empty.
func (s *Slot[T]) Release() {
	if s.current == nil {
		return
	}
	old := *s.current
	s.current = nil
	if s.release != nil {
		s.release(old)
	}
}

// Current returns the held instance.
func (s *Slot[T]) Current() (T, bool) {
	if s.current == nil {
		var zero T
		return zero, false
	}
	return *s.current, true
}
