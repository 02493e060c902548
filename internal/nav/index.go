package nav

import "fmt"

// IndexStore holds the settled active page index. It never holds a
// fractional or in-between position: Commit is called only on settle.
type IndexStore struct {
	count int
	value *Value[int]
}

// NewIndexStore returns a store for count pages. initial must be valid.
func NewIndexStore(count, initial int) (*IndexStore, error) {
	s := &IndexStore{count: count}
	if err := s.check(initial); err != nil {
		return nil, err
	}
	s.value = NewValue(initial)
	return s, nil
}

// Commit sets the active index. An unchanged index is a no-op.
func (s *IndexStore) Commit(index int) error {
	if err := s.check(index); err != nil {
		return err
	}
	s.value.Set(index)
	return nil
}

// Active returns the settled index.
func (s *IndexStore) Active() int { return s.value.Get() }

// Count returns N.
func (s *IndexStore) Count() int { return s.count }

// Subscribe is notified whenever the committed index changes.
func (s *IndexStore) Subscribe(fn func(int)) func() {
	return s.value.Subscribe(fn)
}

func (s *IndexStore) check(index int) error {
	if index < 0 || index >= s.count {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidIndex, index, s.count-1)
	}
	return nil
}
