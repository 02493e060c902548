package nav

import "errors"

var (
	// ErrInvalidIndex means a page index outside [0, N-1]. Nothing is mutated.
	ErrInvalidIndex = errors.New("nav: invalid page index")
	// ErrTransitionConflict means a transition was requested while another is in flight.
	ErrTransitionConflict = errors.New("nav: transition already active")
	// ErrUnroutablePath means a route string matched no page; the default page is used.
	ErrUnroutablePath = errors.New("nav: path matches no page")
	// ErrNoGesture means a gesture update or settle arrived without an active gesture.
	ErrNoGesture = errors.New("nav: no active gesture")
)
