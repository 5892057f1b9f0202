package questionnaire

// Observer is notified after every successful transition. Presentation drivers
// implement it to show the section that matches the new state. The State
// passed in shares its ratings map with the navigator and must not be modified.
type Observer interface {
	StateChanged(State)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(State)

// StateChanged calls f(s).
func (f ObserverFunc) StateChanged(s State) { f(s) }

// CompletionHandler receives the mood once the questionnaire is complete.
// It is called exactly once per session.
type CompletionHandler func(Mood)

// Navigator drives a State, notifies observers and hands the final mood to the
// completion handler.
type Navigator struct {
	state      State
	observers  []Observer
	onComplete CompletionHandler
}

// NewNavigator wraps an existing state. onComplete may be nil.
func NewNavigator(state State, onComplete CompletionHandler, observers ...Observer) *Navigator {
	return &Navigator{
		state:      state,
		observers:  observers,
		onComplete: onComplete,
	}
}

// Start creates a navigator over a freshly shuffled session and notifies the
// observers of the initial state.
func Start(r Rand, onComplete CompletionHandler, observers ...Observer) *Navigator {
	n := NewNavigator(NewState(r), onComplete, observers...)
	n.notify()
	return n
}

// State returns the current state.
func (n *Navigator) State() State {
	return n.state
}

// Rate records a rating for the current item.
func (n *Navigator) Rate(rating int) error {
	return n.apply(func(s *State) error { return s.Rate(rating) })
}

// RateItem records a rating for the current item if it is labelled label.
func (n *Navigator) RateItem(label string, rating int) error {
	return n.apply(func(s *State) error { return s.RateItem(label, rating) })
}

// Proceed leaves the item stage.
func (n *Navigator) Proceed() error {
	return n.apply(func(s *State) error { return s.Proceed() })
}

// SelectValence records the valence answer.
func (n *Navigator) SelectValence(v float64) error {
	return n.apply(func(s *State) error { return s.SelectValence(v) })
}

// Submit records the arousal answer, scores the session and runs the
// completion handler.
func (n *Navigator) Submit(arousal int) (Result, error) {
	var res Result
	err := n.apply(func(s *State) error {
		var err error
		res, err = s.Submit(arousal)
		return err
	})
	if err != nil {
		return Result{}, err
	}

	if n.onComplete != nil {
		n.onComplete(res.Mood)
	}
	return res, nil
}

func (n *Navigator) apply(fn func(*State) error) error {
	if err := fn(&n.state); err != nil {
		return err
	}
	n.notify()
	return nil
}

func (n *Navigator) notify() {
	for _, o := range n.observers {
		o.StateChanged(n.state)
	}
}
