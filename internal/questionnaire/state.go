package questionnaire

import "fmt"

// Stage is the questionnaire section currently shown to the user.
type Stage int

const (
	StageItems    Stage = iota // Rating inventory items one by one
	StageValence               // Choosing a point on the valence scale
	StageArousal               // Choosing a point on the arousal scale and submitting
	StageComplete              // Mood computed, no further input accepted
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageItems:
		return "items"
	case StageValence:
		return "valence"
	case StageArousal:
		return "arousal"
	case StageComplete:
		return "complete"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Encouragement is shown on the 18th item.
const Encouragement = "Just a little bit more to go.."

const encouragementCursor = 17

// State is the full questionnaire session. Transitions either apply completely
// or return an error and leave the state as it was.
type State struct {
	Order     []Item    `json:"order"`
	Cursor    int       `json:"cursor"`
	Stage     Stage     `json:"stage"`
	Responses Responses `json:"responses"`
	Mood      Mood      `json:"mood,omitempty"`
}

// NewState starts a session with a freshly shuffled item order.
func NewState(r Rand) State {
	return State{
		Order:     Shuffle(Catalog(), r),
		Stage:     StageItems,
		Responses: NewResponses(),
	}
}

// CurrentItem returns the item under the cursor while items are being rated.
func (s State) CurrentItem() (Item, bool) {
	if s.Stage != StageItems || s.Cursor < 0 || s.Cursor >= len(s.Order) {
		return Item{}, false
	}
	return s.Order[s.Cursor], true
}

// CurrentRating returns the rating already given to the item under the cursor.
func (s State) CurrentRating() (int, bool) {
	it, ok := s.CurrentItem()
	if !ok {
		return 0, false
	}
	return s.Responses.Rating(it.Label)
}

// Progress returns the 1-based position and the total item count.
// After the item stage the position stays at the total.
func (s State) Progress() (int, int) {
	if s.Stage != StageItems {
		return ItemCount, ItemCount
	}
	return s.Cursor + 1, ItemCount
}

// CanProceed reports whether the proceed action is visible.
func (s State) CanProceed() bool {
	return s.Stage == StageItems && s.Cursor == ItemCount-1
}

// Encouragement returns the message for the current position, or "".
func (s State) Encouragement() string {
	if s.Stage == StageItems && s.Cursor == encouragementCursor {
		return Encouragement
	}
	return ""
}

// Rate records a rating for the current item. Before the last item the cursor
// advances; on the last item the rating can be changed until Proceed is called.
func (s *State) Rate(rating int) error {
	it, ok := s.CurrentItem()
	if !ok {
		return fmt.Errorf("%w: rating in stage %s", ErrWrongStage, s.Stage)
	}
	if err := s.Responses.Rate(it.Label, rating); err != nil {
		return err
	}
	if s.Cursor < ItemCount-1 {
		s.Cursor++
	}
	return nil
}

// RateItem is Rate for a driver that cannot be sure the user saw the current
// item, such as a resubmitted web form. A label other than the current item's
// is rejected with ErrStaleItem.
func (s *State) RateItem(label string, rating int) error {
	it, ok := s.CurrentItem()
	if !ok {
		return fmt.Errorf("%w: rating in stage %s", ErrWrongStage, s.Stage)
	}
	if label != it.Label {
		return fmt.Errorf("%w: got %q while %q is shown", ErrStaleItem, label, it.Label)
	}
	return s.Rate(rating)
}

// Proceed leaves the item stage once the last item has a rating.
func (s *State) Proceed() error {
	if s.Stage != StageItems {
		return fmt.Errorf("%w: proceed in stage %s", ErrWrongStage, s.Stage)
	}
	if !s.CanProceed() {
		return fmt.Errorf("%w: %d of %d items shown", ErrIncomplete, s.Cursor+1, ItemCount)
	}
	if _, rated := s.CurrentRating(); !rated {
		return fmt.Errorf("%w: please select a rating for the last question", ErrIncomplete)
	}
	s.Stage = StageValence
	return nil
}

// SelectValence records the valence answer and moves on to the arousal scale.
func (s *State) SelectValence(v float64) error {
	if s.Stage != StageValence {
		return fmt.Errorf("%w: valence in stage %s", ErrWrongStage, s.Stage)
	}
	if err := s.Responses.SetValence(v); err != nil {
		return err
	}
	s.Stage = StageArousal
	return nil
}

// Submit records the arousal answer and scores the session. Pass NoSelection
// when the user submitted without choosing a value.
func (s *State) Submit(arousal int) (Result, error) {
	if s.Stage != StageArousal {
		return Result{}, fmt.Errorf("%w: submit in stage %s", ErrWrongStage, s.Stage)
	}
	if s.Responses.Valence == nil {
		return Result{}, fmt.Errorf("%w: valence score is missing, please restart", ErrInvariant)
	}
	if arousal == NoSelection {
		return Result{}, fmt.Errorf("%w: please select a rating for your energy level", ErrIncomplete)
	}

	next := s.Responses
	if err := next.SetArousal(arousal); err != nil {
		return Result{}, err
	}

	res, err := Evaluate(next)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvariant, err)
	}

	s.Responses = next
	s.Stage = StageComplete
	s.Mood = res.Mood
	return res, nil
}

// Validate checks a state that came from outside the process, such as a cache.
func (s State) Validate() error {
	if len(s.Order) != ItemCount {
		return fmt.Errorf("%w: order has %d items", ErrInvariant, len(s.Order))
	}
	seen := make(map[string]bool, ItemCount)
	for _, it := range s.Order {
		ref, ok := Lookup(it.Label)
		if !ok || ref.Polarity != it.Polarity || seen[it.Label] {
			return fmt.Errorf("%w: order is not a permutation of the catalog", ErrInvariant)
		}
		seen[it.Label] = true
	}
	if s.Stage < StageItems || s.Stage > StageComplete {
		return fmt.Errorf("%w: unknown stage %d", ErrInvariant, int(s.Stage))
	}
	if s.Cursor < 0 || s.Cursor >= ItemCount {
		return fmt.Errorf("%w: cursor %d out of range", ErrInvariant, s.Cursor)
	}
	for label, rating := range s.Responses.Ratings {
		if _, ok := Lookup(label); !ok || rating < MinRating || rating > MaxRating {
			return fmt.Errorf("%w: bad rating %q=%d", ErrInvariant, label, rating)
		}
	}
	if v := s.Responses.Valence; v != nil && !ValidValence(*v) {
		return fmt.Errorf("%w: valence %v not one of %v", ErrInvariant, *v, ValenceOptions)
	}
	if v := s.Responses.Arousal; v != nil && !ValidArousal(*v) {
		return fmt.Errorf("%w: arousal %d not in [%d,%d]", ErrInvariant, *v, MinArousal, MaxArousal)
	}
	return s.validateProgress()
}

// validateProgress checks that the answers match the stage. A missing valence
// in the arousal stage is left for Submit to report.
func (s State) validateProgress() error {
	if s.Stage == StageItems {
		for i, it := range s.Order {
			_, rated := s.Responses.Ratings[it.Label]
			if (i < s.Cursor && !rated) || (i > s.Cursor && rated) {
				return fmt.Errorf("%w: ratings do not match cursor %d", ErrInvariant, s.Cursor)
			}
		}
		if s.Responses.Valence != nil || s.Responses.Arousal != nil {
			return fmt.Errorf("%w: scale answered during the item stage", ErrInvariant)
		}
		return nil
	}

	if s.Cursor != ItemCount-1 || len(s.Responses.Ratings) != ItemCount {
		return fmt.Errorf("%w: stage %s with %d of %d items rated", ErrInvariant, s.Stage, len(s.Responses.Ratings), ItemCount)
	}
	switch s.Stage {
	case StageValence:
		if s.Responses.Valence != nil || s.Responses.Arousal != nil {
			return fmt.Errorf("%w: scale answered before the valence stage ended", ErrInvariant)
		}
	case StageArousal:
		if s.Responses.Arousal != nil {
			return fmt.Errorf("%w: arousal answered before submit", ErrInvariant)
		}
	case StageComplete:
		if _, ok := ParseMood(string(s.Mood)); !ok || !s.Responses.Complete() {
			return fmt.Errorf("%w: complete without a full result", ErrInvariant)
		}
	}
	return nil
}
