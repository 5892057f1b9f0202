package questionnaire

import (
	"fmt"
	"slices"
)

// Rating bounds for inventory items.
const (
	MinRating = 1
	MaxRating = 5
)

// Arousal scale bounds.
const (
	MinArousal = 1
	MaxArousal = 9
)

// NoSelection marks a scale that has not been answered. Zero is outside every
// scale domain, so it never collides with a real answer.
const NoSelection = 0

// ValenceOptions is the fixed choice set of the valence scale. The raw domain is
// [0,10] with 5 as the neutral midpoint.
var ValenceOptions = []float64{1, 2.5, 5, 7.5, 10}

// Responses holds everything the user has answered so far.
type Responses struct {
	Ratings map[string]int `json:"ratings"`
	Valence *float64       `json:"valence,omitempty"`
	Arousal *int           `json:"arousal,omitempty"`
}

// NewResponses returns an empty response store.
func NewResponses() Responses {
	return Responses{Ratings: make(map[string]int, ItemCount)}
}

// Rate records a rating for a catalog item, replacing any earlier rating.
func (r *Responses) Rate(label string, rating int) error {
	if _, ok := Lookup(label); !ok {
		return fmt.Errorf("%w: unknown item %q", ErrInvalidValue, label)
	}
	if rating < MinRating || rating > MaxRating {
		return fmt.Errorf("%w: rating %d not in [%d,%d]", ErrInvalidValue, rating, MinRating, MaxRating)
	}
	if r.Ratings == nil {
		r.Ratings = make(map[string]int, ItemCount)
	}
	r.Ratings[label] = rating
	return nil
}

// Rating returns the recorded rating for label, if any.
func (r Responses) Rating(label string) (int, bool) {
	v, ok := r.Ratings[label]
	return v, ok
}

// SetValence records the valence scale answer.
func (r *Responses) SetValence(v float64) error {
	if !ValidValence(v) {
		return fmt.Errorf("%w: valence %v not one of %v", ErrInvalidValue, v, ValenceOptions)
	}
	r.Valence = &v
	return nil
}

// SetArousal records the arousal scale answer.
func (r *Responses) SetArousal(v int) error {
	if !ValidArousal(v) {
		return fmt.Errorf("%w: arousal %d not in [%d,%d]", ErrInvalidValue, v, MinArousal, MaxArousal)
	}
	r.Arousal = &v
	return nil
}

// Complete reports whether every item is rated and both scales are answered.
func (r Responses) Complete() bool {
	if r.Valence == nil || r.Arousal == nil {
		return false
	}
	if len(r.Ratings) != ItemCount {
		return false
	}
	for _, it := range catalog {
		if _, ok := r.Ratings[it.Label]; !ok {
			return false
		}
	}
	return true
}

// ValidValence reports whether v is one of ValenceOptions.
func ValidValence(v float64) bool {
	return slices.Contains(ValenceOptions, v)
}

// ValidArousal reports whether v is on the arousal scale.
func ValidArousal(v int) bool {
	return v >= MinArousal && v <= MaxArousal
}
