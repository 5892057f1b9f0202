package questionnaire

import "fmt"

// Mood is the categorical outcome of the questionnaire.
type Mood string

const (
	MoodHappy Mood = "Happy/Energetic"
	MoodCalm  Mood = "Calm/Peaceful"
	MoodAngry Mood = "Angry/Tense"
	MoodSad   Mood = "Sad/Melancholy"
)

// Moods lists every mood label.
var Moods = []Mood{MoodHappy, MoodCalm, MoodAngry, MoodSad}

// ParseMood converts a label back into a Mood.
func ParseMood(s string) (Mood, bool) {
	for _, m := range Moods {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}

// ArousalMidpoint splits low from high arousal. Values equal to it count as low.
const ArousalMidpoint = 2.5

// Result carries every intermediate value of the scoring computation.
// Inventory valence lies in [-40,40], normalized valence in [-50,50] and
// both arousal figures in [1,5].
type Result struct {
	TotalPositive     int
	TotalNegative     int
	InventoryValence  float64
	InventoryArousal  float64
	ValenceNormalized float64
	ArousalNormalized float64
	FinalValence      float64
	FinalArousal      float64
	Mood              Mood
}

// Evaluate fuses the inventory with the two self-report scales.
// Returns ErrIncomplete unless every item is rated and both scales are answered.
func Evaluate(r Responses) (Result, error) {
	if !r.Complete() {
		return Result{}, fmt.Errorf("%w: %d of %d items rated, valence set: %t, arousal set: %t",
			ErrIncomplete, len(r.Ratings), ItemCount, r.Valence != nil, r.Arousal != nil)
	}

	var res Result
	for _, it := range catalog {
		switch it.Polarity {
		case Positive:
			res.TotalPositive += r.Ratings[it.Label]
		case Negative:
			res.TotalNegative += r.Ratings[it.Label]
		}
	}

	res.InventoryValence = float64(res.TotalPositive - res.TotalNegative)
	res.InventoryArousal = float64(res.TotalPositive+res.TotalNegative) / 20.0

	res.ValenceNormalized = (*r.Valence - 5) * 10
	res.ArousalNormalized = (float64(*r.Arousal-1) * (4.0 / 8.0)) + 1

	res.FinalValence = (res.InventoryValence + res.ValenceNormalized) / 2
	res.FinalArousal = (res.InventoryArousal + res.ArousalNormalized) / 2

	res.Mood = Classify(res.FinalValence, res.FinalArousal)
	return res, nil
}

// Score returns the mood label for a completed response set.
func Score(r Responses) (Mood, error) {
	res, err := Evaluate(r)
	if err != nil {
		return "", err
	}
	return res.Mood, nil
}

// Classify maps a valence/arousal point onto a mood quadrant.
//
// Quadrants:
//   - valence >= 0, arousal > 2.5  = Happy/Energetic
//   - valence >= 0, arousal <= 2.5 = Calm/Peaceful
//   - valence < 0,  arousal > 2.5  = Angry/Tense
//   - valence < 0,  arousal <= 2.5 = Sad/Melancholy
func Classify(valence, arousal float64) Mood {
	highArousal := arousal > ArousalMidpoint

	switch {
	case valence >= 0 && highArousal:
		return MoodHappy
	case valence >= 0:
		return MoodCalm
	case highArousal:
		return MoodAngry
	default:
		return MoodSad
	}
}
