package catalog

import "github.com/justestif/valora/internal/questionnaire"

// quadrantThreshold splits valence and energy into high and low halves.
const quadrantThreshold = 0.5

// QuadrantMood maps audio valence and energy onto the four app moods.
// Values at the threshold count as high.
func QuadrantMood(valence, energy float32) questionnaire.Mood {
	highValence := valence >= quadrantThreshold
	highEnergy := energy >= quadrantThreshold

	switch {
	case highValence && highEnergy:
		return questionnaire.MoodHappy
	case highValence:
		return questionnaire.MoodCalm
	case highEnergy:
		return questionnaire.MoodAngry
	default:
		return questionnaire.MoodSad
	}
}

// LabelFromFeatures sets the mood of every song that has both valence and
// energy, overwriting any existing label so the whole catalog uses one rule.
// Returns the number of songs labelled.
func LabelFromFeatures(songs []Song) int {
	n := 0
	for i := range songs {
		s := &songs[i]
		if s.Valence == nil || s.Energy == nil {
			continue
		}
		s.Mood = QuadrantMood(*s.Valence, *s.Energy)
		n++
	}
	return n
}
