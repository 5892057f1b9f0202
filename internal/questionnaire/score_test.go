package questionnaire

import (
	"errors"
	"testing"
)

// uniformResponses rates every positive item pos and every negative item neg.
func uniformResponses(t *testing.T, pos, neg int, valence float64, arousal int) Responses {
	t.Helper()

	r := NewResponses()
	for _, it := range Catalog() {
		rating := pos
		if it.Polarity == Negative {
			rating = neg
		}
		if err := r.Rate(it.Label, rating); err != nil {
			t.Fatalf("Rate(%q, %d) error = %v", it.Label, rating, err)
		}
	}
	if err := r.SetValence(valence); err != nil {
		t.Fatalf("SetValence(%v) error = %v", valence, err)
	}
	if err := r.SetArousal(arousal); err != nil {
		t.Fatalf("SetArousal(%d) error = %v", arousal, err)
	}
	return r
}

func TestEvaluate_Scenarios(t *testing.T) {
	tests := []struct {
		name    string
		pos     int
		neg     int
		valence float64
		arousal int
		want    Result
	}{
		{
			name: "max positive max scales",
			pos:  5, neg: 1, valence: 10, arousal: 9,
			want: Result{
				TotalPositive:     50,
				TotalNegative:     10,
				InventoryValence:  40,
				InventoryArousal:  3.0,
				ValenceNormalized: 50,
				ArousalNormalized: 5.0,
				FinalValence:      45,
				FinalArousal:      4.0,
				Mood:              MoodHappy,
			},
		},
		{
			name: "all neutral",
			pos:  3, neg: 3, valence: 5, arousal: 5,
			want: Result{
				TotalPositive:     30,
				TotalNegative:     30,
				InventoryValence:  0,
				InventoryArousal:  3.0,
				ValenceNormalized: 0,
				ArousalNormalized: 3.0,
				FinalValence:      0,
				FinalArousal:      3.0,
				Mood:              MoodHappy,
			},
		},
		{
			name: "max negative min scales",
			pos:  1, neg: 5, valence: 1, arousal: 1,
			want: Result{
				TotalPositive:     10,
				TotalNegative:     50,
				InventoryValence:  -40,
				InventoryArousal:  3.0,
				ValenceNormalized: -40,
				ArousalNormalized: 1.0,
				FinalValence:      -40,
				FinalArousal:      2.0,
				Mood:              MoodSad,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(uniformResponses(t, tt.pos, tt.neg, tt.valence, tt.arousal))
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestScore_Boundaries(t *testing.T) {
	tests := []struct {
		name    string
		pos     int
		neg     int
		valence float64
		arousal int
		want    Mood
	}{
		// all ones: inventory valence 0, inventory arousal 1.0
		// arousal 7 normalizes to 4.0, so final arousal is exactly 2.5
		{"valence zero arousal midpoint is calm", 1, 1, 5, 7, MoodCalm},
		{"negative valence arousal midpoint is sad", 1, 1, 1, 7, MoodSad},
		{"valence zero arousal above midpoint is happy", 1, 1, 5, 9, MoodHappy},
		{"negative valence high arousal is angry", 1, 5, 2.5, 9, MoodAngry},
		{"positive valence low arousal is calm", 3, 1, 7.5, 1, MoodCalm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Score(uniformResponses(t, tt.pos, tt.neg, tt.valence, tt.arousal))
			if err != nil {
				t.Fatalf("Score() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Score() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScore_Deterministic(t *testing.T) {
	r := NewResponses()
	for i, it := range Catalog() {
		if err := r.Rate(it.Label, i%5+1); err != nil {
			t.Fatal(err)
		}
	}
	_ = r.SetValence(2.5)
	_ = r.SetArousal(6)

	first, err := Evaluate(r)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	for range 100 {
		got, _ := Evaluate(r)
		if got != first {
			t.Fatalf("Evaluate() = %+v, want %+v", got, first)
		}
	}
}

func TestScore_Incomplete(t *testing.T) {
	tests := []struct {
		name  string
		build func(t *testing.T) Responses
	}{
		{
			name:  "empty",
			build: func(*testing.T) Responses { return NewResponses() },
		},
		{
			name: "missing arousal",
			build: func(t *testing.T) Responses {
				r := uniformResponses(t, 3, 3, 5, 5)
				r.Arousal = nil
				return r
			},
		},
		{
			name: "missing valence",
			build: func(t *testing.T) Responses {
				r := uniformResponses(t, 3, 3, 5, 5)
				r.Valence = nil
				return r
			},
		},
		{
			name: "nineteen ratings",
			build: func(t *testing.T) Responses {
				r := uniformResponses(t, 3, 3, 5, 5)
				delete(r.Ratings, "Afraid")
				return r
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Score(tt.build(t))
			if !errors.Is(err, ErrIncomplete) {
				t.Errorf("Score() error = %v, want ErrIncomplete", err)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		valence float64
		arousal float64
		want    Mood
	}{
		{0, 2.5, MoodCalm},
		{0, 2.51, MoodHappy},
		{-0.01, 2.5, MoodSad},
		{-0.01, 2.51, MoodAngry},
		{45, 4, MoodHappy},
		{-45, 1, MoodSad},
	}

	for _, tt := range tests {
		if got := Classify(tt.valence, tt.arousal); got != tt.want {
			t.Errorf("Classify(%v, %v) = %q, want %q", tt.valence, tt.arousal, got, tt.want)
		}
	}
}

func TestParseMood(t *testing.T) {
	for _, m := range Moods {
		got, ok := ParseMood(string(m))
		if !ok || got != m {
			t.Errorf("ParseMood(%q) = %q, %v", m, got, ok)
		}
	}
	if _, ok := ParseMood("Happy"); ok {
		t.Error("ParseMood(\"Happy\") should fail")
	}
}
