// Package questionnaire implements the mood assessment: a shuffled 20-item affect
// inventory followed by a valence scale and an arousal scale, fused into one of
// four mood labels.
//
// Nothing in this package knows about HTTP, terminals or timers. Presentation
// drivers feed events into a Navigator and render whatever State it reports.
package questionnaire

// Polarity tags an item as contributing to the positive or negative affect total.
type Polarity int

const (
	Positive Polarity = iota
	Negative
)

// String returns the polarity name.
func (p Polarity) String() string {
	if p == Negative {
		return "negative"
	}
	return "positive"
}

// Item is one affect adjective rated on a 1-5 intensity scale.
type Item struct {
	Label    string   `json:"label"`
	Polarity Polarity `json:"polarity"`
}

// ItemCount is the number of items in the inventory.
const ItemCount = 20

var catalog = [ItemCount]Item{
	{"Interested", Positive},
	{"Excited", Positive},
	{"Strong", Positive},
	{"Enthusiastic", Positive},
	{"Proud", Positive},
	{"Alert", Positive},
	{"Inspired", Positive},
	{"Determined", Positive},
	{"Attentive", Positive},
	{"Active", Positive},
	{"Distressed", Negative},
	{"Upset", Negative},
	{"Guilty", Negative},
	{"Scared", Negative},
	{"Hostile", Negative},
	{"Irritable", Negative},
	{"Ashamed", Negative},
	{"Nervous", Negative},
	{"Jittery", Negative},
	{"Afraid", Negative},
}

// Catalog returns the inventory items in their canonical order.
// The returned slice is a copy and may be modified freely.
func Catalog() []Item {
	items := make([]Item, len(catalog))
	copy(items, catalog[:])
	return items
}

// Lookup returns the catalog item with the given label.
func Lookup(label string) (Item, bool) {
	for _, it := range catalog {
		if it.Label == label {
			return it, true
		}
	}
	return Item{}, false
}
