package models

// Heater is one resistive element driven by the duty planner. 1..10
// heaters exist per system, ordered by Preference (lower first) when
// the duty planner walks them.
type Heater struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Pin        int     `json:"pin"`
	Preference int     `json:"preference"`
	Watt       float64 `json:"watt"`
	UseForMash bool    `json:"useForMash" yaml:"useForMash"`
	UseForBoil bool    `json:"useForBoil" yaml:"useForBoil"`
	Enabled    bool    `json:"enabled"`
	BurnTime   float64 `json:"burnTime"`
	Burn       bool    `json:"burn"`
}

// ByPreference sorts heaters by Preference ascending, tie-broken by ID,
// matching the invariant in SPEC_FULL §3 that the duty planner walks
// heaters in preference order.
type ByPreference []Heater

func (h ByPreference) Len() int      { return len(h) }
func (h ByPreference) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h ByPreference) Less(i, j int) bool {
	if h[i].Preference != h[j].Preference {
		return h[i].Preference < h[j].Preference
	}
	return h[i].ID < h[j].ID
}
