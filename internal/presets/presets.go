// Package presets holds the named, immutable band configurations a coach can
// select in the template editor. The table is static and versioned; selecting
// a preset is a pure data substitution, never a network call.
package presets

import (
	"fmt"
	"sort"

	"github.com/coachkit/checkin-engine/internal/scoring"
)

// Version identifies the preset table revision so consumers can detect a
// changed table without diffing band values.
const Version = 2

// Preset is a named band set. Bands always partition [0,100].
type Preset struct {
	Name  string         `json:"name"`
	Label string         `json:"label"`
	Bands []scoring.Band `json:"bands"`
}

var table = map[string]Preset{
	"beginner": {
		Name:  "beginner",
		Label: "Beginner",
		Bands: []scoring.Band{
			{Name: "off-track", Label: "Off track", Color: "#e74c3c", MinScore: 0, MaxScore: 40,
				Feedback: "A rough week happens. Pick one habit to focus on and check in with your coach."},
			{Name: "building", Label: "Building", Color: "#f1c40f", MinScore: 40, MaxScore: 75,
				Feedback: "Solid progress. Consistency matters more than perfection at this stage."},
			{Name: "on-track", Label: "On track", Color: "#2ecc71", MinScore: 75, MaxScore: 100,
				Feedback: "Great week. Keep doing what you're doing."},
		},
	},
	"standard": {
		Name:  "standard",
		Label: "Standard",
		Bands: []scoring.Band{
			{Name: "needs-attention", Label: "Needs attention", Color: "#e74c3c", MinScore: 0, MaxScore: 50,
				Feedback: "Compliance slipped this week. Review the plan together and reset."},
			{Name: "steady", Label: "Steady", Color: "#f1c40f", MinScore: 50, MaxScore: 80,
				Feedback: "Mostly on plan with a few gaps. Tighten up the weak spots."},
			{Name: "excellent", Label: "Excellent", Color: "#2ecc71", MinScore: 80, MaxScore: 100,
				Feedback: "Excellent adherence. The plan is working."},
		},
	},
	"advanced": {
		Name:  "advanced",
		Label: "Advanced",
		Bands: []scoring.Band{
			{Name: "below-standard", Label: "Below standard", Color: "#e74c3c", MinScore: 0, MaxScore: 70,
				Feedback: "Below the bar you've set for yourself. Identify what got in the way."},
			{Name: "meeting", Label: "Meeting standard", Color: "#f1c40f", MinScore: 70, MaxScore: 90,
				Feedback: "Meeting the standard. Look for the marginal gains."},
			{Name: "exceeding", Label: "Exceeding", Color: "#2ecc71", MinScore: 90, MaxScore: 100,
				Feedback: "Exceptional week. Dialed in across the board."},
		},
	},
}

// Names returns all preset names in stable order.
func Names() []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every preset in stable name order.
func All() []Preset {
	out := make([]Preset, 0, len(table))
	for _, name := range Names() {
		p, _ := Lookup(name)
		out = append(out, p)
	}
	return out
}

// Lookup returns a defensive copy of the named preset, so callers can never
// mutate the table through a returned band slice.
func Lookup(name string) (Preset, error) {
	p, ok := table[name]
	if !ok {
		return Preset{}, fmt.Errorf("unknown band preset %q", name)
	}
	bands := make([]scoring.Band, len(p.Bands))
	copy(bands, p.Bands)
	p.Bands = bands
	return p, nil
}
