// Package effect holds the catalogue of known processing-unit effects:
// their identities, pot labels and default pot values. Labels are used by
// presentation layers only; the pipeline itself treats the identity as an
// opaque key passed to the unit.
package effect

// Effect describes one selectable effect.
type Effect struct {
	Name     string
	Labels   [4]string
	Defaults [4]int
}

var order = []string{
	"flanger",
	"echo",
	"fm",
	"am",
	"phaser",
	"discont",
	"distortion",
	"tube",
	"growlingbass",
}

var catalogue = map[string]Effect{
	"flanger": {
		Name:     "flanger",
		Labels:   [4]string{"Depth", "Rate", "Fback", "Mix"},
		Defaults: [4]int{60, 60, 60, 60},
	},
	"echo": {
		Name:     "echo",
		Labels:   [4]string{"Delay", "Fback", "Mix", "Tone"},
		Defaults: [4]int{30, 30, 30, 30},
	},
	"fm": {
		Name:     "fm",
		Labels:   [4]string{"Depth", "Rate", "Carr", "Mix"},
		Defaults: [4]int{25, 25, 50, 50},
	},
	"am": {
		Name:     "am",
		Labels:   [4]string{"Depth", "Rate", "Shape", "Mix"},
		Defaults: [4]int{50, 50, 50, 50},
	},
	"phaser": {
		Name:     "phaser",
		Labels:   [4]string{"Depth", "Rate", "Stage", "Fback"},
		Defaults: [4]int{30, 30, 50, 50},
	},
	"discont": {
		Name:     "discont",
		Labels:   [4]string{"Pitch", "Rate", "Blend", "Mix"},
		Defaults: [4]int{80, 10, 20, 20},
	},
	"distortion": {
		Name:     "distortion",
		Labels:   [4]string{"Drive", "Tone", "Level", "Mix"},
		Defaults: [4]int{50, 50, 50, 50},
	},
	"tube": {
		Name:     "tube",
		Labels:   [4]string{"Drive", "Tone", "Bass", "Treble"},
		Defaults: [4]int{50, 50, 50, 50},
	},
	"growlingbass": {
		Name:     "growlingbass",
		Labels:   [4]string{"Sub", "Odd", "Even", "Tone"},
		Defaults: [4]int{50, 50, 50, 50},
	},
}

// List returns all known effects in selection order.
func List() []Effect {
	effects := make([]Effect, 0, len(order))
	for _, name := range order {
		effects = append(effects, catalogue[name])
	}
	return effects
}

// Get returns the effect for the provided identity.
func Get(name string) (Effect, bool) {
	e, ok := catalogue[name]
	return e, ok
}

// Default is the effect selected when nothing was requested.
func Default() Effect {
	return catalogue[order[0]]
}
