package unit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArgs(t *testing.T) {
	tests := []struct {
		description string
		spec        Spec
		control     bool
		expected    []string
	}{
		{
			description: "with control channel",
			spec:        Spec{Effect: "echo", Pots: [4]int{30, 30, 30, 30}},
			control:     true,
			expected:    []string{"--control=3", "echo", "0.30", "0.30", "0.30", "0.30"},
		},
		{
			description: "without control channel",
			spec:        Spec{Effect: "flanger", Pots: [4]int{60, 0, 99, 7}},
			expected:    []string{"flanger", "0.60", "0.00", "0.99", "0.07"},
		},
		{
			description: "pots clamped",
			spec:        Spec{Effect: "phaser", Pots: [4]int{150, -5, 50, 99}},
			expected:    []string{"phaser", "0.99", "0.00", "0.50", "0.99"},
		},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, args(test.spec, test.control), test.description)
	}
}
