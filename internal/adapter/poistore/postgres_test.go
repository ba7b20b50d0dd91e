package poistore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitAmenities(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty column means none", input: "", want: nil},
		{name: "single amenity", input: "hiking", want: []string{"hiking"}},
		{name: "seed tooling format", input: "hiking;camping;boat launch", want: []string{"hiking", "camping", "boat launch"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitAmenities(tt.input))
		})
	}
}
