package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRadius(t *testing.T) {
	tests := []struct {
		name    string
		radius  float64
		wantErr bool
	}{
		{"default", 40, false},
		{"fractional", 0.5, false},
		{"zero", 0, true},
		{"negative", -5, true},
		{"nan", math.NaN(), true},
		{"infinite", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRadius(tt.radius)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
