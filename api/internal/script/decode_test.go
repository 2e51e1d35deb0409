package script

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsInt(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
		ok   bool
	}{
		{"number", json.Number("7"), 7, true},
		{"whole_float_number", json.Number("7.0"), 7, true},
		{"fraction", json.Number("7.5"), 0, false},
		{"above_int64", json.Number("99999999999999999999"), 0, false},
		{"below_int64", json.Number("-99999999999999999999"), 0, false},
		{"float64", 12.0, 12, true},
		{"float64_max", math.MaxFloat64, 0, false},
		{"float64_two_pow_63", float64(math.MaxInt64), 0, false},
		{"string", " 42 ", 42, true},
		{"string_overflow", "99999999999999999999", 0, false},
		{"bool", true, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := asInt(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOversizedIDIsNotIdentity(t *testing.T) {
	obj, err := decodeObject(`{"id": 99999999999999999999, "claim": "c", "main_question": "m", "follow_ups": []}`)
	assert.NoError(t, err)
	assert.False(t, obj.hasIdentity())

	_, err = NewNormalizer().Question(`{"id": 99999999999999999999, "claim": "c", "main_question": "m"}`, Overrides{})
	assert.ErrorIs(t, err, ErrUnrecoverablePayload)
}
