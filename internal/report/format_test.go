package report

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatter_Coefficient(t *testing.T) {
	f := DefaultFormatter()

	tests := []struct {
		name string
		v, p float64
		want string
	}{
		{name: "three stars", v: 0.1, p: 0.002, want: "0,100***"},
		{name: "four stars", v: -1.23456, p: 0.0009, want: "-1,235****"},
		{name: "two stars", v: 0.5, p: 0.01, want: "0,500**"},
		{name: "one star", v: 2, p: 0.05, want: "2,000*"},
		{name: "no star at ten percent", v: 0.0004, p: 0.10, want: "0,000"},
		{name: "rounds up", v: 0.9996, p: 0.5, want: "1,000"},
		{name: "nan p-value", v: 1, p: math.NaN(), want: "1,000"},
		{name: "nan estimate", v: math.NaN(), p: 0.001, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Coefficient(tt.v, tt.p))
		})
	}
}

func TestFormatter_Number(t *testing.T) {
	assert.Equal(t, "0,25", Formatter{Decimals: 2, Separator: ","}.Number(0.25))
	assert.Equal(t, "0.250", Formatter{Decimals: 3, Separator: "."}.Number(0.25))
	assert.Equal(t, "3", Formatter{Decimals: 0, Separator: ","}.Number(3.2))
	assert.Equal(t, "", DefaultFormatter().Number(math.Inf(1)))
}

func TestStars(t *testing.T) {
	assert.Equal(t, "****", Stars(0.000999))
	assert.Equal(t, "***", Stars(0.001))
	assert.Equal(t, "**", Stars(0.01))
	assert.Equal(t, "*", Stars(0.05))
	assert.Equal(t, "", Stars(0.1))
}

func TestFormatCount(t *testing.T) {
	tests := map[int]string{
		0:        "0",
		999:      "999",
		1000:     "1 000",
		123456:   "123 456",
		1234567:  "1 234 567",
		-1234567: "-1 234 567",
		-123:     "-123",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatCount(in), "FormatCount(%d)", in)
	}
}

func TestYesNo(t *testing.T) {
	assert.Equal(t, "Ja", YesNo(true))
	assert.Equal(t, "Nei", YesNo(false))
}
