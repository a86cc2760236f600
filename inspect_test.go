package supertest

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInspect(t *testing.T) {
	type point struct {
		X int `json:"x"`
		Y int `json:"y"`
	}

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{name: "int", value: 404, want: "404"},
		{name: "whole float", value: 1.0, want: "1"},
		{name: "fraction", value: 2.5, want: "2.5"},
		{name: "large float", value: 1e21, want: "1e+21"},
		{name: "below exponent range", value: 1e20, want: "100000000000000000000"},
		{name: "small float", value: 1.5e-7, want: "1.5e-7"},
		{name: "negative large float", value: -2.5e22, want: "-2.5e+22"},
		{name: "smallest plain float", value: 0.000001, want: "0.000001"},
		{name: "string", value: "x", want: "'x'"},
		{name: "empty string", value: "", want: "''"},
		{name: "string with single quote", value: "it's", want: `"it's"`},
		{name: "string with both quotes", value: `it's "x"`, want: `'it\'s "x"'`},
		{name: "newline escaped", value: "a\nb", want: `'a\nb'`},
		{name: "nil", value: nil, want: "null"},
		{name: "undefined", value: undefined{}, want: "undefined"},
		{name: "bool", value: true, want: "true"},
		{name: "pattern", value: regexp.MustCompile(`json`), want: "/json/"},
		{name: "object", value: map[string]any{"x": 1.0}, want: "{ x: 1 }"},
		{name: "object keys sorted", value: map[string]any{"b": "2", "a": 1}, want: "{ a: 1, b: '2' }"},
		{name: "quoted key", value: map[string]any{"content-type": "x"}, want: "{ 'content-type': 'x' }"},
		{name: "empty object", value: map[string]any{}, want: "{}"},
		{name: "array", value: []any{1.0, "a", nil}, want: "[ 1, 'a', null ]"},
		{name: "empty array", value: []any{}, want: "[]"},
		{name: "nested", value: map[string]any{"user": map[string]any{"tags": []any{"a"}}}, want: "{ user: { tags: [ 'a' ] } }"},
		{name: "struct", value: point{X: 1, Y: 2}, want: "{ x: 1, y: 2 }"},
		{name: "pointer to struct", value: &point{X: 3}, want: "{ x: 3, y: 0 }"},
		{name: "bytes", value: []byte("raw"), want: "'raw'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inspect(tt.value))
		})
	}
}
