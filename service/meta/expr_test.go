package meta

import (
	"os"
	"testing"
)

func TestExpandEnvExpr(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		input    string
		expected string
	}{
		{
			name:     "plain string untouched",
			input:    "schedulers: 4",
			expected: "schedulers: 4",
		},
		{
			name:     "single expression",
			env:      map[string]string{"FOO": "bar"},
			input:    "value is ${env.FOO}",
			expected: "value is bar",
		},
		{
			name:     "repeated expressions",
			env:      map[string]string{"A": "1", "B": "2"},
			input:    "${env.A}-${env.B}-${env.A}",
			expected: "1-2-1",
		},
		{
			name:     "unset variable expands empty",
			input:    "unset=${env.NOTSET}-end",
			expected: "unset=-end",
		},
		{
			name:     "missing closing brace stays literal",
			env:      map[string]string{"X": "x"},
			input:    "start ${env.X and ${env.Y} end",
			expected: "start ${env.X and  end",
		},
		{
			name:     "empty key expands empty",
			input:    "oops ${env.} done",
			expected: "oops  done",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for _, key := range []string{"FOO", "A", "B", "X", "Y", "NOTSET"} {
				os.Unsetenv(key)
			}
			for key, value := range tc.env {
				t.Setenv(key, value)
			}
			actual := expandEnvExpr(tc.input)
			if actual != tc.expected {
				t.Errorf("expandEnvExpr(%q) = %q; want %q", tc.input, actual, tc.expected)
			}
		})
	}
}
