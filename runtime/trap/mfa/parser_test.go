package mfa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/sched/runtime/proc"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected proc.Target
		hasError bool
	}{
		{
			name:     "plain target",
			input:    "lists:reverse/2",
			expected: proc.Target{Module: "lists", Function: "reverse", Arity: 2},
		},
		{
			name:     "zero arity",
			input:    "erts_internal:await_exit/0",
			expected: proc.Target{Module: "erts_internal", Function: "await_exit", Arity: 0},
		},
		{
			name:     "dirty cpu class",
			input:    "crypto:hash_update/3@dirty_cpu",
			expected: proc.Target{Module: "crypto", Function: "hash_update", Arity: 3, Sched: proc.SchedDirtyCPU},
		},
		{
			name:     "dirty io class",
			input:    "file:pread/4@dirty_io",
			expected: proc.Target{Module: "file", Function: "pread", Arity: 4, Sched: proc.SchedDirtyIO},
		},
		{
			name:     "explicit normal class",
			input:    "erlang:bif_return_trap/2@normal",
			expected: proc.Target{Module: "erlang", Function: "bif_return_trap", Arity: 2},
		},
		{
			name:     "missing colon",
			input:    "listsreverse/2",
			hasError: true,
		},
		{
			name:     "missing arity",
			input:    "lists:reverse",
			hasError: true,
		},
		{
			name:     "unknown scheduler class",
			input:    "lists:reverse/2@gpu",
			hasError: true,
		},
		{
			name:     "trailing garbage",
			input:    "lists:reverse/2 extra",
			hasError: true,
		},
		{
			name:     "empty input",
			input:    "",
			hasError: true,
		},
	}

	for _, tc := range tests {
		actual, err := Parse([]byte(tc.input))
		if tc.hasError {
			assert.Error(t, err, tc.name)
			continue
		}
		if !assert.NoError(t, err, tc.name) {
			continue
		}
		assert.EqualValues(t, tc.expected, actual, tc.name)
	}
}
