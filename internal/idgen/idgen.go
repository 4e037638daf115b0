package idgen

import "github.com/google/uuid"

// NewFunc produces globally unique string tokens. It is a variable so
// tests can stub it for deterministic identifiers.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new unique token.
func New() string { return NewFunc() }
