package proc

import "fmt"

// Priority orders processes within a scheduler; Max is served first.
type Priority int

const (
	Max Priority = iota
	High
	Normal
	Low
)

// PriorityLevels is the number of distinct priority levels.
const PriorityLevels = 4

// Valid reports whether the priority is one of the defined levels.
func (p Priority) Valid() bool {
	return p >= Max && p <= Low
}

// String returns the lowercase priority name.
func (p Priority) String() string {
	switch p {
	case Max:
		return "max"
	case High:
		return "high"
	case Normal:
		return "normal"
	case Low:
		return "low"
	}
	return fmt.Sprintf("priority(%d)", int(p))
}

// ParsePriority converts a priority name as used in configuration files.
func ParsePriority(name string) (Priority, error) {
	switch name {
	case "max":
		return Max, nil
	case "high":
		return High, nil
	case "normal", "":
		return Normal, nil
	case "low":
		return Low, nil
	}
	return Normal, fmt.Errorf("unknown priority %q", name)
}
