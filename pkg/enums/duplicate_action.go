package enums

import "fmt"

// DuplicateAction is the caller's policy for resolving a VIN collision
// while importing a snapshot.
type DuplicateAction string

const (
	DuplicateActionSkip      DuplicateAction = "skip"
	DuplicateActionOverwrite DuplicateAction = "overwrite"
)

var validDuplicateActions = []DuplicateAction{
	DuplicateActionSkip,
	DuplicateActionOverwrite,
}

// String implements fmt.Stringer.
func (d DuplicateAction) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DuplicateAction.
func (d DuplicateAction) IsValid() bool {
	for _, candidate := range validDuplicateActions {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDuplicateAction converts raw input into a DuplicateAction.
func ParseDuplicateAction(value string) (DuplicateAction, error) {
	for _, candidate := range validDuplicateActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid duplicate action %q", value)
}
