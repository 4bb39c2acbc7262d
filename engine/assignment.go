package engine

import "fmt"

// AssignmentKind identifies how a receipt line's cost is divided.
type AssignmentKind int

const (
	AssignUnassigned AssignmentKind = iota
	AssignIndividual
	AssignEvenSplit
	AssignCustomSplit
)

func (k AssignmentKind) String() string {
	switch k {
	case AssignIndividual:
		return "individual"
	case AssignEvenSplit:
		return "even_split"
	case AssignCustomSplit:
		return "custom_split"
	default:
		return "unassigned"
	}
}

// Assignment is a tagged variant describing who pays for a receipt line.
// The zero value is Unassigned. Construct the other variants through the
// helpers below so that a split can never carry an empty member set.
type Assignment struct {
	kind    AssignmentKind
	members []string
	weights map[string]int64
}

// Unassigned returns the zero assignment.
func Unassigned() Assignment {
	return Assignment{}
}

// Individual assigns the full line price to one member.
func Individual(memberID string) (Assignment, error) {
	if memberID == "" {
		return Assignment{}, &ValidationError{Reason: "individual assignment requires a member"}
	}
	return Assignment{kind: AssignIndividual, members: []string{memberID}}, nil
}

// EvenSplit divides the line price evenly among the given members.
func EvenSplit(memberIDs []string) (Assignment, error) {
	members, err := dedupeMembers(memberIDs)
	if err != nil {
		return Assignment{}, err
	}
	return Assignment{kind: AssignEvenSplit, members: members}, nil
}

// CustomSplit divides the line price among the given members. When weights is
// nil the behavior is identical to EvenSplit; otherwise each member's share is
// proportional to their weight. Every member must have a positive weight.
func CustomSplit(memberIDs []string, weights map[string]int64) (Assignment, error) {
	members, err := dedupeMembers(memberIDs)
	if err != nil {
		return Assignment{}, err
	}
	if weights != nil {
		for _, m := range members {
			if weights[m] <= 0 {
				return Assignment{}, &ValidationError{Reason: fmt.Sprintf("missing or non-positive weight for member %s", m)}
			}
		}
		copied := make(map[string]int64, len(members))
		for _, m := range members {
			copied[m] = weights[m]
		}
		weights = copied
	}
	return Assignment{kind: AssignCustomSplit, members: members, weights: weights}, nil
}

// Kind returns the variant tag.
func (a Assignment) Kind() AssignmentKind { return a.kind }

// IsAssigned reports whether the assignment is anything other than Unassigned.
func (a Assignment) IsAssigned() bool { return a.kind != AssignUnassigned }

// Members returns the member ids the assignment references.
func (a Assignment) Members() []string {
	out := make([]string, len(a.members))
	copy(out, a.members)
	return out
}

// Weight returns the custom weight for a member, or 1 when no weights are set.
func (a Assignment) Weight(memberID string) int64 {
	if a.weights == nil {
		return 1
	}
	return a.weights[memberID]
}

func dedupeMembers(memberIDs []string) ([]string, error) {
	seen := make(map[string]bool, len(memberIDs))
	var members []string
	for _, m := range memberIDs {
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		members = append(members, m)
	}
	if len(members) == 0 {
		return nil, &ValidationError{Reason: "split requires at least one member"}
	}
	return members, nil
}
