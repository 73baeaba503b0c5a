package tabs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ErrUnknownGroup is returned by Resolve for group ids with no elements.
var ErrUnknownGroup = errors.New("unknown group")

// maxSuggestDistance bounds how far a suggestion may be from the input.
const maxSuggestDistance = 3

// UnknownGroupError carries the requested id and the closest known group.
type UnknownGroupError struct {
	Group      string
	Suggestion string
}

func (e *UnknownGroupError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown group %q (did you mean %q?)", e.Group, e.Suggestion)
	}
	return fmt.Sprintf("unknown group %q", e.Group)
}

func (e *UnknownGroupError) Unwrap() error { return ErrUnknownGroup }

// Resolve checks that group names at least one panel or control. Activate
// does not call it: unknown ids are a silent no-op there. Front-ends running
// in strict mode call Resolve first.
func (r *Registry) Resolve(group string) error {
	if g, ok := r.groups[group]; ok && (len(g.Panels) > 0 || len(g.Controls) > 0) {
		return nil
	}
	return &UnknownGroupError{Group: group, Suggestion: r.suggest(group)}
}

func (r *Registry) suggest(group string) string {
	best := ""
	bestDist := maxSuggestDistance + 1
	needle := strings.ToLower(group)
	for _, id := range r.order {
		d := levenshtein.ComputeDistance(needle, strings.ToLower(id))
		if d < bestDist {
			best, bestDist = id, d
		}
	}
	return best
}
