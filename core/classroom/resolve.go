package classroom

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/darasa/core"
)

// Ref is an id/display-name pair used for identifier resolution.
type Ref struct {
	ID   string
	Name string
}

// maximum number of candidates listed in an AmbiguousIdentifierError
const maxListedCandidates = 6

// minimum similarity ratio for a "did you mean" suggestion
const minSuggestionRatio = .6

type NotFoundError struct {
	Identifier  string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("no match found for %q", e.Identifier)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(", did you mean %q?", e.Suggestions[0])
	}
	return msg
}

type AmbiguousIdentifierError struct {
	Identifier string
	Candidates []string // "name (id)" pairs, at most maxListedCandidates
	Truncated  bool
}

func (e *AmbiguousIdentifierError) Error() string {
	list := strings.Join(e.Candidates, ", ")
	if e.Truncated {
		list += ", ..."
	}
	return fmt.Sprintf("%q matches more than one entry: %s", e.Identifier, list)
}

// Resolve maps `identifier` to the canonical id of one of `candidates`.
// An exact id match wins over any name match. Otherwise a case-insensitive
// substring match on the name must select exactly one candidate; zero
// matches fail with NotFoundError and several matches fail with
// AmbiguousIdentifierError listing at most maxListedCandidates of them.
func Resolve(identifier string, candidates []Ref) (string, error) {
	for _, c := range candidates {
		if c.ID == core.CleanString(identifier) {
			return c.ID, nil
		}
	}

	needle := core.CleanString(identifier, true)
	var matches []Ref
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(c.Name), needle) {
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 0:
		return "", &NotFoundError{Identifier: identifier, Suggestions: closestNames(identifier, candidates)}
	case 1:
		return matches[0].ID, nil
	}

	shown := matches
	truncated := false
	if len(shown) > maxListedCandidates {
		shown = shown[:maxListedCandidates]
		truncated = true
	}
	listed := make([]string, 0, len(shown))
	for _, c := range shown {
		listed = append(listed, fmt.Sprintf("%s (%s)", c.Name, c.ID))
	}
	return "", &AmbiguousIdentifierError{Identifier: identifier, Candidates: listed, Truncated: truncated}
}

// closestNames returns candidate names similar to `identifier`, most
// similar first.
func closestNames(identifier string, candidates []Ref) []string {
	type scored struct {
		name  string
		ratio float64
	}
	var ranked []scored
	for _, c := range candidates {
		ratio := difflib.NewMatcher(
			strings.Split(strings.ToLower(identifier), ""),
			strings.Split(strings.ToLower(c.Name), ""),
		).QuickRatio()
		if ratio >= minSuggestionRatio {
			ranked = append(ranked, scored{name: c.Name, ratio: ratio})
		}
	}
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && ranked[j].ratio > ranked[j-1].ratio; j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}
	names := make([]string, 0, len(ranked))
	for _, s := range ranked {
		names = append(names, s.name)
	}
	return names
}
