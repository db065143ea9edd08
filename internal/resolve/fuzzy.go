// Package resolve suggests mailbox and command names close to a mistyped one.
package resolve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Match is a fuzzy match result with score.
type Match struct {
	Name  string
	Score int
}

var (
	ErrEmptyQuery = errors.New("empty search query")
	ErrEmptyItems = errors.New("no names to match against")
)

// AmbiguousError indicates multiple candidates matched equally well.
type AmbiguousError struct {
	Query   string
	Matches []Match
}

func (e *AmbiguousError) Error() string {
	var b strings.Builder
	_, _ = fmt.Fprintf(&b, "ambiguous match for %q", e.Query)
	if len(e.Matches) > 0 {
		b.WriteString(", candidates:")
		for _, m := range e.Matches {
			_, _ = fmt.Fprintf(&b, "\n  %s", m.Name)
		}
	}
	return b.String()
}

type lowerSource []string

func (s lowerSource) String(i int) string { return strings.ToLower(s[i]) }
func (s lowerSource) Len() int            { return len(s) }

// FuzzyMatch returns the single best name for query.
//
// An exact case-insensitive hit wins outright. If the two best fuzzy results
// tie on score, *AmbiguousError lists the candidates.
func FuzzyMatch(query string, names []string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrEmptyQuery
	}
	if len(names) == 0 {
		return "", ErrEmptyItems
	}

	for _, name := range names {
		if strings.EqualFold(name, query) {
			return name, nil
		}
	}

	results := fuzzy.FindFrom(strings.ToLower(query), lowerSource(names))
	if len(results) == 0 {
		return "", fmt.Errorf("no match found for %q", query)
	}
	if len(results) > 1 && results[0].Score == results[1].Score {
		return "", &AmbiguousError{Query: query, Matches: buildMatches(names, results, 5)}
	}
	return names[results[0].Index], nil
}

// FuzzyMatchAll returns up to limit matches ranked by score (best first).
func FuzzyMatchAll(query string, names []string, limit int) []Match {
	query = strings.TrimSpace(query)
	if query == "" || len(names) == 0 || limit <= 0 {
		return nil
	}
	return buildMatches(names, fuzzy.FindFrom(strings.ToLower(query), lowerSource(names)), limit)
}

// Suggest returns up to limit names resembling query, excluding query itself.
// Names sharing query's first letter are tried when the subsequence match finds
// nothing, so transposed letters still produce hints.
func Suggest(query string, names []string, limit int) []string {
	var out []string
	for _, m := range FuzzyMatchAll(query, names, limit+1) {
		if strings.EqualFold(m.Name, query) {
			continue
		}
		out = append(out, m.Name)
	}
	if len(out) == 0 && query != "" {
		first := strings.ToLower(query[:1])
		for _, name := range names {
			if strings.HasPrefix(strings.ToLower(name), first) && !strings.EqualFold(name, query) {
				out = append(out, name)
			}
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func buildMatches(names []string, results fuzzy.Matches, limit int) []Match {
	if len(results) == 0 || limit <= 0 {
		return nil
	}
	if len(results) > limit {
		results = results[:limit]
	}
	matches := make([]Match, len(results))
	for i, r := range results {
		matches[i] = Match{Name: names[r.Index], Score: r.Score}
	}
	return matches
}
