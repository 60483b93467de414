// Package filter builds window predicates from include/exclude glob rules.
package filter

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/1broseidon/placekeeper/internal/snapshot"
)

// Filter decides whether a window entry takes part in capture or restore.
type Filter = snapshot.Filter

// Func adapts a plain function to Filter.
type Func = snapshot.FilterFunc

// Rules are glob patterns matched against process names and titles.
// Process patterns ignore case. An entry passes when it matches at least one
// include pattern of each non-empty include list and no exclude pattern.
type Rules struct {
	IncludeProcesses []string
	ExcludeProcesses []string
	IncludeTitles    []string
	ExcludeTitles    []string
}

// Empty reports whether the rules admit every entry.
func (r Rules) Empty() bool {
	return len(r.IncludeProcesses) == 0 && len(r.ExcludeProcesses) == 0 &&
		len(r.IncludeTitles) == 0 && len(r.ExcludeTitles) == 0
}

// Merge returns r with other's patterns appended.
func (r Rules) Merge(other Rules) Rules {
	return Rules{
		IncludeProcesses: append(append([]string(nil), r.IncludeProcesses...), other.IncludeProcesses...),
		ExcludeProcesses: append(append([]string(nil), r.ExcludeProcesses...), other.ExcludeProcesses...),
		IncludeTitles:    append(append([]string(nil), r.IncludeTitles...), other.IncludeTitles...),
		ExcludeTitles:    append(append([]string(nil), r.ExcludeTitles...), other.ExcludeTitles...),
	}
}

// Validate checks every pattern for glob syntax errors.
func (r Rules) Validate() error {
	lists := []struct {
		name     string
		patterns []string
	}{
		{"include_processes", r.IncludeProcesses},
		{"exclude_processes", r.ExcludeProcesses},
		{"include_titles", r.IncludeTitles},
		{"exclude_titles", r.ExcludeTitles},
	}
	for _, l := range lists {
		for i, p := range l.patterns {
			if strings.TrimSpace(p) == "" {
				return fmt.Errorf("%s[%d]: empty pattern", l.name, i)
			}
			if !doublestar.ValidatePattern(p) {
				return fmt.Errorf("%s[%d]: invalid pattern %q", l.name, i, p)
			}
		}
	}
	return nil
}

// Compile turns the rules into a Filter. Empty rules yield nil, which admits
// every entry.
func (r Rules) Compile() (Filter, error) {
	if r.Empty() {
		return nil, nil
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	c := compiled{
		includeProcesses: flattenAll(lowerAll(r.IncludeProcesses)),
		excludeProcesses: flattenAll(lowerAll(r.ExcludeProcesses)),
		includeTitles:    flattenAll(r.IncludeTitles),
		excludeTitles:    flattenAll(r.ExcludeTitles),
	}
	return c, nil
}

type compiled struct {
	includeProcesses []string
	excludeProcesses []string
	includeTitles    []string
	excludeTitles    []string
}

func (c compiled) Match(e snapshot.WindowEntry) bool {
	process := flatten(strings.ToLower(e.ProcessName))
	title := flatten(e.Title)
	if len(c.includeProcesses) > 0 && !matchAny(c.includeProcesses, process) {
		return false
	}
	if matchAny(c.excludeProcesses, process) {
		return false
	}
	if len(c.includeTitles) > 0 && !matchAny(c.includeTitles, title) {
		return false
	}
	return !matchAny(c.excludeTitles, title)
}

// All admits an entry only when every non-nil filter does. With no non-nil
// members it returns nil.
func All(filters ...Filter) Filter {
	var kept []Filter
	for _, f := range filters {
		if f != nil {
			kept = append(kept, f)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	}
	return Func(func(e snapshot.WindowEntry) bool {
		for _, f := range kept {
			if !f.Match(e) {
				return false
			}
		}
		return true
	})
}

func matchAny(patterns []string, s string) bool {
	for _, p := range patterns {
		// Patterns are validated in Compile, so the error is always nil.
		if ok, _ := doublestar.Match(p, s); ok {
			return true
		}
	}
	return false
}

// flatten hides path separators from doublestar so that * also spans the
// slashes common in window titles.
func flatten(s string) string {
	return strings.ReplaceAll(s, "/", "\x00")
}

func flattenAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = flatten(s)
	}
	return out
}

func lowerAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
