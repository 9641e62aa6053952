package search

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/sahilm/fuzzy"
)

// ErrNoMatch is returned when an input matches no filter option
var ErrNoMatch = errors.New("no matching option")

// optionIndex implements sahilm/fuzzy.Source over option labels
type optionIndex struct {
	options     []domain.FilterOption
	lowerLabels []string
}

func newOptionIndex(options []domain.FilterOption) *optionIndex {
	idx := &optionIndex{options: options, lowerLabels: make([]string, len(options))}
	for i, o := range options {
		idx.lowerLabels[i] = strings.ToLower(o.Label)
	}
	return idx
}

// String returns the lowercase label at index i (implements fuzzy.Source)
func (idx *optionIndex) String(i int) string { return idx.lowerLabels[i] }

// Len returns the number of options (implements fuzzy.Source)
func (idx *optionIndex) Len() int { return len(idx.options) }

// ResolveOption finds the option a user meant. An exact value or a
// case-insensitive label wins; otherwise the best fuzzy label match is used.
func ResolveOption(options []domain.FilterOption, input string) (domain.FilterOption, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return domain.FilterOption{}, fmt.Errorf("%w: empty input", ErrNoMatch)
	}

	for _, o := range options {
		if o.Value != "" && o.Value == input {
			return o, nil
		}
	}
	for _, o := range options {
		if strings.EqualFold(o.Label, input) {
			return o, nil
		}
	}

	idx := newOptionIndex(options)
	matches := fuzzy.FindFrom(strings.ToLower(input), idx)
	if len(matches) == 0 {
		return domain.FilterOption{}, fmt.Errorf("%w: %q", ErrNoMatch, input)
	}
	return options[matches[0].Index], nil
}

// ResolveOptions resolves each input, dropping duplicates while keeping order
func ResolveOptions(options []domain.FilterOption, inputs []string) ([]domain.FilterOption, error) {
	seen := make(map[string]bool, len(inputs))
	out := make([]domain.FilterOption, 0, len(inputs))
	for _, in := range inputs {
		o, err := ResolveOption(options, in)
		if err != nil {
			return nil, err
		}
		if seen[o.Value] {
			continue
		}
		seen[o.Value] = true
		out = append(out, o)
	}
	return out, nil
}

// Values returns the option values in order
func Values(options []domain.FilterOption) []string {
	out := make([]string, len(options))
	for i, o := range options {
		out[i] = o.Value
	}
	return out
}
