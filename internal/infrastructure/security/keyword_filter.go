package security

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/kidchat/internal/domain"
	"github.com/doeshing/kidchat/internal/pkg/filesystem"
	"github.com/doeshing/kidchat/internal/ports"
)

// KeywordFilter implements the ContentFilter port with case-insensitive substring matching.
// Matching is deliberately not word-boundary aware: "ass" matches "assassin".
type KeywordFilter struct {
	placeholder string
}

// SeedFile is the YAML schema of the optional banned term seed list.
type SeedFile struct {
	Terms []string `yaml:"terms"`
}

// NewKeywordFilter builds a filter that redacts to placeholder (or the default).
func NewKeywordFilter(placeholder string) *KeywordFilter {
	if placeholder == "" {
		placeholder = domain.DefaultRedactionPlaceholder
	}
	return &KeywordFilter{placeholder: placeholder}
}

// Placeholder returns the redaction text.
func (f *KeywordFilter) Placeholder() string {
	return f.placeholder
}

// Normalize turns the raw comma-separated list into match-ready terms.
// Newlines are not separators; they are removed before splitting.
func (f *KeywordFilter) Normalize(raw string) []string {
	raw = strings.NewReplacer("\r", "", "\n", "").Replace(raw)
	var terms []string
	for _, part := range strings.Split(raw, ",") {
		term := foldTerm(part)
		if term == "" {
			continue
		}
		terms = append(terms, term)
	}
	return terms
}

// Apply implements ports.ContentFilter.
func (f *KeywordFilter) Apply(text string, terms []string) (string, bool) {
	result := f.Evaluate(text, terms)
	return result.Output, result.Filtered
}

// Evaluate returns the placeholder on the first term found in text, and the text unchanged otherwise.
func (f *KeywordFilter) Evaluate(text string, terms []string) domain.FilterResult {
	if text == "" || len(terms) == 0 {
		return domain.FilterResult{Output: text}
	}
	haystack := norm.NFC.String(strings.ToLower(text))
	for _, term := range terms {
		term = foldTerm(term)
		if term == "" {
			continue
		}
		if strings.Contains(haystack, term) {
			return domain.FilterResult{Output: f.placeholder, Filtered: true, MatchedTerm: term}
		}
	}
	return domain.FilterResult{Output: text}
}

func foldTerm(term string) string {
	return norm.NFC.String(strings.ToLower(strings.TrimSpace(term)))
}

// LoadSeedTerms reads a YAML seed list and returns it as a comma-separated banned term source.
// A missing file yields an empty list.
func LoadSeedTerms(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(filesystem.ExpandHome(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read seed file: %w", err)
	}
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return "", fmt.Errorf("parse seed file %s: %w", path, err)
	}
	var kept []string
	for _, term := range seed.Terms {
		term = strings.TrimSpace(strings.ReplaceAll(term, ",", ""))
		if term != "" {
			kept = append(kept, term)
		}
	}
	return strings.Join(kept, ", "), nil
}

var _ ports.ContentFilter = (*KeywordFilter)(nil)
