package domain

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"
)

//go:embed synonyms.yaml
var synonymsYAML []byte

// synonymTables holds the fixed synonym expansions used by the embedding text
// builder. Each property and transaction type maps to a small phrase that
// improves both lexical and semantic matching.
type synonymTables struct {
	PropertyTypes    map[PropertyType]string    `yaml:"property_types"`
	TransactionTypes map[TransactionType]string `yaml:"transaction_types"`
}

var synonyms synonymTables

func init() {
	if err := yaml.Unmarshal(synonymsYAML, &synonyms); err != nil {
		panic(fmt.Sprintf("invalid synonym table: %v", err))
	}
}

// EmbeddingTextBuilderVersion tags the rendering rules of BuildEmbeddingText.
// It participates in ContentFingerprint, so bumping it invalidates every
// stored fingerprint and forces recomputation.
const EmbeddingTextBuilderVersion = "v1"

// BuildEmbeddingText deterministically renders the content fields of a listing
// into the canonical string handed to the embedding provider. Pure, no I/O.
//
// Rules: a type phrase built from the property-type and transaction-type
// synonym expansions, then title, then description if present, then location
// finest-to-coarsest omitting empty parts, then bedroom/bathroom counts in two
// surface forms, then the feature tags verbatim, space-joined in canonical
// order. The final string is lower-cased.
func BuildEmbeddingText(l Listing) string {
	parts := make([]string, 0, 8)

	propPhrase := synonyms.PropertyTypes[l.PropertyType]
	txPhrase := synonyms.TransactionTypes[l.TransactionType]
	switch {
	case propPhrase != "" && txPhrase != "":
		parts = append(parts, propPhrase+" for "+txPhrase)
	case propPhrase != "":
		parts = append(parts, propPhrase)
	case txPhrase != "":
		parts = append(parts, txPhrase)
	}

	parts = append(parts, l.Title)
	if l.Description != "" {
		parts = append(parts, l.Description)
	}

	if loc := joinNonEmpty(l.Location.District, l.Location.City, l.Location.Province); loc != "" {
		parts = append(parts, loc)
	}

	if l.Bedrooms > 0 {
		parts = append(parts, fmt.Sprintf("%d bedrooms %dbr", l.Bedrooms, l.Bedrooms))
	}
	if l.Bathrooms > 0 {
		parts = append(parts, fmt.Sprintf("%d bathrooms %dba", l.Bathrooms, l.Bathrooms))
	}

	if features := canonicalFeatures(l.Features); len(features) > 0 {
		parts = append(parts, strings.Join(features, " "))
	}

	return strings.ToLower(strings.Join(parts, " "))
}

// canonicalFeatures returns the feature tags trimmed, de-duplicated, and
// sorted. Features are a set: their input order must not change the rendered
// text or the fingerprint.
func canonicalFeatures(features []string) []string {
	seen := make(map[string]struct{}, len(features))
	out := make([]string, 0, len(features))
	for _, f := range features {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
