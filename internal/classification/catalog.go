// Package classification holds the alias tables used to normalize offers and
// reschedule reasons found in free-form meeting reports.
package classification

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Catalog validation errors.
var (
	ErrDuplicateAlias   = errors.New("alias maps to more than one offer")
	ErrDuplicateKeyword = errors.New("keyword maps to more than one reason")
	ErrEmptyLabel       = errors.New("catalog entry has an empty label")
	ErrFallback         = errors.New("catalog needs exactly one fallback reason, declared last")
)

// Offer is a product offer with its canonical label and free-text aliases.
type Offer struct {
	Label   string   `yaml:"label"`
	Aliases []string `yaml:"aliases"`
}

// Reason is a reschedule reason with the keyword phrases that select it.
// The fallback reason has no keywords and is used when nothing else matches.
type Reason struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
	Fallback bool     `yaml:"fallback"`
}

type catalogFile struct {
	Offers  []Offer  `yaml:"offers"`
	Reasons []Reason `yaml:"reasons"`
}

// Catalog is an immutable pair of offer and reason tables.
// It is safe for concurrent use once built.
type Catalog struct {
	aliases map[string]int
	offers  []Offer
	reasons []Reason
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := Parse(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
})

// Default returns the built-in catalog.
func Default() *Catalog {
	return defaultCatalog()
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from YAML and validates its invariants.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog yaml: %w", err)
	}
	return New(file.Offers, file.Reasons)
}

// New builds a catalog from in-memory tables. Aliases and keywords are
// normalized; declaration order is preserved.
func New(offers []Offer, reasons []Reason) (*Catalog, error) {
	c := &Catalog{
		aliases: make(map[string]int),
		offers:  make([]Offer, 0, len(offers)),
		reasons: make([]Reason, 0, len(reasons)),
	}

	for i, o := range offers {
		label := strings.TrimSpace(o.Label)
		if label == "" {
			return nil, fmt.Errorf("%w: offer #%d", ErrEmptyLabel, i+1)
		}
		entry := Offer{Label: label, Aliases: make([]string, 0, len(o.Aliases))}
		for _, a := range o.Aliases {
			key := aliasKey(a)
			if key == "" {
				continue
			}
			if prev, ok := c.aliases[key]; ok {
				return nil, fmt.Errorf("%w: %q (%s, %s)", ErrDuplicateAlias, key, c.offers[prev].Label, label)
			}
			c.aliases[key] = i
			entry.Aliases = append(entry.Aliases, key)
		}
		c.offers = append(c.offers, entry)
	}

	seen := make(map[string]string)
	for i, r := range reasons {
		label := strings.TrimSpace(r.Label)
		if label == "" {
			return nil, fmt.Errorf("%w: reason #%d", ErrEmptyLabel, i+1)
		}
		if r.Fallback != (i == len(reasons)-1) {
			return nil, fmt.Errorf("%w: %q", ErrFallback, label)
		}
		entry := Reason{Label: label, Fallback: r.Fallback}
		if !r.Fallback {
			for _, k := range r.Keywords {
				key := Normalize(k)
				if key == "" {
					continue
				}
				if prev, ok := seen[key]; ok {
					return nil, fmt.Errorf("%w: %q (%s, %s)", ErrDuplicateKeyword, key, prev, label)
				}
				seen[key] = label
				entry.Keywords = append(entry.Keywords, key)
			}
		}
		c.reasons = append(c.reasons, entry)
	}
	if len(c.reasons) == 0 {
		return nil, ErrFallback
	}

	return c, nil
}

// LookupOffer finds the offer whose alias equals token, ignoring case and
// surrounding or repeated whitespace.
func (c *Catalog) LookupOffer(token string) (Offer, bool) {
	i, ok := c.aliases[aliasKey(token)]
	if !ok {
		return Offer{}, false
	}
	return c.offers[i], true
}

// NormalizeOffer maps token to its canonical offer label. Tokens outside the
// catalog come back trimmed and uppercased.
func (c *Catalog) NormalizeOffer(token string) string {
	if o, ok := c.LookupOffer(token); ok {
		return o.Label
	}
	return strings.ToUpper(strings.TrimSpace(token))
}

// MatchReason picks the first reason, in declaration order, that has a
// keyword contained in the normalized text. The fallback reason is returned
// when no keyword matches.
func (c *Catalog) MatchReason(text string) Reason {
	norm := Normalize(text)
	for _, r := range c.reasons {
		if r.Fallback {
			continue
		}
		for _, k := range r.Keywords {
			if strings.Contains(norm, k) {
				return r
			}
		}
	}
	return c.Fallback()
}

// Fallback returns the catch-all reason.
func (c *Catalog) Fallback() Reason {
	return c.reasons[len(c.reasons)-1]
}

// Offers returns the offer table in declaration order.
func (c *Catalog) Offers() []Offer {
	out := make([]Offer, len(c.offers))
	copy(out, c.offers)
	return out
}

// OfferLabels returns the canonical offer labels in declaration order.
func (c *Catalog) OfferLabels() []string {
	labels := make([]string, len(c.offers))
	for i, o := range c.offers {
		labels[i] = o.Label
	}
	return labels
}

// ReasonLabels returns the canonical reason labels in declaration order,
// fallback last.
func (c *Catalog) ReasonLabels() []string {
	labels := make([]string, len(c.reasons))
	for i, r := range c.reasons {
		labels[i] = r.Label
	}
	return labels
}

// IsOfferLabel reports whether label is a canonical offer label.
func (c *Catalog) IsOfferLabel(label string) bool {
	for _, o := range c.offers {
		if o.Label == label {
			return true
		}
	}
	return false
}

// Normalize lowercases text, turns punctuation and symbols into spaces and
// collapses runs of whitespace.
func Normalize(text string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return ' '
		}
		return unicode.ToLower(r)
	}, text)
	return strings.Join(strings.Fields(mapped), " ")
}

func aliasKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
