package canned

import (
	_ "embed"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed responses.yaml
var defaultTable []byte

// Rule maps a set of keywords to a fixed reply.
type Rule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Reply    string   `yaml:"reply"`
}

// Table is an ordered rule list with a default reply.
type Table struct {
	Rules   []Rule `yaml:"rules"`
	Default string `yaml:"default"`
}

// Responder picks canned replies by keyword.
type Responder struct {
	table Table
}

// New builds a responder from the embedded table.
func New() (*Responder, error) {
	return Parse(defaultTable)
}

// MustNew is New for package-level wiring where the embedded table is known good.
func MustNew() *Responder {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

// Parse builds a responder from a YAML table.
func Parse(data []byte) (*Responder, error) {
	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse canned table: %w", err)
	}
	if strings.TrimSpace(table.Default) == "" {
		return nil, fmt.Errorf("canned table has no default reply")
	}

	for i := range table.Rules {
		rule := &table.Rules[i]
		if strings.TrimSpace(rule.Reply) == "" {
			return nil, fmt.Errorf("canned rule %q has no reply", rule.Name)
		}
		keywords := rule.Keywords[:0]
		for _, kw := range rule.Keywords {
			if kw = normalize(kw); kw != "" {
				keywords = append(keywords, " "+kw+" ")
			}
		}
		rule.Keywords = keywords
	}

	return &Responder{table: table}, nil
}

// Respond returns the reply of the first rule matching text, or the default.
func (r *Responder) Respond(text string) string {
	reply, _ := r.Match(text)
	return reply
}

// Match is Respond that also names the rule that fired ("default" when none did).
// Keywords match whole words only, so "ruta" does not fire on "disfrutar".
func (r *Responder) Match(text string) (string, string) {
	normalized := normalize(text)
	if normalized != "" {
		padded := " " + normalized + " "
		for _, rule := range r.table.Rules {
			for _, kw := range rule.Keywords {
				if strings.Contains(padded, kw) {
					return rule.Reply, rule.Name
				}
			}
		}
	}
	return r.table.Default, "default"
}

// normalize lowercases text, strips diacritics and reduces it to
// space-separated words.
func normalize(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, text)
	if err != nil {
		stripped = text
	}
	words := strings.FieldsFunc(strings.ToLower(stripped), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(words, " ")
}
