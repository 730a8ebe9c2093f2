package request

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed phrases.yaml
var defaultPhrases []byte

// Phrasebook maps a phrase key to the substrings that signal it.
type Phrasebook map[string][]string

// Find returns the first phrase of key contained in text.
func (p Phrasebook) Find(key, text string) (string, bool) {
	for _, phrase := range p[key] {
		if strings.Contains(text, phrase) {
			return phrase, true
		}
	}
	return "", false
}

// Matches reports whether text contains any phrase of key.
func (p Phrasebook) Matches(key, text string) bool {
	_, ok := p.Find(key, text)
	return ok
}

// Dictionary holds the phrasebook of every handler, by handler name.
type Dictionary map[string]Phrasebook

// For returns the phrasebook of handler, empty when none is defined.
func (d Dictionary) For(handler string) Phrasebook {
	if p, ok := d[handler]; ok {
		return p
	}
	return Phrasebook{}
}

// DefaultPhrases returns the built-in dictionary.
func DefaultPhrases() Dictionary {
	d, err := parsePhrases(defaultPhrases)
	if err != nil {
		panic(fmt.Sprintf("request: built-in phrases: %s", err))
	}
	return d
}

// LoadPhrases returns the built-in dictionary with the lists of the YAML file
// at path laid over it. An empty path returns the built-in dictionary.
func LoadPhrases(path string) (Dictionary, error) {
	d := DefaultPhrases()
	if path == "" {
		return d, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("request: read phrases: %w", err)
	}
	override, err := parsePhrases(data)
	if err != nil {
		return nil, err
	}

	for handler, book := range override {
		if d[handler] == nil {
			d[handler] = Phrasebook{}
		}
		for key, phrases := range book {
			d[handler][key] = phrases
		}
	}
	return d, nil
}

func parsePhrases(data []byte) (Dictionary, error) {
	var d Dictionary
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("request: parse phrases: %w", err)
	}
	if d == nil {
		d = Dictionary{}
	}
	return d, nil
}
