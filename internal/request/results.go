package request

import (
	"io"
	"regexp"
	"strconv"
	"strings"

	"loathing_assistant/internal/catalog"
	"loathing_assistant/internal/character"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	acquireItemPattern  = regexp.MustCompile(`^You acquire an item: (.+?)\.?$`)
	acquireCountPattern = regexp.MustCompile(`^You acquire (\d[\d,]*) (.+?)\.?$`)
	acquireParenPattern = regexp.MustCompile(`^You acquire (.+?) \((\d[\d,]*)\)\.?$`)
	meatPattern         = regexp.MustCompile(`^You (gain|lose|spent) (\d[\d,]*) Meat`)
)

// ResultPhrases names the phrasebook read when parsing side effects.
const ResultPhrases = "results"

// blockElements end a line of plain text.
var blockElements = map[atom.Atom]bool{
	atom.Br: true, atom.P: true, atom.Div: true, atom.Td: true, atom.Tr: true,
	atom.Table: true, atom.Center: true, atom.Li: true, atom.Blockquote: true,
}

// Results lists the side effects found in a reply.
type Results struct {
	Items  []character.Tally
	Meat   int64
	Skills []string
}

// PlainText returns the text content of a HTML fragment with one line per
// block element and entities decoded.
func PlainText(fragment string) string {
	return extractText(fragment, true)
}

// StripTags removes every tag from a HTML fragment, leaving the text between
// tags joined as it was.
func StripTags(fragment string) string {
	return extractText(fragment, false)
}

func extractText(fragment string, lines bool) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				b.WriteString(string(z.Raw()))
			}
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			if !lines {
				continue
			}
			name, _ := z.TagName()
			if blockElements[atom.Lookup(name)] {
				b.WriteByte('\n')
			}
		}
	}
}

// ParseResults reads the side effects reported by a reply fragment. A line
// opening with a skill_learned phrase of book followed by a colon names a
// skill.
func ParseResults(book Phrasebook, fragment string) Results {
	var res Results
	for _, line := range strings.Split(PlainText(fragment), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}

		if skill, ok := learnedSkill(book, line); ok {
			res.Skills = append(res.Skills, skill)
			continue
		}
		if m := acquireItemPattern.FindStringSubmatch(line); m != nil {
			res.Items = append(res.Items, tally(m[1], 1))
			continue
		}
		if m := acquireParenPattern.FindStringSubmatch(line); m != nil {
			res.Items = append(res.Items, tally(m[1], parseCount(m[2])))
			continue
		}
		if m := acquireCountPattern.FindStringSubmatch(line); m != nil {
			res.Items = append(res.Items, tally(m[2], parseCount(m[1])))
			continue
		}
		if m := meatPattern.FindStringSubmatch(line); m != nil {
			amount := int64(parseCount(m[2]))
			if m[1] != "gain" {
				amount = -amount
			}
			res.Meat += amount
		}
	}
	return res
}

// ProcessResults applies the side effects reported by a reply fragment to
// the character of env, returning what was applied. Items missing from the
// catalogue are logged and skipped.
func ProcessResults(env *Env, fragment string) Results {
	return ApplyResults(env, ParseResults(env.Phrases.For(ResultPhrases), fragment))
}

func learnedSkill(book Phrasebook, line string) (string, bool) {
	for _, phrase := range book["skill_learned"] {
		if rest, ok := strings.CutPrefix(line, phrase+": "); ok {
			if skill := strings.TrimSuffix(rest, "."); skill != "" {
				return skill, true
			}
		}
	}
	return "", false
}

// ApplyResults applies parsed side effects to the character of env.
func ApplyResults(env *Env, res Results) Results {
	applied := Results{Meat: res.Meat, Skills: res.Skills}

	for _, t := range res.Items {
		if t.ItemID == catalog.UnknownItem {
			env.Log.Sugar().Warnf("Acquired unrecognized item %q", t.Name)
			continue
		}
		env.Character.AddItem(t)
		applied.Items = append(applied.Items, t)
	}
	if res.Meat != 0 {
		env.Character.AddMeat(res.Meat)
	}
	for _, skill := range res.Skills {
		env.Character.AddSkill(skill)
	}
	return applied
}

func tally(name string, count int) character.Tally {
	id := catalog.ItemID(name)
	if id != catalog.UnknownItem {
		name = catalog.ItemName(id)
	}
	return character.Tally{ItemID: id, Name: name, Count: count}
}

func parseCount(s string) int {
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0
	}
	return n
}
