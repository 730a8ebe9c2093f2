package handlers

import (
	"strings"

	"loathing_assistant/internal/display"
	"loathing_assistant/internal/request"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const contactPhrases = "contact_list"

// ContactList refreshes the character's contact list.
type ContactList struct {
	contacts []string
}

// NewContactList returns a contact list request.
func NewContactList() *ContactList {
	return &ContactList{}
}

// Contacts returns the names read by the last run.
func (c *ContactList) Contacts() []string {
	return c.contacts
}

// Prepare implements request.Handler.
func (c *ContactList) Prepare(env *request.Env) (*request.Request, error) {
	env.Display.Update(display.Disabled, "Retrieving contact list...")
	return request.New("account_contactlist.php"), nil
}

// Classify implements request.Handler.
func (c *ContactList) Classify(env *request.Env, req *request.Request) request.Verdict {
	return request.Verdict{Kind: request.Success}
}

// Apply implements request.Handler.
func (c *ContactList) Apply(env *request.Env, req *request.Request, v request.Verdict) error {
	links := env.Phrases.For(contactPhrases)["player_link"]
	contacts, err := parseContacts(req.ResponseText, links)
	if err != nil {
		return err
	}
	c.contacts = contacts
	env.Character.SetContacts(contacts)
	env.Display.Message("Contact list retrieved.")
	return nil
}

// parseContacts returns the text of every anchor whose href contains one of
// links, in page order without duplicates.
func parseContacts(page string, links []string) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, err
	}

	var contacts []string
	seen := make(map[string]bool)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A && linksTo(n, links) {
			name := strings.TrimSpace(textOf(n))
			if name != "" && !seen[name] {
				seen[name] = true
				contacts = append(contacts, name)
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return contacts, nil
}

func linksTo(n *html.Node, links []string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "href" {
			continue
		}
		for _, link := range links {
			if strings.Contains(attr.Val, link) {
				return true
			}
		}
	}
	return false
}

func textOf(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		b.WriteString(textOf(child))
	}
	return b.String()
}
