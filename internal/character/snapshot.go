package character

import (
	"slices"
	"sort"
)

// Snapshot is a consistent copy of the character for readers outside the
// request thread.
type Snapshot struct {
	UserName       string   `json:"userName"`
	Class          string   `json:"class"`
	Path           string   `json:"path"`
	Muscle         int64    `json:"muscle"`
	Mysticality    int64    `json:"mysticality"`
	Moxie          int64    `json:"moxie"`
	FamiliarID     int      `json:"familiarId"`
	FamiliarWeight int      `json:"familiarWeight"`
	Skills         []string `json:"skills"`
	Inventory      []Tally  `json:"inventory"`
	Meat           int64    `json:"meat"`
	Contacts       []string `json:"contacts"`
	Sign           string   `json:"sign"`
	Hardcore       bool     `json:"hardcore"`
	PullsRemaining int      `json:"pullsRemaining"`
	HasStore       bool     `json:"hasStore"`
}

// Snapshot copies the character.
func (c *Character) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		UserName:       c.userName,
		Class:          c.class.Name(),
		Path:           c.path.Name,
		Muscle:         c.mus,
		Mysticality:    c.mys,
		Moxie:          c.mox,
		FamiliarID:     -1,
		Inventory:      slices.Clone(c.inventory),
		Meat:           c.meat,
		Contacts:       slices.Clone(c.contacts),
		Sign:           c.sign.Name,
		Hardcore:       c.hardcore,
		PullsRemaining: c.pulls,
		HasStore:       c.hasStore,
	}
	if c.familiar != nil {
		s.FamiliarID = c.familiar.ID()
		s.FamiliarWeight = c.familiar.Weight()
	}
	for skill := range c.skills {
		s.Skills = append(s.Skills, skill)
	}
	sort.Strings(s.Skills)
	return s
}
