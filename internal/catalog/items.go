package catalog

import (
	"math"
	"strings"
)

// Consumption is how an item is used up.
type Consumption int

const (
	NotUsable Consumption = iota
	Eat
	Drink
	Spleen
	Usable
	MultiUsable
	Equipment
)

// Consumable reports whether k fills an organ.
func (k Consumption) Consumable() bool {
	return k == Eat || k == Drink || k == Spleen
}

// Item ids used by the request handlers.
const (
	UnknownItem             = -1
	SealClub                = 1
	Saucepan                = 2
	PastaSpoon              = 3
	TurtleTotem             = 4
	DiscoBall               = 9
	StolenAccordion         = 11
	BeerSchlitz             = 41
	BeerWiller              = 81
	Grapefruit              = 243
	Lemon                   = 332
	ColdWad                 = 1452
	MilkOfMagnesium         = 1650
	Muschat                 = 9496
	BigBookOfEverySkill     = 10979
	PileOfUselessRobotParts = 11187
)

// Item is one catalogue entry.
type Item struct {
	ID      int
	Name    string
	plural  string
	Use     Consumption
	maxUses int
	// UsedTodayKey names the preference recording a once-per-day use.
	UsedTodayKey string
	// ActiveKey names the preference recording the item's lingering effect.
	ActiveKey string
}

// Plural returns the plural display name.
func (i *Item) Plural() string {
	if i.plural != "" {
		return i.plural
	}
	return i.Name + "s"
}

// MaxUses is how many can be used at once outside of path restrictions.
func (i *Item) MaxUses() int {
	if i.maxUses > 0 {
		return i.maxUses
	}
	return math.MaxInt32
}

var items = []*Item{
	{ID: SealClub, Name: "seal-clubbing club", Use: Equipment},
	{ID: Saucepan, Name: "saucepan", Use: Equipment},
	{ID: PastaSpoon, Name: "pasta spoon", Use: Equipment},
	{ID: TurtleTotem, Name: "turtle totem", Use: Equipment},
	{ID: DiscoBall, Name: "disco ball", Use: Equipment},
	{ID: StolenAccordion, Name: "stolen accordion", Use: Equipment},
	{ID: BeerSchlitz, Name: "Ice-Cold Sir Schlitz", Use: Drink},
	{ID: BeerWiller, Name: "Ice-Cold Willer", Use: Drink},
	{ID: Grapefruit, Name: "grapefruit", Use: Eat},
	{ID: Lemon, Name: "lemon", Use: Eat},
	{ID: ColdWad, Name: "cold wad", Use: Spleen},
	{ID: MilkOfMagnesium, Name: "milk of magnesium", plural: "milks of magnesium", Use: Usable, maxUses: 1,
		UsedTodayKey: "_milkOfMagnesiumUsed", ActiveKey: "milkOfMagnesiumActive"},
	{ID: Muschat, Name: "Muschat", Use: Drink},
	{ID: BigBookOfEverySkill, Name: "The Big Book of Every Skill", plural: "copies of The Big Book of Every Skill", Use: Usable, maxUses: 1,
		UsedTodayKey: "_bookOfEverySkillUsed"},
	{ID: PileOfUselessRobotParts, Name: "pile of useless robot parts", plural: "piles of useless robot parts", Use: Usable, maxUses: 1},
}

// ItemByID returns the item with id and whether it is known.
func ItemByID(id int) (*Item, bool) {
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return nil, false
}

// ItemName returns the name of id, "" when unknown.
func ItemName(id int) string {
	if it, ok := ItemByID(id); ok {
		return it.Name
	}
	return ""
}

// ItemID resolves a singular or plural item name, ignoring case.
// It returns UnknownItem when nothing matches.
func ItemID(name string) int {
	name = strings.TrimSpace(name)
	for _, it := range items {
		if strings.EqualFold(it.Name, name) || strings.EqualFold(it.Plural(), name) {
			return it.ID
		}
	}
	return UnknownItem
}
