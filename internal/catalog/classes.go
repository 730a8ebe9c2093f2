package catalog

import (
	"strings"
)

// Stat is one of the three base stats.
type Stat int

const (
	NoStat Stat = iota - 1
	Muscle
	Mysticality
	Moxie
)

// BoolReader reads boolean preferences.
type BoolReader interface {
	Bool(name string) bool
}

// Class is an ascension class. Values are only ever the package-level
// pointers below, so classes compare with ==.
type Class struct {
	internal       string
	name           string
	id             int
	image          string
	primeStatIndex int
	stun           string
	path           *Path
	starterWeapon  int
}

var (
	AstralSpirit       = &Class{"ASTRAL_SPIRIT", "Astral Spirit", -1, "", -1, "", NoPath, -1}
	SealClubber        = &Class{"SEAL_CLUBBER", "Seal Clubber", 1, "club", 0, "Club Foot", NoPath, SealClub}
	TurtleTamer        = &Class{"TURTLE_TAMER", "Turtle Tamer", 2, "turtle", 0, "Shell Up", NoPath, TurtleTotem}
	Pastamancer        = &Class{"PASTAMANCER", "Pastamancer", 3, "pasta", 1, "Entangling Noodles", NoPath, PastaSpoon}
	Sauceror           = &Class{"SAUCEROR", "Sauceror", 4, "sauce", 1, "Soul Bubble", NoPath, Saucepan}
	DiscoBandit        = &Class{"DISCO_BANDIT", "Disco Bandit", 5, "disco", 2, "", NoPath, DiscoBall}
	AccordionThief     = &Class{"ACCORDION_THIEF", "Accordion Thief", 6, "accordion", 2, "Accordion Bash", NoPath, StolenAccordion}
	AvatarOfBoris      = &Class{"AVATAR_OF_BORIS", "Avatar of Boris", 11, "trusty", 0, "Broadside", AvatarOfBorisPath, -1}
	ZombieMaster       = &Class{"ZOMBIE_MASTER", "Zombie Master", 12, "tombstone", 0, "Corpse Pile", ZombieSlayer, -1}
	AvatarOfJarlsberg  = &Class{"AVATAR_OF_JARLSBERG", "Avatar of Jarlsberg", 14, "path12icon", 1, "Blend", AvatarOfJarlsbergPath, -1}
	AvatarOfSneakyPete = &Class{"AVATAR_OF_SNEAKY_PETE", "Avatar of Sneaky Pete", 15, "bigglasses", 2, "Snap Fingers", AvatarOfSneakyPetePath, -1}
	Ed                 = &Class{"ED", "Ed the Undying", 17, "thoth", 1, "Curse of Indecision", ActuallyEdTheUndying, -1}
	Cowpuncher         = &Class{"COWPUNCHER", "Cow Puncher", 18, "darkcow", 0, "", AvatarOfWestOfLoathing, -1}
	Beanslinger        = &Class{"BEANSLINGER", "Beanslinger", 19, "beancan", 1, "", AvatarOfWestOfLoathing, -1}
	SnakeOiler         = &Class{"SNAKE_OILER", "Snake Oiler", 20, "tinysnake", 2, "", AvatarOfWestOfLoathing, -1}
	GelatinousNoob     = &Class{"GELATINOUS_NOOB", "Gelatinous Noob", 23, "gelatinousicon", 2, "", GelatinousNoobPath, -1}
	Vampyre            = &Class{"VAMPYRE", "Vampyre", 24, "vampirefangs", 1, "Chill of the Tomb", DarkGyffte, -1}
	Plumber            = &Class{"PLUMBER", "Plumber", 25, "mario_hammer2", -1, "Spin Jump", PathOfThePlumber, -1}
	GreyGoo            = &Class{"GREY_GOO", "Grey Goo", 27, "greygooring", -1, "", GreyYou, -1}
)

// classes is in declaration order; lookups return the first hit.
var classes = []*Class{
	AstralSpirit, SealClubber, TurtleTamer, Pastamancer, Sauceror, DiscoBandit, AccordionThief,
	AvatarOfBoris, ZombieMaster, AvatarOfJarlsberg, AvatarOfSneakyPete, Ed, Cowpuncher,
	Beanslinger, SnakeOiler, GelatinousNoob, Vampyre, Plumber, GreyGoo,
}

var standardClasses = []*Class{SealClubber, TurtleTamer, Pastamancer, Sauceror, DiscoBandit, AccordionThief}

// AllClasses returns every playable class.
func AllClasses() []*Class {
	all := make([]*Class, 0, len(classes))
	for _, c := range classes {
		if c.id > -1 {
			all = append(all, c)
		}
	}
	return all
}

// StandardClasses returns the six original classes.
func StandardClasses() []*Class {
	return append([]*Class(nil), standardClasses...)
}

// ClassByID returns the class with id, AstralSpirit when unknown.
func ClassByID(id int) *Class {
	for _, c := range classes {
		if c.id == id {
			return c
		}
	}
	return AstralSpirit
}

// FindClass returns the first class whose name contains name, ignoring case.
// It returns AstralSpirit for an empty or unmatched name.
func FindClass(name string) *Class {
	return findBy(name, (*Class).Name)
}

// FindClassByPlural is FindClass over plural names.
func FindClassByPlural(plural string) *Class {
	return findBy(plural, (*Class).Plural)
}

func findBy(s string, field func(*Class) string) *Class {
	if s == "" {
		return AstralSpirit
	}
	lower := strings.ToLower(s)
	for _, c := range classes {
		if strings.Contains(strings.ToLower(field(c)), lower) {
			return c
		}
	}
	return AstralSpirit
}

func (c *Class) Name() string  { return c.name }
func (c *Class) ID() int       { return c.id }
func (c *Class) Image() string { return c.image }
func (c *Class) Path() *Path   { return c.path }
func (c *Class) String() string {
	return c.name
}

// Plural returns the plural display name.
func (c *Class) Plural() string {
	switch c {
	case AccordionThief:
		return "Accordion Thieves"
	case Ed:
		return "Eds the Undying"
	}
	if rest, ok := strings.CutPrefix(c.name, "Avatar of "); ok {
		return "Avatars of " + rest
	}
	return c.name + "s"
}

// Stun returns the class stun skill. Classes without one fall back to
// Shadow Noodles when considerShadowNoodles is set.
func (c *Class) Stun(prefs BoolReader) string {
	if c.stun != "" {
		return c.stun
	}
	if prefs != nil && prefs.Bool("considerShadowNoodles") {
		return "Shadow Noodles"
	}
	return "none"
}

// StarterWeapon returns the item id of the starting weapon, -1 outside the
// standard classes.
func (c *Class) StarterWeapon() int {
	return c.starterWeapon
}

// PrimeStatIndex returns 0, 1 or 2 for muscle, mysticality or moxie, -1 when
// undefined. Plumber and Grey Goo take the largest of the given base stats,
// ties going to muscle then mysticality.
func (c *Class) PrimeStatIndex(mus, mys, mox int64) int {
	switch c {
	case Plumber, GreyGoo:
		switch {
		case mus >= mys && mus >= mox:
			return 0
		case mus >= mys:
			return 2
		case mys >= mox:
			return 1
		default:
			return 2
		}
	}
	return c.primeStatIndex
}

// MainStat is PrimeStatIndex as a Stat.
func (c *Class) MainStat(mus, mys, mox int64) Stat {
	switch c.PrimeStatIndex(mus, mys, mox) {
	case 0:
		return Muscle
	case 1:
		return Mysticality
	case 2:
		return Moxie
	default:
		return NoStat
	}
}

// IsStandard reports whether c is one of the six original classes.
func (c *Class) IsStandard() bool {
	for _, s := range standardClasses {
		if s == c {
			return true
		}
	}
	return false
}

// SkillBase is the first skill id belonging to the class.
func (c *Class) SkillBase() int {
	return c.id * 1000
}

// Initials returns the first letter of each word of the internal name.
func (c *Class) Initials() string {
	var b strings.Builder
	for _, word := range strings.Split(c.internal, "_") {
		if word != "" {
			b.WriteByte(word[0])
		}
	}
	return b.String()
}
