// Package catalog holds the static game tables the request pipeline consults:
// ascension classes and paths, zodiac signs, items and familiars.
package catalog

// Path is a run modifier chosen at ascension.
type Path struct {
	ID   int
	Name string
}

// String returns the path's display name.
func (p *Path) String() string {
	return p.Name
}

var (
	NoPath                 = &Path{0, "None"}
	Boozetafarian          = &Path{1, "Boozetafarian"}
	Teetotaler             = &Path{2, "Teetotaler"}
	Oxygenarian            = &Path{3, "Oxygenarian"}
	AvatarOfBorisPath      = &Path{8, "Avatar of Boris"}
	ZombieSlayer           = &Path{10, "Zombie Slayer"}
	AvatarOfJarlsbergPath  = &Path{12, "Avatar of Jarlsberg"}
	AvatarOfSneakyPetePath = &Path{15, "Avatar of Sneaky Pete"}
	ActuallyEdTheUndying   = &Path{17, "Actually Ed the Undying"}
	AvatarOfWestOfLoathing = &Path{20, "Avatar of West of Loathing"}
	GelatinousNoobPath     = &Path{23, "Gelatinous Noob"}
	DarkGyffte             = &Path{24, "Dark Gyffte"}
	PathOfThePlumber       = &Path{25, "Path of the Plumber"}
	GreyYou                = &Path{40, "Grey You"}
)

var paths = []*Path{
	NoPath, Boozetafarian, Teetotaler, Oxygenarian, AvatarOfBorisPath, ZombieSlayer,
	AvatarOfJarlsbergPath, AvatarOfSneakyPetePath, ActuallyEdTheUndying,
	AvatarOfWestOfLoathing, GelatinousNoobPath, DarkGyffte, PathOfThePlumber, GreyYou,
}

// PathByID returns the path with id, NoPath when unknown.
func PathByID(id int) *Path {
	for _, p := range paths {
		if p.ID == id {
			return p
		}
	}
	return NoPath
}

// AllowsEating reports whether food can be consumed on the path.
func (p *Path) AllowsEating() bool {
	return p != Oxygenarian && p != Boozetafarian
}

// AllowsDrinking reports whether booze can be consumed on the path.
func (p *Path) AllowsDrinking() bool {
	return p != Oxygenarian && p != Teetotaler
}
