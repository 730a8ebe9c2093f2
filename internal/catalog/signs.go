package catalog

import "strings"

// Sign is a zodiac sign chosen at ascension.
type Sign struct {
	Name string
	Stat Stat
}

var signs = []Sign{
	{"Mongoose", Muscle}, {"Wallaby", Muscle}, {"Vole", Muscle},
	{"Platypus", Mysticality}, {"Opossum", Mysticality}, {"Marmot", Mysticality},
	{"Wombat", Moxie}, {"Blender", Moxie}, {"Packrat", Moxie},
}

// SignByName returns the sign called name, ignoring case, with Stat NoStat
// for unknown names.
func SignByName(name string) Sign {
	for _, s := range signs {
		if strings.EqualFold(s.Name, name) {
			return s
		}
	}
	return Sign{Name: name, Stat: NoStat}
}
