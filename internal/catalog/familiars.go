package catalog

import "math"

// Familiar ids used by the request handlers.
const (
	NoFamiliar    = -1
	Mosquito      = 1
	HomemadeRobot = 275
)

// HomemadeRobotUpgradeLimit is the number of robot part piles a homemade
// robot accepts.
const HomemadeRobotUpgradeLimit = 9

// IntReader reads integer preferences.
type IntReader interface {
	Int(name string) int
}

// FamiliarType is a familiar race.
type FamiliarType struct {
	ID   int
	Race string
}

var familiars = []*FamiliarType{
	{ID: Mosquito, Race: "Mosquito"},
	{ID: HomemadeRobot, Race: "Homemade Robot"},
}

// FamiliarByID returns the familiar race with id and whether it is known.
func FamiliarByID(id int) (*FamiliarType, bool) {
	for _, f := range familiars {
		if f.ID == id {
			return f, true
		}
	}
	return nil, false
}

// FamiliarWeight returns the base weight of a familiar of race id with the
// given experience. The homemade robot ignores experience and weighs 1 plus
// 11 per installed upgrade.
func FamiliarWeight(id, experience int, prefs IntReader) int {
	if id == HomemadeRobot && prefs != nil {
		upgrades := min(prefs.Int("homemadeRobotUpgrades"), HomemadeRobotUpgradeLimit)
		return 1 + 11*upgrades
	}
	weight := int(math.Sqrt(float64(experience)))
	return max(1, min(weight, 20))
}
