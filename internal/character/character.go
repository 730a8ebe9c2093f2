// Package character models the logged-in player: class and path, base stats,
// the active familiar, known skills, inventory and storage tallies, meat, and
// the flags request handlers use to decide what to send. A Character is mutated
// only by handlers running on the request thread; other readers take a Snapshot.
package character

import (
	"slices"
	"sync"

	"loathing_assistant/internal/catalog"
)

// Tally is a count of one item.
type Tally struct {
	ItemID int    `json:"itemId"`
	Name   string `json:"name"`
	Count  int    `json:"count"`
}

// Familiar is the familiar currently in the familiar slot.
type Familiar struct {
	mu         sync.Mutex
	id         int
	experience int
	prefs      catalog.IntReader
}

// NewFamiliar returns a familiar of race id whose derived attributes are
// computed from prefs.
func NewFamiliar(id int, prefs catalog.IntReader) *Familiar {
	return &Familiar{id: id, prefs: prefs}
}

// ID returns the familiar race id.
func (f *Familiar) ID() int {
	return f.id
}

// SetExperience sets the accumulated experience.
func (f *Familiar) SetExperience(experience int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.experience = experience
}

// Weight returns the current base weight.
func (f *Familiar) Weight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return catalog.FamiliarWeight(f.id, f.experience, f.prefs)
}

// Character is the player model of one session.
type Character struct {
	mu sync.RWMutex

	userName    string
	class       *catalog.Class
	path        *catalog.Path
	mus         int64
	mys         int64
	mox         int64
	familiar    *Familiar
	skills      map[string]bool
	inventory   []Tally
	storage     []Tally
	meat        int64
	contacts    []string
	sign        catalog.Sign
	hardcore    bool
	pulls       int
	hasStore    bool
	hasClan     bool
	canInteract bool
	adventuring bool
}

// New returns an empty character for userName.
func New(userName string) *Character {
	c := &Character{}
	c.Reset(userName)
	return c
}

// Reset clears everything and assigns userName.
func (c *Character) Reset(userName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userName = userName
	c.class = catalog.AstralSpirit
	c.path = catalog.NoPath
	c.mus, c.mys, c.mox = 0, 0, 0
	c.familiar = nil
	c.skills = make(map[string]bool)
	c.inventory = nil
	c.storage = nil
	c.meat = 0
	c.contacts = nil
	c.sign = catalog.SignByName("None")
	c.hardcore = false
	c.pulls = 0
	c.hasStore = false
	c.hasClan = false
	c.canInteract = true
	c.adventuring = false
}

// UserName returns the player name.
func (c *Character) UserName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userName
}

// Class returns the ascension class.
func (c *Character) Class() *catalog.Class {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.class
}

// SetClass sets the ascension class and its path.
func (c *Character) SetClass(class *catalog.Class) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.class = class
	if class.Path() != catalog.NoPath {
		c.path = class.Path()
	}
}

// Path returns the current path.
func (c *Character) Path() *catalog.Path {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.path
}

// SetPath sets the current path.
func (c *Character) SetPath(path *catalog.Path) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.path = path
}

// SetBaseStats sets muscle, mysticality and moxie.
func (c *Character) SetBaseStats(mus, mys, mox int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mus, c.mys, c.mox = mus, mys, mox
}

// PrimeStatIndex returns the class prime stat for the current stats.
func (c *Character) PrimeStatIndex() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.class.PrimeStatIndex(c.mus, c.mys, c.mox)
}

// Familiar returns the active familiar, nil when the slot is empty.
func (c *Character) Familiar() *Familiar {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.familiar
}

// SetFamiliar fills the familiar slot.
func (c *Character) SetFamiliar(f *Familiar) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.familiar = f
}

// HasSkill reports whether the named skill is known.
func (c *Character) HasSkill(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.skills[name]
}

// AddSkill records a learned skill.
func (c *Character) AddSkill(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.skills[name] = true
}

// Count returns how many of itemID are in the inventory.
func (c *Character) Count(itemID int) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := indexOf(c.inventory, itemID); i >= 0 {
		return c.inventory[i].Count
	}
	return 0
}

// AddItem adjusts the inventory count of t.ItemID by t.Count. Entries that
// drop to zero are removed; new entries keep acquisition order.
func (c *Character) AddItem(t Tally) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inventory = addTally(c.inventory, t)
}

// Inventory returns a copy of the inventory.
func (c *Character) Inventory() []Tally {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.inventory)
}

// AddStorage adjusts the storage count of t.ItemID by t.Count.
func (c *Character) AddStorage(t Tally) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.storage = addTally(c.storage, t)
}

// StorageEmpty reports whether nothing is held in storage.
func (c *Character) StorageEmpty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.storage) == 0
}

// Meat returns the meat on hand.
func (c *Character) Meat() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.meat
}

// AddMeat adjusts the meat on hand by delta.
func (c *Character) AddMeat(delta int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.meat += delta
}

// Contacts returns the contact list.
func (c *Character) Contacts() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.contacts)
}

// SetContacts replaces the contact list.
func (c *Character) SetContacts(contacts []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.contacts = slices.Clone(contacts)
}

// SetSign sets the zodiac sign by name.
func (c *Character) SetSign(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sign = catalog.SignByName(name)
}

// InMysticalitySign reports whether the sign grants restaurant access.
func (c *Character) InMysticalitySign() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sign.Stat == catalog.Mysticality
}

// InMoxieSign reports whether the sign grants microbrewery access.
func (c *Character) InMoxieSign() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sign.Stat == catalog.Moxie
}

// InMuscleSign reports whether the sign is a muscle sign.
func (c *Character) InMuscleSign() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sign.Stat == catalog.Muscle
}

// CanEat reports whether the path allows food.
func (c *Character) CanEat() bool {
	return c.Path().AllowsEating()
}

// CanDrink reports whether the path allows booze.
func (c *Character) CanDrink() bool {
	return c.Path().AllowsDrinking()
}

// SetHardcore sets the hardcore flag.
func (c *Character) SetHardcore(hardcore bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hardcore = hardcore
}

// IsHardcore reports whether the run is hardcore.
func (c *Character) IsHardcore() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hardcore
}

// SetPullsRemaining sets the storage pulls left today.
func (c *Character) SetPullsRemaining(pulls int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pulls = pulls
}

// PullsRemaining returns the storage pulls left today.
func (c *Character) PullsRemaining() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pulls
}

// SetHasStore records whether the player owns a mall store.
func (c *Character) SetHasStore(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hasStore = v
}

// HasStore reports whether the player owns a mall store.
func (c *Character) HasStore() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hasStore
}

// SetHasClan records clan membership.
func (c *Character) SetHasClan(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hasClan = v
}

// HasClan reports clan membership.
func (c *Character) HasClan() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hasClan
}

// SetCanInteract records whether trading with other players is allowed.
func (c *Character) SetCanInteract(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.canInteract = v
}

// CanInteract reports whether trading with other players is allowed.
func (c *Character) CanInteract() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.canInteract
}

// SetAdventuring records whether an adventure request is in progress.
func (c *Character) SetAdventuring(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.adventuring = v
}

// IsAdventuring reports whether an adventure request is in progress.
func (c *Character) IsAdventuring() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.adventuring
}

func indexOf(tallies []Tally, itemID int) int {
	return slices.IndexFunc(tallies, func(t Tally) bool { return t.ItemID == itemID })
}

func addTally(tallies []Tally, t Tally) []Tally {
	i := indexOf(tallies, t.ItemID)
	if i < 0 {
		if t.Count <= 0 {
			return tallies
		}
		return append(tallies, t)
	}
	tallies[i].Count += t.Count
	if tallies[i].Count <= 0 {
		return slices.Delete(tallies, i, i+1)
	}
	return tallies
}
