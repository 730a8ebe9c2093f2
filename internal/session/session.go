// Package session ties together the collaborators of one logged-in player:
// the request thread with its environment, initialisation after login, and the
// prerequisite requests run before a panel is shown.
package session

import (
	"context"
	"slices"
	"strings"
	"sync"

	"loathing_assistant/internal/display"
	"loathing_assistant/internal/handlers"
	"loathing_assistant/internal/request"
	"loathing_assistant/internal/requestthread"
)

//go:generate mockgen -destination=mocks/mock_opener.go -package=mocks loathing_assistant/internal/session PanelOpener

// PanelOpener shows a named panel of the user interface.
type PanelOpener interface {
	OpenPanel(name string) error
}

// Options are the collaborators of a session outside the pipeline.
type Options struct {
	// Opener shows panels; nil only logs them.
	Opener PanelOpener
	// StartRelay starts the local control server; it must be idempotent.
	StartRelay func() error
}

// Session is one player's pipeline.
type Session struct {
	thread     *requestthread.Thread
	env        *request.Env
	opener     PanelOpener
	startRelay func() error

	mu                  sync.Mutex
	restaurantFetched   bool
	microbreweryFetched bool
	stashFetched        bool
}

// New creates a session running on th.
func New(th *requestthread.Thread, opts Options) *Session {
	return &Session{
		thread:     th,
		env:        th.Env(),
		opener:     opts.Opener,
		startRelay: opts.StartRelay,
	}
}

// Env returns the environment handlers run with.
func (s *Session) Env() *request.Env {
	return s.env
}

// Thread returns the request thread.
func (s *Session) Thread() *requestthread.Thread {
	return s.thread
}

// MakeRequest runs h on the request thread.
func (s *Session) MakeRequest(ctx context.Context, h request.Handler) error {
	return s.thread.MakeRequest(ctx, h)
}

// Sequence runs fn inside one sequence bracket.
func (s *Session) Sequence(fn func() error) error {
	return s.thread.Sequence(fn)
}

// ForceContinue clears a halted state at the next sequence boundary.
func (s *Session) ForceContinue() {
	s.thread.ForceContinue()
}

// Initialize loads the preferences of username and prepares the session the
// way a fresh login does. Logging in again as the same user does nothing.
func (s *Session) Initialize(ctx context.Context, username string) error {
	original := s.env.Character.UserName()
	if err := s.env.Prefs.Load(ctx, username); err != nil {
		return err
	}
	if strings.EqualFold(original, username) {
		return nil
	}
	s.env.Character.Reset(username)
	s.mu.Lock()
	s.restaurantFetched, s.microbreweryFetched, s.stashFetched = false, false, false
	s.mu.Unlock()

	if s.env.Display.State().Halting() {
		return nil
	}

	if s.env.PasswordHash != "" && s.env.Prefs.Bool("retrieveContacts") {
		contacts := handlers.NewContactList()
		if err := s.MakeRequest(ctx, contacts); err != nil {
			s.env.Log.Sugar().Errorf("Failed to retrieve contacts: %s", err)
		}
		s.env.Prefs.SetBool("retrieveContacts", len(s.env.Character.Contacts()) > 0)
	}

	s.CheckPanelSettings()

	for _, panel := range s.InitialPanels() {
		if panel != "EventsFrame" {
			s.OpenPanel(ctx, panel)
		}
	}
	return nil
}

// CheckPanelSettings fills empty panel settings of the current user from the
// shared defaults, falling back to the local relay server alone.
func (s *Session) CheckPanelSettings() {
	prefs := s.env.Prefs

	if prefs.GlobalString("initialFrames") == "" && prefs.GlobalString("initialDesktop") == "" {
		prefs.SetGlobalString("initialFrames", prefs.SharedString("", "initialFrames"))
		prefs.SetGlobalString("initialDesktop", prefs.SharedString("", "initialDesktop"))
	}

	if prefs.GlobalString("initialFrames") == "" && prefs.GlobalString("initialDesktop") == "" {
		prefs.SetGlobalString("initialFrames", "LocalRelayServer")
		prefs.SetGlobalString("initialDesktop", "")
	}
}

// InitialPanels lists the panels opened after login: the initial frames in
// order without duplicates, minus those docked on the desktop. Storage is left
// out in hardcore or without pulls. Nothing opens in relay browser only mode.
func (s *Session) InitialPanels() []string {
	prefs := s.env.Prefs
	if prefs.Bool("relayBrowserOnly") {
		return nil
	}

	var panels []string
	if frames := prefs.GlobalString("initialFrames"); frames != "" {
		for _, name := range strings.Split(frames, ",") {
			if name == "HagnkStorageFrame" && (s.env.Character.IsHardcore() || s.env.Character.PullsRemaining() == 0) {
				continue
			}
			if !slices.Contains(panels, name) {
				panels = append(panels, name)
			}
		}
	}

	for _, name := range strings.Split(prefs.GlobalString("initialDesktop"), ",") {
		if i := slices.Index(panels, name); i >= 0 {
			panels = slices.Delete(panels, i, i+1)
		}
	}
	return panels
}

// panelPages lists the page fetched before showing a panel that is refused
// while adventuring.
var panelPages = map[string]string{
	"MailboxFrame":          "messages.php",
	"MuseumFrame":           "displaycollection.php",
	"FlowerHunterFrame":     "peevpee.php",
	"CakeArenaFrame":        "arena.php",
	"FamiliarTrainingFrame": "arena.php",
}

// OpenPanel runs the requests panel name depends on and then shows it. It
// reports whether the panel was shown. Failures of the opener are logged.
func (s *Session) OpenPanel(ctx context.Context, name string) bool {
	if name == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := s.env.Character

	switch name {
	case "LocalRelayServer":
		if s.startRelay == nil {
			return false
		}
		if err := s.startRelay(); err != nil {
			s.env.Log.Sugar().Errorf("Failed to start local relay server: %s", err)
			return false
		}
		return true

	case "HagnkStorageFrame":
		if ch.StorageEmpty() || ch.PullsRemaining() < 1 {
			return false
		}

	case "KoLMessenger":
		err := s.Sequence(func() error {
			chat := handlers.NewFetch("submitnewchat.php").WithPassword().WithField("graf", "/listen")
			s.fetch(ctx, chat)
			s.env.Display.Message("Chat started.")
			return nil
		})
		if err != nil {
			s.env.Log.Sugar().Errorf("Failed to prepare panel %s: %s", name, err)
		}

	case "ItemManageFrame":
		if ch.IsAdventuring() {
			break
		}
		if ch.CanEat() && ch.InMysticalitySign() && !s.restaurantFetched {
			s.restaurantFetched = s.fetch(ctx, handlers.NewFetch("restaurant.php"))
		}
		if ch.CanDrink() && ch.InMoxieSign() && !s.microbreweryFetched {
			s.microbreweryFetched = s.fetch(ctx, handlers.NewFetch("brewery.php"))
		}
		if s.env.Prefs.Bool("showStashIngredients") && ch.CanInteract() && ch.HasClan() && !s.stashFetched {
			s.stashFetched = s.fetch(ctx, handlers.NewFetch("clan_stash.php"))
		}

	case "StoreManageFrame":
		if !ch.HasStore() {
			s.env.Display.Update(display.Error, "Sorry, you don't have a store.")
			return false
		}
		if !ch.IsAdventuring() {
			err := s.Sequence(func() error {
				s.fetch(ctx, handlers.NewFetch("manageprices.php"))
				s.fetch(ctx, handlers.NewFetch("managestore.php"))
				return nil
			})
			if err != nil {
				s.env.Log.Sugar().Errorf("Failed to prepare panel %s: %s", name, err)
			}
		}

	case "RestoreOptionsFrame":
		name = "OptionsFrame"

	default:
		if page, ok := panelPages[name]; ok {
			if s.showAdventuringMessage() {
				return false
			}
			s.fetch(ctx, handlers.NewFetch(page))
		}
	}

	if s.opener == nil {
		s.env.Log.Sugar().Infof("Panel %s ready", name)
		return true
	}
	if err := s.opener.OpenPanel(name); err != nil {
		s.env.Log.Sugar().Errorf("Failed to open panel %s: %s", name, err)
		return false
	}
	return true
}

func (s *Session) showAdventuringMessage() bool {
	if !s.env.Character.IsAdventuring() {
		return false
	}
	err := s.Sequence(func() error {
		s.env.Display.Message("You are currently adventuring.")
		return nil
	})
	if err != nil {
		s.env.Log.Sugar().Errorf("Failed to show adventuring message: %s", err)
	}
	return true
}

// fetch runs f and reports whether the page arrived.
func (s *Session) fetch(ctx context.Context, f *handlers.Fetch) bool {
	if err := s.MakeRequest(ctx, f); err != nil {
		s.env.Log.Sugar().Errorf("Failed to fetch %s: %s", f.Path(), err)
		return false
	}
	return true
}

// Logout ends the player's game session and releases the session for the
// next login: the character is cleared on the request thread, cached panel
// pages are forgotten and a halted state is reset.
func (s *Session) Logout(ctx context.Context) error {
	if s.env.Character.UserName() == "" {
		return nil
	}

	err := s.thread.Do(ctx, func(ctx context.Context) error {
		if err := request.Run(ctx, s.env, handlers.NewFetch("logout.php")); err != nil {
			s.env.Log.Sugar().Warnf("Failed to log out of the game: %s", err)
		}
		s.env.Character.Reset("")
		return nil
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.restaurantFetched, s.microbreweryFetched, s.stashFetched = false, false, false
	s.mu.Unlock()

	s.thread.ForceContinue()
	s.env.Display.Message("Logged out.")
	return nil
}

// AutoLogin initialises the session of the user named by the shared
// autoLogin preference. It returns that name, "" when none is set or no
// password hash is available.
func (s *Session) AutoLogin(ctx context.Context) (string, error) {
	user := s.env.Prefs.SharedString("", "autoLogin")
	if user == "" {
		return "", nil
	}
	if s.env.PasswordHash == "" {
		s.env.Log.Sugar().Warnf("No password hash saved for %s, skipping auto login", user)
		return "", nil
	}
	if err := s.Initialize(ctx, user); err != nil {
		return "", err
	}
	return user, nil
}
