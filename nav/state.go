package nav

import (
	"strconv"
	"strings"
)

const (
	// DefaultSection is shown when nothing else applies.
	DefaultSection = "dashboard"
	// ProfileSection is the section name carried by profile history entries.
	ProfileSection = "userProfile"
	// DefaultView is the profile sub-view shown when none is given.
	DefaultView = "info"
)

// State is the current view: a section, or a user profile when UserID is set.
type State struct {
	Section string
	UserID  int64
	View    string
}

// SectionState returns the state for a plain section.
func SectionState(name string) State {
	if name == "" {
		name = DefaultSection
	}
	return State{Section: name}
}

// ProfileState returns the state for a user profile. An empty view means DefaultView.
func ProfileState(userID int64, view string) State {
	if view == "" {
		view = DefaultView
	}
	return State{Section: ProfileSection, UserID: userID, View: view}
}

func (s State) IsProfile() bool {
	return s.UserID != 0
}

// Payload is the history entry state.
type Payload struct {
	Section  string `json:"section"`
	UserID   int64  `json:"userId,omitempty"`
	ViewType string `json:"viewType,omitempty"`
}

// Fragment renders the URL fragment for a state, without the leading '#'.
// withView selects the user/<id>/<view> form.
func Fragment(s State, withView bool) string {
	if !s.IsProfile() {
		return s.Section
	}
	base := "user/" + strconv.FormatInt(s.UserID, 10)
	if withView {
		return base + "/" + s.View
	}
	return base
}

// ParseFragment maps a fragment to a state. "user/<id>[/<view>]" is a profile
// (view defaults to info); any other non-empty fragment names a section. ok is
// false for an empty fragment. A user fragment with a bad id falls back to the
// default section.
func ParseFragment(fragment string) (State, bool) {
	fragment = trimFragment(fragment)
	if fragment == "" {
		return State{}, false
	}
	if rest, isUser := strings.CutPrefix(fragment, "user/"); isUser {
		idPart, view, _ := strings.Cut(rest, "/")
		id, err := strconv.ParseInt(idPart, 10, 64)
		if err != nil || id <= 0 {
			return SectionState(DefaultSection), true
		}
		return ProfileState(id, view), true
	}
	return SectionState(fragment), true
}

// namesView reports whether a profile fragment spells out its view, as in
// "user/42/cars" but not "user/42".
func namesView(fragment string) bool {
	rest, isUser := strings.CutPrefix(trimFragment(fragment), "user/")
	if !isUser {
		return false
	}
	_, view, ok := strings.Cut(rest, "/")
	return ok && view != ""
}

func trimFragment(fragment string) string {
	return strings.Trim(strings.TrimPrefix(strings.TrimSpace(fragment), "#"), "/")
}

// stateFromPayload maps a popped history payload to a state. A nil payload is
// the default section.
func stateFromPayload(p *Payload) State {
	if p == nil {
		return SectionState(DefaultSection)
	}
	if p.UserID != 0 {
		return ProfileState(p.UserID, p.ViewType)
	}
	return SectionState(p.Section)
}
