package nav

import "strconv"

// Model is the reducer state.
type Model struct {
	Current State
	// Replaying is set while a back/forward navigation is being applied.
	Replaying bool
}

// Event is a navigation input.
type Event interface{ event() }

type (
	GoToSection     struct{ Name string }
	GoToUserProfile struct{ UserID int64 }
	SetProfileView  struct {
		View   string
		UserID int64
	}
	// PopState is a back/forward navigation carrying the entry's payload.
	PopState struct{ Payload *Payload }
	// Init is the initial load. LastSection is the persisted section name.
	Init struct {
		Fragment    string
		LastSection string
	}
	// ReplayDone ends replaying mode after PopState effects were applied.
	ReplayDone struct{}
)

func (GoToSection) event()     {}
func (GoToUserProfile) event() {}
func (SetProfileView) event()  {}
func (PopState) event()        {}
func (Init) event()            {}
func (ReplayDone) event()      {}

// Effect is a side effect requested by Reduce.
type Effect interface{ effect() }

type (
	PushHistory struct {
		Payload  Payload
		Fragment string
	}
	ReplaceHistory struct {
		Payload  Payload
		Fragment string
	}
	PersistLastSection struct{ Name string }
	RenderSection      struct{ Name string }
	LoadSection        struct{ Name string }
	RenderProfile      struct{ UserID int64 }
	LoadUser           struct{ UserID int64 }
	RenderProfileView  struct {
		UserID int64
		View   string
	}
)

func (PushHistory) effect()        {}
func (ReplaceHistory) effect()     {}
func (PersistLastSection) effect() {}
func (RenderSection) effect()      {}
func (LoadSection) effect()        {}
func (RenderProfile) effect()      {}
func (LoadUser) effect()           {}
func (RenderProfileView) effect()  {}

// Reduce computes the next model and the effects to apply. It is pure.
func Reduce(m Model, ev Event) (Model, []Effect) {
	switch e := ev.(type) {
	case GoToSection:
		next := SectionState(e.Name)
		var effects []Effect
		if !m.Replaying {
			effects = append(effects, PushHistory{Payload: Payload{Section: next.Section}, Fragment: next.Section})
		}
		effects = append(effects, showSection(next.Section)...)
		return Model{Current: next, Replaying: m.Replaying}, effects

	case GoToUserProfile:
		if e.UserID <= 0 {
			return m, nil
		}
		next := ProfileState(e.UserID, "")
		var effects []Effect
		if !m.Replaying {
			effects = append(effects, PushHistory{
				Payload:  Payload{Section: ProfileSection, UserID: e.UserID},
				Fragment: Fragment(next, false),
			})
		}
		effects = append(effects,
			PersistLastSection{Name: ProfileSection},
			RenderProfile{UserID: e.UserID},
			LoadUser{UserID: e.UserID},
		)
		return Model{Current: next, Replaying: m.Replaying}, effects

	case SetProfileView:
		if e.UserID <= 0 {
			return m, nil
		}
		next := ProfileState(e.UserID, e.View)
		var effects []Effect
		if !m.Replaying {
			effects = append(effects, PushHistory{
				Payload:  Payload{Section: ProfileSection, UserID: e.UserID, ViewType: next.View},
				Fragment: Fragment(next, true),
			})
		}
		effects = append(effects, RenderProfileView{UserID: e.UserID, View: next.View})
		return Model{Current: next, Replaying: m.Replaying}, effects

	case PopState:
		next := stateFromPayload(e.Payload)
		var effects []Effect
		switch {
		case e.Payload != nil && e.Payload.UserID != 0:
			effects = append(effects,
				PersistLastSection{Name: ProfileSection},
				RenderProfile{UserID: next.UserID},
				LoadUser{UserID: next.UserID},
			)
			if e.Payload.ViewType != "" {
				effects = append(effects, RenderProfileView{UserID: next.UserID, View: next.View})
			}
		default:
			effects = showSection(next.Section)
		}
		return Model{Current: next, Replaying: true}, effects

	case ReplayDone:
		return Model{Current: m.Current}, nil

	case Init:
		next, ok := ParseFragment(e.Fragment)
		if !ok {
			next = SectionState(e.LastSection)
			// A persisted profile section has no id to show.
			if next.Section == ProfileSection {
				next = SectionState(DefaultSection)
			}
		}
		if next.IsProfile() {
			// Keep the address as given: "user/42" stays bare.
			withView := namesView(e.Fragment)
			payload := Payload{Section: ProfileSection, UserID: next.UserID}
			if withView {
				payload.ViewType = next.View
			}
			return Model{Current: next}, []Effect{
				ReplaceHistory{Payload: payload, Fragment: Fragment(next, withView)},
				PersistLastSection{Name: ProfileSection},
				RenderProfile{UserID: next.UserID},
				LoadUser{UserID: next.UserID},
				RenderProfileView{UserID: next.UserID, View: next.View},
			}
		}
		effects := []Effect{ReplaceHistory{Payload: Payload{Section: next.Section}, Fragment: next.Section}}
		effects = append(effects, showSection(next.Section)...)
		return Model{Current: next}, effects
	}
	return m, nil
}

func showSection(name string) []Effect {
	return []Effect{
		PersistLastSection{Name: name},
		RenderSection{Name: name},
		LoadSection{Name: name},
	}
}

// String renders a state for logs and prompts.
func (s State) String() string {
	if s.IsProfile() {
		return "user " + strconv.FormatInt(s.UserID, 10) + " (" + s.View + ")"
	}
	return s.Section
}
