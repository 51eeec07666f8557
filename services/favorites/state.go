package favorites

// Known is what the client currently believes about a title's favorite status.
type Known int

const (
	Unknown Known = iota
	Favorited
	NotFavorited
)

func (k Known) String() string {
	switch k {
	case Favorited:
		return "favorited"
	case NotFavorited:
		return "not_favorited"
	default:
		return "unknown"
	}
}

// Phase marks whether a toggle is in flight.
type Phase int

const (
	Idle Phase = iota
	Pending
)

func (p Phase) String() string {
	if p == Pending {
		return "pending"
	}
	return "idle"
}

// State is the toggle state of one (user, title) pair.
type State struct {
	Known Known
	Phase Phase
}

// Begin enters Pending. It reports false when a toggle is already in flight.
func Begin(s State) (State, bool) {
	if s.Phase == Pending {
		return s, false
	}
	return State{Known: s.Known, Phase: Pending}, true
}

// Succeed leaves Pending after a confirmed write; the title is favorited
// exactly when the write was an add.
func Succeed(_ State, added bool) State {
	if added {
		return State{Known: Favorited, Phase: Idle}
	}
	return State{Known: NotFavorited, Phase: Idle}
}

// Fail leaves Pending with the status invalidated.
func Fail(State) State {
	return State{Known: Unknown, Phase: Idle}
}

// Resolve records the backend's answer without touching the phase.
func Resolve(s State, favorited bool) State {
	if favorited {
		return State{Known: Favorited, Phase: s.Phase}
	}
	return State{Known: NotFavorited, Phase: s.Phase}
}
