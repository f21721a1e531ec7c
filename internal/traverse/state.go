package traverse

// State is a state of the traversal state machine.
type State int

// Traversal states.
const (
	StateIdle State = iota
	StateAwaitThread
	StateLeafThread
	StateExpandingReplies
	StateIterateReplies
	StateCollapsingReplies
	StateAdvance
	StateExhausted
	StateFaulted
)

var stateNames = [...]string{
	StateIdle:              "idle",
	StateAwaitThread:       "await-thread",
	StateLeafThread:        "leaf-thread",
	StateExpandingReplies:  "expanding-replies",
	StateIterateReplies:    "iterate-replies",
	StateCollapsingReplies: "collapsing-replies",
	StateAdvance:           "advance",
	StateExhausted:         "exhausted",
	StateFaulted:           "faulted",
}

// String returns the state name.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateExhausted || s == StateFaulted
}

// Position is the traversal cursor. Thread only grows; Reply returns to zero
// exactly when Thread advances.
type Position struct {
	Thread int
	Reply  int
}
