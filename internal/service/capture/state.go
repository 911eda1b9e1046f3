package capture

// State is a step of the capture state machine.
type State int

const (
	Idle State = iota
	Capturing
	LocationResolving
	Persisting
	Exporting
	Done
	Errored
)

var stateNames = map[State]string{
	Idle:              "idle",
	Capturing:         "capturing",
	LocationResolving: "location_resolving",
	Persisting:        "persisting",
	Exporting:         "exporting",
	Done:              "done",
	Errored:           "errored",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// accepting reports whether a new capture may start from s.
func (s State) accepting() bool {
	return s == Idle || s == Done || s == Errored
}

// Transition is published for every state change.
type Transition struct {
	From  State  `json:"from"`
	To    State  `json:"to"`
	Stage State  `json:"stage,omitempty"` // failing stage when To is Errored
	Error string `json:"error,omitempty"`
}
