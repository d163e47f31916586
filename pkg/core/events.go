package core

// Event tags each entry of a photon history with the interaction that
// produced it. A history is terminal on Exit, Nonradiative, React or Kill.
type Event int

const (
	EventGenerate Event = iota // emitted by a light
	EventTravel                // traversed a free path without interaction
	EventReflect               // reflected at a surface
	EventTransmit              // refracted / passed through a surface
	EventAbsorb                // captured by a material component
	EventNonradiative          // absorbed and lost (quantum yield failure)
	EventScatter               // absorbed and redirected by a scatterer
	EventEmit                  // absorbed and re-emitted by a luminophore
	EventExit                  // left the scene through the root boundary
	EventReact                 // captured by a reactor component
	EventKill                  // terminated by the step ceiling
)

var eventNames = [...]string{
	"GENERATE", "TRAVEL", "REFLECT", "TRANSMIT", "ABSORB",
	"NONRADIATIVE", "SCATTER", "EMIT", "EXIT", "REACT", "KILL",
}

func (e Event) String() string {
	if e < 0 || int(e) >= len(eventNames) {
		return "UNKNOWN"
	}
	return eventNames[e]
}

// Terminal reports whether the event ends a photon history
func (e Event) Terminal() bool {
	switch e {
	case EventExit, EventNonradiative, EventReact, EventKill:
		return true
	}
	return false
}

// Decision is the outcome of a single volumetric or surface sampling call.
// Volumetric calls produce Travel/Absorb/Emit/Kill; surface calls produce
// Return (reflect) or Transit (refract).
type Decision int

const (
	DecisionTravel Decision = iota
	DecisionAbsorb
	DecisionEmit
	DecisionKill
	DecisionReturn
	DecisionTransit
)

var decisionNames = [...]string{
	"TRAVEL", "ABSORB", "EMIT", "KILL", "RETURN", "TRANSIT",
}

func (d Decision) String() string {
	if d < 0 || int(d) >= len(decisionNames) {
		return "UNKNOWN"
	}
	return decisionNames[d]
}
