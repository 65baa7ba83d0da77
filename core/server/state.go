package server

// State is the lifecycle state of the server.
type State int32

const (
	StateStopped State = iota
	StateConfigured
	StateStarting
	StateListening
	StateFailed
	StateStopping
)

// String returns the string representation of State
func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateConfigured:
		return "configured"
	case StateStarting:
		return "starting"
	case StateListening:
		return "listening"
	case StateFailed:
		return "failed"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// canStart reports whether Start may be attempted from s.
func (s State) canStart() bool {
	switch s {
	case StateStopped, StateConfigured, StateFailed:
		return true
	default:
		return false
	}
}
