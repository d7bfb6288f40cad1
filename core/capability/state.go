package capability

// Status describes the lifecycle position of the capability load.
type Status int

const (
	// StatusNotLoaded means no load attempt has been made (or state was reset).
	StatusNotLoaded Status = iota
	// StatusLoading means an installation attempt is in flight.
	StatusLoading
	// StatusLoaded means the capability is installed and the readiness
	// predicate confirmed the full surface is present.
	StatusLoaded
	// StatusFailed means the last attempt failed; only Reset leaves this state.
	StatusFailed
)

// String returns the lowercase name used in logs and API responses.
func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return "not_loaded"
	}
}

// State is a read-only snapshot of the loader.
// Err is non-nil only while Status is StatusFailed.
type State struct {
	Status Status
	Key    string
	Err    error
}
