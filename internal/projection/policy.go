package projection

// Policy decides what a store does with its cache when a durable write fails.
type Policy int

const (
	// IgnoreFailures logs the failure and keeps the optimistic value.
	IgnoreFailures Policy = iota
	// RefetchOnFailure reloads the whole collection from the command layer.
	RefetchOnFailure
	// RevertOnFailure rebuilds the cache from the last confirmed collection
	// with the commands still awaiting their write replayed on top, so later
	// successful commands survive the rollback.
	RevertOnFailure
)

func (p Policy) String() string {
	switch p {
	case IgnoreFailures:
		return "ignore"
	case RefetchOnFailure:
		return "refetch"
	case RevertOnFailure:
		return "revert"
	}
	return "unknown"
}

// ParsePolicy maps a config string to a Policy, defaulting to IgnoreFailures.
func ParsePolicy(raw string) Policy {
	switch raw {
	case "refetch":
		return RefetchOnFailure
	case "revert":
		return RevertOnFailure
	}
	return IgnoreFailures
}
