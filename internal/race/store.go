package race

import "context"

// Store is the persistence boundary of the engine: the singleton lifecycle
// document, the driver market, and the race calendar. The controller holds a
// Store and treats what it returns as ground truth; tests supply doubles.
type Store interface {
	// State returns the lifecycle document, or ErrNoState before the first
	// initialization.
	State(ctx context.Context) (State, error)
	// SaveState replaces the lifecycle document. Last write wins.
	SaveState(ctx context.Context, st State) error

	Drivers(ctx context.Context) ([]Driver, error)
	// UpdateDrivers applies settlement writes row by row; a single failed row
	// is reported but must not abort the rest.
	UpdateDrivers(ctx context.Context, updates []DriverUpdate) error

	Schedule(ctx context.Context) ([]ScheduledRace, error)
	UpdateScheduledRace(ctx context.Context, rec ScheduledRace) error
}
