package stats

// Dummy is a Statistics implementation whose operations are all no-ops,
// for builds that don't want the (small) bookkeeping overhead.
type Dummy struct{}

// AddSuccessful does nothing.
func (Dummy) AddSuccessful(uint64) {}

// AddFailed does nothing.
func (Dummy) AddFailed(uint64) {}

// Reset does nothing.
func (Dummy) Reset() {}
