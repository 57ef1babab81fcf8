// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package brightdata

import "fmt"

// State is the lifecycle of a collection job.
type State string

const (
	StateSubmitted State = "submitted"
	StateReady     State = "ready"
	StateFailed    State = "failed"
)

// Job is one triggered collection, keyed by its snapshot id.
type Job struct {
	SnapshotID string
	State      State
}

// advance applies a progress status. Only Submitted jobs move.
func (j *Job) advance(status string) error {
	if j.State != StateSubmitted {
		return fmt.Errorf("brightdata job %s: cannot advance from %s", j.SnapshotID, j.State)
	}
	switch status {
	case "ready":
		j.State = StateReady
	case "failed":
		j.State = StateFailed
		return fmt.Errorf("%w: %s", ErrSnapshotFailed, j.SnapshotID)
	case "running", "building", "starting", "collecting", "digesting":
	default:
		return fmt.Errorf("brightdata job %s: unexpected status %q", j.SnapshotID, status)
	}
	return nil
}
