package source

import (
	"context"

	"copytrade-scanner-go/internal/models"
)

// Adapter produces the candidate trader records for one sync run.
//
// Implementations may be slow, may fail, and may legitimately return zero
// candidates; the synchronizer treats all three as reasons not to touch the
// store. The returned records are raw: validation and normalization happen
// on the synchronizer side, never here.
type Adapter interface {
	// Name identifies the adapter in logs and sync results.
	Name() string

	// FetchCandidates returns the full candidate set for this run. It must
	// honor ctx cancellation; a run is aborted by its caller via timeout.
	FetchCandidates(ctx context.Context) ([]models.RawCandidate, error)
}
