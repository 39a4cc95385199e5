package interfaces

import (
	"context"

	usertypes "github.com/goliatone/go-users/pkg/types"
)

// ActivityRecord is the go-users activity record emitted for world and
// article mutations.
type ActivityRecord = usertypes.ActivityRecord

// ActivitySink receives activity records. Sinks must not block the caller for
// long; failures are logged and never abort the originating operation.
type ActivitySink interface {
	Log(ctx context.Context, record ActivityRecord) error
}
