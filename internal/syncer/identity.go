package syncer

import (
	"context"
	"errors"
	"fmt"

	"github.com/nextbit-dev/storelift/internal/models"
	"github.com/nextbit-dev/storelift/internal/services/shopify"
)

// Identity is the tagged result of resolve-or-create: either the listing
// exists under a known platform id, or the record is new.
type Identity struct {
	Found bool
	ID    int64
	// RecoveredViaHandle marks an id that had to be re-discovered through
	// the handle fallback.
	RecoveredViaHandle bool
}

// resolveIdentity reconciles a record with the platform. A stored platform
// id is tried first; when it has gone stale the stable handle is the
// fallback, and a recovered id is persisted immediately so future runs
// skip the fallback.
func (e *Engine) resolveIdentity(ctx context.Context, record *models.ExportRecord) (Identity, error) {
	if record.PlatformID != nil {
		_, err := e.platform.GetProduct(ctx, *record.PlatformID)
		switch {
		case err == nil:
			return Identity{Found: true, ID: *record.PlatformID}, nil
		case errors.Is(err, shopify.ErrNotFound):
			// Stale id: fall through to the handle lookup.
		default:
			return Identity{}, err
		}
	}

	remote, err := e.platform.FindByHandle(ctx, record.Handle)
	if err != nil {
		return Identity{}, err
	}
	if remote == nil {
		return Identity{}, nil
	}

	// Persist before uploading: the recovered id is authoritative from now
	// on, even if the upload below fails.
	if err := e.exports.SetPlatformID(ctx, record.ID, remote.ID); err != nil {
		return Identity{}, fmt.Errorf("persist recovered id: %w", err)
	}
	record.PlatformID = &remote.ID
	return Identity{Found: true, ID: remote.ID, RecoveredViaHandle: true}, nil
}
