// Package reconcile sequences the CRM calls that bring a location's
// parent/child company hierarchy to its desired state.
package reconcile

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/LiamTF/hubsync/internal/hubspot"
	"github.com/LiamTF/hubsync/pkg/logging"
)

// Client is the set of CRM operations the reconciler drives.
// *hubspot.Client satisfies it; tests substitute recording stubs.
type Client interface {
	ListChildren(ctx context.Context, locationID string) ([]hubspot.Company, error)
	FindParent(ctx context.Context, locationID string) (*hubspot.Company, error)
	RenameParent(ctx context.Context, companyID, importedName string) (*hubspot.Company, error)
	CreateParent(ctx context.Context, locationID string, seedChildren []hubspot.Company) (*hubspot.Company, error)
	Associate(ctx context.Context, childID, parentID string) error
}

// Reconciler runs the read-reconcile-write cycle for one location id.
type Reconciler struct {
	client Client
	logger *zerolog.Logger
}

// New creates a Reconciler around the given client.
func New(client Client, logger *zerolog.Logger) *Reconciler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Reconciler{client: client, logger: logger}
}

// Run reconciles the parent/child hierarchy for a location id and
// returns the parent company as resolved during the run.
//
// The workflow is a single deterministic pass:
//
//  1. Read the child set.
//  2. Search for the existing parent.
//  3. Existing parent: refresh its name from the imported-name staging
//     field (the rename's own blank guard decides whether anything is
//     written).
//  4. No parent: create one seeded from the child set.
//  5. Associate every child from step 1 with the parent.
//
// Any failure in steps 1-4 aborts the run. A failure partway through
// the step-5 fan-out also aborts immediately; associations already
// created for earlier children remain in the CRM with no compensating
// action. The returned parent is never re-fetched after association,
// so callers see pre-association state plus whatever the rename or
// create call returned.
func (r *Reconciler) Run(ctx context.Context, locationID string) (*hubspot.Company, error) {
	log := r.logger.With().Str("location_id", locationID).Logger()

	children, err := r.client.ListChildren(ctx, locationID)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("children", len(children)).Msg("Fetched child companies")

	parent, err := r.client.FindParent(ctx, locationID)
	if err != nil {
		return nil, err
	}

	if parent != nil {
		log.Debug().Str("parent_id", parent.ID).Msg("Parent company exists")

		importedName := parent.Property(hubspot.PropertyImportedName)
		renamed, err := r.client.RenameParent(ctx, parent.ID, importedName)
		if err != nil {
			return nil, err
		}
		if renamed != nil {
			log.Info().
				Str("parent_id", parent.ID).
				Str("name", renamed.Property(hubspot.PropertyName)).
				Msg("Renamed parent company from imported name")
			parent = renamed
		}
	} else {
		parent, err = r.client.CreateParent(ctx, locationID, children)
		if err != nil {
			return nil, err
		}
		log.Info().
			Str("parent_id", parent.ID).
			Str("name", parent.Property(hubspot.PropertyName)).
			Msg("Created parent company")
	}

	// Fan out over the child set read in step 1. The set is not
	// re-read after a create, and earlier associations stand if a
	// later one fails.
	for _, child := range children {
		if err := r.client.Associate(ctx, child.ID, parent.ID); err != nil {
			return nil, err
		}
		log.Debug().
			Str("child_id", child.ID).
			Str("parent_id", parent.ID).
			Msg("Associated child with parent")
	}

	log.Info().Int("children", len(children)).Msg("Reconciliation complete")
	return parent, nil
}
