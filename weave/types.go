// CLAUDE:SUMMARY Service-level types: engine abstraction, target info, sentinel errors.
package weave

import (
	"context"
	"errors"

	"github.com/hazyhaar/testweave/locator"
	"github.com/hazyhaar/testweave/snapshot"
	"github.com/hazyhaar/testweave/verify"
)

var (
	// ErrNoSnapshot is returned when locator validation runs before any
	// snapshot has been captured for the active target.
	ErrNoSnapshot = errors.New("weave: no snapshot available")

	// ErrNoTarget is returned when an operation needs an open target and
	// none exists.
	ErrNoTarget = errors.New("weave: no open target")
)

// Page is one open browser target as the service sees it. The live
// implementation wraps a Rod tab; tests substitute fakes.
type Page interface {
	URL() string
	Match(ctx context.Context, q locator.Query) ([]verify.Handle, error)
	Capture(ctx context.Context) ([]snapshot.Element, error)
	Close() error
}

// Opener creates a Page for a URL. Injected so the service can run
// against a fake engine in tests.
type Opener func(ctx context.Context, url string) (Page, error)

// TargetInfo describes one open target for listings.
type TargetInfo struct {
	TargetID   string `json:"target_id"`
	URL        string `json:"url"`
	SnapshotID string `json:"snapshot_id,omitempty"`
	Active     bool   `json:"active"`
}
