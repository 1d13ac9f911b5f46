// CLAUDE:SUMMARY Main weave orchestrator — target registry, snapshot lifecycle, locator validation, test instruction composition.
// Package weave is the assistant-facing service for authoring browser
// tests interactively. It keeps a registry of open page targets, captures
// element snapshots, validates candidate locators against snapshot
// references, and composes step-by-step test instructions for a
// downstream agent.
//
// Usage:
//
//	w, err := weave.New(cfg, logger)
//	defer w.Close()
//	w.Start(ctx)
//	w.RegisterMCP(mcpServer)
package weave

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"

	"github.com/hazyhaar/testweave/audit"
	"github.com/hazyhaar/testweave/browser"
	"github.com/hazyhaar/testweave/compose"
	"github.com/hazyhaar/testweave/idgen"
	"github.com/hazyhaar/testweave/locator"
	"github.com/hazyhaar/testweave/safeurl"
	"github.com/hazyhaar/testweave/snapshot"
	"github.com/hazyhaar/testweave/verify"
)

// target pairs an open page with its most recent snapshot. The snapshot
// is replaced wholesale on each capture; old refs die with it.
type target struct {
	page Page
	snap *snapshot.Snapshot
}

// Weaver is the main service orchestrator.
type Weaver struct {
	cfg     *Config
	logger  *slog.Logger
	opener  Opener
	mgr     *browser.Manager
	auditor *audit.SQLiteLogger

	mu      sync.Mutex
	targets map[string]*target
	active  string
}

// Option configures a Weaver.
type Option func(*Weaver)

// WithOpener injects a page opener, replacing the Rod-backed default.
func WithOpener(o Opener) Option {
	return func(w *Weaver) { w.opener = o }
}

// WithAuditLogger attaches an audit trail to tool invocations.
func WithAuditLogger(l *audit.SQLiteLogger) Option {
	return func(w *Weaver) { w.auditor = l }
}

// New creates a Weaver. Call Start to launch the browser.
func New(cfg *Config, logger *slog.Logger, opts ...Option) *Weaver {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}

	w := &Weaver{
		cfg:     cfg,
		logger:  logger,
		targets: make(map[string]*target),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start launches the browser engine unless an opener was injected.
func (w *Weaver) Start(ctx context.Context) error {
	if w.opener != nil {
		return nil
	}

	bc := w.cfg.Browser
	stealth := browser.LevelHeadless
	if bc.Headful {
		stealth = browser.LevelHeadful
	}
	w.mgr = browser.NewManager(browser.Config{
		RemoteURL:        bc.RemoteURL,
		MemoryLimit:      bc.MemoryLimitMB << 20,
		RecycleInterval:  bc.RecycleInterval,
		ResourceBlocking: bc.ResourceBlocking,
		Stealth:          stealth,
		XvfbDisplay:      bc.XvfbDisplay,
		Logger:           w.logger,
	})

	// Recycling kills every tab, so the registry must reset with it.
	w.mgr.SetRecycleCallback(&browser.RecycleCallback{
		AfterRecycle: func(_ *rod.Browser) {
			w.mu.Lock()
			w.targets = make(map[string]*target)
			w.active = ""
			w.mu.Unlock()
			w.logger.Warn("weave: browser recycled, all targets dropped")
		},
	})

	if _, err := w.mgr.Start(ctx); err != nil {
		return err
	}
	w.opener = w.rodOpener()
	w.logger.Info("weave: started", "test_id_attribute", w.cfg.TestIDAttribute)
	return nil
}

// Close shuts targets and the browser down.
func (w *Weaver) Close() error {
	w.mu.Lock()
	for id, t := range w.targets {
		if err := t.page.Close(); err != nil {
			w.logger.Warn("weave: close target", "target_id", id, "error", err)
		}
	}
	w.targets = make(map[string]*target)
	w.active = ""
	w.mu.Unlock()

	if w.mgr != nil {
		return w.mgr.Close()
	}
	return nil
}

// OpenPage opens a new target at the URL and makes it active.
func (w *Weaver) OpenPage(ctx context.Context, url string) (TargetInfo, error) {
	if err := safeurl.Validate(url, safeurl.Options{BlockPrivateHosts: w.cfg.BlockPrivateHosts}); err != nil {
		return TargetInfo{}, err
	}

	page, err := w.opener(ctx, url)
	if err != nil {
		return TargetInfo{}, fmt.Errorf("weave: open %s: %w", url, err)
	}

	id := idgen.New()
	w.mu.Lock()
	w.targets[id] = &target{page: page}
	w.active = id
	w.mu.Unlock()

	w.logger.Info("weave: page opened", "target_id", id, "url", url)
	return TargetInfo{TargetID: id, URL: page.URL(), Active: true}, nil
}

// CaptureSnapshot captures a fresh snapshot for the target (empty id =
// active target), replacing any previous one. Returns the snapshot for
// rendering; its refs are the only valid refs from this point on.
func (w *Weaver) CaptureSnapshot(ctx context.Context, targetID string) (*snapshot.Snapshot, error) {
	t, _, err := w.lookup(targetID)
	if err != nil {
		return nil, err
	}

	elements, err := t.page.Capture(ctx)
	if err != nil {
		return nil, err
	}
	snap := snapshot.New(t.page.URL(), elements)

	w.mu.Lock()
	t.snap = snap
	w.mu.Unlock()

	w.logger.Info("weave: snapshot captured",
		"snapshot_id", snap.ID, "elements", len(snap.Elements))
	return snap, nil
}

// ListTargets lists open targets.
func (w *Weaver) ListTargets(ctx context.Context) []TargetInfo {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]TargetInfo, 0, len(w.targets))
	for id, t := range w.targets {
		info := TargetInfo{TargetID: id, URL: t.page.URL(), Active: id == w.active}
		if t.snap != nil {
			info.SnapshotID = t.snap.ID
		}
		out = append(out, info)
	}
	return out
}

// CloseTarget closes one target. Closing the active target leaves no
// target active.
func (w *Weaver) CloseTarget(ctx context.Context, targetID string) error {
	if _, err := idgen.Parse(targetID); err != nil {
		return fmt.Errorf("%w: %v", ErrNoTarget, err)
	}

	w.mu.Lock()
	t, ok := w.targets[targetID]
	if ok {
		delete(w.targets, targetID)
		if w.active == targetID {
			w.active = ""
		}
	}
	w.mu.Unlock()

	if !ok {
		return ErrNoTarget
	}
	return t.page.Close()
}

// ValidateRequest carries the validate_locator inputs. Element is a
// human-readable description kept for the audit trail only.
type ValidateRequest struct {
	Locator         string
	Element         string
	Ref             string
	TestIDAttribute string
}

// ValidateLocator checks whether the locator uniquely identifies the
// snapshot element behind Ref on the active target. The returned text is
// one of the five fixed diagnostics; parse failures, missing snapshots,
// and engine faults are errors instead.
func (w *Weaver) ValidateLocator(ctx context.Context, req ValidateRequest) (string, error) {
	t, _, err := w.lookup("")
	if err != nil {
		return "", err
	}

	w.mu.Lock()
	snap := t.snap
	w.mu.Unlock()
	if snap == nil {
		return "", ErrNoSnapshot
	}

	attr := req.TestIDAttribute
	if attr == "" {
		attr = w.cfg.TestIDAttribute
	}
	q, err := locator.Resolve(req.Locator, attr)
	if err != nil {
		return "", err
	}

	v := verify.NewVerifier(t.page, snapResolver{snap: snap})
	_, message, err := v.Verify(ctx, q, req.Ref)
	if err != nil {
		return "", err
	}

	w.logger.Debug("weave: locator validated",
		"locator", req.Locator, "ref", req.Ref, "result", message)
	return message, nil
}

// GenerateTest renders the instruction document for a scenario. Pure:
// it never touches the live page.
func (w *Weaver) GenerateTest(ctx context.Context, s compose.Scenario) (string, error) {
	return compose.Compose(s), nil
}

// lookup resolves a target id (empty = active) under the lock. Target
// ids are minted by idgen, so a string that does not parse as one
// cannot name a target.
func (w *Weaver) lookup(targetID string) (*target, string, error) {
	if targetID != "" {
		if _, err := idgen.Parse(targetID); err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrNoTarget, err)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	id := targetID
	if id == "" {
		id = w.active
	}
	t, ok := w.targets[id]
	if !ok {
		return nil, "", ErrNoTarget
	}
	return t, id, nil
}

// snapResolver adapts a snapshot to the verify.RefResolver interface.
// Lookup is in-memory; the error path is unused.
type snapResolver struct {
	snap *snapshot.Snapshot
}

func (r snapResolver) ResolveRef(_ context.Context, ref string) (verify.Handle, bool, error) {
	e, ok := r.snap.Resolve(ref)
	if !ok {
		return nil, false, nil
	}
	return e, true, nil
}
