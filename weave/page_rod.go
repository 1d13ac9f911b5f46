// CLAUDE:SUMMARY Rod-backed Page implementation bridging the browser engine into the service.
package weave

import (
	"context"

	"github.com/hazyhaar/testweave/browser"
	"github.com/hazyhaar/testweave/idgen"
	"github.com/hazyhaar/testweave/locator"
	"github.com/hazyhaar/testweave/snapshot"
	"github.com/hazyhaar/testweave/verify"
)

// rodPage adapts a browser.Tab to the Page interface.
type rodPage struct {
	tab *browser.Tab
}

func (p *rodPage) URL() string { return p.tab.PageURL }

func (p *rodPage) Match(ctx context.Context, q locator.Query) ([]verify.Handle, error) {
	matched, err := p.tab.Match(ctx, q)
	if err != nil {
		return nil, err
	}
	handles := make([]verify.Handle, len(matched))
	for i, h := range matched {
		handles[i] = h
	}
	return handles, nil
}

func (p *rodPage) Capture(ctx context.Context) ([]snapshot.Element, error) {
	return p.tab.CaptureSnapshot(ctx)
}

func (p *rodPage) Close() error { return p.tab.Close() }

// rodOpener builds the production Opener over the managed browser.
func (w *Weaver) rodOpener() Opener {
	return func(ctx context.Context, url string) (Page, error) {
		tab, err := browser.OpenTab(ctx, w.mgr, url, idgen.New())
		if err != nil {
			return nil, err
		}
		return &rodPage{tab: tab}, nil
	}
}
