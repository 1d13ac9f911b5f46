// CLAUDE:SUMMARY Wraps a Rod page as a target tab: element matching for locator queries and snapshot capture.
package browser

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/stealth"

	"github.com/hazyhaar/testweave/locator"
	"github.com/hazyhaar/testweave/snapshot"
)

// ResolutionError wraps an engine fault during element matching or
// capture. It is distinct from a diagnostic result: callers surface it
// as a tool failure.
type ResolutionError struct {
	Op  string
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("browser: %s: %v", e.Op, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Handle identifies a live document node by its CDP backend node id,
// which is stable for the node's lifetime within a page.
type Handle struct {
	NodeID string
}

// ID reports the handle identity.
func (h Handle) ID() string { return h.NodeID }

// Tab wraps a Rod page with per-target setup: stealth, resource
// blocking, and navigation.
type Tab struct {
	Page     *rod.Page
	PageURL  string
	TargetID string
	manager  *Manager
}

// OpenTab creates a new tab and navigates to the URL with stealth applied.
func OpenTab(ctx context.Context, mgr *Manager, pageURL, targetID string) (*Tab, error) {
	b := mgr.Browser()
	if b == nil {
		return nil, fmt.Errorf("browser: no active browser")
	}

	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}

	applyResourceBlocking(page, mgr.cfg.ResourceBlocking)

	// Navigate with timeout.
	navCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	err = page.Context(navCtx).Navigate(pageURL)
	if err != nil {
		page.Close()
		return nil, fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}

	if err := page.Context(navCtx).WaitLoad(); err != nil {
		mgr.cfg.Logger.Warn("browser: wait load timeout", "url", pageURL, "error", err)
	}

	return &Tab{
		Page:     page,
		PageURL:  pageURL,
		TargetID: targetID,
		manager:  mgr,
	}, nil
}

// jsMatch evaluates a locator query in the page. The name filter works
// on a normalized accessible name (lowercased, whitespace collapsed),
// matching the normalization the locator parser applies. The innermost
// flag keeps only matches that do not contain another match, so text
// queries land on the tightest enclosing element.
const jsMatch = `(css, name, innermost) => {
	const norm = s => (s || '').toLowerCase().replace(/\s+/g, ' ').trim();
	const accName = el => {
		const al = el.getAttribute('aria-label');
		if (al) return al;
		if (el.labels && el.labels.length) return el.labels[0].textContent;
		return el.textContent
			|| el.getAttribute('placeholder')
			|| el.getAttribute('title')
			|| el.getAttribute('value')
			|| '';
	};
	let els;
	try {
		els = Array.from(document.querySelectorAll(css));
	} catch (e) {
		throw new Error('invalid selector: ' + css);
	}
	if (name) {
		els = els.filter(el => norm(accName(el)) === name);
	}
	if (innermost) {
		els = els.filter(el => !els.some(o => o !== el && el.contains(o)));
	}
	return els;
}`

// Match evaluates a locator query against the live document, returning
// handles in document order. Engine faults come back as ResolutionError.
func (t *Tab) Match(ctx context.Context, q locator.Query) ([]Handle, error) {
	page := t.Page.Context(ctx)

	els, err := page.ElementsByJS(rod.Eval(jsMatch, q.CSS, q.Name, q.InnermostOnly))
	if err != nil {
		return nil, &ResolutionError{Op: "match " + q.CSS, Err: err}
	}

	handles := make([]Handle, 0, len(els))
	for _, el := range els {
		node, err := el.Describe(0, false)
		if err != nil {
			return nil, &ResolutionError{Op: "describe node", Err: err}
		}
		handles = append(handles, Handle{NodeID: strconv.Itoa(int(node.BackendNodeID))})
	}
	return handles, nil
}

// interactiveSelector picks the elements worth listing in a snapshot:
// anything a test would interact with or assert on.
const interactiveSelector = `a, button, input, select, textarea, summary, [role], [tabindex], [contenteditable]`

// jsDescribe extracts tag, accessible role, and accessible name for one
// element. Returns null for nodes that should not appear in a snapshot.
const jsDescribe = `() => {
	const el = this;
	const tag = el.tagName.toLowerCase();
	if (tag === 'input' && (el.getAttribute('type') || '').toLowerCase() === 'hidden') {
		return null;
	}
	let role = el.getAttribute('role') || '';
	if (!role) {
		if (tag === 'input') {
			const type = (el.getAttribute('type') || 'text').toLowerCase();
			const inputRoles = {
				text: 'textbox', email: 'textbox', password: 'textbox',
				url: 'textbox', tel: 'textbox', search: 'searchbox',
				checkbox: 'checkbox', radio: 'radio', number: 'spinbutton',
				range: 'slider', button: 'button', submit: 'button', reset: 'button',
			};
			role = inputRoles[type] || 'textbox';
		} else if (tag === 'a') {
			role = el.hasAttribute('href') ? 'link' : '';
		} else {
			const implicit = {
				button: 'button', select: 'combobox', textarea: 'textbox',
				nav: 'navigation', main: 'main', header: 'banner',
				table: 'table', img: 'img', ul: 'list', ol: 'list', li: 'listitem',
				h1: 'heading', h2: 'heading', h3: 'heading',
				h4: 'heading', h5: 'heading', h6: 'heading',
			};
			role = implicit[tag] || '';
		}
	}
	let name = el.getAttribute('aria-label') || '';
	if (!name && el.labels && el.labels.length) name = el.labels[0].textContent;
	if (!name) name = el.textContent || '';
	if (!name) {
		name = el.getAttribute('placeholder')
			|| el.getAttribute('title')
			|| el.getAttribute('value')
			|| '';
	}
	return {tag: tag, role: role, name: name.replace(/\s+/g, ' ').trim()};
}`

// CaptureSnapshot walks the document's interactive elements in document
// order and returns them ready for snapshot construction. Refs are
// assigned by the snapshot package, not here.
func (t *Tab) CaptureSnapshot(ctx context.Context) ([]snapshot.Element, error) {
	page := t.Page.Context(ctx)

	els, err := page.Elements(interactiveSelector)
	if err != nil {
		return nil, &ResolutionError{Op: "capture", Err: err}
	}

	out := make([]snapshot.Element, 0, len(els))
	for _, el := range els {
		res, err := el.Eval(jsDescribe)
		if err != nil {
			return nil, &ResolutionError{Op: "describe element", Err: err}
		}
		if res.Value.Nil() {
			continue
		}
		node, err := el.Describe(0, false)
		if err != nil {
			return nil, &ResolutionError{Op: "describe node", Err: err}
		}
		out = append(out, snapshot.Element{
			Tag:    res.Value.Get("tag").Str(),
			Role:   res.Value.Get("role").Str(),
			Name:   res.Value.Get("name").Str(),
			NodeID: strconv.Itoa(int(node.BackendNodeID)),
		})
	}
	return out, nil
}

// Close closes the tab.
func (t *Tab) Close() error {
	if t.Page != nil {
		return t.Page.Close()
	}
	return nil
}
