// CLAUDE:SUMMARY Network-level resource blocking for tabs: fails image/font/media fetches to cut page weight.
package browser

import (
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// blocklist is the set of CDP resource types a tab refuses to fetch.
type blocklist map[proto.NetworkResourceType]struct{}

// blockable resolves config names to CDP resource types. The YAML plural
// forms ("images") and the raw CDP names are both accepted.
var blockable = map[string]proto.NetworkResourceType{
	"images":      proto.NetworkResourceTypeImage,
	"image":       proto.NetworkResourceTypeImage,
	"fonts":       proto.NetworkResourceTypeFont,
	"font":        proto.NetworkResourceTypeFont,
	"media":       proto.NetworkResourceTypeMedia,
	"stylesheets": proto.NetworkResourceTypeStylesheet,
	"stylesheet":  proto.NetworkResourceTypeStylesheet,
	"scripts":     proto.NetworkResourceTypeScript,
	"script":      proto.NetworkResourceTypeScript,
}

// newBlocklist resolves config names once, at tab setup. Unknown names
// are dropped: a config typo degrades to fetching the resource, it never
// breaks the tab.
func newBlocklist(names []string) blocklist {
	bl := make(blocklist, len(names))
	for _, n := range names {
		if t, ok := blockable[strings.ToLower(strings.TrimSpace(n))]; ok {
			bl[t] = struct{}{}
		}
	}
	return bl
}

func (bl blocklist) blocks(t proto.NetworkResourceType) bool {
	_, ok := bl[t]
	return ok
}

// applyResourceBlocking installs a hijack router on the tab that fails
// requests for blocked resource types. An empty list installs nothing.
func applyResourceBlocking(page *rod.Page, names []string) {
	bl := newBlocklist(names)
	if len(bl) == 0 {
		return
	}

	router := page.HijackRequests()
	router.MustAdd("*", func(h *rod.Hijack) {
		if bl.blocks(h.Request.Type()) {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		h.ContinueRequest(&proto.FetchContinueRequest{})
	})
	go router.Run()
}
