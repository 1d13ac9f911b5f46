// CLAUDE:SUMMARY Registers all weave MCP tools — validate_locator, generate_playwright_test, page/snapshot/target management.
package weave

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/testweave/audit"
	"github.com/hazyhaar/testweave/compose"
	"github.com/hazyhaar/testweave/kit"
)

// RegisterMCP registers weave tools on an MCP server.
func (w *Weaver) RegisterMCP(srv *mcp.Server) {
	w.registerValidateLocatorTool(srv)
	w.registerGenerateTestTool(srv)
	w.registerOpenPageTool(srv)
	w.registerCaptureSnapshotTool(srv)
	w.registerListTargetsTool(srv)
	w.registerCloseTargetTool(srv)
}

// inputSchema builds a JSON Schema object with type "object".
func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// wrap applies the audit middleware when an audit logger is attached.
func (w *Weaver) wrap(action string, e kit.Endpoint) kit.Endpoint {
	if w.auditor == nil {
		return e
	}
	return kit.Chain(audit.Middleware(w.auditor, action))(e)
}

// --- validate_locator ---

type validateLocatorRequest struct {
	Locator             string `json:"locator"`
	Element             string `json:"element"`
	Ref                 string `json:"ref"`
	TestIDAttributeName string `json:"testIdAttributeName,omitempty"`
}

func (w *Weaver) registerValidateLocatorTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "validate_locator",
		Description: "Validate that a locator expression uniquely identifies a previously snapshotted element. Returns a diagnostic verdict; does not modify page state.",
		InputSchema: inputSchema(map[string]any{
			"locator":             map[string]any{"type": "string", "description": "Locator expression, e.g. role=button[name=\"Sign in\"], text=\"Sign in\", testid=submit, or a CSS selector"},
			"element":             map[string]any{"type": "string", "description": "Human-readable description of the target element (audit trail only)"},
			"ref":                 map[string]any{"type": "string", "description": "Snapshot reference of the expected element, e.g. e3"},
			"testIdAttributeName": map[string]any{"type": "string", "description": "Attribute name for testid= locators (default: data-testid)"},
		}, []string{"locator", "element", "ref"}),
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}

	endpoint := w.wrap("validate_locator", func(ctx context.Context, req any) (any, error) {
		r := req.(*validateLocatorRequest)
		return w.ValidateLocator(ctx, ValidateRequest{
			Locator:         r.Locator,
			Element:         r.Element,
			Ref:             r.Ref,
			TestIDAttribute: r.TestIDAttributeName,
		})
	})

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r validateLocatorRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- generate_playwright_test ---

type generateTestRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Steps       []string `json:"steps"`
}

func (w *Weaver) registerGenerateTestTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "generate_playwright_test",
		Description: "Compose step-by-step instructions for generating a Playwright test from a scenario. The scenario is executed by the caller, not by this tool.",
		InputSchema: inputSchema(map[string]any{
			"name":        map[string]any{"type": "string", "description": "Test name"},
			"description": map[string]any{"type": "string", "description": "What the test does"},
			"steps":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Ordered scenario steps"},
		}, []string{"name", "description", "steps"}),
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}

	endpoint := w.wrap("generate_playwright_test", func(ctx context.Context, req any) (any, error) {
		r := req.(*generateTestRequest)
		return w.GenerateTest(ctx, compose.Scenario{
			Name:        r.Name,
			Description: r.Description,
			Steps:       r.Steps,
		})
	})

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r generateTestRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- open_page ---

type openPageRequest struct {
	URL string `json:"url"`
}

func (w *Weaver) registerOpenPageTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "weave_open_page",
		Description: "Open a URL in a new browser target and make it the active target.",
		InputSchema: inputSchema(map[string]any{
			"url": map[string]any{"type": "string", "description": "URL to open"},
		}, []string{"url"}),
	}

	endpoint := w.wrap("weave_open_page", func(ctx context.Context, req any) (any, error) {
		r := req.(*openPageRequest)
		return w.OpenPage(ctx, r.URL)
	})

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r openPageRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- capture_snapshot ---

type captureSnapshotRequest struct {
	TargetID string `json:"target_id,omitempty"`
}

func (w *Weaver) registerCaptureSnapshotTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "weave_capture_snapshot",
		Description: "Capture a fresh element snapshot of a target (default: active). Replaces the previous snapshot; earlier refs become invalid.",
		InputSchema: inputSchema(map[string]any{
			"target_id": map[string]any{"type": "string", "description": "Target to snapshot (default: active target)"},
		}, nil),
	}

	endpoint := w.wrap("weave_capture_snapshot", func(ctx context.Context, req any) (any, error) {
		r := req.(*captureSnapshotRequest)
		snap, err := w.CaptureSnapshot(ctx, r.TargetID)
		if err != nil {
			return nil, err
		}
		return snap.Render(), nil
	})

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r captureSnapshotRequest
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
				return nil, err
			}
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- list_targets ---

func (w *Weaver) registerListTargetsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "weave_list_targets",
		Description: "List open browser targets and their snapshot state.",
		InputSchema: inputSchema(map[string]any{}, nil),
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}

	endpoint := w.wrap("weave_list_targets", func(ctx context.Context, _ any) (any, error) {
		return w.ListTargets(ctx), nil
	})

	decode := func(_ *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- close_target ---

type closeTargetRequest struct {
	TargetID string `json:"target_id"`
}

func (w *Weaver) registerCloseTargetTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "weave_close_target",
		Description: "Close an open browser target.",
		InputSchema: inputSchema(map[string]any{
			"target_id": map[string]any{"type": "string", "description": "Target to close"},
		}, []string{"target_id"}),
	}

	endpoint := w.wrap("weave_close_target", func(ctx context.Context, req any) (any, error) {
		r := req.(*closeTargetRequest)
		if err := w.CloseTarget(ctx, r.TargetID); err != nil {
			return nil, err
		}
		return map[string]string{"status": "closed", "target_id": r.TargetID}, nil
	})

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r closeTargetRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
