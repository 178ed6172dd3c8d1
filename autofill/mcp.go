package autofill

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/formfill/kit"
	"github.com/hazyhaar/formfill/profile"
)

// RegisterMCP registers formfill tools on an MCP server.
func (a *Agent) RegisterMCP(srv *mcp.Server) {
	a.registerAutofillTool(srv)
	a.registerScanTool(srv)
	a.registerListProfilesTool(srv)
	a.registerHistoryTool(srv)
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

// --- autofill ---

type autofillRequest struct {
	ProfileID string            `json:"profile_id,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
}

func (a *Agent) registerAutofillTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "formfill_autofill",
		Description: "Fill the current page's form fields from a stored profile. Returns a per-field report.",
		InputSchema: inputSchema(map[string]any{
			"profile_id": map[string]any{"type": "string", "description": "Profile to use (default: the active profile)"},
			"data":       map[string]any{"type": "object", "additionalProperties": map[string]any{"type": "string"}, "description": "One-off values overlaid on the profile for this fill"},
		}, nil),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*autofillRequest)
		return a.HandleCommand(ctx, Command{
			Action:    ActionAutofill,
			ProfileID: r.ProfileID,
			Data:      r.Data,
		})
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r autofillRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- scan ---

func (a *Agent) registerScanTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "formfill_scan",
		Description: "Detect the page's fillable fields and preview what would be filled, without writing anything.",
		InputSchema: inputSchema(map[string]any{
			"profile_id": map[string]any{"type": "string", "description": "Profile to match against (default: the active profile)"},
		}, nil),
	}

	type scanReq struct {
		ProfileID string `json:"profile_id"`
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*scanReq)
		return a.HandleCommand(ctx, Command{Action: ActionScan, ProfileID: r.ProfileID})
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r scanReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- list_profiles ---

func (a *Agent) registerListProfilesTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "formfill_list_profiles",
		Description: "List stored profiles with their names and attribute counts. Values are not returned.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	type profileSummary struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		Attributes int    `json:"attributes"`
		Custom     int    `json:"custom"`
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		profiles, err := a.profiles.ListProfiles(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]profileSummary, 0, len(profiles))
		for _, p := range profiles {
			out = append(out, profileSummary{
				ID:         p.ID,
				Name:       p.Name,
				Attributes: countNonEmpty(p),
				Custom:     len(p.Custom),
			})
		}
		return out, nil
	}

	decode := func(_ *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- history ---

func (a *Agent) registerHistoryTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "formfill_history",
		Description: "List recent fill invocations: page, profile, counts, outcome. Field values are never stored.",
		InputSchema: inputSchema(map[string]any{
			"limit": map[string]any{"type": "integer", "description": "Max events (default 20)"},
		}, nil),
	}

	type historyReq struct {
		Limit int `json:"limit"`
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*historyReq)
		if a.hist == nil {
			return nil, errors.New("history is not enabled")
		}
		return a.hist.Recent(ctx, r.Limit)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r historyReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

func countNonEmpty(p *profile.Profile) int {
	n := 0
	for _, v := range p.Attributes {
		if v != "" {
			n++
		}
	}
	return n
}
