package autofill

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/formfill/profile"
)

var testMCPImpl = &mcp.Implementation{Name: "formfill-test", Version: "0.1.0"}

func mcpSession(t *testing.T, a *Agent) *mcp.ClientSession {
	t.Helper()
	srv := mcp.NewServer(testMCPImpl, nil)
	a.RegisterMCP(srv)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	client := mcp.NewClient(testMCPImpl, nil)
	session, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func testManager(t *testing.T) *profile.Manager {
	t.Helper()
	m, err := profile.Open(filepath.Join(t.TempDir(), "profiles.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestMCP_ListProfiles(t *testing.T) {
	profiles := testManager(t)
	ctx := context.Background()

	jane := &profile.Profile{
		Name: "Jane",
		Attributes: map[string]string{
			profile.KeyFullName: "Jane Doe",
			profile.KeyEmail:    "jane@x.edu",
		},
		Custom: map[string]string{"github": "janedoe"},
	}
	if err := profiles.SaveProfile(ctx, jane); err != nil {
		t.Fatal(err)
	}

	a := New(Config{Profiles: profiles})
	session := mcpSession(t, a)

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "formfill_list_profiles",
		Arguments: map[string]any{},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if err := result.GetError(); err != nil {
		t.Fatalf("tool error: %v", err)
	}

	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatal("expected TextContent")
	}
	var resp []struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		Attributes int    `json:"attributes"`
		Custom     int    `json:"custom"`
	}
	if err := json.Unmarshal([]byte(tc.Text), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp) != 1 {
		t.Fatalf("got %d profiles, want 1", len(resp))
	}
	if resp[0].Name != "Jane" || resp[0].Attributes != 2 || resp[0].Custom != 1 {
		t.Errorf("summary: %+v", resp[0])
	}
	if resp[0].ID == "" {
		t.Error("profile ID missing")
	}
}

func TestMCP_ToolsRegistered(t *testing.T) {
	a := New(Config{Profiles: testManager(t)})
	session := mcpSession(t, a)

	tools, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]bool{
		"formfill_autofill":      false,
		"formfill_scan":          false,
		"formfill_list_profiles": false,
		"formfill_history":       false,
	}
	for _, tool := range tools.Tools {
		if _, ok := want[tool.Name]; ok {
			want[tool.Name] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("tool %q not registered", name)
		}
	}
}
