package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/navindex/internal/catalog"
	"github.com/Aman-CERP/navindex/pkg/navigator"
)

func writeKit(t *testing.T) string {
	t.Helper()
	recs := []navigator.TopicRecord{
		{
			Reference: "doc://kit", Language: "swift", Title: "Kit", Path: "/documentation/kit",
			Kind: navigator.KindModule, Variants: []navigator.Variant{{Language: "occ"}},
		},
		{
			Reference: "doc://kit/button", Language: "swift", Title: "Button", Path: "/documentation/kit/button",
			Kind: navigator.KindType, Variants: []navigator.Variant{{Language: "occ", Title: "UIButton", Path: "/documentation/kit/uibutton"}},
			Platforms: []navigator.Platform{{Name: "iOS", Introduced: navigator.Version{Major: 13}}},
		},
		{
			Reference: "doc://kit/action", Language: "swift", Title: "Action", Path: "/documentation/kit/action",
			Kind: navigator.KindType,
		},
		{
			Reference: "doc://kit/button/tap", Language: "swift", Title: "tap()", Path: "/documentation/kit/button/tap",
			Kind: navigator.KindMember,
		},
	}
	res, err := navigator.Build(recs, nil, navigator.WithBundleIdentifier("com.example.kit"))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "kit.navindex")
	require.NoError(t, navigator.WriteFile(path, res.Artifact))
	return path
}

func newTestServer(t *testing.T, path string) *Server {
	t.Helper()
	cat, err := catalog.New(2, nil)
	require.NoError(t, err)
	s, err := NewServer(cat, path, nil)
	require.NoError(t, err)
	return s
}

func TestNewServer_RequiresCatalogAndPath(t *testing.T) {
	cat, err := catalog.New(1, nil)
	require.NoError(t, err)

	_, err = NewServer(nil, "x.navindex", nil)
	assert.Error(t, err)
	_, err = NewServer(cat, "", nil)
	assert.Error(t, err)
}

func TestServer_ListTools(t *testing.T) {
	s := newTestServer(t, writeKit(t))

	var names []string
	for _, ti := range s.ListTools() {
		names = append(names, ti.Name)
		assert.NotEmpty(t, ti.Description)
	}

	assert.Equal(t, []string{"navigator_languages", "navigator_children", "navigator_lookup", "navigator_dump"}, names)
	name, _ := s.Info()
	assert.Equal(t, "navindex", name)
}

func TestServer_Languages(t *testing.T) {
	s := newTestServer(t, writeKit(t))

	res, err := s.CallTool(context.Background(), "navigator_languages", nil)

	require.NoError(t, err)
	out := res.(*LanguagesOutput)
	assert.Equal(t, "com.example.kit", out.Bundle)
	require.Len(t, out.Languages, 2)
	assert.Equal(t, "occ", out.Languages[0].Name)
	assert.Equal(t, "swift", out.Languages[1].Name)
	assert.Equal(t, 5, out.Languages[1].Items)
}

func TestServer_Children(t *testing.T) {
	s := newTestServer(t, writeKit(t))

	tests := []struct {
		name      string
		args      map[string]any
		want      []string
		truncated bool
	}{
		{"root by default", map[string]any{"language": "swift"}, []string{"Kit"}, false},
		{"module", map[string]any{"language": "swift", "path": "/documentation/kit"}, []string{"Action", "Button"}, false},
		{"limit", map[string]any{"language": "swift", "path": "/documentation/kit", "limit": 1}, []string{"Action"}, true},
		{"other language", map[string]any{"language": "occ", "path": "/documentation/kit"}, []string{"UIButton"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.CallTool(context.Background(), "navigator_children", tt.args)

			require.NoError(t, err)
			out := res.(*ChildrenOutput)
			var titles []string
			for _, c := range out.Children {
				titles = append(titles, c.Title)
			}
			assert.Equal(t, tt.want, titles)
			assert.Equal(t, tt.truncated, out.Truncated)
		})
	}
}

func TestServer_Lookup(t *testing.T) {
	// Given: a served artifact
	s := newTestServer(t, writeKit(t))

	// When: looking up a nested type
	res, err := s.CallTool(context.Background(), "navigator_lookup", map[string]any{
		"language": "swift", "path": "/documentation/kit/button/",
	})

	// Then: the item, its breadcrumbs and its variants are returned
	require.NoError(t, err)
	out := res.(*LookupOutput)
	assert.Equal(t, "Button", out.Item.Title)
	assert.Equal(t, "type", out.Item.Kind)
	assert.Equal(t, []string{"iOS 13.0.0"}, out.Item.Platforms)
	require.Len(t, out.Breadcrumbs, 2)
	assert.Equal(t, "/", out.Breadcrumbs[0].Path)
	assert.Equal(t, "Kit", out.Breadcrumbs[1].Title)
	assert.Equal(t, map[string]string{"occ": "/documentation/kit/uibutton"}, out.Variants)
}

func TestServer_ToolErrors(t *testing.T) {
	s := newTestServer(t, writeKit(t))

	tests := []struct {
		name     string
		tool     string
		args     map[string]any
		wantCode int
	}{
		{"unknown tool", "navigator_search", nil, ErrCodeMethodNotFound},
		{"missing language", "navigator_children", map[string]any{}, ErrCodeInvalidParams},
		{"unknown language", "navigator_children", map[string]any{"language": "kotlin"}, ErrCodeNotFound},
		{"missing path", "navigator_lookup", map[string]any{"language": "swift"}, ErrCodeInvalidParams},
		{"unknown path", "navigator_lookup", map[string]any{"language": "swift", "path": "/nope"}, ErrCodeNotFound},
		{"path without language", "navigator_dump", map[string]any{"path": "/documentation/kit"}, ErrCodeInvalidParams},
		{"bad argument type", "navigator_children", map[string]any{"language": 7}, ErrCodeInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CallTool(context.Background(), tt.tool, tt.args)

			var mcpErr *MCPError
			require.ErrorAs(t, err, &mcpErr)
			assert.Equal(t, tt.wantCode, mcpErr.Code)
		})
	}
}

func TestServer_Dump(t *testing.T) {
	s := newTestServer(t, writeKit(t))

	res, err := s.CallTool(context.Background(), "navigator_dump", map[string]any{
		"language": "swift", "path": "/documentation/kit",
	})
	require.NoError(t, err)
	assert.Equal(t, "Kit [module]\n  Action [type]\n  Button [type]\n    tap() [member]\n", res.(*DumpOutput).Text)

	res, err = s.CallTool(context.Background(), "navigator_dump", nil)
	require.NoError(t, err)
	all := res.(*DumpOutput).Text
	assert.True(t, strings.HasPrefix(all, "# occ\n"))
	assert.Contains(t, all, "# swift\n")
}

func TestServer_MissingArtifact(t *testing.T) {
	s := newTestServer(t, filepath.Join(t.TempDir(), "none.navindex"))

	_, err := s.CallTool(context.Background(), "navigator_languages", nil)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrCodeIndexUnavailable, mcpErr.Code)
}

func TestServer_CorruptArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.navindex")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))
	s := newTestServer(t, path)

	_, err := s.CallTool(context.Background(), "navigator_languages", nil)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrCodeIndexUnavailable, mcpErr.Code)
}

func TestServer_InfoResource(t *testing.T) {
	s := newTestServer(t, writeKit(t))

	res, err := s.handleInfoResource(context.Background(), nil)

	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	var info navigator.Info
	require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &info))
	assert.Equal(t, "com.example.kit", info.Bundle)
}

func TestServer_OverInMemoryTransport(t *testing.T) {
	// Given: a server and client connected in memory
	s := newTestServer(t, writeKit(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clientT, serverT := mcp.NewInMemoryTransports()
	ss, err := s.MCPServer().Connect(ctx, serverT, nil)
	require.NoError(t, err)
	defer func() { _ = ss.Close() }()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientT, nil)
	require.NoError(t, err)
	defer func() { _ = cs.Close() }()

	// When: listing tools and calling one
	list, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)
	res, err := cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "navigator_children",
		Arguments: map[string]any{"language": "swift", "path": "/documentation/kit"},
	})

	// Then: all tools are advertised and the structured result round-trips
	require.NoError(t, err)
	assert.Len(t, list.Tools, 4)
	require.False(t, res.IsError)
	data, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	var out ChildrenOutput
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out.Children, 2)
	assert.Equal(t, "Action", out.Children[0].Title)

	// When: calling with an unknown language
	res, err = cs.CallTool(ctx, &mcp.CallToolParams{
		Name:      "navigator_children",
		Arguments: map[string]any{"language": "kotlin"},
	})

	// Then: the tool reports an error result
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
