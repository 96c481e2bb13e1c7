package mcp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Aman-CERP/navindex/internal/catalog"
	"github.com/Aman-CERP/navindex/pkg/navigator"
	"github.com/Aman-CERP/navindex/pkg/version"
)

// ServerName is reported to clients during initialization.
const ServerName = "navindex"

// maxDumpBytes caps navigator_dump output so a large tree cannot flood the
// client's context.
const maxDumpBytes = 256 << 10

// Server is the MCP server over one artifact path. Every call goes through
// the catalog, so a rebuilt artifact is picked up without a restart.
type Server struct {
	mcp     *mcp.Server
	catalog *catalog.Catalog
	path    string
	logger  *slog.Logger
}

// ToolInfo contains information about a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

var tools = []ToolInfo{
	{
		Name:        "navigator_languages",
		Description: "List the language trees in the documentation navigator index with their sizes. Call this first to learn which languages can be queried.",
	},
	{
		Name:        "navigator_children",
		Description: "List the ordered children of a navigator item, identified by language and path (the root is /). Use it to walk the documentation hierarchy one level at a time.",
	},
	{
		Name:        "navigator_lookup",
		Description: "Look up one documentation topic by language and path. Returns the item, its breadcrumbs from the root, and the paths of the same topic in other languages.",
	},
	{
		Name:        "navigator_dump",
		Description: "Render a language tree, or a subtree under a path, as indented text with one 'Title [kind]' line per topic. Omit language to dump every tree.",
	},
}

// NewServer creates an MCP server answering from the artifact at path.
func NewServer(cat *catalog.Catalog, path string, logger *slog.Logger) (*Server, error) {
	if cat == nil {
		return nil, errors.New("catalog is required")
	}
	if path == "" {
		return nil, errors.New("artifact path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		catalog: cat,
		path:    path,
		logger:  logger,
	}
	s.mcp = mcp.NewServer(
		&mcp.Implementation{Name: ServerName, Version: version.Version},
		nil, // capabilities are inferred from registered tools/resources
	)
	s.registerTools()
	s.registerResources()
	return s, nil
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Info returns the server name and version.
func (s *Server) Info() (name, ver string) {
	return ServerName, version.Version
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []ToolInfo {
	return append([]ToolInfo(nil), tools...)
}

// CallTool invokes a tool by name with JSON-style arguments.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (any, error) {
	switch name {
	case "navigator_languages":
		return s.handleLanguages(ctx)
	case "navigator_children":
		in, err := decodeArgs[ChildrenInput](args)
		if err != nil {
			return nil, err
		}
		return s.handleChildren(ctx, in)
	case "navigator_lookup":
		in, err := decodeArgs[LookupInput](args)
		if err != nil {
			return nil, err
		}
		return s.handleLookup(ctx, in)
	case "navigator_dump":
		in, err := decodeArgs[DumpInput](args)
		if err != nil {
			return nil, err
		}
		return s.handleDump(ctx, in)
	default:
		return nil, NewMethodNotFoundError(name)
	}
}

func decodeArgs[T any](args map[string]any) (T, error) {
	var in T
	data, err := json.Marshal(args)
	if err != nil {
		return in, NewInvalidParamsError(err.Error())
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return in, NewInvalidParamsError(err.Error())
	}
	return in, nil
}

// open loads the artifact through the catalog, logging the outcome under a
// request ID.
func (s *Server) open(ctx context.Context, tool string) (*navigator.Artifact, string, error) {
	requestID := generateRequestID()
	start := time.Now()
	a, err := s.catalog.Open(ctx, s.path)
	if err != nil {
		s.logger.Error("artifact unavailable",
			slog.String("request_id", requestID),
			slog.String("tool", tool),
			slog.String("path", s.path),
			slog.String("error", err.Error()))
		return nil, requestID, MapError(err)
	}
	s.logger.Debug("artifact opened",
		slog.String("request_id", requestID),
		slog.String("tool", tool),
		slog.Duration("duration", time.Since(start)))
	return a, requestID, nil
}

func (s *Server) handleLanguages(ctx context.Context) (*LanguagesOutput, error) {
	a, _, err := s.open(ctx, "navigator_languages")
	if err != nil {
		return nil, err
	}
	info := a.Info()
	out := &LanguagesOutput{Bundle: info.Bundle, Version: int(info.Version), Languages: []LanguageInfo{}}
	for _, l := range info.Languages {
		out.Languages = append(out.Languages, LanguageInfo{Name: l.Name, Items: l.Items, Depth: l.Depth})
	}
	return out, nil
}

// resolve finds the item at path in language, treating an empty path as
// the root.
func resolve(a *navigator.Artifact, language, path string) (navigator.Item, error) {
	if strings.TrimSpace(language) == "" {
		return navigator.Item{}, NewInvalidParamsError("language parameter is required")
	}
	if _, err := a.Root(language); err != nil {
		return navigator.Item{}, MapError(err)
	}
	if strings.TrimSpace(path) == "" {
		path = "/"
	}
	it, ok := a.Lookup(language, path)
	if !ok {
		return navigator.Item{}, NewNotFoundError(language, path)
	}
	return it, nil
}

func (s *Server) handleChildren(ctx context.Context, in ChildrenInput) (*ChildrenOutput, error) {
	a, requestID, err := s.open(ctx, "navigator_children")
	if err != nil {
		return nil, err
	}
	parent, err := resolve(a, in.Language, in.Path)
	if err != nil {
		return nil, err
	}

	limit := clampLimit(in.Limit, 100, 1, 1000)
	kids := a.Children(parent.ID)
	out := &ChildrenOutput{Parent: toItemOutput(parent), Children: make([]ItemOutput, 0, min(len(kids), limit))}
	for i, c := range kids {
		if i == limit {
			out.Truncated = true
			break
		}
		out.Children = append(out.Children, toItemOutput(c))
	}

	s.logger.Info("children listed",
		slog.String("request_id", requestID),
		slog.String("language", in.Language),
		slog.String("path", parent.Path),
		slog.Int("count", len(out.Children)))
	return out, nil
}

func (s *Server) handleLookup(ctx context.Context, in LookupInput) (*LookupOutput, error) {
	if strings.TrimSpace(in.Path) == "" {
		return nil, NewInvalidParamsError("path parameter is required")
	}
	a, _, err := s.open(ctx, "navigator_lookup")
	if err != nil {
		return nil, err
	}
	it, err := resolve(a, in.Language, in.Path)
	if err != nil {
		return nil, err
	}

	out := &LookupOutput{Item: toItemOutput(it), Breadcrumbs: []ItemOutput{}}
	for p, ok := a.Parent(it.ID); ok; p, ok = a.Parent(p.ID) {
		out.Breadcrumbs = append([]ItemOutput{toItemOutput(p)}, out.Breadcrumbs...)
	}
	for _, lang := range a.Languages() {
		if lang == it.Language {
			continue
		}
		if v, ok := a.Variant(it.ID, lang); ok {
			if out.Variants == nil {
				out.Variants = make(map[string]string)
			}
			out.Variants[lang] = v.Path
		}
	}
	return out, nil
}

func (s *Server) handleDump(ctx context.Context, in DumpInput) (*DumpOutput, error) {
	a, _, err := s.open(ctx, "navigator_dump")
	if err != nil {
		return nil, err
	}

	var text string
	switch {
	case in.Language == "" && in.Path != "":
		return nil, NewInvalidParamsError("path requires language")
	case in.Language == "":
		text = a.Dump()
	default:
		it, err := resolve(a, in.Language, in.Path)
		if err != nil {
			return nil, err
		}
		text = a.DumpTree(it.ID)
	}

	out := &DumpOutput{Text: text}
	if len(text) > maxDumpBytes {
		cut := strings.LastIndexByte(text[:maxDumpBytes], '\n') + 1
		out.Text = text[:cut]
		out.Truncated = true
	}
	return out, nil
}

// registerTools registers all tools with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{Name: tools[0].Name, Description: tools[0].Description}, s.mcpLanguagesHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: tools[1].Name, Description: tools[1].Description}, s.mcpChildrenHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: tools[2].Name, Description: tools[2].Description}, s.mcpLookupHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: tools[3].Name, Description: tools[3].Description}, s.mcpDumpHandler)
	s.logger.Debug("MCP tools registered", slog.Int("count", len(tools)))
}

func (s *Server) mcpLanguagesHandler(ctx context.Context, _ *mcp.CallToolRequest, _ LanguagesInput) (
	*mcp.CallToolResult,
	*LanguagesOutput,
	error,
) {
	out, err := s.handleLanguages(ctx)
	if err != nil {
		return nil, nil, err
	}
	return nil, out, nil
}

func (s *Server) mcpChildrenHandler(ctx context.Context, _ *mcp.CallToolRequest, in ChildrenInput) (
	*mcp.CallToolResult,
	*ChildrenOutput,
	error,
) {
	out, err := s.handleChildren(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	return nil, out, nil
}

func (s *Server) mcpLookupHandler(ctx context.Context, _ *mcp.CallToolRequest, in LookupInput) (
	*mcp.CallToolResult,
	*LookupOutput,
	error,
) {
	out, err := s.handleLookup(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	return nil, out, nil
}

func (s *Server) mcpDumpHandler(ctx context.Context, _ *mcp.CallToolRequest, in DumpInput) (
	*mcp.CallToolResult,
	*DumpOutput,
	error,
) {
	out, err := s.handleDump(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	return nil, out, nil
}

// Serve starts the server with the specified transport.
func (s *Server) Serve(ctx context.Context, transport string) error {
	s.logger.Info("Starting MCP server",
		slog.String("transport", transport),
		slog.String("artifact", s.path))

	switch transport {
	case "stdio":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("MCP server stopped with error", slog.String("error", err.Error()))
			return err
		}
		s.logger.Info("MCP server stopped gracefully")
		return nil
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio)", transport)
	}
}

// generateRequestID creates a short unique request ID for log correlation.
func generateRequestID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
