package mcp_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/gitstats/internal/gittest"
	"github.com/Sumatoshi-tech/gitstats/pkg/mcp"
)

// connect starts srv on an in-memory transport and returns a client session.
func connect(t *testing.T, srv *mcp.Server) *mcpsdk.ClientSession {
	t.Helper()

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	serverDone := make(chan error, 1)

	go func() {
		serverDone <- srv.RunWithTransport(ctx, serverTransport)
	}()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()

		cancel()
		<-serverDone
	})

	return session
}

func callReport(t *testing.T, session *mcpsdk.ClientSession, args map[string]any) *mcpsdk.CallToolResult {
	t.Helper()

	result, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{
		Name:      mcp.ToolNameReport,
		Arguments: args,
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)

	return result
}

func textOf(t *testing.T, result *mcpsdk.CallToolResult) string {
	t.Helper()

	text, ok := result.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok)

	return text.Text
}

func TestMCPServer_InMemoryTransport_ToolsList(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	toolsResult, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, toolsResult.Tools, 1)

	tool := toolsResult.Tools[0]
	assert.Equal(t, mcp.ToolNameReport, tool.Name)
	assert.NotEmpty(t, tool.Description)
	assert.NotNil(t, tool.InputSchema)
}

func TestMCPServer_InMemoryTransport_CallAuthors(t *testing.T) {
	t.Parallel()

	dir := gittest.History(t)
	session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	result := callReport(t, session, map[string]any{
		"repo_path": dir,
		"section":   "authors",
		"sort_by":   "lines-added",
	})
	require.False(t, result.IsError, textOf(t, result))

	var authors struct {
		SortBy       string `json:"sort_by"`
		AuthorsCount int    `json:"authors_count"`
		Total        struct {
			CommitsCount int `json:"commits_count"`
		} `json:"total"`
		Authors []struct {
			Author struct {
				Name string `json:"name"`
			} `json:"author"`
			CommitsCount int `json:"commits_count"`
		} `json:"authors"`
	}
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &authors))

	assert.Equal(t, "lines-added", authors.SortBy)
	assert.Equal(t, 2, authors.AuthorsCount)
	assert.Equal(t, 3, authors.Total.CommitsCount)
	require.Len(t, authors.Authors, 2)
	assert.Equal(t, "Alice", authors.Authors[0].Author.Name)
	assert.Equal(t, 2, authors.Authors[0].CommitsCount)
}

func TestMCPServer_InMemoryTransport_CallDetailWithFilter(t *testing.T) {
	t.Parallel()

	dir := gittest.History(t)
	session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	result := callReport(t, session, map[string]any{
		"repo_path": dir,
		"section":   "detail",
		"since":     "2024-02-01",
		"backend":   "libgit2",
	})
	require.False(t, result.IsError, textOf(t, result))

	var detail struct {
		CommitsCount int   `json:"commits_count"`
		Size         int64 `json:"size"`
	}
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &detail))

	assert.Equal(t, 2, detail.CommitsCount)
	assert.Positive(t, detail.Size)
}

func TestMCPServer_InMemoryTransport_CallErrors(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{name: "relative path", args: map[string]any{"repo_path": "repo"}, want: "absolute"},
		{
			name: "missing path",
			args: map[string]any{"repo_path": filepath.Join(t.TempDir(), "missing")},
			want: "does not exist",
		},
		{
			name: "unknown section",
			args: map[string]any{"repo_path": t.TempDir(), "section": "files"},
			want: "section",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			result := callReport(t, session, tc.args)
			assert.True(t, result.IsError)
			assert.Contains(t, textOf(t, result), tc.want)
		})
	}
}
