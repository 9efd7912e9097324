package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/gitstats/pkg/aggregate"
	"github.com/Sumatoshi-tech/gitstats/pkg/config"
	"github.com/Sumatoshi-tech/gitstats/pkg/report"
	"github.com/Sumatoshi-tech/gitstats/pkg/runner"
)

// ToolNameReport is the name of the report tool.
const ToolNameReport = "gitstats_report"

// Sentinel errors for tool input validation.
var (
	// ErrEmptyRepoPath indicates the repo_path parameter is empty.
	ErrEmptyRepoPath = errors.New("repo_path parameter is required and must not be empty")
	// ErrRepoPathNotAbsolute indicates the repo_path is not an absolute path.
	ErrRepoPathNotAbsolute = errors.New("repo_path must be an absolute path")
	// ErrRepoNotFound indicates the repository path does not exist.
	ErrRepoNotFound = errors.New("repository path does not exist")
	// ErrNegativeTop indicates a negative top parameter.
	ErrNegativeTop = errors.New("top must not be negative")
)

// ReportInput is the input schema for the gitstats_report tool.
type ReportInput struct {
	RepoPath      string `json:"repo_path"                jsonschema:"absolute path to a Git repository"`
	Section       string `json:"section,omitempty"        jsonschema:"all, detail, authors, months, weekdays, hours or heatmap (default: all)"`
	SortBy        string `json:"sort_by,omitempty"        jsonschema:"commits, files-changed, lines-added or lines-deleted (default: commits)"`
	Top           int    `json:"top,omitempty"            jsonschema:"keep only the first N authors (default: all)"`
	Since         string `json:"since,omitempty"          jsonschema:"only commits on or after this time (e.g. 720h or 2024-01-01)"`
	Until         string `json:"until,omitempty"          jsonschema:"only commits on or before this time (e.g. 2024-12-31)"`
	Author        string `json:"author,omitempty"         jsonschema:"only commits whose author matches this name or Name <email>"`
	ExcludeAuthor string `json:"exclude_author,omitempty" jsonschema:"drop commits whose author starts with this pattern"`
	Branch        string `json:"branch,omitempty"         jsonschema:"walk only this branch instead of every ref"`
	ExcludeMerges bool   `json:"exclude_merges,omitempty" jsonschema:"drop merge commits"`
	Backend       string `json:"backend,omitempty"        jsonschema:"cli or libgit2 (default: cli)"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// handleReport processes gitstats_report tool calls.
func (s *Server) handleReport(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input ReportInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	req, section, err := s.reportRequest(input)
	if err != nil {
		return errorResult(err)
	}

	if section == report.SectionDetail {
		detail, detailErr := s.runner.Detail(ctx, req)
		if detailErr != nil {
			return errorResult(detailErr)
		}

		return jsonResult(detail)
	}

	rep, err := s.runner.Report(ctx, req)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(rep.Value(section))
}

func (s *Server) reportRequest(input ReportInput) (runner.Request, report.Section, error) {
	err := validateRepoPath(input.RepoPath)
	if err != nil {
		return runner.Request{}, "", err
	}

	if input.Top < 0 {
		return runner.Request{}, "", fmt.Errorf("%w: %d", ErrNegativeTop, input.Top)
	}

	section, err := report.ParseSection(input.Section)
	if err != nil {
		return runner.Request{}, "", err
	}

	sortBy := aggregate.SortByCommits
	if input.SortBy != "" {
		sortBy, err = aggregate.ParseSortStatsBy(input.SortBy)
		if err != nil {
			return runner.Request{}, "", err
		}
	}

	filter, err := config.FilterConfig{
		Since:         input.Since,
		Until:         input.Until,
		Author:        input.Author,
		ExcludeAuthor: input.ExcludeAuthor,
		Branch:        input.Branch,
		ExcludeMerges: input.ExcludeMerges,
	}.ToFilter()
	if err != nil {
		return runner.Request{}, "", fmt.Errorf("filter: %w", err)
	}

	return runner.Request{
		Path:    input.RepoPath,
		Backend: input.Backend,
		Filter:  filter,
		Workers: s.workers,
		SortBy:  sortBy,
		Top:     input.Top,
	}, section, nil
}

// validateRepoPath checks that path is an absolute, existing directory.
func validateRepoPath(path string) error {
	if path == "" {
		return ErrEmptyRepoPath
	}

	if !filepath.IsAbs(path) {
		return ErrRepoPathNotAbsolute
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrRepoNotFound, path)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrRepoNotFound, path)
	}

	return nil
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}
