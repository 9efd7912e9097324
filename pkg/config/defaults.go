package config

// Report defaults.
const (
	DefaultReportFormat = "text"
	DefaultReportSortBy = "commits"
	DefaultReportTop    = 0
)

// Collect defaults.
const (
	DefaultCollectWorkers   = 0
	DefaultCollectBackend   = BackendCLI
	DefaultCollectGitBinary = "git"

	// DefaultCollectCacheEntries bounds the commit detail cache of the MCP server.
	DefaultCollectCacheEntries = 100_000
)

// Logging defaults.
const (
	DefaultLoggingLevel = "info"
	DefaultLoggingJSON  = false
)

// Collect backends.
const (
	BackendCLI     = "cli"
	BackendLibgit2 = "libgit2"
)

const maxWorkers = 1024
