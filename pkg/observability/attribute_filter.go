package observability

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Span attribute namespaces exported by gitstats. The gitstats.author
// namespace holds identities and never leaves the process.
var (
	exportedPrefixes = []string{"gitstats.", "report.", "mcp.", "http.", "error."}
	identityPrefixes = []string{"gitstats.author.", "user."}
	identityKeys     = map[string]bool{"email": true, "request.body": true, "response.body": true}
)

// emailPattern matches addresses inside free-form values such as the
// rendered commit filter ("author:Jane <jane@example.org>").
var emailPattern = regexp.MustCompile(`[^\s<>@]+@[^\s<>@]+`)

// attributeFilter is a SpanProcessor that drops attributes outside the
// exported namespaces and scrubs emails from the string values it keeps.
type attributeFilter struct {
	delegate sdktrace.SpanProcessor
	logger   *slog.Logger

	// warned holds the keys already reported, so a busy span name logs once.
	warned sync.Map
}

// NewAttributeFilter wraps delegate so that exported spans only carry
// gitstats, report, mcp, http and error attributes. Identity attributes are
// always dropped. A non-nil logger is warned once per dropped key.
func NewAttributeFilter(delegate sdktrace.SpanProcessor, logger *slog.Logger) sdktrace.SpanProcessor {
	return &attributeFilter{delegate: delegate, logger: logger}
}

func (f *attributeFilter) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	f.delegate.OnStart(parent, s)
}

// OnEnd hands the delegate a filtered view; ended spans are read-only.
func (f *attributeFilter) OnEnd(s sdktrace.ReadOnlySpan) {
	f.delegate.OnEnd(&filteredSpan{ReadOnlySpan: s, attrs: f.filter(s.Attributes())})
}

func (f *attributeFilter) Shutdown(ctx context.Context) error {
	err := f.delegate.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("attribute filter shutdown: %w", err)
	}

	return nil
}

func (f *attributeFilter) ForceFlush(ctx context.Context) error {
	err := f.delegate.ForceFlush(ctx)
	if err != nil {
		return fmt.Errorf("attribute filter flush: %w", err)
	}

	return nil
}

func (f *attributeFilter) filter(attrs []attribute.KeyValue) []attribute.KeyValue {
	kept := make([]attribute.KeyValue, 0, len(attrs))

	for _, kv := range attrs {
		key := string(kv.Key)
		if !exported(key) {
			f.warn(key)

			continue
		}

		if kv.Value.Type() == attribute.STRING {
			kv = attribute.String(key, emailPattern.ReplaceAllString(kv.Value.AsString(), redacted))
		}

		kept = append(kept, kv)
	}

	return kept
}

func exported(key string) bool {
	if identityKeys[key] || hasAnyPrefix(key, identityPrefixes) {
		return false
	}

	return key == "error" || hasAnyPrefix(key, exportedPrefixes)
}

func hasAnyPrefix(key string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}

	return false
}

func (f *attributeFilter) warn(key string) {
	if f.logger == nil {
		return
	}

	_, seen := f.warned.LoadOrStore(key, struct{}{})
	if !seen {
		f.logger.Warn("span attribute blocked", "key", key)
	}
}

// filteredSpan is a ReadOnlySpan with its attributes replaced.
type filteredSpan struct {
	sdktrace.ReadOnlySpan

	attrs []attribute.KeyValue
}

func (s *filteredSpan) Attributes() []attribute.KeyValue {
	return s.attrs
}
