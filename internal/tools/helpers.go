// Package tools implements the MCP tool handlers for sprintline.
//
// Each tool is a struct that receives its dependencies via constructor
// (api client, logger, optional journal) and exposes Definition() for
// registration plus Handle() for execution.
//
// Conventions:
//   - one file = one tool (trivial CRUD pairs may share a file)
//   - expected failures return mcp.NewToolResultError; the handler
//     error return is reserved for programming faults
//   - validation and business-rule checks run before any backend call
package tools

import (
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"sprintline/internal/flow"
	"sprintline/internal/journal"
)

// trimmed extracts a string argument with surrounding whitespace
// removed.
func trimmed(req mcp.CallToolRequest, key string) string {
	return strings.TrimSpace(req.GetString(key, ""))
}

// optionalInt extracts an integer argument, returning (nil, nil) when
// the key is absent. JSON numbers arrive as float64; a non-numeric or
// fractional value is a validation error naming the field.
func optionalInt(req mcp.CallToolRequest, key string) (*int, error) {
	raw, ok := req.GetArguments()[key]
	if !ok {
		return nil, nil
	}
	v, ok := raw.(float64)
	if !ok {
		return nil, fmt.Errorf("'%s' must be a number", key)
	}
	if v != math.Trunc(v) {
		return nil, fmt.Errorf("'%s' must be a whole number, got %v", key, v)
	}
	n := int(v)
	return &n, nil
}

// intArg extracts an integer argument with a default.
func intArg(req mcp.CallToolRequest, key string, defaultVal int) (int, error) {
	n, err := optionalInt(req, key)
	if err != nil {
		return 0, err
	}
	if n != nil {
		return *n, nil
	}
	return defaultVal, nil
}

// stringList extracts a string-array argument. A plain string is
// accepted as a single-element list; blank entries are dropped.
func stringList(req mcp.CallToolRequest, key string) []string {
	var out []string
	switch v := req.GetArguments()[key].(type) {
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	case string:
		if strings.TrimSpace(v) != "" {
			out = append(out, strings.TrimSpace(v))
		}
	}
	return out
}

// optionalString returns a pointer to the trimmed argument value, or
// nil when the argument was not supplied. Distinguishes "not provided"
// from "clear this field".
func optionalString(req mcp.CallToolRequest, key string) *string {
	if _, ok := req.GetArguments()[key]; !ok {
		return nil
	}
	s := trimmed(req, key)
	return &s
}

// record writes one journal entry, best effort. Journal failures are
// logged and never fail the tool call.
func record(j *journal.Store, log *zap.Logger, tool, status string, entityIDs []string, summary string) {
	err := j.Record(&journal.Entry{
		Tool:      tool,
		Status:    status,
		EntityIDs: entityIDs,
		Summary:   summary,
	})
	if err != nil && log != nil {
		log.Warn("journal write failed", zap.String("tool", tool), zap.Error(err))
	}
}

// recordReport journals the outcome of a multi-step operation.
func recordReport(j *journal.Store, log *zap.Logger, tool string, report *flow.Report) {
	summary := ""
	if failure := report.FirstFailure(); failure != nil {
		summary = failure.Step + ": " + failure.Reason
	}
	record(j, log, tool, report.Status, report.EntityIDs(), summary)
}
