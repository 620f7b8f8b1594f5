// Package toolutil provides helpers shared by the go_roadmap MCP tools:
// error classification for tool results and small input parsers.
package toolutil

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_roadmap/internal/engine"
	"github.com/anatolykoptev/go_roadmap/internal/engine/roadmap"
)

// Client-facing error kinds.
const (
	KindInvalidInput = "invalid_input"
	KindNotFound     = "not_found"
	KindConflict     = "conflict"
	KindModel        = "model_error"
	KindInternal     = "internal_error"
)

// ToolError is what a tool handler hands back to the MCP client.
type ToolError struct {
	Kind string
	Msg  string
	err  error
}

func (e *ToolError) Error() string { return e.Kind + ": " + e.Msg }

func (e *ToolError) Unwrap() error { return e.err }

// Classify maps domain errors to client errors. Model and storage failures
// are logged and replaced with a generic message.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var te *ToolError
	if errors.As(err, &te) {
		return te
	}
	switch {
	case errors.Is(err, roadmap.ErrInvalidInput):
		return &ToolError{Kind: KindInvalidInput, Msg: err.Error(), err: err}
	case errors.Is(err, roadmap.ErrNotFound):
		return &ToolError{Kind: KindNotFound, Msg: err.Error(), err: err}
	case errors.Is(err, roadmap.ErrDuplicate):
		return &ToolError{Kind: KindConflict, Msg: err.Error(), err: err}
	case roadmap.IsModelFailure(err):
		slog.Warn(op+": unusable model reply", slog.Any("error", err))
		return &ToolError{Kind: KindModel, Msg: "model returned invalid structure", err: err}
	}
	slog.Error(op+" failed", slog.Any("error", err))
	return &ToolError{Kind: KindInternal, Msg: op + " failed", err: err}
}

// Required returns an invalid-input error when v is blank.
func Required(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return &ToolError{Kind: KindInvalidInput, Msg: field + " is required"}
	}
	return nil
}

// RequiredID returns an invalid-input error for non-positive ids.
func RequiredID(field string, id int64) error {
	if id <= 0 {
		return &ToolError{Kind: KindInvalidInput, Msg: fmt.Sprintf("%s must be a positive id", field)}
	}
	return nil
}

// SkillList accepts either a JSON array of names or one comma-separated
// string and returns the non-blank names in order.
func SkillList(list []string, csv string) []string {
	var out []string
	for _, s := range list {
		out = append(out, engine.SplitList(s)...)
	}
	return append(out, engine.SplitList(csv)...)
}
