package callbacks

import (
	"context"
	"sync/atomic"

	"github.com/funcall-ai/funcall/tools"
)

// ToolStats is a snapshot of tool execution counters.
type ToolStats struct {
	Calls     uint32
	Succeeded uint32
	Failed    uint32
}

// Stats counts tool executions. Safe for concurrent use.
type Stats struct {
	calls     atomic.Uint32
	succeeded atomic.Uint32
	failed    atomic.Uint32
}

func NewStats() *Stats {
	return &Stats{}
}

func (s *Stats) OnToolStart(ctx context.Context, tool tools.ITool, input string) {
	s.calls.Add(1)
}

func (s *Stats) OnToolEnd(ctx context.Context, tool tools.ITool, input string, output string) {
	s.succeeded.Add(1)
}

func (s *Stats) OnToolError(ctx context.Context, tool tools.ITool, input string, err error) {
	s.failed.Add(1)
}

// Snapshot returns the current counters.
func (s *Stats) Snapshot() ToolStats {
	return ToolStats{
		Calls:     s.calls.Load(),
		Succeeded: s.succeeded.Load(),
		Failed:    s.failed.Load(),
	}
}
