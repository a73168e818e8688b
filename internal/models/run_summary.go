package models

import "time"

// RunState is a step of the per-root discovery state machine. States only move forward.
type RunState int

const (
	StateInit RunState = iota
	StateFetched
	StateStaticMode
	StateRenderMode
	StateBlocked
	StateUnreachable
	StateDiscovering
	StateExtracting
	StateDone
)

func (s RunState) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateFetched:
		return "FETCHED"
	case StateStaticMode:
		return "STATIC_MODE"
	case StateRenderMode:
		return "RENDER_MODE"
	case StateBlocked:
		return "BLOCKED"
	case StateUnreachable:
		return "UNREACHABLE"
	case StateDiscovering:
		return "DISCOVERING"
	case StateExtracting:
		return "EXTRACTING"
	case StateDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// RunSummary describes how one root's run went.
type RunSummary struct {
	Website       string
	Outcome       RunState // BLOCKED, UNREACHABLE, STATIC_MODE or RENDER_MODE
	FinalState    RunState
	RenderingMode RenderingMode
	PagesFetched  int
	Rendered      bool
	Duration      time.Duration
	Record        ContactRecord
}
