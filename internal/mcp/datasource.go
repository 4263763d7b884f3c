package mcp

import (
	"context"

	"github.com/dk3682/muscle-avatar/internal/game"
	"github.com/dk3682/muscle-avatar/internal/progression"
)

// DataSource abstracts the game for MCP tools. Both Local (in-process engine)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	State(ctx context.Context) (*game.Snapshot, error)
	Export(ctx context.Context) ([]byte, error)
	XPTable(ctx context.Context, levels int) ([]progression.LevelStep, error)
	PreviewGain(ctx context.Context, formAcc, repAcc, formValue float64) (*progression.Result, error)
}

// Local serves MCP from the engine in this process.
type Local struct {
	Engine *game.Engine
}

// Compile-time check: Local satisfies DataSource.
var _ DataSource = Local{}

func (l Local) State(ctx context.Context) (*game.Snapshot, error) {
	snap := l.Engine.Peek(ctx)
	return &snap, nil
}

func (l Local) Export(ctx context.Context) ([]byte, error) {
	return l.Engine.Export(ctx)
}

func (l Local) XPTable(_ context.Context, levels int) ([]progression.LevelStep, error) {
	return l.Engine.XPTable(levels), nil
}

func (l Local) PreviewGain(_ context.Context, formAcc, repAcc, formValue float64) (*progression.Result, error) {
	res := l.Engine.PreviewGain(formAcc, repAcc, formValue)
	return &res, nil
}
