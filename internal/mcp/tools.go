package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dk3682/muscle-avatar/internal/models"
	"github.com/dk3682/muscle-avatar/internal/session"
)

// --- Tool definitions ---

var toolGetProgress = mcp.NewTool("get_progress",
	mcp.WithDescription("Current avatar profile and progress: muscle stats (chest/shoulders/arms), level, XP and XP to next level, fatigue, sets left today, streak, total sets and training days."),
)

var toolGetSetSession = mcp.NewTool("get_set_session",
	mcp.WithDescription("The set in progress, if any: phase (form/reps/result), form value and accuracy, rep count and hits, marker and hit zone, and the result once finished."),
)

var toolPreviewGain = mcp.NewTool("preview_gain",
	mcp.WithDescription("Preview the stat, fatigue and XP changes a set would produce at the avatar's current level and fatigue. Nothing is applied."),
	mcp.WithNumber("form_value", mcp.Description("Form slider position 0-100. The target range is 55-70. Defaults to 62.5."), mcp.Min(0), mcp.Max(100)),
	mcp.WithNumber("form_accuracy", mcp.Description("Form accuracy 0-1. Derived from form_value when omitted."), mcp.Min(0), mcp.Max(1)),
	mcp.WithNumber("rep_accuracy", mcp.Description("Fraction of the 10 reps hit, 0-1. Defaults to 1."), mcp.Min(0), mcp.Max(1)),
)

var toolGetXPTable = mcp.NewTool("get_xp_table",
	mcp.WithDescription("XP required per level and cumulative XP to reach it."),
	mcp.WithNumber("levels", mcp.Description("Number of levels to list (1-100). Defaults to 20."), mcp.Min(1), mcp.Max(100)),
)

// --- Tool handlers ---

type progressView struct {
	Today         string          `json:"today"`
	ProfileLocked bool            `json:"profile_locked"`
	Profile       models.Profile  `json:"profile"`
	Progress      models.Progress `json:"progress"`
	XPToNext      int             `json:"xp_to_next"`
	SetActive     bool            `json:"set_active"`
}

func (h *handlers) getProgress(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := h.ds.State(ctx)
	if err != nil {
		h.log.Error("mcp get_progress", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(progressView{
		Today:         snap.Today,
		ProfileLocked: snap.ProfileLocked,
		Profile:       snap.Profile,
		Progress:      snap.Progress,
		XPToNext:      snap.XPToNext,
		SetActive:     snap.Set != nil,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSetSession(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := h.ds.State(ctx)
	if err != nil {
		h.log.Error("mcp get_set_session", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if snap.Set == nil {
		return mcp.NewToolResultText("No set in progress."), nil
	}

	result, err := mcp.NewToolResultJSON(snap.Set)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) previewGain(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	formValue := req.GetFloat("form_value", (session.FormTargetLow+session.FormTargetHigh)/2)
	formAcc := req.GetFloat("form_accuracy", session.FormAccuracy(formValue))
	repAcc := req.GetFloat("rep_accuracy", 1)
	if formValue < 0 || formValue > 100 || formAcc < 0 || formAcc > 1 || repAcc < 0 || repAcc > 1 {
		return mcp.NewToolResultError("form_value must be 0-100 and accuracies 0-1"), nil
	}

	res, err := h.ds.PreviewGain(ctx, formAcc, repAcc, formValue)
	if err != nil {
		h.log.Error("mcp preview_gain", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(res)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getXPTable(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	levels := req.GetInt("levels", 20)
	if levels < 1 || levels > 100 {
		return mcp.NewToolResultError("levels must be between 1 and 100"), nil
	}

	table, err := h.ds.XPTable(ctx, levels)
	if err != nil {
		h.log.Error("mcp get_xp_table", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(table)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
