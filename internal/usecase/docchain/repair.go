package docchain

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"pinkong/internal/bootstrap/logging"
	"pinkong/internal/errs"
)

// Repair stages in execution order.
const (
	StageAnalysis       = "analysis"
	StageControlPlan    = "control_plan"
	StageInstructions   = "instructions"
	StageInspectionPlan = "inspection_plan"
)

// Step statuses in a repair report.
const (
	StepGenerated = "generated"
	StepExisting  = "existing"
)

type RepairTraceabilityInput struct {
	ProductID uint64
}

type RepairStep struct {
	Stage  string
	Status string
	ID     uint64
	Count  int
}

type RepairSummary struct {
	GeneratedStages []string
	ExistingStages  []string
}

// RepairResult carries the per-stage report. On failure the steps collected
// so far are still populated.
type RepairResult struct {
	RunID   string
	Steps   []RepairStep
	Summary RepairSummary
}

// RepairTraceability runs the four generation stages for a product end to
// end, each keyed off the previous stage's output id. The first stage that
// neither succeeds nor resolves an existing document terminates the run; the
// partial step list is returned alongside the error. Already-inserted stages
// are never rolled back across stage boundaries.
func (s *Service) RepairTraceability(ctx context.Context, in RepairTraceabilityInput) (RepairResult, error) {
	if ctx == nil {
		return RepairResult{}, errors.New("context is required")
	}
	if err := s.checkCollaborators(); err != nil {
		return RepairResult{}, err
	}
	if in.ProductID == 0 {
		return RepairResult{}, errProductIDRequired
	}

	result := RepairResult{RunID: uuid.NewString()}
	logCtx := logging.WithAttrs(ctx,
		slog.String("run_id", result.RunID),
		slog.Uint64("product_id", in.ProductID))
	logging.Info(logCtx, "traceability repair started")

	analysis, err := s.GenerateAnalysis(ctx, GenerateAnalysisInput{ProductID: in.ProductID})
	if err != nil {
		return result, errs.Wrap(err, "analysis stage")
	}
	result.append(StageAnalysis, analysis.Created, analysis.RootID, analysis.LinesCount)

	controlPlan, err := s.GenerateControlPlan(ctx, GenerateControlPlanInput{RootID: analysis.RootID})
	if err != nil {
		return result, errs.Wrap(err, "control plan stage")
	}
	result.append(StageControlPlan, controlPlan.Created, controlPlan.ControlPlanID, controlPlan.ItemsCount)

	instructions, err := s.GenerateInstructions(ctx, GenerateInstructionsInput{ControlPlanID: controlPlan.ControlPlanID})
	if err != nil {
		return result, errs.Wrap(err, "instructions stage")
	}
	result.append(StageInstructions, instructions.Created, instructions.InstructionsID, instructions.StepsCount)

	inspection, err := s.GenerateInspectionPlan(ctx, GenerateInspectionPlanInput{ControlPlanID: controlPlan.ControlPlanID})
	if err != nil {
		return result, errs.Wrap(err, "inspection plan stage")
	}
	result.append(StageInspectionPlan, inspection.Created, inspection.InspectionPlanID, inspection.ItemsCount)

	logging.Info(logCtx, "traceability repair finished",
		slog.Any("generated", result.Summary.GeneratedStages),
		slog.Any("existing", result.Summary.ExistingStages))
	return result, nil
}

func (r *RepairResult) append(stage string, created bool, id uint64, count int) {
	status := StepExisting
	if created {
		status = StepGenerated
	}
	r.Steps = append(r.Steps, RepairStep{Stage: stage, Status: status, ID: id, Count: count})
	if created {
		r.Summary.GeneratedStages = append(r.Summary.GeneratedStages, stage)
		return
	}
	r.Summary.ExistingStages = append(r.Summary.ExistingStages, stage)
}
