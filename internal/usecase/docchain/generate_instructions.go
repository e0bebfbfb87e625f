package docchain

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"pinkong/internal/bootstrap/logging"
	"pinkong/internal/domain/quality"
	"pinkong/internal/errs"
	"pinkong/internal/ports"
)

type GenerateInstructionsInput struct {
	ControlPlanID uint64
}

type InstructionsTraceability struct {
	ControlPlanID   uint64
	InstructionsID  uint64
	LinkedCPItemIDs []uint64
}

type GenerateInstructionsResult struct {
	Created        bool
	InstructionsID uint64
	StepsCount     int
	Traceability   InstructionsTraceability
}

// GenerateInstructions derives the work-instruction document from a control
// plan: one operating step per prevention item, an operate/confirm pair per
// detection item. Operating steps resolve content through the gateway;
// confirm steps are filled from the synthesizer alone and never call the
// generative service. Idempotent per control plan.
func (s *Service) GenerateInstructions(ctx context.Context, in GenerateInstructionsInput) (GenerateInstructionsResult, error) {
	if ctx == nil {
		return GenerateInstructionsResult{}, errors.New("context is required")
	}
	if err := s.checkCollaborators(); err != nil {
		return GenerateInstructionsResult{}, err
	}
	if in.ControlPlanID == 0 {
		return GenerateInstructionsResult{}, errPlanIDRequired
	}

	logCtx := logging.WithAttrs(ctx, slog.String("stage", "instructions"), slog.Uint64("control_plan_id", in.ControlPlanID))

	plan, err := s.repo.GetControlPlan(ctx, in.ControlPlanID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return GenerateInstructionsResult{}, errPlanNotFound
		}
		return GenerateInstructionsResult{}, errs.Wrap(err, "load control plan")
	}

	if existing, err := s.repo.FindDraftInstructionDoc(ctx, plan.ID); err == nil {
		return s.existingInstructionsResult(logCtx, plan.ID, existing)
	} else if !errors.Is(err, ports.ErrNotFound) {
		return GenerateInstructionsResult{}, errs.Wrap(err, "find draft instruction doc")
	}

	items, err := s.repo.ListControlPlanItems(ctx, plan.ID)
	if err != nil {
		return GenerateInstructionsResult{}, errs.Wrap(err, "list control plan items")
	}
	if len(items) == 0 {
		return GenerateInstructionsResult{}, errNoEligibleItems
	}

	eligible, lines, characteristics, err := s.eligibleItems(logCtx, items)
	if err != nil {
		return GenerateInstructionsResult{}, err
	}
	if len(eligible) == 0 {
		return GenerateInstructionsResult{}, errNoEligibleItems
	}

	doc := quality.InstructionDoc{
		ControlPlanID: plan.ID,
		Revision:      plan.Revision,
		Status:        quality.StatusDraft,
	}
	if err := s.repo.CreateInstructionDoc(ctx, &doc); err != nil {
		if errors.Is(err, ports.ErrDraftExists) {
			existing, findErr := s.repo.FindDraftInstructionDoc(ctx, plan.ID)
			if findErr != nil {
				return GenerateInstructionsResult{}, errs.Wrap(findErr, "reload draft instruction doc after race")
			}
			return s.existingInstructionsResult(logCtx, plan.ID, existing)
		}
		return GenerateInstructionsResult{}, errs.WithKind(errs.Wrap(err, "create instruction doc"), errs.KindPersistence)
	}

	// Step numbers follow upstream item order and are assigned before any
	// content resolution. Detection items contribute an extra confirm step.
	type stepPlan struct {
		item    quality.ControlPlanItem
		confirm bool
	}
	plans := make([]stepPlan, 0, 2*len(eligible))
	linkedItemIDs := make([]uint64, 0, len(eligible))
	for _, item := range eligible {
		linkedItemIDs = append(linkedItemIDs, item.ID)
		plans = append(plans, stepPlan{item: item})
		if item.ControlType == quality.ControlDetection {
			plans = append(plans, stepPlan{item: item, confirm: true})
		}
	}

	steps := make([]quality.InstructionStep, len(plans))
	var wg sync.WaitGroup
	for idx := range plans {
		steps[idx] = quality.InstructionStep{
			InstructionDocID: doc.ID,
			StepNo:           idx + 1,
			LinkedCPItemID:   plans[idx].item.ID,
		}
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			p := plans[idx]
			line := lines[p.item.PFMEALineID]
			ch := characteristics[p.item.CharacteristicID]
			if p.confirm {
				s.fillConfirmStep(&steps[idx], p.item, line, ch)
				return
			}
			s.fillInstructionStep(ctx, &steps[idx], p.item, line, ch)
		}(idx)
	}
	wg.Wait()

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		return s.repo.CreateInstructionSteps(txCtx, steps)
	}); err != nil {
		if delErr := s.repo.DeleteInstructionDoc(ctx, doc.ID); delErr != nil {
			logging.Error(logCtx, "rollback of instruction doc failed", slog.Any("err", errs.Loggable(delErr)))
		}
		return GenerateInstructionsResult{}, errs.WithKind(errs.Wrap(err, "insert instruction steps"), errs.KindPersistence)
	}

	logging.Info(logCtx, "instructions generated",
		slog.Uint64("instructions_id", doc.ID), slog.Int("steps", len(steps)))
	return GenerateInstructionsResult{
		Created:        true,
		InstructionsID: doc.ID,
		StepsCount:     len(steps),
		Traceability: InstructionsTraceability{
			ControlPlanID:   plan.ID,
			InstructionsID:  doc.ID,
			LinkedCPItemIDs: linkedItemIDs,
		},
	}, nil
}

func (s *Service) existingInstructionsResult(ctx context.Context, planID uint64, doc quality.InstructionDoc) (GenerateInstructionsResult, error) {
	steps, err := s.repo.ListInstructionSteps(ctx, doc.ID)
	if err != nil {
		return GenerateInstructionsResult{}, errs.Wrap(err, "list existing instruction steps")
	}

	linked := make([]uint64, 0, len(steps))
	seen := make(map[uint64]struct{}, len(steps))
	for _, step := range steps {
		if _, ok := seen[step.LinkedCPItemID]; ok {
			continue
		}
		seen[step.LinkedCPItemID] = struct{}{}
		linked = append(linked, step.LinkedCPItemID)
	}

	logging.Info(ctx, "draft instruction doc already exists", slog.Uint64("instructions_id", doc.ID))
	return GenerateInstructionsResult{
		InstructionsID: doc.ID,
		StepsCount:     len(steps),
		Traceability: InstructionsTraceability{
			ControlPlanID:   planID,
			InstructionsID:  doc.ID,
			LinkedCPItemIDs: linked,
		},
	}, nil
}

// eligibleItems resolves each control plan item's characteristic and source
// line. Items with a dangling characteristic reference are skipped with a
// warning; the batch continues.
func (s *Service) eligibleItems(ctx context.Context, items []quality.ControlPlanItem) ([]quality.ControlPlanItem, map[uint64]quality.AnalysisLine, map[uint64]quality.Characteristic, error) {
	chIDs := make([]uint64, 0, len(items))
	lineIDs := make([]uint64, 0, len(items))
	for _, item := range items {
		chIDs = append(chIDs, item.CharacteristicID)
		lineIDs = append(lineIDs, item.PFMEALineID)
	}

	foundCh, err := s.repo.ListCharacteristicsByIDs(ctx, chIDs)
	if err != nil {
		return nil, nil, nil, errs.Wrap(err, "list characteristics")
	}
	characteristics := make(map[uint64]quality.Characteristic, len(foundCh))
	for _, ch := range foundCh {
		characteristics[ch.ID] = ch
	}

	foundLines, err := s.repo.ListAnalysisLinesByIDs(ctx, lineIDs)
	if err != nil {
		return nil, nil, nil, errs.Wrap(err, "list analysis lines")
	}
	lines := make(map[uint64]quality.AnalysisLine, len(foundLines))
	for _, line := range foundLines {
		lines[line.ID] = line
	}

	eligible := make([]quality.ControlPlanItem, 0, len(items))
	for _, item := range items {
		if _, ok := characteristics[item.CharacteristicID]; !ok {
			logging.Warn(ctx, "control plan item references a missing characteristic, skipping",
				slog.Uint64("item_id", item.ID), slog.Uint64("characteristic_id", item.CharacteristicID))
			continue
		}
		eligible = append(eligible, item)
	}
	return eligible, lines, characteristics, nil
}

func (s *Service) fillInstructionStep(ctx context.Context, step *quality.InstructionStep, item quality.ControlPlanItem, line quality.AnalysisLine, ch quality.Characteristic) {
	fallback := quality.SynthesizeInstructionContent(item, line, ch)
	result := s.resolveContent(ctx,
		s.prompts.Instructions,
		instructionUserPrompt(item, line, ch),
		instructionKeys,
		map[string]string{
			"action":            fallback.Action,
			"key_point":         fallback.KeyPoint,
			"estimated_seconds": strconv.Itoa(fallback.EstimatedSeconds),
		})

	step.Action = result.Content["action"]
	step.KeyPoint = result.Content["key_point"]
	step.EstimatedSeconds = parseSeconds(result.Content["estimated_seconds"])
}

// fillConfirmStep is the deterministic verification companion of a detection
// control; it never needs the gateway.
func (s *Service) fillConfirmStep(step *quality.InstructionStep, item quality.ControlPlanItem, line quality.AnalysisLine, ch quality.Characteristic) {
	content := quality.SynthesizeInstructionContent(item, line, ch)
	step.Action = "Confirm and record: " + item.ControlMethod
	step.KeyPoint = content.KeyPoint
	step.EstimatedSeconds = content.EstimatedSeconds
}

func parseSeconds(raw string) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v <= 0 {
		return quality.DefaultEstimatedSeconds
	}
	return v
}
