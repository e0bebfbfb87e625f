package docchain

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"pinkong/internal/bootstrap/logging"
	"pinkong/internal/domain/quality"
	"pinkong/internal/errs"
	"pinkong/internal/ports"
)

type GenerateControlPlanInput struct {
	RootID uint64
}

// Traceability is the explicit upstream link list reported by a stage.
type Traceability struct {
	RootID        uint64
	ControlPlanID uint64
	LinkedLineIDs []uint64
}

type GenerateControlPlanResult struct {
	Created       bool
	ControlPlanID uint64
	ItemsCount    int
	Traceability  Traceability
}

// GenerateControlPlan fans one analysis root out into a draft control plan:
// a prevention/detection item pair per eligible line. Idempotent per root.
func (s *Service) GenerateControlPlan(ctx context.Context, in GenerateControlPlanInput) (GenerateControlPlanResult, error) {
	if ctx == nil {
		return GenerateControlPlanResult{}, errors.New("context is required")
	}
	if err := s.checkCollaborators(); err != nil {
		return GenerateControlPlanResult{}, err
	}
	if in.RootID == 0 {
		return GenerateControlPlanResult{}, errRootIDRequired
	}

	logCtx := logging.WithAttrs(ctx, slog.String("stage", "control_plan"), slog.Uint64("root_id", in.RootID))

	root, err := s.repo.GetAnalysisRoot(ctx, in.RootID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return GenerateControlPlanResult{}, errRootNotFound
		}
		return GenerateControlPlanResult{}, errs.Wrap(err, "load analysis root")
	}

	if existing, err := s.repo.FindDraftControlPlan(ctx, root.ID); err == nil {
		return s.existingControlPlanResult(logCtx, root.ID, existing)
	} else if !errors.Is(err, ports.ErrNotFound) {
		return GenerateControlPlanResult{}, errs.Wrap(err, "find draft control plan")
	}

	lines, err := s.repo.ListAnalysisLines(ctx, root.ID)
	if err != nil {
		return GenerateControlPlanResult{}, errs.Wrap(err, "list analysis lines")
	}
	if len(lines) == 0 {
		return GenerateControlPlanResult{}, errNoEligibleLines
	}

	eligible, characteristics, err := s.eligibleLines(logCtx, lines)
	if err != nil {
		return GenerateControlPlanResult{}, err
	}
	if len(eligible) == 0 {
		return GenerateControlPlanResult{}, errNoEligibleLines
	}

	plan := quality.ControlPlan{
		RootID:   root.ID,
		Revision: root.Revision,
		Status:   quality.StatusDraft,
	}
	if err := s.repo.CreateControlPlan(ctx, &plan); err != nil {
		if errors.Is(err, ports.ErrDraftExists) {
			existing, findErr := s.repo.FindDraftControlPlan(ctx, root.ID)
			if findErr != nil {
				return GenerateControlPlanResult{}, errs.Wrap(findErr, "reload draft control plan after race")
			}
			return s.existingControlPlanResult(logCtx, root.ID, existing)
		}
		return GenerateControlPlanResult{}, errs.WithKind(errs.Wrap(err, "create control plan"), errs.KindPersistence)
	}

	// Numbering is fixed from upstream order before any content resolution:
	// step (2i+1) prevention, (2i+2) detection for the i-th eligible line.
	items := make([]quality.ControlPlanItem, 2*len(eligible))
	linkedLineIDs := make([]uint64, 0, len(eligible))
	for i, line := range eligible {
		linkedLineIDs = append(linkedLineIDs, line.ID)
		for j, controlType := range []quality.ControlType{quality.ControlPrevention, quality.ControlDetection} {
			items[2*i+j] = quality.ControlPlanItem{
				ControlPlanID:    plan.ID,
				StepNo:           2*i + j + 1,
				ControlType:      controlType,
				PFMEALineID:      line.ID,
				CharacteristicID: *line.CharacteristicID,
			}
		}
	}

	var wg sync.WaitGroup
	for idx := range items {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			item := &items[idx]
			line := eligible[idx/2]
			ch := characteristics[item.CharacteristicID]
			s.fillControlPlanItem(ctx, item, line, ch)
		}(idx)
	}
	wg.Wait()

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		return s.repo.CreateControlPlanItems(txCtx, items)
	}); err != nil {
		if delErr := s.repo.DeleteControlPlan(ctx, plan.ID); delErr != nil {
			logging.Error(logCtx, "rollback of control plan failed", slog.Any("err", errs.Loggable(delErr)))
		}
		return GenerateControlPlanResult{}, errs.WithKind(errs.Wrap(err, "insert control plan items"), errs.KindPersistence)
	}

	logging.Info(logCtx, "control plan generated",
		slog.Uint64("control_plan_id", plan.ID),
		slog.Int("items", len(items)),
		slog.Int("skipped_lines", len(lines)-len(eligible)))
	return GenerateControlPlanResult{
		Created:       true,
		ControlPlanID: plan.ID,
		ItemsCount:    len(items),
		Traceability: Traceability{
			RootID:        root.ID,
			ControlPlanID: plan.ID,
			LinkedLineIDs: linkedLineIDs,
		},
	}, nil
}

func (s *Service) existingControlPlanResult(ctx context.Context, rootID uint64, plan quality.ControlPlan) (GenerateControlPlanResult, error) {
	items, err := s.repo.ListControlPlanItems(ctx, plan.ID)
	if err != nil {
		return GenerateControlPlanResult{}, errs.Wrap(err, "list existing control plan items")
	}

	linked := make([]uint64, 0, len(items))
	seen := make(map[uint64]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.PFMEALineID]; ok {
			continue
		}
		seen[item.PFMEALineID] = struct{}{}
		linked = append(linked, item.PFMEALineID)
	}

	logging.Info(ctx, "draft control plan already exists", slog.Uint64("control_plan_id", plan.ID))
	return GenerateControlPlanResult{
		ControlPlanID: plan.ID,
		ItemsCount:    len(items),
		Traceability: Traceability{
			RootID:        rootID,
			ControlPlanID: plan.ID,
			LinkedLineIDs: linked,
		},
	}, nil
}

// eligibleLines filters out lines without a characteristic reference (skipped
// with a warning, never aborting the batch) and resolves the referenced
// characteristics in one IN-list query.
func (s *Service) eligibleLines(ctx context.Context, lines []quality.AnalysisLine) ([]quality.AnalysisLine, map[uint64]quality.Characteristic, error) {
	ids := make([]uint64, 0, len(lines))
	for _, line := range lines {
		if line.CharacteristicID != nil {
			ids = append(ids, *line.CharacteristicID)
		}
	}

	found, err := s.repo.ListCharacteristicsByIDs(ctx, ids)
	if err != nil {
		return nil, nil, errs.Wrap(err, "list characteristics")
	}
	characteristics := make(map[uint64]quality.Characteristic, len(found))
	for _, ch := range found {
		characteristics[ch.ID] = ch
	}

	eligible := make([]quality.AnalysisLine, 0, len(lines))
	for _, line := range lines {
		if line.CharacteristicID == nil {
			logging.Warn(ctx, "analysis line has no characteristic, skipping",
				slog.Uint64("line_id", line.ID))
			continue
		}
		if _, ok := characteristics[*line.CharacteristicID]; !ok {
			logging.Warn(ctx, "analysis line references a missing characteristic, skipping",
				slog.Uint64("line_id", line.ID), slog.Uint64("characteristic_id", *line.CharacteristicID))
			continue
		}
		eligible = append(eligible, line)
	}
	return eligible, characteristics, nil
}

func (s *Service) fillControlPlanItem(ctx context.Context, item *quality.ControlPlanItem, line quality.AnalysisLine, ch quality.Characteristic) {
	fallback := quality.SynthesizeControlPlanContent(line, ch, item.ControlType)
	result := s.resolveContent(ctx,
		s.prompts.ControlPlan,
		controlPlanUserPrompt(line, ch, item.ControlType),
		controlPlanKeys,
		map[string]string{
			"control_method":   fallback.ControlMethod,
			"sample_size":      fallback.SampleSize,
			"sample_frequency": fallback.SampleFrequency,
			"reaction_plan":    fallback.ReactionPlan,
		})

	item.ControlMethod = result.Content["control_method"]
	item.SampleSize = result.Content["sample_size"]
	item.SampleFrequency = result.Content["sample_frequency"]
	item.ReactionPlan = result.Content["reaction_plan"]
	item.Provenance = quality.ProvenanceFallback
	if result.OK {
		item.Provenance = quality.ProvenanceGenerated
	}
}
