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

type GenerateInspectionPlanInput struct {
	ControlPlanID uint64
}

type InspectionTraceability struct {
	ControlPlanID    uint64
	InspectionPlanID uint64
	LinkedCPItemIDs  []uint64
}

type GenerateInspectionPlanResult struct {
	Created          bool
	InspectionPlanID uint64
	ItemsCount       int
	Traceability     InspectionTraceability
}

// GenerateInspectionPlan derives the inspection standard from a control plan,
// exactly one inspection item per control plan item. Idempotent per plan.
func (s *Service) GenerateInspectionPlan(ctx context.Context, in GenerateInspectionPlanInput) (GenerateInspectionPlanResult, error) {
	if ctx == nil {
		return GenerateInspectionPlanResult{}, errors.New("context is required")
	}
	if err := s.checkCollaborators(); err != nil {
		return GenerateInspectionPlanResult{}, err
	}
	if in.ControlPlanID == 0 {
		return GenerateInspectionPlanResult{}, errPlanIDRequired
	}

	logCtx := logging.WithAttrs(ctx, slog.String("stage", "inspection_plan"), slog.Uint64("control_plan_id", in.ControlPlanID))

	plan, err := s.repo.GetControlPlan(ctx, in.ControlPlanID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return GenerateInspectionPlanResult{}, errPlanNotFound
		}
		return GenerateInspectionPlanResult{}, errs.Wrap(err, "load control plan")
	}

	if existing, err := s.repo.FindDraftInspectionPlan(ctx, plan.ID); err == nil {
		return s.existingInspectionResult(logCtx, plan.ID, existing)
	} else if !errors.Is(err, ports.ErrNotFound) {
		return GenerateInspectionPlanResult{}, errs.Wrap(err, "find draft inspection plan")
	}

	items, err := s.repo.ListControlPlanItems(ctx, plan.ID)
	if err != nil {
		return GenerateInspectionPlanResult{}, errs.Wrap(err, "list control plan items")
	}
	if len(items) == 0 {
		return GenerateInspectionPlanResult{}, errNoEligibleItems
	}

	eligible, _, characteristics, err := s.eligibleItems(logCtx, items)
	if err != nil {
		return GenerateInspectionPlanResult{}, err
	}
	if len(eligible) == 0 {
		return GenerateInspectionPlanResult{}, errNoEligibleItems
	}

	inspection := quality.InspectionPlan{
		ControlPlanID: plan.ID,
		Revision:      plan.Revision,
		Status:        quality.StatusDraft,
	}
	if err := s.repo.CreateInspectionPlan(ctx, &inspection); err != nil {
		if errors.Is(err, ports.ErrDraftExists) {
			existing, findErr := s.repo.FindDraftInspectionPlan(ctx, plan.ID)
			if findErr != nil {
				return GenerateInspectionPlanResult{}, errs.Wrap(findErr, "reload draft inspection plan after race")
			}
			return s.existingInspectionResult(logCtx, plan.ID, existing)
		}
		return GenerateInspectionPlanResult{}, errs.WithKind(errs.Wrap(err, "create inspection plan"), errs.KindPersistence)
	}

	// Item numbers follow upstream order, 1-based, assigned before resolution.
	rows := make([]quality.InspectionItem, len(eligible))
	linkedItemIDs := make([]uint64, 0, len(eligible))
	for i, item := range eligible {
		linkedItemIDs = append(linkedItemIDs, item.ID)
		rows[i] = quality.InspectionItem{
			InspectionPlanID: inspection.ID,
			ItemNo:           i + 1,
			LinkedCPItemID:   item.ID,
			CharacteristicID: item.CharacteristicID,
		}
	}

	var wg sync.WaitGroup
	for idx := range rows {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			item := eligible[idx]
			ch := characteristics[item.CharacteristicID]
			s.fillInspectionItem(ctx, &rows[idx], item, ch)
		}(idx)
	}
	wg.Wait()

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		return s.repo.CreateInspectionItems(txCtx, rows)
	}); err != nil {
		if delErr := s.repo.DeleteInspectionPlan(ctx, inspection.ID); delErr != nil {
			logging.Error(logCtx, "rollback of inspection plan failed", slog.Any("err", errs.Loggable(delErr)))
		}
		return GenerateInspectionPlanResult{}, errs.WithKind(errs.Wrap(err, "insert inspection items"), errs.KindPersistence)
	}

	logging.Info(logCtx, "inspection plan generated",
		slog.Uint64("inspection_plan_id", inspection.ID), slog.Int("items", len(rows)))
	return GenerateInspectionPlanResult{
		Created:          true,
		InspectionPlanID: inspection.ID,
		ItemsCount:       len(rows),
		Traceability: InspectionTraceability{
			ControlPlanID:    plan.ID,
			InspectionPlanID: inspection.ID,
			LinkedCPItemIDs:  linkedItemIDs,
		},
	}, nil
}

func (s *Service) existingInspectionResult(ctx context.Context, planID uint64, inspection quality.InspectionPlan) (GenerateInspectionPlanResult, error) {
	rows, err := s.repo.ListInspectionItems(ctx, inspection.ID)
	if err != nil {
		return GenerateInspectionPlanResult{}, errs.Wrap(err, "list existing inspection items")
	}

	linked := make([]uint64, 0, len(rows))
	for _, row := range rows {
		linked = append(linked, row.LinkedCPItemID)
	}

	logging.Info(ctx, "draft inspection plan already exists", slog.Uint64("inspection_plan_id", inspection.ID))
	return GenerateInspectionPlanResult{
		InspectionPlanID: inspection.ID,
		ItemsCount:       len(rows),
		Traceability: InspectionTraceability{
			ControlPlanID:    planID,
			InspectionPlanID: inspection.ID,
			LinkedCPItemIDs:  linked,
		},
	}, nil
}

func (s *Service) fillInspectionItem(ctx context.Context, row *quality.InspectionItem, item quality.ControlPlanItem, ch quality.Characteristic) {
	fallback := quality.SynthesizeInspectionContent(item, ch)
	result := s.resolveContent(ctx,
		s.prompts.Inspection,
		inspectionUserPrompt(item, ch),
		inspectionKeys,
		map[string]string{
			"inspection_method":   fallback.InspectionMethod,
			"sampling_plan":       fallback.SamplingPlan,
			"acceptance_criteria": fallback.AcceptanceCriteria,
			"ng_handling":         fallback.NGHandling,
		})

	row.InspectionMethod = result.Content["inspection_method"]
	row.SamplingPlan = result.Content["sampling_plan"]
	row.AcceptanceCriteria = result.Content["acceptance_criteria"]
	row.NGHandling = result.Content["ng_handling"]
}
