package docchain

import (
	"context"
	"errors"
	"log/slog"

	"pinkong/internal/bootstrap/logging"
	"pinkong/internal/domain/quality"
	"pinkong/internal/errs"
	"pinkong/internal/ports"
)

type CheckConsistencyInput struct {
	RootID uint64

	// Persist replaces the stored finding rows for the root. Without it the
	// evaluation is computed-only and nothing is written.
	Persist bool
}

type CheckConsistencyResult struct {
	Findings []quality.Finding
	Counts   map[quality.FindingSeverity]int
}

// CheckConsistency loads the materialized document graph for one analysis
// root and evaluates the six defect rules against the in-memory snapshot.
func (s *Service) CheckConsistency(ctx context.Context, in CheckConsistencyInput) (CheckConsistencyResult, error) {
	if ctx == nil {
		return CheckConsistencyResult{}, errors.New("context is required")
	}
	if err := s.checkCollaborators(); err != nil {
		return CheckConsistencyResult{}, err
	}
	if in.RootID == 0 {
		return CheckConsistencyResult{}, errRootIDRequired
	}

	snap, err := s.loadSnapshot(ctx, in.RootID)
	if err != nil {
		return CheckConsistencyResult{}, err
	}

	findings := quality.EvaluateRules(snap)
	counts := quality.CountBySeverity(findings)

	logCtx := logging.WithAttrs(ctx, slog.Uint64("root_id", in.RootID))
	logging.Info(logCtx, "consistency check evaluated",
		slog.Int("findings", len(findings)),
		slog.Int("high", counts[quality.SeverityHigh]),
		slog.Bool("persist", in.Persist))

	if in.Persist {
		checkedAt := s.now()
		if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
			if err := s.repo.ReplaceFindings(txCtx, in.RootID, checkedAt, findings); err != nil {
				return err
			}
			return s.repo.StampRootChecked(txCtx, in.RootID, checkedAt)
		}); err != nil {
			return CheckConsistencyResult{}, errs.WithKind(errs.Wrap(err, "persist findings"), errs.KindPersistence)
		}
	}

	return CheckConsistencyResult{Findings: findings, Counts: counts}, nil
}

// loadSnapshot materializes all four document levels for one root with a
// fixed number of queries; rule evaluation then runs without storage access.
func (s *Service) loadSnapshot(ctx context.Context, rootID uint64) (quality.GraphSnapshot, error) {
	root, err := s.repo.GetAnalysisRoot(ctx, rootID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return quality.GraphSnapshot{}, errRootNotFound
		}
		return quality.GraphSnapshot{}, errs.Wrap(err, "load analysis root")
	}

	snap := quality.GraphSnapshot{
		RootID:          root.ID,
		Characteristics: map[uint64]quality.Characteristic{},
	}

	snap.Lines, err = s.repo.ListAnalysisLines(ctx, root.ID)
	if err != nil {
		return quality.GraphSnapshot{}, errs.Wrap(err, "list analysis lines")
	}

	plan, err := s.repo.FindDraftControlPlan(ctx, root.ID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			// No control plan yet: R1 evaluates against an empty downstream.
			return s.withCharacteristics(ctx, snap)
		}
		return quality.GraphSnapshot{}, errs.Wrap(err, "find draft control plan")
	}

	snap.ControlPlanItems, err = s.repo.ListControlPlanItems(ctx, plan.ID)
	if err != nil {
		return quality.GraphSnapshot{}, errs.Wrap(err, "list control plan items")
	}

	if doc, err := s.repo.FindDraftInstructionDoc(ctx, plan.ID); err == nil {
		snap.InstructionSteps, err = s.repo.ListInstructionSteps(ctx, doc.ID)
		if err != nil {
			return quality.GraphSnapshot{}, errs.Wrap(err, "list instruction steps")
		}
	} else if !errors.Is(err, ports.ErrNotFound) {
		return quality.GraphSnapshot{}, errs.Wrap(err, "find draft instruction doc")
	}

	if inspection, err := s.repo.FindDraftInspectionPlan(ctx, plan.ID); err == nil {
		snap.InspectionItems, err = s.repo.ListInspectionItems(ctx, inspection.ID)
		if err != nil {
			return quality.GraphSnapshot{}, errs.Wrap(err, "list inspection items")
		}
	} else if !errors.Is(err, ports.ErrNotFound) {
		return quality.GraphSnapshot{}, errs.Wrap(err, "find draft inspection plan")
	}

	return s.withCharacteristics(ctx, snap)
}

func (s *Service) withCharacteristics(ctx context.Context, snap quality.GraphSnapshot) (quality.GraphSnapshot, error) {
	idSet := make(map[uint64]struct{})
	for _, line := range snap.Lines {
		if line.CharacteristicID != nil {
			idSet[*line.CharacteristicID] = struct{}{}
		}
	}
	for _, item := range snap.ControlPlanItems {
		idSet[item.CharacteristicID] = struct{}{}
	}
	for _, insp := range snap.InspectionItems {
		idSet[insp.CharacteristicID] = struct{}{}
	}
	if len(idSet) == 0 {
		return snap, nil
	}

	ids := make([]uint64, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	found, err := s.repo.ListCharacteristicsByIDs(ctx, ids)
	if err != nil {
		return quality.GraphSnapshot{}, errs.Wrap(err, "list characteristics")
	}
	for _, ch := range found {
		snap.Characteristics[ch.ID] = ch
	}
	return snap, nil
}

// StoredFindings returns the finding rows persisted by the last
// evaluate-and-persist run for the root.
func (s *Service) StoredFindings(ctx context.Context, rootID uint64) ([]quality.Finding, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := s.checkCollaborators(); err != nil {
		return nil, err
	}
	if rootID == 0 {
		return nil, errRootIDRequired
	}
	return s.repo.ListFindings(ctx, rootID)
}
