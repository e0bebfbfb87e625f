package docchain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"pinkong/internal/bootstrap/logging"
	"pinkong/internal/domain/quality"
	"pinkong/internal/errs"
	"pinkong/internal/ports"
)

type GenerateAnalysisInput struct {
	ProductID uint64
}

type GenerateAnalysisResult struct {
	Created    bool
	RootID     uint64
	LinesCount int
}

// Default risk ratings for freshly drafted lines. Severity tracks the
// characteristic category so critical characteristics start at priority H.
func defaultRatings(category quality.Category) (severity, occurrence, detection int) {
	switch category {
	case quality.CategoryCritical:
		return 9, 4, 4
	case quality.CategoryMajor:
		return 7, 4, 4
	default:
		return 4, 4, 4
	}
}

// GenerateAnalysis drafts the failure-mode analysis root for a product, one
// line per characteristic. Idempotent: an existing draft is returned as-is.
func (s *Service) GenerateAnalysis(ctx context.Context, in GenerateAnalysisInput) (GenerateAnalysisResult, error) {
	if ctx == nil {
		return GenerateAnalysisResult{}, errors.New("context is required")
	}
	if err := s.checkCollaborators(); err != nil {
		return GenerateAnalysisResult{}, err
	}
	if in.ProductID == 0 {
		return GenerateAnalysisResult{}, errProductIDRequired
	}

	logCtx := logging.WithAttrs(ctx, slog.String("stage", "analysis"), slog.Uint64("product_id", in.ProductID))

	product, err := s.repo.GetProduct(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return GenerateAnalysisResult{}, errProductNotFound
		}
		return GenerateAnalysisResult{}, errs.Wrap(err, "load product")
	}

	if existing, err := s.repo.FindDraftAnalysisRoot(ctx, product.ID); err == nil {
		return s.existingAnalysisResult(logCtx, existing)
	} else if !errors.Is(err, ports.ErrNotFound) {
		return GenerateAnalysisResult{}, errs.Wrap(err, "find draft analysis root")
	}

	characteristics, err := s.repo.ListCharacteristics(ctx, product.ID)
	if err != nil {
		return GenerateAnalysisResult{}, errs.Wrap(err, "list characteristics")
	}
	if len(characteristics) == 0 {
		return GenerateAnalysisResult{}, errNoCharacteristics
	}

	root := quality.AnalysisRoot{
		ProductID:   product.ID,
		ProcessName: product.ProcessName,
		Revision:    1,
		Status:      quality.StatusDraft,
	}
	if err := s.repo.CreateAnalysisRoot(ctx, &root); err != nil {
		if errors.Is(err, ports.ErrDraftExists) {
			// Lost the uniqueness race; the winning draft is re-read instead
			// of retrying the insert.
			existing, findErr := s.repo.FindDraftAnalysisRoot(ctx, product.ID)
			if findErr != nil {
				return GenerateAnalysisResult{}, errs.Wrap(findErr, "reload draft analysis root after race")
			}
			return s.existingAnalysisResult(logCtx, existing)
		}
		return GenerateAnalysisResult{}, errs.WithKind(errs.Wrap(err, "create analysis root"), errs.KindPersistence)
	}

	lines := make([]quality.AnalysisLine, 0, len(characteristics))
	for i, ch := range characteristics {
		severity, occurrence, detection := defaultRatings(ch.Category)
		chID := ch.ID
		line := quality.AnalysisLine{
			RootID:            root.ID,
			Seq:               i + 1,
			ProcessStep:       product.ProcessName,
			FailureMode:       fmt.Sprintf("%s out of specification", ch.Name),
			Effect:            "Nonconforming part reaches the next operation",
			Cause:             "Process variation",
			RecommendedAction: "",
			SeverityRating:    severity,
			OccurrenceRating:  occurrence,
			DetectionRating:   detection,
			CharacteristicID:  &chID,
		}
		quality.DeriveRisk(&line)
		lines = append(lines, line)
	}

	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		return s.repo.CreateAnalysisLines(txCtx, lines)
	}); err != nil {
		if delErr := s.repo.DeleteAnalysisRoot(ctx, root.ID); delErr != nil {
			logging.Error(logCtx, "rollback of analysis root failed", slog.Any("err", errs.Loggable(delErr)))
		}
		return GenerateAnalysisResult{}, errs.WithKind(errs.Wrap(err, "insert analysis lines"), errs.KindPersistence)
	}

	logging.Info(logCtx, "analysis root generated",
		slog.Uint64("root_id", root.ID), slog.Int("lines", len(lines)))
	return GenerateAnalysisResult{Created: true, RootID: root.ID, LinesCount: len(lines)}, nil
}

func (s *Service) existingAnalysisResult(ctx context.Context, root quality.AnalysisRoot) (GenerateAnalysisResult, error) {
	count, err := s.repo.CountAnalysisLines(ctx, root.ID)
	if err != nil {
		return GenerateAnalysisResult{}, errs.Wrap(err, "count existing analysis lines")
	}
	logging.Info(ctx, "draft analysis root already exists", slog.Uint64("root_id", root.ID))
	return GenerateAnalysisResult{RootID: root.ID, LinesCount: int(count)}, nil
}
