package docchain

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"pinkong/internal/bootstrap/config"
	"pinkong/internal/bootstrap/logging"
	"pinkong/internal/errs"
	"pinkong/internal/ports"
)

var (
	errProductIDRequired = errs.WithKind(errors.New("product id is required"), errs.KindValidation)
	errRootIDRequired    = errs.WithKind(errors.New("analysis root id is required"), errs.KindValidation)
	errPlanIDRequired    = errs.WithKind(errors.New("control plan id is required"), errs.KindValidation)

	errProductNotFound = errs.WithKind(errors.New("product not found"), errs.KindNotFound)
	errRootNotFound    = errs.WithKind(errors.New("analysis root not found"), errs.KindNotFound)
	errPlanNotFound    = errs.WithKind(errors.New("control plan not found"), errs.KindNotFound)

	errNoCharacteristics = errs.WithKind(errors.New("product has no characteristics to analyze"), errs.KindUpstreamEmpty)
	errNoEligibleLines   = errs.WithKind(errors.New("analysis root has no eligible lines"), errs.KindUpstreamEmpty)
	errNoEligibleItems   = errs.WithKind(errors.New("control plan has no eligible items"), errs.KindUpstreamEmpty)
)

// Service runs the document generation pipeline and the consistency check.
type Service struct {
	repo  ports.QualityRepository
	uow   ports.UnitOfWork
	model ports.ContentModel

	prompts     promptProfile
	maxRetries  int
	callTimeout time.Duration
	backoffBase time.Duration
	sleep       func(time.Duration)
	now         func() string
}

// NewService wires the docchain usecases with storage and the content model.
func NewService(repo ports.QualityRepository, uow ports.UnitOfWork, model ports.ContentModel, cfg config.Config) *Service {
	s := &Service{
		repo:        repo,
		uow:         uow,
		model:       model,
		prompts:     builtinPrompts(),
		maxRetries:  cfg.Generative.MaxRetries,
		callTimeout: time.Duration(cfg.Generative.TimeoutSeconds) * time.Second,
		backoffBase: 500 * time.Millisecond,
		sleep:       time.Sleep,
		now:         func() string { return time.Now().UTC().Format(time.RFC3339Nano) },
	}
	if s.maxRetries <= 0 {
		s.maxRetries = 3
	}
	if s.callTimeout <= 0 {
		s.callTimeout = 30 * time.Second
	}

	if path := cfg.Prompts.ProfileFile; path != "" {
		profile, err := loadPromptProfile(path)
		if err != nil {
			logging.Warn(context.Background(), "prompt profile not loaded, using builtins",
				slog.String("path", path), slog.Any("err", errs.Loggable(err)))
		} else {
			s.prompts = profile
		}
	}
	return s
}

func (s *Service) checkCollaborators() error {
	if s.repo == nil {
		return errors.New("quality repository is required")
	}
	if s.uow == nil {
		return errors.New("unit of work is required")
	}
	return nil
}
