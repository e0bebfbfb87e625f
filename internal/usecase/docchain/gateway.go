package docchain

import (
	"context"
	"log/slog"
	"time"

	"pinkong/internal/bootstrap/logging"
	"pinkong/internal/errs"
)

// GenerateResult is the gateway outcome: content is always schema-valid,
// whether verified-generated or synthesized. Failure of the external service
// is a value, never an error.
type GenerateResult struct {
	OK      bool
	Content map[string]string
}

// resolveContent submits a prompt with bounded retries and linear backoff.
// On exhaustion (or when the service is unconfigured) it returns the caller's
// fallback. It never fails.
func (s *Service) resolveContent(ctx context.Context, systemPrompt, userPrompt string, requiredKeys []string, fallback map[string]string) GenerateResult {
	if s.model == nil || !s.model.Configured() {
		return GenerateResult{OK: false, Content: fallback}
	}

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		if attempt > 1 {
			s.sleep(s.backoffBase * time.Duration(attempt-1))
		}
		if ctx.Err() != nil {
			break
		}

		callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
		content, err := s.model.GenerateJSON(callCtx, systemPrompt, userPrompt)
		cancel()
		if err != nil {
			logging.Warn(ctx, "content generation attempt failed",
				slog.Int("attempt", attempt), slog.Any("err", errs.Loggable(err)))
			continue
		}
		if missing := missingKeys(content, requiredKeys); len(missing) > 0 {
			logging.Warn(ctx, "generated content missing required keys",
				slog.Int("attempt", attempt), slog.Any("missing", missing))
			continue
		}
		return GenerateResult{OK: true, Content: content}
	}

	logging.Warn(ctx, "content generation exhausted retries, using fallback")
	return GenerateResult{OK: false, Content: fallback}
}

func missingKeys(content map[string]string, required []string) []string {
	var missing []string
	for _, key := range required {
		if _, ok := content[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}
