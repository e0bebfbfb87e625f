package docchain

import (
	"context"
	"testing"

	"pinkong/internal/domain/quality"
	"pinkong/internal/errs"
)

func TestCheckConsistencyFullChainIsClean(t *testing.T) {
	svc, _ := setupService(t, &fakeContentModel{})
	ctx := context.Background()

	productID, rootID := seedThroughAnalysis(t, svc)
	if _, err := svc.RepairTraceability(ctx, RepairTraceabilityInput{ProductID: productID}); err != nil {
		t.Fatalf("RepairTraceability() error = %v", err)
	}

	out, err := svc.CheckConsistency(ctx, CheckConsistencyInput{RootID: rootID})
	if err != nil {
		t.Fatalf("CheckConsistency() error = %v", err)
	}
	if len(out.Findings) != 0 {
		t.Fatalf("findings = %#v, want none for a freshly repaired chain", out.Findings)
	}
	if out.Counts[quality.SeverityHigh] != 0 || out.Counts[quality.SeverityMedium] != 0 || out.Counts[quality.SeverityLow] != 0 {
		t.Fatalf("counts = %#v", out.Counts)
	}
}

func TestCheckConsistencyFlagsUncoveredLinesWithoutDownstream(t *testing.T) {
	svc, _ := setupService(t, &fakeContentModel{})
	ctx := context.Background()

	// Analysis only: the critical (H) and major (risk 112) lines demand
	// control plan coverage that does not exist yet.
	_, rootID := seedThroughAnalysis(t, svc)

	out, err := svc.CheckConsistency(ctx, CheckConsistencyInput{RootID: rootID})
	if err != nil {
		t.Fatalf("CheckConsistency() error = %v", err)
	}
	if out.Counts[quality.SeverityHigh] != 2 {
		t.Fatalf("high findings = %d, want 2: %#v", out.Counts[quality.SeverityHigh], out.Findings)
	}
	for _, finding := range out.Findings {
		if finding.Rule != quality.RuleUncoveredHighRisk {
			t.Fatalf("unexpected rule %s: %#v", finding.Rule, finding)
		}
		if finding.TargetKind != quality.TargetAnalysisLine {
			t.Fatalf("target kind = %s", finding.TargetKind)
		}
	}
}

func TestCheckConsistencyEvaluateOnlyWritesNothing(t *testing.T) {
	svc, repo := setupService(t, &fakeContentModel{})
	ctx := context.Background()
	_, rootID := seedThroughAnalysis(t, svc)

	if _, err := svc.CheckConsistency(ctx, CheckConsistencyInput{RootID: rootID}); err != nil {
		t.Fatalf("CheckConsistency() error = %v", err)
	}

	stored, err := repo.ListFindings(ctx, rootID)
	if err != nil {
		t.Fatalf("ListFindings() error = %v", err)
	}
	if len(stored) != 0 {
		t.Fatalf("stored findings = %d, want 0 without persist", len(stored))
	}

	root, err := repo.GetAnalysisRoot(ctx, rootID)
	if err != nil {
		t.Fatalf("GetAnalysisRoot() error = %v", err)
	}
	if root.LastCheckedAt != "" {
		t.Fatalf("LastCheckedAt = %q, want empty without persist", root.LastCheckedAt)
	}
}

func TestCheckConsistencyPersistReplacesFindingsAndStampsRoot(t *testing.T) {
	svc, repo := setupService(t, &fakeContentModel{})
	ctx := context.Background()
	productID, rootID := seedThroughAnalysis(t, svc)

	out, err := svc.CheckConsistency(ctx, CheckConsistencyInput{RootID: rootID, Persist: true})
	if err != nil {
		t.Fatalf("CheckConsistency(persist) error = %v", err)
	}
	if len(out.Findings) == 0 {
		t.Fatalf("expected findings on a chain without downstream documents")
	}

	stored, err := svc.StoredFindings(ctx, rootID)
	if err != nil {
		t.Fatalf("StoredFindings() error = %v", err)
	}
	if len(stored) != len(out.Findings) {
		t.Fatalf("stored = %d, evaluated = %d", len(stored), len(out.Findings))
	}

	root, err := repo.GetAnalysisRoot(ctx, rootID)
	if err != nil {
		t.Fatalf("GetAnalysisRoot() error = %v", err)
	}
	if root.LastCheckedAt != "2026-08-31T00:00:00Z" {
		t.Fatalf("LastCheckedAt = %q", root.LastCheckedAt)
	}

	// Completing the chain and persisting again clears the stored rows.
	if _, err := svc.RepairTraceability(ctx, RepairTraceabilityInput{ProductID: productID}); err != nil {
		t.Fatalf("RepairTraceability() error = %v", err)
	}
	if _, err := svc.CheckConsistency(ctx, CheckConsistencyInput{RootID: rootID, Persist: true}); err != nil {
		t.Fatalf("second CheckConsistency(persist) error = %v", err)
	}
	stored, err = svc.StoredFindings(ctx, rootID)
	if err != nil {
		t.Fatalf("StoredFindings() error = %v", err)
	}
	if len(stored) != 0 {
		t.Fatalf("stored after repair = %d, want 0", len(stored))
	}
}

func TestCheckConsistencyValidation(t *testing.T) {
	svc, _ := setupService(t, &fakeContentModel{})
	ctx := context.Background()

	if _, err := svc.CheckConsistency(ctx, CheckConsistencyInput{}); errs.KindOf(err) != errs.KindValidation {
		t.Fatalf("zero root kind = %v, want validation", errs.KindOf(err))
	}
	if _, err := svc.CheckConsistency(ctx, CheckConsistencyInput{RootID: 123}); errs.KindOf(err) != errs.KindNotFound {
		t.Fatalf("missing root kind = %v, want not found", errs.KindOf(err))
	}
}
