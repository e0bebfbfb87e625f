package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"pinkong/internal/domain/quality"
	"pinkong/internal/infrastructure/persistence/sqlite/model"
	"pinkong/internal/infrastructure/persistence/sqlite/uow"
	"pinkong/internal/ports"
)

func setupQualityRepository(t *testing.T) (*QualityRepository, *uow.UnitOfWork) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "quality.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(
		&model.Product{},
		&model.Characteristic{},
		&model.AnalysisRoot{},
		&model.AnalysisLine{},
		&model.ControlPlan{},
		&model.ControlPlanItem{},
		&model.InstructionDoc{},
		&model.InstructionStep{},
		&model.InspectionPlan{},
		&model.InspectionItem{},
		&model.ConsistencyFinding{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewQualityRepository(db), uow.NewUnitOfWork(db)
}

func createProduct(t *testing.T, repo *QualityRepository) quality.Product {
	t.Helper()
	product := quality.Product{Code: "P-1", Name: "Shaft", ProcessName: "Turning"}
	if err := repo.CreateProduct(context.Background(), &product); err != nil {
		t.Fatalf("CreateProduct() error = %v", err)
	}
	return product
}

func TestProductRoundTrip(t *testing.T) {
	repo, _ := setupQualityRepository(t)
	ctx := context.Background()

	product := createProduct(t, repo)
	if product.ID == 0 {
		t.Fatalf("CreateProduct() should assign an id")
	}

	got, err := repo.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("GetProduct() error = %v", err)
	}
	if got.Code != "P-1" || got.ProcessName != "Turning" {
		t.Fatalf("GetProduct() = %#v", got)
	}

	if _, err := repo.GetProduct(ctx, 9999); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("GetProduct(missing) error = %v, want ErrNotFound", err)
	}
}

func TestCharacteristicLimitsSurviveRoundTrip(t *testing.T) {
	repo, _ := setupQualityRepository(t)
	ctx := context.Background()
	product := createProduct(t, repo)

	lsl, usl := 11.95, 12.05
	ch := quality.Characteristic{
		ProductID:         product.ID,
		Name:              "Journal diameter",
		Kind:              quality.KindProduct,
		Category:          quality.CategoryCritical,
		LSL:               &lsl,
		USL:               &usl,
		Unit:              "mm",
		MeasurementMethod: "Micrometer",
	}
	if err := repo.CreateCharacteristic(ctx, &ch); err != nil {
		t.Fatalf("CreateCharacteristic() error = %v", err)
	}

	got, err := repo.GetCharacteristic(ctx, ch.ID)
	if err != nil {
		t.Fatalf("GetCharacteristic() error = %v", err)
	}
	if got.LSL == nil || *got.LSL != 11.95 || got.USL == nil || *got.USL != 12.05 {
		t.Fatalf("limits = %v %v", got.LSL, got.USL)
	}

	visual := quality.Characteristic{
		ProductID: product.ID,
		Name:      "Appearance",
		Kind:      quality.KindProduct,
		Category:  quality.CategoryMinor,
	}
	if err := repo.CreateCharacteristic(ctx, &visual); err != nil {
		t.Fatalf("CreateCharacteristic() error = %v", err)
	}
	gotVisual, err := repo.GetCharacteristic(ctx, visual.ID)
	if err != nil {
		t.Fatalf("GetCharacteristic() error = %v", err)
	}
	if gotVisual.LSL != nil || gotVisual.USL != nil {
		t.Fatalf("visual characteristic should have no limits: %v %v", gotVisual.LSL, gotVisual.USL)
	}

	byIDs, err := repo.ListCharacteristicsByIDs(ctx, []uint64{ch.ID, visual.ID, 777})
	if err != nil {
		t.Fatalf("ListCharacteristicsByIDs() error = %v", err)
	}
	if len(byIDs) != 2 {
		t.Fatalf("ListCharacteristicsByIDs() len = %d, want 2", len(byIDs))
	}
}

func TestCreateAnalysisRootEnforcesSingleDraft(t *testing.T) {
	repo, _ := setupQualityRepository(t)
	ctx := context.Background()
	product := createProduct(t, repo)

	first := quality.AnalysisRoot{ProductID: product.ID, ProcessName: "Turning", Revision: 1, Status: quality.StatusDraft}
	if err := repo.CreateAnalysisRoot(ctx, &first); err != nil {
		t.Fatalf("CreateAnalysisRoot() error = %v", err)
	}

	second := quality.AnalysisRoot{ProductID: product.ID, ProcessName: "Turning", Revision: 1, Status: quality.StatusDraft}
	if err := repo.CreateAnalysisRoot(ctx, &second); !errors.Is(err, ports.ErrDraftExists) {
		t.Fatalf("second draft error = %v, want ErrDraftExists", err)
	}

	found, err := repo.FindDraftAnalysisRoot(ctx, product.ID)
	if err != nil {
		t.Fatalf("FindDraftAnalysisRoot() error = %v", err)
	}
	if found.ID != first.ID {
		t.Fatalf("FindDraftAnalysisRoot() id = %d, want %d", found.ID, first.ID)
	}
}

func TestCreateAnalysisRootAllowsMultipleNonDrafts(t *testing.T) {
	repo, _ := setupQualityRepository(t)
	ctx := context.Background()
	product := createProduct(t, repo)

	for revision := 1; revision <= 3; revision++ {
		root := quality.AnalysisRoot{
			ProductID:   product.ID,
			ProcessName: "Turning",
			Revision:    revision,
			Status:      quality.StatusApproved,
		}
		if err := repo.CreateAnalysisRoot(ctx, &root); err != nil {
			t.Fatalf("CreateAnalysisRoot(rev %d) error = %v", revision, err)
		}
	}

	if _, err := repo.FindDraftAnalysisRoot(ctx, product.ID); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("FindDraftAnalysisRoot() error = %v, want ErrNotFound", err)
	}
}

func TestAnalysisLinesOrderedBySeq(t *testing.T) {
	repo, _ := setupQualityRepository(t)
	ctx := context.Background()
	product := createProduct(t, repo)

	root := quality.AnalysisRoot{ProductID: product.ID, ProcessName: "Turning", Revision: 1, Status: quality.StatusDraft}
	if err := repo.CreateAnalysisRoot(ctx, &root); err != nil {
		t.Fatalf("CreateAnalysisRoot() error = %v", err)
	}

	chID := uint64(1)
	lines := []quality.AnalysisLine{
		{RootID: root.ID, Seq: 2, ProcessStep: "Turning", FailureMode: "b", SeverityRating: 7, OccurrenceRating: 4, DetectionRating: 4, RiskNumber: 112, ActionPriority: quality.PriorityMedium, CharacteristicID: &chID},
		{RootID: root.ID, Seq: 1, ProcessStep: "Turning", FailureMode: "a", SeverityRating: 9, OccurrenceRating: 4, DetectionRating: 4, RiskNumber: 144, ActionPriority: quality.PriorityHigh, CharacteristicID: &chID},
	}
	if err := repo.CreateAnalysisLines(ctx, lines); err != nil {
		t.Fatalf("CreateAnalysisLines() error = %v", err)
	}

	got, err := repo.ListAnalysisLines(ctx, root.ID)
	if err != nil {
		t.Fatalf("ListAnalysisLines() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListAnalysisLines() len = %d", len(got))
	}
	if got[0].Seq != 1 || got[1].Seq != 2 {
		t.Fatalf("line order = %d, %d", got[0].Seq, got[1].Seq)
	}
	if got[0].RiskNumber != 144 || got[0].ActionPriority != quality.PriorityHigh {
		t.Fatalf("line 1 = %#v", got[0])
	}

	count, err := repo.CountAnalysisLines(ctx, root.ID)
	if err != nil {
		t.Fatalf("CountAnalysisLines() error = %v", err)
	}
	if count != 2 {
		t.Fatalf("CountAnalysisLines() = %d", count)
	}
}

func TestControlPlanDraftUniquenessPerRoot(t *testing.T) {
	repo, _ := setupQualityRepository(t)
	ctx := context.Background()
	product := createProduct(t, repo)

	root := quality.AnalysisRoot{ProductID: product.ID, ProcessName: "Turning", Revision: 1, Status: quality.StatusDraft}
	if err := repo.CreateAnalysisRoot(ctx, &root); err != nil {
		t.Fatalf("CreateAnalysisRoot() error = %v", err)
	}

	plan := quality.ControlPlan{RootID: root.ID, Revision: 1, Status: quality.StatusDraft}
	if err := repo.CreateControlPlan(ctx, &plan); err != nil {
		t.Fatalf("CreateControlPlan() error = %v", err)
	}
	duplicate := quality.ControlPlan{RootID: root.ID, Revision: 1, Status: quality.StatusDraft}
	if err := repo.CreateControlPlan(ctx, &duplicate); !errors.Is(err, ports.ErrDraftExists) {
		t.Fatalf("duplicate control plan error = %v, want ErrDraftExists", err)
	}

	items := []quality.ControlPlanItem{
		{ControlPlanID: plan.ID, StepNo: 2, ControlType: quality.ControlDetection, PFMEALineID: 1, CharacteristicID: 1, ControlMethod: "check", SampleSize: "n=5", SampleFrequency: "every lot", ReactionPlan: "stop", Provenance: quality.ProvenanceFallback},
		{ControlPlanID: plan.ID, StepNo: 1, ControlType: quality.ControlPrevention, PFMEALineID: 1, CharacteristicID: 1, ControlMethod: "fixture", SampleSize: "n=5", SampleFrequency: "every lot", ReactionPlan: "stop", Provenance: quality.ProvenanceGenerated},
	}
	if err := repo.CreateControlPlanItems(ctx, items); err != nil {
		t.Fatalf("CreateControlPlanItems() error = %v", err)
	}

	got, err := repo.ListControlPlanItems(ctx, plan.ID)
	if err != nil {
		t.Fatalf("ListControlPlanItems() error = %v", err)
	}
	if len(got) != 2 || got[0].StepNo != 1 || got[1].StepNo != 2 {
		t.Fatalf("ListControlPlanItems() = %#v", got)
	}
	if got[0].ControlType != quality.ControlPrevention || got[0].Provenance != quality.ProvenanceGenerated {
		t.Fatalf("item 1 = %#v", got[0])
	}
}

func TestInstructionAndInspectionDraftUniqueness(t *testing.T) {
	repo, _ := setupQualityRepository(t)
	ctx := context.Background()
	product := createProduct(t, repo)

	root := quality.AnalysisRoot{ProductID: product.ID, ProcessName: "Turning", Revision: 1, Status: quality.StatusDraft}
	if err := repo.CreateAnalysisRoot(ctx, &root); err != nil {
		t.Fatalf("CreateAnalysisRoot() error = %v", err)
	}
	plan := quality.ControlPlan{RootID: root.ID, Revision: 1, Status: quality.StatusDraft}
	if err := repo.CreateControlPlan(ctx, &plan); err != nil {
		t.Fatalf("CreateControlPlan() error = %v", err)
	}

	doc := quality.InstructionDoc{ControlPlanID: plan.ID, Revision: 1, Status: quality.StatusDraft}
	if err := repo.CreateInstructionDoc(ctx, &doc); err != nil {
		t.Fatalf("CreateInstructionDoc() error = %v", err)
	}
	dupDoc := quality.InstructionDoc{ControlPlanID: plan.ID, Revision: 1, Status: quality.StatusDraft}
	if err := repo.CreateInstructionDoc(ctx, &dupDoc); !errors.Is(err, ports.ErrDraftExists) {
		t.Fatalf("duplicate instruction doc error = %v, want ErrDraftExists", err)
	}

	inspection := quality.InspectionPlan{ControlPlanID: plan.ID, Revision: 1, Status: quality.StatusDraft}
	if err := repo.CreateInspectionPlan(ctx, &inspection); err != nil {
		t.Fatalf("CreateInspectionPlan() error = %v", err)
	}
	dupInspection := quality.InspectionPlan{ControlPlanID: plan.ID, Revision: 1, Status: quality.StatusDraft}
	if err := repo.CreateInspectionPlan(ctx, &dupInspection); !errors.Is(err, ports.ErrDraftExists) {
		t.Fatalf("duplicate inspection plan error = %v, want ErrDraftExists", err)
	}

	steps := []quality.InstructionStep{
		{InstructionDocID: doc.ID, StepNo: 1, LinkedCPItemID: 11, Action: "measure", KeyPoint: "Control point: x; If NG: stop", EstimatedSeconds: 45},
	}
	if err := repo.CreateInstructionSteps(ctx, steps); err != nil {
		t.Fatalf("CreateInstructionSteps() error = %v", err)
	}
	gotSteps, err := repo.ListInstructionSteps(ctx, doc.ID)
	if err != nil {
		t.Fatalf("ListInstructionSteps() error = %v", err)
	}
	if len(gotSteps) != 1 || gotSteps[0].EstimatedSeconds != 45 {
		t.Fatalf("ListInstructionSteps() = %#v", gotSteps)
	}

	rows := []quality.InspectionItem{
		{InspectionPlanID: inspection.ID, ItemNo: 1, LinkedCPItemID: 11, CharacteristicID: 1, InspectionMethod: "micrometer", SamplingPlan: "100% / every unit", AcceptanceCriteria: "11.95mm ~ 12.05mm", NGHandling: quality.NGHandlingText},
	}
	if err := repo.CreateInspectionItems(ctx, rows); err != nil {
		t.Fatalf("CreateInspectionItems() error = %v", err)
	}
	gotRows, err := repo.ListInspectionItems(ctx, inspection.ID)
	if err != nil {
		t.Fatalf("ListInspectionItems() error = %v", err)
	}
	if len(gotRows) != 1 || gotRows[0].AcceptanceCriteria != "11.95mm ~ 12.05mm" {
		t.Fatalf("ListInspectionItems() = %#v", gotRows)
	}
}

func TestReplaceFindingsAndStampRoot(t *testing.T) {
	repo, u := setupQualityRepository(t)
	ctx := context.Background()
	product := createProduct(t, repo)

	root := quality.AnalysisRoot{ProductID: product.ID, ProcessName: "Turning", Revision: 1, Status: quality.StatusDraft}
	if err := repo.CreateAnalysisRoot(ctx, &root); err != nil {
		t.Fatalf("CreateAnalysisRoot() error = %v", err)
	}

	first := []quality.Finding{
		{Rule: quality.RuleUncoveredHighRisk, Severity: quality.SeverityHigh, TargetKind: quality.TargetAnalysisLine, TargetID: 1, Message: "uncovered"},
		{Rule: quality.RuleSamplingMismatch, Severity: quality.SeverityMedium, TargetKind: quality.TargetInspectionItem, TargetID: 4, Message: "drift"},
	}
	if err := u.WithTx(ctx, func(txCtx context.Context) error {
		if err := repo.ReplaceFindings(txCtx, root.ID, "2026-08-31T00:00:00Z", first); err != nil {
			return err
		}
		return repo.StampRootChecked(txCtx, root.ID, "2026-08-31T00:00:00Z")
	}); err != nil {
		t.Fatalf("persist first findings: %v", err)
	}

	got, err := repo.ListFindings(ctx, root.ID)
	if err != nil {
		t.Fatalf("ListFindings() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListFindings() len = %d, want 2", len(got))
	}

	// A later run replaces, never appends.
	second := []quality.Finding{
		{Rule: quality.RuleCriteriaNotQuantified, Severity: quality.SeverityLow, TargetKind: quality.TargetInspectionItem, TargetID: 4, Message: "not quantified"},
	}
	if err := u.WithTx(ctx, func(txCtx context.Context) error {
		return repo.ReplaceFindings(txCtx, root.ID, "2026-08-31T01:00:00Z", second)
	}); err != nil {
		t.Fatalf("persist second findings: %v", err)
	}

	got, err = repo.ListFindings(ctx, root.ID)
	if err != nil {
		t.Fatalf("ListFindings() error = %v", err)
	}
	if len(got) != 1 || got[0].Rule != quality.RuleCriteriaNotQuantified {
		t.Fatalf("ListFindings() after replace = %#v", got)
	}

	stamped, err := repo.GetAnalysisRoot(ctx, root.ID)
	if err != nil {
		t.Fatalf("GetAnalysisRoot() error = %v", err)
	}
	if stamped.LastCheckedAt != "2026-08-31T00:00:00Z" {
		t.Fatalf("LastCheckedAt = %q", stamped.LastCheckedAt)
	}
}

func TestUnitOfWorkRollsBackOnError(t *testing.T) {
	repo, u := setupQualityRepository(t)
	ctx := context.Background()
	product := createProduct(t, repo)

	root := quality.AnalysisRoot{ProductID: product.ID, ProcessName: "Turning", Revision: 1, Status: quality.StatusDraft}
	if err := repo.CreateAnalysisRoot(ctx, &root); err != nil {
		t.Fatalf("CreateAnalysisRoot() error = %v", err)
	}

	boom := errors.New("boom")
	chID := uint64(1)
	err := u.WithTx(ctx, func(txCtx context.Context) error {
		lines := []quality.AnalysisLine{
			{RootID: root.ID, Seq: 1, ProcessStep: "Turning", FailureMode: "a", SeverityRating: 5, OccurrenceRating: 5, DetectionRating: 5, RiskNumber: 125, ActionPriority: quality.PriorityMedium, CharacteristicID: &chID},
		}
		if err := repo.CreateAnalysisLines(txCtx, lines); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() error = %v, want boom", err)
	}

	count, err := repo.CountAnalysisLines(ctx, root.ID)
	if err != nil {
		t.Fatalf("CountAnalysisLines() error = %v", err)
	}
	if count != 0 {
		t.Fatalf("lines after rollback = %d, want 0", count)
	}
}
