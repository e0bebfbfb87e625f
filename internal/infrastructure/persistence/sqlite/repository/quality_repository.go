package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pinkong/internal/domain/quality"
	"pinkong/internal/errs"
	"pinkong/internal/infrastructure/persistence/sqlite/model"
	"pinkong/internal/ports"
)

type QualityRepository struct {
	db  *gorm.DB
	now func() string
}

func NewQualityRepository(db *gorm.DB) *QualityRepository {
	return &QualityRepository{db: db, now: nowRFC3339}
}

func (r *QualityRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (r *QualityRepository) CreateProduct(ctx context.Context, product *quality.Product) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.Product{
		Code:        product.Code,
		Name:        product.Name,
		ProcessName: product.ProcessName,
		CreatedAt:   r.now(),
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert product")
	}
	product.ID = row.ProductID
	return nil
}

func (r *QualityRepository) GetProduct(ctx context.Context, id uint64) (quality.Product, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return quality.Product{}, err
	}

	var row model.Product
	if err := db.First(&row, "product_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return quality.Product{}, ports.ErrNotFound
		}
		return quality.Product{}, errs.Wrap(err, "query product")
	}
	return quality.Product{
		ID:          row.ProductID,
		Code:        row.Code,
		Name:        row.Name,
		ProcessName: row.ProcessName,
	}, nil
}

func (r *QualityRepository) CreateCharacteristic(ctx context.Context, ch *quality.Characteristic) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.Characteristic{
		ProductID:         ch.ProductID,
		Name:              ch.Name,
		Kind:              string(ch.Kind),
		Category:          string(ch.Category),
		Specification:     ch.Specification,
		LSL:               ch.LSL,
		USL:               ch.USL,
		Unit:              ch.Unit,
		MeasurementMethod: ch.MeasurementMethod,
		CreatedAt:         r.now(),
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Wrap(err, "insert characteristic")
	}
	ch.ID = row.CharacteristicID
	return nil
}

func (r *QualityRepository) GetCharacteristic(ctx context.Context, id uint64) (quality.Characteristic, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return quality.Characteristic{}, err
	}

	var row model.Characteristic
	if err := db.First(&row, "characteristic_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return quality.Characteristic{}, ports.ErrNotFound
		}
		return quality.Characteristic{}, errs.Wrap(err, "query characteristic")
	}
	return mapCharacteristic(row), nil
}

func (r *QualityRepository) ListCharacteristics(ctx context.Context, productID uint64) ([]quality.Characteristic, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Characteristic
	if err := db.
		Where("product_id = ?", productID).
		Order("characteristic_id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query characteristics")
	}
	return mapCharacteristics(rows), nil
}

func (r *QualityRepository) ListCharacteristicsByIDs(ctx context.Context, ids []uint64) ([]quality.Characteristic, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Characteristic
	if err := db.
		Where("characteristic_id IN ?", ids).
		Order("characteristic_id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query characteristics by ids")
	}
	return mapCharacteristics(rows), nil
}

func (r *QualityRepository) CreateAnalysisRoot(ctx context.Context, root *quality.AnalysisRoot) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.AnalysisRoot{
		ProductID:   root.ProductID,
		ProcessName: root.ProcessName,
		Revision:    root.Revision,
		Status:      string(root.Status),
		DraftKey:    draftKey(root.Status, root.ProductID),
		CreatedAt:   r.now(),
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "draft_key"}},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return errs.Wrap(result.Error, "insert analysis root")
	}
	if result.RowsAffected == 0 {
		return ports.ErrDraftExists
	}
	root.ID = row.RootID
	return nil
}

func (r *QualityRepository) DeleteAnalysisRoot(ctx context.Context, id uint64) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}
	if err := db.Delete(&model.AnalysisRoot{}, "root_id = ?", id).Error; err != nil {
		return errs.Wrap(err, "delete analysis root")
	}
	return nil
}

func (r *QualityRepository) GetAnalysisRoot(ctx context.Context, id uint64) (quality.AnalysisRoot, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return quality.AnalysisRoot{}, err
	}

	var row model.AnalysisRoot
	if err := db.First(&row, "root_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return quality.AnalysisRoot{}, ports.ErrNotFound
		}
		return quality.AnalysisRoot{}, errs.Wrap(err, "query analysis root")
	}
	return mapAnalysisRoot(row), nil
}

func (r *QualityRepository) FindDraftAnalysisRoot(ctx context.Context, productID uint64) (quality.AnalysisRoot, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return quality.AnalysisRoot{}, err
	}

	var row model.AnalysisRoot
	if err := db.First(&row, "product_id = ? AND status = ?", productID, string(quality.StatusDraft)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return quality.AnalysisRoot{}, ports.ErrNotFound
		}
		return quality.AnalysisRoot{}, errs.Wrap(err, "query draft analysis root")
	}
	return mapAnalysisRoot(row), nil
}

func (r *QualityRepository) StampRootChecked(ctx context.Context, rootID uint64, checkedAt string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}
	if err := db.Model(&model.AnalysisRoot{}).
		Where("root_id = ?", rootID).
		Update("last_checked_at", checkedAt).Error; err != nil {
		return errs.Wrap(err, "stamp root checked")
	}
	return nil
}

func (r *QualityRepository) CreateAnalysisLines(ctx context.Context, lines []quality.AnalysisLine) error {
	if len(lines) == 0 {
		return nil
	}
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	rows := make([]model.AnalysisLine, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, model.AnalysisLine{
			RootID:            line.RootID,
			Seq:               line.Seq,
			ProcessStep:       line.ProcessStep,
			FailureMode:       line.FailureMode,
			Effect:            line.Effect,
			Cause:             line.Cause,
			PreventionControl: line.PreventionControl,
			DetectionControl:  line.DetectionControl,
			RecommendedAction: line.RecommendedAction,
			SeverityRating:    line.SeverityRating,
			OccurrenceRating:  line.OccurrenceRating,
			DetectionRating:   line.DetectionRating,
			RiskNumber:        line.RiskNumber,
			ActionPriority:    string(line.ActionPriority),
			CharacteristicID:  line.CharacteristicID,
		})
	}
	if err := db.Create(&rows).Error; err != nil {
		return errs.Wrap(err, "insert analysis lines")
	}
	return nil
}

func (r *QualityRepository) ListAnalysisLines(ctx context.Context, rootID uint64) ([]quality.AnalysisLine, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.AnalysisLine
	if err := db.
		Where("root_id = ?", rootID).
		Order("seq asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query analysis lines")
	}
	return mapAnalysisLines(rows), nil
}

func (r *QualityRepository) ListAnalysisLinesByIDs(ctx context.Context, ids []uint64) ([]quality.AnalysisLine, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.AnalysisLine
	if err := db.
		Where("line_id IN ?", ids).
		Order("seq asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query analysis lines by ids")
	}
	return mapAnalysisLines(rows), nil
}

func (r *QualityRepository) CountAnalysisLines(ctx context.Context, rootID uint64) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.AnalysisLine{}).
		Where("root_id = ?", rootID).
		Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count analysis lines")
	}
	return count, nil
}

func (r *QualityRepository) CreateControlPlan(ctx context.Context, plan *quality.ControlPlan) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.ControlPlan{
		RootID:    plan.RootID,
		Revision:  plan.Revision,
		Status:    string(plan.Status),
		DraftKey:  draftKey(plan.Status, plan.RootID),
		CreatedAt: r.now(),
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "draft_key"}},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return errs.Wrap(result.Error, "insert control plan")
	}
	if result.RowsAffected == 0 {
		return ports.ErrDraftExists
	}
	plan.ID = row.ControlPlanID
	return nil
}

func (r *QualityRepository) DeleteControlPlan(ctx context.Context, id uint64) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}
	if err := db.Delete(&model.ControlPlan{}, "control_plan_id = ?", id).Error; err != nil {
		return errs.Wrap(err, "delete control plan")
	}
	return nil
}

func (r *QualityRepository) GetControlPlan(ctx context.Context, id uint64) (quality.ControlPlan, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return quality.ControlPlan{}, err
	}

	var row model.ControlPlan
	if err := db.First(&row, "control_plan_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return quality.ControlPlan{}, ports.ErrNotFound
		}
		return quality.ControlPlan{}, errs.Wrap(err, "query control plan")
	}
	return mapControlPlan(row), nil
}

func (r *QualityRepository) FindDraftControlPlan(ctx context.Context, rootID uint64) (quality.ControlPlan, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return quality.ControlPlan{}, err
	}

	var row model.ControlPlan
	if err := db.First(&row, "root_id = ? AND status = ?", rootID, string(quality.StatusDraft)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return quality.ControlPlan{}, ports.ErrNotFound
		}
		return quality.ControlPlan{}, errs.Wrap(err, "query draft control plan")
	}
	return mapControlPlan(row), nil
}

func (r *QualityRepository) CreateControlPlanItems(ctx context.Context, items []quality.ControlPlanItem) error {
	if len(items) == 0 {
		return nil
	}
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	rows := make([]model.ControlPlanItem, 0, len(items))
	for _, item := range items {
		rows = append(rows, model.ControlPlanItem{
			ControlPlanID:    item.ControlPlanID,
			StepNo:           item.StepNo,
			ControlType:      string(item.ControlType),
			PFMEALineID:      item.PFMEALineID,
			CharacteristicID: item.CharacteristicID,
			ControlMethod:    item.ControlMethod,
			SampleSize:       item.SampleSize,
			SampleFrequency:  item.SampleFrequency,
			ReactionPlan:     item.ReactionPlan,
			Provenance:       item.Provenance,
		})
	}
	if err := db.Create(&rows).Error; err != nil {
		return errs.Wrap(err, "insert control plan items")
	}
	return nil
}

func (r *QualityRepository) ListControlPlanItems(ctx context.Context, controlPlanID uint64) ([]quality.ControlPlanItem, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.ControlPlanItem
	if err := db.
		Where("control_plan_id = ?", controlPlanID).
		Order("step_no asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query control plan items")
	}

	items := make([]quality.ControlPlanItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapControlPlanItem(row))
	}
	return items, nil
}

func (r *QualityRepository) CountControlPlanItems(ctx context.Context, controlPlanID uint64) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.ControlPlanItem{}).
		Where("control_plan_id = ?", controlPlanID).
		Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count control plan items")
	}
	return count, nil
}

func (r *QualityRepository) CreateInstructionDoc(ctx context.Context, doc *quality.InstructionDoc) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.InstructionDoc{
		ControlPlanID: doc.ControlPlanID,
		Revision:      doc.Revision,
		Status:        string(doc.Status),
		DraftKey:      draftKey(doc.Status, doc.ControlPlanID),
		CreatedAt:     r.now(),
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "draft_key"}},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return errs.Wrap(result.Error, "insert instruction doc")
	}
	if result.RowsAffected == 0 {
		return ports.ErrDraftExists
	}
	doc.ID = row.InstructionDocID
	return nil
}

func (r *QualityRepository) DeleteInstructionDoc(ctx context.Context, id uint64) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}
	if err := db.Delete(&model.InstructionDoc{}, "instruction_doc_id = ?", id).Error; err != nil {
		return errs.Wrap(err, "delete instruction doc")
	}
	return nil
}

func (r *QualityRepository) FindDraftInstructionDoc(ctx context.Context, controlPlanID uint64) (quality.InstructionDoc, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return quality.InstructionDoc{}, err
	}

	var row model.InstructionDoc
	if err := db.First(&row, "control_plan_id = ? AND status = ?", controlPlanID, string(quality.StatusDraft)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return quality.InstructionDoc{}, ports.ErrNotFound
		}
		return quality.InstructionDoc{}, errs.Wrap(err, "query draft instruction doc")
	}
	return quality.InstructionDoc{
		ID:            row.InstructionDocID,
		ControlPlanID: row.ControlPlanID,
		Revision:      row.Revision,
		Status:        quality.Status(row.Status),
	}, nil
}

func (r *QualityRepository) CreateInstructionSteps(ctx context.Context, steps []quality.InstructionStep) error {
	if len(steps) == 0 {
		return nil
	}
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	rows := make([]model.InstructionStep, 0, len(steps))
	for _, step := range steps {
		rows = append(rows, model.InstructionStep{
			InstructionDocID: step.InstructionDocID,
			StepNo:           step.StepNo,
			LinkedCPItemID:   step.LinkedCPItemID,
			Action:           step.Action,
			KeyPoint:         step.KeyPoint,
			EstimatedSeconds: step.EstimatedSeconds,
		})
	}
	if err := db.Create(&rows).Error; err != nil {
		return errs.Wrap(err, "insert instruction steps")
	}
	return nil
}

func (r *QualityRepository) ListInstructionSteps(ctx context.Context, instructionDocID uint64) ([]quality.InstructionStep, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.InstructionStep
	if err := db.
		Where("instruction_doc_id = ?", instructionDocID).
		Order("step_no asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query instruction steps")
	}

	steps := make([]quality.InstructionStep, 0, len(rows))
	for _, row := range rows {
		steps = append(steps, quality.InstructionStep{
			ID:               row.StepID,
			InstructionDocID: row.InstructionDocID,
			StepNo:           row.StepNo,
			LinkedCPItemID:   row.LinkedCPItemID,
			Action:           row.Action,
			KeyPoint:         row.KeyPoint,
			EstimatedSeconds: row.EstimatedSeconds,
		})
	}
	return steps, nil
}

func (r *QualityRepository) CountInstructionSteps(ctx context.Context, instructionDocID uint64) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.InstructionStep{}).
		Where("instruction_doc_id = ?", instructionDocID).
		Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count instruction steps")
	}
	return count, nil
}

func (r *QualityRepository) CreateInspectionPlan(ctx context.Context, plan *quality.InspectionPlan) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.InspectionPlan{
		ControlPlanID: plan.ControlPlanID,
		Revision:      plan.Revision,
		Status:        string(plan.Status),
		DraftKey:      draftKey(plan.Status, plan.ControlPlanID),
		CreatedAt:     r.now(),
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "draft_key"}},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return errs.Wrap(result.Error, "insert inspection plan")
	}
	if result.RowsAffected == 0 {
		return ports.ErrDraftExists
	}
	plan.ID = row.InspectionPlanID
	return nil
}

func (r *QualityRepository) DeleteInspectionPlan(ctx context.Context, id uint64) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}
	if err := db.Delete(&model.InspectionPlan{}, "inspection_plan_id = ?", id).Error; err != nil {
		return errs.Wrap(err, "delete inspection plan")
	}
	return nil
}

func (r *QualityRepository) FindDraftInspectionPlan(ctx context.Context, controlPlanID uint64) (quality.InspectionPlan, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return quality.InspectionPlan{}, err
	}

	var row model.InspectionPlan
	if err := db.First(&row, "control_plan_id = ? AND status = ?", controlPlanID, string(quality.StatusDraft)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return quality.InspectionPlan{}, ports.ErrNotFound
		}
		return quality.InspectionPlan{}, errs.Wrap(err, "query draft inspection plan")
	}
	return quality.InspectionPlan{
		ID:            row.InspectionPlanID,
		ControlPlanID: row.ControlPlanID,
		Revision:      row.Revision,
		Status:        quality.Status(row.Status),
	}, nil
}

func (r *QualityRepository) CreateInspectionItems(ctx context.Context, items []quality.InspectionItem) error {
	if len(items) == 0 {
		return nil
	}
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	rows := make([]model.InspectionItem, 0, len(items))
	for _, item := range items {
		rows = append(rows, model.InspectionItem{
			InspectionPlanID:   item.InspectionPlanID,
			ItemNo:             item.ItemNo,
			LinkedCPItemID:     item.LinkedCPItemID,
			CharacteristicID:   item.CharacteristicID,
			InspectionMethod:   item.InspectionMethod,
			SamplingPlan:       item.SamplingPlan,
			AcceptanceCriteria: item.AcceptanceCriteria,
			NGHandling:         item.NGHandling,
		})
	}
	if err := db.Create(&rows).Error; err != nil {
		return errs.Wrap(err, "insert inspection items")
	}
	return nil
}

func (r *QualityRepository) ListInspectionItems(ctx context.Context, inspectionPlanID uint64) ([]quality.InspectionItem, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.InspectionItem
	if err := db.
		Where("inspection_plan_id = ?", inspectionPlanID).
		Order("item_no asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query inspection items")
	}

	items := make([]quality.InspectionItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, quality.InspectionItem{
			ID:                 row.InspectionItemID,
			InspectionPlanID:   row.InspectionPlanID,
			ItemNo:             row.ItemNo,
			LinkedCPItemID:     row.LinkedCPItemID,
			CharacteristicID:   row.CharacteristicID,
			InspectionMethod:   row.InspectionMethod,
			SamplingPlan:       row.SamplingPlan,
			AcceptanceCriteria: row.AcceptanceCriteria,
			NGHandling:         row.NGHandling,
		})
	}
	return items, nil
}

func (r *QualityRepository) CountInspectionItems(ctx context.Context, inspectionPlanID uint64) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.InspectionItem{}).
		Where("inspection_plan_id = ?", inspectionPlanID).
		Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count inspection items")
	}
	return count, nil
}

func (r *QualityRepository) ReplaceFindings(ctx context.Context, rootID uint64, checkedAt string, findings []quality.Finding) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	if err := db.Delete(&model.ConsistencyFinding{}, "root_id = ?", rootID).Error; err != nil {
		return errs.Wrap(err, "delete stored findings")
	}
	if len(findings) == 0 {
		return nil
	}

	rows := make([]model.ConsistencyFinding, 0, len(findings))
	for _, f := range findings {
		rows = append(rows, model.ConsistencyFinding{
			RootID:     rootID,
			Rule:       f.Rule,
			Severity:   string(f.Severity),
			TargetKind: f.TargetKind,
			TargetID:   f.TargetID,
			Message:    f.Message,
			CheckedAt:  checkedAt,
		})
	}
	if err := db.Create(&rows).Error; err != nil {
		return errs.Wrap(err, "insert findings")
	}
	return nil
}

func (r *QualityRepository) ListFindings(ctx context.Context, rootID uint64) ([]quality.Finding, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.ConsistencyFinding
	if err := db.
		Where("root_id = ?", rootID).
		Order("rule asc, target_id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query findings")
	}

	findings := make([]quality.Finding, 0, len(rows))
	for _, row := range rows {
		findings = append(findings, quality.Finding{
			Rule:       row.Rule,
			Severity:   quality.FindingSeverity(row.Severity),
			TargetKind: row.TargetKind,
			TargetID:   row.TargetID,
			Message:    row.Message,
		})
	}
	return findings, nil
}
