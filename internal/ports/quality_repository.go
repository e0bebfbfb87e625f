package ports

import (
	"context"
	"errors"

	"pinkong/internal/domain/quality"
)

var (
	// ErrNotFound is returned for point lookups that match nothing.
	ErrNotFound = errors.New("record not found")

	// ErrDraftExists is returned when inserting a draft header loses the
	// uniqueness race; callers must re-read the existing draft instead of
	// surfacing a failure.
	ErrDraftExists = errors.New("draft document already exists for upstream id")
)

// QualityRepository is the storage collaborator for the document chain. It
// only promises point lookup, foreign-key filtering (equality and IN-list),
// counts, atomic multi-row insert and delete by id. Create methods fill the
// entity id on success.
type QualityRepository interface {
	CreateProduct(ctx context.Context, product *quality.Product) error
	GetProduct(ctx context.Context, id uint64) (quality.Product, error)

	CreateCharacteristic(ctx context.Context, ch *quality.Characteristic) error
	GetCharacteristic(ctx context.Context, id uint64) (quality.Characteristic, error)
	ListCharacteristics(ctx context.Context, productID uint64) ([]quality.Characteristic, error)
	ListCharacteristicsByIDs(ctx context.Context, ids []uint64) ([]quality.Characteristic, error)

	CreateAnalysisRoot(ctx context.Context, root *quality.AnalysisRoot) error
	DeleteAnalysisRoot(ctx context.Context, id uint64) error
	GetAnalysisRoot(ctx context.Context, id uint64) (quality.AnalysisRoot, error)
	FindDraftAnalysisRoot(ctx context.Context, productID uint64) (quality.AnalysisRoot, error)
	StampRootChecked(ctx context.Context, rootID uint64, checkedAt string) error

	CreateAnalysisLines(ctx context.Context, lines []quality.AnalysisLine) error
	ListAnalysisLines(ctx context.Context, rootID uint64) ([]quality.AnalysisLine, error)
	ListAnalysisLinesByIDs(ctx context.Context, ids []uint64) ([]quality.AnalysisLine, error)
	CountAnalysisLines(ctx context.Context, rootID uint64) (int64, error)

	CreateControlPlan(ctx context.Context, plan *quality.ControlPlan) error
	DeleteControlPlan(ctx context.Context, id uint64) error
	GetControlPlan(ctx context.Context, id uint64) (quality.ControlPlan, error)
	FindDraftControlPlan(ctx context.Context, rootID uint64) (quality.ControlPlan, error)

	CreateControlPlanItems(ctx context.Context, items []quality.ControlPlanItem) error
	ListControlPlanItems(ctx context.Context, controlPlanID uint64) ([]quality.ControlPlanItem, error)
	CountControlPlanItems(ctx context.Context, controlPlanID uint64) (int64, error)

	CreateInstructionDoc(ctx context.Context, doc *quality.InstructionDoc) error
	DeleteInstructionDoc(ctx context.Context, id uint64) error
	FindDraftInstructionDoc(ctx context.Context, controlPlanID uint64) (quality.InstructionDoc, error)

	CreateInstructionSteps(ctx context.Context, steps []quality.InstructionStep) error
	ListInstructionSteps(ctx context.Context, instructionDocID uint64) ([]quality.InstructionStep, error)
	CountInstructionSteps(ctx context.Context, instructionDocID uint64) (int64, error)

	CreateInspectionPlan(ctx context.Context, plan *quality.InspectionPlan) error
	DeleteInspectionPlan(ctx context.Context, id uint64) error
	FindDraftInspectionPlan(ctx context.Context, controlPlanID uint64) (quality.InspectionPlan, error)

	CreateInspectionItems(ctx context.Context, items []quality.InspectionItem) error
	ListInspectionItems(ctx context.Context, inspectionPlanID uint64) ([]quality.InspectionItem, error)
	CountInspectionItems(ctx context.Context, inspectionPlanID uint64) (int64, error)

	ReplaceFindings(ctx context.Context, rootID uint64, checkedAt string, findings []quality.Finding) error
	ListFindings(ctx context.Context, rootID uint64) ([]quality.Finding, error)
}
