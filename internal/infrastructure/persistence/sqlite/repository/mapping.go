package repository

import (
	"strconv"
	"time"

	"pinkong/internal/domain/quality"
	"pinkong/internal/infrastructure/persistence/sqlite/model"
)

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// draftKey is the uniqueness handle for "one draft per upstream id". Non-draft
// documents carry NULL, which the unique index ignores.
func draftKey(status quality.Status, upstreamID uint64) *string {
	if status != quality.StatusDraft {
		return nil
	}
	key := strconv.FormatUint(upstreamID, 10)
	return &key
}

func mapCharacteristic(row model.Characteristic) quality.Characteristic {
	return quality.Characteristic{
		ID:                row.CharacteristicID,
		ProductID:         row.ProductID,
		Name:              row.Name,
		Kind:              quality.CharacteristicKind(row.Kind),
		Category:          quality.Category(row.Category),
		Specification:     row.Specification,
		LSL:               row.LSL,
		USL:               row.USL,
		Unit:              row.Unit,
		MeasurementMethod: row.MeasurementMethod,
	}
}

func mapCharacteristics(rows []model.Characteristic) []quality.Characteristic {
	items := make([]quality.Characteristic, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapCharacteristic(row))
	}
	return items
}

func mapAnalysisRoot(row model.AnalysisRoot) quality.AnalysisRoot {
	return quality.AnalysisRoot{
		ID:            row.RootID,
		ProductID:     row.ProductID,
		ProcessName:   row.ProcessName,
		Revision:      row.Revision,
		Status:        quality.Status(row.Status),
		LastCheckedAt: row.LastCheckedAt,
	}
}

func mapAnalysisLines(rows []model.AnalysisLine) []quality.AnalysisLine {
	lines := make([]quality.AnalysisLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, quality.AnalysisLine{
			ID:                row.LineID,
			RootID:            row.RootID,
			Seq:               row.Seq,
			ProcessStep:       row.ProcessStep,
			FailureMode:       row.FailureMode,
			Effect:            row.Effect,
			Cause:             row.Cause,
			PreventionControl: row.PreventionControl,
			DetectionControl:  row.DetectionControl,
			RecommendedAction: row.RecommendedAction,
			SeverityRating:    row.SeverityRating,
			OccurrenceRating:  row.OccurrenceRating,
			DetectionRating:   row.DetectionRating,
			RiskNumber:        row.RiskNumber,
			ActionPriority:    quality.Priority(row.ActionPriority),
			CharacteristicID:  row.CharacteristicID,
		})
	}
	return lines
}

func mapControlPlan(row model.ControlPlan) quality.ControlPlan {
	return quality.ControlPlan{
		ID:       row.ControlPlanID,
		RootID:   row.RootID,
		Revision: row.Revision,
		Status:   quality.Status(row.Status),
	}
}

func mapControlPlanItem(row model.ControlPlanItem) quality.ControlPlanItem {
	return quality.ControlPlanItem{
		ID:               row.ItemID,
		ControlPlanID:    row.ControlPlanID,
		StepNo:           row.StepNo,
		ControlType:      quality.ControlType(row.ControlType),
		PFMEALineID:      row.PFMEALineID,
		CharacteristicID: row.CharacteristicID,
		ControlMethod:    row.ControlMethod,
		SampleSize:       row.SampleSize,
		SampleFrequency:  row.SampleFrequency,
		ReactionPlan:     row.ReactionPlan,
		Provenance:       row.Provenance,
	}
}
