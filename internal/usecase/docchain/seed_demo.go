package docchain

import (
	"context"
	"errors"

	"pinkong/internal/domain/quality"
	"pinkong/internal/errs"
)

type SeedDemoResult struct {
	ProductID         uint64
	CharacteristicIDs []uint64
}

// SeedDemo creates a worked example: one machined part with three
// characteristics spanning the importance categories, ready for repair and
// check runs.
func (s *Service) SeedDemo(ctx context.Context) (SeedDemoResult, error) {
	if ctx == nil {
		return SeedDemoResult{}, errors.New("context is required")
	}
	if err := s.checkCollaborators(); err != nil {
		return SeedDemoResult{}, err
	}

	product := quality.Product{
		Code:        "PK-1001",
		Name:        "Output shaft",
		ProcessName: "Finish turning",
	}

	lslDiameter, uslDiameter := 11.95, 12.05
	uslRunout := 0.03

	characteristics := []quality.Characteristic{
		{
			Name:              "Journal diameter",
			Kind:              quality.KindProduct,
			Category:          quality.CategoryCritical,
			Specification:     "Ø12 ±0.05",
			LSL:               &lslDiameter,
			USL:               &uslDiameter,
			Unit:              "mm",
			MeasurementMethod: "Micrometer",
		},
		{
			Name:              "Radial runout",
			Kind:              quality.KindProduct,
			Category:          quality.CategoryMajor,
			Specification:     "max 0.03",
			USL:               &uslRunout,
			Unit:              "mm",
			MeasurementMethod: "Dial indicator",
		},
		{
			Name:              "Surface appearance",
			Kind:              quality.KindProduct,
			Category:          quality.CategoryMinor,
			Specification:     "No visible tool marks",
			MeasurementMethod: "Visual check",
		},
	}

	result := SeedDemoResult{}
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.CreateProduct(txCtx, &product); err != nil {
			return err
		}
		for i := range characteristics {
			characteristics[i].ProductID = product.ID
			if err := s.repo.CreateCharacteristic(txCtx, &characteristics[i]); err != nil {
				return err
			}
			result.CharacteristicIDs = append(result.CharacteristicIDs, characteristics[i].ID)
		}
		result.ProductID = product.ID
		return nil
	}); err != nil {
		return SeedDemoResult{}, errs.Wrap(err, "seed demo data")
	}

	return result, nil
}
