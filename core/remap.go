package core

import (
	"fmt"

	"github.com/thermotrace/thermotrace/internal/contract"
	"github.com/thermotrace/thermotrace/schema"
)

// Remap projects the fully solidified records into the grain-growth
// solver's input schema: axis permutation, then unit conversion and origin
// shift per component. It performs no new computation and preserves record
// order; a coordinate or unit error here silently corrupts every downstream
// grain simulation, so the transform parameters are re-checked.
func Remap(cfg *contract.Config, records []schema.HistoryRecord) ([]schema.OutputRow, error) {
	if cfg.UnitScale <= 0 {
		return nil, fmt.Errorf("%w: unit scale %g is not positive", schema.ErrSchemaMismatch, cfg.UnitScale)
	}
	if err := checkPermutation(cfg.AxisOrder); err != nil {
		return nil, err
	}

	rows := make([]schema.OutputRow, 0, len(records))
	for _, rec := range records {
		if rec.State != schema.SolidifiedState {
			continue
		}
		c := transformCoord(rec.Coord, cfg.AxisOrder, cfg.UnitScale, cfg.Offset)
		rows = append(rows, schema.OutputRow{
			X:                  c[0],
			Y:                  c[1],
			Z:                  c[2],
			MeltingTime:        rec.MeltingTime,
			SolidificationTime: rec.SolidificationTime,
			CoolingRate:        rec.CoolingRate,
		})
	}
	return rows, nil
}

// transformCoord applies the axis permutation, then scale and offset.
func transformCoord(p schema.Vec3, order [3]int, scale float64, offset schema.Vec3) schema.Vec3 {
	var out schema.Vec3
	for i := range 3 {
		out[i] = p[order[i]]*scale + offset[i]
	}
	return out
}

// checkPermutation verifies the axis order covers each axis exactly once.
func checkPermutation(order [3]int) error {
	seen := [3]bool{}
	for _, a := range order {
		if a < 0 || a > 2 || seen[a] {
			return fmt.Errorf("%w: axis order %v is not a permutation of x,y,z", schema.ErrSchemaMismatch, order)
		}
		seen[a] = true
	}
	return nil
}
