package core

import (
	"math"
	"sync"

	"github.com/thermotrace/thermotrace/internal/contract"
	"github.com/thermotrace/thermotrace/schema"
)

// flatTempEps is the temperature delta below which a bracketing pair is
// treated as flat and the crossing time falls back to the later sample.
const flatTempEps = 1e-6

// AnalyzeHistories derives melting time, solidification time and cooling
// rate for every grid point from its temperature series. The computation is
// independent per point and runs across cfg.Workers goroutines; each record
// index is written by exactly one worker.
//
// eligible may be nil (all points eligible); masked points are recorded
// with MaskedState and never analyzed.
func AnalyzeHistories(cfg *contract.Config, grid *schema.Grid, series []schema.Series, eligible []bool) []schema.HistoryRecord {
	records := make([]schema.HistoryRecord, grid.NumPoints())

	idxCh := make(chan int, cfg.Workers*4)
	var wg sync.WaitGroup
	for range cfg.Workers {
		wg.Go(func() {
			for gi := range idxCh {
				rec := schema.HistoryRecord{Coord: grid.Points[gi], Index: gi}
				if eligible != nil && !eligible[gi] {
					rec.State = schema.MaskedState
				} else {
					rec.State, rec.MeltingTime, rec.SolidificationTime, rec.CoolingRate =
						analyzeSeries(&series[gi], cfg.Liquidus, cfg.Solidus, cfg.Magnitude)
				}
				records[gi] = rec
			}
		})
	}
	for gi := range records {
		idxCh <- gi
	}
	close(idxCh)
	wg.Wait()

	return records
}

// analyzeSeries extracts solidification kinetics from one temperature
// series.
//
// The melt event is the LAST below-to-liquidus crossing: when the material
// re-melts, only the final melt matters because only the final
// solidification shapes the grain structure. The solidification event is
// the first drop to the solidus after that melt, with the crossing time
// linearly interpolated between the bracketing samples. The cooling rate is
// the finite difference across that bracket, negative by convention.
func analyzeSeries(s *schema.Series, liquidus, solidus float64, magnitude bool) (schema.PointState, float64, float64, float64) {
	samples := s.Samples
	if len(samples) == 0 {
		return schema.NeverMeltedState, 0, 0, 0
	}

	melt := -1
	if samples[0].Value >= liquidus {
		melt = 0 // molten from the first observation
	}
	for i := 1; i < len(samples); i++ {
		if samples[i-1].Value < liquidus && samples[i].Value >= liquidus {
			melt = i
		}
	}
	if melt < 0 {
		return schema.NeverMeltedState, 0, 0, 0
	}
	meltTime := samples[melt].Time

	for i := melt + 1; i < len(samples); i++ {
		if samples[i].Value > solidus {
			continue
		}
		t1, temp1 := samples[i-1].Time, samples[i-1].Value
		t2, temp2 := samples[i].Time, samples[i].Value

		solidTime := t2
		if dT := temp2 - temp1; math.Abs(dT) > flatTempEps {
			frac := (solidus - temp1) / dT
			frac = min(max(frac, 0), 1)
			solidTime = t1 + frac*(t2-t1)
		}

		rate := (temp2 - temp1) / (t2 - t1)
		if magnitude {
			rate = math.Abs(rate)
		}
		return schema.SolidifiedState, meltTime, solidTime, rate
	}

	// Melted but never cooled back through the solidus: still liquid or
	// the sequence ends too early.
	return schema.IncompleteState, 0, 0, 0
}

// Summarize aggregates per-point outcomes and cooling-rate statistics.
func Summarize(records []schema.HistoryRecord, snapshotCount int) schema.RunSummary {
	sum := schema.RunSummary{
		SnapshotCount:  snapshotCount,
		GridPoints:     len(records),
		MinCoolingRate: math.Inf(1),
		MaxCoolingRate: math.Inf(-1),
	}
	var total float64
	for _, rec := range records {
		switch rec.State {
		case schema.MaskedState:
			sum.MaskedPoints++
		case schema.NeverMeltedState:
			sum.NeverMelted++
		case schema.IncompleteState:
			sum.Melted++
			sum.Incomplete++
		case schema.SolidifiedState:
			sum.Melted++
			sum.Solidified++
			sum.MinCoolingRate = min(sum.MinCoolingRate, rec.CoolingRate)
			sum.MaxCoolingRate = max(sum.MaxCoolingRate, rec.CoolingRate)
			total += rec.CoolingRate
		}
	}
	if sum.Solidified > 0 {
		sum.AvgCoolingRate = total / float64(sum.Solidified)
	} else {
		sum.MinCoolingRate = 0
		sum.MaxCoolingRate = 0
	}
	return sum
}
