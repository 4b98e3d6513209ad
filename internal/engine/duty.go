package engine

import (
	"math"
	"sort"

	"brewctl/internal/models"
)

// enabledHeaters derives each heater's Enabled flag from the run mode:
// a boil run uses heaters with UseForBoil, a mash run uses heaters
// with UseForMash (SPEC_FULL §4.3). Returns a copy sorted by
// preference, per the invariant that the duty planner walks heaters in
// preference order.
func enabledHeaters(heaters []models.Heater, boil bool) []models.Heater {
	out := make([]models.Heater, len(heaters))
	copy(out, heaters)
	for i := range out {
		if boil {
			out[i].Enabled = out[i].UseForBoil
		} else {
			out[i].Enabled = out[i].UseForMash
		}
	}
	sort.Sort(models.ByPreference(out))
	return out
}

func totalWattage(heaters []models.Heater) float64 {
	var total float64
	for _, h := range heaters {
		if h.Enabled {
			total += h.Watt
		}
	}
	return total
}

// relayGuardRound snaps a burn-time percentage away from the extremes
// so no heater spends a sliver of a window chattering its relay
// (SPEC_FULL §4.3). guard is in [0,50].
func relayGuardRound(b, guard float64) float64 {
	if guard <= 0 {
		return b
	}
	if b <= guard/2 {
		return 0
	}
	if b <= guard {
		return guard
	}
	if b >= 100-guard/2 {
		return 100
	}
	if b >= 100-guard {
		return 100 - guard
	}
	return b
}

// planDuty converts a 0..100 demand percent into per-heater burn-time
// percentages, walking heaters in preference order and budgeting
// wattage (SPEC_FULL §4.3). heaters must already have Enabled set
// (see enabledHeaters) and be sorted by preference.
func planDuty(heaters []models.Heater, demandPercent, totalWatt, guard float64) []models.Heater {
	out := make([]models.Heater, len(heaters))
	copy(out, heaters)

	outputWatt := (totalWatt / 100) * demandPercent
	done := false

	for i := range out {
		if !out[i].Enabled {
			out[i].BurnTime = 0
			continue
		}
		if done {
			out[i].BurnTime = 0
			continue
		}
		if out[i].Watt > outputWatt {
			b := math.Round(outputWatt / out[i].Watt * 100)
			out[i].BurnTime = relayGuardRound(b, guard)
			done = true
			continue
		}
		out[i].BurnTime = 100
		outputWatt -= out[i].Watt
	}

	return out
}

// burnAt reports whether a heater should be burning at second i of its
// PID window, given heaterCycles equal sub-windows of length
// pidLoopTime/heaterCycles seconds (SPEC_FULL §4.3's duty time-
// slicing). i counts seconds since window start.
func burnAt(burnTimePercent float64, pidLoopTime, heaterCycles, i int) bool {
	if heaterCycles <= 0 {
		heaterCycles = 1
	}
	cycleLen := pidLoopTime / heaterCycles
	if cycleLen <= 0 {
		cycleLen = 1
	}
	burnUntil := burnTimePercent / 100 * float64(cycleLen)
	posInCycle := float64(i % cycleLen)
	return burnUntil > posInCycle
}
