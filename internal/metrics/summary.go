package metrics

import (
	"sort"

	"github.com/dusk-indust/planweave/internal/plan"
)

// Summary aggregates a finished batch: source DAGs plus all variants.
// Reporting-only; threshold tuning between runs happens elsewhere.
type Summary struct {
	PlanCount           int            `json:"plan_count"`
	VariantCount        int            `json:"variant_count"`
	FailedPlans         []string       `json:"failed_plans,omitempty"`
	SkippedPlans        []string       `json:"skipped_plans,omitempty"`
	StructuralDiversity float64        `json:"structural_diversity"`
	MeanOrphanRate      float64        `json:"mean_orphan_rate"`
	VariantsPerStrategy map[int]int    `json:"variants_per_strategy,omitempty"`
	WarningsPerPlan     map[string]int `json:"warnings_per_plan,omitempty"`
}

// Summarize reduces source records and variant records into a Summary.
// Failure attribution is by plan id; one plan's failure never hides another's
// statistics.
func Summarize(records []plan.Record, variants []plan.VariantRecord, failed, skipped []string) (Summary, error) {
	s := Summary{
		PlanCount:           len(records),
		VariantCount:        len(variants),
		FailedPlans:         sortedCopy(failed),
		SkippedPlans:        sortedCopy(skipped),
		VariantsPerStrategy: make(map[int]int),
		WarningsPerPlan:     make(map[string]int),
	}

	var orphanSum float64
	for _, rec := range records {
		d, err := plan.FromRecord(rec)
		if err != nil {
			return Summary{}, err
		}
		orphanSum += OrphanRate(d)
		if len(rec.Warnings) > 0 {
			s.WarningsPerPlan[rec.PlanID] = len(rec.Warnings)
		}
	}
	if len(records) > 0 {
		s.MeanOrphanRate = orphanSum / float64(len(records))
	}

	sigs := make([][]string, 0, len(variants))
	for _, v := range variants {
		sigs = append(sigs, v.CanonicalSignature)
		s.VariantsPerStrategy[v.StrategyID]++
	}
	s.StructuralDiversity = StructuralDiversity(sigs)

	if len(s.VariantsPerStrategy) == 0 {
		s.VariantsPerStrategy = nil
	}
	if len(s.WarningsPerPlan) == 0 {
		s.WarningsPerPlan = nil
	}
	return s, nil
}

func sortedCopy(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
