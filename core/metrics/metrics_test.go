package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/grantops/grantscope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

// newTestInput builds an Input around a typical NSF research opportunity.
func newTestInput(mutate func(*schema.OpportunityRecord)) Input {
	rec := &schema.OpportunityRecord{
		ID:             "GRANT-1001",
		Title:          "Advanced Materials Research Program",
		AgencyCode:     "NSF",
		Category:       "Science and Technology",
		AwardFloor:     100000,
		AwardCeiling:   500000,
		TotalFunding:   10000000,
		ExpectedAwards: 20,
		CloseDate:      testNow.AddDate(0, 0, 60),
		Eligibility:    "Universities and nonprofit research institutions",
		Description:    "Research and development of novel materials for energy applications",
	}
	if mutate != nil {
		mutate(rec)
	}
	return Input{
		Record: rec,
		Bench:  schema.DefaultBenchmarks(),
		Now:    testNow,
	}
}

// TestAllCalculatorsBounded ensures every calculator stays in [0,100] for a
// complete record.
func TestAllCalculatorsBounded(t *testing.T) {
	in := newTestInput(nil)

	for _, calc := range All() {
		t.Run(string(calc.Name()), func(t *testing.T) {
			cs := calc.Compute(in)
			assert.Equal(t, calc.Name(), cs.Metric)
			assert.GreaterOrEqual(t, cs.Value, 0.0)
			assert.LessOrEqual(t, cs.Value, 100.0)
			assert.NotEmpty(t, cs.Terms)
			assert.False(t, cs.Degraded)
		})
	}
}

// TestCompetitionMonotonicity checks the raw index direction in both
// applicant count and award count.
func TestCompetitionMonotonicity(t *testing.T) {
	calc := &CompetitionCalculator{}

	t.Run("non-decreasing in applicant count", func(t *testing.T) {
		// Health draws more applicants than Transportation, all else equal.
		crowded := calc.Compute(newTestInput(func(r *schema.OpportunityRecord) {
			r.Category = "Health"
		}))
		quiet := calc.Compute(newTestInput(func(r *schema.OpportunityRecord) {
			r.Category = "Transportation"
		}))

		assert.Greater(t, crowded.Term("estimated_applications"), quiet.Term("estimated_applications"))
		assert.GreaterOrEqual(t, crowded.Term("raw_index"), quiet.Term("raw_index"))
	})

	t.Run("non-increasing in expected awards", func(t *testing.T) {
		few := calc.Compute(newTestInput(func(r *schema.OpportunityRecord) {
			r.ExpectedAwards = 5
		}))
		many := calc.Compute(newTestInput(func(r *schema.OpportunityRecord) {
			r.ExpectedAwards = 50
		}))

		assert.GreaterOrEqual(t, few.Term("raw_index"), many.Term("raw_index"))
	})
}

// TestCompetitionUnbounded checks the defined behavior for zero expected awards.
func TestCompetitionUnbounded(t *testing.T) {
	calc := &CompetitionCalculator{}
	b := schema.DefaultBenchmarks()

	cs := calc.Compute(newTestInput(func(r *schema.OpportunityRecord) {
		r.ExpectedAwards = 0
	}))

	assert.Equal(t, 0.0, cs.Value)
	assert.True(t, cs.Degraded)
	assert.Contains(t, cs.Missing, "expected_awards")
	assert.Equal(t, b.Competition.UnboundedIndex, cs.Term("raw_index"))
	assert.False(t, math.IsNaN(cs.Value))
}

// TestSuccessNeutralWithoutProfile ensures no profile means no penalty.
func TestSuccessNeutralWithoutProfile(t *testing.T) {
	cs := (&SuccessCalculator{}).Compute(newTestInput(nil))

	assert.Equal(t, 1.0, cs.Term("eligibility_factor"))
	assert.Equal(t, 1.0, cs.Term("technical_fit"))
	assert.GreaterOrEqual(t, cs.Value, 0.0)
	assert.LessOrEqual(t, cs.Value, 100.0)
}

// TestSuccessEligibilityPenalty checks the applicant-type mismatch penalty.
func TestSuccessEligibilityPenalty(t *testing.T) {
	in := newTestInput(nil)
	in.Profile = &schema.Profile{ApplicantType: "small business"}

	cs := (&SuccessCalculator{}).Compute(in)
	b := schema.DefaultBenchmarks()
	assert.Equal(t, b.Success.MismatchPenalty, cs.Term("eligibility_factor"))

	// A matching applicant type keeps the factor neutral.
	in.Profile = &schema.Profile{ApplicantType: "university"}
	cs = (&SuccessCalculator{}).Compute(in)
	assert.Equal(t, 1.0, cs.Term("eligibility_factor"))
}

// TestROISignFlip verifies the raw ROI sign around the cost boundary.
func TestROISignFlip(t *testing.T) {
	calc := &ROICalculator{}

	t.Run("cost exceeds award", func(t *testing.T) {
		// NIH at 1.5 complexity on a tiny award: 40h * 1.5 * $75 = $4500 cost
		// against a $2000 award.
		cs := calc.Compute(newTestInput(func(r *schema.OpportunityRecord) {
			r.AgencyCode = "NIH"
			r.AwardFloor = 1000
			r.AwardCeiling = 3000
		}))
		assert.Negative(t, cs.Term("basic_roi"))
		assert.Negative(t, cs.Term("risk_adjusted_roi"))
		assert.Equal(t, 0.0, cs.Value)
	})

	t.Run("award exceeds cost", func(t *testing.T) {
		cs := calc.Compute(newTestInput(nil))
		assert.Positive(t, cs.Term("basic_roi"))
		assert.Positive(t, cs.Term("risk_adjusted_roi"))
		assert.Positive(t, cs.Value)
	})
}

// TestROIUsesAwardMidpoint checks award derivation from floor and ceiling.
func TestROIUsesAwardMidpoint(t *testing.T) {
	cs := (&ROICalculator{}).Compute(newTestInput(nil))
	assert.Equal(t, 300000.0, cs.Term("award_amount"))

	cs = (&ROICalculator{}).Compute(newTestInput(func(r *schema.OpportunityRecord) {
		r.AwardFloor = 0
	}))
	assert.Equal(t, 500000.0, cs.Term("award_amount"))

	cs = (&ROICalculator{}).Compute(newTestInput(func(r *schema.OpportunityRecord) {
		r.AwardFloor = 0
		r.AwardCeiling = 0
	}))
	assert.True(t, cs.Degraded)
	assert.Contains(t, cs.Missing, "award_ceiling")
}

// TestTimingScenario covers the NSF 60-day / $500k tier scenario.
func TestTimingScenario(t *testing.T) {
	cs := (&TimingCalculator{}).Compute(newTestInput(nil))

	// $500k falls in the 60-day prep tier, NSF adjustment 1.1 -> 66 needed days.
	assert.InDelta(t, 66.0, cs.Term("prep_days"), 0.01)
	assert.InDelta(t, 60.0, cs.Term("days_to_close"), 0.01)
	assert.Greater(t, cs.Value, 0.0)
	assert.LessOrEqual(t, cs.Value, 100.0)
	assert.False(t, cs.Degraded)

	for _, label := range []string{"readiness_ratio", "base_score", "density_factor", "resubmission_factor"} {
		found := false
		for _, term := range cs.Terms {
			if term.Label == label {
				found = true
			}
		}
		assert.True(t, found, "missing term %s", label)
	}
}

// TestTimingEdgeCases covers unknown and passed deadlines.
func TestTimingEdgeCases(t *testing.T) {
	calc := &TimingCalculator{}

	t.Run("unknown close date is neutral", func(t *testing.T) {
		cs := calc.Compute(newTestInput(func(r *schema.OpportunityRecord) {
			r.CloseDate = time.Time{}
		}))
		assert.Equal(t, 50.0, cs.Value)
		assert.True(t, cs.Degraded)
		assert.Contains(t, cs.Missing, "close_date")
	})

	t.Run("passed deadline scores zero", func(t *testing.T) {
		cs := calc.Compute(newTestInput(func(r *schema.OpportunityRecord) {
			r.CloseDate = testNow.AddDate(0, 0, -1)
		}))
		assert.Equal(t, 0.0, cs.Value)
	})
}

// TestTimingDeadlineDensity verifies competing deadlines reduce the score.
func TestTimingDeadlineDensity(t *testing.T) {
	calc := &TimingCalculator{}

	alone := calc.Compute(newTestInput(nil))

	crowded := newTestInput(nil)
	crowded.ConcurrentCloses = []time.Time{
		crowded.Record.CloseDate, // self, skipped once
		testNow.AddDate(0, 0, 55),
		testNow.AddDate(0, 0, 65),
		testNow.AddDate(0, 0, 70),
	}
	busy := calc.Compute(crowded)

	assert.Less(t, busy.Value, alone.Value)
	assert.Equal(t, 3.0, busy.Term("concurrent_deadlines"))
}

// TestHiddenBounds checks the hidden score composition stays bounded.
func TestHiddenBounds(t *testing.T) {
	cs := (&HiddenCalculator{}).Compute(newTestInput(nil))

	assert.GreaterOrEqual(t, cs.Value, 0.0)
	assert.LessOrEqual(t, cs.Value, 100.0)
	for _, label := range []string{"visibility_index", "undersubscription", "cross_category"} {
		assert.NotZero(t, cs.Term(label), "expected term %s", label)
	}
}

// TestHiddenNovelPairs verifies interdisciplinary pair detection raises the score.
func TestHiddenNovelPairs(t *testing.T) {
	calc := &HiddenCalculator{}

	plain := calc.Compute(newTestInput(nil))
	paired := calc.Compute(newTestInput(func(r *schema.OpportunityRecord) {
		r.Description = "Integrating art with technology and health with economics outcomes"
	}))

	assert.Greater(t, paired.Term("cross_category"), plain.Term("cross_category"))
}

// TestFingerprintFieldScoping checks that a metric fingerprint only reacts to
// the fields that metric reads.
func TestFingerprintFieldScoping(t *testing.T) {
	base := newTestInput(nil)

	t.Run("competition ignores description", func(t *testing.T) {
		changed := newTestInput(func(r *schema.OpportunityRecord) {
			r.Description = "totally different text"
		})
		calc := &CompetitionCalculator{}
		assert.Equal(t, calc.Fingerprint(base), calc.Fingerprint(changed))
	})

	t.Run("success reacts to description", func(t *testing.T) {
		changed := newTestInput(func(r *schema.OpportunityRecord) {
			r.Description = "totally different text"
		})
		calc := &SuccessCalculator{}
		assert.NotEqual(t, calc.Fingerprint(base), calc.Fingerprint(changed))
	})

	t.Run("competition reacts to expected awards", func(t *testing.T) {
		changed := newTestInput(func(r *schema.OpportunityRecord) {
			r.ExpectedAwards = 7
		})
		calc := &CompetitionCalculator{}
		assert.NotEqual(t, calc.Fingerprint(base), calc.Fingerprint(changed))
	})

	t.Run("timing ignores batch order of concurrent closes", func(t *testing.T) {
		a := newTestInput(nil)
		a.ConcurrentCloses = []time.Time{testNow.AddDate(0, 0, 10), testNow.AddDate(0, 0, 20)}
		b := newTestInput(nil)
		b.ConcurrentCloses = []time.Time{testNow.AddDate(0, 0, 20), testNow.AddDate(0, 0, 10)}

		calc := &TimingCalculator{}
		assert.Equal(t, calc.Fingerprint(a), calc.Fingerprint(b))
	})
}

// TestComputeDeterminism ensures repeated computation is bit-identical.
func TestComputeDeterminism(t *testing.T) {
	in := newTestInput(nil)
	for _, calc := range All() {
		first := calc.Compute(in)
		second := calc.Compute(in)
		require.Equal(t, first, second, "metric %s not deterministic", calc.Name())
	}
}
