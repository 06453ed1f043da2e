package reports

import "testing"

func TestBuildSummary(t *testing.T) {
	counts := map[string]int{
		"Draft":    2,
		"Complete": 3,
		"Reviewer Evaluation": 1,
	}
	summary := buildSummary(counts, []int{5, 4, 4}, 12)

	if summary.AppraisalsTotal != 6 {
		t.Fatalf("expected 6 appraisals, got %d", summary.AppraisalsTotal)
	}
	if summary.CompletionRate != 0.5 {
		t.Fatalf("expected completion rate 0.5, got %v", summary.CompletionRate)
	}
	if summary.GoalsTotal != 12 {
		t.Fatalf("expected 12 goals, got %d", summary.GoalsTotal)
	}
	if summary.RatingDistribution["4"] != 2 || summary.RatingDistribution["5"] != 1 {
		t.Fatalf("unexpected rating distribution: %+v", summary.RatingDistribution)
	}
}

func TestBuildSummaryEmpty(t *testing.T) {
	summary := buildSummary(map[string]int{}, nil, 0)
	if summary.AppraisalsTotal != 0 || summary.CompletionRate != 0 {
		t.Fatalf("expected zero summary, got %+v", summary)
	}
	if len(summary.RatingDistribution) != 0 {
		t.Fatalf("expected empty distribution, got %+v", summary.RatingDistribution)
	}
}
