package vitals

import "fmt"

// Severity buckets a budget violation by how far past the budget the
// observed value landed.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// severityWeights are subtracted from a perfect score per violation.
var severityWeights = map[Severity]int{
	SeverityLow:      5,
	SeverityMedium:   15,
	SeverityHigh:     25,
	SeverityCritical: 40,
}

// Violation is one metric exceeding its budget.
type Violation struct {
	Signal   string   `json:"signal"`
	Actual   float64  `json:"actual"`
	Budget   float64  `json:"budget"`
	Severity Severity `json:"severity"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s %.2f over budget %.2f (%s)", v.Signal, v.Actual, v.Budget, v.Severity)
}

// BudgetReport is the outcome of checking one sample against a page type's
// budget table.
type BudgetReport struct {
	Passed     bool        `json:"passed"`
	Violations []Violation `json:"violations"`
	Score      int         `json:"score"`
}

// Budgets maps page type → signal → budget threshold.
type Budgets map[string]map[string]float64

// DefaultBudgets returns the built-in threshold tables. Landing pages carry
// the strictest budgets since they are the paid-traffic entry point.
func DefaultBudgets() Budgets {
	return Budgets{
		"landing": {
			SignalLCP:  2500,
			SignalFID:  100,
			SignalCLS:  0.1,
			SignalFCP:  1800,
			SignalTTI:  3800,
			SignalTTFB: 800,
			SignalINP:  200,
		},
		"dashboard": {
			SignalLCP:  3000,
			SignalFID:  150,
			SignalCLS:  0.15,
			SignalFCP:  2200,
			SignalTTI:  5000,
			SignalTTFB: 1000,
			SignalINP:  300,
		},
		"default": {
			SignalLCP:  2800,
			SignalFID:  120,
			SignalCLS:  0.12,
			SignalFCP:  2000,
			SignalTTI:  4500,
			SignalTTFB: 900,
			SignalINP:  250,
		},
	}
}

// Table returns the budget table for a page type, falling back to "default".
func (b Budgets) Table(pageType string) map[string]float64 {
	if t, ok := b[pageType]; ok {
		return t
	}
	return b["default"]
}

// CheckBudget compares a sample against the page type's budgets. A metric
// registers a violation only when it is strictly over budget; equal-to-budget
// passes. Severity is bucketed by the ratio to budget: <1.2 low, <1.5
// medium, <2 high, else critical. Score starts at 100 and loses the severity
// weight per violation, floored at 0.
func (b Budgets) CheckBudget(m Metrics, pageType string) BudgetReport {
	table := b.Table(pageType)
	report := BudgetReport{Passed: true, Score: 100}

	for _, s := range Signals {
		actual := m.Value(s)
		budget, ok := table[s]
		if !ok || actual == 0 || actual <= budget {
			continue
		}

		sev := severityFor(actual / budget)
		report.Violations = append(report.Violations, Violation{
			Signal:   s,
			Actual:   actual,
			Budget:   budget,
			Severity: sev,
		})
		report.Score -= severityWeights[sev]
	}

	if report.Score < 0 {
		report.Score = 0
	}
	report.Passed = len(report.Violations) == 0
	return report
}

func severityFor(ratio float64) Severity {
	switch {
	case ratio < 1.2:
		return SeverityLow
	case ratio < 1.5:
		return SeverityMedium
	case ratio < 2:
		return SeverityHigh
	default:
		return SeverityCritical
	}
}
