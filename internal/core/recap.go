package core

// ProjectCost is the cost accumulated on one project within one month:
// the sum of daysWorked * TJM over every assignment of that month.
type ProjectCost struct {
	ProjectID string
	Name      string
	TotalCost Money
}

// MonthRecap is the aggregated cost report for one month code, across all
// collaborators and projects. Months are keyed by their two-digit code only;
// multi-year data collapses onto the same code. The wire format carries no
// year, so this mirrors what callers can represent.
type MonthRecap struct {
	Month    MonthCode
	Projects []ProjectCost
	Total    Money
}
