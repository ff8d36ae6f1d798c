package storage

import (
	"context"
	"fmt"
	"math"

	"suivi/internal/core"
)

// Recap computes the monthly cost report in one pass: every assignment is
// joined to its snapshot's rate and its project's name, costs are summed per
// (month, project), then folded per month. An unset rate contributes zero.
//
// Months are grouped by their two-digit code alone, so data from different
// years lands in the same bucket. The wire format carries no year; kept as a
// documented limitation of the report.
func (r *Repository) Recap(ctx context.Context) ([]core.MonthRecap, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.month, a.project_id, COALESCE(p.name, ''),
		        SUM(a.days_worked * COALESCE(c.tjm_cents, 0))
		 FROM assignments a
		 JOIN collaborators c ON c.id = a.collaborator_id
		 LEFT JOIN projects p ON p.id = a.project_id
		 GROUP BY c.month, a.project_id
		 ORDER BY c.month, a.project_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("recap query: %w", err)
	}
	defer rows.Close()

	recaps := []core.MonthRecap{}
	for rows.Next() {
		var (
			month     string
			projectID string
			name      string
			costCents float64
		)
		if err := rows.Scan(&month, &projectID, &name, &costCents); err != nil {
			return nil, fmt.Errorf("scan recap row: %w", err)
		}
		if name == "" {
			name = core.UnknownProjectName
		}
		cost := core.Money{Cents: int64(math.Round(costCents))}

		if len(recaps) == 0 || recaps[len(recaps)-1].Month != core.MonthCode(month) {
			recaps = append(recaps, core.MonthRecap{Month: core.MonthCode(month)})
		}
		last := &recaps[len(recaps)-1]
		last.Projects = append(last.Projects, core.ProjectCost{
			ProjectID: projectID,
			Name:      name,
			TotalCost: cost,
		})
		last.Total.Cents += cost.Cents
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recap rows: %w", err)
	}
	return recaps, nil
}
