package http

import (
	"time"

	"suivi/internal/core"
)

// Wire representations. TJM and costs travel as euro numbers; storage keeps
// cents (see internal/core).
type (
	projectJSON struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}

	assignmentJSON struct {
		ProjectID   string  `json:"projectId"`
		ProjectName string  `json:"projectName"`
		DaysWorked  float64 `json:"daysWorked"`
	}

	snapshotJSON struct {
		ID              string           `json:"id"`
		Name            string           `json:"name"`
		TJM             *float64         `json:"tjm"`
		Comments        string           `json:"comments"`
		Month           string           `json:"month"`
		Year            int              `json:"year"`
		TotalDaysWorked float64          `json:"totalDaysWorked"`
		Projects        []assignmentJSON `json:"projects"`
	}

	projectCostJSON struct {
		ID        string  `json:"id"`
		Name      string  `json:"name"`
		TotalCost float64 `json:"totalCost"`
	}

	monthRecapJSON struct {
		Month          string            `json:"month"`
		Projects       []projectCostJSON `json:"projects"`
		TotalMonthCost float64           `json:"totalMonthCost"`
	}

	messageJSON struct {
		Message      string        `json:"message"`
		Collaborator *snapshotJSON `json:"collaborator,omitempty"`
	}
)

func toProjectJSON(p core.Project) projectJSON {
	return projectJSON{ID: p.ID, Name: p.Name, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt}
}

func toSnapshotJSON(s core.Snapshot) snapshotJSON {
	out := snapshotJSON{
		ID:              s.ID,
		Name:            s.Name,
		Comments:        s.Comments,
		Month:           string(s.Month),
		Year:            s.Year,
		TotalDaysWorked: s.TotalDays(),
		Projects:        []assignmentJSON{},
	}
	if s.TJM != nil {
		euros := s.TJM.Euros()
		out.TJM = &euros
	}
	for _, a := range s.Assignments {
		out.Projects = append(out.Projects, assignmentJSON{
			ProjectID:   a.ProjectID,
			ProjectName: a.ProjectName,
			DaysWorked:  a.DaysWorked,
		})
	}
	return out
}

func toRecapJSON(recaps []core.MonthRecap) []monthRecapJSON {
	out := []monthRecapJSON{}
	for _, m := range recaps {
		entry := monthRecapJSON{
			Month:          string(m.Month),
			Projects:       []projectCostJSON{},
			TotalMonthCost: m.Total.Euros(),
		}
		for _, p := range m.Projects {
			entry.Projects = append(entry.Projects, projectCostJSON{
				ID:        p.ProjectID,
				Name:      p.Name,
				TotalCost: p.TotalCost.Euros(),
			})
		}
		out = append(out, entry)
	}
	return out
}
