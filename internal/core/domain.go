package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type (
	// Project is an entry of the project registry. Snapshots reference it
	// by ID only; a project may be deleted while references remain.
	Project struct {
		ID        string
		Name      string
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	// Assignment ties a snapshot to one project with the days worked on it
	// during the snapshot's month. ProjectName is resolved at read time and
	// falls back to UnknownProjectName for dangling references.
	Assignment struct {
		ProjectID   string
		ProjectName string
		DaysWorked  float64
	}

	// Snapshot is one collaborator for one month/year: name, daily rate,
	// free-text comments and the ordered list of project assignments.
	// The same collaborator (by name) owns one snapshot per period.
	Snapshot struct {
		ID          string
		Name        string
		TJM         *Money // daily rate, unset until the TJM editor fills it
		Comments    string
		Month       MonthCode
		Year        int
		Assignments []Assignment
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}
)

// UnknownProjectName is rendered for assignments whose project was deleted.
const UnknownProjectName = "unknown project"

var (
	ErrEmptyName    = errors.New("empty name")
	ErrNegativeDays = errors.New("days worked cannot be negative")
	ErrInvalidMonth = errors.New("invalid month")
	ErrInvalidYear  = errors.New("invalid year")
	ErrInvalidRate  = errors.New("invalid rate")
)

// MonthCode is a zero-padded two-digit month, "01" through "12".
type MonthCode string

func (m MonthCode) Validate() error {
	if len(m) != 2 {
		return ErrInvalidMonth
	}
	for _, r := range m {
		if r < '0' || r > '9' {
			return ErrInvalidMonth
		}
	}
	n := int(m[0]-'0')*10 + int(m[1]-'0')
	if n < 1 || n > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// MonthCodeOf converts a calendar month (1-12) to its wire form.
func MonthCodeOf(month time.Month) MonthCode {
	return MonthCode(fmt.Sprintf("%02d", int(month)))
}

// CurrentPeriod returns the month/year defaults for the given instant.
// Callers at the HTTP boundary resolve the clock; services never do.
func CurrentPeriod(now time.Time) (MonthCode, int) {
	return MonthCodeOf(now.Month()), now.Year()
}

func (p Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (s Snapshot) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if err := s.Month.Validate(); err != nil {
		return err
	}
	if s.Year < 2000 || s.Year > 2200 {
		return ErrInvalidYear
	}
	for _, a := range s.Assignments {
		if a.DaysWorked < 0 {
			return ErrNegativeDays
		}
	}
	return nil
}

// TotalDays is the derived total over all assignments. It is never stored
// independently of the assignment list.
func (s Snapshot) TotalDays() float64 {
	var total float64
	for _, a := range s.Assignments {
		total += a.DaysWorked
	}
	return total
}

// AssignmentFor returns the assignment referencing projectID, if any.
func (s Snapshot) AssignmentFor(projectID string) (Assignment, bool) {
	for _, a := range s.Assignments {
		if a.ProjectID == projectID {
			return a, true
		}
	}
	return Assignment{}, false
}
