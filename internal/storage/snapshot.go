package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"suivi/internal/apperror"
	"suivi/internal/core"
)

// Period filters a snapshot listing to one month/year.
type Period struct {
	Month core.MonthCode
	Year  int
}

// CreateSnapshot inserts the snapshot and its assignment list in one
// transaction, filling ID and timestamps in place.
func (r *Repository) CreateSnapshot(ctx context.Context, s *core.Snapshot) error {
	s.ID = xid.New().String()
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO collaborators (id, name, tjm_cents, comments, month, year, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Name, tjmCents(s.TJM), s.Comments, string(s.Month), s.Year, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert collaborator: %w", err)
	}

	if err := insertAssignments(ctx, tx, s.ID, s.Assignments); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// GetSnapshot loads one snapshot with its assignments resolved to project
// names (deleted projects become the unknown-project placeholder).
func (r *Repository) GetSnapshot(ctx context.Context, id string) (*core.Snapshot, error) {
	var (
		s   core.Snapshot
		tjm sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, tjm_cents, comments, month, year, created_at, updated_at
		 FROM collaborators WHERE id = ?`, id,
	).Scan(&s.ID, &s.Name, &tjm, &s.Comments, &s.Month, &s.Year, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, apperror.NotFound("collaborator", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get collaborator %s: %w", id, err)
	}
	if tjm.Valid {
		s.TJM = &core.Money{Cents: tjm.Int64}
	}

	assignments, err := r.loadAssignments(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	s.Assignments = assignments
	return &s, nil
}

// ListSnapshots returns snapshots oldest first, optionally restricted to one
// period. Assignments are resolved to project names.
func (r *Repository) ListSnapshots(ctx context.Context, period *Period) ([]core.Snapshot, error) {
	query := `SELECT id, name, tjm_cents, comments, month, year, created_at, updated_at
		 FROM collaborators`
	var args []any
	if period != nil {
		query += ` WHERE month = ? AND year = ?`
		args = append(args, string(period.Month), period.Year)
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list collaborators: %w", err)
	}
	defer rows.Close()

	snapshots := []core.Snapshot{}
	for rows.Next() {
		var (
			s   core.Snapshot
			tjm sql.NullInt64
		)
		if err := rows.Scan(&s.ID, &s.Name, &tjm, &s.Comments, &s.Month, &s.Year, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan collaborator: %w", err)
		}
		if tjm.Valid {
			s.TJM = &core.Money{Cents: tjm.Int64}
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collaborators: %w", err)
	}

	for i := range snapshots {
		assignments, err := r.loadAssignments(ctx, snapshots[i].ID)
		if err != nil {
			return nil, err
		}
		snapshots[i].Assignments = assignments
	}
	return snapshots, nil
}

// UpdateSnapshot replaces the name and the whole assignment list. The
// caller (service layer) decides which day counts carry over.
func (r *Repository) UpdateSnapshot(ctx context.Context, id, name string, assignments []core.Assignment) (*core.Snapshot, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE collaborators SET name = ?, updated_at = ? WHERE id = ?`,
		name, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update collaborator %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update collaborator %s: %w", id, err)
	}
	if n == 0 {
		return nil, apperror.NotFound("collaborator", id)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM assignments WHERE collaborator_id = ?`, id); err != nil {
		return nil, fmt.Errorf("clear assignments for %s: %w", id, err)
	}
	if err := insertAssignments(ctx, tx, id, assignments); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}
	return r.GetSnapshot(ctx, id)
}

func (r *Repository) DeleteSnapshot(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM collaborators WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete collaborator %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete collaborator %s: %w", id, err)
	}
	if n == 0 {
		return apperror.NotFound("collaborator", id)
	}
	return nil
}

// UpdateComments overwrites the free-text comments, empty string included.
func (r *Repository) UpdateComments(ctx context.Context, id, comments string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE collaborators SET comments = ?, updated_at = ? WHERE id = ?`,
		comments, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update comments for %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update comments for %s: %w", id, err)
	}
	if n == 0 {
		return apperror.NotFound("collaborator", id)
	}
	return nil
}

// UpdateTJM sets the daily rate in cents.
func (r *Repository) UpdateTJM(ctx context.Context, id string, rate core.Money) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE collaborators SET tjm_cents = ?, updated_at = ? WHERE id = ?`,
		rate.Cents, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update tjm for %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update tjm for %s: %w", id, err)
	}
	if n == 0 {
		return apperror.NotFound("collaborator", id)
	}
	return nil
}

// FindByIdentity looks up the snapshot of a collaborator (stable identity:
// the name) for a given period. Returns nil, nil when there is none. If
// duplicates exist (the accepted concurrent-create race) the oldest wins.
func (r *Repository) FindByIdentity(ctx context.Context, name string, month core.MonthCode, year int) (*core.Snapshot, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM collaborators WHERE name = ? AND month = ? AND year = ?
		 ORDER BY created_at, id LIMIT 1`,
		name, string(month), year,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find collaborator %q %s/%d: %w", name, month, year, err)
	}
	return r.GetSnapshot(ctx, id)
}

// SetDaysWorked overwrites the day count of one assignment (last write
// wins). The assignment must already exist.
func (r *Repository) SetDaysWorked(ctx context.Context, collaboratorID, projectID string, days float64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE assignments SET days_worked = ? WHERE collaborator_id = ? AND project_id = ?`,
		days, collaboratorID, projectID,
	)
	if err != nil {
		return fmt.Errorf("set days for %s/%s: %w", collaboratorID, projectID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set days for %s/%s: %w", collaboratorID, projectID, err)
	}
	if n == 0 {
		return apperror.NotFound("assignment", collaboratorID+"/"+projectID)
	}
	if _, err := r.db.ExecContext(ctx,
		`UPDATE collaborators SET updated_at = ? WHERE id = ?`,
		time.Now().UTC(), collaboratorID); err != nil {
		return fmt.Errorf("touch collaborator %s: %w", collaboratorID, err)
	}
	return nil
}

func (r *Repository) loadAssignments(ctx context.Context, collaboratorID string) ([]core.Assignment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT a.project_id, COALESCE(p.name, ''), a.days_worked
		 FROM assignments a
		 LEFT JOIN projects p ON p.id = a.project_id
		 WHERE a.collaborator_id = ?
		 ORDER BY a.position`,
		collaboratorID,
	)
	if err != nil {
		return nil, fmt.Errorf("load assignments for %s: %w", collaboratorID, err)
	}
	defer rows.Close()

	assignments := []core.Assignment{}
	for rows.Next() {
		var a core.Assignment
		if err := rows.Scan(&a.ProjectID, &a.ProjectName, &a.DaysWorked); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		if a.ProjectName == "" {
			a.ProjectName = core.UnknownProjectName
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignments: %w", err)
	}
	return assignments, nil
}

func insertAssignments(ctx context.Context, tx *sql.Tx, collaboratorID string, assignments []core.Assignment) error {
	for i, a := range assignments {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO assignments (collaborator_id, project_id, days_worked, position)
			 VALUES (?, ?, ?, ?)`,
			collaboratorID, a.ProjectID, a.DaysWorked, i,
		); err != nil {
			return fmt.Errorf("insert assignment %s/%s: %w", collaboratorID, a.ProjectID, err)
		}
	}
	return nil
}

func tjmCents(m *core.Money) any {
	if m == nil {
		return nil
	}
	return m.Cents
}
