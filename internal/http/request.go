package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"suivi/internal/apperror"
	"suivi/internal/core"
)

// Request schemas, decoded and checked at the boundary so the services only
// ever see well-formed input. Pointers mark fields whose absence must be
// told apart from their zero value.
type (
	createProjectRequest struct {
		Name string `json:"name"`
	}

	renameProjectRequest struct {
		Name string `json:"name"`
	}

	createCollaboratorRequest struct {
		Name     string   `json:"name"`
		Projects []string `json:"projects"`
		Month    string   `json:"month,omitempty"`
		Year     int      `json:"year,omitempty"`
	}

	updateCollaboratorRequest struct {
		Name     string   `json:"name"`
		Projects []string `json:"projects"`
	}

	addDaysRequest struct {
		ProjectID string   `json:"projectId"`
		Days      *float64 `json:"days"`
		Month     string   `json:"month,omitempty"`
		Year      int      `json:"year,omitempty"`
	}

	commentRequest struct {
		Comments *string `json:"comments"`
	}

	tjmRequest struct {
		TJM *float64 `json:"tjm"`
	}
)

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "invalid JSON body: "+err.Error())
	}
	return nil
}

// resolvePeriod normalizes an optional month/year pair, falling back to the
// clock supplied by the server. Accepts "3" as well as "03".
func resolvePeriod(month string, year int, now time.Time) (core.MonthCode, int, error) {
	defMonth, defYear := core.CurrentPeriod(now)

	code := defMonth
	if m := strings.TrimSpace(month); m != "" {
		if len(m) == 1 {
			m = "0" + m
		}
		code = core.MonthCode(m)
		if err := code.Validate(); err != nil {
			return "", 0, apperror.ValidationFailed("month",
				fmt.Sprintf("invalid month %q: must be 01 through 12", month))
		}
	}

	if year == 0 {
		year = defYear
	}
	if year < 2000 || year > 2200 {
		return "", 0, apperror.ValidationFailed("year",
			fmt.Sprintf("invalid year %d", year))
	}

	return code, year, nil
}

// queryPeriod reads the optional ?month=&year= filter of the snapshot
// listing. Both absent means no filter; a lone month pairs with the current
// year and vice versa.
func queryPeriod(r *http.Request, now time.Time) (month string, year int, present bool) {
	q := r.URL.Query()
	month = strings.TrimSpace(q.Get("month"))
	if y := strings.TrimSpace(q.Get("year")); y != "" {
		if parsed, err := strconv.Atoi(y); err == nil {
			year = parsed
		}
	}
	return month, year, month != "" || year != 0
}
