// internal/api/disqualification/handlers.go
package disqualification

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/samaggi-games/tournament-admin/internal/api/apiutil"
	"github.com/samaggi-games/tournament-admin/internal/disqual"
)

const runTimeout = 2 * time.Minute

var (
	monitor  *disqual.Monitor
	initOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(m *disqual.Monitor) {
	if m == nil {
		return
	}
	initOnce.Do(func() {
		monitor = m
	})
}

type runResponse struct {
	Tracked               []string `json:"tracked"`
	Retracked             []string `json:"retracked"`
	Disqualified          []string `json:"disqualified"`
	Cleared               []string `json:"cleared"`
	CurrentlyDisqualified []string `json:"currentlyDisqualified"`
}

// POST /api/v1/disqualification/run
//
// Manual trigger for the same sweep the scheduler runs. Sweeps are
// idempotent, so an extra run is always safe.
func HandleRun(w http.ResponseWriter, r *http.Request) {
	if monitor == nil {
		apiutil.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), runTimeout)
	defer cancel()

	report, err := monitor.Run(ctx)
	if err != nil {
		apiutil.WriteDomainError(w, r, err)
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, runResponse{
		Tracked:               emptyIfNil(report.Tracked),
		Retracked:             emptyIfNil(report.Retracked),
		Disqualified:          emptyIfNil(report.Disqualified),
		Cleared:               emptyIfNil(report.Cleared),
		CurrentlyDisqualified: emptyIfNil(report.CurrentlyDisqualified),
	})
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
