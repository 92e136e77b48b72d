package httpapi

import (
	"time"

	"github.com/custodia-labs/drawsync/internal/core/domain"
)

// drawResponse is the wire shape of a draw.
type drawResponse struct {
	Issue    string `json:"issue"`
	OpenTime string `json:"openTime"`
	Week     string `json:"week"`
	RedBalls []int  `json:"redBalls"`
	BlueBall int    `json:"blueBall"`
}

func toDrawResponse(d domain.DrawRecord) drawResponse {
	return drawResponse{
		Issue:    d.IssueLabel,
		OpenTime: d.DrawTimestamp,
		Week:     d.WeekdayLabel,
		RedBalls: append([]int(nil), d.PrimaryNumbers[:]...),
		BlueBall: d.SecondaryNumber,
	}
}

// syncResponse is the wire shape of a sync report.
type syncResponse struct {
	RunID        string     `json:"runId"`
	Running      bool       `json:"running"`
	KnownMax     int64      `json:"knownMax"`
	PagesFetched int        `json:"pagesFetched"`
	Inserted     int        `json:"inserted"`
	Skipped      int        `json:"skipped"`
	Failed       int        `json:"failed"`
	StopReason   string     `json:"stopReason,omitempty"`
	LastError    string     `json:"lastError,omitempty"`
	StartedAt    time.Time  `json:"startedAt"`
	EndedAt      *time.Time `json:"endedAt,omitempty"`
}

func toSyncResponse(r domain.SyncReport) syncResponse {
	resp := syncResponse{
		RunID:        r.RunID,
		Running:      r.Running,
		KnownMax:     r.KnownMax,
		PagesFetched: r.PagesFetched,
		Inserted:     r.Inserted,
		Skipped:      r.Skipped,
		Failed:       r.Failed,
		StopReason:   r.StopReason.String(),
		LastError:    r.LastError,
		StartedAt:    r.StartedAt,
	}
	if !r.EndedAt.IsZero() {
		ended := r.EndedAt
		resp.EndedAt = &ended
	}
	return resp
}
