package atz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/atzlabs/zadarma-atz-relay/internal/call"
)

// ErrActivityExhausted means no activity path accepted the note.
var ErrActivityExhausted = errors.New("atz: activity creation failed on every candidate path")

// ActivityNote is the structured record of one finished call, persisted as
// an activity instead of a custom-field line when the activity strategy is
// configured.
type ActivityNote struct {
	CandidateRef    string `json:"candidate_id"`
	CallID          string `json:"call_id"`
	From            string `json:"from"`
	To              string `json:"to"`
	Extension       string `json:"extension,omitempty"`
	DurationSeconds int    `json:"duration_seconds"`
	Event           string `json:"event"`
	Disposition     string `json:"disposition,omitempty"`
	Note            string `json:"note"`
}

// NewActivityNote builds an ActivityNote from a call record.
func NewActivityNote(candidateRef string, rec call.Record, note string) ActivityNote {
	return ActivityNote{
		CandidateRef:    candidateRef,
		CallID:          rec.CallID,
		From:            rec.From,
		To:              rec.To,
		Extension:       rec.Internal,
		DurationSeconds: rec.DurationSeconds,
		Event:           rec.Event,
		Disposition:     rec.Disposition,
		Note:            note,
	}
}

// activityPaths lists where to POST the note, preferred path first. Path
// templates may reference the candidate with one %s verb.
func (c *Client) activityPaths(candidateRef string) []string {
	templates := []string{
		"/candidate/%s/activity",
		"/candidate/%s/note",
		"/activity",
		"/note",
	}
	if c.activityPath != "" {
		templates = append([]string{c.activityPath}, templates...)
	}
	paths := make([]string, 0, len(templates))
	for _, tpl := range templates {
		if strings.Contains(tpl, "%s") {
			paths = append(paths, fmt.Sprintf(tpl, url.PathEscape(candidateRef)))
		} else {
			paths = append(paths, tpl)
		}
	}
	return paths
}

// CreateCallActivity posts the note to the first path that accepts it. A 404
// moves to the next path; any other failure is logged and also treated as
// try-next. Exhaustion returns ErrActivityExhausted.
func (c *Client) CreateCallActivity(ctx context.Context, note ActivityNote) (map[string]any, error) {
	for _, path := range c.activityPaths(note.CandidateRef) {
		raw, err := c.do(ctx, http.MethodPost, path, nil, note)
		if err != nil {
			if IsNotFound(err) {
				c.logger.Warn("activity path 404, trying next", "path", path)
			} else {
				c.logger.Warn("activity create failed, trying next", "path", path, "error", err)
			}
			continue
		}
		c.logger.Info("call activity created", "path", path)
		var result map[string]any
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, fmt.Errorf("atz: decode activity response: %w", err)
		}
		return result, nil
	}
	return nil, ErrActivityExhausted
}
