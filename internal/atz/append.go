package atz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// ErrUpdateExhausted means every verb/path/encoding combination was tried
// and none succeeded.
var ErrUpdateExhausted = errors.New("atz: custom field update failed for every verb, path and payload shape")

// bodyEncoder renders the new field value into one of the accepted update
// payload shapes.
type bodyEncoder struct {
	tag    string
	encode func(fieldKey, value string, ownerID int) map[string]any
}

// updateAttempt is one concrete try: verb, path and payload shape.
type updateAttempt struct {
	verb    string
	path    string
	encoder bodyEncoder
}

var updateEncoders = []bodyEncoder{
	{
		tag: "obj-map",
		encode: func(fieldKey, value string, ownerID int) map[string]any {
			return withOwner(map[string]any{
				"custom_fields": map[string]string{fieldKey: value},
			}, ownerID)
		},
	},
	{
		tag: "kv-array",
		encode: func(fieldKey, value string, ownerID int) map[string]any {
			return withOwner(map[string]any{
				"custom_fields": []map[string]string{{"key": fieldKey, "value": value}},
			}, ownerID)
		},
	},
	{
		tag: "direct",
		encode: func(fieldKey, value string, ownerID int) map[string]any {
			return withOwner(map[string]any{fieldKey: value}, ownerID)
		},
	},
}

func withOwner(body map[string]any, ownerID int) map[string]any {
	if ownerID > 0 {
		body["owner_id"] = ownerID
	}
	return body
}

// updateAttempts enumerates the ordered trial list: outer loop over verbs,
// then paths, then payload encodings. First success short-circuits.
func updateAttempts(idOrSlug string) []updateAttempt {
	verbs := []string{http.MethodPut, http.MethodPatch}
	paths := []string{"/candidate/" + url.PathEscape(idOrSlug)}
	attempts := make([]updateAttempt, 0, len(verbs)*len(paths)*len(updateEncoders))
	for _, verb := range verbs {
		for _, path := range paths {
			for _, enc := range updateEncoders {
				attempts = append(attempts, updateAttempt{verb: verb, path: path, encoder: enc})
			}
		}
	}
	return attempts
}

// AppendToCustomField appends line to the candidate's fieldKey, preserving
// any prior content as a prefix: the field is an append-only
// newline-delimited call log and previously recorded history must never be
// lost. ownerID, when positive, rides along on the update body.
//
// Persistence walks the ordered attempt list; a 404 moves to the next
// combination, any other failure is logged and also treated as
// try-next. No combination is retried. Exhaustion returns
// ErrUpdateExhausted.
func (c *Client) AppendToCustomField(ctx context.Context, idOrSlug, fieldKey, line string, ownerID int) (*Candidate, error) {
	detail, err := c.GetCandidateDetail(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	prior := ""
	if detail != nil {
		prior, _ = detail.CustomField(fieldKey)
	}
	value := line
	if prior != "" {
		value = prior + "\n" + line
	}

	for _, attempt := range updateAttempts(idOrSlug) {
		body := attempt.encoder.encode(fieldKey, value, ownerID)
		raw, err := c.do(ctx, attempt.verb, attempt.path, nil, body)
		if err != nil {
			if IsNotFound(err) {
				c.logger.Warn("candidate update 404, trying next combination",
					"verb", attempt.verb, "path", attempt.path, "style", attempt.encoder.tag)
			} else {
				c.logger.Warn("candidate update failed, trying next combination",
					"verb", attempt.verb, "path", attempt.path, "style", attempt.encoder.tag,
					"error", err)
			}
			continue
		}
		c.logger.Info("custom field appended",
			"verb", attempt.verb, "path", attempt.path, "style", attempt.encoder.tag)
		var cand Candidate
		if err := json.Unmarshal(raw, &cand); err != nil {
			return nil, fmt.Errorf("atz: decode updated candidate: %w", err)
		}
		return &cand, nil
	}
	return nil, ErrUpdateExhausted
}
