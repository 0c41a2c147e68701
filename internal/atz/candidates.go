package atz

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/atzlabs/zadarma-atz-relay/internal/call"
)

const (
	listPageSize = 50
	listMaxPages = 3
)

// ListCandidatesPage fetches one page of the candidate list. The endpoint
// answers either a bare array or a {data:[…]} envelope.
func (c *Client) ListCandidatesPage(ctx context.Context, page, limit int) ([]Candidate, error) {
	query := url.Values{
		"page":  []string{strconv.Itoa(page)},
		"limit": []string{strconv.Itoa(limit)},
	}
	raw, err := c.do(ctx, http.MethodGet, "/candidate", query, nil)
	if err != nil {
		return nil, fmt.Errorf("atz: list candidates page %d: %w", page, err)
	}
	return decodeCandidateList(raw)
}

func decodeCandidateList(raw []byte) ([]Candidate, error) {
	var list []Candidate
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var envelope struct {
		Data []Candidate `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("atz: decode candidate list: %w", err)
	}
	return envelope.Data, nil
}

// FindCandidateByPhone scans the candidate list for a matching normalized
// phone. The scan is client-side and capped at listMaxPages pages of
// listPageSize; it stops early when a short page signals the end of the
// data. This only holds up while candidate volume stays small — a known
// scalability limit, kept because the API offers no phone search.
// Returns (nil, nil) when nothing matches.
func (c *Client) FindCandidateByPhone(ctx context.Context, phone string) (*Candidate, error) {
	target := call.NormalizePhone(phone)
	if target == "" {
		return nil, nil
	}
	for page := 1; page <= listMaxPages; page++ {
		list, err := c.ListCandidatesPage(ctx, page, listPageSize)
		if err != nil {
			return nil, err
		}
		for i := range list {
			if call.NormalizePhone(list[i].Phone()) == target {
				return &list[i], nil
			}
		}
		if len(list) < listPageSize {
			break
		}
	}
	return nil, nil
}

// CreateCandidateParams describes the record synthesized for an unmatched
// caller.
type CreateCandidateParams struct {
	Phone   string
	OwnerID int // 0 means create without an owner
	CallID  string
}

type createCandidateBody struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Phone       string `json:"phone"`
	Description string `json:"description"`
	OwnerID     int    `json:"owner_id,omitempty"`
}

// CreateCandidate creates a candidate named after the last four digits of
// the phone number. When an owner id is supplied and the remote rejects it
// as invalid, creation is retried exactly once without the owner; any other
// failure is returned as-is.
func (c *Client) CreateCandidate(ctx context.Context, params CreateCandidateParams) (*Candidate, error) {
	body := createCandidateBody{
		FirstName:   "Caller",
		LastName:    lastFour(params.Phone),
		Phone:       params.Phone,
		Description: fmt.Sprintf("Auto-created from Zadarma call %s", params.CallID),
	}
	if params.OwnerID > 0 {
		withOwner := body
		withOwner.OwnerID = params.OwnerID
		cand, err := c.postCandidate(ctx, withOwner)
		if err == nil {
			return cand, nil
		}
		if !isInvalidOwner(err) {
			return nil, err
		}
		c.logger.Warn("owner rejected by ATZ, retrying candidate create without owner",
			"owner_id", params.OwnerID)
	}
	return c.postCandidate(ctx, body)
}

func (c *Client) postCandidate(ctx context.Context, body createCandidateBody) (*Candidate, error) {
	raw, err := c.do(ctx, http.MethodPost, "/candidate", nil, body)
	if err != nil {
		return nil, fmt.Errorf("atz: create candidate: %w", err)
	}
	var cand Candidate
	if err := json.Unmarshal(raw, &cand); err != nil {
		return nil, fmt.Errorf("atz: decode created candidate: %w", err)
	}
	return &cand, nil
}

// GetOrCreateCandidateByPhone finds a candidate by phone or creates one.
// There is no guard against a concurrent create for the same number between
// the find and the create; duplicate candidates under concurrent webhook
// delivery are an accepted limitation.
func (c *Client) GetOrCreateCandidateByPhone(ctx context.Context, params CreateCandidateParams) (*Candidate, error) {
	cand, err := c.FindCandidateByPhone(ctx, params.Phone)
	if err != nil {
		return nil, err
	}
	if cand != nil {
		return cand, nil
	}
	return c.CreateCandidate(ctx, params)
}

// GetCandidateDetail fetches a candidate by id or slug. A 404 is not an
// error: it returns (nil, nil).
func (c *Client) GetCandidateDetail(ctx context.Context, idOrSlug string) (*Candidate, error) {
	raw, err := c.do(ctx, http.MethodGet, "/candidate/"+url.PathEscape(idOrSlug), nil, nil)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("atz: candidate detail %s: %w", idOrSlug, err)
	}
	var cand Candidate
	if err := json.Unmarshal(raw, &cand); err != nil {
		return nil, fmt.Errorf("atz: decode candidate detail: %w", err)
	}
	return &cand, nil
}

func lastFour(phone string) string {
	digits := call.NormalizePhone(phone)
	if n := len(digits); n >= 4 {
		return digits[n-4:]
	}
	return "Lead"
}
