package atz

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// ListUsers fetches the CRM user directory. Used only as a boot-time
// diagnostic so operators can build the extension→owner mapping.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	raw, err := c.do(ctx, http.MethodGet, "/users", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("atz: list users: %w", err)
	}
	var list []User
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var envelope struct {
		Data []User `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("atz: decode users: %w", err)
	}
	return envelope.Data, nil
}
