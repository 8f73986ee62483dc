package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/tallyledger/tally/internal/common"
)

// credentialPayload is the wire shape of the single stored secret.
type credentialPayload struct {
	Value string `json:"value"`
}

// GetCredential fetches the OCR credential for the owner. A missing
// credential is returned as an empty string, not an error.
func (c *Client) GetCredential(ctx context.Context) (string, error) {
	var payload credentialPayload
	err := c.getJSON(ctx, c.ownerURL("settings/ocr-credential"), &payload)
	if errors.Is(err, common.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to fetch credential: %w", err)
	}
	return payload.Value, nil
}

// SetCredential upserts the OCR credential.
func (c *Client) SetCredential(ctx context.Context, credential string) error {
	payload := credentialPayload{Value: credential}
	if err := c.sendJSON(ctx, http.MethodPut, c.ownerURL("settings/ocr-credential"), payload, nil); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	return nil
}

// ClearCredential removes the OCR credential. Clearing an absent credential
// is not an error.
func (c *Client) ClearCredential(ctx context.Context) error {
	err := c.sendJSON(ctx, http.MethodDelete, c.ownerURL("settings/ocr-credential"), nil, nil)
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}
	return nil
}
