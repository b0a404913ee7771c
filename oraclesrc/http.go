// Package oraclesrc provides the two non-core ways of obtaining an
// oracle.Oracle the CLI driver supports: a remote HTTP validation endpoint,
// and a user-supplied Go plugin. Neither is part of the solver's contract —
// both just produce an oracle.Oracle, which is all the core ever sees.
package oraclesrc

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPOracle queries a remote padding-validation endpoint, the same shape as
// the demo service's POST /validate: a JSON body carrying the base64
// ciphertext, a 200 response meaning "valid padding", anything else meaning
// "invalid padding".
type HTTPOracle struct {
	endpoint string
	client   *http.Client
}

// NewHTTPOracle builds an oracle.Oracle backed by a remote validation
// endpoint, with a per-request timeout applied through the HTTP client.
func NewHTTPOracle(endpoint string, timeout time.Duration) *HTTPOracle {
	return &HTTPOracle{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type validateRequest struct {
	CiphertextB64 string `json:"ciphertext_b64"`
}

// Check implements oracle.Oracle.
func (h *HTTPOracle) Check(ctx context.Context, prev, target []byte) (bool, error) {
	cipherText := append(append([]byte{}, prev...), target...)
	body, err := json.Marshal(validateRequest{
		CiphertextB64: base64.StdEncoding.EncodeToString(cipherText),
	})
	if err != nil {
		return false, fmt.Errorf("oraclesrc: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("oraclesrc: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("oraclesrc: querying oracle: %w", err)
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}
