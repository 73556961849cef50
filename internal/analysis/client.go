package analysis

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RelayClient calls the analysis relay over HTTP. It implements Engine, so a
// capture session is indifferent to whether analysis runs in-process or
// behind the relay.
//
// A single attempt is made per call; analysis is advisory and the photo is
// not retaken, so there is nothing to gain from retrying.
type RelayClient struct {
	endpoint string
	client   *http.Client
}

// NewRelayClient creates a relay client. An empty endpoint produces a client
// whose Analyze always reports ErrEngineUnavailable; analysis is simply off.
func NewRelayClient(endpoint string) *RelayClient {
	return &RelayClient{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 2 * time.Minute, // large photos over slow links
		},
	}
}

func (c *RelayClient) Name() string {
	return "relay"
}

// Analyze posts the image to the relay's analyze endpoint and parses the
// structured result.
func (c *RelayClient) Analyze(ctx context.Context, image []byte) (*Result, error) {
	if c.endpoint == "" {
		return nil, ErrEngineUnavailable
	}
	if len(image) == 0 {
		return nil, ErrMissingImage
	}

	payload, err := json.Marshal(map[string]string{
		"image": base64.StdEncoding.EncodeToString(image),
	})
	if err != nil {
		return nil, fmt.Errorf("could not marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &EngineError{Kind: ErrorResponse, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &EngineError{Kind: ErrorResponse, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &EngineError{
			Kind:   ErrorResponse,
			Detail: string(body),
			Err:    fmt.Errorf("relay returned status %d", resp.StatusCode),
		}
	}

	result, err := ParseResult(body)
	if err != nil {
		return nil, &EngineError{Kind: ErrorResponse, Detail: string(body), Err: err}
	}
	return result, nil
}
