// Package client is a thin HTTP consumer of the decision service, used
// by remote experiment runs and smoke tests.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"hearts/communication"
	"hearts/game"
)

// Client talks to one decision service instance.
type Client struct {
	baseURL string
	http    *http.Client
}

// New points a client at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// GetMove requests a move for the given wire-form state.
func (c *Client) GetMove(state communication.GameStateJSON, config *communication.AIConfigJSON) (game.Card, error) {
	resp, err := c.post("/api/move", communication.MoveRequest{GameState: state, AIConfig: config})
	if err != nil {
		return 0, err
	}
	if resp.Move == nil {
		return 0, fmt.Errorf("move response carries no move")
	}
	return game.ParseCard(resp.Move.Card)
}

// GetPass requests the three cards to pass.
func (c *Client) GetPass(state communication.GameStateJSON, config *communication.AIConfigJSON) ([3]game.Card, error) {
	var out [3]game.Card
	resp, err := c.post("/api/pass", communication.MoveRequest{GameState: state, AIConfig: config})
	if err != nil {
		return out, err
	}
	if resp.Pass == nil || len(resp.Pass.Cards) != 3 {
		return out, fmt.Errorf("pass response carries no cards")
	}
	for i, s := range resp.Pass.Cards {
		c, err := game.ParseCard(s)
		if err != nil {
			return out, err
		}
		out[i] = c
	}
	return out, nil
}

// Health probes the service.
func (c *Client) Health() error {
	resp, err := c.http.Get(c.baseURL + "/api/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %s", resp.Status)
	}
	return nil
}

func (c *Client) post(path string, req communication.MoveRequest) (*communication.MoveResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpResp, err := c.http.Post(c.baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("decision service unreachable: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		var errResp communication.ErrorResponse
		if err := json.NewDecoder(httpResp.Body).Decode(&errResp); err != nil {
			return nil, fmt.Errorf("decision service returned %s", httpResp.Status)
		}
		return nil, fmt.Errorf("decision service error %s: %s", errResp.ErrorCode, errResp.Message)
	}

	var resp communication.MoveResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("malformed move response: %w", err)
	}
	return &resp, nil
}
