package browseragent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// RemoteAgent hands the task to an out-of-process agent service over HTTP.
type RemoteAgent struct {
	baseURL    string
	model      string
	httpClient *http.Client
	log        *zap.Logger
}

func NewRemoteAgent(baseURL, model string, log *zap.Logger) *RemoteAgent {
	return &RemoteAgent{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			// agent runs take minutes
			Timeout: 10 * time.Minute,
		},
		log: log.Named("browser"),
	}
}

type remoteRunRequest struct {
	Task  string `json:"task"`
	URL   string `json:"url"`
	Model string `json:"model,omitempty"`
}

type remoteRunResponse struct {
	Transcript  string `json:"transcript"`
	FinalResult string `json:"final_result"`
	Steps       int    `json:"steps"`
}

func (c *RemoteAgent) Run(ctx context.Context, task Task) (*Result, error) {
	b, err := json.Marshal(remoteRunRequest{Task: task.Instructions, URL: task.URL, Model: c.model})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/run", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("agent service request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("agent service error: %d", resp.StatusCode)
	}

	var out remoteRunResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode agent response: %w", err)
	}
	c.log.Debug("remote agent finished", zap.Int("steps", out.Steps), zap.Duration("took", time.Since(start)))

	transcript := out.Transcript
	if out.FinalResult != "" {
		transcript += "\nfinal result: " + out.FinalResult
	}
	return &Result{Transcript: transcript, Steps: out.Steps}, nil
}
