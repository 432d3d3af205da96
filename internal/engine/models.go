package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	apierrors "llamachat/internal/errors"
)

// GJSON paths for plucking model metadata out of /api/show responses. The
// response is large and loosely structured; only these fields are used.
const (
	PathShowFamily       = "details.family"
	PathShowParameters   = "details.parameter_size"
	PathShowQuantization = "details.quantization_level"
	PathShowFormat       = "details.format"
	PathShowArchitecture = `model_info.general\.architecture`
	PathShowCapabilities = "capabilities"
)

// ModelInfo describes one locally installed model
type ModelInfo struct {
	Name       string    `json:"name"`
	ModifiedAt time.Time `json:"modified_at"`
	Size       int64     `json:"size"`
	Digest     string    `json:"digest"`
	Details    struct {
		Family            string `json:"family"`
		ParameterSize     string `json:"parameter_size"`
		QuantizationLevel string `json:"quantization_level"`
	} `json:"details"`
}

// ModelDetails carries the interesting subset of a model's full metadata
type ModelDetails struct {
	Name          string
	Family        string
	ParameterSize string
	Quantization  string
	Format        string
	Architecture  string
	ContextLength int64
	Capabilities  []string
}

// Models lists the models installed on the server
func (c *Client) Models(ctx context.Context) ([]ModelInfo, error) {
	body, err := c.doRequest(ctx, http.MethodGet, EndpointTags, nil, "list models")
	if err != nil {
		return nil, err
	}

	var payload struct {
		Models []ModelInfo `json:"models"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, apierrors.NewParseError("malformed tags response: "+err.Error(), EndpointTags)
	}

	return payload.Models, nil
}

// ShowModel fetches a model's metadata
func (c *Client) ShowModel(ctx context.Context, name string) (*ModelDetails, error) {
	if name == "" {
		return nil, apierrors.NewModelError("", "no model name given")
	}

	payload, err := json.Marshal(map[string]string{"model": name})
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	body, err := c.doRequest(ctx, http.MethodPost, EndpointShow, payload, "show model")
	if err != nil {
		return nil, err
	}

	if !gjson.ValidBytes(body) {
		return nil, apierrors.NewParseError("malformed show response", EndpointShow)
	}

	parsed := gjson.ParseBytes(body)
	details := &ModelDetails{
		Name:          name,
		Family:        parsed.Get(PathShowFamily).String(),
		ParameterSize: parsed.Get(PathShowParameters).String(),
		Quantization:  parsed.Get(PathShowQuantization).String(),
		Format:        parsed.Get(PathShowFormat).String(),
		Architecture:  parsed.Get(PathShowArchitecture).String(),
	}

	// The context window lives under an architecture-dependent key, e.g.
	// model_info["llama.context_length"]
	if details.Architecture != "" {
		details.ContextLength = parsed.Get(fmt.Sprintf(`model_info.%s\.context_length`, details.Architecture)).Int()
	}

	parsed.Get(PathShowCapabilities).ForEach(func(_, value gjson.Result) bool {
		details.Capabilities = append(details.Capabilities, value.String())
		return true
	})

	return details, nil
}

// Ping checks that the server is reachable and returns its version
func (c *Client) Ping(ctx context.Context) (string, error) {
	body, err := c.doRequest(ctx, http.MethodGet, EndpointVersion, nil, "ping")
	if err != nil {
		return "", err
	}

	var payload struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", apierrors.NewParseError("malformed version response: "+err.Error(), EndpointVersion)
	}

	return payload.Version, nil
}

// doRequest performs one non-streaming API call and returns the response body
func (c *Client) doRequest(ctx context.Context, method, endpoint string, payload []byte, op string) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("api request", zap.String("method", method), zap.String("endpoint", endpoint))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(op, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp, endpoint, op+" failed")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportError(op, endpoint, err)
	}

	return body, nil
}
