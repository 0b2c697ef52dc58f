// Package api implements the client side of the graft HTTP interface and the
// request/response types shared with the server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/graftml/graft/envconfig"
	"github.com/graftml/graft/version"
)

type Client struct {
	base *url.URL
	http *http.Client
}

// ClientFromEnvironment creates a client pointed at the host named by
// GRAFT_HOST, falling back to the default local address.
func ClientFromEnvironment() (*Client, error) {
	return &Client{
		base: envconfig.Host(),
		http: http.DefaultClient,
	}, nil
}

func NewClient(base *url.URL, http *http.Client) *Client {
	return &Client{base: base, http: http}
}

func (c *Client) do(ctx context.Context, method, path string, reqData, respData any) error {
	var reqBody io.Reader
	if reqData != nil {
		data, err := json.Marshal(reqData)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(path).String(), reqBody)
	if err != nil {
		return err
	}

	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", fmt.Sprintf("graft/%s", version.Version))

	response, err := c.http.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	respBody, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	if response.StatusCode >= http.StatusBadRequest {
		apiError := StatusError{StatusCode: response.StatusCode, Status: response.Status}
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			apiError.ErrorMessage = errResp.Error
		}
		return apiError
	}

	if respData != nil {
		return json.Unmarshal(respBody, respData)
	}

	return nil
}

// LoadGraph uploads a topology, replacing whatever graph the server holds.
func (c *Client) LoadGraph(ctx context.Context, req *LoadGraphRequest) (*LoadGraphResponse, error) {
	var resp LoadGraphResponse
	if err := c.do(ctx, http.MethodPost, "/api/graph", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// InSubgraph samples the in-neighborhood of the requested seeds.
func (c *Client) InSubgraph(ctx context.Context, req *InSubgraphRequest) (*InSubgraphResponse, error) {
	var resp InSubgraphResponse
	if err := c.do(ctx, http.MethodPost, "/api/insubgraph", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Version reports the server's version.
func (c *Client) Version(ctx context.Context) (string, error) {
	var resp VersionResponse
	if err := c.do(ctx, http.MethodGet, "/api/version", nil, &resp); err != nil {
		return "", err
	}
	return resp.Version, nil
}

// Heartbeat checks that the server is reachable.
func (c *Client) Heartbeat(ctx context.Context) error {
	return c.do(ctx, http.MethodHead, "/", nil, nil)
}
