// Copyright 2026 Cargoshift Authors
// SPDX-License-Identifier: Apache-2.0

package migrate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/northlight-systems/cargoshift/pkg/httpclient"
)

// HTTPDestinationClient is a reference DestinationClient: it POSTs the
// invocation as JSON to baseURL/<op> and decodes a Receipt from the
// response body. It does not implement any real capability-invocation
// envelope or signature scheme — that transport codec is an external
// collaborator per spec ¤1. Production deployments supply their own
// DestinationClient wrapping the real invocation transport; this one
// exists so the pipeline is runnable and testable end-to-end against a
// stub destination.
type HTTPDestinationClient struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPDestinationClient builds a client sharing connections through
// pool, keyed by baseURL.
func NewHTTPDestinationClient(baseURL string, pool *httpclient.Pool) *HTTPDestinationClient {
	if pool == nil {
		pool = httpclient.NewPool(2*time.Minute, 64)
	}
	return &HTTPDestinationClient{BaseURL: baseURL, Client: pool.Get(baseURL)}
}

type invokeRequest struct {
	Op            string   `json:"op"`
	Namespace     string   `json:"namespace"`
	Link          string   `json:"link,omitempty"`
	Size          int64    `json:"size,omitempty"`
	Root          string   `json:"root,omitempty"`
	Shards        []string `json:"shards,omitempty"`
	Authorization []byte   `json:"authorization,omitempty"`
}

// Invoke implements DestinationClient.
func (c *HTTPDestinationClient) Invoke(ctx context.Context, args InvokeArgs, auth Authorization) (Receipt, error) {
	body, err := json.Marshal(invokeRequest{
		Op:            args.Op,
		Namespace:     args.Namespace,
		Link:          args.Link,
		Size:          args.Size,
		Root:          args.Root,
		Shards:        args.Shards,
		Authorization: auth,
	})
	if err != nil {
		return Receipt{}, err
	}

	url := fmt.Sprintf("%s/%s", c.BaseURL, args.Op)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Receipt{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Receipt{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Receipt{}, err
	}

	var receipt Receipt
	if err := json.Unmarshal(data, &receipt); err != nil {
		return Receipt{}, fmt.Errorf("decode receipt: %w", err)
	}
	return receipt, nil
}
