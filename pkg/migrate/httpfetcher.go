// Copyright 2026 Cargoshift Authors
// SPDX-License-Identifier: Apache-2.0

package migrate

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/northlight-systems/cargoshift/pkg/httpclient"
)

// HTTPPartFetcher is the default PartFetcher: it GETs baseURL/partCID from
// the legacy service and returns the response unread, so the caller
// streams the body directly.
type HTTPPartFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPPartFetcher builds a fetcher sharing client connections through
// pool, keyed by baseURL.
func NewHTTPPartFetcher(baseURL string, pool *httpclient.Pool) *HTTPPartFetcher {
	if pool == nil {
		pool = httpclient.NewPool(2*time.Minute, 64)
	}
	return &HTTPPartFetcher{BaseURL: baseURL, Client: pool.Get(baseURL)}
}

// Fetch implements PartFetcher.
func (f *HTTPPartFetcher) Fetch(ctx context.Context, partCID string) (FetchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s", f.BaseURL, partCID), nil)
	if err != nil {
		return FetchResponse{}, err
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return FetchResponse{}, err
	}
	return FetchResponse{
		StatusCode:    resp.StatusCode,
		ContentLength: resp.Header.Get("Content-Length"),
		Body:          resp.Body,
	}, nil
}
