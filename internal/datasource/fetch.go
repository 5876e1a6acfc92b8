package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// fetch issues a GET and maps non-200 responses to DataSourceError. The
// caller closes the returned body.
func fetch(ctx context.Context, client *RateLimitedHTTPClient, source, url string, header http.Header) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NewDataSourceError(source, ErrCodeNetworkError, "failed to create request", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(ctx, req)
	if err != nil {
		return nil, NewDataSourceError(source, ErrCodeNetworkError, "request failed", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return resp.Body, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		resp.Body.Close()
		return nil, NewDataSourceError(source, ErrCodeAuthenticationFailed, "invalid API key", nil)
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, NewDataSourceError(source, ErrCodeNotFound, url, nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		resp.Body.Close()
		return nil, NewDataSourceError(source, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, NewDataSourceError(source, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}
}

// fetchJSON decodes a JSON response into out
func fetchJSON(ctx context.Context, client *RateLimitedHTTPClient, source, url string, header http.Header, out any) error {
	body, err := fetch(ctx, client, source, url, header)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(out); err != nil {
		return NewDataSourceError(source, ErrCodeInvalidData, "failed to parse response", err)
	}
	return nil
}
