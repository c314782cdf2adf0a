package dataset

import (
	"context"
	"fmt"
	"net/http"
)

// Fetch downloads a dataset CSV over HTTP and parses it.
func Fetch(ctx context.Context, client *http.Client, url string) (*Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	t, err := ParseCSV(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	return t, nil
}
