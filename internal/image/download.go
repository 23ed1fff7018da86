package image

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxDownloadBytes caps remote image downloads.
const maxDownloadBytes = 5 * 1024 * 1024

var httpClient = &http.Client{Timeout: 30 * time.Second}

// Download fetches a remote image, enforcing the size cap.
func Download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image download returned status %d", resp.StatusCode)
	}

	// Read one byte past the cap to tell "exactly at the limit" from
	// "too large".
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if len(data) > maxDownloadBytes {
		return nil, fmt.Errorf("image exceeds maximum size of %d bytes", maxDownloadBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image download returned no data")
	}
	return data, nil
}
