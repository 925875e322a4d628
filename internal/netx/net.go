// Package netx wraps the plain HTTP calls made outside gRPC: evidence
// transfers against presigned bucket URLs and payout webhooks.
package netx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// maxErrorBody caps how much of a failed response ends up in the error.
const maxErrorBody = 4 << 10

// UploadToS3PresignedURL PUTs body to a presigned URL.
func UploadToS3PresignedURL(ctx context.Context, client *http.Client, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := clientOrDefault(client).Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError("upload failed", resp)
	}
	return nil
}

// DownloadFromS3PresignedURL GETs the object behind a presigned URL.
func DownloadFromS3PresignedURL(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := clientOrDefault(client).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("download failed", resp)
	}
	return io.ReadAll(resp.Body)
}

// PostJSON POSTs v as JSON and treats any 2xx answer as success.
func PostJSON(ctx context.Context, client *http.Client, url string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := clientOrDefault(client).Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError("post failed", resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func clientOrDefault(c *http.Client) *http.Client {
	if c == nil {
		return http.DefaultClient
	}
	return c
}

func statusError(prefix string, resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return fmt.Errorf("%s: %s; body: %s", prefix, resp.Status, string(b))
}
