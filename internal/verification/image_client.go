package verification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// ImageServiceClient calls the image-similarity microservice. The service
// takes the claimant's photo as a multipart upload and the item's original
// image as a URL, and answers with a 0-100 similarity score.
type ImageServiceClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewImageServiceClient(baseURL string) *ImageServiceClient {
	return &ImageServiceClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type imageScoreResponse struct {
	Status          string  `json:"status"`
	SimilarityScore float64 `json:"similarity_score"`
}

// ScoreImage posts the claim image to /verify-image. claimImagePath is a
// path on the local upload volume; a missing file is an error the caller
// treats as score 0.
func (c *ImageServiceClient) ScoreImage(ctx context.Context, originalImageURL, claimImagePath string) (float64, error) {
	file, err := os.Open(filepath.Clean(claimImagePath))
	if err != nil {
		return 0, fmt.Errorf("opening claim image: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("claim_image", filepath.Base(claimImagePath))
	if err != nil {
		return 0, fmt.Errorf("building multipart form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return 0, fmt.Errorf("reading claim image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return 0, fmt.Errorf("closing multipart form: %w", err)
	}

	endpoint := fmt.Sprintf("%s/verify-image?original_image_url=%s",
		c.baseURL, url.QueryEscape(originalImageURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("image service request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("image service returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result imageScoreResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return 0, fmt.Errorf("decoding image service response: %w", err)
	}
	if result.Status != "success" {
		return 0, fmt.Errorf("image service status %q", result.Status)
	}

	return result.SimilarityScore, nil
}
