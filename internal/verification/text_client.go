package verification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-flash-latest:generateContent"

const comparePrompt = `Compare the following two descriptions of a lost item to determine if they refer to the same item.

Original Item Description: %q
Claimant's Description: %q

Analyze the details (color, brand, distinctive marks, location, etc.).
Return ONLY a number between 0 and 100 representing the probability that the claimant is describing the actual original item.
0 means completely different/wrong, 100 means perfect match with specific details.
If the claimant's description is vague but not contradictory, give a lower score (e.g., 20-40).
If it contains specific correct details, give a high score.`

// GeminiClient scores description matches with the Gemini API. A missing
// API key is a soft failure: the client reports score 0 without calling out.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewGeminiClient(apiKey string) *GeminiClient {
	return &GeminiClient{
		apiKey:  apiKey,
		baseURL: geminiEndpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *GeminiClient) ScoreText(ctx context.Context, originalDescription, claimDescription string) (float64, error) {
	if c.apiKey == "" {
		return 0, nil
	}

	prompt := fmt.Sprintf(comparePrompt, originalDescription, claimDescription)
	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s?key=%s", c.baseURL, c.apiKey), bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("gemini returned %d: %s", resp.StatusCode, string(body))
	}

	var result geminiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, fmt.Errorf("decoding gemini response: %w", err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return 0, fmt.Errorf("empty gemini response")
	}

	text := strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text)
	score, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("non-numeric gemini response %q", text)
	}

	return score, nil
}
