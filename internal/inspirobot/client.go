// Package inspirobot fetches freshly generated inspiration images from the
// InspiroBot service.
//
// The protocol is two plain GETs: the generate endpoint returns the URL of a
// new image as a bare string body, and a second GET on that URL downloads the
// image bytes. Nothing here touches storage or the database — the service
// layer decides what to do with the bytes.
package inspirobot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// DefaultBaseURL is the public InspiroBot endpoint.
const DefaultBaseURL = "https://inspirobot.me"

// maxImageSize caps downloads at 10MB. Generated images are a few hundred KB;
// the cap keeps a misbehaving upstream from exhausting memory.
const maxImageSize = 10 << 20

// Client talks to the InspiroBot API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// New creates a Client for baseURL (DefaultBaseURL for the real service,
// an httptest server URL in tests).
func New(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// Generate asks the service for a new image and returns its URL.
func (c *Client) Generate(ctx context.Context) (string, error) {
	endpoint := c.baseURL + "/api?generate=true"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("inspirobot: building generate request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("inspirobot: requesting generation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("inspirobot: generate returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", fmt.Errorf("inspirobot: reading generate response: %w", err)
	}

	imageURL := strings.TrimSpace(string(body))
	if imageURL == "" {
		return "", fmt.Errorf("inspirobot: generate returned an empty body")
	}

	c.logger.Debug("image generated", slog.String("url", imageURL))
	return imageURL, nil
}

// FetchImage downloads the image at imageURL.
func (c *Client) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("inspirobot: building image request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inspirobot: downloading image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inspirobot: image download returned status %d", resp.StatusCode)
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize))
	if err != nil {
		return nil, fmt.Errorf("inspirobot: reading image body: %w", err)
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("inspirobot: image download returned no content")
	}

	return content, nil
}

// Extension derives the file extension from the trailing path segment of
// imageURL, without the dot. Returns "jpg" when the URL carries no usable
// extension, which is what the generator serves.
func Extension(imageURL string) string {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return "jpg"
	}
	ext := strings.TrimPrefix(path.Ext(parsed.Path), ".")
	if ext == "" {
		return "jpg"
	}
	return ext
}
