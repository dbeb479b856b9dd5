package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ayham/sitekit/internal/domain"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

const (
	// DefaultNetlifyBaseURL is the production API endpoint.
	DefaultNetlifyBaseURL = "https://api.netlify.com/api/v1"
	// netlifyRequestTimeout bounds individual API calls.
	netlifyRequestTimeout = 30 * time.Second
	// netlifyPollInterval is the deploy state polling cadence.
	netlifyPollInterval = 2 * time.Second
	netlifyRetryCount   = 3
	netlifyRetryDelay   = 500 * time.Millisecond
)

// netlifyService implements HostingService against the Netlify deploy API.
// Uploads are digest-negotiated: the create call announces SHA-1 digests and
// the provider answers with the subset it does not already have.
type netlifyService struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *zap.Logger
}

// NewNetlifyService creates a HostingService for Netlify. baseURL is
// overridable for tests; pass "" for production.
func NewNetlifyService(baseURL, token string, log *zap.Logger) HostingService {
	if baseURL == "" {
		baseURL = DefaultNetlifyBaseURL
	}
	return &netlifyService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: netlifyRequestTimeout},
		log:        log,
	}
}

type netlifyDeployResponse struct {
	ID       string   `json:"id"`
	State    string   `json:"state"`
	Required []string `json:"required"`
	SSLURL   string   `json:"ssl_url"`
	URL      string   `json:"url"`
}

func (d *netlifyDeployResponse) toDeploy() *Deploy {
	deployURL := d.SSLURL
	if deployURL == "" {
		deployURL = d.URL
	}
	return &Deploy{ID: d.ID, State: d.State, Required: d.Required, URL: deployURL}
}

// CreateDeploy opens a deploy for the site by announcing the artifact's
// digest manifest.
func (s *netlifyService) CreateDeploy(ctx context.Context, siteID string, artifact *domain.Artifact, title string) (*Deploy, error) {
	manifest := make(map[string]string, artifact.Len())
	for _, f := range artifact.Files {
		manifest["/"+strings.TrimPrefix(f.Path, "/")] = f.SHA1
	}
	body, err := json.Marshal(map[string]any{
		"files": manifest,
		"title": title,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal deploy manifest: %w", err)
	}
	endpoint := fmt.Sprintf("%s/sites/%s/deploys", s.baseURL, url.PathEscape(siteID))
	var resp netlifyDeployResponse
	if err := s.doJSON(ctx, http.MethodPost, endpoint, body, "application/json", &resp); err != nil {
		return nil, fmt.Errorf("failed to create deploy: %w", err)
	}
	s.log.Info("deploy created",
		zap.String("deploy_id", resp.ID),
		zap.Int("files", artifact.Len()),
		zap.Int("required", len(resp.Required)))
	return resp.toDeploy(), nil
}

// UploadFiles PUTs every artifact file whose digest the provider requested.
func (s *netlifyService) UploadFiles(ctx context.Context, deploy *Deploy, artifact *domain.Artifact, read FileReader) error {
	required := make(map[string]bool, len(deploy.Required))
	for _, sha := range deploy.Required {
		required[sha] = true
	}
	for _, f := range artifact.Files {
		if !required[f.SHA1] {
			continue
		}
		content, err := read(f.Path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", f.Path, err)
		}
		endpoint := fmt.Sprintf("%s/deploys/%s/files/%s", s.baseURL, url.PathEscape(deploy.ID), f.Path)
		if err := s.doRaw(ctx, http.MethodPut, endpoint, content, "application/octet-stream"); err != nil {
			return fmt.Errorf("failed to upload %s: %w", f.Path, err)
		}
		s.log.Debug("uploaded file", zap.String("path", f.Path), zap.Int64("bytes", f.Size))
	}
	return nil
}

// WaitReady polls the deploy state until ready, error, or timeout.
func (s *netlifyService) WaitReady(ctx context.Context, deployID string, timeout time.Duration) (*Deploy, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	endpoint := fmt.Sprintf("%s/deploys/%s", s.baseURL, url.PathEscape(deployID))
	ticker := time.NewTicker(netlifyPollInterval)
	defer ticker.Stop()
	for {
		var resp netlifyDeployResponse
		if err := s.doJSON(ctx, http.MethodGet, endpoint, nil, "", &resp); err != nil {
			return nil, fmt.Errorf("failed to poll deploy: %w", err)
		}
		switch resp.State {
		case DeployStateReady:
			return resp.toDeploy(), nil
		case DeployStateError:
			return nil, fmt.Errorf("deploy %s failed on the provider side", deployID)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("timed out waiting for deploy %s: %w", deployID, ctx.Err())
		case <-ticker.C:
		}
	}
}

// CancelDeploy abandons an unfinished deploy.
func (s *netlifyService) CancelDeploy(ctx context.Context, deployID string) error {
	endpoint := fmt.Sprintf("%s/deploys/%s/cancel", s.baseURL, url.PathEscape(deployID))
	if err := s.doRaw(ctx, http.MethodPost, endpoint, nil, ""); err != nil {
		return fmt.Errorf("failed to cancel deploy: %w", err)
	}
	return nil
}

// doJSON performs a request with retry and decodes the JSON response.
func (s *netlifyService) doJSON(ctx context.Context, method, endpoint string, body []byte, contentType string, out any) error {
	return s.withRetry(ctx, func(ctx context.Context) error {
		data, err := s.roundTrip(ctx, method, endpoint, body, contentType)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode provider response: %w", err)
		}
		return nil
	})
}

// doRaw performs a request with retry, discarding the response body.
func (s *netlifyService) doRaw(ctx context.Context, method, endpoint string, body []byte, contentType string) error {
	return s.withRetry(ctx, func(ctx context.Context) error {
		_, err := s.roundTrip(ctx, method, endpoint, body, contentType)
		return err
	})
}

func (s *netlifyService) withRetry(ctx context.Context, fn func(context.Context) error) error {
	strategy := retry.WithMaxRetries(netlifyRetryCount, retry.NewExponential(netlifyRetryDelay))
	return retry.Do(ctx, strategy, fn)
}

// roundTrip executes one HTTP exchange. 429 and 5xx responses are marked
// retryable; auth and validation failures are terminal.
func (s *netlifyService) roundTrip(ctx context.Context, method, endpoint string, body []byte, contentType string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, retry.RetryableError(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, retry.RetryableError(fmt.Errorf("failed to read response: %w", err))
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, retry.RetryableError(fmt.Errorf("provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data))))
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}
