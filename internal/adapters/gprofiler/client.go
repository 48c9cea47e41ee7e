// Package gprofiler is a client for the g:Profiler functional enrichment
// service (g:GOSt over-representation analysis). The service is an opaque
// boundary: one synchronous POST per gene list, no retry.
package gprofiler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	model "github.com/sgguerra29/tpmScraper/internal/domain/model"
)

const (
	profilePath    = "/api/gost/profile/"
	defaultBaseURL = "https://biit.cs.ut.ee/gprofiler"
	defaultTimeout = 60 * time.Second
)

// Client talks to one g:Profiler instance.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL points the client at a different service instance.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithUserAgent sets the User-Agent header sent with requests.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient creates a g:Profiler client with default configuration.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		userAgent:  "tpmScraper",
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query is one enrichment request: an organism, a gene list, a
// significance threshold, and the ontology sources to consider.
type Query struct {
	Organism  string
	Genes     []string
	Threshold float64
	Sources   []string
}

type profileRequest struct {
	Organism      string   `json:"organism"`
	Query         []string `json:"query"`
	UserThreshold float64  `json:"user_threshold"`
	Sources       []string `json:"sources"`
	NoEvidences   bool     `json:"no_evidences"`
}

type profileResult struct {
	Native        string   `json:"native"`
	Name          string   `json:"name"`
	Source        string   `json:"source"`
	PValue        float64  `json:"p_value"`
	Intersections []string `json:"intersections"`
}

type profileResponse struct {
	Result []profileResult `json:"result"`
}

// Profile submits one gene list and returns the enriched terms. Member
// genes keep the order the service reports them in.
func (c *Client) Profile(ctx context.Context, q Query) ([]model.TermRecord, error) {
	if len(q.Genes) == 0 {
		return nil, fmt.Errorf("%w: empty gene list", ErrService)
	}

	body, err := json.Marshal(profileRequest{
		Organism:      q.Organism,
		Query:         q.Genes,
		UserThreshold: q.Threshold,
		Sources:       q.Sources,
		NoEvidences:   false,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+profilePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrService, resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var decoded profileResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrService, err)
	}

	terms := make([]model.TermRecord, 0, len(decoded.Result))
	for _, r := range decoded.Result {
		terms = append(terms, model.TermRecord{
			TermID:      r.Native,
			Description: r.Name,
			Source:      r.Source,
			PValue:      r.PValue,
			Genes:       r.Intersections,
		})
	}
	return terms, nil
}
