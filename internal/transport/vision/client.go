// Package vision is the product-search client for the Cloud Vision images:annotate API.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/kailas-cloud/prodlens/internal/domain"
	"github.com/kailas-cloud/prodlens/internal/domain/bundle"
	"github.com/kailas-cloud/prodlens/internal/domain/product"
	"github.com/kailas-cloud/prodlens/internal/domain/search/match"
	"github.com/kailas-cloud/prodlens/internal/metrics"
)

// maxErrorBody bounds how much of a non-2xx body is kept for the error detail.
const maxErrorBody = 4 << 10

// Config holds the product-search settings.
type Config struct {
	Endpoint          string
	APIKey            string
	ProductSet        string
	ProductCategories []string
	MaxResults        int
	// HTTPClient defaults to a client without its own timeout; callers bound each
	// search through ctx.
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client issues PRODUCT_SEARCH requests.
type Client struct {
	endpoint   string
	apiKey     string
	productSet string
	categories []string
	maxResults int
	http       *http.Client
	schema     *gojsonschema.Schema
	logger     *zap.Logger
}

// NewClient creates a product-search client.
func NewClient(cfg *Config) (*Client, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(responseSchema))
	if err != nil {
		return nil, fmt.Errorf("compile response schema: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		productSet: cfg.ProductSet,
		categories: cfg.ProductCategories,
		maxResults: cfg.MaxResults,
		http:       httpClient,
		schema:     schema,
		logger:     log,
	}, nil
}

// Search implements query.Searcher. Only responses[0] of the reply is read.
func (c *Client) Search(ctx context.Context, b bundle.Bundle) (match.Response, error) {
	start := time.Now()

	resp, err := c.search(ctx, b)

	metrics.SearchRequestDuration.Observe(time.Since(start).Seconds())
	metrics.SearchRequestsTotal.WithLabelValues(statusLabel(err)).Inc()
	if err != nil {
		return match.Response{}, err
	}

	metrics.SearchMatches.Observe(float64(resp.Len()))
	return resp, nil
}

func (c *Client) search(ctx context.Context, b bundle.Bundle) (match.Response, error) {
	body, err := json.Marshal(c.request(b))
	if err != nil {
		return match.Response{}, fmt.Errorf("%w: encode request: %w", domain.ErrSearchRequest, err)
	}

	target, err := c.url()
	if err != nil {
		return match.Response{}, fmt.Errorf("%w: %w", domain.ErrSearchRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return match.Response{}, fmt.Errorf("%w: build request: %w", domain.ErrSearchRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(req)
	if err != nil {
		return match.Response{}, fmt.Errorf("%w: %w", domain.ErrSearchRequest, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(httpResp.Body, maxErrorBody))
		return match.Response{}, &domain.StatusError{
			StatusCode: httpResp.StatusCode,
			Detail:     extractDetail(raw),
		}
	}

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return match.Response{}, fmt.Errorf("%w: read body: %w", domain.ErrSearchRequest, err)
	}

	return c.decode(raw)
}

func (c *Client) request(b bundle.Bundle) annotateRequest {
	categories := c.categories
	if categories == nil {
		categories = []string{}
	}
	return annotateRequest{Requests: []imageRequest{{
		Image:    image{Content: b.ImageData()},
		Features: []feature{{Type: featureProductSearch, MaxResults: c.maxResults}},
		ImageContext: imageContext{ProductSearchParams: productSearchParams{
			ProductSet:        c.productSet,
			ProductCategories: categories,
			Filter:            b.FilterText(),
		}},
	}}}
}

// url appends ?key= when an API key is configured.
func (c *Client) url() (string, error) {
	if c.apiKey == "" {
		return c.endpoint, nil
	}
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("key", c.apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) decode(raw []byte) (match.Response, error) {
	// A per-image error comes back inside a 200.
	var probe annotateResponse
	if err := json.Unmarshal(raw, &probe); err != nil {
		return match.Response{}, fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
	}
	if len(probe.Responses) > 0 && probe.Responses[0].Error != nil && probe.Responses[0].ProductSearchResults == nil {
		e := probe.Responses[0].Error
		return match.Response{}, fmt.Errorf("%w: code %d: %s", domain.ErrSearchRequest, e.Code, e.Message)
	}

	res, err := c.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return match.Response{}, fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		c.logger.Debug("Search response failed validation", zap.Strings("errors", msgs))
		return match.Response{}, fmt.Errorf("%w: %s", domain.ErrMalformedResponse, strings.Join(msgs, "; "))
	}

	results := probe.Responses[0].ProductSearchResults.Results
	matches := make([]match.ScoredMatch, 0, len(results))
	for _, r := range results {
		labels := make([]product.Label, len(r.Product.ProductLabels))
		for i, l := range r.Product.ProductLabels {
			labels[i] = product.Label{Key: l.Key, Value: l.Value}
		}
		p := product.New(r.Product.Name, r.Product.DisplayName, r.Product.ProductCategory, labels, r.Product.Score)

		score := r.Product.Score
		if r.Score != nil {
			score = *r.Score
		}
		matches = append(matches, match.New(p, score))
	}
	return match.NewResponse(matches), nil
}

func statusLabel(err error) string {
	var statusErr *domain.StatusError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &statusErr):
		return "http_error"
	case errors.Is(err, domain.ErrMalformedResponse):
		return "malformed"
	default:
		return "network_error"
	}
}

// extractDetail pulls error.message out of a Google API error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Error.Message != "" {
		if parsed.Error.Status != "" {
			return parsed.Error.Status + ": " + parsed.Error.Message
		}
		return parsed.Error.Message
	}
	return strings.TrimSpace(string(body))
}
