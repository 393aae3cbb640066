package tmdb

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Catalog is the subset of catalog operations the importer consumes.
type Catalog interface {
	MovieDetails(ctx context.Context, movieID string) (*MovieDetails, error)
	MovieCredits(ctx context.Context, movieID string) (*Credits, error)
	ImageURL(path string) string
}

// Client provides typed access to the TMDB v3 API.
type Client struct {
	apiKey       string
	baseURL      string
	imageBaseURL string
	language     string
	timeout      time.Duration
	maxRetries   int
	fetcher      *Fetcher
}

var _ Catalog = (*Client)(nil)

// Options carries the client settings.
type Options struct {
	APIKey       string
	BaseURL      string
	ImageBaseURL string
	Language     string
	Timeout      time.Duration
	MaxRetries   int
}

// New creates a TMDB client on top of fetcher.
func New(opts Options, fetcher *Fetcher) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL := strings.TrimSpace(opts.BaseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	if fetcher == nil {
		fetcher = NewFetcher()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKey:       apiKey,
		baseURL:      strings.TrimRight(baseURL, "/"),
		imageBaseURL: strings.TrimRight(strings.TrimSpace(opts.ImageBaseURL), "/"),
		language:     strings.TrimSpace(opts.Language),
		timeout:      timeout,
		maxRetries:   opts.MaxRetries,
		fetcher:      fetcher,
	}, nil
}

// MovieDetails fetches the movie with its video list embedded.
func (c *Client) MovieDetails(ctx context.Context, movieID string) (*MovieDetails, error) {
	movieID = strings.TrimSpace(movieID)
	if movieID == "" {
		return nil, errors.New("movie id must not be empty")
	}
	endpoint, err := c.endpoint("/movie/"+url.PathEscape(movieID), url.Values{"append_to_response": {"videos"}})
	if err != nil {
		return nil, err
	}
	var details MovieDetails
	if err := c.fetcher.FetchJSON(ctx, endpoint, c.timeout, c.maxRetries, &details); err != nil {
		return nil, fmt.Errorf("movie %s details: %w", movieID, err)
	}
	return &details, nil
}

// MovieCredits fetches the cast and crew lists for a movie.
func (c *Client) MovieCredits(ctx context.Context, movieID string) (*Credits, error) {
	movieID = strings.TrimSpace(movieID)
	if movieID == "" {
		return nil, errors.New("movie id must not be empty")
	}
	endpoint, err := c.endpoint("/movie/"+url.PathEscape(movieID)+"/credits", nil)
	if err != nil {
		return nil, err
	}
	var credits Credits
	if err := c.fetcher.FetchJSON(ctx, endpoint, c.timeout, c.maxRetries, &credits); err != nil {
		return nil, fmt.Errorf("movie %s credits: %w", movieID, err)
	}
	return &credits, nil
}

// ImageURL joins a catalog image path with the configured image base.
func (c *Client) ImageURL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || c.imageBaseURL == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.imageBaseURL + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) endpoint(path string, extra url.Values) (string, error) {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return "", fmt.Errorf("parse tmdb url: %w", err)
	}
	params := url.Values{}
	for key, values := range extra {
		params[key] = values
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()
	return endpoint.String(), nil
}
