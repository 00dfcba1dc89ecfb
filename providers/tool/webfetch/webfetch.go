package webfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/leofalp/cascade/internal/utils"
	"github.com/leofalp/cascade/providers/tool"
)

const (
	// DefaultTimeout is used when the model does not pass timeout_seconds.
	DefaultTimeout = 30 * time.Second
	// MaxTimeout caps timeout_seconds.
	MaxTimeout = 300 * time.Second
	// DefaultUserAgent is the User-Agent header sent with every request.
	DefaultUserAgent = "cascade-webfetch/1.0"
	// MaxBodySize is the largest page accepted (10 MB).
	MaxBodySize = 10 * 1024 * 1024
	// maxRedirects bounds redirect chains.
	maxRedirects = 10
)

// Name is the tool name advertised to models.
const Name = "fetch_url"

const description = `Fetch a web page and return its content converted to Markdown. Partial URLs such as "example.com" get an https:// prefix. Redirects are followed and the final URL is returned.

Args:
    url: The page to fetch.
    timeout_seconds: Request timeout in seconds, at most 300.
    include_html: Also return the raw HTML.`

// Input holds the parameters the model passes to fetch_url.
type Input struct {
	URL            string `json:"url"`
	TimeoutSeconds int    `json:"timeout_seconds" default:"30"`
	IncludeHTML    bool   `json:"include_html" default:"false"`
}

// Output is what fetch_url returns to the model.
type Output struct {
	URL      string `json:"url"`
	Markdown string `json:"markdown"`
	HTML     string `json:"html,omitempty"`
}

// Fetcher performs page downloads with one reusable client.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher returns a Fetcher. A nil client gets a transport with dial,
// TLS and header timeouts and a bounded redirect policy.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 10 * time.Second,
				IdleConnTimeout:       90 * time.Second,
				MaxIdleConnsPerHost:   4,
				ForceAttemptHTTP2:     true,
			},
		}
	}
	if client.CheckRedirect == nil {
		client.CheckRedirect = func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("too many redirects (>%d)", maxRedirects)
			}
			return nil
		}
	}
	return &Fetcher{client: client, userAgent: DefaultUserAgent}
}

// New returns the fetch_url tool backed by f.
func New(f *Fetcher) *tool.ToolDef {
	if f == nil {
		f = NewFetcher(nil)
	}
	return tool.MustNew(Name, f.Fetch, tool.WithDescription(description))
}

// Fetch downloads in.URL and converts the body to Markdown. Non-200
// statuses, oversized bodies and conversion failures are errors.
func (f *Fetcher) Fetch(ctx context.Context, in Input) (Output, error) {
	url := strings.TrimSpace(in.URL)
	if url == "" {
		return Output{}, errors.New("URL cannot be empty")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}

	timeout := DefaultTimeout
	if in.TimeoutSeconds > 0 {
		timeout = min(time.Duration(in.TimeoutSeconds)*time.Second, MaxTimeout)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Output{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Output{}, fmt.Errorf("request timeout or canceled: %w", err)
		}
		return Output{}, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer utils.CloseWithLog(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return Output{}, fmt.Errorf("unexpected status code: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return Output{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > MaxBodySize {
		return Output{}, fmt.Errorf("response body exceeds maximum size of %d bytes", MaxBodySize)
	}

	markdown, err := htmltomarkdown.ConvertString(string(body))
	if err != nil {
		return Output{}, fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}

	out := Output{
		URL:      resp.Request.URL.String(),
		Markdown: markdown,
	}
	if in.IncludeHTML {
		out.HTML = string(body)
	}
	return out, nil
}
