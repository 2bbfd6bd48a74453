// Package geoip resolves client IPs to a coarse location for request logs.
// Lookups are best effort and never fail the caller.
package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

const (
	DefaultEndpoint = "http://ip-api.com"
	DefaultTimeout  = 3 * time.Second

	// Failed is returned in place of a location when the lookup does not succeed.
	Failed = "GeoIP lookup failed"

	maxResponseSize = 64 << 10
)

// Client queries an ip-api.com compatible service.
type Client struct {
	endpoint string
	http     *retryablehttp.Client
	log      *zap.Logger
}

// New returns a Client for endpoint. Requests are attempted once and bounded
// by timeout; a zero timeout means DefaultTimeout.
func New(endpoint string, timeout time.Duration, log *zap.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = 0
	httpClient.HTTPClient.Timeout = timeout
	httpClient.Logger = newErrorLogger(log)

	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		http:     httpClient,
		log:      log,
	}
}

type location struct {
	Country    *string `json:"country"`
	RegionName string  `json:"regionName"`
	City       string  `json:"city"`
}

func (l location) String() string {
	country := "unknown"
	if l.Country != nil {
		country = *l.Country
	}
	return fmt.Sprintf("%s - %s - %s", country, l.RegionName, l.City)
}

// Lookup returns "<country> - <region> - <city>" for ip, or Failed.
func (c *Client) Lookup(ctx context.Context, ip string) string {
	loc, err := c.lookup(ctx, ip)
	if err != nil {
		c.log.Warn("geoip lookup failed", zap.String("ip", ip), zap.Error(err))
		return Failed
	}
	return loc.String()
}

func (c *Client) lookup(ctx context.Context, ip string) (location, error) {
	var loc location

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/json/"+url.PathEscape(ip), nil)
	if err != nil {
		return loc, fmt.Errorf("failed to create a new request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return loc, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return loc, fmt.Errorf("unexpected status: %s", resp.Status)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&loc); err != nil {
		return loc, fmt.Errorf("decode response: %w", err)
	}
	return loc, nil
}
