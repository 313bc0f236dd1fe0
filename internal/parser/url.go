package parser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mcncl/shapegen/internal/errors"
	"github.com/mcncl/shapegen/internal/models"
)

// DefaultFetchTimeout bounds a ParseURL request when the client has no timeout.
const DefaultFetchTimeout = 30 * time.Second

// MaxFetchSize is the largest response body ParseURL reads.
const MaxFetchSize = 64 << 20

// ValidateURL checks that rawURL is an absolute http or https URL.
func ValidateURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, errors.NewInputError(fmt.Sprintf("invalid URL '%s'", rawURL), err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return nil, errors.NewInputError(
			fmt.Sprintf("invalid URL scheme '%s': only http and https are supported", u.Scheme),
			errors.ErrInvalidFilePath,
		)
	}
	if u.Host == "" {
		return nil, errors.NewInputError(fmt.Sprintf("invalid URL '%s': missing host", rawURL), errors.ErrInvalidFilePath)
	}
	return u, nil
}

// ParseURL fetches rawURL with a GET request and parses the response body.
// A nil client uses http.DefaultClient.
func ParseURL(ctx context.Context, rawURL string, client *http.Client) (models.Document, error) {
	u, err := ValidateURL(rawURL)
	if err != nil {
		return models.Document{}, err
	}
	if client == nil {
		client = http.DefaultClient
	}
	if client.Timeout == 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultFetchTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return models.Document{}, errors.NewInputError(fmt.Sprintf("failed to build request for '%s'", rawURL), err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return models.Document{}, errors.NewInputError(fmt.Sprintf("request to '%s' failed", rawURL), err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.Document{}, errors.NewInputError(
			fmt.Sprintf("request to '%s' returned status %d", rawURL, resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxFetchSize))
	if err != nil {
		return models.Document{}, errors.NewInputError(fmt.Sprintf("failed to read response from '%s'", rawURL), err)
	}
	return ParseString(string(body))
}
