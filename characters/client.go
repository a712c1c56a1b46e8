package characters

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jmgilman/go/errors"

	"github.com/goliatone/go-character-list/internal/logging"
)

const (
	// DefaultBaseURL is the public Rick and Morty API.
	DefaultBaseURL = "https://rickandmortyapi.com/api"

	// DefaultTimeout bounds every request made by HTTPClient.
	DefaultTimeout = 15 * time.Second

	// maxImageSize caps a single image download.
	maxImageSize = 10 * 1024 * 1024
)

// Client is the remote side of the character list.
type Client interface {
	// FetchCharacters returns page number page (1-based).
	FetchCharacters(ctx context.Context, page int) (CharacterPage, error)
	// DownloadImage returns the bytes at url, or nil when the server has nothing usable.
	DownloadImage(ctx context.Context, url string) ([]byte, error)
}

// Config configures HTTPClient.
type Config struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DefaultConfig points at the public API.
func DefaultConfig() Config {
	return Config{BaseURL: DefaultBaseURL, Timeout: DefaultTimeout}
}

// HTTPClient implements Client over net/http.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a client for cfg. Zero values fall back to DefaultConfig.
func NewHTTPClient(cfg Config) *HTTPClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// FetchCharacters performs GET {base}/character?page=N.
// Every failure except cancellation carries errors.CodeNetwork.
func (c *HTTPClient) FetchCharacters(ctx context.Context, page int) (CharacterPage, error) {
	if page < 1 {
		return CharacterPage{}, errors.Newf(errors.CodeInvalidInput, "page must be at least 1, got %d", page)
	}

	log := logging.FromContext(ctx)
	endpoint := c.baseURL + "/character?" + url.Values{"page": {strconv.Itoa(page)}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return CharacterPage{}, errors.Wrap(err, errors.CodeNetwork, "invalid character request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		log.Debug().Err(err).Int("page", page).Msg("character page request failed")
		return CharacterPage{}, errors.WithContext(
			errors.Wrap(err, errors.CodeNetwork, "could not reach the character service"),
			"page", page,
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Debug().Int("status", resp.StatusCode).Int("page", page).Msg("character page request returned non-OK status")
		return CharacterPage{}, errors.WithContextMap(
			errors.Newf(errors.CodeNetwork, "character service responded with status %d", resp.StatusCode),
			map[string]interface{}{"page": page, "status": resp.StatusCode},
		)
	}

	var body pageResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return CharacterPage{}, errors.WithContext(
			errors.Wrap(err, errors.CodeNetwork, "character service sent an unreadable response"),
			"page", page,
		)
	}

	result := body.toPage(page)
	log.Debug().
		Int("page", page).
		Int("items", len(result.Items)).
		Int("pages", result.TotalPages).
		Msg("character page fetched")
	return result, nil
}

// DownloadImage fetches url. Non-OK statuses and empty bodies yield nil bytes and no error.
func (c *HTTPClient) DownloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	if imageURL == "" {
		return nil, nil
	}

	log := logging.FromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, http.NoBody)
	if err != nil {
		return nil, errors.WithContext(errors.Wrap(err, errors.CodeNetwork, "invalid image request"), "url", imageURL)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("url", imageURL).Msg("image download failed")
		return nil, errors.WithContext(errors.Wrap(err, errors.CodeNetwork, "image download failed"), "url", imageURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Debug().Int("status", resp.StatusCode).Str("url", imageURL).Msg("image server returned non-OK status")
		return nil, nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize+1))
	if err != nil {
		return nil, errors.WithContext(errors.Wrap(err, errors.CodeNetwork, "image read failed"), "url", imageURL)
	}
	if len(data) > maxImageSize {
		return nil, errors.WithContextMap(
			errors.New(errors.CodeNetwork, "image exceeds maximum size"),
			map[string]interface{}{"url": imageURL, "limit": maxImageSize},
		)
	}
	if len(data) == 0 {
		log.Debug().Str("url", imageURL).Msg("empty image response")
		return nil, nil
	}

	log.Debug().Str("url", imageURL).Int("bytes", len(data)).Msg("image downloaded")
	return data, nil
}
