package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/platoo/order-service/models"
	"github.com/shopspring/decimal"
)

var (
	ErrMenuItemNotFound      = errors.New("menu item not found")
	ErrMalformedCatalogReply = errors.New("malformed catalog response")
)

var menuItemIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// MenuLookup resolves a catalog identifier to its current entry.
type MenuLookup interface {
	LookupMenuItem(ctx context.Context, id string) (models.CatalogEntry, error)
}

// CatalogClient reads menu items from the menu service over HTTP.
type CatalogClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewCatalogClient builds a client for baseURL. A nil httpClient gets one
// with the given timeout.
func NewCatalogClient(baseURL string, httpClient *http.Client, timeout time.Duration) *CatalogClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &CatalogClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// LookupMenuItem performs GET {base}/items/{id}. Malformed identifiers are
// reported as ErrMenuItemNotFound without calling the service.
func (c *CatalogClient) LookupMenuItem(ctx context.Context, id string) (models.CatalogEntry, error) {
	id = strings.TrimSpace(id)
	if !menuItemIDPattern.MatchString(id) {
		return models.CatalogEntry{}, ErrMenuItemNotFound
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/items/"+url.PathEscape(id), nil)
	if err != nil {
		return models.CatalogEntry{}, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.CatalogEntry{}, fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		io.Copy(io.Discard, resp.Body)
		return models.CatalogEntry{}, ErrMenuItemNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		io.Copy(io.Discard, resp.Body)
		return models.CatalogEntry{}, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	var reply catalogReply
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&reply); err != nil {
		return models.CatalogEntry{}, fmt.Errorf("%w: %v", ErrMalformedCatalogReply, err)
	}
	return reply.entry(id)
}

// catalogReply tolerates a missing availability flag, which means available.
type catalogReply struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	IsAvailable *bool            `json:"is_available"`
}

func (r catalogReply) entry(requestedID string) (models.CatalogEntry, error) {
	if r.Price == nil {
		return models.CatalogEntry{}, fmt.Errorf("%w: missing price", ErrMalformedCatalogReply)
	}
	if r.Price.IsNegative() {
		return models.CatalogEntry{}, fmt.Errorf("%w: negative price %s", ErrMalformedCatalogReply, r.Price)
	}

	entry := models.CatalogEntry{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       *r.Price,
		IsAvailable: r.IsAvailable == nil || *r.IsAvailable,
	}
	if entry.ID == "" {
		entry.ID = requestedID
	}
	return entry, nil
}
