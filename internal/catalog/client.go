package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/retailops/inventory-recon-api/internal/models"
	"github.com/retailops/inventory-recon-api/pkg/config"
	appErrors "github.com/retailops/inventory-recon-api/pkg/errors"
)

// Client talks to the external product catalog service. The workflow core
// uses it for taxonomy paths at ticket creation and for calculated stock and
// unit cost at count materialization.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient constructs a catalog client with a bounded request timeout.
func NewClient(cfg config.CatalogConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

// Lookup resolves a product code in the context of a store.
func (c *Client) Lookup(ctx context.Context, storeCode, productCode string) (*models.Product, error) {
	endpoint := fmt.Sprintf("%s/products/%s?store=%s",
		c.baseURL, url.PathEscape(productCode), url.QueryEscape(storeCode))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, appErrors.Dependency(err, "build catalog request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, appErrors.Dependency(err, "product catalog unreachable")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("product %s not found in catalog", productCode))
	default:
		return nil, appErrors.Clone(appErrors.ErrDependency, fmt.Sprintf("product catalog returned status %d", resp.StatusCode))
	}

	var product models.Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, appErrors.Dependency(err, "decode catalog response")
	}
	if product.Code == "" || product.Taxonomy.DivisionCode == "" {
		return nil, appErrors.Clone(appErrors.ErrDependency, fmt.Sprintf("catalog returned inconsistent data for %s", productCode))
	}

	return &product, nil
}
