package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/retailops/inventory-recon-api/internal/middleware"
	"github.com/retailops/inventory-recon-api/internal/models"
	appErrors "github.com/retailops/inventory-recon-api/pkg/errors"
)

// actorID extracts the authenticated user id from the request context.
func actorID(c *gin.Context) (int64, error) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return 0, appErrors.Clone(appErrors.ErrUnauthorized, "missing credentials")
	}
	return claims.UserID, nil
}

// pathID parses a positive int64 path parameter.
func pathID(c *gin.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid "+name)
	}
	return id, nil
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func queryInt64Ptr(c *gin.Context, name string) *int64 {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &value
}

func queryBool(c *gin.Context, name string) bool {
	value, err := strconv.ParseBool(c.Query(name))
	return err == nil && value
}

func queryBoolPtr(c *gin.Context, name string) *bool {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &value
}

func queryTimePtr(c *gin.Context, name string) *time.Time {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	if value, err := time.Parse(time.RFC3339, raw); err == nil {
		return &value
	}
	if value, err := time.Parse("2006-01-02", raw); err == nil {
		return &value
	}
	return nil
}

func pagination(page, pageSize, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}
	return &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
}
