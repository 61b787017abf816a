package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sunoy2004/yanc-cms-sub001/internal/service"
)

const maxPublicLimit = 100

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

func parsePositiveInt(value string, fallback int) int {
	num, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || num <= 0 {
		return fallback
	}
	return num
}

// listFilterFromQuery reads the DataTable controls: ?q=&status=&page=&per_page=
func listFilterFromQuery(c *gin.Context) service.ListFilter {
	return service.ListFilter{
		Search:  c.Query("q"),
		Status:  c.Query("status"),
		Page:    parsePositiveInt(c.Query("page"), 1),
		PerPage: parsePositiveInt(c.Query("per_page"), 0),
	}
}

func publicLimit(c *gin.Context) int {
	limit := parsePositiveInt(c.Query("limit"), 0)
	if limit > maxPublicLimit {
		return maxPublicLimit
	}
	return limit
}

func listPayload[T any](result service.ListResult[T], payload func(*T) gin.H) gin.H {
	items := make([]gin.H, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, payload(&result.Items[i]))
	}
	return gin.H{
		"items":       items,
		"total":       result.Total,
		"page":        result.Page,
		"per_page":    result.PerPage,
		"total_pages": result.TotalPages,
	}
}

func itemsPayload[T any](items []T, payload func(*T) gin.H) []gin.H {
	out := make([]gin.H, 0, len(items))
	for i := range items {
		out = append(out, payload(&items[i]))
	}
	return out
}

// respondServiceError maps service errors onto status codes. Unknown errors are
// attached to the context for the request logger and answered with fallback.
func respondServiceError(c *gin.Context, err error, fallback string) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": service.ErrInvalidInput.Error(), "fields": validationErr.Fields})
	case errors.Is(err, service.ErrNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		respondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrTokenExpired):
		respondError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrMediaTooLarge):
		respondError(c, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, service.ErrMediaTypeNotAllowed):
		respondError(c, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, service.ErrMediaEmpty):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrStorageUnavailable):
		_ = c.Error(err)
		respondError(c, http.StatusBadGateway, service.ErrStorageUnavailable.Error())
	default:
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, fallback)
	}
}
