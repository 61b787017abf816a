package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sunoy2004/yanc-cms-sub001/internal/service"
)

// ContentResource is the admin handler set shared by every publishable content type.
type ContentResource interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Patch(c *gin.Context)
	Delete(c *gin.Context)
	BulkDelete(c *gin.Context)
	Publish(c *gin.Context)
	Reorder(c *gin.Context)
}

type contentService[T any, I any] interface {
	List(filter service.ListFilter) (service.ListResult[T], error)
	Get(id uint) (*T, error)
	Create(input I) (*T, error)
	Update(id uint, input I) (*T, error)
	Delete(id uint) error
	BulkDelete(ids []uint) (int64, error)
	SetPublished(id uint, published *bool) (*T, error)
	Reorder(ids []uint) error
	InputFrom(item *T) I
}

type contentResource[T any, I any] struct {
	name    string
	svc     contentService[T, I]
	payload func(*T) gin.H
}

type idsPayload struct {
	IDs []uint `json:"ids"`
}

type publishPayload struct {
	Published *bool `json:"published"`
}

func newContentResource[T any, I any](name string, svc contentService[T, I], payload func(*T) gin.H) *contentResource[T, I] {
	return &contentResource[T, I]{name: name, svc: svc, payload: payload}
}

// List returns one page of records for the dashboard table.
func (r *contentResource[T, I]) List(c *gin.Context) {
	result, err := r.svc.List(listFilterFromQuery(c))
	if err != nil {
		respondServiceError(c, err, fmt.Sprintf("failed to list %ss", r.name))
		return
	}
	c.JSON(http.StatusOK, listPayload(result, r.payload))
}

func (r *contentResource[T, I]) Get(c *gin.Context) {
	id, ok := r.idParam(c)
	if !ok {
		return
	}

	item, err := r.svc.Get(id)
	if err != nil {
		respondServiceError(c, err, fmt.Sprintf("failed to load %s", r.name))
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": r.payload(item)})
}

func (r *contentResource[T, I]) Create(c *gin.Context) {
	var input I
	if !bindJSON(c, &input, "invalid request body") {
		return
	}

	item, err := r.svc.Create(input)
	if err != nil {
		respondServiceError(c, err, fmt.Sprintf("failed to create %s", r.name))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": fmt.Sprintf("%s created", r.name), "item": r.payload(item)})
}

// Update replaces every field of the record.
func (r *contentResource[T, I]) Update(c *gin.Context) {
	id, ok := r.idParam(c)
	if !ok {
		return
	}

	var input I
	if !bindJSON(c, &input, "invalid request body") {
		return
	}

	item, err := r.svc.Update(id, input)
	if err != nil {
		respondServiceError(c, err, fmt.Sprintf("failed to update %s", r.name))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("%s updated", r.name), "item": r.payload(item)})
}

// Patch decodes the body over the stored record so only keys present in the request change.
func (r *contentResource[T, I]) Patch(c *gin.Context) {
	id, ok := r.idParam(c)
	if !ok {
		return
	}

	current, err := r.svc.Get(id)
	if err != nil {
		respondServiceError(c, err, fmt.Sprintf("failed to load %s", r.name))
		return
	}

	input := r.svc.InputFrom(current)
	if !bindJSON(c, &input, "invalid request body") {
		return
	}

	item, err := r.svc.Update(id, input)
	if err != nil {
		respondServiceError(c, err, fmt.Sprintf("failed to update %s", r.name))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("%s updated", r.name), "item": r.payload(item)})
}

func (r *contentResource[T, I]) Delete(c *gin.Context) {
	id, ok := r.idParam(c)
	if !ok {
		return
	}

	if err := r.svc.Delete(id); err != nil {
		respondServiceError(c, err, fmt.Sprintf("failed to delete %s", r.name))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("%s deleted", r.name)})
}

// BulkDelete removes the rows selected in the dashboard table.
func (r *contentResource[T, I]) BulkDelete(c *gin.Context) {
	var payload idsPayload
	if !bindJSON(c, &payload, "invalid request body") {
		return
	}

	deleted, err := r.svc.BulkDelete(payload.IDs)
	if err != nil {
		respondServiceError(c, err, fmt.Sprintf("failed to delete %ss", r.name))
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// Publish sets the publish flag; an empty body toggles it.
func (r *contentResource[T, I]) Publish(c *gin.Context) {
	id, ok := r.idParam(c)
	if !ok {
		return
	}

	var payload publishPayload
	if err := c.ShouldBindJSON(&payload); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := r.svc.SetPublished(id, payload.Published)
	if err != nil {
		respondServiceError(c, err, fmt.Sprintf("failed to publish %s", r.name))
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": r.payload(item)})
}

func (r *contentResource[T, I]) Reorder(c *gin.Context) {
	var payload idsPayload
	if !bindJSON(c, &payload, "invalid request body") {
		return
	}

	if err := r.svc.Reorder(payload.IDs); err != nil {
		respondServiceError(c, err, fmt.Sprintf("failed to reorder %ss", r.name))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order updated"})
}

func (r *contentResource[T, I]) idParam(c *gin.Context) (uint, bool) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("invalid %s id", r.name))
		return 0, false
	}
	return id, true
}
