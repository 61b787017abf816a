package handler

import (
	"errors"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sunoy2004/yanc-cms-sub001/internal/service"
)

const (
	// multipart framing allowance on top of the file size limit
	multipartOverhead = 1 << 20

	// uploaded SVG may carry script; render it as an inert image only
	svgContentSecurityPolicy = "default-src 'none'; style-src 'unsafe-inline'; sandbox"
)

type mediaAltPayload struct {
	AltText string `json:"alt_text"`
}

// ListMedia returns one page of the media library. ?type=image narrows by content type.
func (a *API) ListMedia(c *gin.Context) {
	filter := listFilterFromQuery(c)
	filter.Status = c.Query("type")

	result, err := a.media.List(filter)
	if err != nil {
		respondServiceError(c, err, "failed to list media")
		return
	}
	c.JSON(http.StatusOK, listPayload(result, mediaPayload))
}

// UploadMedia 处理多媒体上传请求并转存到对象存储
func (a *API) UploadMedia(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, a.media.MaxBytes()+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondServiceError(c, service.ErrMediaTooLarge, "")
			return
		}
		respondError(c, http.StatusBadRequest, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "failed to read uploaded file")
		return
	}
	defer file.Close()

	item, err := a.media.Upload(c.Request.Context(), service.MediaUpload{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Body:        file,
		AltText:     c.PostForm("alt_text"),
		UploadedBy:  c.GetUint(contextUserIDKey),
	})
	if err != nil {
		respondServiceError(c, err, "failed to upload file")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "file uploaded", "item": mediaPayload(item)})
}

func (a *API) GetMedia(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid media id")
		return
	}

	item, err := a.media.Get(id)
	if err != nil {
		respondServiceError(c, err, "failed to load media")
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": mediaPayload(item)})
}

// UpdateMedia changes the alternative text.
func (a *API) UpdateMedia(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid media id")
		return
	}

	var payload mediaAltPayload
	if !bindJSON(c, &payload, "invalid request body") {
		return
	}

	item, err := a.media.UpdateAlt(id, payload.AltText)
	if err != nil {
		respondServiceError(c, err, "failed to update media")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "media updated", "item": mediaPayload(item)})
}

func (a *API) DeleteMedia(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid media id")
		return
	}

	if err := a.media.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "failed to delete media")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "media deleted"})
}

// RawMedia streams the stored object, for buckets that are not publicly readable.
func (a *API) RawMedia(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid media id")
		return
	}

	body, item, err := a.media.Open(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "failed to read media")
		return
	}
	defer body.Close()

	headers := map[string]string{
		"Content-Disposition":    mime.FormatMediaType("inline", map[string]string{"filename": item.FileName}),
		"X-Content-Type-Options": "nosniff",
		"Cache-Control":          "private, max-age=300",
	}
	if item.ContentType == "image/svg+xml" {
		headers["Content-Security-Policy"] = svgContentSecurityPolicy
	}
	c.DataFromReader(http.StatusOK, item.Size, item.ContentType, body, headers)
}

// UploadHeaders guards files served straight from the local upload directory.
func UploadHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		if strings.EqualFold(path.Ext(c.Request.URL.Path), ".svg") {
			c.Header("Content-Security-Policy", svgContentSecurityPolicy)
		}
		c.Next()
	}
}
