package handler

import (
	"CloudStash/internal/dto"
	"CloudStash/internal/service"
	"CloudStash/internal/storage"
	"CloudStash/utils"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// FileHandler serves the dashboard and the file lifecycle endpoints.
type FileHandler struct {
	files *service.FileLifecycle
}

// NewFileHandler wires the file endpoints.
func NewFileHandler(files *service.FileLifecycle) *FileHandler {
	return &FileHandler{files: files}
}

// failLifecycle maps lifecycle errors onto HTTP responses. Not-found
// answers are identical for missing and not-owned files; store errors
// surface as a generic upstream failure.
func failLifecycle(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrFileNotFound):
		utils.FailStatus(c, http.StatusNotFound, service.ErrFileNotFound)
	case errors.Is(err, service.ErrQuotaExceeded):
		utils.FailStatus(c, http.StatusRequestEntityTooLarge, service.ErrQuotaExceeded)
	case errors.Is(err, storage.ErrObjectNotFound),
		errors.Is(err, storage.ErrStoreAccessDenied),
		errors.Is(err, storage.ErrStoreUnavailable):
		utils.FailStatus(c, http.StatusBadGateway, errors.New("storage error"))
	default:
		utils.FailStatus(c, http.StatusInternalServerError, err)
	}
}

// Dashboard returns the caller's files plus quota accounting.
func (h *FileHandler) Dashboard(c *gin.Context) {
	userID := c.MustGet("user_id").(uint64)

	files, err := h.files.ListFiles(c.Request.Context(), userID)
	if err != nil {
		failLifecycle(c, err)
		return
	}
	used, quota, err := h.files.Usage(userID)
	if err != nil {
		failLifecycle(c, err)
		return
	}

	infos := make([]dto.FileInfo, 0, len(files))
	for _, f := range files {
		infos = append(infos, dto.FileInfo{
			ID:         f.ID,
			Filename:   f.Filename,
			SizeBytes:  f.SizeBytes,
			UploadedAt: f.UploadedAt,
		})
	}
	utils.Success(c, dto.DashboardResponse{
		Files:      infos,
		UsedBytes:  used,
		QuotaBytes: quota,
	})
}

// Upload stores a multipart file for the caller.
func (h *FileHandler) Upload(c *gin.Context) {
	userID := c.MustGet("user_id").(uint64)

	fh, err := c.FormFile("file")
	if err != nil || fh.Filename == "" {
		utils.Fail(c, errors.New("no file selected"))
		return
	}
	src, err := fh.Open()
	if err != nil {
		utils.FailStatus(c, http.StatusInternalServerError, err)
		return
	}
	defer src.Close()

	// The whole upload is buffered before the quota check; a request
	// larger than the quota is still read completely first. Known
	// limitation of the buffered design.
	data, err := io.ReadAll(src)
	if err != nil {
		utils.FailStatus(c, http.StatusInternalServerError, err)
		return
	}

	rec, used, err := h.files.Upload(c.Request.Context(), userID, fh.Filename, data)
	if err != nil {
		failLifecycle(c, err)
		return
	}
	utils.Success(c, dto.UploadResponse{
		FileID:    rec.ID,
		Filename:  rec.Filename,
		SizeBytes: rec.SizeBytes,
		UsedBytes: used,
	})
}

// Download streams a file back with its original name as attachment.
func (h *FileHandler) Download(c *gin.Context) {
	userID := c.MustGet("user_id").(uint64)
	fileID, err := strconv.ParseUint(c.Param("fileID"), 10, 64)
	if err != nil {
		utils.FailStatus(c, http.StatusNotFound, service.ErrFileNotFound)
		return
	}

	object, rec, err := h.files.Download(c.Request.Context(), userID, fileID)
	if err != nil {
		failLifecycle(c, err)
		return
	}
	defer object.Close()

	fileName := utils.SanitizeHeaderFilename(rec.Filename)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", fileName))
	c.Header("Content-Type", service.ContentTypeFor(rec.Filename))
	c.Header("Content-Length", fmt.Sprintf("%d", rec.SizeBytes))

	if _, err := io.Copy(c.Writer, object); err != nil {
		log.Println("download error:", err)
	}
}

// Delete removes a file and returns the new counter value.
func (h *FileHandler) Delete(c *gin.Context) {
	userID := c.MustGet("user_id").(uint64)
	fileID, err := strconv.ParseUint(c.Param("fileID"), 10, 64)
	if err != nil {
		utils.FailStatus(c, http.StatusNotFound, service.ErrFileNotFound)
		return
	}

	used, err := h.files.Delete(c.Request.Context(), userID, fileID)
	if err != nil {
		failLifecycle(c, err)
		return
	}
	utils.Success(c, dto.DeleteResponse{UsedBytes: used})
}
