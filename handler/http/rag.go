package http

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"gemrag/src/log"
)

const (
	defaultStoreName    = "store"
	unknownFilename     = "unknown_filename"
	uploadStatusSuccess = "success"
)

type uploadResponse struct {
	Status   string `json:"status" example:"success"`
	FileName string `json:"file_name" example:"Notes.TXT"`
	StoreID  string `json:"store_id" example:"fileSearchStores/notes-txt-1a2b3c"`
}

type chatRequest struct {
	Query   *string `json:"query" binding:"required"`
	StoreID *string `json:"store_id" binding:"required"`
}

// UploadFile godoc
// @Summary Upload a document and index it into a file search store
// @Description The store is looked up, or created, by the uploaded file's name.
// @Tags rag
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document to index"
// @Param store_name query string false "Accepted for compatibility, not used for routing"
// @Success 200 {object} uploadResponse
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /rag/upload-files [post]
func (h *Handler) UploadFile(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		sendError(c, http.StatusUnprocessableEntity, fmt.Errorf("file upload required: %w", err))
		return
	}
	storeName := c.DefaultQuery("store_name", c.DefaultPostForm("store_name", defaultStoreName))

	fileName := header.Filename
	if fileName == "" {
		fileName = unknownFilename
	}

	storeID, err := h.stageAndUpload(c, header, fileName)
	if err != nil {
		log.Error(err, "Error uploading file", "file", fileName, "store_name", storeName)
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	sendJSON(c, http.StatusOK, uploadResponse{
		Status:   uploadStatusSuccess,
		FileName: header.Filename,
		StoreID:  storeID,
	})
}

// stageAndUpload copies the upload to a staging path, hands it to the
// service and removes it again whatever the outcome.
func (h *Handler) stageAndUpload(c *gin.Context, header *multipart.FileHeader, fileName string) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	path, err := h.staging.Put(fileName, data)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := h.staging.Release(path); err != nil {
			log.Error(err, "Failed to remove staging file", "path", path)
		}
	}()

	return h.service.UploadFile(c.Request.Context(), path, fileName)
}

// Chat godoc
// @Summary Answer a question from a file search store
// @Description Responds with a two-element array: the answer text and the list of grounding chunks.
// @Tags rag
// @Accept json
// @Produce json
// @Param body body chatRequest true "Question and store"
// @Success 200 {array} object
// @Failure 422 {object} ErrorResponse
// @Failure 500 {string} string "Internal Server Error"
// @Router /rag/chat [post]
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusUnprocessableEntity, err)
		return
	}

	answer, err := h.service.Answer(c.Request.Context(), *req.Query, *req.StoreID)
	if err != nil {
		log.Error(err, "Chat request failed", "store", *req.StoreID)
		c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	sendJSON(c, http.StatusOK, []interface{}{answer.Text, answer.Citations})
}
