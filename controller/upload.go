package controller

import (
	"io"
	"net/http"

	"github.com/Quockhanh0712/vielegalrag-demo/dao"
	"github.com/Quockhanh0712/vielegalrag-demo/errs"
	"github.com/Quockhanh0712/vielegalrag-demo/response"
	"github.com/Quockhanh0712/vielegalrag-demo/service/ingest"
	"github.com/Quockhanh0712/vielegalrag-demo/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const uploadIDHeader = "X-Upload-ID"

type UploadController struct {
	ingest *ingest.Service
}

func NewUploadController(svc *ingest.Service) *UploadController {
	return &UploadController{ingest: svc}
}

// Upload ingests one document synchronously. The response arrives once the
// document is fully indexed; progress is observable on the SSE endpoint via
// the X-Upload-ID header.
func (ctl *UploadController) Upload(c *gin.Context) {
	userID := c.PostForm("user_id")
	if userID == "" {
		fail(c, errs.Validation("missing_user_id", "user_id is required"))
		return
	}
	sessionID := c.PostForm("session_id")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		fail(c, errs.Validation("missing_file", "file is required"))
		return
	}

	// 在读取文件内容前先校验类型和大小
	if err := ingest.Validate(fileHeader.Filename, fileHeader.Size); err != nil {
		fail(c, err)
		return
	}

	uploadID := c.PostForm("upload_id")
	if uploadID == "" {
		uploadID = uuid.New().String()
	}
	c.Header(uploadIDHeader, uploadID)
	ctl.ingest.Tracker.Start(uploadID)

	file, err := fileHeader.Open()
	if err != nil {
		ctl.ingest.Tracker.Fail(uploadID, "failed to read file")
		fail(c, errs.Wrap(errs.KindInternal, "upload_failed", "failed to read file", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		ctl.ingest.Tracker.Fail(uploadID, "failed to read file")
		fail(c, errs.Wrap(errs.KindInternal, "upload_failed", "failed to read file", err))
		return
	}

	result, err := ctl.ingest.Ingest(c.Request.Context(), ingest.UploadInput{
		UploadID:  uploadID,
		UserID:    userID,
		SessionID: sessionID,
		FileName:  fileHeader.Filename,
		Data:      data,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.UploadResponse{
		Status:    "success",
		DocID:     result.DocID,
		FileName:  result.FileName,
		FileSize:  result.FileSize,
		NumChunks: result.NumChunks,
		Message:   "document indexed successfully",
	})
}

// Progress streams upload progress as SSE events until the final event.
func (ctl *UploadController) Progress(c *gin.Context) {
	uploadID := c.Param("upload_id")

	events, cancel, ok := ctl.ingest.Tracker.Subscribe(uploadID)
	if !ok {
		fail(c, errs.NotFound("upload_not_found", "upload not found or already finished"))
		return
	}
	defer cancel()

	utils.SetSSEHeaders(c)

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case event, open := <-events:
			if !open {
				utils.SendSSEMessage(c, utils.EventDone, gin.H{"upload_id": uploadID})
				return
			}
			if event.Stage == ingest.StageFailed {
				utils.SendSSEMessage(c, utils.EventError, event)
				continue
			}
			utils.SendSSEMessage(c, utils.EventProgress, event)
		}
	}
}

func (ctl *UploadController) GetDocuments(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		userID = c.Query("user_id")
	}
	if userID == "" {
		fail(c, errs.Validation("missing_user_id", "user_id is required"))
		return
	}

	docs, err := dao.GetUserDocumentsByUserID(userID)
	if err != nil {
		fail(c, errs.Wrap(errs.KindInternal, "list_documents_failed", "failed to list documents", err))
		return
	}

	resp := response.GetDocumentsResponse{
		Documents: make([]response.DocumentResponse, 0, len(docs)),
		Total:     len(docs),
	}
	for _, d := range docs {
		resp.Documents = append(resp.Documents, response.DocumentResponse{
			DocID:        d.DocID,
			FileName:     d.FileName,
			FileSize:     d.FileSize,
			NumChunks:    d.NumChunks,
			UploadStatus: string(d.UploadStatus),
			CreatedAt:    d.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, resp)
}

func (ctl *UploadController) DeleteDocument(c *gin.Context) {
	docID := c.Param("doc_id")
	userID := c.Query("user_id")
	if userID == "" {
		fail(c, errs.Validation("missing_user_id", "user_id is required"))
		return
	}

	if err := ctl.ingest.Delete(c.Request.Context(), docID, userID); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, response.DeleteDocumentResponse{
		Status: "deleted",
		DocID:  docID,
	})
}
