package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Quockhanh0712/vielegalrag-demo/config"
	"github.com/Quockhanh0712/vielegalrag-demo/dao"
	"github.com/Quockhanh0712/vielegalrag-demo/errs"
	"github.com/Quockhanh0712/vielegalrag-demo/model"
	"github.com/Quockhanh0712/vielegalrag-demo/service/retrieval"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/embeddings"
)

// Service ingests uploaded documents: validate, extract, chunk, embed, index.
// Nothing becomes visible to retrieval until indexing fully completes.
type Service struct {
	Embedder embeddings.Embedder
	Store    *retrieval.QdrantStore
	Tracker  *ProgressTracker
}

func NewService(embedder embeddings.Embedder, store *retrieval.QdrantStore, tracker *ProgressTracker) *Service {
	return &Service{
		Embedder: embedder,
		Store:    store,
		Tracker:  tracker,
	}
}

type UploadInput struct {
	UploadID  string
	UserID    string
	SessionID string
	FileName  string
	Data      []byte
}

type UploadResult struct {
	DocID     string
	FileName  string
	FileSize  int64
	NumChunks int
}

// Validate rejects unsupported or oversized files before any processing.
func Validate(fileName string, size int64) error {
	ext := strings.ToLower(filepath.Ext(fileName))
	if !ExtensionAllowed(ext) {
		return errs.Ef(errs.KindValidation, "unsupported_file_type",
			"file type '%s' not supported, allowed: pdf, docx, txt", ext)
	}

	maxSize := config.Cfg.Upload.MaxFileSizeMB * 1024 * 1024
	if size > maxSize {
		return errs.Ef(errs.KindValidation, "file_too_large",
			"file too large, max: %dMB", config.Cfg.Upload.MaxFileSizeMB)
	}
	return nil
}

// Ingest runs the full pipeline for one upload. On any failure the saved file
// and any points already written for this doc_id are cleaned up, so a failed
// upload leaves no trace in retrieval.
func (s *Service) Ingest(ctx context.Context, in UploadInput) (*UploadResult, error) {
	if err := Validate(in.FileName, int64(len(in.Data))); err != nil {
		s.Tracker.Fail(in.UploadID, errs.MessageOf(err))
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(in.FileName))
	docID := fmt.Sprintf("user_%s_%s", in.UserID, strings.ReplaceAll(uuid.New().String(), "-", "")[:8])

	filePath := filepath.Join(config.Cfg.Upload.Dir, docID+ext)
	if err := os.MkdirAll(config.Cfg.Upload.Dir, 0o755); err != nil {
		s.Tracker.Fail(in.UploadID, "failed to store file")
		return nil, errs.Wrap(errs.KindInternal, "upload_failed", "failed to store file", err)
	}
	if err := os.WriteFile(filePath, in.Data, 0o644); err != nil {
		s.Tracker.Fail(in.UploadID, "failed to store file")
		return nil, errs.Wrap(errs.KindInternal, "upload_failed", "failed to store file", err)
	}

	result, err := s.index(ctx, in, docID)
	if err != nil {
		// 回滚：删除已保存文件和已写入的向量
		if removeErr := os.Remove(filePath); removeErr != nil {
			slog.Warn("Failed to remove file after ingest failure", "path", filePath, "err", removeErr)
		}
		if cleanErr := s.Store.DeleteUserDocument(context.WithoutCancel(ctx), docID); cleanErr != nil {
			slog.Warn("Failed to clean up vectors after ingest failure", "doc_id", docID, "err", cleanErr)
		}
		s.Tracker.Fail(in.UploadID, errs.MessageOf(err))
		return nil, err
	}

	s.Tracker.Finish(in.UploadID)
	return result, nil
}

func (s *Service) index(ctx context.Context, in UploadInput, docID string) (*UploadResult, error) {
	s.Tracker.Update(in.UploadID, StageExtracting, 20)

	ext := strings.ToLower(filepath.Ext(in.FileName))
	text, err := ExtractText(ctx, in.Data, ext)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, errs.Validation("no_text_content", "no text content found in file")
	}

	s.Tracker.Update(in.UploadID, StageChunking, 35)

	chunks, err := ChunkText(text)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, "chunking_failed", "failed to chunk document", err)
	}
	if len(chunks) == 0 {
		return nil, errs.Validation("no_text_content", "no text content found in file")
	}

	slog.Info("Document chunked", "doc_id", docID, "chunks", len(chunks))
	s.Tracker.Update(in.UploadID, StageEmbedding, 50)

	texts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		texts = append(texts, c.Text)
	}

	vectors, err := s.Embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, errs.Upstream("embedding_failed", "failed to embed document chunks", err)
	}
	if len(vectors) != len(chunks) {
		return nil, errs.Upstream("embedding_failed", "embedding count mismatch", nil)
	}

	s.Tracker.Update(in.UploadID, StageIndexing, 80)

	points := make([]retrieval.Point, 0, len(chunks))
	for i, chunk := range chunks {
		payload := map[string]any{
			"text":        chunk.Text,
			"doc_id":      docID,
			"user_id":     in.UserID,
			"session_id":  in.SessionID,
			"file_name":   in.FileName,
			"chunk_index": i,
			"source_type": retrieval.SourceTypeUserDocument,
		}
		if chunk.Dieu != "" {
			payload["dieu_number"] = chunk.Dieu
		}
		if chunk.Khoan != "" {
			payload["khoan_number"] = chunk.Khoan
		}

		points = append(points, retrieval.Point{
			ID:      uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s_chunk_%d", docID, i))).String(),
			Vector:  vectors[i],
			Payload: payload,
		})
	}

	if err := s.Store.UpsertUserPoints(ctx, points); err != nil {
		return nil, errs.Upstream("indexing_failed", "failed to store document vectors", err)
	}

	// DB元数据最后落库：文档只有在索引完成后才对外可见
	doc := &model.UserDocument{
		UserID:       in.UserID,
		SessionID:    in.SessionID,
		DocID:        docID,
		FileName:     in.FileName,
		FileSize:     int64(len(in.Data)),
		NumChunks:    len(chunks),
		UploadStatus: model.UploadStatusCompleted,
	}
	if err := dao.SaveUserDocument(doc); err != nil {
		return nil, errs.Wrap(errs.KindInternal, "upload_failed", "failed to save document metadata", err)
	}

	slog.Info("Document uploaded", "doc_id", docID, "chunks", len(chunks))

	return &UploadResult{
		DocID:     docID,
		FileName:  in.FileName,
		FileSize:  int64(len(in.Data)),
		NumChunks: len(chunks),
	}, nil
}

// Delete removes a document's vectors, metadata row and stored file. From the
// caller's perspective the document disappears atomically: vectors go first,
// so a search can never cite a document whose metadata is already gone.
func (s *Service) Delete(ctx context.Context, docID, userID string) error {
	doc, err := dao.GetUserDocumentByDocID(docID)
	if err != nil {
		return errs.Wrap(errs.KindInternal, "delete_failed", "failed to load document", err)
	}
	if doc == nil || doc.UserID != userID {
		return errs.NotFound("document_not_found", "document not found")
	}

	if err := s.Store.DeleteUserDocument(ctx, docID); err != nil {
		return errs.Upstream("delete_failed", "failed to delete document vectors", err)
	}

	if err := dao.DeleteUserDocumentByDocID(docID); err != nil {
		return errs.Wrap(errs.KindInternal, "delete_failed", "failed to delete document metadata", err)
	}

	for ext := range allowedExtensions {
		path := filepath.Join(config.Cfg.Upload.Dir, docID+ext)
		if err := os.Remove(path); err == nil {
			break
		}
	}

	slog.Info("Document deleted", "doc_id", docID)
	return nil
}
