package response

import "time"

type DocumentResponse struct {
	DocID        string    `json:"doc_id"`
	FileName     string    `json:"file_name"`
	FileSize     int64     `json:"file_size"`
	NumChunks    int       `json:"num_chunks"`
	UploadStatus string    `json:"upload_status"`
	CreatedAt    time.Time `json:"created_at"`
}

type GetDocumentsResponse struct {
	Documents []DocumentResponse `json:"documents"`
	Total     int                `json:"total"`
}

type UploadResponse struct {
	Status    string `json:"status"`
	DocID     string `json:"doc_id"`
	FileName  string `json:"file_name"`
	FileSize  int64  `json:"file_size"`
	NumChunks int    `json:"num_chunks"`
	Message   string `json:"message"`
}

type DeleteDocumentResponse struct {
	Status string `json:"status"`
	DocID  string `json:"doc_id"`
}
