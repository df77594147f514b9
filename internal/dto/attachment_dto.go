package dto

type AttachmentResponse struct {
	ID          string  `json:"id"`
	ContractID  string  `json:"contract_id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	FileType    string  `json:"file_type"`
	FileSize    int64   `json:"file_size"`
	IsPublic    bool    `json:"is_public"`
	UploadedBy  *string `json:"uploaded_by_id"`
	UploadedAt  string  `json:"uploaded_at"`
}

// DownloadResponse carries a short-lived presigned URL.
type DownloadResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"` // seconds
}
