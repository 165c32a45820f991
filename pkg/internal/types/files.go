// Package types 定义 HTTP 接口的请求与响应结构.
package types

import "time"

// UploadedFile 描述一次上传的结果，字段名与 multer 风格的客户端保持一致.
type UploadedFile struct {
	FieldName    string `json:"fieldname"`
	OriginalName string `json:"originalname"`
	MimeType     string `json:"mimetype"`
	FileName     string `json:"filename"`
	Size         int64  `json:"size"`
}

// UploadResponse POST /upload 的成功响应.
type UploadResponse struct {
	Message string       `json:"message"`
	File    UploadedFile `json:"file"`
}

// FileDetailsResponse GET /files/:filename/details 的响应.
type FileDetailsResponse struct {
	FileName   string    `json:"filename"`
	Size       int64     `json:"size"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// MessageResponse 只有一条提示信息的响应.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse 错误响应.
type ErrorResponse struct {
	Error string `json:"error"`
}

// 固定的响应文案.
const (
	MsgUploaded       = "File uploaded successfully!"
	MsgDeleted        = "File deleted successfully!"
	MsgNoFile         = "No file uploaded."
	MsgFileNotFound   = "File not found."
	MsgInvalidName    = "Invalid file name."
	MsgTooLarge       = "File too large."
	MsgUnableToList   = "Unable to list files."
	MsgUploadFailed   = "Unable to store file."
	MsgDownloadFailed = "Unable to read file."
	MsgDetailsFailed  = "Unable to read file details."
	MsgDeleteFailed   = "Unable to delete file."
)
