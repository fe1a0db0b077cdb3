package dto

type UploadedFileDTO struct {
	Id       string `json:"id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	IsActive bool   `json:"isActive"`
}

type GetUploadedFilesResponse struct {
	Files []UploadedFileDTO `json:"files" validate:"dive"`
}

type UploadFileResponse struct {
	Status   int    `json:"status,omitempty"`
	FileId   string `json:"file_id" validate:"required"`
	Filename string `json:"filename" validate:"required"`
}

type ToggleFileStatusRequest struct {
	FileId   string `json:"file_id" validate:"required"`
	IsActive *bool  `json:"is_active" validate:"required"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
