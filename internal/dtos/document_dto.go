package dtos

type ResumeRequest struct {
	Title     string `json:"title" binding:"required"`
	Content   string `json:"content"`
	IsDefault bool   `json:"isDefault"`
}

type CoverLetterRequest struct {
	Title   string  `json:"title" binding:"required"`
	Content string  `json:"content"`
	JobID   *string `json:"jobId"`
}
