package dtos

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"displayName"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type SettingsRequest struct {
	DisplayName     *string `json:"displayName"`
	DefaultPageSize *int    `json:"defaultPageSize"`
	SalaryCurrency  *string `json:"salaryCurrency"`
	WeeklyGoal      *int    `json:"weeklyGoal"`
	EmailSync       *bool   `json:"emailSync"`
}

type SettingsResponse struct {
	Email           string `json:"email"`
	DisplayName     string `json:"displayName"`
	DefaultPageSize int    `json:"defaultPageSize"`
	SalaryCurrency  string `json:"salaryCurrency"`
	WeeklyGoal      int    `json:"weeklyGoal"`
	EmailSync       bool   `json:"emailSync"`
}
