package models

// LoginRequest represents admin credentials
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued access token
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// SuccessResponse is the acknowledgement returned by write endpoints without a body
type SuccessResponse struct {
	Success bool `json:"success"`
}
