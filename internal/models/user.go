package models

// LoginRequest represents login request payload
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenData is the payload of a successful login envelope
type TokenData struct {
	Token string `json:"token"`
}
