package models

import "github.com/golang-jwt/jwt/v5"

// RegisterRequest carries the registration form.
type RegisterRequest struct {
	RegistrationID  string `json:"ra" form:"ra" validate:"required"`
	FullName        string `json:"nome_completo" form:"nome_completo" validate:"required"`
	Email           string `json:"email" form:"email" validate:"required"`
	NationalID      string `json:"cpf" form:"cpf" validate:"required"`
	Program         string `json:"curso" form:"curso" validate:"required"`
	Password        string `json:"password" form:"password" validate:"required,eqfield=ConfirmPassword,min=6"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

// LoginRequest carries the login form.
type LoginRequest struct {
	RegistrationID string `json:"ra" form:"ra" validate:"required"`
	Password       string `json:"password" form:"password" validate:"required"`
}

// LoginResponse returns the session token and user info.
type LoginResponse struct {
	Token     string   `json:"token"`
	ExpiresIn int64    `json:"expires_in"`
	User      UserInfo `json:"user"`
}

// ChatMessageRequest is a question sent to the assistant.
type ChatMessageRequest struct {
	Question string `json:"pergunta" form:"pergunta"`
}

// ChatMessageResponse is the formatted answer.
type ChatMessageResponse struct {
	Answer  string `json:"resposta"`
	Success bool   `json:"sucesso"`
}

// SessionClaims is the signed session cookie payload.
type SessionClaims struct {
	SessionID      string `json:"sid"`
	RegistrationID string `json:"ra"`
	FullName       string `json:"nome"`
	Program        string `json:"curso"`
	jwt.RegisteredClaims
}
