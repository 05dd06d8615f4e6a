package common

// Wire types of the HTTP API, shared by the server handlers and the client.

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type PingResponse struct {
	Status string `json:"status"`
}

const (
	PathRegister = "/register"
	PathLogin    = "/login"
	PathUser     = "/user"
	PathPing     = "/ping"
)
