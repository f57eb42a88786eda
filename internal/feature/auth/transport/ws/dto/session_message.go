// Package dto defines the JSON frames exchanged over the auth WebSocket.
package dto

// Message types accepted on the auth WebSocket.
const (
	TypeSignup = "signup"
	TypeLogin  = "login"
)

// Response status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is decoded first to find out which request a frame carries.
type Envelope struct {
	Type string `json:"type"`
}

// SignupRequest is a {"type":"signup"} frame.
type SignupRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is a {"type":"login"} frame.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SessionResponse is sent back for every handled frame.
// UserID and Username are only set on a successful login.
type SessionResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	UserID   uint   `json:"userId,omitempty"`
	Username string `json:"username,omitempty"`
}

// Success builds a success response.
func Success(message string) *SessionResponse {
	return &SessionResponse{Status: StatusSuccess, Message: message}
}

// LoginSuccess builds a success response carrying the user's identity.
func LoginSuccess(message string, userID uint, username string) *SessionResponse {
	return &SessionResponse{Status: StatusSuccess, Message: message, UserID: userID, Username: username}
}

// Error builds an error response.
func Error(message string) *SessionResponse {
	return &SessionResponse{Status: StatusError, Message: message}
}
