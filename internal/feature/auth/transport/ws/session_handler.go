// Package ws はauthフィーチャーのWebSocketトランスポートを提供します。
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin/binding"

	"investhorizon_backend/internal/feature/auth/domain/entity"
	"investhorizon_backend/internal/feature/auth/transport/ws/dto"
	"investhorizon_backend/internal/feature/auth/usecase"
)

// クライアントに返す固定メッセージ。内部の詳細は含めません。
const (
	MsgSignupSuccessful   = "Signup successful"
	MsgLoginSuccessful    = "Login successful"
	MsgEmailInUse         = "Email already in use"
	MsgInvalidCredentials = "Invalid email or password"
	MsgInvalidRequest     = "Invalid request"
	MsgDatabaseError      = "Database error"
	MsgInternalError      = "Internal server error"
)

// ErrMalformedMessage is returned when a frame is not valid JSON or lacks required fields.
var ErrMalformedMessage = errors.New("malformed session message")

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（transport）が定義します。
type AuthUsecase interface {
	Signup(ctx context.Context, username, email, password string) (*entity.User, error)
	Login(ctx context.Context, email, password string) (*entity.User, error)
}

// SessionHandler はWebSocketの1フレームを1つのsignup/loginトランザクションとして処理します。
// フレーム間で状態は保持しません。
type SessionHandler struct {
	auth   AuthUsecase
	logger *slog.Logger
}

// NewSessionHandler はSessionHandlerの新しいインスタンスを生成します。
// loggerがnilの場合はslog.Default()を使用します。
func NewSessionHandler(auth AuthUsecase, logger *slog.Logger) *SessionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionHandler{auth: auth, logger: logger}
}

// Handle はフレームを処理してレスポンスを返します。
// 未知のtypeのフレームは無視し、nilを返します。
func (h *SessionHandler) Handle(ctx context.Context, raw []byte) *dto.SessionResponse {
	var env dto.Envelope
	if err := decode(raw, &env); err != nil {
		h.logger.WarnContext(ctx, "session message rejected", "error", err)
		return dto.Error(MsgInvalidRequest)
	}

	switch env.Type {
	case dto.TypeSignup:
		return h.signup(ctx, raw)
	case dto.TypeLogin:
		return h.login(ctx, raw)
	default:
		h.logger.WarnContext(ctx, "unknown session message type ignored", "type", env.Type)
		return nil
	}
}

func (h *SessionHandler) signup(ctx context.Context, raw []byte) *dto.SessionResponse {
	var req dto.SignupRequest
	if err := decodeAndValidate(raw, &req); err != nil {
		h.logger.WarnContext(ctx, "signup validation failed", "error", err)
		return dto.Error(MsgInvalidRequest)
	}

	user, err := h.auth.Signup(ctx, req.Username, req.Email, req.Password)
	switch {
	case err == nil:
		h.logger.InfoContext(ctx, "user signup successful", "user_id", user.ID, "email", req.Email)
		return dto.Success(MsgSignupSuccessful)
	case errors.Is(err, usecase.ErrEmailAlreadyExists):
		h.logger.InfoContext(ctx, "signup rejected: email in use", "email", req.Email)
		return dto.Error(MsgEmailInUse)
	case errors.Is(err, usecase.ErrPasswordTooLong):
		h.logger.WarnContext(ctx, "signup rejected: password too long", "email", req.Email)
		return dto.Error(MsgInvalidRequest)
	case errors.Is(err, usecase.ErrStore):
		h.logger.ErrorContext(ctx, "signup failed", "error", err, "email", req.Email)
		return dto.Error(MsgDatabaseError)
	default:
		h.logger.ErrorContext(ctx, "signup failed", "error", err, "email", req.Email)
		return dto.Error(MsgInternalError)
	}
}

func (h *SessionHandler) login(ctx context.Context, raw []byte) *dto.SessionResponse {
	var req dto.LoginRequest
	if err := decodeAndValidate(raw, &req); err != nil {
		h.logger.WarnContext(ctx, "login validation failed", "error", err)
		return dto.Error(MsgInvalidRequest)
	}

	user, err := h.auth.Login(ctx, req.Email, req.Password)
	switch {
	case err == nil:
		h.logger.InfoContext(ctx, "user login successful", "user_id", user.ID, "email", req.Email)
		return dto.LoginSuccess(MsgLoginSuccessful, user.ID, user.Username)
	case errors.Is(err, usecase.ErrInvalidCredentials):
		// ユーザー列挙攻撃を防止するため、未登録とパスワード不一致を区別しない
		h.logger.InfoContext(ctx, "login failed", "email", req.Email)
		return dto.Error(MsgInvalidCredentials)
	case errors.Is(err, usecase.ErrStore):
		h.logger.ErrorContext(ctx, "login failed", "error", err, "email", req.Email)
		return dto.Error(MsgDatabaseError)
	default:
		h.logger.ErrorContext(ctx, "login failed", "error", err, "email", req.Email)
		return dto.Error(MsgInternalError)
	}
}

func decode(raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return nil
}

// decodeAndValidate はJSONをデコードし、bindingタグで必須項目を検証します。
func decodeAndValidate(raw []byte, v any) error {
	if err := decode(raw, v); err != nil {
		return err
	}
	if err := binding.Validator.ValidateStruct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return nil
}
