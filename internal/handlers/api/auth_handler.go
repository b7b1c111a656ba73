package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/vhqtran/campushare/internal/audit"
	"github.com/vhqtran/campushare/internal/auth"
	"github.com/vhqtran/campushare/internal/common"
	"github.com/vhqtran/campushare/internal/middlewares/sessions"
	"github.com/vhqtran/campushare/internal/users"
	"github.com/vhqtran/campushare/model"
)

// AuthHandler serves login, logout and password change.
type AuthHandler struct {
	authService AuthService
	userService UserService
	auditLog    AuditLog
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type loginResponse struct {
	User                   UserInfoResponse `json:"user"`
	PasswordChangeRequired bool             `json:"passwordChangeRequired"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" form:"currentPassword"`
	NewPassword     string `json:"newPassword" form:"newPassword"`
}

func clientInfo(ctx *fiber.Ctx) common.ClientInfo {
	return common.ClientInfo{
		IP:        ctx.IP(),
		UserAgent: ctx.Get(fiber.HeaderUserAgent),
	}
}

func (h *AuthHandler) PostLogin(ctx *fiber.Ctx) error {
	var req loginRequest
	if err := ctx.BodyParser(&req); err != nil || req.Username == "" || req.Password == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(
			NewErrorResponse(fiber.StatusBadRequest, MsgInvalidRequest),
		)
	}

	user, err := h.authService.Authenticate(ctx.Context(), req.Username, req.Password, clientInfo(ctx))
	if err != nil {
		var lockedErr *auth.LockedError
		switch {
		case errors.Is(err, auth.ErrWrongCredentials):
			return ctx.Status(fiber.StatusUnauthorized).JSON(
				NewErrorResponse(fiber.StatusUnauthorized, MsgLoginWrongCredentials),
			)
		case errors.Is(err, auth.ErrAccountDisabled):
			return ctx.Status(fiber.StatusForbidden).JSON(
				NewErrorResponse(fiber.StatusForbidden, MsgAccountDeactivated),
			)
		case errors.As(err, &lockedErr):
			remaining := lockedErr.RetryAfter.Round(time.Second)
			minutes := int(remaining.Minutes())
			seconds := int(remaining.Seconds()) % 60
			return ctx.Status(fiber.StatusLocked).JSON(
				NewErrorResponse(fiber.StatusLocked, fmt.Sprintf(MsgAccountLocked, minutes, seconds)),
			)
		}
		return err
	}

	if _, err := sessions.Reset(ctx, sessions.SessionData{
		IP:              ctx.IP(),
		UserID:          user.ID,
		Username:        user.Username,
		Role:            user.Role,
		PasswordExpired: user.PasswordExpired,
		LoginTime:       time.Now(),
	}); err != nil {
		return err
	}

	return ctx.JSON(NewDataResponse(loginResponse{
		User:                   newUserInfoResponse(user),
		PasswordChangeRequired: user.PasswordExpired,
	}))
}

func (h *AuthHandler) PostLogout(ctx *fiber.Ctx) error {
	sess := sessions.Get(ctx)
	if sess.IsLoggedIn() {
		h.auditLog.Record(ctx.Context(), audit.Event{
			Action:  audit.ActionLogout,
			Outcome: audit.OutcomeSuccess,
			Actor:   &model.User{ID: sess.UserID, Username: sess.Username},
			IP:      ctx.IP(),
		})
	}
	if err := sessions.Destroy(ctx); err != nil {
		return err
	}
	return ctx.JSON(NewDataResponse(fiber.Map{"loggedOut": true}))
}

func (h *AuthHandler) PostChangePassword(ctx *fiber.Ctx) error {
	sess := sessions.Get(ctx)

	var req changePasswordRequest
	if err := ctx.BodyParser(&req); err != nil || req.NewPassword == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(
			NewErrorResponse(fiber.StatusBadRequest, MsgInvalidRequest),
		)
	}

	err := h.userService.ChangePassword(ctx.Context(), sess.UserID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, users.ErrWrongPassword) {
			h.auditLog.Record(ctx.Context(), audit.Event{
				Action:    audit.ActionPasswordChange,
				Outcome:   audit.OutcomeFailed,
				Actor:     &model.User{ID: sess.UserID, Username: sess.Username},
				Detail:    map[string]any{"reason": "wrong current password"},
				IP:        ctx.IP(),
				UserAgent: ctx.Get(fiber.HeaderUserAgent),
			})
			return ctx.Status(fiber.StatusBadRequest).JSON(
				NewErrorResponse(fiber.StatusBadRequest, MsgWrongCurrentPassword),
			)
		}
		return err
	}

	// leaving the forced-change state is permanent for this credential
	data := sess.SessionData
	data.PasswordExpired = false
	if err := sessions.Save(ctx, data); err != nil {
		return err
	}

	h.auditLog.Record(ctx.Context(), audit.Event{
		Action:    audit.ActionPasswordChange,
		Outcome:   audit.OutcomeSuccess,
		Actor:     &model.User{ID: sess.UserID, Username: sess.Username},
		IP:        ctx.IP(),
		UserAgent: ctx.Get(fiber.HeaderUserAgent),
	})
	return ctx.JSON(NewDataResponse(fiber.Map{"passwordChanged": true}))
}

func NewAuthHandler(authService AuthService, userService UserService, auditLog AuditLog) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		auditLog:    auditLog,
	}
}
