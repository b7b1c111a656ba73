package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/vhqtran/campushare/internal/audit"
	"github.com/vhqtran/campushare/internal/middlewares/sessions"
	"github.com/vhqtran/campushare/internal/users"
	"github.com/vhqtran/campushare/model"
)

// AdminHandler serves account administration and the audit log view.
type AdminHandler struct {
	userService UserService
	auditLog    AuditLog
	auditViewer AuditViewer
}

type createUserRequest struct {
	Username     string `json:"username" form:"username"`
	Role         string `json:"role" form:"role"`
	TempPassword string `json:"tempPassword" form:"tempPassword"`
}

type setUserStatusRequest struct {
	Disabled bool `json:"disabled" form:"disabled"`
}

func sessionActor(ctx *fiber.Ctx) *model.User {
	sess := sessions.Get(ctx)
	return &model.User{ID: sess.UserID, Username: sess.Username, Role: sess.Role}
}

func parseUserID(ctx *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(ctx.Params("id"), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, MsgInvalidRequest)
	}
	return uint(id), nil
}

func (h *AdminHandler) GetUsers(ctx *fiber.Ctx) error {
	list, err := h.userService.ListUsers(ctx.Context())
	if err != nil {
		return err
	}
	infos := make([]UserInfoResponse, 0, len(list))
	for _, user := range list {
		infos = append(infos, newUserInfoResponse(user))
	}
	return ctx.JSON(NewDataResponse(infos))
}

func (h *AdminHandler) PostUser(ctx *fiber.Ctx) error {
	var req createUserRequest
	if err := ctx.BodyParser(&req); err != nil || req.Username == "" || req.TempPassword == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(
			NewErrorResponse(fiber.StatusBadRequest, MsgInvalidRequest),
		)
	}

	user, err := h.userService.CreateUser(ctx.Context(), users.CreateUserOptions{
		Username:     req.Username,
		Role:         req.Role,
		TempPassword: req.TempPassword,
	})
	if err != nil {
		switch {
		case errors.Is(err, users.ErrUsernameTaken):
			return ctx.Status(fiber.StatusConflict).JSON(
				NewErrorResponse(fiber.StatusConflict, MsgUsernameTaken),
			)
		case errors.Is(err, users.ErrInvalidRole):
			return ctx.Status(fiber.StatusBadRequest).JSON(
				NewErrorResponse(fiber.StatusBadRequest, MsgInvalidRole),
			)
		}
		return err
	}

	h.auditLog.Record(ctx.Context(), audit.Event{
		Action:    audit.ActionUserCreated,
		Outcome:   audit.OutcomeSuccess,
		Actor:     sessionActor(ctx),
		Detail:    map[string]any{"username": user.Username, "role": user.Role},
		IP:        ctx.IP(),
		UserAgent: ctx.Get(fiber.HeaderUserAgent),
	})
	return ctx.Status(fiber.StatusCreated).JSON(NewDataResponse(newUserInfoResponse(user)))
}

func (h *AdminHandler) PostUserStatus(ctx *fiber.Ctx) error {
	userID, err := parseUserID(ctx)
	if err != nil {
		return err
	}
	var req setUserStatusRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(
			NewErrorResponse(fiber.StatusBadRequest, MsgInvalidRequest),
		)
	}

	sess := sessions.Get(ctx)
	user, err := h.userService.SetDisabled(ctx.Context(), sess.UserID, userID, req.Disabled)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrSelfDeactivation):
			return ctx.Status(fiber.StatusBadRequest).JSON(
				NewErrorResponse(fiber.StatusBadRequest, MsgSelfDeactivation),
			)
		case errors.Is(err, users.ErrUserNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(
				NewErrorResponse(fiber.StatusNotFound, MsgUserNotFound),
			)
		}
		return err
	}

	action := audit.ActionUserActivated
	if req.Disabled {
		action = audit.ActionUserDeactivated
	}
	h.auditLog.Record(ctx.Context(), audit.Event{
		Action:    action,
		Outcome:   audit.OutcomeSuccess,
		Actor:     sessionActor(ctx),
		Detail:    map[string]any{"username": user.Username},
		IP:        ctx.IP(),
		UserAgent: ctx.Get(fiber.HeaderUserAgent),
	})
	return ctx.JSON(NewDataResponse(newUserInfoResponse(user)))
}

func (h *AdminHandler) PostUserResetPassword(ctx *fiber.Ctx) error {
	userID, err := parseUserID(ctx)
	if err != nil {
		return err
	}

	user, tempPassword, err := h.userService.ResetPassword(ctx.Context(), userID)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(
				NewErrorResponse(fiber.StatusNotFound, MsgUserNotFound),
			)
		}
		return err
	}

	h.auditLog.Record(ctx.Context(), audit.Event{
		Action:    audit.ActionPasswordReset,
		Outcome:   audit.OutcomeSuccess,
		Actor:     sessionActor(ctx),
		Detail:    map[string]any{"username": user.Username},
		IP:        ctx.IP(),
		UserAgent: ctx.Get(fiber.HeaderUserAgent),
	})
	return ctx.JSON(NewDataResponse(fiber.Map{
		"username":     user.Username,
		"tempPassword": tempPassword,
	}))
}

func (h *AdminHandler) GetAuditEvents(ctx *fiber.Ctx) error {
	filter := audit.ListFilter{
		Action:   ctx.Query("action"),
		Username: ctx.Query("username"),
		Limit:    ctx.QueryInt("limit"),
		Offset:   ctx.QueryInt("offset"),
	}
	events, err := h.auditViewer.ListEvents(ctx.Context(), filter)
	if err != nil {
		return err
	}
	infos := make([]AuditEventResponse, 0, len(events))
	for _, event := range events {
		infos = append(infos, newAuditEventResponse(event))
	}
	return ctx.JSON(NewDataResponse(infos))
}

func NewAdminHandler(userService UserService, auditLog AuditLog, auditViewer AuditViewer) *AdminHandler {
	return &AdminHandler{
		userService: userService,
		auditLog:    auditLog,
		auditViewer: auditViewer,
	}
}
