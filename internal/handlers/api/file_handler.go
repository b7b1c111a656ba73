package api

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/vhqtran/campushare/internal/files"
	"github.com/vhqtran/campushare/internal/middlewares/sessions"
	"github.com/vhqtran/campushare/internal/users"
	"github.com/vhqtran/campushare/model"
)

// FileHandler serves the file listing, uploads and integrity-gated downloads.
type FileHandler struct {
	fileService FileService
	userService UserService
}

// currentUser resolves the session to a fresh user row so that role changes
// and deactivation take effect without waiting for session expiry.
func (h *FileHandler) currentUser(ctx *fiber.Ctx) (*model.User, error) {
	sess := sessions.Get(ctx)
	user, err := h.userService.GetUserByID(ctx.Context(), sess.UserID)
	if errors.Is(err, users.ErrUserNotFound) {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Login required.")
	}
	if err != nil {
		return nil, err
	}
	if user.Disabled {
		return nil, fiber.NewError(fiber.StatusForbidden, MsgAccountDeactivated)
	}
	return user, nil
}

func (h *FileHandler) GetFiles(ctx *fiber.Ctx) error {
	user, err := h.currentUser(ctx)
	if err != nil {
		return err
	}

	visible, err := h.fileService.ListVisible(ctx.Context(), user)
	if err != nil {
		return err
	}

	infos := make([]FileInfoResponse, 0, len(visible))
	for _, file := range visible {
		infos = append(infos, newFileInfoResponse(file))
	}
	return ctx.JSON(NewDataResponse(infos))
}

func (h *FileHandler) PostFile(ctx *fiber.Ctx) error {
	user, err := h.currentUser(ctx)
	if err != nil {
		return err
	}

	header, err := ctx.FormFile("file")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(
			NewErrorResponse(fiber.StatusBadRequest, MsgInvalidRequest),
		)
	}
	content, err := header.Open()
	if err != nil {
		return err
	}
	defer content.Close()

	result, err := h.fileService.Store(ctx.Context(), user, files.Upload{
		DisplayName: header.Filename,
		ContentType: header.Header.Get(fiber.HeaderContentType),
		Visibility:  ctx.FormValue("visibility"),
		Size:        header.Size,
		Content:     content,
	}, clientInfo(ctx))
	if err != nil {
		switch {
		case errors.Is(err, files.ErrInvalidType):
			return ctx.Status(fiber.StatusBadRequest).JSON(
				NewErrorResponse(fiber.StatusBadRequest, MsgInvalidFileType),
			)
		case errors.Is(err, files.ErrFileTooLarge):
			return ctx.Status(fiber.StatusRequestEntityTooLarge).JSON(
				NewErrorResponse(fiber.StatusRequestEntityTooLarge, MsgFileTooLarge),
			)
		case errors.Is(err, files.ErrFileEmpty):
			return ctx.Status(fiber.StatusBadRequest).JSON(
				NewErrorResponse(fiber.StatusBadRequest, MsgFileEmpty),
			)
		}
		return err
	}

	resp := NewDataResponse(newFileInfoResponse(result.File))
	if result.Downgraded {
		switch user.Role {
		case model.RoleStudent:
			resp.Warning = MsgStudentVisibility
		case model.RoleTeacher:
			resp.Warning = MsgTeacherVisibility
		}
	}
	return ctx.Status(fiber.StatusCreated).JSON(resp)
}

func (h *FileHandler) GetFile(ctx *fiber.Ctx) error {
	user, err := h.currentUser(ctx)
	if err != nil {
		return err
	}

	result, err := h.fileService.Fetch(ctx.Context(), user, ctx.Params("name"), clientInfo(ctx))
	if err != nil {
		switch {
		case errors.Is(err, files.ErrFileNotFound), errors.Is(err, files.ErrUnsafePath):
			return ctx.Status(fiber.StatusNotFound).JSON(
				NewErrorResponse(fiber.StatusNotFound, MsgFileNotFound),
			)
		case errors.Is(err, files.ErrPermissionDenied):
			return ctx.Status(fiber.StatusForbidden).JSON(
				NewErrorResponse(fiber.StatusForbidden, MsgPermissionDenied),
			)
		case errors.Is(err, files.ErrIntegrityFailed):
			return ctx.Status(fiber.StatusConflict).JSON(
				NewErrorResponse(fiber.StatusConflict, MsgIntegrityBlocked),
			)
		}
		return err
	}

	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", result.File.DisplayName))
	if result.File.ContentType != "" {
		ctx.Set(fiber.HeaderContentType, result.File.ContentType)
	}
	return ctx.Send(result.Data)
}

func NewFileHandler(fileService FileService, userService UserService) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		userService: userService,
	}
}
