package api

import (
	"time"

	"github.com/vhqtran/campushare/model"
)

type APIResponse struct {
	APIVersion string        `json:"apiVersion"`
	Data       any           `json:"data,omitempty"`
	Warning    string        `json:"warning,omitempty"`
	Error      *APIErrorInfo `json:"error,omitempty"`
}

type APIErrorInfo struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewDataResponse(data any) APIResponse {
	return APIResponse{
		APIVersion: "1",
		Data:       data,
	}
}

func NewErrorResponse(code int, message string) APIResponse {
	return APIResponse{
		APIVersion: "1",
		Error: &APIErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

type UserInfoResponse struct {
	UserID          uint      `json:"userId"`
	Username        string    `json:"username"`
	Role            string    `json:"role"`
	Disabled        bool      `json:"disabled"`
	PasswordExpired bool      `json:"passwordExpired"`
	CreatedAt       time.Time `json:"createdAt"`
}

func newUserInfoResponse(user *model.User) UserInfoResponse {
	return UserInfoResponse{
		UserID:          user.ID,
		Username:        user.Username,
		Role:            user.Role,
		Disabled:        user.Disabled,
		PasswordExpired: user.PasswordExpired,
		CreatedAt:       user.CreatedAt,
	}
}

type FileInfoResponse struct {
	Name        string    `json:"name"` // opaque stored name, the download key
	DisplayName string    `json:"displayName"`
	Owner       string    `json:"owner,omitempty"`
	Visibility  string    `json:"visibility"`
	Size        int64     `json:"size"`
	ContentType string    `json:"contentType,omitempty"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

func newFileInfoResponse(file *model.File) FileInfoResponse {
	resp := FileInfoResponse{
		Name:        file.StoredName,
		DisplayName: file.DisplayName,
		Visibility:  file.Visibility,
		Size:        file.Size,
		ContentType: file.ContentType,
		UploadedAt:  file.CreatedAt,
	}
	if file.Owner != nil {
		resp.Owner = file.Owner.Username
	}
	return resp
}

type AuditEventResponse struct {
	ID        uint64    `json:"id"`
	Username  string    `json:"username,omitempty"`
	Action    string    `json:"action"`
	Outcome   string    `json:"outcome"`
	Detail    string    `json:"detail,omitempty"`
	IP        string    `json:"ip"`
	Timestamp time.Time `json:"timestamp"`
}

func newAuditEventResponse(event *model.AuditEvent) AuditEventResponse {
	return AuditEventResponse{
		ID:        event.ID,
		Username:  event.Username,
		Action:    event.Action,
		Outcome:   event.Outcome,
		Detail:    event.Detail,
		IP:        event.IP,
		Timestamp: event.CreatedAt,
	}
}
