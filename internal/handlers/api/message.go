package api

const (
	MsgInvalidRequest         = "Invalid request. Please try again."
	MsgLoginWrongCredentials  = "Invalid username or password."
	MsgAccountDeactivated     = "Your account has been deactivated. Please contact the administrator."
	MsgAccountLocked          = "Account locked due to multiple failed login attempts. Try again in %dm %ds."
	MsgWrongCurrentPassword   = "Your current password is incorrect."
	MsgPasswordChangeRequired = "Change your temporary password before continuing."
	MsgUsernameTaken          = "Username already exists."
	MsgInvalidRole            = "Invalid role."
	MsgSelfDeactivation       = "You cannot deactivate your own account."
	MsgUserNotFound           = "User not found."
	MsgFileNotFound           = "File not found."
	MsgPermissionDenied       = "You do not have permission to download this file."
	MsgIntegrityBlocked       = "Download blocked: file integrity check failed. The file is corrupted or has been tampered with. Please contact the administrator."
	MsgInvalidFileType        = "Invalid file type. Allowed types: documents (doc, docx, odt, txt, rtf, pdf), spreadsheets (xls, xlsx, ods, csv), archives (zip, rar, 7z)."
	MsgFileTooLarge           = "File size exceeds the maximum allowed size of 15 MB."
	MsgFileEmpty              = "File is empty."
	MsgStudentVisibility      = "Students can only upload files visible to teachers and owner."
	MsgTeacherVisibility      = "Teachers can only set 'Teachers + Owner' or 'Public' visibility."
)
