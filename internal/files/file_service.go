package files

import (
	"context"
	"crypto/subtle"
	"errors"
	"io"
	"strings"

	"github.com/vhqtran/campushare/internal/audit"
	"github.com/vhqtran/campushare/internal/common"
	"github.com/vhqtran/campushare/internal/policy"
	"github.com/vhqtran/campushare/model"
	"github.com/vhqtran/campushare/params"
	"gorm.io/gorm"
)

// Upload describes an inbound file.
type Upload struct {
	DisplayName string
	ContentType string
	Visibility  string
	Size        int64 // declared size, checked before any bytes persist
	Content     io.Reader
}

// StoreResult is a successful upload. Downgraded is set when the requested
// visibility was clamped by the uploader's role.
type StoreResult struct {
	File       *model.File
	Downgraded bool
}

// FetchResult is a verified download.
type FetchResult struct {
	File *model.File
	Data []byte
}

// FileService is the integrity pipeline: digests are computed at write time,
// verified before every delivery, and each gated decision lands in the
// audit log.
type FileService struct {
	fileRepo FileRepository
	store    *LocalStore
	recorder *audit.Recorder
}

// Store validates, persists and records an upload. Content is written fully
// to its final location before the metadata+digest row commits, so a
// metadata row never references absent bytes.
func (s *FileService) Store(ctx context.Context, owner *model.User, upload Upload, client common.ClientInfo) (*StoreResult, error) {
	fail := func(reason string, err error) (*StoreResult, error) {
		s.recorder.Record(ctx, audit.Event{
			Action:    audit.ActionFileUpload,
			Outcome:   audit.OutcomeFailed,
			Actor:     owner,
			Detail:    map[string]any{"filename": upload.DisplayName, "reason": reason},
			IP:        client.IP,
			UserAgent: client.UserAgent,
		})
		return nil, err
	}

	if !allowedExtension(upload.DisplayName) {
		return fail("extension not allowed", ErrInvalidType)
	}
	if upload.Size > params.MaxUploadSize {
		return fail("too large", ErrFileTooLarge)
	}
	if upload.Size == 0 {
		return fail("empty file", ErrFileEmpty)
	}
	if !model.IsValidVisibility(upload.Visibility) {
		upload.Visibility = model.VisibilityTeacherOnly
	}

	visibility, downgraded := policy.ClampVisibility(owner.Role, upload.Visibility)

	storedName := s.store.NewStoredName(upload.DisplayName)
	size, checksum, err := s.store.Write(storedName, upload.Content, params.MaxUploadSize)
	if err != nil {
		if errors.Is(err, ErrFileTooLarge) {
			return fail("too large", ErrFileTooLarge)
		}
		return fail("io failure", err)
	}
	if size == 0 {
		s.store.Remove(storedName)
		return fail("empty file", ErrFileEmpty)
	}

	file := &model.File{
		DisplayName: upload.DisplayName,
		StoredName:  storedName,
		OwnerID:     owner.ID,
		Visibility:  visibility,
		Checksum:    checksum,
		Size:        size,
		ContentType: upload.ContentType,
	}
	if err := s.fileRepo.Create(ctx, file); err != nil {
		s.store.Remove(storedName)
		return fail("io failure", err)
	}

	s.recorder.Record(ctx, audit.Event{
		Action:  audit.ActionFileUpload,
		Outcome: audit.OutcomeSuccess,
		Actor:   owner,
		Detail: map[string]any{
			"filename":   upload.DisplayName,
			"size":       size,
			"mimetype":   upload.ContentType,
			"visibility": visibility,
			"hash":       checksum[:16] + "...",
		},
		IP:        client.IP,
		UserAgent: client.UserAgent,
	})
	return &StoreResult{File: file, Downgraded: downgraded}, nil
}

// Fetch returns the verified content of a stored file. Permission and
// integrity gates each produce their own audit entry; a digest mismatch
// refuses delivery outright.
func (s *FileService) Fetch(ctx context.Context, actor *model.User, storedName string, client common.ClientInfo) (*FetchResult, error) {
	file, err := s.fileRepo.GetByStoredName(ctx, storedName)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}

	if !policy.CanView(actor, file) {
		s.recorder.Record(ctx, audit.Event{
			Action:    audit.ActionFileDownload,
			Outcome:   audit.OutcomeFailed,
			Actor:     actor,
			Detail:    map[string]any{"filename": file.DisplayName, "reason": "permission denied"},
			IP:        client.IP,
			UserAgent: client.UserAgent,
		})
		return nil, ErrPermissionDenied
	}

	data, err := s.store.Read(file.StoredName)
	if err != nil {
		return nil, err
	}

	integrityCheck := "no_hash"
	if file.Checksum != "" {
		current := Checksum(data)
		if subtle.ConstantTimeCompare([]byte(current), []byte(file.Checksum)) != 1 {
			s.recorder.Record(ctx, audit.Event{
				Action:  audit.ActionIntegrityFailed,
				Outcome: audit.OutcomeBlocked,
				Actor:   actor,
				Detail: map[string]any{
					"filename": file.DisplayName,
					"file_id":  file.ID,
					"action":   "download_blocked",
				},
				IP:        client.IP,
				UserAgent: client.UserAgent,
			})
			return nil, ErrIntegrityFailed
		}
		integrityCheck = "passed"
	}

	detail := map[string]any{
		"filename":        file.DisplayName,
		"file_id":         file.ID,
		"visibility":      file.Visibility,
		"integrity_check": integrityCheck,
	}
	if file.Owner != nil {
		detail["owner"] = file.Owner.Username
	}
	s.recorder.Record(ctx, audit.Event{
		Action:    audit.ActionFileDownload,
		Outcome:   audit.OutcomeSuccess,
		Actor:     actor,
		Detail:    detail,
		IP:        client.IP,
		UserAgent: client.UserAgent,
	})
	return &FetchResult{File: file, Data: data}, nil
}

// ListVisible returns the files the actor may view, newest first.
func (s *FileService) ListVisible(ctx context.Context, actor *model.User) ([]*model.File, error) {
	all, err := s.fileRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	visible := make([]*model.File, 0, len(all))
	for _, file := range all {
		if policy.CanView(actor, file) {
			visible = append(visible, file)
		}
	}
	return visible, nil
}

func allowedExtension(filename string) bool {
	idx := strings.LastIndexByte(filename, '.')
	if idx < 0 || idx == len(filename)-1 {
		return false
	}
	return params.AllowedExtensions[strings.ToLower(filename[idx+1:])]
}

func NewFileService(fileRepo FileRepository, store *LocalStore, recorder *audit.Recorder) *FileService {
	return &FileService{
		fileRepo: fileRepo,
		store:    store,
		recorder: recorder,
	}
}
