package file

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/almajirisurvey/backend/core"
)

var (
	// errors
	ErrNotFound        = errors.New("file not found")
	ErrFileTooLarge    = errors.New("File exceeds the maximum allowed size")
	ErrUnsupportedType = errors.New("File type is not allowed")
	ErrBadRelatedTo    = errors.New("relatedToType and relatedToId must be provided together")
	ErrBadRelatedKind  = errors.New("relatedToType must be one of SCHOOL, BEGGAR, USER")
)

type (
	Repository interface {
		CreateFile(ctx context.Context, f File) (File, error)
		GetFile(ctx context.Context, id string) (File, error)
		// FilterFiles applies AND on available QueryFilter fields, sorted
		// newest-created-first, and returns the page plus the total match count.
		FilterFiles(ctx context.Context, filter QueryFilter, page core.Page) ([]File, int64, error)
		DeleteFile(ctx context.Context, id string) error
		CountFiles(ctx context.Context) (int64, error)
	}

	// Blob stores and serves raw attachment bytes; the metadata record keeps
	// only the generated name.
	Blob interface {
		Save(ctx context.Context, name string, r io.Reader) (int64, error)
		Open(ctx context.Context, name string) (io.ReadCloser, error)
		Remove(ctx context.Context, name string) error
	}

	Service struct {
		repo         Repository
		blob         Blob
		log          core.Logger
		maxSize      int64
		allowedTypes map[string]struct{}
		baseURL      string
	}
)

func NewService(repo Repository, blob Blob, log core.Logger, conf *core.Config) *Service {
	allowed := make(map[string]struct{}, len(conf.Upload.AllowedMimeTypes))
	for _, mt := range conf.Upload.AllowedMimeTypes {
		allowed[mt] = struct{}{}
	}
	return &Service{
		repo:         repo,
		blob:         blob,
		log:          log,
		maxSize:      conf.Upload.MaxFileSize,
		allowedTypes: allowed,
		baseURL:      "/uploads",
	}
}

// newFileID mints identifiers of the form FILE_<unix-ms>_<random fragment>.
func newFileID() string {
	var frag [5]byte
	_, _ = rand.Read(frag[:])
	return fmt.Sprintf("FILE_%d_%s", time.Now().UnixMilli(), hex.EncodeToString(frag[:]))
}

// Upload validates the attachment, streams its content to blob storage under a
// generated name, and records the metadata. A failed metadata write leaves no
// orphan blob behind.
func (svc *Service) Upload(ctx context.Context, up Upload, r io.Reader, uploadedBy string) (File, error) {
	if up.Size > svc.maxSize {
		return File{}, core.NewValidationError(ErrFileTooLarge,
			core.FieldError{Field: "file", Error: ErrFileTooLarge.Error()})
	}
	if _, ok := svc.allowedTypes[up.MimeType]; !ok {
		return File{}, core.NewValidationError(ErrUnsupportedType,
			core.FieldError{Field: "file", Error: ErrUnsupportedType.Error()})
	}
	if (up.RelatedToKind == "") != (up.RelatedToID == "") {
		return File{}, core.NewValidationError(ErrBadRelatedTo,
			core.FieldError{Field: "relatedTo", Error: ErrBadRelatedTo.Error()})
	}
	switch up.RelatedToKind {
	case "", RelatedSchool, RelatedBeggar, RelatedUser:
	default:
		return File{}, core.NewValidationError(ErrBadRelatedKind,
			core.FieldError{Field: "relatedToType", Error: ErrBadRelatedKind.Error()})
	}

	name := uuid.NewString() + filepath.Ext(up.OriginalName)
	size, err := svc.blob.Save(ctx, name, io.LimitReader(r, svc.maxSize+1))
	if err != nil {
		return File{}, pkgerrors.Wrap(err, "saving attachment")
	}
	if size > svc.maxSize {
		_ = svc.blob.Remove(ctx, name)
		return File{}, core.NewValidationError(ErrFileTooLarge,
			core.FieldError{Field: "file", Error: ErrFileTooLarge.Error()})
	}

	now := time.Now().UTC()
	f := File{
		FileID:       newFileID(),
		OriginalName: up.OriginalName,
		Filename:     name,
		MimeType:     up.MimeType,
		Size:         size,
		Path:         name,
		URL:          svc.baseURL + "/" + name,
		UploadedBy:   uploadedBy,
		RelatedTo:    RelatedTo{Kind: up.RelatedToKind, ID: up.RelatedToID},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f, err = svc.repo.CreateFile(ctx, f)
	if err != nil {
		_ = svc.blob.Remove(ctx, name)
		return File{}, err
	}
	return f, nil
}

func (svc *Service) Get(ctx context.Context, id string) (File, error) {
	return svc.repo.GetFile(ctx, id)
}

// Download resolves the metadata record and opens its content stream.
func (svc *Service) Download(ctx context.Context, id string) (File, io.ReadCloser, error) {
	f, err := svc.repo.GetFile(ctx, id)
	if err != nil {
		return File{}, nil, err
	}
	rc, err := svc.blob.Open(ctx, f.Filename)
	if err != nil {
		return File{}, nil, pkgerrors.Wrap(err, "opening attachment")
	}
	return f, rc, nil
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter, page core.Page) ([]File, int64, error) {
	return svc.repo.FilterFiles(ctx, filter, page)
}

// Delete removes the metadata record and, best effort, the stored blob. A blob
// that is already gone does not fail the delete.
func (svc *Service) Delete(ctx context.Context, id string, actor OwnershipChecker) error {
	f, err := svc.repo.GetFile(ctx, id)
	if err != nil {
		return err
	}
	if !actor.Owns(f.UploadedBy) {
		return core.NewPermissionError("you can only delete your own files")
	}
	if err = svc.blob.Remove(ctx, f.Filename); err != nil {
		svc.log.Warn("removing stored attachment", "filename", f.Filename, "err", err)
	}
	return svc.repo.DeleteFile(ctx, id)
}

func (svc *Service) Count(ctx context.Context) (int64, error) {
	return svc.repo.CountFiles(ctx)
}

// OwnershipChecker reports whether the acting user owns a record stamped with
// a given interviewer id; admins own everything.
type OwnershipChecker interface {
	Owns(interviewerID string) bool
}
