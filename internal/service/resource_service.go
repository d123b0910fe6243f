package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"

	"ikhtibar/internal/model/resource"
	"ikhtibar/internal/pkg/apperrors"
	"ikhtibar/internal/pkg/id"
	"ikhtibar/internal/pkg/storage"
	resourceRepo "ikhtibar/internal/repository/resource"
)

var (
	ErrResourceNotFound     = fmt.Errorf("%w: resource", apperrors.ErrNotFound)
	ErrResourceAccessDenied = fmt.Errorf("%w: resource belongs to another user", apperrors.ErrForbidden)
	ErrEmptyFile            = fmt.Errorf("%w: file data is empty", apperrors.ErrInvalidArgument)
)

// ResourceService manages stored media files (exam attachments, question
// images, audio clips).
type ResourceService interface {
	// UploadFile stores a file and creates the resource record. Uploads
	// with a content hash already stored return the existing resource.
	UploadFile(ctx context.Context, req *UploadFileRequest) (*UploadFileResult, error)

	// DownloadFile returns the file stream. An empty UserID is an
	// internal request and skips the ownership check.
	DownloadFile(ctx context.Context, req *DownloadFileRequest) (*DownloadFileResult, error)

	// GetDownloadURL returns a temporary presigned download link.
	GetDownloadURL(ctx context.Context, req *GetDownloadURLRequest) (*GetDownloadURLResult, error)

	// ListResources pages through resources. An empty UserID lists all
	// users' resources.
	ListResources(ctx context.Context, req *ListResourcesRequest) (*ListResourcesResult, error)

	// GetResource returns resource metadata without the file contents.
	GetResource(ctx context.Context, userID, resourceID string) (*resource.Resource, error)

	// DeleteResource soft-deletes a resource. The stored object is kept;
	// only the record is retired.
	DeleteResource(ctx context.Context, userID, resourceID string, isManager bool) error

	// UpdateResourceMeta updates display name, description and tags.
	UpdateResourceMeta(ctx context.Context, userID, resourceID, displayName, description string, tags []string) error
}

type resourceService struct {
	resourceRepo *resourceRepo.ResourceRepo
	storage      storage.Storage
}

// NewResourceService creates the resource service.
func NewResourceService(repo *resourceRepo.ResourceRepo, store storage.Storage) ResourceService {
	return &resourceService{
		resourceRepo: repo,
		storage:      store,
	}
}

// UploadFileRequest is a server-side upload.
type UploadFileRequest struct {
	UserID      string
	FileName    string
	ContentType string
	Ext         string // without the dot
	Data        io.Reader
}

// UploadFileResult is the upload outcome.
type UploadFileResult struct {
	ResourceID  string `json:"resource_id"`
	ResourceURL string `json:"resource_url"`
	FileSize    int64  `json:"file_size"`
	SHA256      string `json:"sha256"`
	// Deduplicated is true when an identical file already existed and no
	// new object was stored.
	Deduplicated bool `json:"deduplicated"`
}

// UploadFile stores a file and creates the resource record.
func (s *resourceService) UploadFile(ctx context.Context, req *UploadFileRequest) (*UploadFileResult, error) {
	if req.Data == nil {
		return nil, ErrEmptyFile
	}

	data, err := io.ReadAll(req.Data)
	if err != nil {
		return nil, fmt.Errorf("read file data: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	sum := sha256.Sum256(data)
	shaHex := hex.EncodeToString(sum[:])

	// Same bytes already stored: reuse the object, no second upload.
	if existing, err := s.resourceRepo.FindBySHA256(ctx, shaHex); err == nil {
		url := s.presignBestEffort(ctx, existing.StorageKey)
		return &UploadFileResult{
			ResourceID:   existing.ID,
			ResourceURL:  url,
			FileSize:     existing.FileSize,
			SHA256:       shaHex,
			Deduplicated: true,
		}, nil
	}

	resourceID := id.New()
	storageKey := storageKeyFor(req.UserID, resourceID, req.Ext)

	if _, err := s.storage.Upload(ctx, storageKey, bytes.NewReader(data), req.ContentType); err != nil {
		log.Error().Err(err).Str("key", storageKey).Msg("failed to upload file")
		return nil, fmt.Errorf("upload file: %w", err)
	}

	res := &resource.Resource{
		ID:          resourceID,
		UserID:      req.UserID,
		Ext:         req.Ext,
		Name:        req.FileName,
		StorageKey:  storageKey,
		StorageType: s.storage.GetStorageType(),
		FileSize:    int64(len(data)),
		ContentType: req.ContentType,
		SHA256:      shaHex,
		Status:      resource.ResourceStatusReady,
		UploadedAt:  time.Now(),
	}

	if err := s.resourceRepo.Create(ctx, res); err != nil {
		log.Error().Err(err).Msg("failed to create resource record")
		return nil, fmt.Errorf("create resource: %w", err)
	}

	return &UploadFileResult{
		ResourceID:  resourceID,
		ResourceURL: s.presignBestEffort(ctx, storageKey),
		FileSize:    res.FileSize,
		SHA256:      shaHex,
	}, nil
}

// DownloadFileRequest identifies the file to stream.
type DownloadFileRequest struct {
	UserID     string // empty means internal request
	ResourceID string
}

// DownloadFileResult carries the file stream. The caller owns Data.
type DownloadFileResult struct {
	ResourceID  string        `json:"resource_id"`
	FileName    string        `json:"file_name"`
	ContentType string        `json:"content_type"`
	FileSize    int64         `json:"file_size"`
	Data        io.ReadCloser `json:"-"`
}

// DownloadFile returns the file stream.
func (s *resourceService) DownloadFile(ctx context.Context, req *DownloadFileRequest) (*DownloadFileResult, error) {
	res, err := s.authorize(ctx, req.UserID, req.ResourceID)
	if err != nil {
		return nil, err
	}

	reader, err := s.storage.Download(ctx, res.StorageKey)
	if err != nil {
		log.Error().Err(err).Str("key", res.StorageKey).Msg("failed to download file")
		return nil, fmt.Errorf("download file: %w", err)
	}

	return &DownloadFileResult{
		ResourceID:  res.ID,
		FileName:    res.Name,
		ContentType: res.ContentType,
		FileSize:    res.FileSize,
		Data:        reader,
	}, nil
}

// GetDownloadURLRequest asks for a presigned link.
type GetDownloadURLRequest struct {
	UserID     string // empty means internal request
	ResourceID string
	ExpiresIn  time.Duration // defaults to one hour
}

// GetDownloadURLResult is the presigned link.
type GetDownloadURLResult struct {
	ResourceID  string    `json:"resource_id"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
	FileName    string    `json:"file_name"`
	FileSize    int64     `json:"file_size"`
	ContentType string    `json:"content_type"`
}

// GetDownloadURL returns a temporary presigned download link.
func (s *resourceService) GetDownloadURL(ctx context.Context, req *GetDownloadURLRequest) (*GetDownloadURLResult, error) {
	res, err := s.authorize(ctx, req.UserID, req.ResourceID)
	if err != nil {
		return nil, err
	}

	expiresIn := req.ExpiresIn
	if expiresIn == 0 {
		expiresIn = time.Hour
	}

	downloadURL, err := s.storage.GetPresignedDownloadURL(ctx, res.StorageKey, expiresIn)
	if err != nil {
		log.Error().Err(err).Str("key", res.StorageKey).Msg("failed to generate download URL")
		return nil, fmt.Errorf("generate download URL: %w", err)
	}

	return &GetDownloadURLResult{
		ResourceID:  res.ID,
		DownloadURL: downloadURL,
		ExpiresAt:   time.Now().Add(expiresIn),
		FileName:    res.Name,
		FileSize:    res.FileSize,
		ContentType: res.ContentType,
	}, nil
}

// ListResourcesRequest pages through resources.
type ListResourcesRequest struct {
	UserID   string // empty lists all users' resources
	Page     int64
	PageSize int64
}

// ListResourcesResult is a page of resources.
type ListResourcesResult struct {
	Resources []*resource.Resource `json:"resources"`
	Total     int64                `json:"total"`
	Page      int64                `json:"page"`
	PageSize  int64                `json:"page_size"`
}

// ListResources pages through resources.
func (s *resourceService) ListResources(ctx context.Context, req *ListResourcesRequest) (*ListResourcesResult, error) {
	page := req.Page
	pageSize := req.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	var (
		resources []*resource.Resource
		total     int64
		err       error
	)
	if req.UserID == "" {
		resources, total, err = s.resourceRepo.List(ctx, page, pageSize)
	} else {
		resources, total, err = s.resourceRepo.ListByUser(ctx, req.UserID, page, pageSize)
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to list resources")
		return nil, fmt.Errorf("list resources: %w", err)
	}

	return &ListResourcesResult{
		Resources: resources,
		Total:     total,
		Page:      page,
		PageSize:  pageSize,
	}, nil
}

// GetResource returns resource metadata without the file contents.
func (s *resourceService) GetResource(ctx context.Context, userID, resourceID string) (*resource.Resource, error) {
	return s.authorize(ctx, userID, resourceID)
}

// DeleteResource soft-deletes a resource. Owners may delete their own
// files; managers may delete anyone's.
func (s *resourceService) DeleteResource(ctx context.Context, userID, resourceID string, isManager bool) error {
	res, err := s.resourceRepo.FindByID(ctx, resourceID)
	if err != nil {
		return ErrResourceNotFound
	}

	if !isManager && res.UserID != userID {
		return ErrResourceAccessDenied
	}

	if err := s.resourceRepo.SoftDelete(ctx, resourceID); err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	return nil
}

// UpdateResourceMeta updates display name, description and tags.
func (s *resourceService) UpdateResourceMeta(ctx context.Context, userID, resourceID, displayName, description string, tags []string) error {
	res, err := s.resourceRepo.FindByID(ctx, resourceID)
	if err != nil {
		return ErrResourceNotFound
	}
	if res.UserID != userID {
		return ErrResourceAccessDenied
	}

	return s.resourceRepo.Update(ctx, resourceID, bson.M{
		"display_name": displayName,
		"description":  description,
		"tags":         tags,
	})
}

// authorize loads the resource and checks ownership. An empty userID is
// an internal request and may access anything.
func (s *resourceService) authorize(ctx context.Context, userID, resourceID string) (*resource.Resource, error) {
	res, err := s.resourceRepo.FindByID(ctx, resourceID)
	if err != nil {
		return nil, ErrResourceNotFound
	}

	if userID != "" && res.UserID != userID {
		return nil, ErrResourceAccessDenied
	}

	return res, nil
}

// presignBestEffort generates a one-day download URL, returning "" when
// the backend cannot presign. The URL is informational only.
func (s *resourceService) presignBestEffort(ctx context.Context, key string) string {
	url, err := s.storage.GetPresignedDownloadURL(ctx, key, 24*time.Hour)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to generate resource URL")
		return ""
	}
	return url
}

// storageKeyFor builds resources/{user_id}/{resource_id}.{ext}.
func storageKeyFor(userID, resourceID, ext string) string {
	if ext != "" {
		return fmt.Sprintf("resources/%s/%s.%s", userID, resourceID, ext)
	}
	return fmt.Sprintf("resources/%s/%s", userID, resourceID)
}
