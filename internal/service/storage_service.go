package service

import (
	"bytes"
	"code4u_backend/internal/config"
	"code4u_backend/internal/util"
	"code4u_backend/pkg/logger"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// StorageProvider 定义通用存储接口
// 实现需要把无权限错误包装为 util.ErrStorageUnauthorized，对象不存在包装为 util.ErrObjectNotFound
type StorageProvider interface {
	Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, filename string) error
	GetURL(filename string) string
}

// LocalStorageProvider 本地存储实现
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func classifyLocalError(err error) error {
	switch {
	case err == nil:
		return nil
	case os.IsNotExist(err):
		return fmt.Errorf("%w: %v", util.ErrObjectNotFound, err)
	case os.IsPermission(err):
		return fmt.Errorf("%w: %v", util.ErrStorageUnauthorized, err)
	}
	return err
}

func (p *LocalStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	dst := filepath.Join(p.Config.LocalPath, filename)
	dir := filepath.Dir(dst)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", classifyLocalError(err)
		}
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", classifyLocalError(err)
	}
	defer out.Close()

	if _, err = io.Copy(out, reader); err != nil {
		return "", err
	}

	return p.GetURL(filename), nil
}

func (p *LocalStorageProvider) Delete(ctx context.Context, filename string) error {
	dst := filepath.Join(p.Config.LocalPath, filename)
	return classifyLocalError(os.Remove(dst))
}

func (p *LocalStorageProvider) GetURL(filename string) string {
	return "/uploads/" + filename
}

// MinioStorageProvider MinIO存储实现
type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioSecure,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func classifyMinioError(err error) error {
	if err == nil {
		return nil
	}
	resp := minio.ToErrorResponse(err)
	switch {
	case resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %v", util.ErrObjectNotFound, err)
	case resp.Code == "AccessDenied" || resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %v", util.ErrStorageUnauthorized, err)
	}
	return err
}

func (p *MinioStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := p.Client.PutObject(ctx, p.Config.MinioBucket, filename, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", classifyMinioError(err)
	}
	return p.GetURL(filename), nil
}

func (p *MinioStorageProvider) Delete(ctx context.Context, filename string) error {
	return classifyMinioError(p.Client.RemoveObject(ctx, p.Config.MinioBucket, filename, minio.RemoveObjectOptions{}))
}

func (p *MinioStorageProvider) GetURL(filename string) string {
	return "/" + p.Config.MinioBucket + "/" + filename
}

// OSSStorageProvider 阿里云OSS存储实现
type OSSStorageProvider struct {
	Config *config.StorageConfig
	Client *oss.Client
}

func NewOSSStorageProvider(cfg *config.StorageConfig) (*OSSStorageProvider, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	return &OSSStorageProvider{Config: cfg, Client: client}, nil
}

func classifyOSSError(err error) error {
	var serviceErr oss.ServiceError
	if errors.As(err, &serviceErr) {
		switch {
		case serviceErr.Code == "NoSuchKey" || serviceErr.StatusCode == http.StatusNotFound:
			return fmt.Errorf("%w: %v", util.ErrObjectNotFound, err)
		case serviceErr.Code == "AccessDenied" || serviceErr.StatusCode == http.StatusForbidden:
			return fmt.Errorf("%w: %v", util.ErrStorageUnauthorized, err)
		}
	}
	return err
}

func (p *OSSStorageProvider) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return "", err
	}

	if err := bucket.PutObject(filename, reader, oss.ContentType(contentType)); err != nil {
		return "", classifyOSSError(err)
	}
	return p.GetURL(filename), nil
}

func (p *OSSStorageProvider) Delete(ctx context.Context, filename string) error {
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return err
	}
	return classifyOSSError(bucket.DeleteObject(filename))
}

func (p *OSSStorageProvider) GetURL(filename string) string {
	return fmt.Sprintf("https://%s.%s/%s", p.Config.OSSBucket, p.Config.OSSEndpoint, filename)
}

// StorageService 存储服务
type StorageService struct {
	Provider StorageProvider
}

func NewStorageService(cfg *config.Config) *StorageService {
	var provider StorageProvider
	switch cfg.Storage.Type {
	case util.StorageMinio:
		p, err := NewMinioStorageProvider(&cfg.Storage)
		if err == nil {
			provider = p
		} else {
			logger.Log.Error("Failed to init minio storage, falling back to local", zap.Error(err))
		}
	case util.StorageOSS:
		p, err := NewOSSStorageProvider(&cfg.Storage)
		if err == nil {
			provider = p
		} else {
			logger.Log.Error("Failed to init oss storage, falling back to local", zap.Error(err))
		}
	}

	if provider == nil {
		provider = &LocalStorageProvider{Config: &cfg.Storage}
	}

	return &StorageService{Provider: provider}
}

// ProfilePicturePath 头像对象路径
func ProfilePicturePath(userID string) string {
	return "profile-pictures/" + userID + "/profile-image"
}

// UploadProfilePicture 校验图片类型后上传；存储拒绝写入时退回内联 data: URL
func (s *StorageService) UploadProfilePicture(ctx context.Context, userID string, reader io.Reader, size int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(reader, util.MaxAvatarSize+1))
	if err != nil {
		return "", err
	}
	if len(data) > util.MaxAvatarSize {
		return "", fmt.Errorf("%w: file exceeds %d bytes", util.ErrInvalidFileType, util.MaxAvatarSize)
	}

	mimeType, err := util.ValidateMimeType(bytes.NewReader(data), []string{util.MimeImage})
	if err != nil {
		return "", fmt.Errorf("%w: %s", util.ErrInvalidFileType, mimeType)
	}

	url, err := s.Provider.Upload(ctx, ProfilePicturePath(userID), bytes.NewReader(data), int64(len(data)), mimeType)
	if errors.Is(err, util.ErrStorageUnauthorized) {
		logger.Log.Warn("Storage rejected profile picture, using inline data URL", zap.String("user_id", userID), zap.Error(err))
		return util.DataURL(mimeType, data), nil
	}
	if err != nil {
		return "", err
	}
	return url, nil
}

// DeleteProfilePicture 对象不存在或无权限时视为成功
func (s *StorageService) DeleteProfilePicture(ctx context.Context, userID string) error {
	err := s.Provider.Delete(ctx, ProfilePicturePath(userID))
	if errors.Is(err, util.ErrObjectNotFound) || errors.Is(err, util.ErrStorageUnauthorized) {
		logger.Log.Warn("Profile picture delete skipped", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	return err
}

func (s *StorageService) Upload(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	return s.Provider.Upload(ctx, filename, reader, size, contentType)
}

func (s *StorageService) Delete(ctx context.Context, filename string) error {
	return s.Provider.Delete(ctx, filename)
}

func (s *StorageService) GetURL(filename string) string {
	return s.Provider.GetURL(filename)
}
