package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const DefaultMaxImageSize = 5 << 20

var (
	ErrNotImage      = newError(ErrValidation, "Only image files are allowed")
	ErrImageTooLarge = newError(ErrValidation, "Image is too large")
)

// MediaStore 把上传的图片保存后返回一个引用（URL），帖子只存这个引用
type MediaStore interface {
	Save(ctx context.Context, r io.Reader, filename string) (string, error)
}

// readImage 读取至多 limit 字节并按内容嗅探 MIME 类型
func readImage(r io.Reader, limit int64) ([]byte, *mimetype.MIME, error) {
	if limit <= 0 {
		limit = DefaultMaxImageSize
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, nil, fmt.Errorf("读取文件失败: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, nil, ErrImageTooLarge
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, nil, ErrNotImage
	}
	return data, mt, nil
}

// LocalStore 写入本地目录，由 gin 静态路由对外提供
type LocalStore struct {
	Dir       string // e.g. uploads/forum
	URLPrefix string // e.g. /uploads/forum
	MaxSize   int64
}

func NewLocalStore(dir string, maxSize int64) *LocalStore {
	return &LocalStore{
		Dir:       dir,
		URLPrefix: "/" + strings.Trim(filepath.ToSlash(dir), "/"),
		MaxSize:   maxSize,
	}
}

func (s *LocalStore) Save(ctx context.Context, r io.Reader, filename string) (string, error) {
	data, mt, err := readImage(r, s.MaxSize)
	if err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = mt.Extension()
	}
	name := "forum-" + uuid.NewString() + ext

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("创建上传目录失败: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("保存文件失败: %w", err)
	}
	return s.URLPrefix + "/" + name, nil
}

// CloudinaryStore 配置了 CLOUDINARY_URL 时使用
type CloudinaryStore struct {
	cld     *cloudinary.Cloudinary
	folder  string
	maxSize int64
}

func NewCloudinaryStore(url, folder string, maxSize int64) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("cloudinary configuration error: %w", err)
	}
	return &CloudinaryStore{cld: cld, folder: folder, maxSize: maxSize}, nil
}

func (s *CloudinaryStore) Save(ctx context.Context, r io.Reader, filename string) (string, error) {
	data, _, err := readImage(r, s.maxSize)
	if err != nil {
		return "", err
	}

	result, err := s.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:   s.folder,
		PublicID: "forum-" + uuid.NewString(),
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload failed: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload failed: %s", result.Error.Message)
	}
	return result.SecureURL, nil
}
