package application

import (
	"context"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/atvirokodosprendimai/pcforge/internal/domain"
	"go.uber.org/zap"
)

type FileService struct {
	files domain.FilesAPI
	log   *zap.Logger
}

func NewFileService(files domain.FilesAPI, log *zap.Logger) *FileService {
	return &FileService{files: files, log: log.Named("files")}
}

type UploadResult struct {
	URLs   []string          `json:"urls"`
	Failed map[string]string `json:"failed,omitempty"`
}

// UploadImages uploads the files one after another and keeps the URLs of
// those that made it.
func (s *FileService) UploadImages(ctx context.Context, paths []string) (UploadResult, error) {
	result := UploadResult{URLs: []string{}}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		url, err := s.upload(ctx, path)
		if err != nil {
			s.log.Warn("upload failed", zap.String("path", path), zap.Error(err))
			if result.Failed == nil {
				result.Failed = make(map[string]string)
			}
			result.Failed[path] = err.Error()
			continue
		}
		result.URLs = append(result.URLs, url)
	}
	return result, nil
}

func (s *FileService) upload(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return s.files.Upload(ctx, filepath.Base(path), contentType, data)
}
