package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	apperrors "woreda_portal/internal/storage"

	"github.com/google/uuid"
)

// FileStorage интерфейс для работы с файловым хранилищем
type FileStorage interface {
	Save(ctx context.Context, file *multipart.FileHeader, storedName string) (filePath string, fileSize int64, err error)
	SaveBytes(ctx context.Context, storedName string, data []byte) (string, error)
	Delete(ctx context.Context, filePath string) error
	GetFullPath(relativePath string) string
	BaseURL() string
	GetBaseDir() string
	MaxFileSize() int64
}

// LocalFileStorage реализация для локальной файловой системы.
// Все файлы лежат в одном плоском каталоге, имена генерируются
// без сканирования каталога и не пересекаются даже при
// конкурентных загрузках.
type LocalFileStorage struct {
	baseDir string // Базовый каталог для хранения (например: "./uploads")
	baseURL string // Базовый URL для доступа к файлам
	maxSize int64  // Потолок размера файла в байтах
}

func NewLocalFileStorage(baseDir, baseURL string, maxSize int64) (*LocalFileStorage, error) {
	// Создаем директорию, если она не существует
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}

	return &LocalFileStorage{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
		maxSize: maxSize,
	}, nil
}

// NewStoredName генерирует имя хранения вида <uuid>.<расширение>.
// Чистая функция: не смотрит в каталог назначения, уникальность
// гарантирована конструкцией имени.
func NewStoredName(originalFilename string) string {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	return uuid.New().String() + ext
}

// Save пишет файл под заданным именем, следя за потолком размера
// в процессе копирования. При превышении лимита или ошибке записи
// частичный файл удаляется — на диске либо целый файл, либо ничего.
func (s *LocalFileStorage) Save(ctx context.Context, file *multipart.FileHeader, storedName string) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return "", 0, fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}

	src, err := file.Open()
	if err != nil {
		return "", 0, fmt.Errorf("failed to open source file: %w", err)
	}
	defer src.Close()

	filePath := filepath.Join(s.baseDir, storedName)

	// O_EXCL: файл с таким именем не должен существовать
	dst, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}
	defer dst.Close()

	done := make(chan struct{})
	var size int64
	var copyErr error

	go func() {
		size, copyErr = io.CopyN(dst, src, s.maxSize+1)
		if copyErr == io.EOF {
			copyErr = nil
		}
		close(done)
	}()

	select {
	case <-done:
		if copyErr != nil {
			_ = os.Remove(filePath)
			return "", 0, fmt.Errorf("failed to copy file: %w", copyErr)
		}
		if size > s.maxSize {
			_ = os.Remove(filePath)
			return "", 0, apperrors.ErrPayloadTooLarge
		}
	case <-ctx.Done():
		_ = os.Remove(filePath)
		return "", 0, ctx.Err()
	}

	return storedName, size, nil
}

// SaveBytes пишет уже готовый блок (миниатюры) под заданным именем
func (s *LocalFileStorage) SaveBytes(ctx context.Context, storedName string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if int64(len(data)) > s.maxSize {
		return "", apperrors.ErrPayloadTooLarge
	}

	filePath := filepath.Join(s.baseDir, storedName)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrStorageUnavailable, err)
	}

	return storedName, nil
}

// Delete удаляет файл из хранилища
func (s *LocalFileStorage) Delete(ctx context.Context, filePath string) error {
	fullPath := filepath.Join(s.baseDir, filePath)
	if err := os.Remove(fullPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperrors.ErrMediaNotFound
		}
		return err
	}
	return nil
}

// GetFullPath возвращает полный путь к файлу на диске
func (s *LocalFileStorage) GetFullPath(relativePath string) string {
	return filepath.Join(s.baseDir, relativePath)
}

// BaseURL возвращает базовый URL для доступа к файлам
func (s *LocalFileStorage) BaseURL() string {
	return s.baseURL
}

func (s *LocalFileStorage) GetBaseDir() string {
	return s.baseDir
}

func (s *LocalFileStorage) MaxFileSize() int64 {
	return s.maxSize
}
