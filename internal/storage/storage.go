package storage

import "errors"

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUserExists    = errors.New("user already exists")
	ErrMediaNotFound = errors.New("media not found")
)

// Ошибки приёма файлов. Политика: без повторов, вызывающий решает сам.
var (
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrPayloadTooLarge      = errors.New("file size exceeds limit")
	ErrStorageUnavailable   = errors.New("file storage unavailable")
)
