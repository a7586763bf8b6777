package response

var (
	ErrInvalidRequestFormat = ErrorResponse{
		Status:  "error",
		Error:   "invalid_request",
		Details: "Invalid request format",
	}

	ErrAuthenticationFailed = ErrorResponse{
		Status: "error",
		Error:  "authentication_failed",
	}

	ErrUnsupportedMedia = ErrorResponse{
		Status:  "error",
		Error:   "unsupported_media_type",
		Details: "File extension or declared content type is not allowed",
	}

	ErrPayloadTooLarge = ErrorResponse{
		Status:  "error",
		Error:   "payload_too_large",
		Details: "File exceeds the 20 MiB upload ceiling",
	}

	ErrStorageUnavailable = ErrorResponse{
		Status:  "error",
		Error:   "storage_unavailable",
		Details: "File storage is not writable",
	}
)
