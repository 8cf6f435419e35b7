package entity

import "errors"

var (
	ErrConfiguration = errors.New("configuration error")
	ErrRender        = errors.New("render error")
	ErrUpload        = errors.New("upload error")
	ErrContainer     = errors.New("container error")
	ErrPublish       = errors.New("publish error")
)

// KindOf names the failure class reported in PublishAttempt.ErrorKind.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return "ConfigurationError"
	case errors.Is(err, ErrRender):
		return "RenderError"
	case errors.Is(err, ErrUpload):
		return "UploadError"
	case errors.Is(err, ErrContainer):
		return "ContainerError"
	case errors.Is(err, ErrPublish):
		return "PublishError"
	}
	return "InternalError"
}
