package object

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/frahmantamala/star-supla/internal"
	"github.com/frahmantamala/star-supla/internal/transport"
)

const uploadPath = basePath + "Upload/"

type File struct {
	Name   string
	Reader io.Reader
}

// UploadFile posts file to Obj/Upload/{pageName} and returns its URL.
// resize asks the server to store a scaled copy.
func (a *API) UploadFile(ctx context.Context, pageName string, file File, resize bool) (string, error) {
	if file.Reader == nil || file.Name == "" {
		return "", internal.NewValidationFieldError("file", "file is required", internal.ErrCodeMissingImage)
	}

	fields := map[string]string{}
	if resize {
		fields["isResize"] = "true"
	}

	env, err := a.client.Upload(ctx, transport.Upload{
		Path:     uploadPath + url.PathEscape(pageName),
		Field:    "file",
		FileName: file.Name,
		File:     file.Reader,
		Fields:   fields,
	})
	if err != nil {
		return "", err
	}

	var fileURL string
	if err := env.Decode(&fileURL); err != nil {
		return "", err
	}
	return fileURL, nil
}

// DeleteFile removes an uploaded file. It reports true only when the
// server answers a literal true.
func (a *API) DeleteFile(ctx context.Context, pageName, fileURL string) (bool, error) {
	env, err := a.client.Do(ctx, transport.Request{
		Method: http.MethodDelete,
		Path:   uploadPath + url.PathEscape(pageName),
		Body:   map[string]string{"fileName": fileURL},
	})
	if err != nil {
		return false, err
	}

	var ok bool
	if json.Unmarshal(env.Result, &ok) != nil {
		return false, nil
	}
	return ok, nil
}
