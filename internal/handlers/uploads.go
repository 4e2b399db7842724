package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/sah-lishi/backend-journey/internal/apperr"
)

const (
	maxUploadBytes       = 1 << 30
	multipartMemoryLimit = 32 << 20
)

// parseMultipart bounds and parses a multipart request body.
func parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		return apperr.Wrap(apperr.KindInvalidArgument, "invalid multipart form", err)
	}
	return nil
}

// formValue returns a form field and whether it was sent at all.
func formValue(r *http.Request, field string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	values, ok := r.MultipartForm.Value[field]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// spool copies the uploaded file named field into dir and returns the
// local path, or "" when the field is absent. The content store removes the
// file once it has been uploaded.
func spool(r *http.Request, field, dir string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", apperr.Wrap(apperr.KindInvalidArgument, "invalid "+field+" upload", err)
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(filepath.Base(header.Filename)))
	if len(ext) > 8 || strings.ContainsAny(ext, `/\`) {
		ext = ""
	}

	out, err := os.CreateTemp(dir, field+"-*"+ext)
	if err != nil {
		return "", apperr.Internal("unable to store upload", fmt.Errorf("create temp file: %w", err))
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", apperr.Internal("unable to store upload", fmt.Errorf("copy upload: %w", err))
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", apperr.Internal("unable to store upload", fmt.Errorf("close upload: %w", err))
	}
	return out.Name(), nil
}

func removeTemp(paths ...string) {
	for _, p := range paths {
		if p != "" {
			_ = os.Remove(p)
		}
	}
}
