/*
Package handler provides HTTP handlers for the upload store endpoints.

The relay never inspects file contents: uploads land in the bucket and come
back as an opaque fileUrl string that messages carry verbatim.
*/
package handler

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"wavechat/internal/pkg/auth/jwt"
	"wavechat/internal/pkg/errs"
	"wavechat/internal/pkg/req"
	"wavechat/internal/pkg/resp"
	"wavechat/internal/storage"
)

// HandleFileUpload accepts a multipart upload ("file" field), stores the
// binary in the upload store, and returns the stable fileUrl reference.
func HandleFileUpload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := jwt.GetPayloadFromContext(r)
		if payload == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		if customErr := req.SetupMultipart(w, r); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFormParseFailed))
			return
		}
		defer file.Close()

		if customErr := storage.ValidateFileSize(header.Size); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		mimeType := header.Header.Get("Content-Type")
		if customErr := storage.ValidateFileType(header.Filename, mimeType); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		fileExt := strings.ToLower(filepath.Ext(header.Filename))
		fileKey := fmt.Sprintf("%s/%s%s", payload.UserID, uuid.New().String(), fileExt)

		if err := deps.StorageService.Upload(r.Context(), fileKey, mimeType, file); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"fileUrl":  fileURLFor(deps, fileKey),
			"fileKey":  fileKey,
			"fileName": header.Filename,
		})
	}
}

// HandleFileDownload redirects to a presigned download URL for the given key.
func HandleFileDownload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := jwt.GetPayloadFromContext(r)
		if payload == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		fileKey := r.URL.Query().Get("k")
		if fileKey == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if _, err := deps.StorageService.GetObjectMetadata(r.Context(), fileKey); err != nil {
			if errors.Is(err, storage.ErrObjectNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrFileNotFound))
				return
			}
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		url, err := deps.StorageService.PresignDownload(r.Context(), fileKey, storage.DownloadURLDuration)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		http.Redirect(w, r, url, http.StatusFound)
	}
}

// fileURLFor builds the stable reference returned for an uploaded key:
// either the configured public base URL or the relay's own download endpoint.
func fileURLFor(deps *AppDeps, fileKey string) string {
	if deps.Config.S3PublicBaseURL != "" {
		return deps.Config.S3PublicBaseURL + "/" + fileKey
	}
	return "/api/file/download?k=" + fileKey
}
