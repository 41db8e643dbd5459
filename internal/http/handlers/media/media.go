package media

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ashok9315-cmyk/profolia.art/internal/archive"
	"github.com/ashok9315-cmyk/profolia.art/internal/config"
	"github.com/ashok9315-cmyk/profolia.art/internal/http/middleware"
	"github.com/ashok9315-cmyk/profolia.art/internal/mediatype"
	"github.com/ashok9315-cmyk/profolia.art/internal/services/ingest"
	"github.com/ashok9315-cmyk/profolia.art/internal/services/objectstore"
	"github.com/ashok9315-cmyk/profolia.art/internal/storage"
	"github.com/ashok9315-cmyk/profolia.art/internal/types"
	mediatypes "github.com/ashok9315-cmyk/profolia.art/internal/types/media"
	"github.com/ashok9315-cmyk/profolia.art/internal/utils/response"
)

// Pipeline is the slice of the ingestion service the handlers use.
type Pipeline interface {
	IngestFile(ctx context.Context, profile types.Profile, upload ingest.FileUpload) ingest.Outcome
	IngestArchive(ctx context.Context, profile types.Profile, data []byte) (ingest.BatchResult, error)
}

// ObjectStore is the slice of the object store the handlers use.
type ObjectStore interface {
	Delete(ctx context.Context, objectKey string) error
	GeneratePresignedUploadURL(profileID, fileName, contentType string) (*objectstore.UploadInfo, error)
	GeneratePresignedDownloadURL(objectKey string, expiry time.Duration) (*url.URL, error)
}

// statusForReason maps an ingestion failure to its HTTP status.
func statusForReason(reason ingest.FailureReason) int {
	switch reason {
	case ingest.ReasonUnsupportedType, ingest.ReasonInvalidEntry:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeOutcomeError(w http.ResponseWriter, outcome ingest.Outcome) {
	response.WriteJSON(w, statusForReason(outcome.Reason),
		response.CodedError(string(outcome.Reason), outcome.Err))
}

// resolveProfile loads the authenticated caller's profile.
func resolveProfile(w http.ResponseWriter, r *http.Request, store storage.Storage) (types.Profile, bool) {
	profileID, ok := middleware.GetProfileIDFromContext(r.Context())
	if !ok {
		response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("profile not authenticated")))
		return types.Profile{}, false
	}

	profile, err := store.GetProfile(profileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errors.New("profile not found")))
			return types.Profile{}, false
		}
		response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
		return types.Profile{}, false
	}

	return profile, true
}

// UploadMedia handles a single media file upload
// @Summary Upload a media file
// @Description Upload one media file and run it through the ingestion pipeline
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Media file"
// @Param description formData string false "Optional description used by the classifier"
// @Success 201 {object} mediatypes.MediaAsset "Media ingested successfully"
// @Failure 400 {object} response.Response "Unsupported or invalid file"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 413 {object} response.Response "File too large"
// @Failure 500 {object} response.Response "Storage or database failure"
// @Security BearerAuth
// @Router /api/media [post]
func UploadMedia(pipeline Pipeline, store storage.Storage, cfg *config.Media) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, ok := resolveProfile(w, r, store)
		if !ok {
			return
		}

		// Extra megabyte covers the multipart framing around the payload.
		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxFileSize+1<<20)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			response.WriteJSON(w, http.StatusRequestEntityTooLarge, response.GeneralError(errors.New("file exceeds the upload limit")))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("file field is required")))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("failed to read uploaded file")))
			return
		}

		outcome := pipeline.IngestFile(r.Context(), profile, ingest.FileUpload{
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Description: r.FormValue("description"),
			Data:        data,
		})
		if outcome.Failed() {
			writeOutcomeError(w, outcome)
			return
		}

		slog.Info("Media ingested",
			slog.String("asset_id", outcome.Asset.ID),
			slog.String("profile_id", profile.ID))

		response.WriteJSON(w, http.StatusCreated, response.RequestOK("Media uploaded successfully", outcome.Asset))
	}
}

// UploadArchive handles a bulk upload of a ZIP archive
// @Summary Upload a media archive
// @Description Ingest every supported file in a ZIP archive. Individual entry failures do not fail the batch; inspect the per-entry results.
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Param archive formData file true "ZIP archive"
// @Success 200 {object} mediatypes.ArchiveUploadResponse "Batch result with per-entry outcomes"
// @Failure 400 {object} response.Response "Archive is not readable"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 413 {object} response.Response "Archive too large"
// @Failure 500 {object} response.Response "Internal server error"
// @Security BearerAuth
// @Router /api/media/archive [post]
func UploadArchive(pipeline Pipeline, store storage.Storage, cfg *config.Media) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, ok := resolveProfile(w, r, store)
		if !ok {
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxArchiveSize+1<<20)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			response.WriteJSON(w, http.StatusRequestEntityTooLarge, response.GeneralError(errors.New("archive exceeds the upload limit")))
			return
		}

		file, _, err := r.FormFile("archive")
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("archive field is required")))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("failed to read uploaded archive")))
			return
		}

		result, err := pipeline.IngestArchive(r.Context(), profile, data)
		if err != nil {
			if errors.Is(err, archive.ErrInvalidArchive) {
				response.WriteJSON(w, http.StatusBadRequest, response.CodedError("InvalidArchive", err))
				return
			}
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		slog.Info("Archive ingested",
			slog.String("profile_id", profile.ID),
			slog.Int("total", result.Total),
			slog.Int("succeeded", result.Succeeded),
			slog.Int("failed", result.Failed))

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Archive processed", result.Response()))
	}
}

// ListMedia lists the authenticated profile's media
// @Summary List own media
// @Description List every media asset of the authenticated profile, in display order
// @Tags media
// @Produce json
// @Success 200 {array} mediatypes.MediaAsset "Media assets"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 500 {object} response.Response "Internal server error"
// @Security BearerAuth
// @Router /api/media [get]
func ListMedia(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID, ok := middleware.GetProfileIDFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("profile not authenticated")))
			return
		}

		assets, err := store.ListMediaByProfile(profileID)
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to list media")))
			return
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Media fetched successfully", assets))
	}
}

// DeleteMedia deletes one media asset and its stored object
// @Summary Delete a media asset
// @Description Delete the stored object first, then its record. A storage failure leaves the record in place so the delete can be retried.
// @Tags media
// @Param id path string true "Asset ID"
// @Success 200 {object} response.Response "Asset deleted"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 403 {object} response.Response "Asset belongs to another profile"
// @Failure 404 {object} response.Response "Asset not found"
// @Failure 500 {object} response.Response "Storage or database failure"
// @Security BearerAuth
// @Router /api/media/{id} [delete]
func DeleteMedia(store storage.Storage, objects ObjectStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID, ok := middleware.GetProfileIDFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("profile not authenticated")))
			return
		}

		id := r.PathValue("id")
		if id == "" {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("asset ID is required")))
			return
		}

		asset, err := store.GetMediaAsset(id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errors.New("asset not found")))
				return
			}
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		if asset.ProfileID != profileID {
			response.WriteJSON(w, http.StatusForbidden, response.GeneralError(errors.New("access denied")))
			return
		}

		// Object first. If this fails the record survives and the client can
		// retry; the reverse order would strand an invisible object.
		if err := objects.Delete(r.Context(), asset.ObjectKey); err != nil {
			slog.Error("Failed to delete stored object",
				slog.String("object_key", asset.ObjectKey),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError,
				response.CodedError(string(ingest.ReasonStorageError), errors.New("failed to delete stored object")))
			return
		}

		if err := store.DeleteMediaAsset(id); err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Media deleted successfully", nil))
	}
}

// ReorderMedia rewrites the display order of the profile's media
// @Summary Reorder media
// @Description Set the display order of the profile's assets to the given ID sequence
// @Tags media
// @Accept json
// @Produce json
// @Param order body mediatypes.ReorderRequest true "Ordered asset IDs"
// @Success 200 {object} response.Response "Order updated"
// @Failure 400 {object} response.Response "Bad request"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 500 {object} response.Response "Internal server error"
// @Security BearerAuth
// @Router /api/media/order [post]
func ReorderMedia(store storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID, ok := middleware.GetProfileIDFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("profile not authenticated")))
			return
		}

		var req mediatypes.ReorderRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		if errors.Is(err, io.EOF) {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("request body cannot be empty")))
			return
		} else if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		// Validate request
		validate := validator.New()
		if err := validate.Struct(req); err != nil {
			if ve, ok := err.(validator.ValidationErrors); ok {
				response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(ve))
				return
			}
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := store.UpdateDisplayOrder(profileID, req.AssetIDs); err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Display order updated", nil))
	}
}

// GenerateUploadURL generates a presigned URL for a direct upload
// @Summary Generate presigned upload URL
// @Description Generate a presigned URL so large files can go straight to the object store
// @Tags media
// @Accept json
// @Produce json
// @Param request body mediatypes.UploadURLRequest true "Upload URL request"
// @Success 200 {object} objectstore.UploadInfo "Upload URL generated successfully"
// @Failure 400 {object} response.Response "Unsupported content type"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 500 {object} response.Response "Internal server error"
// @Security BearerAuth
// @Router /api/media/upload-url [post]
func GenerateUploadURL(objects ObjectStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID, ok := middleware.GetProfileIDFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("profile not authenticated")))
			return
		}

		var req mediatypes.UploadURLRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(errors.New("invalid request body")))
			return
		}

		validate := validator.New()
		if err := validate.Struct(req); err != nil {
			if ve, ok := err.(validator.ValidationErrors); ok {
				response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(ve))
				return
			}
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		// No payload passes through the server on this path, so the declared
		// content type is the only thing there is to validate.
		if !mediatype.Allowed(req.ContentType) {
			response.WriteJSON(w, http.StatusBadRequest,
				response.CodedError(string(ingest.ReasonUnsupportedType), errors.New("content type is not allowed")))
			return
		}

		uploadInfo, err := objects.GeneratePresignedUploadURL(profileID, req.FileName, req.ContentType)
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to generate upload URL")))
			return
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Upload URL generated successfully", uploadInfo))
	}
}

// GenerateDownloadURL generates a presigned download URL for an asset
// @Summary Generate presigned download URL
// @Tags media
// @Produce json
// @Param id path string true "Asset ID"
// @Param expires query int false "Expiration time in seconds (default: 3600)"
// @Success 200 {object} map[string]interface{} "Download URL generated successfully"
// @Failure 401 {object} response.Response "Unauthorized"
// @Failure 403 {object} response.Response "Asset belongs to another profile"
// @Failure 404 {object} response.Response "Asset not found"
// @Failure 500 {object} response.Response "Internal server error"
// @Security BearerAuth
// @Router /api/media/{id}/download-url [get]
func GenerateDownloadURL(store storage.Storage, objects ObjectStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID, ok := middleware.GetProfileIDFromContext(r.Context())
		if !ok {
			response.WriteJSON(w, http.StatusUnauthorized, response.GeneralError(errors.New("profile not authenticated")))
			return
		}

		id := r.PathValue("id")
		asset, err := store.GetMediaAsset(id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				response.WriteJSON(w, http.StatusNotFound, response.GeneralError(errors.New("asset not found")))
				return
			}
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
			return
		}
		if asset.ProfileID != profileID {
			response.WriteJSON(w, http.StatusForbidden, response.GeneralError(errors.New("access denied")))
			return
		}

		// Parse expiration time
		expires := 3600 // default 1 hour
		if expiresParam := r.URL.Query().Get("expires"); expiresParam != "" {
			if parsed, err := strconv.Atoi(expiresParam); err == nil && parsed > 0 {
				expires = parsed
			}
		}

		downloadURL, err := objects.GeneratePresignedDownloadURL(asset.ObjectKey, time.Duration(expires)*time.Second)
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(errors.New("failed to generate download URL")))
			return
		}

		resp := map[string]interface{}{
			"asset_id":     asset.ID,
			"download_url": downloadURL.String(),
			"expires_at":   time.Now().Add(time.Duration(expires) * time.Second).Unix(),
		}

		response.WriteJSON(w, http.StatusOK, response.RequestOK("Download URL generated successfully", resp))
	}
}
