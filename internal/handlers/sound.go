package handlers

import (
	"errors"
	"mime"
	"net/http"

	"alarm-clock-backend/internal/middleware"
	"alarm-clock-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// multipart overhead allowed on top of the sound itself
const formOverhead = 1 << 20

// SoundHandler handles sound HTTP requests
type SoundHandler struct {
	soundService *services.SoundService
}

// NewSoundHandler creates a new sound handler
func NewSoundHandler(soundService *services.SoundService) *SoundHandler {
	return &SoundHandler{
		soundService: soundService,
	}
}

// AddSoundURLRequest registers an externally hosted sound
type AddSoundURLRequest struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

// PresignSoundRequest asks for a direct upload URL
type PresignSoundRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// UploadSoundResponse is returned once a sound is stored
type UploadSoundResponse struct {
	Success bool                    `json:"success"`
	Sound   *services.SoundResponse `json:"sound"`
}

// UploadSound handles POST /api/upload_sound: a multipart "file" field, or a JSON body with a url
func (h *SoundHandler) UploadSound(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scope := middleware.GetScope(ctx)

	var (
		res *services.SoundResponse
		err error
	)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, services.MaxSoundBytes+formOverhead)
		if perr := r.ParseMultipartForm(services.MaxSoundBytes); perr != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(perr, &tooLarge) {
				respondError(w, "file exceeds 10 MB", http.StatusRequestEntityTooLarge)
				return
			}
			respondError(w, "Invalid multipart form", http.StatusBadRequest)
			return
		}

		file, header, ferr := r.FormFile("file")
		switch {
		case errors.Is(ferr, http.ErrMissingFile):
			res, err = h.soundService.AddURL(ctx, scope, r.FormValue("url"), r.FormValue("name"))
		case ferr != nil:
			respondError(w, "Invalid multipart form", http.StatusBadRequest)
			return
		default:
			defer file.Close()
			res, err = h.soundService.Upload(ctx, scope, services.UploadSoundInput{
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Body:        file,
				Size:        header.Size,
			})
		}
	} else {
		var req AddSoundURLRequest
		if derr := decodeBody(r, &req); derr != nil {
			respondError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		res, err = h.soundService.AddURL(ctx, scope, req.URL, req.Name)
	}

	if err != nil {
		log.Error().
			Err(err).
			Str("scope", scope.String()).
			Msg("Failed to add sound")
		respondServiceError(w, err, "Failed to store sound")
		return
	}

	log.Info().
		Str("scope", scope.String()).
		Str("sound_id", res.ID).
		Msg("Sound added")

	respondJSON(w, UploadSoundResponse{Success: true, Sound: res}, http.StatusOK)
}

// PresignUpload handles POST /api/upload_sound/presign
func (h *SoundHandler) PresignUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scope := middleware.GetScope(ctx)

	var req PresignSoundRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	res, err := h.soundService.PresignUpload(ctx, scope, req.Filename, req.ContentType)
	if err != nil {
		log.Error().
			Err(err).
			Str("scope", scope.String()).
			Str("filename", req.Filename).
			Msg("Failed to generate pre-signed URL")
		respondServiceError(w, err, "Failed to generate upload URL")
		return
	}

	log.Info().
		Str("scope", scope.String()).
		Str("sound_id", res.SoundID).
		Msg("Pre-signed URL generated")

	respondJSON(w, res, http.StatusOK)
}

// ListSounds handles GET /api/user_sounds
func (h *SoundHandler) ListSounds(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scope := middleware.GetScope(ctx)

	sounds, err := h.soundService.List(ctx, scope)
	if err != nil {
		log.Error().
			Err(err).
			Str("scope", scope.String()).
			Msg("Failed to list sounds")
		respondError(w, "Failed to list sounds", http.StatusInternalServerError)
		return
	}

	respondJSON(w, sounds, http.StatusOK)
}
