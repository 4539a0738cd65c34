package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"video-generation-service/internal/domain"
	"video-generation-service/internal/domain/model"
	"video-generation-service/internal/usecase"
)

// maxImageBytes bounds multipart uploads; a reference image never needs more.
const maxImageBytes = 32 << 20

type jobMetadata struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

type generateResponse struct {
	ID                      string      `json:"id"`
	Status                  string      `json:"status"`
	ProgressPercentage      int         `json:"progress_percentage"`
	EstimatedCompletionTime int         `json:"estimated_completion_time"`
	Metadata                jobMetadata `json:"metadata"`
}

type statusResponse struct {
	ID                 string      `json:"id"`
	Status             string      `json:"status"`
	ProgressPercentage int         `json:"progress_percentage"`
	VideoURL           *string     `json:"video_url"`
	ErrorMessage       *string     `json:"error_message"`
	Metadata           jobMetadata `json:"metadata"`
	CreatedAt          time.Time   `json:"created_at"`
}

// generateHandler accepts either a JSON body {"prompt": ...} or a multipart
// form with a "prompt" field and an optional "image" file.
func generateHandler(genUC usecase.GenerationUseCase, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		prompt, imageBytes, imageMIME, err := parseGenerateRequest(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		job, err := genUC.Submit(ctx, prompt, imageBytes, imageMIME)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				http.Error(w, "prompt is required", http.StatusBadRequest)
				return
			}
			log.Error().Err(err).Msg("submission failed")
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, generateResponse{
			ID:                      job.ID,
			Status:                  string(job.Status),
			ProgressPercentage:      job.Progress,
			EstimatedCompletionTime: genUC.EstimatedSeconds(),
			Metadata:                jobMetadata{Provider: job.Provider, Model: job.Model},
		})
	}
}

func statusHandler(genUC usecase.GenerationUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := chi.URLParam(r, "id")

		job, err := genUC.Status(ctx, id)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := statusResponse{
			ID:                 job.ID,
			Status:             string(job.Status),
			ProgressPercentage: job.Progress,
			Metadata:           jobMetadata{Provider: job.Provider, Model: job.Model},
			CreatedAt:          job.CreatedAt,
		}
		if job.Status == model.GenerationStatusCompleted {
			u := fmt.Sprintf("/api/v1/videos/%s/download", job.ID)
			resp.VideoURL = &u
		}
		if job.ErrorMessage != "" {
			resp.ErrorMessage = &job.ErrorMessage
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func downloadHandler(genUC usecase.GenerationUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := chi.URLParam(r, "id")

		data, contentType, err := genUC.Download(ctx, id)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="video-%s.mp4"`, id))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

func providersHandler(genUC usecase.GenerationUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, struct {
			Providers any `json:"providers"`
		}{Providers: genUC.Providers()})
	}
}

func healthHandler(genUC usecase.GenerationUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providers := genUC.Providers()
		names := make([]string, 0, len(providers))
		for _, p := range providers {
			names = append(names, p.Name)
		}
		writeJSON(w, http.StatusOK, struct {
			Status    string   `json:"status"`
			Service   string   `json:"service"`
			Providers []string `json:"providers"`
		}{Status: "healthy", Service: "video-generation-service", Providers: names})
	}
}

func parseGenerateRequest(r *http.Request) (prompt string, imageBytes []byte, imageMIME string, err error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxImageBytes); err != nil {
			return "", nil, "", errors.New("invalid multipart body")
		}
		prompt = r.FormValue("prompt")

		file, header, ferr := r.FormFile("image")
		if ferr == nil {
			defer file.Close()
			imageBytes, err = io.ReadAll(io.LimitReader(file, maxImageBytes))
			if err != nil {
				return "", nil, "", errors.New("could not read image")
			}
			imageMIME = header.Header.Get("Content-Type")
			if imageMIME == "" {
				imageMIME = "image/jpeg"
			}
		} else if ferr != http.ErrMissingFile {
			return "", nil, "", errors.New("invalid image upload")
		}
		return prompt, imageBytes, imageMIME, nil
	}

	var body struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return "", nil, "", errors.New("invalid request body")
	}
	return body.Prompt, nil, "", nil
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidArgument):
		http.Error(w, "invalid argument", http.StatusBadRequest)
	case errors.Is(err, domain.ErrStoreUnavailable):
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
