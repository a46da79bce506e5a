// internal/api/medialinks/handlers.go
package medialinks

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/samaggi-games/tournament-admin/internal/api/apiutil"
	"github.com/samaggi-games/tournament-admin/internal/media"
)

const presignTimeout = 10 * time.Second

var (
	presigner *media.Presigner
	initOnce  sync.Once
)

// InitHandlers must be called during server startup before handling requests.
// A nil presigner leaves media endpoints disabled.
func InitHandlers(p *media.Presigner) {
	if p == nil {
		return
	}
	initOnce.Do(func() {
		presigner = p
	})
}

type uploadURLResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// POST /api/v1/media/upload-url
func HandleUploadURL(w http.ResponseWriter, r *http.Request) {
	if presigner == nil {
		apiutil.WriteError(w, http.StatusServiceUnavailable, "Media storage is not configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), presignTimeout)
	defer cancel()

	key := media.NewKey()
	url, err := presigner.UploadURL(ctx, key)
	if err != nil {
		apiutil.WriteDomainError(w, r, err)
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, uploadURLResponse{Key: key, URL: url})
}

type downloadURLRequest struct {
	Key string `json:"key"`
}

type downloadURLResponse struct {
	URL string `json:"url"`
}

// POST /api/v1/media/download-url
func HandleDownloadURL(w http.ResponseWriter, r *http.Request) {
	if presigner == nil {
		apiutil.WriteError(w, http.StatusServiceUnavailable, "Media storage is not configured")
		return
	}

	var req downloadURLRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := apiutil.RequireFields(map[string]string{
		"key": req.Key,
	}, "key"); err != nil {
		apiutil.WriteDomainError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), presignTimeout)
	defer cancel()

	url, err := presigner.DownloadURL(ctx, req.Key)
	if err != nil {
		apiutil.WriteDomainError(w, r, err)
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, downloadURLResponse{URL: url})
}
