// handlers_relay.go - Remote storage relay handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mickey-water/billing/internal/relay"
	"golang.org/x/sync/semaphore"
)

// RelayHandlerImpl implements the RelayHandler interface
type RelayHandlerImpl struct {
	uploader Uploader
	limiter  *semaphore.Weighted
}

// NewRelayHandler creates a new relay handler. maxConcurrent bounds the
// number of relay calls in flight; 0 means unlimited. Calls beyond the bound
// are rejected at once rather than queued.
func NewRelayHandler(uploader Uploader, maxConcurrent int) RelayHandler {
	h := &RelayHandlerImpl{uploader: uploader}
	if maxConcurrent > 0 {
		h.limiter = semaphore.NewWeighted(int64(maxConcurrent))
	}
	return h
}

// HandleSaveToMega forwards a file to the remote account named by the
// credentials in the request body
func (h *RelayHandlerImpl) HandleSaveToMega(c echo.Context) error {
	var req saveToMegaRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	uploadReq, err := req.toUploadRequest()
	if err != nil {
		return err
	}

	if h.limiter != nil {
		if !h.limiter.TryAcquire(1) {
			return NewServiceUnavailableError("upload relay is busy")
		}
		defer h.limiter.Release(1)
	}

	result := h.uploader.HandleUpload(c.Request().Context(), uploadReq)
	if !result.Success {
		status := http.StatusInternalServerError
		if result.Code == string(relay.KindValidation) {
			status = http.StatusBadRequest
		}
		return &APIError{
			Status:  status,
			Code:    result.Code,
			Message: result.ErrorMessage,
		}
	}

	return respond(c, http.StatusOK, result)
}
