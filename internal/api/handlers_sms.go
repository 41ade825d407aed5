// handlers_sms.go - SMS handlers
package api

import (
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"github.com/mickey-water/billing/internal/models"
	"github.com/mickey-water/billing/internal/sms"
)

// SMSHandlerImpl implements the SMSHandler interface
type SMSHandlerImpl struct {
	sender sms.Sender
}

// NewSMSHandler creates a new SMS handler
func NewSMSHandler(sender sms.Sender) SMSHandler {
	return &SMSHandlerImpl{sender: sender}
}

// HandleSendSMS validates a message and hands it to the sender
func (h *SMSHandlerImpl) HandleSendSMS(c echo.Context) error {
	var req sendSMSRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	if err := req.validate(); err != nil {
		return err
	}

	msg := models.SMSMessage{
		To:   strings.TrimSpace(req.To.text()),
		Body: req.Message,
	}
	if err := h.sender.Send(c.Request().Context(), msg); err != nil {
		return NewInternalError("Failed to send SMS", err)
	}

	return respond(c, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "SMS sent successfully",
		"details": models.SMSDetails{
			To:        msg.To,
			Length:    utf8.RuneCountInString(msg.Body),
			Timestamp: time.Now().UTC(),
		},
	})
}
