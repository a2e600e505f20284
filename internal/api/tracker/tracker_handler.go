package tracker

import (
	"encoding/json"
	"encoding/xml"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// WebhookHandler exposes the inbound message endpoint. The same endpoint
// serves both transports: Twilio posts form data with the SMS text in
// Body, Apple Shortcuts posts JSON with a food field. Replies carry the
// same text either way; only the envelope differs.
type WebhookHandler struct {
	service Service
	logger  *slog.Logger
}

func NewWebhookHandler(service Service, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		logger:  logger,
	}
}

// twiml is the response envelope Twilio expects from an SMS webhook:
// <Response><Message>text</Message></Response>.
type twiml struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

// HandleInbound processes one message and always answers 200 with a reply
// body on success paths; Twilio redelivers on non-2xx, so only genuinely
// malformed requests get a 400.
func (h *WebhookHandler) HandleInbound(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(
		slog.String("handler", "HandleInbound"),
		slog.String("req_id", middleware.GetReqID(r.Context())),
	)

	text, fromTwilio, err := inboundText(w, r)
	if err != nil {
		l.WarnContext(r.Context(), "Malformed request body", slog.Any("error", err))
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}

	reply := h.service.HandleMessage(r.Context(), text)

	if fromTwilio {
		body, err := xml.Marshal(twiml{Message: reply})
		if err != nil {
			l.ErrorContext(r.Context(), "Failed to marshal TwiML", slog.Any("error", err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/xml")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(append([]byte(xml.Header), body...)); err != nil {
			l.ErrorContext(r.Context(), "Failed to write response body", slog.Any("error", err))
		}
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(reply)); err != nil {
		l.ErrorContext(r.Context(), "Failed to write response body", slog.Any("error", err))
	}
}

// inboundText extracts the raw message text, detecting the source from
// the Content-Type header. Anything that isn't JSON is treated as a
// Twilio form post.
func inboundText(w http.ResponseWriter, r *http.Request) (text string, fromTwilio bool, err error) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		var payload struct {
			Food string `json:"food"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return "", false, err
		}
		return payload.Food, false, nil
	}

	if err := r.ParseForm(); err != nil {
		return "", true, err
	}
	return r.PostFormValue("Body"), true, nil
}
