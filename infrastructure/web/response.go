package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// NoResponse tells the Respond function to not respond to the request. In these
// cases the app layer code has already done so.
type NoResponse struct{}

// NewNoResponse constructs a no reponse value.
func NewNoResponse() NoResponse {
	return NoResponse{}
}

// Encode implements the Encoder interface.
func (NoResponse) Encode() ([]byte, string, error) {
	return nil, "", nil
}

// HTMLResponse is a rendered page.
type HTMLResponse struct {
	Body   []byte
	Status int
}

func NewHTMLResponse(body []byte, status int) *HTMLResponse {
	return &HTMLResponse{Body: body, Status: status}
}

func (h *HTMLResponse) Encode() ([]byte, string, error) {
	return h.Body, "text/html; charset=utf-8", nil
}

func (h *HTMLResponse) HTTPStatus() int {
	if h.Status == 0 {
		return http.StatusOK
	}
	return h.Status
}

// TextResponse is a plain text body.
type TextResponse struct {
	Text   string
	Status int
}

func NewTextResponse(text string) *TextResponse {
	return &TextResponse{Text: text}
}

func (t *TextResponse) Encode() ([]byte, string, error) {
	return []byte(t.Text), "text/plain; charset=utf-8", nil
}

func (t *TextResponse) HTTPStatus() int {
	if t.Status == 0 {
		return http.StatusOK
	}
	return t.Status
}

// Redirect sends the client to URL. The zero Status is 303 See Other so a
// POST is always followed by a GET.
type Redirect struct {
	URL    string
	Status int
}

func NewRedirect(url string) *Redirect {
	return &Redirect{URL: url}
}

func (rd *Redirect) Encode() ([]byte, string, error) {
	return nil, "", nil
}

func (rd *Redirect) HTTPStatus() int {
	if rd.Status == 0 {
		return http.StatusSeeOther
	}
	return rd.Status
}

func (rd *Redirect) ResponseHeaders() map[string]string {
	return map[string]string{"Location": rd.URL}
}

// =============================================================================

type httpStatus interface {
	HTTPStatus() int
}

type responseHeaders interface {
	ResponseHeaders() map[string]string
}

// Respond sends a response to the client.
func Respond(ctx context.Context, w http.ResponseWriter, resp Encoder) error {
	if _, ok := resp.(NoResponse); ok {
		return nil
	}

	// If the context has been canceled, it means the client is no longer
	// waiting for a response.
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.Canceled) {
			return errors.New("client disconnected, do not send response")
		}
	}

	statusCode := http.StatusOK

	switch v := resp.(type) {
	case httpStatus:
		statusCode = v.HTTPStatus()

	case error:
		statusCode = http.StatusInternalServerError

	default:
		if resp == nil {
			statusCode = http.StatusNoContent
		}
	}

	if statusCode == http.StatusNoContent {
		w.WriteHeader(statusCode)
		return nil
	}

	if h, ok := resp.(responseHeaders); ok {
		for k, v := range h.ResponseHeaders() {
			w.Header().Set(k, v)
		}
	}

	data, contentType, err := resp.Encode()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return fmt.Errorf("respond: encode: %w", err)
	}

	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(statusCode)

	if len(data) == 0 {
		return nil
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("respond: write: %w", err)
	}

	return nil
}
