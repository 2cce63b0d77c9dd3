// Package faultbridge turns domain faults into HTTP responses.
package faultbridge

import (
	"context"
	"net/http"

	"github.com/jrazmi/tasklists/bridge/scaffolding/errs"
	"github.com/jrazmi/tasklists/core/scaffolding/faults"
	"github.com/jrazmi/tasklists/infrastructure/web"
	"github.com/jrazmi/tasklists/sdk/logger"
)

// UnexpectedMessage is flashed when a write fails for a reason the user
// cannot fix.
const UnexpectedMessage = "An unexpected error occurred. Please try again."

// FormStatus reports whether err should be shown inline on the form that
// caused it, and with which status.
func FormStatus(err error) (int, bool) {
	kind, ok := faults.KindOf(err)
	if !ok {
		return 0, false
	}
	switch kind {
	case faults.Invalid:
		return http.StatusUnprocessableEntity, true
	case faults.Conflict:
		return http.StatusConflict, true
	case faults.Unauthenticated:
		return http.StatusUnauthorized, true
	}
	return 0, false
}

// Respond answers a request that failed with err. Missing records and
// ownership violations end the request with 404 and 403. Any other fault is
// flashed and the caller is sent to fallback. Anything else is logged and
// the caller is sent to fallback with a generic message.
func Respond(ctx context.Context, log *logger.Logger, err error, fallback string) web.Encoder {
	kind, ok := faults.KindOf(err)
	if !ok {
		log.ErrorContext(ctx, "request failed", "error", err)
		web.SetFlash(ctx, UnexpectedMessage)
		return web.NewRedirect(fallback)
	}

	switch kind {
	case faults.NotFound:
		return errs.Newf(errs.NotFound, "%s", faults.Message(err))
	case faults.Forbidden:
		return errs.Newf(errs.PermissionDenied, "%s", faults.Message(err))
	}

	web.SetFlash(ctx, faults.Message(err))
	return web.NewRedirect(fallback)
}

// Redirect answers with a redirect to url after flashing err's message. It
// serves self-service flows that send the user elsewhere instead of failing.
func Redirect(ctx context.Context, err error, url string) web.Encoder {
	msg := faults.Message(err)
	if msg == "" {
		msg = UnexpectedMessage
	}
	web.SetFlash(ctx, msg)
	return web.NewRedirect(url)
}
