package handlers

import (
	"errors"
	"net/http"

	"github.com/freespaces/server/internal/accounts"
	"github.com/freespaces/server/internal/identifier"
	"github.com/freespaces/server/internal/posts"
	"github.com/freespaces/server/internal/usernames"
	"github.com/freespaces/server/internal/utils"
)

var (
	accountService *accounts.Service
	postService    *posts.Service
)

// Init wires the handler package to its services. Called once from SetupRouter.
func Init(accountSvc *accounts.Service, postSvc *posts.Service) {
	accountService = accountSvc
	postService = postSvc
}

// writeServiceError translates domain errors into response codes. Validation
// failures stay 4xx with the service's message; resolution exhaustion is the
// one retryable 503.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usernames.ErrTooShort),
		errors.Is(err, usernames.ErrTooLong),
		errors.Is(err, usernames.ErrInvalidChars),
		errors.Is(err, usernames.ErrReserved),
		errors.Is(err, posts.ErrInvalidSlug),
		errors.Is(err, posts.ErrBadStatus),
		errors.Is(err, posts.ErrNoTitle):
		utils.JSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, accounts.ErrUsernameTaken), errors.Is(err, posts.ErrSlugTaken):
		utils.JSONError(w, http.StatusConflict, err.Error())
	case errors.Is(err, accounts.ErrUserNotFound), errors.Is(err, posts.ErrNotFound):
		utils.JSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, posts.ErrForbidden):
		utils.JSONError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, identifier.ErrExhausted):
		utils.JSONError(w, http.StatusServiceUnavailable, "Could not find a free identifier, please retry")
	default:
		utils.JSONError(w, http.StatusInternalServerError, "Something went wrong")
	}
}
