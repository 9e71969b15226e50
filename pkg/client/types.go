package client

import (
	"github.com/lkhn/wealth-backend/internal/models"
	"github.com/lkhn/wealth-backend/internal/notify"
)

// Types returned by the client, re-exported so callers outside this module can
// name them and match errors with errors.As.
type (
	ForumCategory = models.ForumCategory
	ForumPost     = models.ForumPost

	// FunctionError is returned by CallFunction when the API reports a structured failure.
	FunctionError = notify.FunctionError
	FunctionCode  = notify.Code
)

const (
	CodeInvalidArgument = notify.CodeInvalidArgument
	CodeNotFound        = notify.CodeNotFound
	CodeInternal        = notify.CodeInternal
)
