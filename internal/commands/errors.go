package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to command failures so hosts can branch without string matching.
const (
	TextCodeInvalidMessage = "CODICE_COMMAND_INVALID"
	TextCodeCanceled       = "CODICE_COMMAND_CANCELED"
	TextCodeTimeout        = "CODICE_COMMAND_TIMEOUT"
	TextCodeContext        = "CODICE_COMMAND_CONTEXT"
	TextCodeFailed         = "CODICE_COMMAND_FAILED"
)

func wrapValidationError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid command message").
		WithTextCode(TextCodeInvalidMessage)
}

func wrapContextError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command canceled").
			WithTextCode(TextCodeCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command timed out").
			WithTextCode(TextCodeTimeout)
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command context failed").
		WithTextCode(TextCodeContext)
}

func wrapExecuteError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command failed").
		WithTextCode(TextCodeFailed)
}
