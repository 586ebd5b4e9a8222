package command

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

const (
	errorCodeInternal = "CMD_INTERNAL"
	errorCodeBadInput = "CMD_BAD_INPUT"
)

func commandDependencyError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(errorCodeInternal)
}

func commandWrapValidation(err error, message string) error {
	if err == nil {
		return nil
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, message).
		WithCode(http.StatusBadRequest).
		WithTextCode(errorCodeBadInput)
}
