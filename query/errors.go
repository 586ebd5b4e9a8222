package query

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

const (
	errorCodeInternal = "QRY_INTERNAL"
	errorCodeBadInput = "QRY_BAD_INPUT"
)

func queryDependencyError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(errorCodeInternal)
}

func queryWrapValidation(err error, message string) error {
	if err == nil {
		return nil
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, message).
		WithCode(http.StatusBadRequest).
		WithTextCode(errorCodeBadInput)
}
