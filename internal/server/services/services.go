// Package services implements the MemoBoost use cases on top of a
// repomanager.RepositoryManager. Every method takes the acting user id and
// passes it down to the repositories, which filter on it in the query.
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/agahlya1812/memoboost/internal/common"
	"github.com/google/uuid"
)

var (
	newID = uuid.NewString
	now   = func() time.Time { return time.Now().UTC() }
)

var domainErrors = []error{
	common.ErrorNotFound,
	common.ErrorInvalidArgument,
	common.ErrorConflict,
	common.ErrorUnauthenticated,
	common.ErrorInvalidSession,
	common.ErrorUnauthorized,
	common.ErrorUnavailable,
}

// storageError keeps domain errors as they are and reports anything else
// coming out of the persistence layer as common.ErrorUnavailable.
func storageError(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range domainErrors {
		if errors.Is(err, kind) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", common.ErrorUnavailable, err)
}

func invalid(msg string) error {
	return common.NewError(common.ErrorInvalidArgument, msg)
}

func notFound(msg string) error {
	return common.NewError(common.ErrorNotFound, msg)
}
