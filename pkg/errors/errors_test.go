package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Wrap(errors.New("disk I/O error"), ErrStoreUnavailable.Code, ErrStoreUnavailable.Status, "failed to record fee"))

	appErr := FromError(wrapped)
	assert.Equal(t, "STORE_UNAVAILABLE", appErr.Code)
	assert.Equal(t, http.StatusServiceUnavailable, appErr.Status)
	assert.Equal(t, "failed to record fee: disk I/O error", appErr.Error())
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	appErr := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Nil(t, FromError(nil))
}

func TestCloneAndWithFieldsDoNotMutateSentinel(t *testing.T) {
	clone := Clone(ErrValidation, "invalid fee payload")
	withFields := WithFields(clone, map[string]string{"note": "note must be one of [Full Less]"})

	assert.Equal(t, "validation failed", ErrValidation.Message)
	assert.Nil(t, ErrValidation.Fields)
	assert.Equal(t, "invalid fee payload", withFields.Message)
	assert.Equal(t, "note must be one of [Full Less]", withFields.Fields["note"])
}
