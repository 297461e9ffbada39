package response

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JasjusSirsak/bolususu/internal/domain"
)

func TestStatusOf(t *testing.T) {
	cases := map[domain.Kind]int{
		domain.KindUnauthenticated: http.StatusUnauthorized,
		domain.KindForbidden:       http.StatusForbidden,
		domain.KindNotFound:        http.StatusNotFound,
		domain.KindInvalidInput:    http.StatusBadRequest,
		domain.KindConflict:        http.StatusConflict,
		domain.KindStorage:         http.StatusInternalServerError,
	}
	for k, want := range cases {
		assert.Equal(t, want, StatusOf(k), k.String())
	}
}

func TestFromError_HidesStorageCause(t *testing.T) {
	status, r := FromError(domain.Storage("failed to upload CSV", errors.New("dial tcp 10.0.0.3:3306: refused")))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, http.StatusInternalServerError, r.Code)
	assert.Equal(t, "failed to upload CSV", r.Msg)

	status, r = FromError(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal error", r.Msg)

	status, r = FromError(domain.Conflict("email already exists"))
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "email already exists", r.Msg)
}

func TestNew_NeverNullData(t *testing.T) {
	r := New(CodeOK, "OK", nil)
	assert.Equal(t, struct{}{}, r.Data)
}
