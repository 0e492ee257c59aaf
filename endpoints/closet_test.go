package endpoints

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClosetHandler(t *testing.T) {
	h := NewClosetHandler(Deps{})

	req := httptest.NewRequest("POST", "/closet", nil)
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())
}
