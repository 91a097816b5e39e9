package tet

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(gen ContentGenerator) *mux.Router {
	r := mux.NewRouter()
	NewHandler(newTestService(gen)).RegisterRoutes(r)
	return r
}

func doTransform(t *testing.T, r http.Handler, body string) (*httptest.ResponseRecorder, TransformResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/tet/transform", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var resp TransformResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec, resp
}

func TestHandleOptions(t *testing.T) {
	r := newTestRouter(&mockGenerator{})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tet/options", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var catalog OptionCatalog
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&catalog))
	assert.Equal(t, DefaultOptions(), catalog.Defaults)
}

func TestHandleTransform(t *testing.T) {
	const image = `"data:image/jpeg;base64,aGVsbG8="`

	t.Run("success", func(t *testing.T) {
		gen := &mockGenerator{response: imageResponse("image/png", []byte("out"))}
		rec, resp := doTransform(t, newTestRouter(gen), `{"images":[`+image+`],"flowerType":"apricot"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, resp.Success)
		assert.Equal(t, "data:image/png;base64,b3V0", resp.Image)
	})

	t.Run("empty result", func(t *testing.T) {
		rec, resp := doTransform(t, newTestRouter(&mockGenerator{response: textOnlyResponse()}), `{"images":[`+image+`]}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, resp.Success)
		assert.Equal(t, MsgEmptyResult, resp.ErrorMessage)
	})

	t.Run("gemini failure", func(t *testing.T) {
		rec, resp := doTransform(t, newTestRouter(&mockGenerator{err: errors.New("boom")}), `{"images":[`+image+`]}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, MsgTransformFailed, resp.ErrorMessage)
	})

	t.Run("bad requests", func(t *testing.T) {
		for name, body := range map[string]string{
			"malformed json":  `{`,
			"no images":       `{"images":[]}`,
			"bad data uri":    `{"images":["hello"]}`,
			"unknown flower":  `{"images":[` + image + `],"flowerType":"lotus"}`,
			"unknown framing": `{"images":[` + image + `],"options":{"framing":"wide"}}`,
		} {
			gen := &mockGenerator{}
			rec, resp := doTransform(t, newTestRouter(gen), body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, name)
			assert.False(t, resp.Success, name)
			assert.Empty(t, gen.calls, name)
		}
	})
}
