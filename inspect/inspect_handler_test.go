package inspect

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-bond/lazyobj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInspectHandler(t *testing.T) {
	account, calls := setupAccount(t)

	insp, err := NewInspect([]lazyobj.ObjectInfo{account})
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.Handle("/lazy/", NewInspectHandler(insp))

	t.Run("Objects", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(
			"POST",
			"/lazy/objects",
			bytes.NewBufferString(""))

		mux.ServeHTTP(w, req)
		require.Equal(t, 200, w.Code)

		assert.Equal(t, "[{\"id\":\""+accountID+"\",\"name\":\"Account\"}]", w.Body.String())
	})

	t.Run("Properties", func(t *testing.T) {
		t.Run("Simple", func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(
				"POST",
				"/lazy/properties",
				bytes.NewBufferString("{\"object\": \""+accountID+"\"}"))

			mux.ServeHTTP(w, req)
			require.Equal(t, 200, w.Code)

			assert.Equal(t,
				"{\"Balance\":\"uint64\",\"ID\":\"uint64\",\"Owner\":\"string\"}",
				w.Body.String(),
			)
		})

		t.Run("ErrorObjectNotFound", func(t *testing.T) {
			expectedError := map[string]interface{}{
				"error": "object not found",
			}

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(
				"POST",
				"/lazy/properties",
				bytes.NewBufferString("{\"object\": \"00000000-0000-0000-0000-000000000009\"}"))

			mux.ServeHTTP(w, req)
			require.Equal(t, 500, w.Code)

			var results map[string]interface{}
			err = json.Unmarshal(w.Body.Bytes(), &results)
			require.NoError(t, err)

			assert.Equal(t, expectedError, results)
		})

		t.Run("ErrorBadRequestBody", func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(
				"POST",
				"/lazy/properties",
				bytes.NewBufferString("{"))

			mux.ServeHTTP(w, req)
			require.Equal(t, 500, w.Code)
		})
	})

	t.Run("Status", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(
			"POST",
			"/lazy/status",
			bytes.NewBufferString("{\"object\": \""+accountID+"\"}"))

		mux.ServeHTTP(w, req)
		require.Equal(t, 200, w.Code)

		var status []lazyobj.PropertyStatus
		err = json.Unmarshal(w.Body.Bytes(), &status)
		require.NoError(t, err)
		require.Len(t, status, 3)

		assert.Equal(t, lazyobj.StatePending, status[2].State)
		assert.Equal(t, 0, *calls)
	})

	t.Run("NotAcceptable", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(
			"POST",
			"/lazy/status",
			bytes.NewBufferString("{\"object\": \""+accountID+"\"}"))
		req.Header.Set("Accept", "text/html")

		mux.ServeHTTP(w, req)
		require.Equal(t, http.StatusNotAcceptable, w.Code)
	})

	t.Run("NotFound", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(
			"POST",
			"/lazy/unknown",
			bytes.NewBufferString(""))

		mux.ServeHTTP(w, req)
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Materialize", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(
			"POST",
			"/lazy/materialize",
			bytes.NewBufferString("{\"object\": \""+accountID+"\", \"properties\": [\"Balance\"]}"))

		mux.ServeHTTP(w, req)
		require.Equal(t, 200, w.Code)

		var status []lazyobj.PropertyStatus
		err = json.Unmarshal(w.Body.Bytes(), &status)
		require.NoError(t, err)

		assert.Equal(t, lazyobj.StateMaterialized, status[2].State)
		assert.Equal(t, "500", status[2].Value)
		assert.Equal(t, 1, *calls)
	})
}
