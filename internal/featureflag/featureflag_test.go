package featureflag

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"ms-schedule/internal/config"
)

func TestRequire(t *testing.T) {
	flags := New(config.FeatureConfig{Schedule: true})
	h := flags.Require(Schedule)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/schedule", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	flags.Set(Schedule, false)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/schedule", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownFlagIsOff(t *testing.T) {
	assert.False(t, New(config.FeatureConfig{}).Enabled("NOPE"))
}
