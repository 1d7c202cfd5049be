package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/klokku/finplan/internal/config"
	"github.com/klokku/finplan/pkg/projection"
	"github.com/klokku/finplan/pkg/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	cfg := config.Defaults()
	deps, err := BuildDependencies(cfg)
	require.NoError(t, err)
	r := mux.NewRouter()
	SetupMiddleware(r, deps, cfg)
	RegisterRoutes(r, deps, cfg)
	return r
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRoutes_WizardFlow(t *testing.T) {
	// given
	r := newTestRouter(t)
	created := do(r, http.MethodPost, "/api/wizard", "")
	require.Equal(t, http.StatusCreated, created.Code)
	var session wizard.SessionDTO
	require.NoError(t, json.NewDecoder(created.Body).Decode(&session))
	base := "/api/wizard/" + session.Id

	// when
	step := do(r, http.MethodPut, base+"/step", `{"step":3}`)
	taxes := do(r, http.MethodPut, base+"/taxes", `{"citRatePct":0.2,"citPaymentMonth":6}`)
	next := do(r, http.MethodPost, base+"/next", "")
	export := do(r, http.MethodGet, base+"/export/pl", "")
	deleted := do(r, http.MethodDelete, base, "")
	gone := do(r, http.MethodGet, base, "")

	// then
	require.Equal(t, http.StatusOK, step.Code)
	var stepped wizard.SessionDTO
	require.NoError(t, json.NewDecoder(step.Body).Decode(&stepped))
	assert.Equal(t, 3, stepped.Step)

	require.Equal(t, http.StatusOK, taxes.Code)
	var taxed wizard.SessionDTO
	require.NoError(t, json.NewDecoder(taxes.Body).Decode(&taxed))
	assert.Equal(t, projection.TaxesDTO{CITRatePct: 0.2, CITPaymentMonth: 6}, taxed.Assumptions.Taxes)
	assert.Equal(t, 3, taxed.Step)

	var moved wizard.SessionDTO
	require.NoError(t, json.NewDecoder(next.Body).Decode(&moved))
	assert.Equal(t, 4, moved.Step)

	assert.Equal(t, http.StatusOK, export.Code)
	assert.True(t, strings.HasPrefix(export.Body.String(), ",Year 1,Year 2,Year 3\n"))
	assert.Equal(t, http.StatusNoContent, deleted.Code)
	assert.Equal(t, http.StatusNotFound, gone.Code)
}

func TestRoutes_Projection(t *testing.T) {
	// given
	r := newTestRouter(t)
	body, err := json.Marshal(projection.AssumptionsToDTO(wizard.DefaultAssumptions()))
	require.NoError(t, err)

	// when
	w := do(r, http.MethodPost, "/api/projection", string(body))
	v := do(r, http.MethodPost, "/api/projection/validate", string(body))

	// then
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"summary"`)
	assert.Equal(t, http.StatusOK, v.Code)
	assert.JSONEq(t, "[]", v.Body.String())
}

func TestBuildDependencies_InvalidLocale(t *testing.T) {
	// given
	cfg := config.Defaults()
	cfg.Export.Locale = "??"

	// when
	_, err := BuildDependencies(cfg)

	// then
	assert.Error(t, err)
}
