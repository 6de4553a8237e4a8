package handler

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpscreen/internal/records/models"
	"rpscreen/internal/records/service"
	"rpscreen/internal/records/store"
	"rpscreen/internal/storage"
	"rpscreen/pkg/testutil"
)

func newRecordsRouter(t *testing.T) http.Handler {
	t.Helper()
	dir := t.TempDir()
	seq := storage.OpenSequences(dir)
	svc := service.New(store.NewCustomerStore(dir, seq), store.NewRestrictedPartyStore(dir, seq))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	New(svc, logger).Register(r)
	return r
}

func TestCustomerCRUDViaHandlers(t *testing.T) {
	router := newRecordsRouter(t)

	rec := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/customers", map[string]string{
		"name":    " Acme Corp ",
		"address": "1 Main St",
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := testutil.UnmarshalResponse[models.Customer](t, rec)
	assert.Equal(t, 1, created.ID)
	assert.Equal(t, "Acme Corp", created.Name)

	rec = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPut, "/api/customers/1", map[string]string{
		"email": "ops@acme.test",
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := testutil.UnmarshalResponse[models.Customer](t, rec)
	assert.Equal(t, "1 Main St", updated.Address)
	assert.Equal(t, "ops@acme.test", updated.Email)
	assert.NotNil(t, updated.ModifiedDate)

	rec = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/api/customers", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	list := testutil.UnmarshalResponse[[]models.Customer](t, rec)
	assert.Len(t, *list, 1)

	rec = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodDelete, "/api/customers/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	deleted := testutil.UnmarshalResponse[DeletedCustomerResponse](t, rec)
	assert.True(t, deleted.Success)
	assert.Equal(t, 1, deleted.Customer.ID)
}

func TestDeleteUnknownCustomerReturns404(t *testing.T) {
	router := newRecordsRouter(t)

	rec := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodDelete, "/api/customers/9", nil))
	testutil.AssertStatusAndError(t, rec, http.StatusNotFound, "not_found")
}

func TestFailuresAreLoggedWithRequestID(t *testing.T) {
	var logs bytes.Buffer
	dir := t.TempDir()
	seq := storage.OpenSequences(dir)
	svc := service.New(store.NewCustomerStore(dir, seq), store.NewRestrictedPartyStore(dir, seq))
	r := chi.NewRouter()
	New(svc, slog.New(slog.NewTextHandler(&logs, nil))).Register(r)

	req := testutil.NewJSONRequest(t, http.MethodDelete, "/api/restricted-parties/4", nil)
	rec := testutil.DoRequest(r, testutil.WithRequestID(req, "req-42"))

	testutil.AssertStatusAndError(t, rec, http.StatusNotFound, "not_found")
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "request_id=req-42")
}

func TestUpdateWithNonNumericIDIsBadRequest(t *testing.T) {
	router := newRecordsRouter(t)

	rec := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPut, "/api/restricted-parties/abc", map[string]string{}))
	testutil.AssertStatusAndError(t, rec, http.StatusBadRequest, "bad_request")
}

func TestCreateCustomerWithoutNameIsRejected(t *testing.T) {
	router := newRecordsRouter(t)

	rec := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/customers", map[string]string{"email": "x@y.z"}))
	testutil.AssertStatusAndError(t, rec, http.StatusBadRequest, "validation_error")
}

func TestRestrictedPartyCreateAndDelete(t *testing.T) {
	router := newRecordsRouter(t)

	rec := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/restricted-parties", map[string]string{
		"name":   "Bad Co",
		"reason": "sanctioned",
		"source": "OFAC",
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodDelete, "/api/restricted-parties/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	deleted := testutil.UnmarshalResponse[DeletedRestrictedPartyResponse](t, rec)
	assert.Equal(t, "OFAC", deleted.Party.Source)

	rec = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodDelete, "/api/restricted-parties/1", nil))
	testutil.AssertStatusAndError(t, rec, http.StatusNotFound, "not_found")
}
