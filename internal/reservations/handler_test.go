package reservations

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamroom-io/teamroom/internal/rbac"
	"github.com/teamroom-io/teamroom/internal/shared"
)

func newTestRouter(repo *mockRepository, perms *mockPerms) chi.Router {
	handler := NewHandler(slog.New(slog.NewTextHandler(testWriter{}, nil)), NewService(repo, perms))
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

func doRequest(t *testing.T, r chi.Router, method, target string, body string, userID int64) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if userID != 0 {
		ctx := shared.ContextWithPrincipal(req.Context(), &shared.Principal{ID: userID, Name: "tester"})
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func bookingBody(teamID, roomID int64, start, end time.Time, override bool) string {
	return fmt.Sprintf(`{"team_id":%d,"room_id":%d,"start":%q,"end":%q,"override":%t}`,
		teamID, roomID, start.Format(time.RFC3339), end.Format(time.RFC3339), override)
}

func TestCreateEndpoint(t *testing.T) {
	repo := newMockRepository()
	perms := newMockPerms()
	perms.grant(12, rbac.Base(rbac.ActionReservationCreate))
	router := newTestRouter(repo, perms)

	rec := doRequest(t, router, http.MethodPost, "/reservation", bookingBody(3, 1, at(10, 0), at(11, 0), false), 12)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Len(t, repo.reservations, 1)
}

func TestCreateEndpointUnauthenticated(t *testing.T) {
	router := newTestRouter(newMockRepository(), newMockPerms())

	rec := doRequest(t, router, http.MethodPost, "/reservation", bookingBody(3, 1, at(10, 0), at(11, 0), false), 0)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateEndpointOverridableConflict(t *testing.T) {
	repo := newMockRepository()
	seed(t, repo, 3, 1, at(10, 30), at(11, 30))
	perms := newMockPerms()
	perms.grant(10, rbac.Base(rbac.ActionReservationCreate))
	router := newTestRouter(repo, perms)

	rec := doRequest(t, router, http.MethodPost, "/reservation", bookingBody(1, 1, at(10, 0), at(11, 0), false), 10)
	require.Equal(t, http.StatusConflict, rec.Code)

	var body conflictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Overridable)
	assert.Len(t, repo.reservations, 1)
}

func TestCreateEndpointBlockedConflict(t *testing.T) {
	repo := newMockRepository()
	seed(t, repo, 3, 1, at(10, 30), at(11, 30))
	perms := newMockPerms()
	perms.grant(13, rbac.Base(rbac.ActionReservationCreate))
	router := newTestRouter(repo, perms)

	// Equal priority, override requested: still a 409 with overridable=false.
	rec := doRequest(t, router, http.MethodPost, "/reservation", bookingBody(4, 1, at(10, 0), at(11, 0), true), 13)
	require.Equal(t, http.StatusConflict, rec.Code)

	var body conflictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Overridable)
}

func TestCreateEndpointOverrideConfirmed(t *testing.T) {
	repo := newMockRepository()
	seed(t, repo, 3, 1, at(10, 30), at(11, 30))
	perms := newMockPerms()
	perms.grant(10, rbac.Base(rbac.ActionReservationCreate))
	router := newTestRouter(repo, perms)

	rec := doRequest(t, router, http.MethodPost, "/reservation", bookingBody(1, 1, at(10, 0), at(11, 0), true), 10)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, repo.reservations, 1)
}

func TestCreateEndpointInvalidInterval(t *testing.T) {
	repo := newMockRepository()
	perms := newMockPerms()
	perms.grant(12, rbac.Base(rbac.ActionReservationCreate))
	router := newTestRouter(repo, perms)

	rec := doRequest(t, router, http.MethodPost, "/reservation", bookingBody(3, 1, at(11, 0), at(10, 0), false), 12)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateEndpointMalformedBody(t *testing.T) {
	router := newTestRouter(newMockRepository(), newMockPerms())

	rec := doRequest(t, router, http.MethodPost, "/reservation", `{"team_id":`, 12)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateEndpointMissingTeam(t *testing.T) {
	router := newTestRouter(newMockRepository(), newMockPerms())

	rec := doRequest(t, router, http.MethodPost, "/reservation", bookingBody(999, 1, at(10, 0), at(11, 0), false), 12)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateEndpointForbidden(t *testing.T) {
	router := newTestRouter(newMockRepository(), newMockPerms())

	rec := doRequest(t, router, http.MethodPost, "/reservation", bookingBody(3, 1, at(10, 0), at(11, 0), false), 12)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestReadEndpoint(t *testing.T) {
	repo := newMockRepository()
	existing := seed(t, repo, 3, 1, at(10, 0), at(11, 0))
	router := newTestRouter(repo, newMockPerms())

	rec := doRequest(t, router, http.MethodGet, fmt.Sprintf("/reservation/%d", existing.ID), "", 11)
	require.Equal(t, http.StatusOK, rec.Code)

	var view reservationView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, existing.ID, view.ID)
	assert.Equal(t, int64(3), view.TeamID)
	assert.Equal(t, at(10, 0).Format(time.RFC3339), view.Start)
}

func TestReadEndpointMissing(t *testing.T) {
	router := newTestRouter(newMockRepository(), newMockPerms())

	rec := doRequest(t, router, http.MethodGet, "/reservation/404", "", 11)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateEndpoint(t *testing.T) {
	repo := newMockRepository()
	existing := seed(t, repo, 3, 1, at(10, 0), at(11, 0))
	perms := newMockPerms()
	perms.grant(12, rbac.Base(rbac.ActionReservationUpdate))
	router := newTestRouter(repo, perms)

	rec := doRequest(t, router, http.MethodPut, fmt.Sprintf("/reservation/%d", existing.ID),
		bookingBody(3, 1, at(14, 0), at(15, 0), false), 12)
	require.Equal(t, http.StatusOK, rec.Code)

	got := repo.reservations[existing.ID]
	assert.Equal(t, at(14, 0), got.Start)
}

func TestDeleteEndpoint(t *testing.T) {
	repo := newMockRepository()
	existing := seed(t, repo, 3, 1, at(10, 0), at(11, 0))
	perms := newMockPerms()
	perms.grant(12, rbac.Base(rbac.ActionReservationDelete))
	router := newTestRouter(repo, perms)

	rec := doRequest(t, router, http.MethodDelete, fmt.Sprintf("/reservation/%d", existing.ID), "", 12)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, repo.reservations)
}

func TestListEndpointWindow(t *testing.T) {
	repo := newMockRepository()
	seed(t, repo, 3, 1, at(10, 0), at(11, 0))
	seed(t, repo, 4, 2, at(15, 0), at(16, 0))
	router := newTestRouter(repo, newMockPerms())

	target := fmt.Sprintf("/reservation?start=%s&end=%s",
		at(9, 0).Format(time.RFC3339), at(12, 0).Format(time.RFC3339))
	rec := doRequest(t, router, http.MethodGet, target, "", 11)
	require.Equal(t, http.StatusOK, rec.Code)

	var views []reservationView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	assert.Len(t, views, 1)
}

func TestListEndpointBadWindow(t *testing.T) {
	router := newTestRouter(newMockRepository(), newMockPerms())

	rec := doRequest(t, router, http.MethodGet, "/reservation?start=tomorrow&end=later", "", 11)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
