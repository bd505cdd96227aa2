package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/companion/internal/docstore"
	"github.com/pkordes/companion/internal/domain"
	"github.com/pkordes/companion/internal/handler"
	"github.com/pkordes/companion/internal/shell"
)

// ---- /tab ------------------------------------------------------------------

func TestGetTab_200(t *testing.T) {
	sh := &mockShell{activeTab: domain.TabPlanning}

	rec := httptest.NewRecorder()
	newShellHTTPHandler(sh).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tab", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body handler.TabBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, domain.TabPlanning, body.Tab)
	assert.Equal(t, domain.TabPlanning.Label(), body.Label)
}

func TestSwitchTab_200(t *testing.T) {
	sh := &mockShell{activeTab: domain.TabSchedule}

	req := httptest.NewRequest(http.MethodPut, "/tab", jsonBody(t, map[string]any{"tab": "JOURNAL"}))
	rec := httptest.NewRecorder()
	newShellHTTPHandler(sh).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.TabJournal, sh.activeTab)
}

func TestSwitchTab_422_UnknownTab(t *testing.T) {
	sh := &mockShell{
		activeTab: domain.TabSchedule,
		switchTab: func(domain.Tab) error {
			t.Fatal("unknown tabs must be rejected before reaching the shell")
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPut, "/tab", jsonBody(t, map[string]any{"tab": "SETTINGS"}))
	rec := httptest.NewRecorder()
	newShellHTTPHandler(sh).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errResp := decodeError(t, rec)
	assert.Equal(t, "validation_error", errResp.Error.Code)
	assert.Contains(t, errResp.Error.Message, "SETTINGS")
}

// ---- /view -----------------------------------------------------------------

func TestGetView_200(t *testing.T) {
	sh := &mockShell{activeTab: domain.TabExpense, members: domain.SeedMembers()[:2]}

	rec := httptest.NewRecorder()
	newShellHTTPHandler(sh).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/view", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body handler.ViewResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, domain.TabExpense, body.Tab)
	assert.Equal(t, "記帳", body.Label)
	require.Len(t, body.Members, 2)
	assert.Equal(t, "m1", body.Members[0].Id)
}

// ---- /settings -------------------------------------------------------------

func TestGetSettings_200(t *testing.T) {
	sh := &mockShell{
		settingsOpen: true,
		settingsRows: []shell.SettingsRow{{ID: "m1", Name: "Hana", Color: "rose", Avatar: "a.svg"}},
	}

	rec := httptest.NewRecorder()
	newShellHTTPHandler(sh).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/settings", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"open":true,"members":[{"id":"m1","name":"Hana","color":"rose","avatar":"a.svg"}]}`,
		rec.Body.String())
}

func TestPutSettings_OpenAndClose(t *testing.T) {
	sh := &mockShell{}
	h := newShellHTTPHandler(sh)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/settings", strings.NewReader(`{"open":true}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, sh.openCalls)
	assert.True(t, sh.settingsOpen)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/settings", strings.NewReader(`{"open":false}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, sh.closeCalls)
	assert.False(t, sh.settingsOpen)
}

func TestPutSettings_422_MissingOpen(t *testing.T) {
	sh := &mockShell{}

	rec := httptest.NewRecorder()
	newShellHTTPHandler(sh).ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/settings", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Zero(t, sh.openCalls+sh.closeCalls)
}

// ---- /status ---------------------------------------------------------------

func TestGetStatus_Healthy(t *testing.T) {
	sh := &mockShell{status: shell.Status{Connected: true}}

	rec := httptest.NewRecorder()
	newShellHTTPHandler(sh).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"connected":true,"seeding":false}`, rec.Body.String())
}

func TestGetStatus_WithLastError(t *testing.T) {
	at := time.Date(2025, 12, 1, 8, 0, 0, 0, time.UTC)
	sh := &mockShell{status: shell.Status{Connected: false, LastError: "connection reset", LastErrorAt: at}}

	rec := httptest.NewRecorder()
	newShellHTTPHandler(sh).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body handler.StatusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.NotNil(t, body.LastError)
	assert.Equal(t, "connection reset", *body.LastError)
	assert.True(t, at.Equal(*body.LastErrorAt))
}

// ---- end to end ------------------------------------------------------------

// TestRoster_EndToEnd drives a real shell on the memory store through the
// router: the roster is seeded, a rename is accepted with 202 and shows up
// once the store echoes it back.
func TestRoster_EndToEnd(t *testing.T) {
	store := docstore.NewMemory()
	t.Cleanup(func() { _ = store.Close() })
	sh := shell.New(store, discardLogger())
	require.NoError(t, sh.Start(context.Background()))
	t.Cleanup(func() { _ = sh.Close() })
	h := newShellHTTPHandler(sh)

	require.Eventually(t, func() bool { return len(sh.Members()) == 5 }, 2*time.Second, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/members/m2/name", strings.NewReader(`{"name":"Minho"}`)))
	require.Equal(t, http.StatusAccepted, rec.Code)

	require.Eventually(t, func() bool {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/members", nil))
		var body handler.MemberList
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || len(body.Data) != 5 {
			return false
		}
		return body.Data[1].Name == "Minho"
	}, 2*time.Second, 5*time.Millisecond)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/tab", strings.NewReader(`{"tab":"EXPENSE"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.TabExpense, sh.ActiveTab())
}
