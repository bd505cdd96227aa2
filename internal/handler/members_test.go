package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/companion/internal/domain"
	"github.com/pkordes/companion/internal/handler"
	"github.com/pkordes/companion/internal/shell"
)

// mockShell is a test double for handler.RosterShell.
// Set only the method fields your test needs; the rest return zero values.
type mockShell struct {
	members      []domain.Member
	rename       func(ctx context.Context, id, name string) error
	activeTab    domain.Tab
	switchTab    func(tab domain.Tab) error
	render       func() shell.View
	settingsOpen bool
	settingsRows []shell.SettingsRow
	status       shell.Status
	openCalls    int
	closeCalls   int
}

func (m *mockShell) Members() []domain.Member { return m.members }
func (m *mockShell) Rename(ctx context.Context, id, name string) error {
	return m.rename(ctx, id, name)
}
func (m *mockShell) ActiveTab() domain.Tab { return m.activeTab }
func (m *mockShell) SwitchTab(tab domain.Tab) error {
	if m.switchTab != nil {
		return m.switchTab(tab)
	}
	m.activeTab = tab
	return nil
}
func (m *mockShell) Render() shell.View {
	if m.render != nil {
		return m.render()
	}
	return shell.LabelledView(m.activeTab)(m.members)
}
func (m *mockShell) SettingsOpen() bool                { return m.settingsOpen }
func (m *mockShell) SettingsRows() []shell.SettingsRow { return m.settingsRows }
func (m *mockShell) OpenSettings()                     { m.openCalls++; m.settingsOpen = true }
func (m *mockShell) CloseSettings()                    { m.closeCalls++; m.settingsOpen = false }
func (m *mockShell) Status() shell.Status              { return m.status }

// compile-time check: mockShell and the real shell must satisfy handler.RosterShell.
var (
	_ handler.RosterShell = (*mockShell)(nil)
	_ handler.RosterShell = (*shell.Shell)(nil)
)

// newShellHTTPHandler wires a Server with the given shell mock (no expense service needed).
func newShellHTTPHandler(sh handler.RosterShell) http.Handler {
	return handler.Handler(handler.NewServer(sh, nil, nil))
}

// jsonBody encodes v as a JSON request body.
func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var errResp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
	return errResp
}

// ---- GET /members ----------------------------------------------------------

func TestListMembers_200(t *testing.T) {
	sh := &mockShell{members: domain.SeedMembers()}

	req := httptest.NewRequest(http.MethodGet, "/members", nil)
	rec := httptest.NewRecorder()
	newShellHTTPHandler(sh).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body handler.MemberList
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Data, 5)
	assert.Equal(t, "m1", body.Data[0].Id)
	assert.Equal(t, "Hana", body.Data[0].Name)
}

func TestListMembers_EmptyRosterIsArray(t *testing.T) {
	sh := &mockShell{members: []domain.Member{}}

	req := httptest.NewRequest(http.MethodGet, "/members", nil)
	rec := httptest.NewRecorder()
	newShellHTTPHandler(sh).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

// ---- PUT /members/{id}/name ------------------------------------------------

func TestRenameMember_202(t *testing.T) {
	var gotID, gotName string
	sh := &mockShell{
		members: domain.SeedMembers(),
		rename: func(_ context.Context, id, name string) error {
			gotID, gotName = id, name
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPut, "/members/m2/name", jsonBody(t, map[string]any{"name": "Minho"}))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	newShellHTTPHandler(sh).ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "m2", gotID)
	assert.Equal(t, "Minho", gotName)
}

func TestRenameMember_EmptyNameAllowed(t *testing.T) {
	called := false
	sh := &mockShell{
		members: domain.SeedMembers(),
		rename: func(_ context.Context, _, name string) error {
			called = true
			assert.Empty(t, name)
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPut, "/members/m1/name", strings.NewReader(`{"name":""}`))
	rec := httptest.NewRecorder()
	newShellHTTPHandler(sh).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.True(t, called)
}

func TestRenameMember_404_UnknownMember(t *testing.T) {
	sh := &mockShell{
		members: domain.SeedMembers(),
		rename: func(context.Context, string, string) error {
			t.Fatal("rename must not reach the store for an unknown member")
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPut, "/members/m9/name", jsonBody(t, map[string]any{"name": "x"}))
	rec := httptest.NewRecorder()
	newShellHTTPHandler(sh).ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Error.Code)
}

func TestRenameMember_404_StoreNotFound(t *testing.T) {
	sh := &mockShell{
		members: domain.SeedMembers(),
		rename: func(context.Context, string, string) error {
			return fmt.Errorf("shell.Shell.Rename: %w", domain.ErrNotFound)
		},
	}

	req := httptest.NewRequest(http.MethodPut, "/members/m3/name", jsonBody(t, map[string]any{"name": "x"}))
	rec := httptest.NewRecorder()
	newShellHTTPHandler(sh).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRenameMember_422_MissingName(t *testing.T) {
	sh := &mockShell{members: domain.SeedMembers()}

	req := httptest.NewRequest(http.MethodPut, "/members/m1/name", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	newShellHTTPHandler(sh).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "validation_error", decodeError(t, rec).Error.Code)
}

func TestRenameMember_400_MalformedBody(t *testing.T) {
	sh := &mockShell{members: domain.SeedMembers()}

	req := httptest.NewRequest(http.MethodPut, "/members/m1/name", strings.NewReader(`{"name":`))
	rec := httptest.NewRecorder()
	newShellHTTPHandler(sh).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRenameMember_503_AfterClose(t *testing.T) {
	sh := &mockShell{
		members: domain.SeedMembers(),
		rename:  func(context.Context, string, string) error { return shell.ErrClosed },
	}

	req := httptest.NewRequest(http.MethodPut, "/members/m1/name", jsonBody(t, map[string]any{"name": "x"}))
	rec := httptest.NewRecorder()
	newShellHTTPHandler(sh).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRenameMember_500_StoreFailure(t *testing.T) {
	sh := &mockShell{
		members: domain.SeedMembers(),
		rename:  func(context.Context, string, string) error { return fmt.Errorf("connection reset") },
	}

	req := httptest.NewRequest(http.MethodPut, "/members/m1/name", jsonBody(t, map[string]any{"name": "x"}))
	rec := httptest.NewRecorder()
	newShellHTTPHandler(sh).ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	errResp := decodeError(t, rec)
	assert.Equal(t, "internal_error", errResp.Error.Code)
	assert.NotContains(t, errResp.Error.Message, "connection reset")
}
