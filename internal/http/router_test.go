package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	requirex "github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"buildsite/internal/auth"
	"buildsite/internal/config"
	"buildsite/internal/db/dbtest"
	"buildsite/internal/models"
)

const testSecret = "router-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type site struct {
	t       *testing.T
	db      *gorm.DB
	router  *gin.Engine
	project models.Project
	tokens  map[string]string
	users   map[string]models.User
}

// newSite builds one project managed by "pm" for client "client", with "eng"
// as a site engineer member. "outsider" is an engineer with no membership.
func newSite(t *testing.T) *site {
	gdb := dbtest.Open(t)
	s := &site{
		t:      t,
		db:     gdb,
		router: NewRouter(gdb, config.Config{JWTSecret: testSecret, TokenTTL: time.Hour, LoginRPS: 100, LoginBurst: 100}),
		tokens: map[string]string{},
		users:  map[string]models.User{},
	}
	for name, role := range map[string]models.Role{
		"root":     models.RoleSuperAdmin,
		"admin":    models.RoleAdmin,
		"pm":       models.RoleProjectManager,
		"pm2":      models.RoleProjectManager,
		"eng":      models.RoleSiteEngineer,
		"eng2":     models.RoleSiteEngineer,
		"outsider": models.RoleSiteEngineer,
		"client":   models.RoleClient,
	} {
		u := dbtest.User(t, gdb, name, role)
		tok, err := auth.IssueToken(u, testSecret, time.Hour)
		requirex.NoError(t, err)
		s.users[name], s.tokens[name] = u, tok
	}
	s.project = dbtest.Project(t, gdb, "Tower A", s.users["pm"], s.users["client"])
	dbtest.Member(t, gdb, s.project, s.users["eng"], models.RoleSiteEngineer)
	return s
}

func (s *site) do(who, method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		requirex.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	requirex.NoError(s.t, err)
	req.Header.Set("Content-Type", "application/json")
	if tok := s.tokens[who]; tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *site) path(format string, args ...any) string {
	return fmt.Sprintf("/api/v1/projects/%d", s.project.ID) + fmt.Sprintf(format, args...)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	requirex.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type idBody struct {
	ID uint64 `json:"id"`
}

func TestHealthz(t *testing.T) {
	s := newSite(t)
	assert.Equal(t, http.StatusOK, s.do("", "GET", "/healthz", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do("", "GET", "/api/v1/projects", nil).Code)
}

func TestProjectVisibility(t *testing.T) {
	s := newSite(t)
	for who, want := range map[string]int{
		"root":     http.StatusOK,
		"admin":    http.StatusOK,
		"pm":       http.StatusOK,
		"pm2":      http.StatusNotFound,
		"eng":      http.StatusOK,
		"outsider": http.StatusNotFound,
		"client":   http.StatusOK,
	} {
		assert.Equal(t, want, s.do(who, "GET", s.path(""), nil).Code, who)
	}

	missing := s.do("admin", "GET", "/api/v1/projects/9999", nil)
	hidden := s.do("outsider", "GET", s.path(""), nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.JSONEq(t, missing.Body.String(), hidden.Body.String())

	list := decode[struct {
		Projects []idBody `json:"projects"`
	}](t, s.do("outsider", "GET", "/api/v1/projects", nil))
	assert.Empty(t, list.Projects)

	list = decode[struct {
		Projects []idBody `json:"projects"`
	}](t, s.do("eng", "GET", "/api/v1/projects", nil))
	requirex.Len(t, list.Projects, 1)
	assert.Equal(t, s.project.ID, list.Projects[0].ID)
}

func TestGlobalRoutesRequireCapability(t *testing.T) {
	s := newSite(t)
	assert.Equal(t, http.StatusForbidden, s.do("pm", "GET", "/api/v1/users", nil).Code)
	assert.Equal(t, http.StatusOK, s.do("admin", "GET", "/api/v1/users", nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do("eng", "POST", "/api/v1/projects",
		map[string]any{"name": "X", "manager_id": s.users["pm"].ID, "client_id": s.users["client"].ID}).Code)
	assert.Equal(t, http.StatusForbidden, s.do("client", "GET", "/api/v1/audit", nil).Code)
}

func TestDrawingLifecycle(t *testing.T) {
	s := newSite(t)

	w := s.do("eng", "POST", s.path("/drawings"), map[string]string{"title": "Level 1", "storage_key": "d/1.pdf"})
	requirex.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	draft := decode[struct{ Drawing idBody }](t, w).Drawing

	type listing struct {
		Drawings []idBody `json:"drawings"`
	}
	assert.Empty(t, decode[listing](t, s.do("client", "GET", s.path("/drawings"), nil)).Drawings)
	assert.Len(t, decode[listing](t, s.do("eng", "GET", s.path("/drawings"), nil)).Drawings, 1)

	// Drafts are invisible to the client, not forbidden.
	assert.Equal(t, http.StatusNotFound, s.do("client", "POST", s.path("/drawings/%d/approve", draft.ID), nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do("pm", "POST", s.path("/drawings/%d/approve", draft.ID), nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, s.do("root", "POST", s.path("/drawings/%d/revoke", draft.ID), nil).Code)

	requirex.Equal(t, http.StatusOK, s.do("admin", "POST", s.path("/drawings/%d/approve", draft.ID), nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, s.do("admin", "POST", s.path("/drawings/%d/approve", draft.ID), nil).Code)
	assert.Len(t, decode[listing](t, s.do("client", "GET", s.path("/drawings"), nil)).Drawings, 1)

	assert.Equal(t, http.StatusForbidden, s.do("admin", "DELETE", s.path("/drawings/%d", draft.ID), nil).Code)
	assert.Equal(t, http.StatusOK, s.do("root", "DELETE", s.path("/drawings/%d", draft.ID), nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do("root", "DELETE", s.path("/drawings/%d", draft.ID), nil).Code)
}

func TestDrawingVersioning(t *testing.T) {
	s := newSite(t)
	var versions []int
	for i := 0; i < 2; i++ {
		w := s.do("pm", "POST", s.path("/drawings"), map[string]string{"title": "Facade", "storage_key": fmt.Sprintf("f/%d", i)})
		requirex.Equal(t, http.StatusCreated, w.Code)
		versions = append(versions, decode[struct {
			Drawing struct {
				Version int `json:"version"`
			} `json:"drawing"`
		}](t, w).Drawing.Version)
	}
	assert.Equal(t, []int{1, 2}, versions)
	assert.Equal(t, http.StatusForbidden, s.do("client", "POST", s.path("/drawings"),
		map[string]string{"title": "Facade", "storage_key": "c"}).Code)
}

func TestMembershipRoundTrip(t *testing.T) {
	s := newSite(t)
	eng2 := s.users["eng2"]
	grant := map[string]any{"user_id": eng2.ID, "role": models.RoleSiteEngineer}

	assert.Equal(t, http.StatusNotFound, s.do("eng2", "GET", s.path(""), nil).Code)
	requirex.Equal(t, http.StatusCreated, s.do("admin", "POST", s.path("/members"), grant).Code)
	assert.Equal(t, http.StatusConflict, s.do("admin", "POST", s.path("/members"), grant).Code)
	assert.Equal(t, http.StatusOK, s.do("eng2", "GET", s.path(""), nil).Code)

	requirex.Equal(t, http.StatusOK, s.do("admin", "DELETE", s.path("/members/%d", eng2.ID), nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do("eng2", "GET", s.path(""), nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do("admin", "DELETE", s.path("/members/%d", eng2.ID), nil).Code)

	requirex.Equal(t, http.StatusCreated, s.do("admin", "POST", s.path("/members"), grant).Code)
	var rows int64
	requirex.NoError(t, s.db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", s.project.ID, eng2.ID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}

func TestMembershipGrantValidation(t *testing.T) {
	s := newSite(t)
	cases := []struct {
		name string
		body map[string]any
		want int
	}{
		{"client as engineer", map[string]any{"user_id": s.users["client"].ID, "role": models.RoleSiteEngineer}, http.StatusUnprocessableEntity},
		{"engineer as manager", map[string]any{"user_id": s.users["eng2"].ID, "role": models.RoleProjectManager}, http.StatusUnprocessableEntity},
		{"unknown user", map[string]any{"user_id": 9999, "role": models.RoleSiteEngineer}, http.StatusUnprocessableEntity},
		{"owning manager", map[string]any{"user_id": s.users["pm"].ID, "role": models.RoleProjectManager}, http.StatusConflict},
		{"second manager", map[string]any{"user_id": s.users["pm2"].ID, "role": models.RoleProjectManager}, http.StatusCreated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := s.do("admin", "POST", s.path("/members"), tc.body)
			assert.Equal(t, tc.want, w.Code, w.Body.String())
		})
	}
	assert.Equal(t, http.StatusForbidden, s.do("pm", "POST", s.path("/members"),
		map[string]any{"user_id": s.users["eng2"].ID, "role": models.RoleSiteEngineer}).Code)
}

func TestMembersList(t *testing.T) {
	s := newSite(t)
	assert.Equal(t, http.StatusOK, s.do("pm", "GET", s.path("/members"), nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do("eng", "GET", s.path("/members"), nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do("client", "GET", s.path("/members"), nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do("pm2", "GET", s.path("/members"), nil).Code)
}

func TestInspectionWorkflow(t *testing.T) {
	s := newSite(t)
	w := s.do("eng", "POST", s.path("/inspections"), map[string]any{"title": "Rebar", "responses": map[string]string{"spacing": "ok"}})
	requirex.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	insp := decode[struct{ Inspection idBody }](t, w).Inspection

	edit := map[string]any{"responses": map[string]string{"spacing": "150mm"}}
	assert.Equal(t, http.StatusOK, s.do("eng", "PUT", s.path("/inspections/%d/responses", insp.ID), edit).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, s.do("pm", "POST", s.path("/inspections/%d/review", insp.ID), map[string]string{}).Code)
	requirex.Equal(t, http.StatusOK, s.do("eng", "POST", s.path("/inspections/%d/submit", insp.ID), nil).Code)

	for _, who := range []string{"eng", "pm", "root"} {
		assert.Equal(t, http.StatusUnprocessableEntity, s.do(who, "PUT", s.path("/inspections/%d/responses", insp.ID), edit).Code, who)
	}
	assert.Equal(t, http.StatusUnprocessableEntity, s.do("eng", "POST", s.path("/inspections/%d/submit", insp.ID), nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do("eng", "POST", s.path("/inspections/%d/review", insp.ID), map[string]string{}).Code)
	requirex.Equal(t, http.StatusOK, s.do("pm", "POST", s.path("/inspections/%d/review", insp.ID), map[string]string{"notes": "fine"}).Code)

	var stored models.Inspection
	requirex.NoError(t, s.db.First(&stored, insp.ID).Error)
	assert.Equal(t, models.InspectionReviewed, stored.Status)
	assert.JSONEq(t, `{"spacing":"150mm"}`, string(stored.Responses))
}

func TestPayments(t *testing.T) {
	s := newSite(t)
	body := map[string]any{"description": "Foundation", "amount": 250000}
	assert.Equal(t, http.StatusForbidden, s.do("client", "POST", s.path("/payments"), body).Code)
	assert.Equal(t, http.StatusForbidden, s.do("eng", "POST", s.path("/payments"), body).Code)
	assert.Equal(t, http.StatusNotFound, s.do("pm2", "POST", s.path("/payments"), body).Code)

	w := s.do("pm", "POST", s.path("/payments"), body)
	requirex.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	pay := decode[struct{ Payment idBody }](t, w).Payment

	assert.Equal(t, http.StatusForbidden, s.do("client", "POST", s.path("/payments/%d/paid", pay.ID), nil).Code)
	requirex.Equal(t, http.StatusOK, s.do("admin", "POST", s.path("/payments/%d/paid", pay.ID), nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, s.do("admin", "POST", s.path("/payments/%d/paid", pay.ID), nil).Code)

	summary := decode[struct {
		Total int64 `json:"total"`
		Paid  int64 `json:"paid"`
	}](t, s.do("client", "GET", s.path("/payments"), nil))
	assert.Equal(t, int64(250000), summary.Total)
	assert.Equal(t, int64(250000), summary.Paid)
}

func TestContacts(t *testing.T) {
	s := newSite(t)
	type contacts struct {
		Contacts []struct {
			UserID   uint64 `json:"user_id"`
			Relation string `json:"relation"`
		} `json:"contacts"`
	}
	got := func(who string) map[uint64]string {
		w := s.do(who, "GET", s.path("/contacts"), nil)
		requirex.Equal(t, http.StatusOK, w.Code)
		out := map[uint64]string{}
		for _, c := range decode[contacts](t, w).Contacts {
			out[c.UserID] = c.Relation
		}
		return out
	}

	assert.Equal(t, map[uint64]string{
		s.users["pm"].ID:  "manager",
		s.users["eng"].ID: "engineer",
	}, got("client"))
	assert.Equal(t, map[uint64]string{
		s.users["client"].ID: "client",
		s.users["eng"].ID:    "engineer",
	}, got("pm"))
	assert.Equal(t, map[uint64]string{s.users["pm"].ID: "manager"}, got("eng"))
	assert.Equal(t, http.StatusNotFound, s.do("outsider", "GET", s.path("/contacts"), nil).Code)
}

func TestProfileVisibility(t *testing.T) {
	s := newSite(t)
	target := s.users["client"].ID
	assert.Equal(t, http.StatusOK, s.do("client", "GET", fmt.Sprintf("/api/v1/users/%d", target), nil).Code)
	assert.Equal(t, http.StatusOK, s.do("admin", "GET", fmt.Sprintf("/api/v1/users/%d", target), nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do("eng", "GET", fmt.Sprintf("/api/v1/users/%d", target), nil).Code)
}

func TestSuspendedUserLosesAccess(t *testing.T) {
	s := newSite(t)
	eng := s.users["eng"].ID
	assert.Equal(t, http.StatusForbidden, s.do("admin", "POST", fmt.Sprintf("/api/v1/users/%d/deactivate", s.users["root"].ID), nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, s.do("admin", "POST", fmt.Sprintf("/api/v1/users/%d/deactivate", s.users["admin"].ID), nil).Code)

	requirex.Equal(t, http.StatusOK, s.do("admin", "POST", fmt.Sprintf("/api/v1/users/%d/deactivate", eng), nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do("eng", "GET", s.path(""), nil).Code)
	requirex.Equal(t, http.StatusOK, s.do("admin", "POST", fmt.Sprintf("/api/v1/users/%d/activate", eng), nil).Code)
	assert.Equal(t, http.StatusOK, s.do("eng", "GET", s.path(""), nil).Code)
}

func TestAuditTrail(t *testing.T) {
	s := newSite(t)
	requirex.Equal(t, http.StatusCreated, s.do("admin", "POST", s.path("/members"),
		map[string]any{"user_id": s.users["eng2"].ID, "role": models.RoleSiteEngineer}).Code)
	requirex.Equal(t, http.StatusCreated, s.do("pm", "POST", s.path("/payments"),
		map[string]any{"description": "Deposit", "amount": 1000}).Code)

	type page struct {
		Logs []struct {
			ID            int64  `json:"id"`
			Action        string `json:"action"`
			InitiatorName string `json:"initiator_name"`
		} `json:"logs"`
		NextCursor *int64 `json:"next_cursor"`
	}
	first := decode[page](t, s.do("admin", "GET", "/api/v1/audit?limit=1", nil))
	requirex.Len(t, first.Logs, 1)
	assert.Equal(t, "payment.create", first.Logs[0].Action)
	assert.Equal(t, "pm", first.Logs[0].InitiatorName)
	requirex.NotNil(t, first.NextCursor)

	second := decode[page](t, s.do("admin", "GET", fmt.Sprintf("/api/v1/audit?limit=1&after_id=%d", *first.NextCursor), nil))
	requirex.Len(t, second.Logs, 1)
	assert.Equal(t, "member.grant", second.Logs[0].Action)
	assert.Nil(t, second.NextCursor)

	assert.Equal(t, http.StatusForbidden, s.do("pm", "GET", "/api/v1/audit", nil).Code)
}

func TestLogin(t *testing.T) {
	gdb := dbtest.Open(t)
	hash, err := auth.HashPassword("site-password")
	requirex.NoError(t, err)
	u := dbtest.User(t, gdb, "login", models.RoleClient)
	requirex.NoError(t, gdb.Model(&u).Update("password_hash", hash).Error)

	r := NewRouter(gdb, config.Config{JWTSecret: testSecret, TokenTTL: time.Hour, LoginRPS: 0.001, LoginBurst: 2})
	login := func(password string) int {
		body, _ := json.Marshal(map[string]string{"email": "login@example.com", "password": password})
		req, _ := http.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusOK, login("site-password"))
	assert.Equal(t, http.StatusUnauthorized, login("wrong-password"))
	assert.Equal(t, http.StatusTooManyRequests, login("site-password"))
}

func TestQueriesAndMaterials(t *testing.T) {
	s := newSite(t)

	w := s.do("client", "POST", s.path("/queries"), map[string]string{"subject": "Tile colour", "body": "grey or white?"})
	requirex.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	q := decode[struct{ Query idBody }](t, w).Query

	answer := map[string]string{"response": "grey"}
	assert.Equal(t, http.StatusForbidden, s.do("client", "POST", s.path("/queries/%d/respond", q.ID), answer).Code)
	assert.Equal(t, http.StatusOK, s.do("eng", "POST", s.path("/queries/%d/respond", q.ID), answer).Code)
	assert.Equal(t, http.StatusForbidden, s.do("eng", "POST", s.path("/queries/%d/close", q.ID), nil).Code)
	requirex.Equal(t, http.StatusOK, s.do("client", "POST", s.path("/queries/%d/close", q.ID), nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, s.do("eng", "POST", s.path("/queries/%d/respond", q.ID), answer).Code)

	material := map[string]any{"name": "Cement", "quantity": 40, "unit": "bag", "unit_cost": 650}
	assert.Equal(t, http.StatusForbidden, s.do("eng", "POST", s.path("/materials"), material).Code)
	w = s.do("pm", "POST", s.path("/materials"), material)
	requirex.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	m := decode[struct{ Material idBody }](t, w).Material
	assert.Equal(t, http.StatusOK, s.do("client", "GET", s.path("/materials"), nil).Code)
	assert.Equal(t, http.StatusOK, s.do("admin", "DELETE", s.path("/materials/%d", m.ID), nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do("admin", "DELETE", s.path("/materials/%d", m.ID), nil).Code)

	assert.Equal(t, http.StatusCreated, s.do("eng", "POST", s.path("/updates"), map[string]any{"body": "slab poured", "progress": 40}).Code)
	assert.Equal(t, http.StatusForbidden, s.do("client", "POST", s.path("/updates"), map[string]any{"body": "hi"}).Code)
}

func TestAuditFilters(t *testing.T) {
	s := newSite(t)
	other := s.do("admin", "POST", "/api/v1/projects",
		map[string]any{"name": "Tower B", "manager_id": s.users["pm2"].ID, "client_id": s.users["client"].ID})
	requirex.Equal(t, http.StatusCreated, other.Code, other.Body.String())
	otherID := decode[struct{ Project idBody }](t, other).Project.ID

	requirex.Equal(t, http.StatusCreated, s.do("admin", "POST", s.path("/members"),
		map[string]any{"user_id": s.users["eng2"].ID, "role": models.RoleSiteEngineer}).Code)
	requirex.Equal(t, http.StatusCreated, s.do("pm", "POST", s.path("/payments"),
		map[string]any{"description": "Deposit", "amount": 1000}).Code)

	type page struct {
		Logs []struct {
			Action    string  `json:"action"`
			ProjectID *uint64 `json:"project_id"`
		} `json:"logs"`
	}
	actions := func(query string) []string {
		w := s.do("root", "GET", "/api/v1/audit?"+query, nil)
		requirex.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var out []string
		for _, l := range decode[page](t, w).Logs {
			out = append(out, l.Action)
		}
		return out
	}

	assert.Equal(t, []string{"payment.create", "member.grant"}, actions(fmt.Sprintf("project_id=%d", s.project.ID)))
	assert.Equal(t, []string{"project.create"}, actions(fmt.Sprintf("project_id=%d", otherID)))
	assert.Equal(t, []string{"member.grant"}, actions("action=member.grant"))
	assert.Equal(t, []string{"payment.create"}, actions(fmt.Sprintf("user_id=%d", s.users["pm"].ID)))

	for _, bad := range []string{"limit=500", "after_id=-3", "project_id=abc"} {
		assert.Equal(t, http.StatusBadRequest, s.do("root", "GET", "/api/v1/audit?"+bad, nil).Code, bad)
	}
}
