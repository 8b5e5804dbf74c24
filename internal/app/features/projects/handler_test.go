package projects_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/showmate/internal/app/features/projects"
	"github.com/dalemusser/showmate/internal/app/membership"
	"github.com/dalemusser/showmate/internal/app/system/auth"
	"github.com/dalemusser/showmate/internal/app/system/invitelink"
	"github.com/dalemusser/showmate/internal/domain/models"
	"github.com/dalemusser/showmate/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type env struct {
	router  chi.Router
	handler *projects.Handler
	links   *invitelink.Signer
	members *testutil.MemMemberships
	notes   *testutil.MemNotifications
	mail    *testutil.RecordingTransport
	project models.Project
}

const (
	managerID = "manager-1"
	techID    = "tech-1"
)

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		members: testutil.NewMemMemberships(),
		notes:   testutil.NewMemNotifications(),
		project: models.Project{ID: "proj-1", Name: "Winter Gala", OwnerID: managerID},
	}
	users := testutil.NewMemUsers(
		models.User{ID: managerID, Firstname: "Maya", Lastname: "Lind", Email: "maya@example.com"},
		models.User{ID: techID, Firstname: "Theo", Lastname: "Park", Email: "theo@example.com"},
	)
	gw, transport := testutil.NewRecordingGateway()
	e.mail = transport

	links, err := invitelink.New(strings.Repeat("s", 32), "https://showmate.test", time.Hour)
	if err != nil {
		t.Fatalf("invitelink: %v", err)
	}
	e.links = links

	svc := membership.New(membership.Deps{
		Memberships:   e.members,
		Notifications: e.notes,
		Users:         users,
		Projects:      testutil.NewMemProjects(e.project),
		Events:        testutil.NewMemEvents(),
		Posts:         testutil.NewMemPosts(),
		Messages:      testutil.NewMemMessages(),
		Mail:          gw,
		Links:         links,
	})

	h := projects.NewHandler(svc, links, zap.NewNop())
	e.handler = h
	r := chi.NewRouter()
	r.Mount("/project", projects.Routes(h, projects.Middleware{
		RequireAuth: auth.RequireBearer(testutil.TestVerifier(t), zap.NewNop()),
	}))
	e.router = r
	return e
}

func (e *env) do(t *testing.T, method, target, uid string, body any) *testutil.ResponseRecorder {
	t.Helper()
	req := testutil.NewJSONRequest(t, method, target, body)
	if uid != "" {
		req.Header.Set("Authorization", testutil.BearerFor(t, uid))
	}
	rec := testutil.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func inviteBody() map[string]any {
	return map[string]any{
		"projectId":     "proj-1",
		"projectName":   "Winter Gala",
		"role":          map[string]any{"id": "light", "label": "Lighting"},
		"linkType":      "project",
		"technicianUid": techID,
		"invitedByUid":  managerID,
	}
}

func (e *env) invite(t *testing.T) models.ProjectMembership {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/project/invite", managerID, inviteBody())
	rec.AssertStatus(t, http.StatusOK)
	m, _ := e.members.FindByProjectAndUser(context.Background(), "proj-1", techID)
	if m == nil {
		t.Fatal("membership not created")
	}
	return *m
}

func TestInvite_Success(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodPost, "/project/invite", managerID, inviteBody())

	rec.AssertStatus(t, http.StatusOK)
	var body map[string]bool
	rec.DecodeJSON(t, &body)
	if !body["success"] {
		t.Errorf("body = %s", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if len(e.notes.For(techID, models.NotifyProjectInvite)) != 1 {
		t.Error("expected an invite notification")
	}
}

func TestInvite_StatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		uid    string
		mutate func(map[string]any)
		want   int
	}{
		{"no token", "", nil, http.StatusUnauthorized},
		{"missing fields", managerID, func(b map[string]any) { delete(b, "technicianUid") }, http.StatusBadRequest},
		{"acting as someone else", techID, nil, http.StatusForbidden},
		{"unknown invitee", managerID, func(b map[string]any) { b["technicianUid"] = "ghost" }, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			body := inviteBody()
			if tt.mutate != nil {
				tt.mutate(body)
			}
			rec := e.do(t, http.MethodPost, "/project/invite", tt.uid, body)
			rec.AssertStatus(t, tt.want)
			rec.AssertContains(t, `"error"`)
		})
	}
}

func TestInvite_Conflict(t *testing.T) {
	e := newEnv(t)
	e.invite(t)

	rec := e.do(t, http.MethodPost, "/project/invite", managerID, inviteBody())
	rec.AssertStatus(t, http.StatusConflict)
	rec.AssertContains(t, "already invited")
}

func TestInvite_MalformedJSON(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodPost, "/project/invite", managerID, "{oops")
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestRefusedInvitation_NoAuthRequired(t *testing.T) {
	e := newEnv(t)
	e.invite(t)
	invite := e.notes.For(techID, models.NotifyProjectInvite)[0]

	rec := e.do(t, http.MethodPost, "/project/refused-invitation", "", map[string]string{
		"inviteId":        invite.ID,
		"userId":          techID,
		"projectId":       "proj-1",
		"invitedBy":       managerID,
		"invitedUserName": "Theo Park",
	})
	rec.AssertStatus(t, http.StatusOK)

	m, _ := e.members.FindByProjectAndUser(context.Background(), "proj-1", techID)
	if m.Status != models.StatusDeclined {
		t.Errorf("status = %q, want declined", m.Status)
	}
	if len(e.notes.For(managerID, models.NotifyInvitationRefused)) != 1 {
		t.Error("inviter should be notified")
	}
}

func TestRefusedInvitation_Errors(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodPost, "/project/refused-invitation", "", map[string]string{"inviteId": "x"})
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = e.do(t, http.MethodPost, "/project/refused-invitation", "", map[string]string{
		"inviteId": "missing", "userId": techID, "projectId": "proj-1", "invitedBy": managerID,
	})
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestRefusedInvitation_MismatchedProject(t *testing.T) {
	e := newEnv(t)
	e.invite(t)
	invite := e.notes.For(techID, models.NotifyProjectInvite)[0]

	rec := e.do(t, http.MethodPost, "/project/refused-invitation", "", map[string]string{
		"inviteId":  invite.ID,
		"userId":    techID,
		"projectId": "proj-2",
		"invitedBy": managerID,
	})
	rec.AssertStatus(t, http.StatusBadRequest)

	m, _ := e.members.FindByProjectAndUser(context.Background(), "proj-1", techID)
	if m.Status != models.StatusPending {
		t.Errorf("status = %q, want pending", m.Status)
	}
	if len(e.notes.For(managerID, models.NotifyInvitationRefused)) != 0 {
		t.Error("inviter should not be notified")
	}
}

func TestRefusedInvitation_OversizedBody(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, http.MethodPost, "/project/refused-invitation", "", map[string]string{
		"inviteId":        "x",
		"userId":          techID,
		"projectId":       "proj-1",
		"invitedBy":       managerID,
		"invitedUserName": strings.Repeat("n", 80<<10),
	})
	rec.AssertStatus(t, http.StatusRequestEntityTooLarge)
	rec.AssertContains(t, "too large")
}

func TestAcceptInvitation_Flow(t *testing.T) {
	e := newEnv(t)
	e.invite(t)
	status := "/project/accept-invitation?projectId=proj-1&userId=" + techID

	rec := e.do(t, http.MethodGet, status, techID, nil)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"accepted":false`)

	rec = e.do(t, http.MethodPost, "/project/accept-invitation", techID, map[string]string{
		"projectId": "proj-1", "userId": techID,
	})
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"success":true`)

	rec = e.do(t, http.MethodGet, status, techID, nil)
	rec.AssertContains(t, `"accepted":true`)

	if len(e.notes.For(managerID, models.NotifyProjectInviteAccepted)) != 1 {
		t.Error("inviter should be told about the accept")
	}
}

func TestAcceptInvitation_Token(t *testing.T) {
	e := newEnv(t)
	e.invite(t)
	tok, err := e.links.Token(invitelink.Target{ProjectID: "proj-1", UserID: techID})
	if err != nil {
		t.Fatalf("Token: %v", err)
	}

	rec := e.do(t, http.MethodPost, "/project/accept-invitation", techID, map[string]string{"token": tok})
	rec.AssertStatus(t, http.StatusOK)

	m, _ := e.members.FindByProjectAndUser(context.Background(), "proj-1", techID)
	if m.Status != models.StatusApproved {
		t.Errorf("status = %q, want approved", m.Status)
	}
}

func TestAcceptInvitation_Errors(t *testing.T) {
	e := newEnv(t)
	e.invite(t)

	rec := e.do(t, http.MethodPost, "/project/accept-invitation", techID, map[string]string{"token": "tampered"})
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = e.do(t, http.MethodPost, "/project/accept-invitation", managerID, map[string]string{
		"projectId": "proj-1", "userId": techID,
	})
	rec.AssertStatus(t, http.StatusForbidden)

	rec = e.do(t, http.MethodGet, "/project/accept-invitation?projectId=nope&userId="+techID, techID, nil)
	rec.AssertStatus(t, http.StatusNotFound)

	rec = e.do(t, http.MethodGet, "/project/accept-invitation?projectId=proj-1&userId="+techID, "", nil)
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestRemoveMember(t *testing.T) {
	e := newEnv(t)
	m := e.invite(t)
	body := map[string]string{
		"membershipId": m.ID, "userId": techID, "projectId": "proj-1", "projectName": "Winter Gala",
	}

	for i := 0; i < 2; i++ {
		rec := e.do(t, http.MethodDelete, "/project/member", managerID, body)
		rec.AssertStatus(t, http.StatusOK)
	}
	if got := e.notes.For(techID, models.NotifyProjectRemoved); len(got) != 1 {
		t.Errorf("removed notifications = %d, want 1", len(got))
	}

	rec := e.do(t, http.MethodDelete, "/project/member", managerID, map[string]string{"membershipId": m.ID})
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestDeleteProject(t *testing.T) {
	e := newEnv(t)
	e.invite(t)

	rec := e.do(t, http.MethodDelete, "/project/delete", managerID, nil)
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = e.do(t, http.MethodDelete, "/project/delete?projectId=proj-1", techID, nil)
	rec.AssertStatus(t, http.StatusForbidden)

	rec = e.do(t, http.MethodDelete, "/project/delete?projectId=proj-1", managerID, nil)
	rec.AssertStatus(t, http.StatusOK)
	if len(e.members.All()) != 0 {
		t.Error("memberships should be gone")
	}
	if len(e.notes.For(techID, models.NotifyProjectDeleted)) != 1 {
		t.Error("member should be told about the deletion")
	}

	rec = e.do(t, http.MethodDelete, "/project/delete?projectId=proj-1", managerID, nil)
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestMembersListing(t *testing.T) {
	e := newEnv(t)
	e.invite(t)

	rec := e.do(t, http.MethodGet, "/project/members?projectId=proj-1", managerID, nil)
	rec.AssertStatus(t, http.StatusOK)
	var body struct {
		Members []models.ProjectMembership `json:"members"`
	}
	rec.DecodeJSON(t, &body)
	if len(body.Members) != 1 || body.Members[0].UserID != techID {
		t.Errorf("members = %+v", body.Members)
	}

	rec = e.do(t, http.MethodGet, "/project/members?projectId=proj-1", "outsider", nil)
	rec.AssertStatus(t, http.StatusForbidden)

	rec = e.do(t, http.MethodGet, "/project/memberships", techID, nil)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"projectId":"proj-1"`)
}

func TestProjectAudit(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/project/audit?projectId=proj-1&limit=5000", managerID, nil)
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"events":[]`)

	rec = e.do(t, http.MethodGet, "/project/audit?projectId=proj-1", techID, nil)
	rec.AssertStatus(t, http.StatusForbidden)

	rec = e.do(t, http.MethodGet, "/project/audit", managerID, nil)
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = e.do(t, http.MethodGet, "/project/audit?projectId=proj-1", "", nil)
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestServeAudit_WithoutMiddleware(t *testing.T) {
	e := newEnv(t)

	rec := testutil.NewRecorder()
	e.handler.ServeAudit(rec, testutil.NewAuthenticatedRequest(t, http.MethodGet, "/project/audit?projectId=proj-1", managerID, nil))
	rec.AssertStatus(t, http.StatusOK)

	rec = testutil.NewRecorder()
	e.handler.ServeAudit(rec, testutil.NewAuthenticatedRequest(t, http.MethodGet, "/project/audit?projectId=proj-1", techID, nil))
	rec.AssertStatus(t, http.StatusForbidden)
}
