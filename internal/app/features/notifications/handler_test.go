package notifications_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/dalemusser/showmate/internal/app/features/notifications"
	"github.com/dalemusser/showmate/internal/app/membership"
	"github.com/dalemusser/showmate/internal/app/system/auth"
	"github.com/dalemusser/showmate/internal/domain/models"
	"github.com/dalemusser/showmate/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type fakeStream struct {
	send    []models.Notification
	endWith error
	failSub error
	stopped bool
	userID  string
}

func (f *fakeStream) Subscribe(_ context.Context, userID string, onChange func(models.Notification), onError func(error)) (func(), error) {
	if f.failSub != nil {
		return nil, f.failSub
	}
	f.userID = userID
	for _, n := range f.send {
		onChange(n)
	}
	if f.endWith != nil {
		onError(f.endWith)
	}
	return func() { f.stopped = true }, nil
}

type env struct {
	router  chi.Router
	notes   *testutil.MemNotifications
	members *testutil.MemMemberships
	stream  *fakeStream
	invite  models.Notification
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		notes:   testutil.NewMemNotifications(),
		members: testutil.NewMemMemberships(),
		stream:  &fakeStream{},
	}
	gw, _ := testutil.NewRecordingGateway()
	svc := membership.New(membership.Deps{
		Memberships:   e.members,
		Notifications: e.notes,
		Users: testutil.NewMemUsers(
			models.User{ID: "m1", Firstname: "Maya", Email: "maya@example.com"},
			models.User{ID: "u1", Firstname: "Theo", Email: "theo@example.com"},
		),
		Projects: testutil.NewMemProjects(models.Project{ID: "p1", Name: "Gala", OwnerID: "m1"}),
		Mail:     gw,
	})

	e.members.Put(models.ProjectMembership{ProjectID: "p1", UserID: "u1", Status: models.StatusPending, InvitedBy: "m1"})
	n, err := models.NewNotification("u1", "You have been invited to join Gala as Light", models.ProjectInvite{
		ProjectID: "p1", ProjectName: "Gala", InvitedBy: "m1", Role: "Light",
	})
	if err != nil {
		t.Fatalf("NewNotification: %v", err)
	}
	e.invite, _ = e.notes.Create(context.Background(), n)

	h := notifications.NewHandler(svc, e.stream, zap.NewNop())
	r := chi.NewRouter()
	r.Mount("/notifications", notifications.Routes(h, auth.RequireBearer(testutil.TestVerifier(t), zap.NewNop())))
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

func TestList(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/notifications?limit=5", "u1", nil)
	rec.AssertStatus(t, http.StatusOK)
	var body struct {
		Notifications []models.Notification `json:"notifications"`
	}
	rec.DecodeJSON(t, &body)
	if len(body.Notifications) != 1 || body.Notifications[0].ID != e.invite.ID {
		t.Errorf("notifications = %+v", body.Notifications)
	}

	rec = e.do(t, http.MethodGet, "/notifications", "m1", nil)
	rec.AssertContains(t, `"notifications":[]`)

	rec = e.do(t, http.MethodGet, "/notifications", "", nil)
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestRespond_Decline(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/notifications/"+e.invite.ID+"/respond", "u1", map[string]bool{"accepted": false})
	rec.AssertStatus(t, http.StatusOK)
	var body struct {
		Notification models.Notification `json:"notification"`
	}
	rec.DecodeJSON(t, &body)
	if !body.Notification.Responded || body.Notification.Accepted == nil || *body.Notification.Accepted {
		t.Errorf("notification = %+v", body.Notification)
	}

	m, _ := e.members.FindByProjectAndUser(context.Background(), "p1", "u1")
	if m.Status != models.StatusDeclined {
		t.Errorf("status = %q, want declined", m.Status)
	}
	if len(e.notes.For("m1", models.NotifyInvitationRefused)) != 1 {
		t.Error("inviter should be notified")
	}
}

func TestRespond_Errors(t *testing.T) {
	e := newEnv(t)
	target := "/notifications/" + e.invite.ID + "/respond"

	rec := e.do(t, http.MethodPost, target, "u1", map[string]string{})
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = e.do(t, http.MethodPost, target, "m1", map[string]bool{"accepted": true})
	rec.AssertStatus(t, http.StatusForbidden)

	rec = e.do(t, http.MethodPost, "/notifications/missing/respond", "u1", map[string]bool{"accepted": true})
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestRead(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/notifications/"+e.invite.ID+"/read", "u1", nil)
	rec.AssertStatus(t, http.StatusOK)

	got, _ := e.notes.Get(context.Background(), e.invite.ID)
	if !got.Read {
		t.Error("notification should be read")
	}
}

func TestStream(t *testing.T) {
	e := newEnv(t)
	e.stream.send = []models.Notification{e.invite}
	e.stream.endWith = errors.New("change stream closed")

	rec := e.do(t, http.MethodGet, "/notifications/stream", "u1", nil)
	rec.AssertStatus(t, http.StatusOK)

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "event: notification\nid: "+e.invite.ID) {
		t.Errorf("missing notification event: %q", body)
	}
	if !strings.Contains(body, "event: error") {
		t.Errorf("missing error event: %q", body)
	}
	if e.stream.userID != "u1" || !e.stream.stopped {
		t.Errorf("subscription user=%q stopped=%v", e.stream.userID, e.stream.stopped)
	}
}

func TestStream_SubscribeFails(t *testing.T) {
	e := newEnv(t)
	e.stream.failSub = errors.New("not a replica set")

	rec := e.do(t, http.MethodGet, "/notifications/stream", "u1", nil)
	rec.AssertStatus(t, http.StatusServiceUnavailable)
}
