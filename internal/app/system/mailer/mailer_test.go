package mailer

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestRender_Invite(t *testing.T) {
	e, err := Render(KindProjectInvite, Data{
		ProjectName: "Festival d'été",
		RoleLabel:   "Ingénieur Son",
		ActorName:   "Marie <Manager>",
		Link:        "https://app.showmate.test/accept-invitation?token=abc",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if e.Subject != "Invitation to join Festival d'été" {
		t.Errorf("subject: got %q", e.Subject)
	}
	if !strings.Contains(e.TextBody, "Ingénieur Son") || !strings.Contains(e.TextBody, "token=abc") {
		t.Errorf("text body missing role or link: %q", e.TextBody)
	}
	if strings.Contains(e.HTMLBody, "<Manager>") {
		t.Error("HTML body contains unescaped actor name")
	}
	if !strings.Contains(e.HTMLBody, "Accept invitation") {
		t.Error("HTML body missing call to action")
	}
	if !strings.Contains(e.HTMLBody, "Showmate") {
		t.Error("HTML body missing default site name")
	}
}

func TestRender_NoButtonForInformational(t *testing.T) {
	e, err := Render(KindProjectRemoved, Data{ProjectName: "Tour 2026", Link: "https://x"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(e.HTMLBody, "<a href") {
		t.Error("informational email should not render a button")
	}
}

func TestRender_AllKindsRegistered(t *testing.T) {
	for _, k := range []Kind{KindProjectInvite, KindInvitationRefused, KindInvitationAccepted, KindProjectRemoved, KindProjectDeleted} {
		if _, err := Render(k, Data{ProjectName: "P"}); err != nil {
			t.Errorf("Render(%s): %v", k, err)
		}
	}
}

func TestRender_UnknownKindPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unregistered template")
		}
	}()
	_, _ = Render(Kind("nope"), Data{})
}

type recordingTransport struct {
	sent []Email
	err  error
}

func (r *recordingTransport) Send(e Email) error {
	r.sent = append(r.sent, e)
	return r.err
}

func TestGateway_Send(t *testing.T) {
	tr := &recordingTransport{}
	g := NewGateway(tr, "Showmate Staging")

	if err := g.Send(context.Background(), KindProjectDeleted, "tech@example.com", Data{ProjectName: "P"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(tr.sent) != 1 || tr.sent[0].To != "tech@example.com" {
		t.Fatalf("unexpected sends: %+v", tr.sent)
	}
	if !strings.Contains(tr.sent[0].HTMLBody, "Showmate Staging") {
		t.Error("site name not applied")
	}
}

func TestGateway_TransportError(t *testing.T) {
	tr := &recordingTransport{err: errors.New("dial tcp: connection refused")}
	g := NewGateway(tr, "")
	if err := g.Send(context.Background(), KindProjectRemoved, "a@b.c", Data{}); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestMailer_Send(t *testing.T) {
	m := New(Config{Host: "localhost", Port: 1025, From: "noreply@showmate.test", FromName: "Showmate"}, zap.NewNop())

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		if a != nil {
			t.Error("expected no SMTP auth without username")
		}
		return nil
	}

	err := m.Send(Email{To: "Tech <tech@example.com>", Subject: "Hello", TextBody: "hi", HTMLBody: "<p>hi</p>"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotAddr != "localhost:1025" || gotFrom != "noreply@showmate.test" {
		t.Errorf("addr/from: %q %q", gotAddr, gotFrom)
	}
	if len(gotTo) != 1 || gotTo[0] != "tech@example.com" {
		t.Errorf("to: %v", gotTo)
	}
	msg := string(gotMsg)
	if !strings.Contains(msg, "multipart/alternative") || !strings.Contains(msg, "<p>hi</p>") {
		t.Errorf("message not multipart with html part:\n%s", msg)
	}
}

func TestMailer_Send_EmptyRecipient(t *testing.T) {
	m := New(Config{Host: "localhost", Port: 1025}, zap.NewNop())
	if err := m.Send(Email{}); err != ErrNoRecipient {
		t.Errorf("expected ErrNoRecipient, got %v", err)
	}
}
