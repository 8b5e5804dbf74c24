// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"text/template"
)

// Kind names a registered email template.
type Kind string

const (
	KindProjectInvite      Kind = "project_invite"
	KindInvitationRefused  Kind = "invitation_refused"
	KindInvitationAccepted Kind = "invitation_accepted"
	KindProjectRemoved     Kind = "project_removed"
	KindProjectDeleted     Kind = "project_deleted"
)

// Data is the payload every template renders against. Templates use the
// fields they need and ignore the rest.
type Data struct {
	SiteName    string
	ProjectName string
	RoleLabel   string
	ActorName   string // inviter, decliner, or accepter depending on the kind
	Link        string
}

type entry struct {
	subject *template.Template
	text    *template.Template
	heading string
	intro   *template.Template
	button  string // empty means no call-to-action
}

var registry = map[Kind]entry{}

func register(k Kind, subject, text, heading, intro, button string) {
	registry[k] = entry{
		subject: template.Must(template.New(string(k) + "_subject").Parse(subject)),
		text:    template.Must(template.New(string(k) + "_text").Parse(text)),
		heading: heading,
		intro:   template.Must(template.New(string(k) + "_intro").Parse(intro)),
		button:  button,
	}
}

func init() {
	register(KindProjectInvite,
		`Invitation to join {{.ProjectName}}`,
		`{{.ActorName}} invited you to join {{.ProjectName}} as {{.RoleLabel}}.

Accept the invitation here:
{{.Link}}

If you were not expecting this invitation, you can ignore this email.
`,
		"You're invited",
		`{{.ActorName}} invited you to join <strong>{{.ProjectName}}</strong> as <strong>{{.RoleLabel}}</strong>.`,
		"Accept invitation")

	register(KindInvitationRefused,
		`{{.ActorName}} declined your invitation`,
		`{{.ActorName}} declined your invitation to join {{.ProjectName}}.
`,
		"Invitation declined",
		`{{.ActorName}} declined your invitation to join <strong>{{.ProjectName}}</strong>.`,
		"")

	register(KindInvitationAccepted,
		`{{.ActorName}} joined {{.ProjectName}}`,
		`{{.ActorName}} accepted your invitation to join {{.ProjectName}}.
`,
		"Invitation accepted",
		`{{.ActorName}} accepted your invitation to join <strong>{{.ProjectName}}</strong>.`,
		"")

	register(KindProjectRemoved,
		`You were removed from {{.ProjectName}}`,
		`You are no longer a member of {{.ProjectName}}.
`,
		"Removed from project",
		`You are no longer a member of <strong>{{.ProjectName}}</strong>.`,
		"")

	register(KindProjectDeleted,
		`{{.ProjectName}} was deleted`,
		`The project {{.ProjectName}} has been deleted. Its schedule and team are no longer available.
`,
		"Project deleted",
		`The project <strong>{{.ProjectName}}</strong> has been deleted. Its schedule and team are no longer available.`,
		"")
}

// Render builds the email for kind. An unregistered kind is a programming
// error and panics.
func Render(kind Kind, data Data) (Email, error) {
	e, ok := registry[kind]
	if !ok {
		panic(fmt.Sprintf("mailer: no template registered for %q", kind))
	}
	if data.SiteName == "" {
		data.SiteName = "Showmate"
	}

	var subj, text, intro bytes.Buffer
	if err := e.subject.Execute(&subj, data); err != nil {
		return Email{}, err
	}
	if err := e.text.Execute(&text, data); err != nil {
		return Email{}, err
	}
	// intro is HTML; escape the data before it reaches the text template
	if err := e.intro.Execute(&intro, escaped(data)); err != nil {
		return Email{}, err
	}

	var html bytes.Buffer
	err := layout.Execute(&html, layoutData{
		SiteName: data.SiteName,
		Heading:  e.heading,
		Intro:    htmltemplate.HTML(intro.String()),
		Button:   e.button,
		Link:     data.Link,
	})
	if err != nil {
		return Email{}, err
	}

	return Email{Subject: subj.String(), TextBody: text.String(), HTMLBody: html.String()}, nil
}

func escaped(d Data) Data {
	return Data{
		SiteName:    htmltemplate.HTMLEscapeString(d.SiteName),
		ProjectName: htmltemplate.HTMLEscapeString(d.ProjectName),
		RoleLabel:   htmltemplate.HTMLEscapeString(d.RoleLabel),
		ActorName:   htmltemplate.HTMLEscapeString(d.ActorName),
		Link:        d.Link,
	}
}

type layoutData struct {
	SiteName string
	Heading  string
	Intro    htmltemplate.HTML
	Button   string
	Link     string
}

var layout = htmltemplate.Must(htmltemplate.New("layout").Parse(layoutHTML))

const layoutHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Heading}}</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #dc2626;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
              <h2 style="margin: 0 0 16px; font-size: 18px; color: #1f2937;">{{.Heading}}</h2>
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151; line-height: 1.5;">{{.Intro}}</p>
              {{if and .Button .Link}}
              <table role="presentation" width="100%" cellspacing="0" cellpadding="0">
                <tr>
                  <td align="center">
                    <a href="{{.Link}}" style="display: inline-block; padding: 14px 32px; background-color: #dc2626; color: #ffffff; text-decoration: none; font-size: 16px; font-weight: 500; border-radius: 6px;">{{.Button}}</a>
                  </td>
                </tr>
              </table>
              {{end}}
            </td>
          </tr>
          <tr>
            <td style="padding: 24px 32px; background-color: #f9fafb; border-top: 1px solid #e5e7eb; border-radius: 0 0 8px 8px;">
              <p style="margin: 0; font-size: 12px; color: #9ca3af; text-align: center;">
                You received this email because of activity on your {{.SiteName}} account.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
