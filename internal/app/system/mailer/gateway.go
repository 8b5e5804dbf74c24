// internal/app/system/mailer/gateway.go
package mailer

import "context"

// Transport delivers a rendered Email. *Mailer is the SMTP implementation.
type Transport interface {
	Send(e Email) error
}

// Gateway renders named templates and hands them to a Transport.
type Gateway struct {
	transport Transport
	siteName  string
}

// NewGateway builds a Gateway. siteName is used when Data.SiteName is empty.
func NewGateway(t Transport, siteName string) *Gateway {
	return &Gateway{transport: t, siteName: siteName}
}

// Send renders kind against data and delivers it to to.
func (g *Gateway) Send(ctx context.Context, kind Kind, to string, data Data) error {
	if data.SiteName == "" {
		data.SiteName = g.siteName
	}
	e, err := Render(kind, data)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	e.To = to
	return g.transport.Send(e)
}
