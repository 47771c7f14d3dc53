package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"
)

var invitationTemplate = template.Must(template.New("invitation").Parse(
	`<p>{{if .InviterName}}{{.InviterName}} invited you{{else}}You were invited{{end}} to collaborate on <strong>{{.ProjectName}}</strong> as {{.Role}}.</p>` +
		`<p><a href="{{.Link}}">Open the project</a></p>` +
		`<p>Sign up with this email address to get access.</p>`,
))

type invitationView struct {
	Invitation
	Link string
}

func renderInvitation(inv Invitation, appURL string) (Message, error) {
	link := strings.TrimRight(appURL, "/") + "/projects/" + url.PathEscape(inv.ProjectUUID)

	var buf bytes.Buffer
	if err := invitationTemplate.Execute(&buf, invitationView{Invitation: inv, Link: link}); err != nil {
		return Message{}, fmt.Errorf("render invitation: %w", err)
	}

	return Message{
		To:      inv.Email,
		Subject: fmt.Sprintf("You've been invited to %s", inv.ProjectName),
		HTML:    buf.String(),
	}, nil
}
