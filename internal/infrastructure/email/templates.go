// Copyright the AgentMeet contributors.
// SPDX-License-Identifier: MIT

package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*
var templateFS embed.FS

// TemplateSet holds the HTML and text versions of a template.
type TemplateSet struct {
	HTML *template.Template
	Text *template.Template
}

// loadInvitationTemplates parses the invitation templates from the embedded FS.
func loadInvitationTemplates() (TemplateSet, error) {
	html, err := template.New("meeting_invitation.html").ParseFS(templateFS, "templates/meeting_invitation.html")
	if err != nil {
		return TemplateSet{}, fmt.Errorf("failed to parse invitation HTML template: %w", err)
	}
	text, err := template.New("meeting_invitation.txt").ParseFS(templateFS, "templates/meeting_invitation.txt")
	if err != nil {
		return TemplateSet{}, fmt.Errorf("failed to parse invitation text template: %w", err)
	}
	return TemplateSet{HTML: html, Text: text}, nil
}

// renderTemplate renders any template with the provided data.
func renderTemplate(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
