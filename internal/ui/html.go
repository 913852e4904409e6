package ui

import (
	"html/template"
	"strings"
)

var blockTemplate = template.Must(template.New("block").Parse(
	`{{if .Error}}<p style="color: red;">{{else}}<p>{{end}}` +
		`{{if .Label}}<strong>{{.Label}}:</strong> {{end}}{{.Value}}</p>`))

// RenderHTML renders blocks as the paragraph markup of the web page. Values
// are escaped.
func RenderHTML(blocks []Block) string {
	var b strings.Builder
	for _, block := range blocks {
		// Executing a parsed template into a strings.Builder cannot fail
		_ = blockTemplate.Execute(&b, block)
		b.WriteString("\n")
	}
	return b.String()
}

// RenderText renders blocks as plain text lines
func RenderText(blocks []Block) string {
	var b strings.Builder
	for _, block := range blocks {
		if block.Error && block.Label == "" {
			b.WriteString("! ")
		}
		if block.Label != "" {
			b.WriteString(block.Label)
			b.WriteString(": ")
		}
		b.WriteString(block.Value)
		b.WriteString("\n")
	}
	return b.String()
}
