package server

import (
	"embed"
	"html/template"
)

//go:embed templates/page.html
var pageTemplateHTML string

// assetsFS holds the default picker stylesheet
//
//go:embed assets
var assetsFS embed.FS

var pageTemplate = template.Must(template.New("page").Parse(pageTemplateHTML))

// PageData represents the data for the picker page
type PageData struct {
	Lang          string
	Title         string
	StylesheetURL string
	FormID        string
	ActionURL     string
	CSRFField     string
	CSRFToken     string

	ProviderField    string
	SelectedProvider string

	// Widget is the picker markup, already escaped by its own template
	Widget template.HTML

	Alerts  []string
	Message string
}
