package picker

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/widget.html
var widgetTemplateHTML string

var widgetTemplate = template.Must(template.New("widget").Parse(widgetTemplateHTML))

// widgetData is the template view of a Document. Styles are computed by
// the renderer, never taken from the request, so they are passed as CSS.
type widgetData struct {
	ChoiceVisible bool
	Buttons       []buttonData
	InputArea     *inputAreaData
	Hidden        []HiddenInput
}

type buttonData struct {
	Break       bool
	Highlighted bool
	Title       string
	Href        string
	Style       template.CSS
	Class       string
}

type inputAreaData struct {
	Prompt      string
	InputID     string
	Value       string
	Style       template.CSS
	SubmitLabel string
	Focus       bool
}

func (d *Document) view() widgetData {
	data := widgetData{
		ChoiceVisible: d.ChoiceVisible,
		Buttons:       make([]buttonData, 0, len(d.Buttons)),
		Hidden:        d.Hidden,
	}
	for _, b := range d.Buttons {
		if b.Break {
			data.Buttons = append(data.Buttons, buttonData{Break: true})
			continue
		}
		data.Buttons = append(data.Buttons, buttonData{
			Highlighted: b.Icon.Highlighted,
			Title:       b.Icon.Title,
			Href:        b.Icon.Href,
			Style:       template.CSS(b.Icon.Style),
			Class:       b.Icon.Class,
		})
	}
	if a := d.InputArea; a != nil {
		data.InputArea = &inputAreaData{
			Prompt:      a.Prompt,
			InputID:     a.InputID,
			Value:       a.Value,
			Style:       template.CSS(a.Style),
			SubmitLabel: a.SubmitLabel,
			Focus:       d.Focused == a.InputID,
		}
	}
	return data
}

// WriteHTML renders the picker markup: the choice area with the provider
// icons, the input area and any hidden inputs added to the form
func (d *Document) WriteHTML(w io.Writer) error {
	if err := widgetTemplate.Execute(w, d.view()); err != nil {
		return fmt.Errorf("rendering picker: %w", err)
	}
	return nil
}

// HTML renders the picker markup for embedding in a page template
func (d *Document) HTML() (template.HTML, error) {
	var buf bytes.Buffer
	if err := d.WriteHTML(&buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
