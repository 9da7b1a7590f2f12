package picker

import (
	"net/url"

	"github.com/dgellow/openid-selector/internal/provider"
)

// Element ids of the picker markup
const (
	ChoiceID    = "openid_choice"
	ButtonsID   = "openid_btns"
	InputAreaID = "openid_input_area"
	FormID      = "openid_form"
	HighlightID = "openid_highlight"
	SubmitID    = "openid_submit"
)

// Icon is one provider anchor in the button container
type Icon struct {
	ProviderID  string
	Title       string
	Href        string
	Style       string
	Class       string
	Size        provider.Size
	Highlighted bool
}

// Button is a slot in the button container: an icon or a line break
type Button struct {
	Break bool
	Icon  Icon
}

// InputArea is the prompt shown for providers that need user input
type InputArea struct {
	Prompt      string
	InputID     string
	Value       string
	Style       string
	SubmitLabel string
}

// HiddenInput is a hidden field appended to the host form
type HiddenInput struct {
	ID    string
	Value string
}

// Document is the picker's view of the page
type Document struct {
	ChoiceVisible bool
	Buttons       []Button
	InputArea     *InputArea
	Hidden        []HiddenInput
	Focused       string
}

// Icons returns the rendered icons without line breaks
func (d *Document) Icons() []Icon {
	icons := make([]Icon, 0, len(d.Buttons))
	for _, b := range d.Buttons {
		if !b.Break {
			icons = append(icons, b.Icon)
		}
	}
	return icons
}

// Icon finds the rendered icon for a provider
func (d *Document) Icon(providerID string) (Icon, bool) {
	for _, b := range d.Buttons {
		if !b.Break && b.Icon.ProviderID == providerID {
			return b.Icon, true
		}
	}
	return Icon{}, false
}

// Highlighted returns the ids of icons inside the highlight container
func (d *Document) Highlighted() []string {
	var ids []string
	for _, b := range d.Buttons {
		if !b.Break && b.Icon.Highlighted {
			ids = append(ids, b.Icon.ProviderID)
		}
	}
	return ids
}

// highlight unwraps the current highlight and wraps the icons of id
func (d *Document) highlight(id string) {
	for i := range d.Buttons {
		d.Buttons[i].Icon.Highlighted = false
	}
	for i := range d.Buttons {
		if !d.Buttons[i].Break && d.Buttons[i].Icon.ProviderID == id {
			d.Buttons[i].Icon.Highlighted = true
		}
	}
}

// Value reads a form control by element id
func (d *Document) Value(id string) (string, bool) {
	if d.InputArea != nil && d.InputArea.InputID == id {
		return d.InputArea.Value, true
	}
	for _, h := range d.Hidden {
		if h.ID == id {
			return h.Value, true
		}
	}
	return "", false
}

// SetValue writes a form control; false when no element has that id
func (d *Document) SetValue(id, value string) bool {
	if d.InputArea != nil && d.InputArea.InputID == id {
		d.InputArea.Value = value
		return true
	}
	for i := range d.Hidden {
		if d.Hidden[i].ID == id {
			d.Hidden[i].Value = value
			return true
		}
	}
	return false
}

// Fill copies posted form values into the matching controls
func (d *Document) Fill(values url.Values) {
	for key := range values {
		d.SetValue(key, values.Get(key))
	}
}

func (d *Document) appendHidden(id, value string) {
	d.Hidden = append(d.Hidden, HiddenInput{ID: id, Value: value})
}
