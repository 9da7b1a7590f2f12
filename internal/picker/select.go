package picker

import (
	"github.com/dgellow/openid-selector/internal/log"
	"github.com/dgellow/openid-selector/internal/provider"
)

// genericInputValue prefills the identifier box of the catch-all provider
const genericInputValue = "http://"

// SelectProvider handles a click on a provider icon. Unknown ids are
// ignored. With isRestore set (page load from cookie) the form is never
// submitted, even for providers that need no input.
func (p *Picker) SelectProvider(providerID string, isRestore bool) {
	entry, ok := p.providers.Lookup(providerID)
	if !ok {
		log.LogDebugWithFields("picker", "Ignoring unknown provider", map[string]any{
			"provider": providerID,
		})
		return
	}

	p.doc.highlight(providerID)
	p.writeCookie(providerID)
	p.selectedID = entry.ID
	p.selectedURL = entry.URL
	p.selected = entry

	log.LogTraceWithFields("picker", "Provider selected", map[string]any{
		"provider": providerID,
		"restore":  isRestore,
		"input":    entry.NeedsInput(),
	})

	if entry.NeedsInput() {
		p.useInputBox(entry)
		return
	}

	p.doc.InputArea = nil
	if !isRestore {
		p.RequestSubmit()
	}
}

// useInputBox replaces the input area with the provider's prompt
func (p *Picker) useInputBox(entry *provider.Entry) {
	area := &InputArea{
		Prompt:      entry.Label,
		InputID:     UsernameInputID,
		SubmitLabel: p.cfg.SigninText,
	}
	if entry.IsGeneric() {
		area.InputID = p.hiddenFieldID
		area.Value = genericInputValue
		area.Style = "background: #FFF url(" + p.cfg.ImgPath + "openid-inputicon.gif) no-repeat scroll 0 50%; padding-left:18px;"
	}
	p.doc.InputArea = area
	p.doc.Focused = area.InputID
}

// RequestSubmit submits the host form the way a script-triggered submit
// does: the interceptor runs first and may cancel.
func (p *Picker) RequestSubmit() bool {
	if !p.Submit() {
		return false
	}
	p.host.SubmitForm()
	return true
}
