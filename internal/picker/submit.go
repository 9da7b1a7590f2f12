package picker

import (
	"strings"

	"github.com/dgellow/openid-selector/internal/log"
	"github.com/dgellow/openid-selector/internal/provider"
)

// Reason explains the interceptor's decision
type Reason string

const (
	ReasonProceed  Reason = "proceed"
	ReasonDemo     Reason = "demo"
	ReasonAction   Reason = "action"
	// ReasonDeferred marks a submit requested while the interceptor was
	// already running; it is replayed once the running pass finishes.
	ReasonDeferred Reason = "deferred"
)

// Outcome is the result of intercepting a form submission
type Outcome struct {
	Proceed bool
	Reason  Reason
	// Identifier is the hidden field value after the interceptor ran.
	Identifier string
}

// Submit runs the interceptor and reports whether the form may submit
func (p *Picker) Submit() bool {
	return p.Intercept().Proceed
}

// Intercept finalizes the identifier field before the host form submits.
// An action provider may select another provider and ask for a submit;
// that request is replayed after the action, and only for URL providers,
// so actions cannot loop.
func (p *Picker) Intercept() Outcome {
	if p.submitting {
		p.pendingSubmit = true
		return Outcome{Reason: ReasonDeferred}
	}

	p.submitting = true
	out := p.intercept()
	p.submitting = false

	pending := p.pendingSubmit
	p.pendingSubmit = false
	if out.Reason == ReasonAction && pending && p.selected != nil && p.selected.Kind() == provider.KindURL {
		log.LogDebugWithFields("picker", "Replaying submit requested by action", map[string]any{
			"provider": p.selectedID,
		})
		return p.Intercept()
	}
	return out
}

func (p *Picker) intercept() Outcome {
	if p.selectedURL != "" {
		username, _ := p.doc.Value(UsernameInputID)
		p.setIdentifier(strings.Replace(p.selectedURL, provider.UsernamePlaceholder, username, 1))
	}

	identifier, _ := p.doc.Value(p.hiddenFieldID)

	if p.cfg.Demo {
		p.host.Alert(p.cfg.DemoText + "\r\n" + identifier)
		return Outcome{Reason: ReasonDemo, Identifier: identifier}
	}

	if p.selected != nil && p.selected.Kind() == provider.KindAction {
		p.runAction(p.selected.Action())
		identifier, _ = p.doc.Value(p.hiddenFieldID)
		return Outcome{Reason: ReasonAction, Identifier: identifier}
	}

	log.LogTraceWithFields("picker", "Submitting identifier", map[string]any{
		"provider":   p.selectedID,
		"identifier": identifier,
	})
	return Outcome{Proceed: true, Reason: ReasonProceed, Identifier: identifier}
}

// setIdentifier writes the identifier into the hidden field, appending the
// field to the form when the page has none
func (p *Picker) setIdentifier(value string) {
	if p.doc.SetValue(p.hiddenFieldID, value) {
		return
	}
	p.doc.appendHidden(p.hiddenFieldID, value)
}

func (p *Picker) runAction(action *provider.Action) {
	if action == nil {
		return
	}
	fn, ok := p.actions[action.Name]
	if !ok {
		log.LogWarnWithFields("picker", "No callback registered for provider action", map[string]any{
			"provider": p.selectedID,
			"action":   action.Name,
		})
		return
	}
	log.LogDebugWithFields("picker", "Running provider action", map[string]any{
		"provider": p.selectedID,
		"action":   action.Name,
		"arg":      action.Arg,
	})
	fn(p, action.Arg)
}
