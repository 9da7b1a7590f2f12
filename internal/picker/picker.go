// Package picker implements the OpenID provider picker widget: it renders
// provider icons into a document model, tracks the selected provider,
// remembers it in a cookie and prepares the identifier field before the
// host form submits.
//
// A Picker is owned by a single page (or request) and is not safe for
// concurrent use.
package picker

import (
	"net/url"
	"time"

	"github.com/dgellow/openid-selector/internal/cookie"
	"github.com/dgellow/openid-selector/internal/log"
	"github.com/dgellow/openid-selector/internal/provider"
)

// UsernameInputID is the text input used by providers that ask for a username
const UsernameInputID = "openid_username"

// Host is the page hosting the picker
type Host interface {
	// SubmitForm submits the host form. Called only after the submit
	// interceptor allowed it.
	SubmitForm()
	// Alert shows a blocking message to the user.
	Alert(message string)
}

// ActionFunc is invoked for providers whose URL names an action
type ActionFunc func(p *Picker, arg string)

// Option customizes a Picker
type Option func(*Picker)

// WithClock overrides the clock used for cookie expiry
func WithClock(now func() time.Time) Option {
	return func(p *Picker) { p.now = now }
}

// WithHref sets how icon links are built from a provider id
func WithHref(fn func(providerID string) string) Option {
	return func(p *Picker) { p.href = fn }
}

// WithAction registers a callback for action providers
func WithAction(name string, fn ActionFunc) Option {
	return func(p *Picker) { p.actions[name] = fn }
}

// Picker is the provider picker widget and its page-lifetime state
type Picker struct {
	cfg           Config
	hiddenFieldID string
	tables        provider.Tables
	providers     provider.Active

	store   cookie.Store
	host    Host
	actions map[string]ActionFunc
	href    func(string) string
	now     func() time.Time

	doc Document

	selectedID  string
	selectedURL string
	selected    *provider.Entry

	submitting    bool
	pendingSubmit bool
}

// New builds the picker markup and restores the remembered selection.
// A nil store keeps the selection in memory only; a nil host ignores
// submissions and alerts.
func New(hiddenFieldID string, cfg Config, tables provider.Tables, store cookie.Store, host Host, opts ...Option) *Picker {
	if store == nil {
		store = cookie.NewJar()
	}
	if host == nil {
		host = nopHost{}
	}

	p := &Picker{
		cfg:           cfg.WithDefaults(),
		hiddenFieldID: hiddenFieldID,
		tables:        tables,
		providers:     tables.Merge(),
		store:         store,
		host:          host,
		actions:       defaultActions(),
		href:          defaultHref,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.render()

	if id, ok := p.readCookie(); ok && id != "" {
		log.LogTraceWithFields("picker", "Restoring provider from cookie", map[string]any{
			"provider": id,
		})
		p.SelectProvider(id, true)
	}
	return p
}

func defaultActions() map[string]ActionFunc {
	signin := func(p *Picker, arg string) { p.SelectProvider(arg, false) }
	return map[string]ActionFunc{
		"signin":        signin,
		"openid.signin": signin,
	}
}

func defaultHref(providerID string) string {
	return "select?provider=" + url.QueryEscape(providerID)
}

// Document returns the current page model
func (p *Picker) Document() *Document {
	return &p.doc
}

// Config returns the effective options
func (p *Picker) Config() Config {
	return p.cfg
}

// HiddenFieldID is the id of the field carrying the final identifier
func (p *Picker) HiddenFieldID() string {
	return p.hiddenFieldID
}

// Selected returns the selected provider id and its URL template
func (p *Picker) Selected() (id, url string) {
	return p.selectedID, p.selectedURL
}

// SelectedEntry returns the selected provider, nil before any selection
func (p *Picker) SelectedEntry() *provider.Entry {
	return p.selected
}

// Providers returns the merged provider lookup
func (p *Picker) Providers() provider.Active {
	return p.providers
}

func (p *Picker) writeCookie(value string) {
	p.store.Set(cookie.Cookie{
		Name:    p.cfg.CookieName,
		Value:   value,
		Path:    p.cfg.CookiePath,
		Expires: p.now().Add(p.cfg.CookieLifetime()),
	})
}

func (p *Picker) readCookie() (string, bool) {
	return p.store.Get(p.cfg.CookieName)
}

type nopHost struct{}

func (nopHost) SubmitForm()  {}
func (nopHost) Alert(string) {}
