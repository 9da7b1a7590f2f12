package server

import (
	"net/http"
	"net/url"

	"github.com/dgellow/openid-selector/internal/config"
	"github.com/dgellow/openid-selector/internal/cookie"
	"github.com/dgellow/openid-selector/internal/crypto"
	jsonwriter "github.com/dgellow/openid-selector/internal/json"
	"github.com/dgellow/openid-selector/internal/log"
	"github.com/dgellow/openid-selector/internal/picker"
	"github.com/dgellow/openid-selector/internal/provider"
	"github.com/dgellow/openid-selector/internal/urlutil"
)

// ProviderField is the form field echoing the selected provider id, so a
// submit works even when the selection cookie was refused
const ProviderField = "openid_provider"

// Submit outcomes recorded besides the interceptor's own reasons
const (
	outcomeCSRFRejected = "csrf_rejected"
	outcomeNoIdentifier = "no_identifier"
)

// TablesSource supplies the provider tables for each new picker
type TablesSource interface {
	Tables() provider.Tables
}

// pageHost collects what the picker asks of the page during one request
type pageHost struct {
	submitted bool
	alerts    []string
}

func (h *pageHost) SubmitForm() {
	h.submitted = true
}

func (h *pageHost) Alert(message string) {
	h.alerts = append(h.alerts, message)
}

// PickerHandlers serves the picker page and its select and submit endpoints.
// Every request builds its own picker from the current tables and the
// request cookies.
type PickerHandlers struct {
	server  config.ServerConfig
	picker  picker.Config
	tables  TablesSource
	csrf    crypto.CSRFProtection
	metrics *Metrics
	options []picker.Option

	selectURL     string
	submitURL     string
	stylesheetURL string
}

// NewPickerHandlers creates the picker handlers. metrics may be nil.
func NewPickerHandlers(serverCfg config.ServerConfig, pickerCfg picker.Config, tables TablesSource, csrf crypto.CSRFProtection, metrics *Metrics, opts ...picker.Option) (*PickerHandlers, error) {
	h := &PickerHandlers{
		server:  serverCfg,
		picker:  pickerCfg.WithDefaults(),
		tables:  tables,
		csrf:    csrf,
		metrics: metrics,
		options: opts,
	}

	// Links are relative to the base path unless a public base URL is set,
	// in which case they are absolute.
	base := serverCfg.BasePath
	if serverCfg.BaseURL != "" {
		var err error
		if base, err = urlutil.JoinPath(serverCfg.BaseURL, serverCfg.BasePath); err != nil {
			return nil, err
		}
	}

	var err error
	if h.selectURL, err = urlutil.JoinPath(base, "select"); err != nil {
		return nil, err
	}
	if h.submitURL, err = urlutil.JoinPath(base, "submit"); err != nil {
		return nil, err
	}
	if h.stylesheetURL, err = urlutil.JoinPath(base, "assets", "openid.css"); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *PickerHandlers) selectHref(providerID string) string {
	return h.selectURL + "?provider=" + url.QueryEscape(providerID)
}

// newPicker builds the picker for one request. The constructor restores the
// remembered provider without submitting.
func (h *PickerHandlers) newPicker(w http.ResponseWriter, r *http.Request, host *pageHost) *picker.Picker {
	opts := append([]picker.Option{picker.WithHref(h.selectHref)}, h.options...)
	p := picker.New(h.server.HiddenFieldID, h.picker, h.tables.Tables(), cookie.NewHTTPStore(w, r), host, opts...)
	if id, _ := p.Selected(); id != "" {
		h.metrics.RecordSelection(id, true)
	}
	return p
}

// PageHandler shows the picker with the remembered provider highlighted
func (h *PickerHandlers) PageHandler(w http.ResponseWriter, r *http.Request) {
	host := &pageHost{}
	p := h.newPicker(w, r, host)
	h.render(w, r, p, host, http.StatusOK, "")
}

// SelectHandler handles a click on a provider icon
func (h *PickerHandlers) SelectHandler(w http.ResponseWriter, r *http.Request) {
	providerID := r.URL.Query().Get("provider")

	host := &pageHost{}
	p := h.newPicker(w, r, host)

	entry, ok := p.Providers().Lookup(providerID)
	if !ok {
		log.LogDebugWithFields("server", "Select for unknown provider", map[string]any{
			"provider":   providerID,
			"request_id": RequestIDFromContext(r.Context()),
		})
		h.render(w, r, p, host, http.StatusOK, "")
		return
	}

	p.SelectProvider(providerID, false)
	h.metrics.RecordSelection(providerID, false)

	if host.submitted {
		identifier, _ := p.Document().Value(p.HiddenFieldID())
		h.metrics.RecordSubmit(string(picker.ReasonProceed))
		h.redirectToVerify(w, r, identifier)
		return
	}

	if !entry.NeedsInput() {
		// The interceptor cancelled the automatic submit
		reason := picker.ReasonAction
		if p.Config().Demo {
			reason = picker.ReasonDemo
		}
		h.metrics.RecordSubmit(string(reason))
	}
	h.render(w, r, p, host, http.StatusOK, "")
}

// SubmitHandler handles the picker form post
func (h *PickerHandlers) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		jsonwriter.WriteBadRequest(w, "Invalid form data")
		return
	}

	csrfCookie, _ := cookie.GetCSRF(r)
	if !h.csrf.ValidatePair(csrfCookie, r.PostForm.Get(crypto.CSRFFormField)) {
		log.LogWarnWithFields("server", "Rejected picker submit with invalid CSRF token", map[string]any{
			"remote_addr": r.RemoteAddr,
			"request_id":  RequestIDFromContext(r.Context()),
		})
		h.metrics.RecordSubmit(outcomeCSRFRejected)
		jsonwriter.WriteForbidden(w, "Invalid CSRF token")
		return
	}

	host := &pageHost{}
	p := h.newPicker(w, r, host)

	if posted := r.PostForm.Get(ProviderField); posted != "" {
		if current, _ := p.Selected(); current != posted {
			p.SelectProvider(posted, true)
			if current, _ = p.Selected(); current == posted {
				h.metrics.RecordSelection(posted, false)
			}
		}
	}

	p.Document().Fill(r.PostForm)
	out := p.Intercept()

	if out.Proceed && (p.SelectedEntry() == nil || out.Identifier == "") {
		h.metrics.RecordSubmit(outcomeNoIdentifier)
		h.render(w, r, p, host, http.StatusUnprocessableEntity, "Choose a provider to sign in.")
		return
	}

	h.metrics.RecordSubmit(string(out.Reason))
	if out.Proceed {
		h.redirectToVerify(w, r, out.Identifier)
		return
	}
	h.render(w, r, p, host, http.StatusOK, "")
}

// redirectToVerify hands the identifier to the relying party's verify URL
func (h *PickerHandlers) redirectToVerify(w http.ResponseWriter, r *http.Request, identifier string) {
	target, err := urlutil.SetQuery(h.server.VerifyURL, h.server.HiddenFieldID, identifier)
	if err != nil {
		log.LogErrorWithFields("server", "Failed to build verify URL", map[string]any{
			"error": err.Error(),
		})
		jsonwriter.WriteInternalServerError(w, "Internal server error")
		return
	}

	log.LogInfoWithFields("server", "Handing identifier to verify URL", map[string]any{
		"identifier": identifier,
		"request_id": RequestIDFromContext(r.Context()),
	})
	// the token was spent on this submit
	cookie.Clear(w, cookie.CSRFCookie, h.server.BasePath)
	noStore(w)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *PickerHandlers) render(w http.ResponseWriter, r *http.Request, p *picker.Picker, host *pageHost, status int, message string) {
	token, err := h.csrf.Generate()
	if err != nil {
		log.LogErrorWithFields("server", "Failed to generate CSRF token", map[string]any{
			"error": err.Error(),
		})
		jsonwriter.WriteInternalServerError(w, "Internal server error")
		return
	}

	widget, err := p.Document().HTML()
	if err != nil {
		log.LogErrorWithFields("server", "Failed to render picker", map[string]any{
			"error": err.Error(),
		})
		jsonwriter.WriteInternalServerError(w, "Internal server error")
		return
	}

	selected, _ := p.Selected()
	data := PageData{
		Lang:             p.Config().Locale,
		Title:            h.server.Name,
		StylesheetURL:    h.stylesheetURL,
		FormID:           picker.FormID,
		ActionURL:        h.submitURL,
		CSRFField:        crypto.CSRFFormField,
		CSRFToken:        token,
		ProviderField:    ProviderField,
		SelectedProvider: selected,
		Widget:           widget,
		Alerts:           host.alerts,
		Message:          message,
	}

	cookie.SetCSRF(w, token, h.server.BasePath)
	noStore(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		log.LogErrorWithFields("server", "Failed to render page", map[string]any{
			"error":      err.Error(),
			"request_id": RequestIDFromContext(r.Context()),
		})
	}
}
