// Package browser reads live form state from pages rendered in headless
// Chrome via Rod.
package browser

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"

	"github.com/PentesterFlow/ladderadmin/internal/form"
)

// Config defines browser configuration.
type Config struct {
	Headless          bool          `json:"headless" yaml:"headless"`
	Timeout           time.Duration `json:"timeout" yaml:"timeout"`
	UserAgent         string        `json:"user_agent" yaml:"user_agent"`
	IgnoreHTTPSErrors bool          `json:"ignore_https_errors" yaml:"ignore_https_errors"`
	ControlURL        string        `json:"control_url,omitempty" yaml:"control_url,omitempty"`
}

// DefaultConfig returns default browser configuration.
func DefaultConfig() Config {
	return Config{
		Headless:  true,
		Timeout:   15 * time.Second,
		UserAgent: "ladderctl/1.0",
	}
}

// Browser wraps a Rod browser instance.
type Browser struct {
	browser *rod.Browser
	config  Config
}

// New launches (or connects to) a browser.
func New(config Config) (*Browser, error) {
	controlURL := config.ControlURL
	if controlURL == "" {
		l := launcher.New()
		if config.Headless {
			l = l.Headless(true)
		}
		if config.IgnoreHTTPSErrors {
			l = l.Set("ignore-certificate-errors", "true")
		}

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		controlURL = u
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	if config.Timeout > 0 {
		browser = browser.Timeout(config.Timeout)
	}

	return &Browser{
		browser: browser,
		config:  config,
	}, nil
}

// Forms navigates to url and returns every form with its current field
// state, as scripts on the page left it.
func (b *Browser) Forms(ctx context.Context, url string, cookies []*http.Cookie) ([]*form.Form, error) {
	page, err := b.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	defer page.Close()

	page = page.Context(ctx)

	if b.config.UserAgent != "" {
		_ = proto.NetworkSetUserAgentOverride{
			UserAgent: b.config.UserAgent,
		}.Call(page)
	}

	if len(cookies) > 0 {
		params := make([]*proto.NetworkCookieParam, 0, len(cookies))
		for _, cookie := range cookies {
			params = append(params, &proto.NetworkCookieParam{
				Name:     cookie.Name,
				Value:    cookie.Value,
				URL:      url,
				Path:     cookie.Path,
				Secure:   cookie.Secure,
				HTTPOnly: cookie.HttpOnly,
			})
		}
		_ = page.SetCookies(params)
	}

	if err := page.Navigate(url); err != nil {
		return nil, fmt.Errorf("failed to navigate: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("failed to load page: %w", err)
	}

	elements, err := page.Elements("form")
	if err != nil {
		return nil, fmt.Errorf("failed to find forms: %w", err)
	}

	forms := make([]*form.Form, 0, len(elements))
	for _, el := range elements {
		forms = append(forms, readForm(el))
	}
	return forms, nil
}

// Form returns the live form with the given element ID.
func (b *Browser) Form(ctx context.Context, url, id string, cookies []*http.Cookie) (*form.Form, error) {
	forms, err := b.Forms(ctx, url, cookies)
	if err != nil {
		return nil, err
	}
	for _, f := range forms {
		if f.ID == id {
			return f, nil
		}
	}
	return nil, fmt.Errorf("form %q not found on %s", id, url)
}

func readForm(el *rod.Element) *form.Form {
	id := attr(el, "id")
	action := attr(el, "action")
	if action == "" {
		action = "/"
	}

	var fields []form.Field
	inputs, _ := el.Elements("input, textarea, select")
	for _, input := range inputs {
		if field, ok := toField(readInput(input)); ok {
			fields = append(fields, field)
		}
	}

	f := form.New(id, action, fields...)
	if name := attr(el, "name"); name != "" {
		f.Name = name
	}
	if method := attr(el, "method"); method != "" {
		f.Method = strings.ToUpper(method)
	}
	return f
}

// liveInput is the state of one control read from the DOM.
type liveInput struct {
	Tag     string
	Type    string
	Name    string
	ID      string
	Value   string
	Checked bool
	Options []string
}

func readInput(el *rod.Element) liveInput {
	in := liveInput{
		Tag:  strings.ToLower(propString(el, "tagName")),
		Type: attr(el, "type"),
		Name: attr(el, "name"),
		ID:   attr(el, "id"),
	}
	in.Value = propString(el, "value")
	in.Checked, _ = prop(el, "checked").Val().(bool)

	if in.Tag == "select" {
		options, _ := el.Elements("option")
		for _, opt := range options {
			in.Options = append(in.Options, propString(opt, "value"))
		}
	}
	return in
}

// toField maps a live control to a field descriptor. Buttons carry no state
// and are dropped.
func toField(in liveInput) (form.Field, bool) {
	field := form.Field{Name: in.Name, ID: in.ID, Value: in.Value}

	switch in.Tag {
	case "textarea":
		field.Type = "textarea"
	case "select":
		field.Type = "select"
		field.Options = in.Options
	default:
		field.Type = strings.ToLower(in.Type)
		if field.Type == "" {
			field.Type = "text"
		}
		switch field.Type {
		case "submit", "button", "reset", "image":
			return form.Field{}, false
		}
		field.Checked = in.Checked
	}

	field.Kind = form.KindOf(field.Type)
	return field, true
}

func attr(el *rod.Element, name string) string {
	if v, _ := el.Attribute(name); v != nil {
		return *v
	}
	return ""
}

func prop(el *rod.Element, name string) gson.JSON {
	v, err := el.Property(name)
	if err != nil {
		return gson.New(nil)
	}
	return v
}

func propString(el *rod.Element, name string) string {
	s, _ := prop(el, name).Val().(string)
	return s
}

// Close closes the browser.
func (b *Browser) Close() error {
	return b.browser.Close()
}
