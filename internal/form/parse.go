package form

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Parse extracts every form in an HTML document.
func Parse(html string) ([]*Form, error) {
	return ParseReader(strings.NewReader(html))
}

// ParseReader extracts every form in an HTML document read from r.
func ParseReader(r io.Reader) ([]*Form, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	forms := make([]*Form, 0)
	doc.Find("form").Each(func(i int, s *goquery.Selection) {
		forms = append(forms, parseForm(s))
	})
	return forms, nil
}

// Find returns the form with the given ID (or name) from the document.
func Find(html, id string) (*Form, error) {
	forms, err := Parse(html)
	if err != nil {
		return nil, err
	}
	for _, f := range forms {
		if f.ID == id || f.Name == id {
			return f, nil
		}
	}
	return nil, fmt.Errorf("form %q not found", id)
}

func parseForm(s *goquery.Selection) *Form {
	f := &Form{}

	f.ID, _ = s.Attr("id")
	f.Name, _ = s.Attr("name")
	if f.Name == "" {
		f.Name = f.ID
	}

	if action, exists := s.Attr("action"); exists && action != "" {
		f.Action = action
	} else {
		f.Action = "/"
	}

	if method, exists := s.Attr("method"); exists {
		f.Method = strings.ToUpper(method)
	} else {
		f.Method = "GET"
	}

	s.Find("input, textarea, select").Each(func(i int, input *goquery.Selection) {
		field, ok := parseField(input)
		if ok {
			f.add(field)
		}
	})

	return f
}

// parseField builds a field from an input, textarea or select element.
// Buttons are skipped: they never carry form state.
func parseField(s *goquery.Selection) (Field, bool) {
	field := Field{}

	field.Name, _ = s.Attr("name")
	field.ID, _ = s.Attr("id")

	switch {
	case s.Is("textarea"):
		field.Type = "textarea"
		field.Value = s.Text()
	case s.Is("select"):
		field.Type = "select"
		selected := ""
		first := true
		s.Find("option").Each(func(i int, opt *goquery.Selection) {
			value, exists := opt.Attr("value")
			if !exists {
				value = strings.TrimSpace(opt.Text())
			}
			field.Options = append(field.Options, value)
			if _, isSelected := opt.Attr("selected"); isSelected || first {
				selected = value
				first = false
			}
		})
		field.Value = selected
	default:
		field.Type, _ = s.Attr("type")
		if field.Type == "" {
			field.Type = "text"
		}
		field.Type = strings.ToLower(field.Type)
		switch field.Type {
		case "submit", "button", "reset", "image":
			return Field{}, false
		}
		field.Value, _ = s.Attr("value")
		_, field.Checked = s.Attr("checked")
	}

	field.Kind = KindOf(field.Type)
	return field, true
}
