package templates

import (
	"bytes"
	"html/template"
	"log"
	"net/url"
	"regexp"
	"strings"
)

type ButtonProps struct {
	Text            string
	URL             string
	BackgroundColor string
	TextColor       string
}

// Template data structure for email button
type buttonTemplateData struct {
	BackgroundColor string
	URL             string
	TextColor       string
	Text            string
}

// Compiled templates for email components
var (
	buttonTemplate = template.Must(template.New("emailButton").Parse(`
    <table role="presentation" border="0" cellpadding="0" cellspacing="0" class="btn btn-primary" style="border-collapse: separate; mso-table-lspace: 0pt; mso-table-rspace: 0pt; box-sizing: border-box; width: 100%; min-width: 100%;" width="100%">
      <tbody>
        <tr>
          <td align="left" style="font-family: Helvetica, sans-serif; font-size: 16px; vertical-align: top; padding-bottom: 16px;" valign="top">
            <table role="presentation" border="0" cellpadding="0" cellspacing="0" style="border-collapse: separate; mso-table-lspace: 0pt; mso-table-rspace: 0pt; width: auto;">
              <tbody>
                <tr>
                  <td style="font-family: Helvetica, sans-serif; font-size: 16px; vertical-align: top; border-radius: 4px; text-align: center; background-color: {{.BackgroundColor}};" valign="top" align="center" bgcolor="{{.BackgroundColor}}">
                    <a href="{{.URL}}" target="_blank" style="border: solid 2px {{.BackgroundColor}}; border-radius: 4px; box-sizing: border-box; cursor: pointer; display: inline-block; font-size: 16px; font-weight: bold; margin: 0; padding: 12px 24px; text-decoration: none; background-color: {{.BackgroundColor}}; border-color: {{.BackgroundColor}}; color: {{.TextColor}};">{{.Text}}</a>
                  </td>
                </tr>
              </tbody>
            </table>
          </td>
        </tr>
      </tbody>
    </table>`))

	paragraphTemplate = template.Must(template.New("emailParagraph").Parse(`<p style="font-family: Helvetica, sans-serif; font-size: 16px; font-weight: normal; margin: 0; margin-bottom: 16px;">{{.}}</p>`))
)

// allowedHTMLTags defines the inline tags GetParagraphWithHTML lets through.
var allowedHTMLTags = map[string]bool{
	"strong": true,
	"b":      true,
	"em":     true,
	"i":      true,
	"u":      true,
	"br":     true,
	"a":      true,
}

func GetButton(props ButtonProps) string {
	backgroundColor := props.BackgroundColor
	if backgroundColor == "" {
		backgroundColor = "#00d4ff"
	}

	textColor := props.TextColor
	if textColor == "" {
		textColor = "#0a0a0b"
	}

	sanitizedURL := sanitizeEmailURL(props.URL)
	if sanitizedURL == "" {
		log.Printf("Invalid or unsafe URL in email button: %s", props.URL)
		sanitizedURL = "#"
	}

	templateData := buttonTemplateData{
		BackgroundColor: sanitizeColor(backgroundColor),
		URL:             sanitizedURL,
		TextColor:       sanitizeColor(textColor),
		Text:            props.Text, // Text is automatically escaped by template
	}

	var buf bytes.Buffer
	if err := buttonTemplate.Execute(&buf, templateData); err != nil {
		log.Printf("Error executing email button template: %v", err)
		return `<div style="color: red;">Button template error</div>`
	}

	return buf.String()
}

// GetParagraph renders paragraph content with all HTML escaped.
func GetParagraph(text string) string {
	return renderParagraph(template.HTML(template.HTMLEscapeString(text)))
}

// GetParagraphWithHTML allows a small set of inline tags in paragraph
// content. Anything outside the allowlist is stripped, not escaped.
func GetParagraphWithHTML(text string) string {
	return renderParagraph(template.HTML(sanitizeBasicHTML(text)))
}

func renderParagraph(content template.HTML) string {
	var buf bytes.Buffer
	if err := paragraphTemplate.Execute(&buf, content); err != nil {
		log.Printf("Error executing email paragraph template: %v", err)
		return `<div style="color: red;">Paragraph template error</div>`
	}
	return buf.String()
}

var (
	scriptRegex = regexp.MustCompile(`(?i)<script[^>]*>.*?</script>`)
	eventRegex  = regexp.MustCompile(`(?i)\s+on\w+\s*=\s*["'][^"']*["']`)
	jsRegex     = regexp.MustCompile(`(?i)javascript\s*:`)
	tagRegex    = regexp.MustCompile(`<(/?)(\w+)([^>]*)>`)
	hrefRegex   = regexp.MustCompile(`(?i)href\s*=\s*["']([^"']*)["']`)
)

// sanitizeBasicHTML keeps only allowlisted inline tags and safe link targets.
func sanitizeBasicHTML(input string) string {
	input = scriptRegex.ReplaceAllString(input, "")
	input = eventRegex.ReplaceAllString(input, "")
	input = jsRegex.ReplaceAllString(input, "")

	return tagRegex.ReplaceAllStringFunc(input, func(match string) string {
		submatches := tagRegex.FindStringSubmatch(match)
		if len(submatches) < 4 {
			return ""
		}

		isClosing := submatches[1] == "/"
		tagName := strings.ToLower(submatches[2])
		attributes := submatches[3]

		if !allowedHTMLTags[tagName] {
			return ""
		}
		if isClosing {
			return "</" + tagName + ">"
		}
		if tagName != "a" {
			return "<" + tagName + ">"
		}

		// Links keep only a validated href.
		if href := hrefRegex.FindStringSubmatch(attributes); href != nil {
			if sanitized := sanitizeEmailURL(href[1]); sanitized != "" {
				return `<a href="` + sanitized + `" target="_blank">`
			}
		}
		return "<a>"
	})
}

// sanitizeEmailURL validates and sanitizes URLs for email use.
func sanitizeEmailURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		log.Printf("Invalid email URL: %s, error: %v", rawURL, err)
		return ""
	}

	// Only allow http, https, and mailto schemes in email bodies.
	scheme := strings.ToLower(parsedURL.Scheme)
	if scheme != "http" && scheme != "https" && scheme != "mailto" {
		log.Printf("Blocked unsafe URL scheme in email: %s", scheme)
		return ""
	}

	return parsedURL.String()
}

// sanitizeColor validates hex color values, falling back to black.
func sanitizeColor(color string) string {
	color = strings.TrimSpace(color)
	if !strings.HasPrefix(color, "#") {
		return "#000000"
	}

	hex := color[1:]
	if len(hex) != 3 && len(hex) != 6 {
		return "#000000"
	}
	for _, char := range hex {
		if !((char >= '0' && char <= '9') || (char >= 'a' && char <= 'f') || (char >= 'A' && char <= 'F')) {
			return "#000000"
		}
	}

	return color
}
