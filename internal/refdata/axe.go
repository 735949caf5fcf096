package refdata

import (
	"strings"

	"github.com/auditlens/auditlens/internal/models"
)

type AxeRule struct {
	ID          string
	Description string
	Help        string
	WCAG        []string
	Impact      models.Severity
}

const axeBaseURL = "https://dequeuniversity.com/rules/axe/4.10/"

func (r AxeRule) URL() string {
	if r.ID == "" {
		return axeBaseURL
	}
	return axeBaseURL + r.ID
}

var axeRules = map[string]AxeRule{
	"area-alt":                {"area-alt", "Active <area> elements must have alternate text", "Ensure <area> elements of image maps have alternate text", []string{"1.1.1", "2.4.4"}, models.SeverityCritical},
	"aria-allowed-attr":       {"aria-allowed-attr", "ARIA attributes must be allowed for an element's role", "Ensure an element's role supports its ARIA attributes", []string{"4.1.2"}, models.SeverityCritical},
	"aria-hidden-focus":       {"aria-hidden-focus", "ARIA hidden element must not be focusable", "Ensure aria-hidden elements are not focusable nor contain focusable elements", []string{"1.3.1", "4.1.2"}, models.SeveritySerious},
	"aria-required-attr":      {"aria-required-attr", "Required ARIA attributes must be provided", "Ensure elements with ARIA roles have all required ARIA attributes", []string{"4.1.2"}, models.SeverityCritical},
	"aria-roles":              {"aria-roles", "ARIA roles used must conform to valid values", "Ensure all elements with a role attribute use a valid value", []string{"4.1.2"}, models.SeverityCritical},
	"aria-valid-attr-value":   {"aria-valid-attr-value", "ARIA attributes must conform to valid values", "Ensure all ARIA attributes have valid values", []string{"4.1.2"}, models.SeverityCritical},
	"audio-caption":           {"audio-caption", "<audio> elements must have a captions track", "Ensure <audio> elements have captions", []string{"1.2.1"}, models.SeverityCritical},
	"button-name":             {"button-name", "Buttons must have discernible text", "Ensure buttons have discernible text", []string{"4.1.2"}, models.SeverityCritical},
	"color-contrast":          {"color-contrast", "Elements must meet minimum color contrast ratio thresholds", "Ensure the contrast between foreground and background colors meets WCAG 2 AA minimum thresholds", []string{"1.4.3"}, models.SeveritySerious},
	"document-title":          {"document-title", "Documents must have <title> element to aid in navigation", "Ensure each HTML document contains a non-empty <title> element", []string{"2.4.2"}, models.SeveritySerious},
	"duplicate-id-aria":       {"duplicate-id-aria", "IDs used in ARIA and labels must be unique", "Ensure every id attribute value used in ARIA and in labels is unique", []string{"4.1.2"}, models.SeverityCritical},
	"focus-order-semantics":   {"focus-order-semantics", "Elements in the focus order should have an appropriate role", "Ensure elements in the focus order have a role appropriate for interactive content", []string{"2.4.3"}, models.SeverityMinor},
	"frame-title":             {"frame-title", "Frames must have an accessible name", "Ensure <iframe> and <frame> elements have an accessible name", []string{"4.1.2"}, models.SeveritySerious},
	"html-has-lang":           {"html-has-lang", "<html> element must have a lang attribute", "Ensure every HTML document has a lang attribute", []string{"3.1.1"}, models.SeveritySerious},
	"image-alt":               {"image-alt", "Images must have alternate text", "Ensure <img> elements have alternate text or a role of none or presentation", []string{"1.1.1"}, models.SeverityCritical},
	"input-button-name":       {"input-button-name", "Input buttons must have discernible text", "Ensure input buttons have discernible text", []string{"4.1.2"}, models.SeverityCritical},
	"label":                   {"label", "Form elements must have labels", "Ensure every form element has a label", []string{"1.3.1", "4.1.2"}, models.SeverityCritical},
	"link-name":               {"link-name", "Links must have discernible text", "Ensure links have discernible text", []string{"2.4.4", "4.1.2"}, models.SeveritySerious},
	"meta-viewport":           {"meta-viewport", "Zooming and scaling must not be disabled", "Ensure <meta name=\"viewport\"> does not disable text scaling and zooming", []string{"1.4.4"}, models.SeverityCritical},
	"nested-interactive":      {"nested-interactive", "Interactive controls must not be nested", "Ensure interactive controls are not nested as they are not always announced by screen readers", []string{"4.1.2"}, models.SeveritySerious},
	"region":                  {"region", "All page content should be contained by landmarks", "Ensure all page content is contained by landmarks", []string{"1.3.1"}, models.SeverityModerate},
	"select-name":             {"select-name", "Select element must have an accessible name", "Ensure select element has an accessible name", []string{"4.1.2"}, models.SeverityCritical},
	"scrollable-region-focusable": {"scrollable-region-focusable", "Scrollable region must have keyboard access", "Ensure elements that have scrollable content are accessible by keyboard", []string{"2.1.1"}, models.SeveritySerious},
	"tabindex":                {"tabindex", "Elements should not have tabindex greater than zero", "Ensure tabindex attribute values are not greater than 0", []string{"2.4.3"}, models.SeveritySerious},
	"video-caption":           {"video-caption", "<video> elements must have captions", "Ensure <video> elements have captions", []string{"1.2.2"}, models.SeverityCritical},
}

func LookupAxeRule(id string) (AxeRule, bool) {
	r, ok := axeRules[strings.ToLower(strings.TrimSpace(id))]
	return r, ok
}

// AxeRuleURL never fails; unknown rules get the rules index.
func AxeRuleURL(id string) string {
	if r, ok := LookupAxeRule(id); ok {
		return r.URL()
	}
	return axeBaseURL
}
