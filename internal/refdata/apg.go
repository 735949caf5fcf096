package refdata

import "strings"

type APGPattern struct {
	ID          string
	Name        string
	Description string
}

const apgBaseURL = "https://www.w3.org/WAI/ARIA/apg/patterns/"

func (p APGPattern) URL() string {
	if p.ID == "" {
		return apgBaseURL
	}
	return apgBaseURL + p.ID + "/"
}

var apgPatterns = map[string]APGPattern{
	"accordion":    {"accordion", "Accordion", "A vertically stacked set of interactive headings that each contain a title, content snippet, or thumbnail representing a section of content."},
	"alert":        {"alert", "Alert", "An element that displays a brief, important message in a way that attracts the user's attention without interrupting the user's task."},
	"alertdialog":  {"alertdialog", "Alert and Message Dialogs", "A modal dialog that interrupts the user's workflow to communicate an important message and acquire a response."},
	"breadcrumb":   {"breadcrumb", "Breadcrumb", "A list of links to the parent pages of the current page in hierarchical order."},
	"button":       {"button", "Button", "A widget that enables users to trigger an action or event."},
	"carousel":     {"carousel", "Carousel (Slide Show or Image Rotator)", "A carousel presents a set of items, referred to as slides, by sequentially displaying a subset of one or more slides."},
	"checkbox":     {"checkbox", "Checkbox", "A checkable input that has three possible values: true, false, or mixed."},
	"combobox":     {"combobox", "Combobox", "An input widget that has an associated popup enabling users to choose a value from a collection."},
	"dialog-modal": {"dialog-modal", "Dialog (Modal)", "A window overlaid on either the primary window or another dialog window."},
	"disclosure":   {"disclosure", "Disclosure (Show/Hide)", "A widget that enables content to be either collapsed (hidden) or expanded (visible)."},
	"feed":         {"feed", "Feed", "A section of a page that automatically loads new sections of content as the user scrolls."},
	"grid":         {"grid", "Grid (Interactive Tabular Data and Layout Containers)", "A widget that contains one or more rows of cells arranged in a two-dimensional layout."},
	"landmarks":    {"landmarks", "Landmark Regions", "Landmarks provide a powerful way to identify the organization and structure of a web page."},
	"listbox":      {"listbox", "Listbox", "A widget that allows the user to select one or more items from a list of choices."},
	"menubar":      {"menubar", "Menu and Menubar", "A menu offers a list of choices to the user, such as a set of actions or functions."},
	"radio":        {"radio", "Radio Group", "A group of checkable buttons where no more than one button can be checked at a time."},
	"slider":       {"slider", "Slider", "An input where the user selects a value from within a given range."},
	"switch":       {"switch", "Switch", "An input widget that allows users to choose one of two values: on or off."},
	"tabs":         {"tabs", "Tabs", "A set of layered sections of content, known as tab panels, that display one panel of content at a time."},
	"table":        {"table", "Table", "A static tabular structure containing one or more rows that each contain one or more cells."},
	"tooltip":      {"tooltip", "Tooltip", "A popup that displays information related to an element when the element receives keyboard focus or the mouse hovers over it."},
	"treeview":     {"treeview", "Tree View", "A hierarchical list with parent and child nodes that can expand and collapse."},
}

func LookupAPGPattern(id string) (APGPattern, bool) {
	p, ok := apgPatterns[strings.ToLower(strings.TrimSpace(id))]
	return p, ok
}

// APGPatternURL never fails; unknown patterns get the patterns index.
func APGPatternURL(id string) string {
	if p, ok := LookupAPGPattern(id); ok {
		return p.URL()
	}
	return apgBaseURL
}
