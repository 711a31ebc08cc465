package survey

import (
	"fmt"
	"strings"

	"github.com/v0xg/surveywalk/internal/config"
)

// Selector resolution. Every selector is scoped to the survey root so it can
// never match page chrome outside the survey. Resolution never produces an
// empty string: the worst case is the bare question marker-class selector,
// which callers must treat as ambiguous and disambiguate by content.

// escapeCSSIdent escapes an attribute value for use inside a CSS identifier
// position, mirroring CSS.escape for the characters that actually occur in
// platform-generated ids.
func escapeCSSIdent(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r == '-',
			r >= '0' && r <= '9' && i > 0:
			b.WriteRune(r)
		case r >= '0' && r <= '9' && i == 0:
			// a leading digit needs the code-point escape form
			fmt.Fprintf(&b, `\3%c `, r)
		default:
			b.WriteRune('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}

// resolveContainerSelector produces the root-scoped locator for a question
// container: container id, then the identifying data attribute, then
// structural position among same-marker siblings.
func resolveContainerSelector(dom config.DOMConfig, raw rawQuestion) string {
	root := dom.RootSelector

	if raw.ContainerID != "" {
		return fmt.Sprintf("%s #%s", root, escapeCSSIdent(raw.ContainerID))
	}
	if dom.ContainerDataAttr != "" && raw.DataAttrValue != "" {
		return fmt.Sprintf("%s [%s=%q]", root, dom.ContainerDataAttr, raw.DataAttrValue)
	}
	if raw.PositionIndex > 0 {
		return fmt.Sprintf("%s %s:nth-of-type(%d)", root, dom.QuestionSelector, raw.PositionIndex)
	}
	// ambiguous: broadest marker-class selector
	return fmt.Sprintf("%s %s", root, dom.QuestionSelector)
}

// resolveInputSelector produces the root-scoped locator for a question's
// first input: element id, then a name-qualified tag selector, then the
// input scoped under the container selector.
func resolveInputSelector(dom config.DOMConfig, raw rawQuestion, containerSel string) string {
	if raw.InputID != "" {
		return fmt.Sprintf("%s #%s", dom.RootSelector, escapeCSSIdent(raw.InputID))
	}
	if raw.InputName != "" && raw.InputTag != "" {
		return fmt.Sprintf("%s %s[name=%q]", dom.RootSelector, raw.InputTag, raw.InputName)
	}
	if raw.InputTag != "" {
		return fmt.Sprintf("%s %s", containerSel, raw.InputTag)
	}
	// widget without a native input (VAS, NRS): the container is the target
	return containerSel
}
