package web

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/jdxmedia/noticias/core"
)

var statusLabels = map[core.Status]string{
	core.StatusDraft:       "Borrador",
	core.StatusDone:        "Terminada",
	core.StatusPublished:   "Publicada",
	core.StatusDeactivated: "Desactivada",
}

// StatusLabel translates a status for display.
func StatusLabel(status core.Status) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return string(status)
}

// statusOptions renders the option list of a status select. Restricted
// states are disabled for users who can't publish. That is a UI hint only,
// the lifecycle service makes the actual decision.
func statusOptions(current core.Status, canPublish bool) template.HTML {
	var sb strings.Builder
	for _, status := range []core.Status{core.StatusDraft, core.StatusDone, core.StatusPublished, core.StatusDeactivated} {
		var selected string
		if status == current {
			selected = " selected"
		}
		var disabled string
		if status.Restricted() && !canPublish {
			disabled = " disabled"
		}
		fmt.Fprintf(&sb, `<option value="%s"%s%s>%s</option>`, status, selected, disabled, StatusLabel(status))
	}
	return template.HTML(sb.String())
}
