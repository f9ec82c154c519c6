package presentation

import (
	"fmt"
	"strings"

	"dronefleet/internal/fleet/domain"
	"dronefleet/internal/fleet/forms"
)

// RenderForm lists the derived fields of an operation with the current input.
// Mandatory fields carry a trailing '*'.
func RenderForm(op domain.Operation, fields []forms.DisplayField, state *forms.FormState) string {
	if len(fields) == 0 {
		if op == domain.OperationDelete {
			return "ID *"
		}
		return ""
	}

	var b strings.Builder
	for _, f := range fields {
		marker := ""
		if f.Mandatory {
			marker = " *"
		}
		switch f.Input {
		case forms.InputCheckbox:
			check := " "
			if state != nil && state.Checked(f.Name) {
				check = "x"
			}
			fmt.Fprintf(&b, "[%s] %s%s\n", check, f.Label, marker)
		default:
			value := ""
			if state != nil {
				value = state.Text(f.Name)
			}
			hint := ""
			if f.Input == forms.InputNumeric {
				hint = " (number)"
			}
			fmt.Fprintf(&b, "%s%s%s: %s\n", f.Label, marker, hint, value)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
