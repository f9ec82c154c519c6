package presentation

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"dronefleet/internal/fleet/domain"
	"dronefleet/internal/infra/utils"
)

const (
	messageKey = "message"
	indentUnit = "  "
)

// FormatSuccess renders the payload of a successful operation. Deletes get a
// fixed confirmation; any other payload is flattened into "Key: value" lines,
// led by the server's message when there is one.
func FormatSuccess(payload any, op domain.Operation, entityType domain.EntityType) string {
	if op == domain.OperationDelete {
		return fmt.Sprintf("%s deleted.", entityType.Singular())
	}

	var b strings.Builder
	switch v := payload.(type) {
	case map[string]any:
		if msg, ok := v[messageKey]; ok && msg != nil {
			b.WriteString(scalar(msg))
			b.WriteString("\n")
		}
		writeObject(&b, v, 0, true)
	case []any:
		writeArray(&b, v, 0)
	case nil:
	default:
		b.WriteString(scalar(v))
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeObject(b *strings.Builder, obj map[string]any, depth int, skipMessage bool) {
	indent := strings.Repeat(indentUnit, depth)
	for _, key := range orderedKeys(obj) {
		if skipMessage && key == messageKey {
			continue
		}
		label := utils.HumanizeKey(key)
		switch v := obj[key].(type) {
		case map[string]any:
			fmt.Fprintf(b, "%s%s:\n", indent, label)
			writeObject(b, v, depth+1, false)
		case []any:
			fmt.Fprintf(b, "%s%s:\n", indent, label)
			writeArray(b, v, depth+1)
		default:
			fmt.Fprintf(b, "%s%s: %s\n", indent, label, scalar(v))
		}
	}
}

func writeArray(b *strings.Builder, items []any, depth int) {
	indent := strings.Repeat(indentUnit, depth)
	for _, item := range items {
		switch v := item.(type) {
		case map[string]any:
			fmt.Fprintf(b, "%s-\n", indent)
			writeObject(b, v, depth+1, false)
		case []any:
			fmt.Fprintf(b, "%s-\n", indent)
			writeArray(b, v, depth+1)
		default:
			fmt.Fprintf(b, "%s- %s\n", indent, scalar(v))
		}
	}
}

// orderedKeys puts the identifier first and sorts the rest, since decoded
// objects do not keep the server's key order.
func orderedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		if k != domain.IdentifierField.String() {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if _, ok := obj[domain.IdentifierField.String()]; ok {
		keys = append([]string{domain.IdentifierField.String()}, keys...)
	}
	return keys
}

func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
