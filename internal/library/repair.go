package library

import (
	"fmt"
	"strings"
)

// repair escapes raw control characters inside JSON string literals, which
// hand-edited files often contain (multi-line shader code pasted as is).
func repair(data []byte) []byte {
	var result strings.Builder
	result.Grow(len(data))
	inString := false
	escapeNext := false

	for i := 0; i < len(data); i++ {
		char := data[i]

		if escapeNext {
			result.WriteByte(char)
			escapeNext = false
			continue
		}
		if char == '\\' {
			result.WriteByte(char)
			escapeNext = inString
			continue
		}
		if char == '"' {
			inString = !inString
			result.WriteByte(char)
			continue
		}
		if !inString || char >= 0x20 {
			result.WriteByte(char)
			continue
		}

		switch char {
		case '\n':
			result.WriteString(`\n`)
		case '\r':
			result.WriteString(`\r`)
		case '\t':
			result.WriteString(`\t`)
		default:
			fmt.Fprintf(&result, `\u%04x`, char)
		}
	}
	return []byte(result.String())
}
