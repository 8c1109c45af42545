package wasmvm

import "strings"

// methodName converts a kebab-case export name to a camelCase method name.
// Examples:
//   - "add" -> "add"
//   - "checked-div" -> "checkedDiv"
//   - "to-u8-string" -> "toU8String"
func methodName(export string) string {
	if !strings.Contains(export, "-") {
		return export
	}
	var b strings.Builder
	b.Grow(len(export))
	upper := false
	for i := 0; i < len(export); i++ {
		ch := export[i]
		if ch == '-' {
			upper = b.Len() > 0
			continue
		}
		if upper && ch >= 'a' && ch <= 'z' {
			ch -= 'a' - 'A'
		}
		upper = false
		b.WriteByte(ch)
	}
	return b.String()
}
