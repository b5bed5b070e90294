package util

import (
	"bytes"
	"fmt"
	"strings"
)

// ContextLines formats the source line errorLine with up to two lines
// before it, marking the failing one.
func ContextLines(src string, errorLine int) string {
	lines := strings.Split(strings.TrimSuffix(src, "\n"), "\n")
	if errorLine < 1 || errorLine > len(lines) {
		return ""
	}

	var result bytes.Buffer
	startLine := max(errorLine-2, 1)
	for i := startLine; i <= errorLine; i++ {
		if i == errorLine {
			result.WriteString(fmt.Sprintf("  >  %3d | %s\n", i, lines[i-1]))
		} else {
			result.WriteString(fmt.Sprintf("     %3d | %s\n", i, lines[i-1]))
		}
	}
	return result.String()
}
