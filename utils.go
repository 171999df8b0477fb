package wirehttp

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// IsValidFileName reports whether name can address a single file directly
// under the working directory. It rejects:
//   - empty names, "." and ".."
//   - any ".." (path traversal)
//   - path separators "/" and "\"
//   - invalid UTF-8
//   - null bytes, control characters, DEL and whitespace
func IsValidFileName(name string) bool {
	if name == "" || name == "." {
		return false
	}

	if strings.Contains(name, "..") {
		return false
	}

	if strings.ContainsAny(name, `/\`) {
		return false
	}

	if !utf8.ValidString(name) {
		return false
	}

	for _, r := range name {
		if r < 0x20 || r == 0x7f || unicode.IsSpace(r) {
			return false
		}
	}

	return true
}
