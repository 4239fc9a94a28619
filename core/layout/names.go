package layout

import (
	"strings"
	"unicode"
)

// IsValidProblemName reports whether name uses only lowercase letters, ASCII
// digits and '-'.
func IsValidProblemName(name string) bool {
	if name == "" {
		return false
	}
	for _, char := range name {
		if unicode.IsLower(char) || (char >= '0' && char <= '9') || char == '-' {
			continue
		}
		return false
	}
	return true
}

// TitleFromName turns "two-sum-ii" into "Two Sum Ii".
func TitleFromName(name string) string {
	parts := strings.Split(name, "-")
	for index, part := range parts {
		if part == "" {
			continue
		}
		runes := []rune(part)
		runes[0] = unicode.ToUpper(runes[0])
		parts[index] = string(runes)
	}
	return strings.Join(parts, " ")
}
