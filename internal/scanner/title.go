package scanner

import (
	"regexp"
	"strconv"
	"strings"
)

// annotationPattern matches bracketed, parenthesized or braced
// annotation groups in ROM filenames, e.g. "(USA)", "[!]", "{beta}".
var annotationPattern = regexp.MustCompile(`[\(\[\{][^\)\]\}]+[\)\]\}]\s*`)

// diskPattern matches multi-disk markers like "(Disk 2 of 3)".
var diskPattern = regexp.MustCompile(`(?i)\(Disk\s*(\d+)\s*of\s*(\d+)\)`)

// BaseTitle strips the extension and any annotation groups from a ROM
// filename, leaving the clean game title.
func BaseTitle(filename string) string {
	base := filename
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	return strings.TrimSpace(annotationPattern.ReplaceAllString(base, ""))
}

// DiskSetSize parses a "(Disk X of Y)" marker out of a ROM path and
// returns Y, or 0 when the path carries no disk marker.
func DiskSetSize(romPath string) int {
	m := diskPattern.FindStringSubmatch(romPath)
	if m == nil {
		return 0
	}
	total, err := strconv.Atoi(m[2])
	if err != nil {
		return 0
	}
	return total
}
