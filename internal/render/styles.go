package render

import (
	"regexp"
	"sort"
)

// ANSI escape sequences used to realise the style tags on terminals.
const (
	Reset     = "\033[0m"
	Bold      = "\033[1m"
	Dim       = "\033[2m"
	Italic    = "\033[3m"
	Underline = "\033[4m"
	Blink     = "\033[5m"
	Reverse   = "\033[7m"
	Normal    = "\033[22m"

	Black   = "\033[30m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"

	BgBlack   = "\033[40m"
	BgRed     = "\033[41m"
	BgGreen   = "\033[42m"
	BgYellow  = "\033[43m"
	BgBlue    = "\033[44m"
	BgMagenta = "\033[45m"
	BgCyan    = "\033[46m"
	BgWhite   = "\033[47m"
)

// styleCodes is the frozen style-tag vocabulary available to story authors.
// Semantic tags (living, player, item, exit, location) render as bright text.
var styleCodes = map[string]string{
	"dim":         Dim,
	"normal":      Normal,
	"bright":      Bold,
	"ul":          Underline,
	"it":          Italic,
	"rev":         Reverse,
	"blink":       Blink,
	"black":       Black,
	"red":         Red,
	"green":       Green,
	"yellow":      Yellow,
	"blue":        Blue,
	"magenta":     Magenta,
	"cyan":        Cyan,
	"white":       White,
	"bg:black":    BgBlack,
	"bg:red":      BgRed,
	"bg:green":    BgGreen,
	"bg:yellow":   BgYellow,
	"bg:blue":     BgBlue,
	"bg:magenta":  BgMagenta,
	"bg:cyan":     BgCyan,
	"bg:white":    BgWhite,
	"living":      Bold,
	"player":      Bold,
	"item":        Bold,
	"exit":        Bold,
	"location":    Bold,
	"monospaced":  "",
	"/monospaced": "",
	"/":           Reset,
}

var tagPattern = regexp.MustCompile(`<(/?[a-z]*(?::[a-z]+)?)>`)

// Tags returns the recognised style tag names in sorted order.
func Tags() []string {
	out := make([]string, 0, len(styleCodes))
	for t := range styleCodes {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// IsTag reports whether name (without angle brackets) is a recognised style tag.
// Closing forms "</name>" are recognised for every opening tag.
func IsTag(name string) bool {
	if _, ok := styleCodes[name]; ok {
		return true
	}
	if len(name) > 1 && name[0] == '/' {
		_, ok := styleCodes[name[1:]]
		return ok
	}
	return false
}

// ApplyStyles replaces every recognised style tag in s with its ANSI sequence
// when enabled, or removes it when not. Unrecognised tags such as "<topic>"
// are left alone.
func ApplyStyles(s string, enabled bool) string {
	return tagPattern.ReplaceAllStringFunc(s, func(m string) string {
		name := m[1 : len(m)-1]
		if !IsTag(name) {
			return m
		}
		if !enabled {
			return ""
		}
		if code, ok := styleCodes[name]; ok {
			return code
		}
		return Reset
	})
}

// StripTags removes all recognised style tags from s.
func StripTags(s string) string {
	return ApplyStyles(s, false)
}
