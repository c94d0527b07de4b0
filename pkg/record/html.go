package record

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	stylePattern  = regexp.MustCompile(`(?s)<style.*?>.*?</style>`)
	scriptPattern = regexp.MustCompile(`(?s)<script.*?>.*?</script>`)
	tagPattern    = regexp.MustCompile(`<.*?>`)
	imgPattern    = regexp.MustCompile(`<img src=["']?([^"'>]+)["']? ?/?>`)
	entityPattern = regexp.MustCompile(`&#?\w+;`)
)

// StripHTML removes style blocks, script blocks and tags in that order,
// then decodes HTML entities.
func StripHTML(s string) string {
	s = stylePattern.ReplaceAllString(s, "")
	s = scriptPattern.ReplaceAllString(s, "")
	s = tagPattern.ReplaceAllString(s, "")
	return StripHTMLEntities(s)
}

// StripHTMLMedia strips HTML like StripHTML but first replaces img tags
// with their bare source path surrounded by spaces, so media filenames
// survive into checksum input.
func StripHTMLMedia(s string) string {
	return StripHTML(imgPattern.ReplaceAllString(s, " $1 "))
}

// StripHTMLEntities decodes the fixed entity table, then numeric decimal
// and hexadecimal references. Any other entity-shaped token is deleted.
// The table is applied twice: once as a plain replace pass and again
// inside the regex pass, so a double-encoded entity such as &amp;amp;
// still resolves to its character.
func StripHTMLEntities(text string) string {
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = strings.ReplaceAll(text, "&amp;", "&")
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	text = strings.ReplaceAll(text, "&quot;", "\"")
	text = strings.ReplaceAll(text, "&#39;", "'")
	text = strings.ReplaceAll(text, "&#x27;", "'")
	text = strings.ReplaceAll(text, "&#x2F;", "/")

	return entityPattern.ReplaceAllStringFunc(text, decodeEntity)
}

func decodeEntity(entity string) string {
	switch entity {
	case "&amp;":
		return "&"
	case "&lt;":
		return "<"
	case "&gt;":
		return ">"
	case "&quot;":
		return "\""
	case "&#39;":
		return "'"
	case "&nbsp;":
		return " "
	}
	if !strings.HasPrefix(entity, "&#") {
		return ""
	}
	num := entity[2 : len(entity)-1]
	if code, err := strconv.ParseUint(num, 10, 32); err == nil && utf8.ValidRune(rune(code)) {
		return string(rune(code))
	}
	if len(num) > 1 && (num[0] == 'x' || num[0] == 'X') {
		if code, err := strconv.ParseUint(num[1:], 16, 32); err == nil && utf8.ValidRune(rune(code)) {
			return string(rune(code))
		}
	}
	return ""
}
