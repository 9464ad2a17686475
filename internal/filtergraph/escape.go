package filtergraph

import "strings"

// DefaultCaptionFont is used when no font is configured.
const DefaultCaptionFont = "DejaVu Sans"

// CaptionStyle returns the libass force_style string for burned-in
// captions: white text on a ~50% opaque box, bottom-center, lifted
// above the footer area of the overlay template.
func CaptionStyle(font string) string {
	if font == "" {
		font = DefaultCaptionFont
	}
	return "FontName=" + font + "," +
		"FontSize=13," +
		"PrimaryColour=&H00FFFFFF&," +
		"BackColour=&H80000000&," +
		"Outline=0," +
		"Shadow=0," +
		"BorderStyle=3," +
		"Alignment=2," +
		"MarginV=120," +
		"Bold=1," +
		"WrapStyle=2"
}

// EscapeSubtitlePath escapes a subtitle file path for the subtitles
// filter. Backslashes are escaped first so the substitutions for colon,
// comma, and quote never double-escape their own backslashes.
func EscapeSubtitlePath(path string) string {
	s := strings.ReplaceAll(path, `\`, `\\`)
	s = strings.ReplaceAll(s, ":", `\:`)
	s = strings.ReplaceAll(s, ",", `\,`)
	s = strings.ReplaceAll(s, "'", `\'`)
	return s
}

// escapeStyle escapes the style string's internal commas; the whole
// style travels as a single force_style parameter value.
func escapeStyle(style string) string {
	return strings.ReplaceAll(style, ",", `\,`)
}
