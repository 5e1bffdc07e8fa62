package service

import (
	"html"
	"regexp"
	"strings"
)

type tagRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Applied in order to an escaped line; later rules see the output of earlier ones.
var tagRules = []tagRule{
	{regexp.MustCompile(`\[CICLO_(\d+)\]`), `<div class="ciclo-header">📚 CICLO ${1}</div>`},
	{regexp.MustCompile(`\[SEMANA_(\d+)\]\s*([^\n]+)`), `<div class="semana-header">📌 SEMANA ${1}: ${2}</div>`},
	{regexp.MustCompile(`\[MAT_VIDEO\]\s*([^\n]+)`), `<div class="material-item"><span class="material-tipo">🎥 Vídeo:</span> ${1}</div>`},
	{regexp.MustCompile(`\[MAT_SLIDE\]\s*([^\n]+)`), `<div class="material-item"><span class="material-tipo">📄 Slide:</span> ${1}</div>`},
	{regexp.MustCompile(`\[LINK\]\s*(https?://[^\s<>"']+)`), `<div class="material-link">🔗 <a href="${1}" target="_blank">${1}</a></div>`},
	{regexp.MustCompile(`\[SEPARADOR\]`), `<div class="separador"></div>`},
}

// formattedLine matches exactly the lines FormatResponse emits. Their text parts are already
// escaped, so they may pass through a second run unchanged.
var formattedLine = regexp.MustCompile(`^(?:` +
	`<p>[^<>"]*</p>` +
	`|<div class="ciclo-header">📚 CICLO \d+</div>` +
	`|<div class="semana-header">📌 SEMANA \d+: [^<>"]*</div>` +
	`|<div class="material-item"><span class="material-tipo">(?:🎥 Vídeo:|📄 Slide:)</span> [^<>"]*</div>` +
	`|<div class="material-link">🔗 <a href="https?://[^\s<>"']+" target="_blank">https?://[^\s<>"']+</a></div>` +
	`|<div class="separador"></div>` +
	`)$`)

// FormatResponse turns raw model text into display HTML: asterisks are stripped, text is
// HTML-escaped, layout tags become blocks and every other non-blank line is wrapped in a
// paragraph. Output of a previous run is left as is.
func FormatResponse(raw string) string {
	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(strings.ReplaceAll(line, "*", ""))
		if line == "" {
			continue
		}
		if formattedLine.MatchString(line) {
			out = append(out, line)
			continue
		}

		line = html.EscapeString(line)
		for _, rule := range tagRules {
			line = rule.pattern.ReplaceAllString(line, rule.replacement)
		}
		if strings.Contains(line, "<div") {
			out = append(out, line)
			continue
		}
		out = append(out, "<p>"+line+"</p>")
	}
	return strings.Join(out, "\n")
}
