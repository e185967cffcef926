package present

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// List items carry a marker naming their list until block assembly wraps
// consecutive items in <ul> or <ol>.
const (
	listMarkUnordered = "\x01ul\x01"
	listMarkOrdered   = "\x01ol\x01"
)

type substitution struct {
	re   *regexp.Regexp
	repl string
}

var (
	fencedRe      = regexp.MustCompile("(?s)```([A-Za-z0-9_+-]*)[ \t]*\n?(.*?)\n?```")
	placeholderRe = regexp.MustCompile("\x00(\\d+)\x00")

	// Applied in order after fenced blocks are lifted out and the rest is escaped.
	proseSubstitutions = []substitution{
		{regexp.MustCompile(`(?m)^### (.*)$`), "<h3>$1</h3>"},
		{regexp.MustCompile(`(?m)^## (.*)$`), "<h2>$1</h2>"},
		{regexp.MustCompile(`(?m)^# (.*)$`), "<h1>$1</h1>"},
		{regexp.MustCompile(`\*\*(.+?)\*\*`), "<strong>$1</strong>"},
		{regexp.MustCompile(`\*(.+?)\*`), "<em>$1</em>"},
		{regexp.MustCompile("`([^`\n]+)`"), "<code>$1</code>"},
		{regexp.MustCompile(`(?m)^[ \t]*- (.*)$`), listMarkUnordered + "<li>$1</li>"},
		{regexp.MustCompile(`(?m)^[ \t]*\d+\. (.*)$`), listMarkOrdered + "<li>$1</li>"},
	}

	paragraphRe = regexp.MustCompile(`\n{2,}`)
	headingRe   = regexp.MustCompile(`^<h[1-3]>`)

	prosePolicy = newProsePolicy()
)

func newProsePolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("h1", "h2", "h3", "p", "strong", "em", "code", "pre", "ul", "ol", "li", "br")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[A-Za-z0-9_+-]+$`)).OnElements("code")
	return p
}

// ProseHTML converts markdown-ish text to sanitized HTML using a fixed list of
// line substitutions. It is not a markdown parser: nesting is not recognised
// and a blank line ends a list.
func ProseHTML(md string) string {
	md = strings.ReplaceAll(strings.TrimSpace(md), "\r\n", "\n")
	if md == "" {
		return ""
	}

	var blocks []string
	md = fencedRe.ReplaceAllStringFunc(md, func(m string) string {
		sub := fencedRe.FindStringSubmatch(m)
		lang, body := sub[1], sub[2]
		attr := ""
		if lang != "" {
			attr = fmt.Sprintf(` class="language-%s"`, lang)
		}
		blocks = append(blocks, fmt.Sprintf("<pre><code%s>%s</code></pre>", attr, html.EscapeString(body)))
		return fmt.Sprintf("\n\n\x00%d\x00\n\n", len(blocks)-1)
	})

	out := strings.ReplaceAll(html.EscapeString(md), "\x01", "")
	for _, s := range proseSubstitutions {
		out = s.re.ReplaceAllString(out, s.repl)
	}

	var b strings.Builder
	for _, block := range paragraphRe.Split(out, -1) {
		block = strings.TrimSpace(block)
		switch {
		case block == "":
			continue
		case placeholderRe.FindString(block) == block:
			i, err := strconv.Atoi(strings.Trim(block, "\x00"))
			if err != nil || i >= len(blocks) {
				continue
			}
			b.WriteString(blocks[i])
			b.WriteString("\n")
		default:
			writeBlock(&b, block)
		}
	}
	return strings.TrimSpace(prosePolicy.Sanitize(b.String()))
}

// writeBlock emits heading lines as is, wraps runs of list items in their
// list element and joins the remaining lines into paragraphs.
func writeBlock(b *strings.Builder, block string) {
	var para []string
	open := ""
	flushPara := func() {
		if len(para) > 0 {
			b.WriteString("<p>" + strings.Join(para, "\n") + "</p>\n")
			para = nil
		}
	}
	closeList := func() {
		if open != "" {
			b.WriteString("</" + open + ">\n")
			open = ""
		}
	}
	for _, line := range strings.Split(block, "\n") {
		kind, item := listItem(strings.TrimSpace(line))
		switch {
		case kind != "":
			flushPara()
			if kind != open {
				closeList()
				b.WriteString("<" + kind + ">\n")
				open = kind
			}
			b.WriteString(item + "\n")
		case headingRe.MatchString(line):
			closeList()
			flushPara()
			b.WriteString(line + "\n")
		default:
			closeList()
			para = append(para, line)
		}
	}
	closeList()
	flushPara()
}

func listItem(line string) (kind string, item string) {
	switch {
	case strings.HasPrefix(line, listMarkUnordered):
		return "ul", strings.TrimPrefix(line, listMarkUnordered)
	case strings.HasPrefix(line, listMarkOrdered):
		return "ol", strings.TrimPrefix(line, listMarkOrdered)
	default:
		return "", ""
	}
}
