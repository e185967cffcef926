package present

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/yungbote/coursehub/internal/domain/learning"
)

const defaultWrap = 80

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	correctStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	wrongStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Strikethrough(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Italic(true)
	explainStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).PaddingLeft(2)
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("12")).Padding(0, 1)
	barDoneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	barTodoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statLabel    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(22)
	statValue    = lipgloss.NewStyle().Bold(true)
)

// Terminal renders views for a TTY: prose through glamour, everything else
// with lipgloss styles.
type Terminal struct {
	md    *glamour.TermRenderer
	width int
}

// NewTerminal accepts the glamour standard style names ("dark", "light",
// "notty", "ascii") or "auto".
func NewTerminal(style string, width int) (*Terminal, error) {
	if width <= 0 {
		width = defaultWrap
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	switch s := strings.ToLower(strings.TrimSpace(style)); s {
	case "", "auto":
		opts = append(opts, glamour.WithAutoStyle())
	default:
		opts = append(opts, glamour.WithStandardStyle(s))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return &Terminal{md: r, width: width}, nil
}

func (t *Terminal) Markdown(md string) (string, error) {
	if strings.TrimSpace(md) == "" {
		return "", nil
	}
	out, err := t.md.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}

func (t *Terminal) RenderView(v View) (string, error) {
	switch view := v.(type) {
	case ErrorView:
		return errorStyle.Render("error: "+view.Message) + "\n", nil
	case ProseView:
		out, err := t.Markdown(view.Markdown)
		if err != nil {
			return "", err
		}
		if view.Fallback {
			out = noticeStyle.Render("(generated locally, the service was unavailable)") + "\n" + out
		}
		return out, nil
	case QuizView:
		return t.RenderQuizOverview(view.Quiz.Title, len(view.Quiz.Questions)), nil
	case MindmapView:
		return t.RenderMindmap(view.Mindmap.Title, view.Visible), nil
	default:
		return "", fmt.Errorf("unsupported view %T", v)
	}
}

func (t *Terminal) RenderQuizOverview(title string, questions int) string {
	return titleStyle.Render(title) + "\n" + subtleStyle.Render(fmt.Sprintf("%d questions", questions)) + "\n"
}

func (t *Terminal) RenderQuestion(q QuestionView) string {
	var b strings.Builder
	b.WriteString(subtleStyle.Render(fmt.Sprintf("Question %d/%d", q.Index+1, q.Total)))
	b.WriteString("\n")
	b.WriteString(titleStyle.Render(q.Question))
	b.WriteString("\n")
	for i, o := range q.Options {
		line := fmt.Sprintf("  %c) %s", 'a'+rune(i), o.Text)
		switch {
		case o.Correct:
			line = correctStyle.Render(line + "  ✓")
		case o.Chosen:
			line = wrongStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if q.Explanation != "" {
		b.WriteString(explainStyle.Render(q.Explanation))
		b.WriteString("\n")
	}
	return b.String()
}

func (t *Terminal) RenderQuizResult(r QuizResult) string {
	msg := fmt.Sprintf("Score: %d/%d (%.0f%%)", r.Score, r.Total, r.Percent)
	return boxStyle.Render(msg) + "\n"
}

func (t *Terminal) RenderMindmap(title string, nodes []VisibleNode) string {
	var b strings.Builder
	for _, n := range nodes {
		if n.Depth == 0 {
			b.WriteString(titleStyle.Render(title))
			b.WriteString("\n")
			continue
		}
		marker := "•"
		if n.HasChildren {
			marker = "▸"
			if n.Expanded {
				marker = "▾"
			}
		}
		b.WriteString(strings.Repeat("  ", n.Depth-1))
		b.WriteString(marker + " " + n.Title)
		if n.HasChildren && !n.Expanded {
			b.WriteString(subtleStyle.Render(" [" + FormatPath(n.Path) + "]"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (t *Terminal) RenderCatalog(courses []learning.Course, st learning.CourseStats) string {
	var b strings.Builder
	b.WriteString(t.RenderStats(st))
	b.WriteString("\n")
	for i := range courses {
		c := &courses[i]
		b.WriteString(titleStyle.Render(fmt.Sprintf("[%s] %s", c.ID, c.Title)))
		b.WriteString("\n")
		b.WriteString(subtleStyle.Render(fmt.Sprintf("%s · %s · %.1f★ · %d min", c.Category, c.Difficulty, c.Rating, c.TotalMinutes())))
		b.WriteString("\n")
		b.WriteString(progressBar(c.Progress(), 30))
		b.WriteString(fmt.Sprintf(" %3.0f%%  %d/%d sessions\n\n", c.Progress(), c.CompletedSessions(), len(c.Sessions)))
	}
	return b.String()
}

func (t *Terminal) RenderStats(st learning.CourseStats) string {
	rows := []string{
		statLabel.Render("Courses") + statValue.Render(fmt.Sprint(st.TotalCourses)),
		statLabel.Render("Completed") + statValue.Render(fmt.Sprint(st.CompletedCourses)),
		statLabel.Render("In progress") + statValue.Render(fmt.Sprint(st.InProgressCourses)),
		statLabel.Render("Average progress") + statValue.Render(fmt.Sprintf("%.0f%%", st.AverageProgress)),
		statLabel.Render("Sessions done") + statValue.Render(fmt.Sprintf("%d/%d", st.CompletedSessions, st.TotalSessions)),
		statLabel.Render("Minutes done") + statValue.Render(fmt.Sprintf("%d/%d", st.CompletedMinutes, st.TotalMinutes)),
	}
	return boxStyle.Render(strings.Join(rows, "\n")) + "\n"
}

func progressBar(pct float64, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	done := int(pct / 100 * float64(width))
	return barDoneStyle.Render(strings.Repeat("█", done)) + barTodoStyle.Render(strings.Repeat("░", width-done))
}
