package evaluation

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
)

// Report is the renderable half of a Verdict. At most one of Tests, Query and
// Choice is populated; Failure carries the message for error verdicts.
// Rendering is a pure function of the struct, so a report may be rendered any
// number of times.
type Report struct {
	Summary string
	Tests   []TestCaseResult
	Query   *QueryOutcome
	Choice  *ChoiceOutcome
	Failure string
}

// QueryOutcome holds the captured result sets of a query evaluation.
type QueryOutcome struct {
	UserCols      []string
	UserRows      [][]any
	ReferenceCols []string
	ReferenceRows [][]any
	Matched       bool
	Err           string
}

// ChoiceOutcome holds the compared indices of a choice evaluation.
type ChoiceOutcome struct {
	Selected    int
	Correct     int
	CorrectText string
	Matched     bool
}

// HTML renders the report as an HTML fragment for the quiz page. All
// submission-derived values are escaped.
func (r Report) HTML() string {
	var b strings.Builder

	if r.Failure != "" {
		fmt.Fprintf(&b, "<p class='text-danger'>%s</p>", html.EscapeString(r.Failure))
		return b.String()
	}

	switch {
	case r.Tests != nil:
		r.renderTests(&b)
	case r.Query != nil:
		r.renderQuery(&b)
	case r.Choice != nil:
		r.renderChoice(&b)
	default:
		fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(r.Summary))
	}

	return b.String()
}

func (r Report) renderTests(b *strings.Builder) {
	if r.Summary != "" {
		class := "text-danger"
		if allPassed(r.Tests) {
			class = "text-success"
		}
		fmt.Fprintf(b, "<p class='%s mt-2'><strong>%s</strong></p>", class, html.EscapeString(r.Summary))
	}

	b.WriteString("<ul class='list-group'>")
	for _, res := range r.Tests {
		icon, class := "❌", "text-danger"
		verdict := "Failed"
		if res.Passed {
			icon, class = "✅", "text-success"
			verdict = "Passed"
		}

		got := formatValue(res.Actual)
		if res.Error != "" {
			got = "Error"
		}

		fmt.Fprintf(b, "<li class='list-group-item'><strong>%s:</strong> %s <span class='%s'>%s</span><br>",
			html.EscapeString(res.Name), icon, class, verdict)
		fmt.Fprintf(b, "<small>Input: <code>%s</code>, Expected: <code>%s</code>, Got: <code>%s</code></small>",
			html.EscapeString(formatValue(res.Input)), html.EscapeString(formatValue(res.Expected)), html.EscapeString(got))
		if res.Error != "" {
			fmt.Fprintf(b, "<br><small class='text-danger'>Error during this test: %s</small>", html.EscapeString(res.Error))
		}
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
}

func (r Report) renderQuery(b *strings.Builder) {
	q := r.Query

	b.WriteString("<h4>Your Output:</h4>")
	if len(q.UserRows) > 0 {
		b.WriteString("<table class='results-table'><thead><tr>")
		for _, col := range q.UserCols {
			fmt.Fprintf(b, "<th>%s</th>", html.EscapeString(col))
		}
		b.WriteString("</tr></thead><tbody>")
		for _, row := range q.UserRows {
			b.WriteString("<tr>")
			for _, val := range row {
				fmt.Fprintf(b, "<td>%s</td>", html.EscapeString(formatCell(val)))
			}
			b.WriteString("</tr>")
		}
		b.WriteString("</tbody></table>")
	} else {
		b.WriteString("<p>Your query returned no results.</p>")
	}

	if q.Err != "" {
		fmt.Fprintf(b, "<p class='text-danger'><strong>Error:</strong> %s</p>", html.EscapeString(q.Err))
		return
	}

	r.renderStatusLine(b)
}

func (r Report) renderChoice(b *strings.Builder) {
	r.renderStatusLine(b)
	if !r.Choice.Matched {
		fmt.Fprintf(b, "<p>The correct answer was: '%s'</p>", html.EscapeString(r.Choice.CorrectText))
	}
}

func (r Report) renderStatusLine(b *strings.Builder) {
	passed := (r.Query != nil && r.Query.Matched) || (r.Choice != nil && r.Choice.Matched)
	if passed {
		b.WriteString("<p class='text-success mt-2'><strong>Status: Correct!</strong></p>")
	} else {
		b.WriteString("<p class='text-danger mt-2'><strong>Status: Incorrect.</strong></p>")
	}
}

func allPassed(tests []TestCaseResult) bool {
	for _, res := range tests {
		if !res.Passed {
			return false
		}
	}
	return true
}

// formatValue renders an arbitrary payload value for display. JSON encoding
// keeps the form stable across renders.
func formatValue(v any) string {
	if v == nil {
		return "null"
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// formatCell renders a result-table cell. Strings appear without quotes, the
// way the quiz page has always shown them.
func formatCell(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return formatValue(v)
}
