package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"forest-cover-benchmark/internal/classes"
	"forest-cover-benchmark/internal/pipeline"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Writer renders each run to an io.Writer as text tables or JSON.
type Writer struct {
	out    io.Writer
	format string
}

func NewWriter(out io.Writer, format string) (*Writer, error) {
	switch format {
	case FormatText, FormatJSON:
	case "":
		format = FormatText
	default:
		return nil, fmt.Errorf("unknown report format: %s", format)
	}
	return &Writer{out: out, format: format}, nil
}

func (w *Writer) Consume(_ context.Context, r *pipeline.Result) error {
	s := Summarize(r)
	if w.format == FormatJSON {
		enc := json.NewEncoder(w.out)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	return RenderText(w.out, s)
}

var titleStyle = lipgloss.NewStyle().Bold(true)

// RenderText prints the interpreted table followed by the transitional one.
func RenderText(out io.Writer, s Summary) error {
	_, err := fmt.Fprintf(out, "%s\nrun %s  resolution %gx%g m  pixel area %.4f ha  unclassified pixels %d\n\n%s\n%s\n\n%s\n%s\n",
		titleStyle.Render("Forest Cover Benchmark Map"),
		s.RunID, s.ResolutionX, s.ResolutionY, s.PixelAreaHa, s.Unclassified,
		titleStyle.Render("Interpreted classes"),
		areaTable(s.Interpreted, s.TotalHectares),
		titleStyle.Render("Transitional classes"),
		areaTable(s.Transitional, s.TotalHectares),
	)
	return err
}

func areaTable(rows []ClassArea, total float64) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Class", "Description", "Pixels", "Area (ha)", "Share (%)")
	for _, r := range rows {
		t.Row(strconv.Itoa(r.Class), r.Description, strconv.FormatInt(r.Pixels, 10), fmt.Sprintf("%.2f", r.Hectares), fmt.Sprintf("%.1f", r.Share))
	}
	t.Row("", "Total", "", fmt.Sprintf("%.2f", total), "")
	return t.String()
}

// RenderScheme prints the fixed transition rules and interpreted regrouping.
func RenderScheme(out io.Writer, scheme *classes.Scheme) error {
	rules := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Start", "Mid", "End", "Class", "Interpreted", "Description")
	for _, r := range scheme.Rules() {
		i, _ := scheme.Interpret(r.Class)
		rules.Row(
			strconv.Itoa(int(r.Triple.Start)),
			strconv.Itoa(int(r.Triple.Mid)),
			strconv.Itoa(int(r.Triple.End)),
			strconv.Itoa(int(r.Class)),
			strconv.Itoa(int(i)),
			scheme.DescribeTransition(r.Class),
		)
	}

	interpreted := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Interpreted", "Description", "Transition classes")
	for _, i := range classes.InterpretedClasses() {
		var members []string
		for _, c := range scheme.Members(i) {
			members = append(members, strconv.Itoa(int(c)))
		}
		interpreted.Row(strconv.Itoa(int(i)), scheme.DescribeInterpreted(i), strings.Join(members, ", "))
	}

	_, err := fmt.Fprintf(out, "%s (1 = forest, 2 = non-forest, 0 = nodata)\n%s\n\n%s\n",
		titleStyle.Render("Transition classes"), rules.String(), interpreted.String())
	return err
}
