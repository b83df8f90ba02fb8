package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	ct "github.com/daviddengcn/go-colortext"

	"github.com/Brownie44l1/dermascan-api/internal/evaluate"
)

func PrintYellow(out io.Writer, content string) {
	ct.ChangeColor(ct.Yellow, false, ct.None, false)
	_, _ = fmt.Fprint(out, content)
	ct.ResetColor()
}

func PrintWarning(out io.Writer, content string) {
	ct.ChangeColor(ct.Red, false, ct.None, false)
	_, _ = fmt.Fprint(out, content)
	ct.ResetColor()
}

func PrintString(out io.Writer, content string) {
	ct.ChangeColor(ct.Green, false, ct.None, false)
	_, _ = fmt.Fprint(out, content)
	ct.ResetColor()
}

func printCounts(out io.Writer, classes []string, counts map[string]int) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CLASS\tIMAGES")
	for _, c := range classes {
		_, _ = fmt.Fprintf(w, "%s\t%d\n", c, counts[c])
	}
	_ = w.Flush()
}

func printReport(out io.Writer, r *evaluate.Report) {
	PrintString(out, fmt.Sprintf("Test accuracy: %.2f%%\n", r.Accuracy*100))
	_, _ = fmt.Fprintf(out, "Test loss: %.4f\n", r.Loss)
	_, _ = fmt.Fprintf(out, "Samples: %d (correct %d)\n\n", r.Total, r.Correct)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CLASS\tSUPPORT\tPRECISION\tRECALL\tF1")
	for _, m := range r.PerClass {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%.3f\t%.3f\t%.3f\n", m.Class, m.Support, m.Precision, m.Recall, m.F1)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintln(out, "\nConfusion matrix (rows: true, columns: predicted)")
	w = tabwriter.NewWriter(out, 0, 4, 1, ' ', tabwriter.AlignRight)
	header := make([]string, len(r.Classes))
	for i := range r.Classes {
		header[i] = fmt.Sprintf("%d", i)
	}
	_, _ = fmt.Fprintf(w, "\t%s\t\n", strings.Join(header, "\t"))
	for i, row := range r.Confusion {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprintf("%d", v)
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t\n", i, strings.Join(cells, "\t"))
	}
	_ = w.Flush()
}
