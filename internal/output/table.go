package output

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// Field is one row of a vertical key/value table.
type Field struct {
	Key   string
	Value string
}

func WriteFields(w io.Writer, fields []Field) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	for _, f := range fields {
		_, _ = fmt.Fprintf(tw, "%s:\t%s\n", f.Key, orDash(f.Value))
	}
	_ = tw.Flush()
}

// FormatTime renders t in local time, or "-" when zero.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// FormatRemaining renders a duration rounded to seconds, or "expired" when not positive.
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "expired"
	}
	return d.Round(time.Second).String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
