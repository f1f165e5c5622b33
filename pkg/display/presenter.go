package display

import (
	"fmt"
	"time"
)

const (
	// FieldWidth is the total rendered width of a live value. A shorter new
	// value must fully overwrite a longer previous one on a non-clearing
	// display, so values are space-padded to a fixed field. Eight columns
	// cover -9999.99 through 99999.99 at two decimal places.
	FieldWidth = 8

	bannerRow  = 0
	elapsedRow = 2
	readingRow = 3
)

// FormatReading renders a reading with 2 decimal places in a fixed-width
// field: right-padded with spaces, truncated if it overflows the field.
func FormatReading(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	if len(s) > FieldWidth {
		return s[:FieldWidth]
	}
	return s + spaces(FieldWidth-len(s))
}

// FormatElapsed renders elapsed time as seconds with one decimal place in
// the same fixed-width field.
func FormatElapsed(d time.Duration) string {
	s := fmt.Sprintf("%.1fs", d.Seconds())
	if len(s) > FieldWidth {
		return s[:FieldWidth]
	}
	return s + spaces(FieldWidth-len(s))
}

func spaces(n int) string {
	const pad = "        "
	if n <= 0 {
		return ""
	}
	if n > len(pad) {
		n = len(pad)
	}
	return pad[:n]
}

// Presenter draws session identity and live samples on a Display. Row 0
// carries the session banner, rows 2 and 3 the live elapsed time and
// reading.
type Presenter struct {
	disp Display
}

// NewPresenter creates a Presenter drawing on disp.
func NewPresenter(disp Display) *Presenter {
	return &Presenter{disp: disp}
}

// ShowSession renders the boot banner: the session filename prefixed by
// whether the durable sink accepted the session file.
func (p *Presenter) ShowSession(filename string, ok bool) {
	if ok {
		p.disp.WriteAt(bannerRow, 0, "Writing: "+filename)
	} else {
		p.disp.WriteAt(bannerRow, 0, "Failed: "+filename)
	}
}

// ShowFailure renders a terminal failure message on the banner row.
func (p *Presenter) ShowFailure(msg string) {
	p.disp.WriteAt(bannerRow, 0, msg)
}

// ShowSample renders the live elapsed time and reading at their fixed
// positions.
func (p *Presenter) ShowSample(elapsed time.Duration, reading float64) {
	p.disp.WriteAt(elapsedRow, 0, "Time:  "+FormatElapsed(elapsed))
	p.disp.WriteAt(readingRow, 0, "Force: "+FormatReading(reading))
}
