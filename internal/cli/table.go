package cli

import (
	"bufio"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

const columnGap = 2

// alignRight marks columns padded on the left. Row numbers and other
// numeric columns read better that way.
type tableLayout struct {
	headers    []string
	alignRight map[int]bool
}

func newTableLayout(headers ...string) tableLayout {
	return tableLayout{headers: headers}
}

func (l tableLayout) rightAligned(cols ...int) tableLayout {
	if l.alignRight == nil {
		l.alignRight = make(map[int]bool, len(cols))
	}
	for _, c := range cols {
		l.alignRight[c] = true
	}
	return l
}

// cellWidth measures what the terminal will actually render: ANSI escapes
// are invisible and wide runes take two cells.
func cellWidth(value string) int {
	return runewidth.StringWidth(stripANSI(value))
}

func (l tableLayout) write(out io.Writer, rows [][]string) error {
	colCount := len(l.headers)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	measure := func(index int, value string) {
		if index >= colCount {
			return
		}
		if w := cellWidth(value); w > widths[index] {
			widths[index] = w
		}
	}
	for idx, header := range l.headers {
		measure(idx, header)
	}
	for _, row := range rows {
		for idx, cell := range row {
			measure(idx, cell)
		}
	}

	writer := bufio.NewWriter(out)
	var writeErr error
	writeString := func(value string) {
		if writeErr != nil {
			return
		}
		_, writeErr = writer.WriteString(value)
	}
	writeRow := func(row []string) {
		if writeErr != nil {
			return
		}
		for idx := 0; idx < colCount; idx++ {
			cell := ""
			if idx < len(row) {
				cell = row[idx]
			}
			pad := widths[idx] - cellWidth(cell)
			if pad < 0 {
				pad = 0
			}
			if l.alignRight[idx] {
				writeString(strings.Repeat(" ", pad))
				writeString(cell)
				if idx < colCount-1 {
					writeString(strings.Repeat(" ", columnGap))
				}
				continue
			}
			writeString(cell)
			if idx < colCount-1 {
				writeString(strings.Repeat(" ", pad+columnGap))
			}
		}
		writeString("\n")
	}

	if len(l.headers) > 0 {
		writeRow(l.headers)
	}
	for _, row := range rows {
		writeRow(row)
	}
	if writeErr != nil {
		return writeErr
	}
	return writer.Flush()
}

func formatYesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func stripANSI(value string) string {
	if value == "" {
		return value
	}
	var b strings.Builder
	b.Grow(len(value))
	for i := 0; i < len(value); i++ {
		if value[i] != 0x1b || i+1 >= len(value) || value[i+1] != '[' {
			b.WriteByte(value[i])
			continue
		}
		i += 2
		for i < len(value) {
			ch := value[i]
			if ch >= 0x40 && ch <= 0x7e {
				break
			}
			i++
		}
	}
	return b.String()
}
