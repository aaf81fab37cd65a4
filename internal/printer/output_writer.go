package printer

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type outputWriter struct {
	w           *bufio.Writer
	indentation int
	indentStr   string
}

func newOutputWriter(w io.Writer, indent string) *outputWriter {
	return &outputWriter{
		w:         bufio.NewWriter(w),
		indentStr: indent,
	}
}

func (w *outputWriter) writeIndentation() {
	w.w.WriteString(strings.Repeat(w.indentStr, w.indentation))
}

func (w *outputWriter) WriteNodeStart(name string) {
	w.writeIndentation()
	w.w.WriteString(name)
}

func (w *outputWriter) WriteAttribute(name, value string) {
	fmt.Fprintf(w.w, " %s=%s", name, value)
}

func (w *outputWriter) WriteAttributeQuoted(name, value string) {
	w.WriteAttribute(name, strconv.Quote(value))
}

func (w *outputWriter) WriteNodeEnd() {
	w.w.WriteByte('\n')
}

func (w *outputWriter) WriteComment(format string, a ...any) {
	for _, line := range strings.Split(fmt.Sprintf(format, a...), "\n") {
		w.writeIndentation()
		w.w.WriteString("# ")
		w.w.WriteString(line)
		w.w.WriteByte('\n')
	}
}

// Flush writes out everything buffered, returning the first write error.
func (w *outputWriter) Flush() error {
	return w.w.Flush()
}
