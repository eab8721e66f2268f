// Package export writes parsed messages as flat tabular records.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/Zuo-Peng/wax/internal/parse"
)

// Header is the column order of every record.
var Header = []string{"timestamp", "user", "text", "attachments", "type", "source_line"}

// Record flattens m. Attachment names are joined with ", ".
func Record(m parse.Message) []string {
	return []string{
		m.Timestamp,
		m.User,
		m.Text,
		strings.Join(m.Attachments, ", "),
		string(m.Type),
		strconv.Itoa(m.SourceLine),
	}
}

type Options struct {
	Comma    rune // field separator; ',' when zero
	NoHeader bool
	UseCRLF  bool
}

// WriteCSV writes one record per message, in order, after a header row.
func WriteCSV(w io.Writer, msgs []parse.Message, opts Options) error {
	cw := csv.NewWriter(w)
	if opts.Comma != 0 {
		cw.Comma = opts.Comma
	}
	cw.UseCRLF = opts.UseCRLF

	if !opts.NoHeader {
		if err := cw.Write(Header); err != nil {
			return err
		}
	}
	for _, m := range msgs {
		if err := cw.Write(Record(m)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
