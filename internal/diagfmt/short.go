package diagfmt

import (
	"fmt"
	"io"

	"opcheck/internal/diag"
	"opcheck/internal/source"
)

// Short writes one line per diagnostic, sorted by position.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, includeNotes bool) error {
	out := diag.FormatShort(bag.Items(), fs, includeNotes)
	if out == "" {
		return nil
	}
	_, err := fmt.Fprintln(w, out)
	return err
}
