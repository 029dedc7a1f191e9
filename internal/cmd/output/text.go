package output

import (
	"io"
)

// TextHandler renders items for humans using a Printer.
type TextHandler[T any] struct {
	out     io.Writer
	printer Printer[T]
}

func NewTextHandler[T any](w io.Writer, p Printer[T]) *TextHandler[T] {
	return &TextHandler[T]{
		out:     w,
		printer: p,
	}
}

// Writer returns the underlying io.Writer where text will be written.
func (h *TextHandler[T]) Writer() io.Writer {
	return h.out
}

func (h *TextHandler[T]) HandleResult(item T) error {
	count := h.printer.Count(item)

	h.printer.Header(h.out, count)

	if err := h.printer.Item(h.out, item); err != nil {
		return err
	}

	h.printer.Footer(h.out, count)

	return nil
}
