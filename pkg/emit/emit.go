// SPDX-License-Identifier: AGPL-3.0-only

package emit

import (
	"context"
	"fmt"
)

// Document is a serialized dashboard ready to be written out.
type Document struct {
	// Name identifies the dashboard in logs and errors.
	Name string
	// FileName is the base name the document is stored under.
	FileName string
	Body     []byte
}

// Emitter writes documents to their destination. Emit either stores the whole
// document or fails with an *IOError.
type Emitter interface {
	Emit(ctx context.Context, doc Document) error
}

// IOError reports a failure to write a document to its destination.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Multi emits every document to each of its emitters in order, stopping at
// the first failure.
type Multi []Emitter

func (m Multi) Emit(ctx context.Context, doc Document) error {
	for _, e := range m {
		if err := e.Emit(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}
