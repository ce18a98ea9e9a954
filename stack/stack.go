// Package stack implements the typed error-stack propagation described in
// the error handling design: each component boundary pushes a frame (e.g.
// "Block(4)", "Execution(CommitTx)") onto the error as it unwinds, so the
// outermost RPC handler can render "Block(4) -> Execution(CommitTx) -> ...".
package stack

import (
	"errors"
	"fmt"
	"strings"
)

// Frame is one component-boundary annotation pushed onto an error.
type Frame struct {
	Component string
	Detail    string
}

func (f Frame) String() string {
	if f.Detail == "" {
		return f.Component
	}
	return fmt.Sprintf("%s(%s)", f.Component, f.Detail)
}

// stacked wraps an error with an ordered list of frames, outermost last.
type stacked struct {
	err    error
	frames []Frame
}

func (s *stacked) Error() string {
	parts := make([]string, 0, len(s.frames)+1)
	for i := len(s.frames) - 1; i >= 0; i-- {
		parts = append(parts, s.frames[i].String())
	}
	parts = append(parts, s.err.Error())
	return strings.Join(parts, " -> ")
}

func (s *stacked) Unwrap() error { return s.err }

// Push adds a frame to err, creating the stack on first use. It is safe to
// call on a plain error or on an error that already carries a stack.
func Push(err error, component, detail string) error {
	if err == nil {
		return nil
	}
	frame := Frame{Component: component, Detail: detail}
	var s *stacked
	if errors.As(err, &s) {
		frames := append(append([]Frame{}, s.frames...), frame)
		return &stacked{err: s.err, frames: frames}
	}
	return &stacked{err: err, frames: []Frame{frame}}
}

// Frames returns the ordered frames pushed onto err, or nil if err carries
// no stack.
func Frames(err error) []Frame {
	var s *stacked
	if errors.As(err, &s) {
		return s.frames
	}
	return nil
}

// Render formats err with its full stack trail, or just err.Error() if it
// carries no stack. This is what the outermost JSON-RPC handler embeds in
// the error response.
func Render(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
