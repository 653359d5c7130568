package parser

import "io"

// SingleResultParser parses one HTML document into a single value
type SingleResultParser[T any] interface {
	ParseHtml(body io.Reader) (T, error)
}
