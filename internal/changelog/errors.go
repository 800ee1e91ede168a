package changelog

import "errors"

var (
	// ErrTemplateNotFound is returned when neither the override directory
	// nor the built-in set has the requested template.
	ErrTemplateNotFound = errors.New("changelog: template not found")

	// ErrRender wraps template execution failures such as missing keys.
	ErrRender = errors.New("changelog: render failed")
)
