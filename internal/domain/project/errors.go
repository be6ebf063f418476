package project

import "errors"

var (
	// ErrInvalidInput indicates invalid project input.
	ErrInvalidInput = errors.New("invalid project input")
	// ErrMemberExists indicates the user already belongs to the project.
	ErrMemberExists = errors.New("user is already a project member")
)
