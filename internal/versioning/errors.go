package versioning

import "errors"

var (
	// ErrInvalidReleaseType is returned for anything other than major, minor or patch.
	ErrInvalidReleaseType = errors.New("versioning: invalid release type")

	// ErrEmptyChannel is returned when a pre-release is requested without a channel.
	ErrEmptyChannel = errors.New("versioning: empty pre-release channel")
)
