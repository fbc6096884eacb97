package raidfs

import "errors"

// ErrAccessDenied is returned for any operation that targets the
// reserved metadata path.
var ErrAccessDenied = errors.New("raidfs: access denied")

// ErrBackendMappingChanged is returned by VerifyBackendMapping when the
// configured backend list no longer matches the one this filesystem
// was created with.
var ErrBackendMappingChanged = errors.New("raidfs: backend mapping changed since this filesystem was created")
