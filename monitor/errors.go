package monitor

import "errors"

// ErrUsageRepositoryRequired is returned when a monitor is constructed
// without a usage repository.
var ErrUsageRepositoryRequired = errors.New("usage repository is required")
