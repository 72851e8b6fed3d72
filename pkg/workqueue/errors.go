package workqueue

import "errors"

// ErrInvalidTransition covers both illegal update requests: a patch
// that introduces a dependency cycle, and a patch that moves a done
// item back to pending.
var ErrInvalidTransition = errors.New("invalid work item transition")

// ErrNotFound indicates the referenced work item id does not exist.
var ErrNotFound = errors.New("work item not found")
