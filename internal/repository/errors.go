// Sentinel errors shared by the repository implementations. Services match
// on these to translate storage-level outcomes into business errors, for
// example a lost payment race into an "already paid" response.
package repository

import "errors"

// ErrNotSubmitted is returned by MarkPaid when the task is in todo or
// in_progress, where no payable work exists yet.
var ErrNotSubmitted = errors.New("task repository: task is not submitted")

// ErrAlreadyPaid is returned when a payment already exists for the task,
// either observed directly or through the unique index on payments.task_id
// during a concurrent pay.
var ErrAlreadyPaid = errors.New("task repository: task is already paid")

// ErrStateConflict is returned when a compare-and-set write found the task
// in a different state than the caller observed.
var ErrStateConflict = errors.New("task repository: task state changed concurrently")
