// Package mutation coordinates optimistic-concurrency writes to versioned resources.
//
// A Coordinator submits a caller's desired state, and on a version conflict it waits,
// refetches the resource and compares generations. When only the resourceVersion moved
// (typically a controller writing status) the desired state is rebased onto the new
// resourceVersion and resubmitted. When the generation moved, someone changed the spec
// underneath the edit and the attempt aborts with a GenerationDivergenceError.
//
// Retries are bounded by a ConflictWindow measured from the first conflict. Every call to
// Submit ends in exactly one invocation of either the success or the error continuation.
package mutation
