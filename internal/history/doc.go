// Package history implements the transactional undo/redo log: tagged
// Insert/Remove/Replace edits, coalescing into transactions terminated by
// Finish, and save-marker dirty tracking.
//
// Adapted from the teacher's internal/engine/history package: the mutex-
// guarded undo/redo stacks and max-entries trimming are kept as-is, but the
// teacher's Command-interface-plus-BeginGroup/EndGroup model is replaced
// with spec's simpler begin/record/finish transaction lifecycle, and History
// no longer owns or invokes buffer mutation — it only records and replays
// edit descriptions, leaving application to the Rope-owning caller (package
// buffer). This keeps History ignorant of Rope, matching the dependency
// direction spec's component table implies (History sits below Buffer).
package history
