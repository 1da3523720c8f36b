package service

import "errors"

// Sentinel errors shared across the engine services. Handlers map these onto
// HTTP status codes with errors.Is.
var (
	// ErrStudentNotFound indicates the student id is unknown.
	ErrStudentNotFound = errors.New("student not found")
	// ErrCurriculumNotFound indicates the curriculum id is unknown.
	ErrCurriculumNotFound = errors.New("curriculum not found")
	// ErrAssignmentNotFound indicates the student has no active curriculum assignment.
	ErrAssignmentNotFound = errors.New("active curriculum assignment not found")
	// ErrSessionNotFound indicates the recitation session id is unknown.
	ErrSessionNotFound = errors.New("recitation session not found")
	// ErrAlertNotFound indicates the alert id is unknown.
	ErrAlertNotFound = errors.New("alert not found")

	// ErrInvalidVerseRange indicates a range that does not exist in the mushaf.
	ErrInvalidVerseRange = errors.New("invalid verse range")
	// ErrInvalidGrade indicates a grade outside the accepted scale.
	ErrInvalidGrade = errors.New("grade out of range")
	// ErrSessionAlreadyCompleted indicates a finalized session cannot be changed.
	ErrSessionAlreadyCompleted = errors.New("session already completed")
	// ErrUnknownTemplate indicates the plan template name is not registered.
	ErrUnknownTemplate = errors.New("unknown plan template")

	// ErrDuplicateAssignment indicates the student already has an active
	// curriculum assignment.
	ErrDuplicateAssignment = errors.New("student already has an active curriculum assignment")
	// ErrAlertConflict indicates a concurrent transition won the race; the
	// alert was not changed by this call.
	ErrAlertConflict = errors.New("alert was modified concurrently")
	// ErrAlertNotActionable indicates the alert is not in a state that
	// permits the requested transition.
	ErrAlertNotActionable = errors.New("alert state does not permit this action")
	// ErrMissingTargetCurriculum indicates an approve decision without a
	// target curriculum to transition to.
	ErrMissingTargetCurriculum = errors.New("target curriculum required to apply transition")
)
