// Package domain holds the EcoPlus entities, calendar days, and sentinel
// errors. It has no infrastructure dependencies.
package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors carry no infrastructure dependency.

var (
	// Account errors
	ErrUserNotFound       = errors.New("user not found")
	ErrMobileTaken        = errors.New("user with this mobile number already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid session token")

	// Calendar errors
	ErrInvalidDay = errors.New("day must be formatted as YYYY-MM-DD")

	// Quiz errors
	ErrQuestionNotFound = errors.New("question not found")
	ErrInvalidOption    = errors.New("selected option index is out of range")

	// Journey errors
	ErrInvalidTransport       = errors.New("unknown transport type")
	ErrInvalidDistance        = errors.New("distance must be positive")
	ErrFuelEfficiencyRequired = errors.New("fuel efficiency is required for car journeys")

	// Social errors
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")

	// Community event errors
	ErrEventNotFound      = errors.New("event not found")
	ErrAlreadyVolunteered = errors.New("already joined this event")
)
