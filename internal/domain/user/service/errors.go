package service

import (
	"threaded_comments/pkg/apperror"
	"threaded_comments/pkg/response"
)

const (
	minPasswordLength = 6
	minUsernameLength = 3
	maxUsernameLength = 50
)

var (
	ErrUserExists         = apperror.Conflict("User already exists").WithCode(response.ErrUserExists)
	ErrUserNotFound       = apperror.NotFound("User not found").WithCode(response.ErrUserNotFound)
	ErrInvalidCredentials = apperror.Unauthorized("Invalid credentials").WithCode(response.ErrAuthFailed)
	ErrInvalidUsername    = apperror.Validation("Username must be 3-50 characters")
	ErrPasswordTooShort   = apperror.Validation("Password must be at least 6 characters")
	ErrInvitationInvalid  = apperror.NotFound("Invalid or expired invitation").WithCode(response.ErrInvitationInvalid)
	ErrInvitationEmail    = apperror.Validation("Invitation was issued for a different email").WithCode(response.ErrInvitationInvalid)
)
