// Package errors provides structured error handling for the planner core.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// CodeMalformedRequest represents an unparseable request payload.
	CodeMalformedRequest Code = "MALFORMED_REQUEST"

	// Auth errors
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeForbidden       Code = "FORBIDDEN"
	CodeSessionInvalid  Code = "SESSION_TOKEN_INVALID"
	CodeSessionExpired  Code = "SESSION_TOKEN_EXPIRED"

	// Event errors
	CodeEventNameEmpty               Code = "EVENT_NAME_EMPTY"
	CodeEventDateMissing             Code = "EVENT_DATE_MISSING"
	CodeEventInvalidStatus           Code = "EVENT_INVALID_STATUS"
	CodeEventInvalidStatusTransition Code = "EVENT_INVALID_STATUS_TRANSITION"
	CodeEventDistributionCitiesEmpty Code = "EVENT_DISTRIBUTION_CITIES_EMPTY"
	CodeEventDistributionNotTemplate Code = "EVENT_DISTRIBUTION_NOT_TEMPLATE"

	// Task errors
	CodeTaskEventIDEmpty            Code = "TASK_EVENT_ID_EMPTY"
	CodeTaskTitleEmpty              Code = "TASK_TITLE_EMPTY"
	CodeTaskInvalidCategory         Code = "TASK_INVALID_CATEGORY"
	CodeTaskInvalidStatus           Code = "TASK_INVALID_STATUS"
	CodeTaskInvalidStatusTransition Code = "TASK_INVALID_STATUS_TRANSITION"

	// Sub-task errors
	CodeSubtaskIDEmpty                 Code = "SUBTASK_ID_EMPTY"
	CodeSubtaskTaskIDEmpty             Code = "SUBTASK_TASK_ID_EMPTY"
	CodeSubtaskCategoryMismatch        Code = "SUBTASK_CATEGORY_MISMATCH"
	CodeSubtaskInvalidStatus           Code = "SUBTASK_INVALID_STATUS"
	CodeSubtaskInvalidStatusTransition Code = "SUBTASK_INVALID_STATUS_TRANSITION"
	CodeGraphicsAssetTypeEmpty         Code = "GRAPHICS_ASSET_TYPE_EMPTY"
	CodeGraphicsFormatsEmpty           Code = "GRAPHICS_FORMATS_EMPTY"
	CodeLogisticsStatusMissing         Code = "LOGISTICS_STATUS_MISSING"
	CodeOutreachChannelEmpty           Code = "OUTREACH_CHANNEL_EMPTY"

	// Notification errors
	CodeNotificationIDEmpty        Code = "NOTIFICATION_ID_EMPTY"
	CodeNotificationRecipientEmpty Code = "NOTIFICATION_RECIPIENT_EMPTY"

	// Storage errors
	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"
	CodeInternal      Code = "INTERNAL"
)

// HTTPStatus maps planner codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, bad input
	case CodeMalformedRequest,
		CodeEventNameEmpty,
		CodeEventDateMissing,
		CodeEventInvalidStatus,
		CodeEventDistributionCitiesEmpty,
		CodeTaskEventIDEmpty,
		CodeTaskTitleEmpty,
		CodeTaskInvalidCategory,
		CodeTaskInvalidStatus,
		CodeSubtaskIDEmpty,
		CodeSubtaskTaskIDEmpty,
		CodeSubtaskInvalidStatus,
		CodeGraphicsAssetTypeEmpty,
		CodeGraphicsFormatsEmpty,
		CodeLogisticsStatusMissing,
		CodeOutreachChannelEmpty,
		CodeNotificationIDEmpty,
		CodeNotificationRecipientEmpty:
		return http.StatusBadRequest

	// Unauthorized - missing or unusable identity
	case CodeUnauthenticated,
		CodeSessionInvalid,
		CodeSessionExpired:
		return http.StatusUnauthorized

	// Forbidden - identity present, role insufficient
	case CodeForbidden:
		return http.StatusForbidden

	// NotFound - resource doesn't exist
	case CodeNotFound:
		return http.StatusNotFound

	// Conflict - current state disallows the operation or uniqueness violated
	case CodeEventInvalidStatusTransition,
		CodeEventDistributionNotTemplate,
		CodeTaskInvalidStatusTransition,
		CodeSubtaskCategoryMismatch,
		CodeSubtaskInvalidStatusTransition,
		CodeAlreadyExists:
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}
