// Package errors provides structured error handling with i18n support.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Layout errors
	CodeLayoutNameEmpty         Code = "LAYOUT_NAME_EMPTY"
	CodeLayoutNotFound          Code = "LAYOUT_NOT_FOUND"
	CodeLayoutInvalidStage      Code = "LAYOUT_INVALID_STAGE"
	CodeLayoutContentUnresolved Code = "LAYOUT_CONTENT_UNRESOLVED"
	CodeLayoutNameTaken         Code = "LAYOUT_NAME_TAKEN"
	CodeLayoutStoreUnavailable  Code = "LAYOUT_STORE_UNAVAILABLE"
	CodeLayoutUserMissing       Code = "LAYOUT_USER_MISSING"

	// Panel errors
	CodePanelNotFound   Code = "PANEL_NOT_FOUND"
	CodePanelNotInStage Code = "PANEL_NOT_IN_STAGE"

	// Workspace errors
	CodeWorkspaceInvalidSide Code = "WORKSPACE_INVALID_SIDE"
)

// NotFound reports whether the code describes a missing resource.
func (c Code) NotFound() bool {
	switch c {
	case CodeLayoutNotFound, CodePanelNotFound:
		return true
	default:
		return false
	}
}

// InvalidArgument reports whether the code describes rejected caller input.
func (c Code) InvalidArgument() bool {
	switch c {
	case CodeLayoutNameEmpty, CodeLayoutInvalidStage, CodeLayoutNameTaken,
		CodeLayoutUserMissing, CodePanelNotInStage, CodeWorkspaceInvalidSide:
		return true
	default:
		return false
	}
}
