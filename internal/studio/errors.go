package studio

import "errors"

// ErrorKind classifies a user-presentable failure.
type ErrorKind string

const (
	KindValidation       ErrorKind = "validation"
	KindGenerationEmpty  ErrorKind = "generation_empty"
	KindGenerationFailed ErrorKind = "generation_failed"
	KindVisionFailed     ErrorKind = "vision_failed"
	KindFileChatFailed   ErrorKind = "file_chat_failed"
)

// Fixed messages shown to the user. Backend detail never reaches these.
const (
	MsgMissingImage     = "Please upload an image to analyze."
	MsgMissingFile      = "Please upload a file to chat with."
	MsgGenerationEmpty  = "No image was generated. The response may have been blocked."
	MsgGenerationFailed = "Failed to generate image. Please check the prompt or API configuration."
	MsgVisionFailed     = "Failed to analyze image. The file might be corrupted or in an unsupported format."
	MsgFileChatFailed   = "Failed to process the file. Please ensure it's a valid text file."
	MsgUnexpected       = "An unexpected error occurred."
)

// UserError carries a fixed, user-presentable message. Error returns only the
// message; the underlying cause is reachable through Unwrap for logging.
type UserError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *UserError) Error() string { return e.Message }
func (e *UserError) Unwrap() error { return e.Cause }

func NewUserError(kind ErrorKind, message string, cause error) error {
	return &UserError{Kind: kind, Message: message, Cause: cause}
}

// UserMessage extracts the presentable message from err, falling back to a
// generic one for anything that is not a UserError.
func UserMessage(err error) string {
	var ue *UserError
	if errors.As(err, &ue) && ue.Message != "" {
		return ue.Message
	}
	return MsgUnexpected
}

// KindOf reports the ErrorKind of err, or "" when err is not a UserError.
func KindOf(err error) ErrorKind {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.Kind
	}
	return ""
}
