package studio

// ResultKind tags a Result.
type ResultKind string

const (
	ResultImage ResultKind = "image"
	ResultText  ResultKind = "text"
	ResultError ResultKind = "error"
)

// Result is the outcome of one submission. Image content is base64.
type Result struct {
	Kind     ResultKind `json:"type"`
	Content  string     `json:"content"`
	MIMEType string     `json:"mimeType,omitempty"`
}

func ImageResult(b64, mimeType string) *Result {
	return &Result{Kind: ResultImage, Content: b64, MIMEType: mimeType}
}

func TextResult(text string) *Result {
	return &Result{Kind: ResultText, Content: text}
}

func ErrorResult(message string) *Result {
	return &Result{Kind: ResultError, Content: message}
}
