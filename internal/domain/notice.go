package domain

// NoticeLevel controls how a notice is styled.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is the user-visible outcome of a search submission.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}
