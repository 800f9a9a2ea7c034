package notification

// Severity controls how a toast is styled.
type Severity string

// Supported severities.
const (
	Info        Severity = "info"
	Destructive Severity = "destructive"
)

// Notification is a transient, user-visible message.
type Notification struct {
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Error builds a destructive notification.
func Error(title, message string) Notification {
	return Notification{Title: title, Message: message, Severity: Destructive}
}

// User-facing notifications of the capture and results pages.
var (
	InvalidFileType = Error("Invalid file type", "Please upload an image file")
	FileTooLarge    = Error("Invalid file type", "Image exceeds the upload limit")
	NoFileSelected  = Error("No file selected", "Please select an image to upload")
	ProcessFailed   = Error("Error", "Failed to process the image")
	FetchFailed     = Error("Error", "Failed to fetch search results")
)
