package api

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of the flat chat transcript.
type Message struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

type UploadResult struct {
	Name  string `json:"name"`
	Error string `json:"error,omitempty"`
}

type UploadResponse struct {
	Results []UploadResult `json:"results"`
}

type AddURLRequest struct {
	URL string `json:"url"`
}

type AddURLResponse struct {
	Key string `json:"key"`
}

type ListDocumentsResponse struct {
	Documents []string `json:"documents"`
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

type HistoryParams struct {
	Limit int `schema:"limit"`
}
