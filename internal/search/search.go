package search

// ResultType tags which collection a hit came from.
type ResultType string

const (
	ResultTask  ResultType = "task"
	ResultEvent ResultType = "event"
)

// Result is one search hit. Snippet carries the matched text.
type Result struct {
	Type    ResultType `json:"type"`
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Snippet string     `json:"snippet,omitempty"`
	Owner   string     `json:"owner,omitempty"`
}

// TaskRecord is the indexed shape of a task.
type TaskRecord struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Owner string `json:"owner"`
}

// EventRecord is the indexed shape of an event.
type EventRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	ClubName    string `json:"clubName"`
	Description string `json:"description"`
	CreatedBy   string `json:"createdBy"`
}
