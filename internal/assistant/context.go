package assistant

import "campusmate/api/internal/store"

// Context is the data snapshot sent alongside a chat message. The field
// subsets below are the full extent of what the model may read; anything
// not listed here (passwords, file bodies, technical blobs) never leaves
// the process.
type Context struct {
	User UserInfo    `json:"user"`
	Role string      `json:"role"`
	Data ContextData `json:"data"`
}

type UserInfo struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Name     string `json:"name"`
	USN      string `json:"usn"`
	Email    string `json:"email"`
}

type ContextData struct {
	Tasks       []TaskInfo       `json:"tasks"`
	Events      []EventInfo      `json:"events"`
	Complaints  []ComplaintInfo  `json:"complaints"`
	Permissions []PermissionInfo `json:"permissions"`
	Feedback    []FeedbackInfo   `json:"feedback"`
}

type TaskInfo struct {
	Text       string `json:"text"`
	Status     string `json:"status"`
	Owner      string `json:"owner"`
	Visibility string `json:"visibility"`
	CreatedAt  int64  `json:"createdAt"`
}

type EventInfo struct {
	Title           string  `json:"title"`
	ClubName        string  `json:"clubName"`
	Description     string  `json:"description"`
	Status          string  `json:"status"`
	StartDate       int64   `json:"startDate"`
	EndDate         int64   `json:"endDate"`
	RegistrationFee float64 `json:"registrationFee"`
}

type ComplaintInfo struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Owner       string `json:"owner"`
	CreatedAt   int64  `json:"createdAt"`
}

type PermissionInfo struct {
	Filename   string `json:"filename"`
	UploadedBy string `json:"uploadedBy"`
	CreatedAt  int64  `json:"createdAt"`
}

type FeedbackInfo struct {
	Message   string `json:"message"`
	Rating    *int   `json:"rating"`
	Owner     string `json:"owner"`
	CreatedAt int64  `json:"createdAt"`
}

// BuildContext flattens already-visibility-filtered collections into the
// fixed snapshot shape. The caller is responsible for filtering; this
// function only narrows fields.
func BuildContext(viewer store.User, tasks []store.Task, events []store.Event,
	complaints []store.Complaint, permissions []store.Permission, feedback []store.Feedback) Context {

	data := ContextData{
		Tasks:       make([]TaskInfo, 0, len(tasks)),
		Events:      make([]EventInfo, 0, len(events)),
		Complaints:  make([]ComplaintInfo, 0, len(complaints)),
		Permissions: make([]PermissionInfo, 0, len(permissions)),
		Feedback:    make([]FeedbackInfo, 0, len(feedback)),
	}
	for _, t := range tasks {
		data.Tasks = append(data.Tasks, TaskInfo{
			Text: t.Text, Status: t.Status, Owner: t.Owner,
			Visibility: t.Visibility, CreatedAt: t.CreatedAt,
		})
	}
	for _, e := range events {
		data.Events = append(data.Events, EventInfo{
			Title: e.Title, ClubName: e.ClubName, Description: e.Description,
			Status: e.Status, StartDate: e.StartDate, EndDate: e.EndDate,
			RegistrationFee: e.RegistrationFee,
		})
	}
	for _, c := range complaints {
		data.Complaints = append(data.Complaints, ComplaintInfo{
			Category: c.Category, Description: c.Description,
			Status: c.Status, Owner: c.Owner, CreatedAt: c.CreatedAt,
		})
	}
	for _, p := range permissions {
		data.Permissions = append(data.Permissions, PermissionInfo{
			Filename: p.Filename, UploadedBy: p.UploadedBy, CreatedAt: p.CreatedAt,
		})
	}
	for _, f := range feedback {
		data.Feedback = append(data.Feedback, FeedbackInfo{
			Message: f.Message, Rating: f.Rating, Owner: f.Owner, CreatedAt: f.CreatedAt,
		})
	}

	return Context{
		User: UserInfo{
			Username: viewer.Username,
			Role:     viewer.Role,
			Name:     viewer.Name,
			USN:      viewer.USN,
			Email:    viewer.Email,
		},
		Role: viewer.Role,
		Data: data,
	}
}
