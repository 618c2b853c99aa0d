package store

// Task is a to-do item owned by a single user. Visibility controls whether
// other roles can read it; ownership controls who can change it.
type Task struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Status     string `json:"status"`
	Visibility string `json:"visibility"`
	Owner      string `json:"owner"`
	CreatedAt  int64  `json:"createdAt"`
}

// User is a registered account. Username is unique case-insensitively and
// USN is unique when present. Password holds a bcrypt hash for accounts
// created through registration; imported legacy records may carry plaintext.
type User struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Name     string `json:"name"`
	USN      string `json:"usn"`
	Email    string `json:"email"`
}

type Complaint struct {
	ID          string `json:"id"`
	Owner       string `json:"owner"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Status      string `json:"status"`
	CreatedAt   int64  `json:"createdAt"`
}

// Permission is an uploaded permission-slip file. FileData holds the base64
// body inline; when object storage is configured the body lives under
// ObjectKey instead and FileData is rehydrated on read.
type Permission struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	FileData   string `json:"fileData,omitempty"`
	ObjectKey  string `json:"objectKey,omitempty"`
	UploadedBy string `json:"uploadedBy"`
	CreatedAt  int64  `json:"createdAt"`
}

// Feedback carries an optional 1-5 rating; nil means unrated.
type Feedback struct {
	ID        string `json:"id"`
	Owner     string `json:"owner"`
	Message   string `json:"message"`
	Rating    *int   `json:"rating"`
	CreatedAt int64  `json:"createdAt"`
}

type Event struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	ClubName          string  `json:"clubName"`
	Description       string  `json:"description"`
	RegistrationLink  string  `json:"registrationLink"`
	AttendanceInfo    string  `json:"attendanceInfo"`
	StartDate         int64   `json:"startDate"`
	EndDate           int64   `json:"endDate"`
	Status            string  `json:"status"`
	Visibility        string  `json:"visibility"`
	CreatedBy         string  `json:"createdBy"`
	Image             string  `json:"image,omitempty"`
	RegistrationFee   float64 `json:"registrationFee"`
	AttendanceAllowed bool    `json:"attendanceAllowed"`
	AttendanceTiming  string  `json:"attendanceTiming"`
	Duration          string  `json:"duration"`
}

// Registrations maps event ID to the set of registered usernames.
// Membership is append-only and idempotent.
type Registrations map[string][]string

// Reactions maps complaint ID to per-user reactions ("like" or "dislike").
// Last write wins per user; a cleared reaction removes the entry.
type Reactions map[string]map[string]string

// Task status values.
const (
	TaskPending    = "Pending"
	TaskInProgress = "In Progress"
	TaskCompleted  = "Completed"
)

// Visibility values, shared by tasks and events.
const (
	VisibilityPublic = "public"
	VisibilityAdmin  = "admin"
)

// Complaint categories.
const (
	CategoryAcademic       = "Academic"
	CategoryInfrastructure = "Infrastructure"
	CategoryAdministrative = "Administrative"
	CategoryOther          = "Other"
)

// Complaint status values.
const (
	ComplaintPending     = "Pending"
	ComplaintUnderReview = "Under Review"
	ComplaintResolved    = "Resolved"
)

// Event status values, derived from the event window when not supplied.
const (
	EventUpcoming = "Upcoming"
	EventStarted  = "Started"
	EventEnded    = "Ended"
)

// Reaction values.
const (
	ReactionLike    = "like"
	ReactionDislike = "dislike"
)
