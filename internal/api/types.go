package api

// Task describes a task in a transport-friendly format.
type Task struct {
	ID            int64  `json:"id"`
	StudentID     string `json:"studentId"`
	GroupID       string `json:"groupId"`
	PageNumber    int    `json:"pageNumber"`
	PageLines     int    `json:"pageLines"`
	StartLine     int    `json:"startLine"`
	EndLine       int    `json:"endLine"`
	Stage         string `json:"stage"`
	RequiredCount int    `json:"requiredCount"`
	PassedCount   int    `json:"passedCount"`
	FailedCount   int    `json:"failedCount"`
	PendingCount  int    `json:"pendingCount"`
	Status        string `json:"status"`
	Label         string `json:"label"`
	Deadline      string `json:"deadline,omitempty"`
	CreatedAt     string `json:"createdAt,omitempty"`
	CompletedAt   string `json:"completedAt,omitempty"`
}

// Submission describes a submission in a transport-friendly format.
type Submission struct {
	ID                int64  `json:"id"`
	TaskID            int64  `json:"taskId"`
	ExternalID        string `json:"externalId,omitempty"`
	Status            string `json:"status"`
	AIScore           *int   `json:"aiScore,omitempty"`
	Transcript        string `json:"transcript,omitempty"`
	QueuedForReview   bool   `json:"queuedForReview"`
	DeliveryAttempts  int    `json:"deliveryAttempts"`
	LastDeliveryError string `json:"lastDeliveryError,omitempty"`
	DeliveredAt       string `json:"deliveredAt,omitempty"`
	CreatedAt         string `json:"createdAt,omitempty"`
	ReviewedAt        string `json:"reviewedAt,omitempty"`
}

// Progress describes a student's cursor position.
type Progress struct {
	StudentID    string `json:"studentId"`
	GroupID      string `json:"groupId"`
	CurrentPage  int    `json:"currentPage"`
	CurrentLine  int    `json:"currentLine"`
	CurrentStage string `json:"currentStage"`
	UpdatedAt    string `json:"updatedAt,omitempty"`
}

// OpenTaskRequest asks for the task at a student's cursor.
type OpenTaskRequest struct {
	StudentID string `json:"studentId"`
	GroupID   string `json:"groupId"`
}

// SubmitRequest records a new attempt against a task.
type SubmitRequest struct {
	TaskID     int64  `json:"taskId"`
	ExternalID string `json:"externalId,omitempty"`
}

// SubmitResponse reports an intake outcome.
type SubmitResponse struct {
	Submission Submission `json:"submission"`
	Existing   bool       `json:"existing"`
	Decision   string     `json:"decision,omitempty"`
	Task       *Task      `json:"task,omitempty"`
}

// VerdictRequest settles a pending submission.
type VerdictRequest struct {
	MentorID string `json:"mentorId,omitempty"`
	Passed   bool   `json:"passed"`
}

// VerdictResponse reports the consequence of a verdict.
type VerdictResponse struct {
	Submission    Submission  `json:"submission"`
	Task          Task        `json:"task"`
	TaskCompleted bool        `json:"taskCompleted"`
	Advanced      *Progress   `json:"advanced,omitempty"`
	Next          *Submission `json:"next,omitempty"`
}

// ConfirmResponse reports an explicit confirmation.
type ConfirmResponse struct {
	Delivered bool `json:"delivered"`
}

// ProgressResponse bundles the cursor with the task currently open there.
type ProgressResponse struct {
	Progress Progress `json:"progress"`
	OpenTask *Task    `json:"openTask,omitempty"`
}

// ReviewResponse describes a mentor's review state.
type ReviewResponse struct {
	Active *Submission `json:"active,omitempty"`
	Task   *Task       `json:"task,omitempty"`
	Depth  int         `json:"depth"`
}

// Policy describes a group's review policy in a transport-friendly format.
type Policy struct {
	GroupID          string  `json:"groupId"`
	MentorID         string  `json:"mentorId"`
	Level            int     `json:"level"`
	VerificationMode string  `json:"verificationMode"`
	AcceptThreshold  int     `json:"acceptThreshold"`
	RejectThreshold  int     `json:"rejectThreshold"`
	AIEnabled        bool    `json:"aiEnabled"`
	RequiredLearning int     `json:"requiredLearning"`
	RequiredHalfPage int     `json:"requiredHalfPage"`
	RequiredFullPage int     `json:"requiredFullPage"`
	HoursLearning    float64 `json:"hoursLearning"`
	HoursHalfPage    float64 `json:"hoursHalfPage"`
	HoursFullPage    float64 `json:"hoursFullPage"`
}

// StatusResponse aggregates daemon runtime information.
type StatusResponse struct {
	Running            bool   `json:"running"`
	DatabasePath       string `json:"databasePath"`
	LockFilePath       string `json:"lockFilePath"`
	OpenTasks          int    `json:"openTasks"`
	CompletedTasks     int    `json:"completedTasks"`
	PendingSubmissions int    `json:"pendingSubmissions"`
	QueuedForReview    int    `json:"queuedForReview"`
	Students           int    `json:"students"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
