package api

// Sprint lifecycle statuses. A sprint in a terminal status never
// accepts further mutations to itself or its attached items.
const (
	SprintPlanning  = "planning"
	SprintActive    = "active"
	SprintCompleted = "completed"
	SprintCancelled = "cancelled"
)

// Backlog item types and priorities as the backend enumerates them.
const (
	ItemStory = "story"
	ItemBug   = "bug"
	ItemEpic  = "epic"
)

const (
	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// Task workflow statuses.
const (
	TaskTodo       = "todo"
	TaskInProgress = "in_progress"
	TaskInReview   = "in_review"
	TaskDone       = "done"
	TaskCancelled  = "cancelled"
)

// Sprint is a time-boxed iteration inside a project. All date fields
// are full timestamps (YYYY-MM-DDTHH:MM:SS).
type Sprint struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
	Goal      string `json:"goal,omitempty"`
	Status    string `json:"status"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Capacity  *int   `json:"capacity,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Terminal reports whether the sprint can no longer be mutated.
func (s *Sprint) Terminal() bool {
	return s.Status == SprintCompleted || s.Status == SprintCancelled
}

// BacklogItem is a unit of planned work. A nil SprintID means the item
// sits in the product backlog; non-nil means it is attached to that
// sprint.
type BacklogItem struct {
	ID          string  `json:"id"`
	ProjectID   string  `json:"project_id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	ItemType    string  `json:"item_type"`
	Priority    string  `json:"priority"`
	Status      string  `json:"status"`
	StoryPoints *int    `json:"story_points,omitempty"`
	SprintID    *string `json:"sprint_id,omitempty"`
	Position    int     `json:"position,omitempty"`
	CreatedAt   string  `json:"created_at,omitempty"`
	UpdatedAt   string  `json:"updated_at,omitempty"`
}

// AcceptanceCriterion is one testable condition attached to a backlog
// item.
type AcceptanceCriterion struct {
	ID     string `json:"id"`
	ItemID string `json:"item_id"`
	Text   string `json:"text"`
	Met    bool   `json:"met,omitempty"`
}

// Task is an execution unit scoped under a sprint and backlog item.
type Task struct {
	ID          string `json:"id"`
	SprintID    string `json:"sprint_id"`
	ItemID      string `json:"item_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// SearchMatch is one ranked result from the semantic-search endpoint.
type SearchMatch struct {
	Kind    string  `json:"kind"`
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Snippet string  `json:"snippet,omitempty"`
	Score   float64 `json:"score"`
}

// CreateSprintParams carries the fields for a sprint create call.
// Dates must already be normalized timestamps.
type CreateSprintParams struct {
	Name      string `json:"name"`
	Goal      string `json:"goal,omitempty"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Capacity  *int   `json:"capacity,omitempty"`
}

// UpdateSprintParams is a partial sprint update. Nil fields are left
// untouched by the backend.
type UpdateSprintParams struct {
	Name      *string `json:"name,omitempty"`
	Goal      *string `json:"goal,omitempty"`
	Status    *string `json:"status,omitempty"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
	Capacity  *int    `json:"capacity,omitempty"`
}

// CreateItemParams carries the fields for a backlog item create call.
type CreateItemParams struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ItemType    string `json:"item_type"`
	Priority    string `json:"priority"`
	StoryPoints *int   `json:"story_points,omitempty"`
}

// UpdateItemParams is a partial backlog item update.
type UpdateItemParams struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	ItemType    *string `json:"item_type,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Status      *string `json:"status,omitempty"`
	StoryPoints *int    `json:"story_points,omitempty"`
	SprintID    *string `json:"sprint_id,omitempty"`
}

// CreateTaskParams carries the fields for a task create call.
type CreateTaskParams struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
}

// UpdateTaskParams is a partial task update.
type UpdateTaskParams struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *string `json:"priority,omitempty"`
}

// SearchParams carries a semantic-search query.
type SearchParams struct {
	Query     string `json:"query"`
	ProjectID string `json:"project_id,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}
