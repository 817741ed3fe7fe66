package player

import "github.com/pot-code/course-player/internal/domain"

// LessonRow lesson entry rendered in the sidebar
type LessonRow struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Type        domain.ContentType `json:"type"`
	MilestoneID string             `json:"milestone_id"`
	Index       int                `json:"index"` // position in the flattened sequence
	Status      Status             `json:"status"`
	Clickable   bool               `json:"clickable"`
}

// MilestoneRow milestone entry with its completion fraction
type MilestoneRow struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Completed int          `json:"completed"`
	Total     int          `json:"total"`
	Lessons   []*LessonRow `json:"lessons"`
}

// View render model of the course player
type View struct {
	CourseID      string          `json:"course_id"`
	Title         string          `json:"title"`
	Ready         bool            `json:"ready"`
	Empty         bool            `json:"empty"` // course has no lessons
	Current       string          `json:"current,omitempty"`
	CurrentLesson *LessonRow      `json:"current_lesson,omitempty"`
	Milestones    []*MilestoneRow `json:"milestones"`
	Completed     int             `json:"completed"`
	Total         int             `json:"total"`
	HasPrev       bool            `json:"has_prev"`
	HasNext       bool            `json:"has_next"`
	CanComplete   bool            `json:"can_complete"`
	Pending       bool            `json:"pending"`
	Notice        string          `json:"notice,omitempty"`
}

// BuildView render s over in. Statuses are recomputed on every call.
func BuildView(s State, in Inputs, opts Options) *View {
	view := &View{
		Ready:      in.Ready() && s.Initialized(),
		Milestones: make([]*MilestoneRow, 0),
		Notice:     s.Notice,
		Pending:    s.Pending != "",
	}
	if in.Course != nil {
		view.CourseID = in.Course.ID
		view.Title = in.Course.Title
	}
	if !view.Ready {
		return view
	}

	view.Current = s.Current
	view.Total = len(in.Sequence)
	view.Empty = view.Total == 0

	index := 0
	for _, m := range in.Course.Milestones {
		if m == nil {
			continue
		}
		row := &MilestoneRow{ID: m.ID, Title: m.Title, Lessons: make([]*LessonRow, 0, len(m.Lessons))}
		for _, l := range m.Lessons {
			if l == nil {
				continue
			}
			status := Classify(in.Sequence, index, in.Completed, s.Current)
			lr := &LessonRow{
				ID:          l.ID,
				Title:       l.Title,
				Type:        l.Type,
				MilestoneID: m.ID,
				Index:       index,
				Status:      status,
				Clickable:   status.Clickable(),
			}
			if status == StatusCompleted {
				row.Completed++
				view.Completed++
			}
			if l.ID != "" && l.ID == s.Current {
				view.CurrentLesson = lr
			}
			row.Lessons = append(row.Lessons, lr)
			index++
		}
		row.Total = len(row.Lessons)
		view.Milestones = append(view.Milestones, row)
	}

	_, view.HasPrev = neighbour(s, in, DirectionPrev, opts)
	_, view.HasNext = neighbour(s, in, DirectionNext, opts)
	view.CanComplete = CanComplete(s, in)
	return view
}
