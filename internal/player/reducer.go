package player

// ActionType kind of player action
type ActionType string

// player actions
const (
	ActionInitialize        ActionType = "INITIALIZE"
	ActionSelectLesson      ActionType = "SELECT_LESSON"
	ActionNavigate          ActionType = "NAVIGATE"
	ActionCompleteStarted   ActionType = "COMPLETE_STARTED"
	ActionCompleteSucceeded ActionType = "COMPLETE_SUCCEEDED"
	ActionCompleteFailed    ActionType = "COMPLETE_FAILED"
	ActionDismissNotice     ActionType = "DISMISS_NOTICE"
)

// Direction manual navigation direction
type Direction string

// navigation directions
const (
	DirectionPrev Direction = "prev"
	DirectionNext Direction = "next"
)

// Action message fed to Reduce
type Action struct {
	Type      ActionType
	LessonID  string
	Direction Direction
}

// Reduce apply action to state and return the next state.
//
// Reduce never fails: actions that do not apply are no-ops. While inputs are
// not ready every action is deferred.
func Reduce(s State, in Inputs, a Action, opts Options) State {
	if !in.Ready() {
		return s
	}
	if a.Type == ActionInitialize {
		return initialize(s, in)
	}
	if !s.Initialized() {
		return s
	}
	s = repair(s, in)

	switch a.Type {
	case ActionSelectLesson:
		return selectLesson(s, in, a.LessonID)
	case ActionNavigate:
		return navigate(s, in, a.Direction, opts)
	case ActionCompleteStarted:
		if CanComplete(s, in) {
			s.Pending = s.Current
			s.Notice = ""
		}
	case ActionCompleteSucceeded:
		return completeSucceeded(s, in, a.LessonID)
	case ActionCompleteFailed:
		if s.Pending == a.LessonID {
			s.Pending = ""
		}
		s.Notice = NoticeSaveFailed
	case ActionDismissNotice:
		s.Notice = ""
	}
	return s
}

// CanComplete whether "mark complete" is allowed for the current lesson
func CanComplete(s State, in Inputs) bool {
	return s.Current != "" && s.Pending == "" && !in.Completed.Has(s.Current)
}

func initialize(s State, in Inputs) State {
	if s.Initialized() {
		return repair(s, in)
	}
	s.Phase = PhaseInitialized
	s.Current, _ = ResolveStart(in.Sequence, in.Completed)
	return s
}

// repair re-resolves the pointer when the curriculum does not contain it,
// including a session started while the curriculum was still empty
func repair(s State, in Inputs) State {
	if IndexOf(in.Sequence, s.Current) >= 0 {
		return s
	}
	if s.Current == "" && len(in.Sequence) == 0 {
		return s
	}
	s.Current, _ = ResolveStart(in.Sequence, in.Completed)
	if IndexOf(in.Sequence, s.Pending) < 0 {
		s.Pending = ""
	}
	return s
}

func selectLesson(s State, in Inputs, id string) State {
	idx := IndexOf(in.Sequence, id)
	if idx < 0 {
		return s
	}
	if !Classify(in.Sequence, idx, in.Completed, s.Current).Clickable() {
		return s
	}
	s.Current = id
	return s
}

func navigate(s State, in Inputs, dir Direction, opts Options) State {
	target, ok := neighbour(s, in, dir, opts)
	if ok {
		s.Current = in.Sequence[target].ID
	}
	return s
}

// neighbour index reachable from the current lesson in direction dir
func neighbour(s State, in Inputs, dir Direction, opts Options) (int, bool) {
	idx := IndexOf(in.Sequence, s.Current)
	if idx < 0 {
		return 0, false
	}
	var target int
	switch dir {
	case DirectionPrev:
		target = idx - 1
	case DirectionNext:
		target = idx + 1
	default:
		return 0, false
	}
	if target < 0 || target >= len(in.Sequence) || in.Sequence[target].ID == "" {
		return 0, false
	}
	if opts.GateNavigation && !Classify(in.Sequence, target, in.Completed, s.Current).Clickable() {
		return 0, false
	}
	return target, true
}

func completeSucceeded(s State, in Inputs, id string) State {
	if s.Pending == id {
		s.Pending = ""
	}
	s.Notice = ""
	// the learner may have moved on while the request was in flight
	if s.Current != id {
		return s
	}
	idx := IndexOf(in.Sequence, id)
	if idx >= 0 && idx+1 < len(in.Sequence) && in.Sequence[idx+1].ID != "" {
		s.Current = in.Sequence[idx+1].ID
	}
	return s
}
