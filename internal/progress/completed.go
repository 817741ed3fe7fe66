package progress

import (
	"bytes"
	"encoding/json"

	"github.com/pot-code/course-player/internal/domain"
)

// Kind shape the completed lessons arrived in
type Kind int

// completed lesson shapes
const (
	KindIDs       Kind = iota // ["a", "b"]
	KindObjects               // [{"_id": "a"}, {"_id": "b"}]
	KindMalformed             // anything else, treated as nothing completed
)

// CompletedLessons completed lesson list as sent by the backend.
//
// Decoding never fails on a bad shape: it records KindMalformed instead so the
// player degrades to "nothing completed".
type CompletedLessons struct {
	Kind Kind
	IDs  []string
}

type lessonRef struct {
	UnderscoreID *string `json:"_id"`
	ID           *string `json:"id"`
}

// UnmarshalJSON implements json.Unmarshaler
func (cl *CompletedLessons) UnmarshalJSON(data []byte) error {
	*cl = Parse(data)
	return nil
}

// Parse classify raw JSON into one of the known shapes
func Parse(data []byte) CompletedLessons {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return CompletedLessons{Kind: KindIDs}
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err == nil {
		return CompletedLessons{Kind: KindIDs, IDs: ids}
	}

	var refs []*lessonRef
	if err := json.Unmarshal(data, &refs); err != nil {
		return CompletedLessons{Kind: KindMalformed}
	}
	ids = make([]string, 0, len(refs))
	for _, ref := range refs {
		switch {
		case ref == nil:
			return CompletedLessons{Kind: KindMalformed}
		case ref.UnderscoreID != nil:
			ids = append(ids, *ref.UnderscoreID)
		case ref.ID != nil:
			ids = append(ids, *ref.ID)
		default:
			return CompletedLessons{Kind: KindMalformed}
		}
	}
	return CompletedLessons{Kind: KindObjects, IDs: ids}
}

// Set canonical lesson set, empty for malformed input
func (cl CompletedLessons) Set() domain.LessonSet {
	if cl.Kind == KindMalformed {
		return domain.NewLessonSet()
	}
	return domain.NewLessonSet(cl.IDs...)
}
