package course

import (
	"context"
	"time"

	"github.com/pot-code/course-player/internal/domain"
	"github.com/pot-code/course-player/internal/infrastructure/driver"
	"github.com/pot-code/course-player/internal/infrastructure/uuid"
)

// ProgressSQL lesson completions stored in the lesson_completion table
type ProgressSQL struct {
	Conn          driver.ITransactionalDB `dep:""`
	UUIDGenerator uuid.Generator
}

var _ domain.ProgressRepository = &ProgressSQL{}

func NewProgressRepository(Conn driver.ITransactionalDB, UUIDGenerator uuid.Generator) *ProgressSQL {
	return &ProgressSQL{Conn, UUIDGenerator}
}

func (repo *ProgressSQL) GetCompletedLessons(ctx context.Context, learner *domain.LearnerModel, courseID string) (domain.LessonSet, error) {
	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, `
SELECT
    lc.lesson_id
FROM
    lesson_completion lc
WHERE
    lc.user_id = $1 AND lc.course_id = $2
	`, learner.ID, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := domain.NewLessonSet()
	for rows.Next() {
		var lessonID string
		if err := rows.Scan(&lessonID); err != nil {
			return nil, err
		}
		result.Add(lessonID)
	}
	return result, nil
}

// MarkLessonComplete insert a completion row, completing twice is not an error
func (repo *ProgressSQL) MarkLessonComplete(ctx context.Context, learner *domain.LearnerModel, courseID, lessonID string) error {
	conn := repo.Conn
	// generate id
	id, err := repo.UUIDGenerator.Generate()
	if err != nil {
		return err
	}

	_, err = conn.ExecContext(ctx, `INSERT INTO lesson_completion(id, user_id, course_id, lesson_id, completed_at)
	VALUES($1,$2,$3,$4,$5)`, id, learner.ID, courseID, lessonID, time.Now().UTC())
	if driver.IsMySQLDuplicateKey(err) || driver.IsPGDuplicateKey(err) {
		return nil
	}
	return err
}
