package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-api/internal/grading"
	"github.com/noah-isme/campus-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username, role string) models.User {
	t.Helper()
	user := models.User{Username: username, Email: username + "@example.com", Role: role, PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createCourse(t *testing.T, db *gorm.DB, code, section string, teacherID uint) models.Course {
	t.Helper()
	course := models.Course{Name: code + " course", Code: code, Section: section, Description: "desc", TeacherID: &teacherID}
	require.NoError(t, db.Omit("Teacher").Create(&course).Error)
	return course
}

func TestUserRepositoryLookups(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice", models.RoleStudent)
	bob := createUser(t, db, "bob", models.RoleStudent)

	found, err := repo.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, alice.ID, found.ID)

	exists, err := repo.ExistsByEmailOrUsername(ctx, "nobody@example.com", "alice")
	require.NoError(t, err)
	require.True(t, exists)

	taken, err := repo.EmailTakenByOther(ctx, "bob@example.com", alice.ID)
	require.NoError(t, err)
	require.True(t, taken)

	taken, err = repo.EmailTakenByOther(ctx, "bob@example.com", bob.ID)
	require.NoError(t, err)
	require.False(t, taken)

	duplicate := models.User{Username: "alice", Email: "other@example.com", Role: models.RoleStudent, PasswordHash: "x"}
	require.True(t, IsDuplicate(repo.Create(ctx, &duplicate)))

	_, err = repo.FindByID(ctx, 999)
	require.True(t, IsNotFound(err))
}

func TestCourseRepositoryEnrollment(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCourseRepository(db)
	ctx := context.Background()

	teacher := createUser(t, db, "teacher", models.RoleTeacher)
	student := createUser(t, db, "student", models.RoleStudent)
	cs101 := createCourse(t, db, "CS101", "A", teacher.ID)
	createCourse(t, db, "CS101", "B", teacher.ID)
	math := createCourse(t, db, "MATH1", "A", teacher.ID)

	sections, err := repo.SectionsForCode(ctx, "CS101")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"A", "B"}, sections)

	require.NoError(t, repo.Enroll(ctx, &models.Enrollment{StudentID: student.ID, CourseID: cs101.ID}))
	require.True(t, IsDuplicate(repo.Enroll(ctx, &models.Enrollment{StudentID: student.ID, CourseID: cs101.ID})))

	enrolled, err := repo.IsEnrolled(ctx, student.ID, cs101.ID)
	require.NoError(t, err)
	require.True(t, enrolled)

	mine, err := repo.ListByStudent(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, cs101.ID, mine[0].ID)
	require.NotNil(t, mine[0].Teacher)
	require.Equal(t, "teacher", mine[0].Teacher.Username)

	students, err := repo.EnrolledStudents(ctx, cs101.ID)
	require.NoError(t, err)
	require.Len(t, students, 1)

	students, err = repo.EnrolledStudents(ctx, math.ID)
	require.NoError(t, err)
	require.Empty(t, students)

	require.NoError(t, repo.Unenroll(ctx, student.ID, cs101.ID))
	require.NoError(t, repo.Unenroll(ctx, student.ID, cs101.ID))

	enrolled, err = repo.IsEnrolled(ctx, student.ID, cs101.ID)
	require.NoError(t, err)
	require.False(t, enrolled)

	taught, err := repo.ListByTeacher(ctx, teacher.ID)
	require.NoError(t, err)
	require.Len(t, taught, 3)
}

func TestTeacherAssignmentRepositoryUniqueness(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTeacherAssignmentRepository(db)
	ctx := context.Background()

	teacher := createUser(t, db, "t1", models.RoleTeacher)
	other := createUser(t, db, "t2", models.RoleTeacher)
	student := createUser(t, db, "s1", models.RoleStudent)
	course := createCourse(t, db, "CS101", "A", teacher.ID)

	first := models.TeacherAssignment{TeacherID: teacher.ID, StudentID: student.ID, CourseID: course.ID, DayOfWeek: "Monday", TimeSlot: "08:00 - 09:00"}
	require.NoError(t, repo.Create(ctx, &first))

	sameTriple := models.TeacherAssignment{TeacherID: teacher.ID, StudentID: student.ID, CourseID: course.ID, DayOfWeek: "Monday", TimeSlot: "09:00 - 10:00"}
	require.True(t, IsDuplicate(repo.Create(ctx, &sameTriple)))

	sameSlot := models.TeacherAssignment{TeacherID: other.ID, StudentID: student.ID, CourseID: course.ID, DayOfWeek: "Monday", TimeSlot: "08:00 - 09:00"}
	require.True(t, IsDuplicate(repo.Create(ctx, &sameSlot)))

	exists, err := repo.Exists(ctx, teacher.ID, student.ID, course.ID)
	require.NoError(t, err)
	require.True(t, exists)

	list, err := repo.ListByStudent(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "t1", list[0].Teacher.Username)

	ids, err := repo.StudentIDsForTeacher(ctx, teacher.ID, course.ID)
	require.NoError(t, err)
	require.Equal(t, []uint{student.ID}, ids)

	teacherIDs, err := repo.TeacherIDsForStudent(ctx, student.ID, course.ID)
	require.NoError(t, err)
	require.Equal(t, []uint{teacher.ID}, teacherIDs)

	removed, err := repo.Delete(ctx, teacher.ID, student.ID, course.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	removed, err = repo.Delete(ctx, teacher.ID, student.ID, course.ID)
	require.NoError(t, err)
	require.Zero(t, removed)
}

func TestNoteRepositorySharedNotes(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNoteRepository(db)
	ctx := context.Background()

	teacher := createUser(t, db, "teacher", models.RoleTeacher)
	stranger := createUser(t, db, "stranger", models.RoleTeacher)
	course := createCourse(t, db, "CS101", "A", teacher.ID)

	shared := models.Note{Title: "Week 1", Content: "intro", AuthorID: teacher.ID, CourseID: course.ID, IsShared: true, SharedWith: datatypes.NewJSONSlice([]uint{7, 8})}
	private := models.Note{Title: "Draft", Content: "todo", AuthorID: teacher.ID, CourseID: course.ID}
	foreign := models.Note{Title: "Other", Content: "x", AuthorID: stranger.ID, CourseID: course.ID, IsShared: true}
	for _, note := range []*models.Note{&shared, &private, &foreign} {
		require.NoError(t, repo.Create(ctx, note))
	}

	notes, err := repo.ListSharedByAuthors(ctx, course.ID, []uint{teacher.ID})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.Equal(t, "Week 1", notes[0].Title)
	require.Equal(t, []uint{7, 8}, []uint(notes[0].SharedWith))
	require.Equal(t, "teacher", notes[0].Author.Username)

	notes, err = repo.ListSharedByAuthors(ctx, course.ID, nil)
	require.NoError(t, err)
	require.Empty(t, notes)

	own, err := repo.ListByAuthor(ctx, teacher.ID, course.ID, false)
	require.NoError(t, err)
	require.Len(t, own, 2)

	own, err = repo.ListByAuthor(ctx, teacher.ID, course.ID, true)
	require.NoError(t, err)
	require.Len(t, own, 1)

	_, err = repo.FindForAuthor(ctx, shared.ID, stranger.ID)
	require.True(t, IsNotFound(err))
	require.True(t, IsNotFound(repo.DeleteForAuthor(ctx, shared.ID, stranger.ID)))
	require.NoError(t, repo.DeleteForAuthor(ctx, shared.ID, teacher.ID))
}

func TestAssignmentRepositoryPersistsQuestionsAndCascades(t *testing.T) {
	db := setupTestDB(t)
	assignments := NewAssignmentRepository(db)
	submissions := NewSubmissionRepository(db)
	ctx := context.Background()

	teacher := createUser(t, db, "teacher", models.RoleTeacher)
	student := createUser(t, db, "student", models.RoleStudent)
	course := createCourse(t, db, "CS101", "A", teacher.ID)

	quiz := models.Assignment{
		Title:     "Quiz 1",
		CourseID:  course.ID,
		TeacherID: teacher.ID,
		Type:      models.AssignmentTypeQuiz,
		Deadline:  time.Now().Add(time.Hour).UTC(),
		TotalTime: 30,
		Questions: datatypes.NewJSONSlice([]grading.Question{
			{Text: "Pair", Type: grading.QuestionTypeMatchColumn, MatchPairs: []grading.MatchPair{{Left: "A", Right: "1"}}, Points: 1},
		}),
	}
	require.NoError(t, assignments.Create(ctx, &quiz))

	loaded, err := assignments.GetByID(ctx, quiz.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Questions, 1)
	require.Equal(t, grading.QuestionTypeMatchColumn, loaded.Questions[0].Type)
	require.Equal(t, []grading.MatchPair{{Left: "A", Right: "1"}}, loaded.Questions[0].MatchPairs)

	submission := models.Submission{
		AssignmentID: quiz.ID,
		StudentID:    student.ID,
		Answers:      datatypes.NewJSONSlice([]grading.GradedAnswer{{Answer: grading.Answer{QuestionIndex: 0, Answer: "x"}}}),
		Status:       string(grading.StatusOnTime),
		SubmittedAt:  time.Now(),
	}
	require.NoError(t, submissions.Create(ctx, &submission))

	again := submission
	again.ID = 0
	require.True(t, IsDuplicate(submissions.Create(ctx, &again)))

	exists, err := submissions.Exists(ctx, quiz.ID, student.ID)
	require.NoError(t, err)
	require.True(t, exists)

	listed, err := submissions.ListByAssignment(ctx, quiz.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "student", listed[0].Student.Username)

	require.True(t, IsNotFound(assignments.DeleteForTeacher(ctx, quiz.ID, student.ID)))
	require.NoError(t, assignments.DeleteForTeacher(ctx, quiz.ID, teacher.ID))

	exists, err = submissions.Exists(ctx, quiz.ID, student.ID)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestNotificationRepositoryUnreadFlow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &models.Notification{UserID: 1, Type: "info", Message: "hello"}))
	}
	require.NoError(t, repo.Create(ctx, &models.Notification{UserID: 2, Type: "info", Message: "other"}))

	items, total, err := repo.ListByUser(ctx, 1, false, 2, 0)
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, items, 2)

	marked, err := repo.MarkRead(ctx, items[0].ID, 1)
	require.NoError(t, err)
	require.True(t, marked.Read)

	_, err = repo.MarkRead(ctx, items[0].ID, 2)
	require.True(t, IsNotFound(err))

	unread, err := repo.CountUnread(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(2), unread)

	updated, err := repo.MarkAllRead(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(2), updated)

	_, total, err = repo.ListByUser(ctx, 1, true, 10, 0)
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestActivityLogRepositoryFiltersAndPages(t *testing.T) {
	db := setupTestDB(t)
	repo := NewActivityLogRepository(db)
	ctx := context.Background()

	stamp := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, action := range []string{"course.created", "student.assigned", "student.assigned"} {
		require.NoError(t, repo.Create(ctx, &models.ActivityLog{
			ActorID:    1,
			ActorRole:  models.RoleTeacher,
			Action:     action,
			EntityType: "course",
			Metadata:   datatypes.JSONMap{"seq": i},
			CreatedAt:  stamp,
		}))
	}
	require.NoError(t, repo.Create(ctx, &models.ActivityLog{ActorID: 2, ActorRole: models.RoleTeacher, Action: "note.shared", EntityType: "note"}))

	actor := uint(1)
	entries, total, err := repo.List(ctx, ActivityLogFilter{ActorID: &actor, Action: "student.assigned", Page: 1, PageSize: 1})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, entries, 1)
	require.Equal(t, uint(3), entries[0].ID)

	entries, _, err = repo.List(ctx, ActivityLogFilter{ActorID: &actor, Action: "student.assigned", Page: 2, PageSize: 1})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, uint(2), entries[0].ID)

	entries, total, err = repo.List(ctx, ActivityLogFilter{EntityType: "note"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, uint(2), entries[0].ActorID)
}

func TestUploadRepositoryFindByChecksumIsPerUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUploadRepository(db)
	ctx := context.Background()

	owner := uint(7)
	require.NoError(t, repo.Create(ctx, &models.UploadRecord{UserID: &owner, FileName: "syllabus.pdf", URL: "https://cdn.example.com/syllabus.pdf", MimeType: "application/pdf", SizeBytes: 10, Checksum: "abc"}))

	found, err := repo.FindByChecksum(ctx, owner, "abc")
	require.NoError(t, err)
	require.Equal(t, "syllabus.pdf", found.FileName)

	_, err = repo.FindByChecksum(ctx, 8, "abc")
	require.True(t, IsNotFound(err))
}
