package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/testing-service/internal/models"
	"github.com/SAP-F-2025/testing-service/internal/repositories"
)

type edge struct {
	left, right uint
}

// fakeState is the whole in-memory database. It is copied on transaction
// start so a failing transaction can be rolled back.
type fakeState struct {
	nextID uint

	teachers        map[uint]models.Teacher
	students        map[uint]models.Student
	teacherStudents map[edge]time.Time
	teacherTests    map[edge]time.Time
	tests           map[uint]models.Test
	questions       map[uint]models.Question
	options         map[uint]models.Option
	results         map[uint]models.TestResult
}

func newFakeState() fakeState {
	return fakeState{
		teachers:        map[uint]models.Teacher{},
		students:        map[uint]models.Student{},
		teacherStudents: map[edge]time.Time{},
		teacherTests:    map[edge]time.Time{},
		tests:           map[uint]models.Test{},
		questions:       map[uint]models.Question{},
		options:         map[uint]models.Option{},
		results:         map[uint]models.TestResult{},
	}
}

func (s fakeState) clone() fakeState {
	c := newFakeState()
	c.nextID = s.nextID
	for k, v := range s.teachers {
		c.teachers[k] = v
	}
	for k, v := range s.students {
		c.students[k] = v
	}
	for k, v := range s.teacherStudents {
		c.teacherStudents[k] = v
	}
	for k, v := range s.teacherTests {
		c.teacherTests[k] = v
	}
	for k, v := range s.tests {
		c.tests[k] = v
	}
	for k, v := range s.questions {
		c.questions[k] = v
	}
	for k, v := range s.options {
		c.options[k] = v
	}
	for k, v := range s.results {
		c.results[k] = v
	}
	return c
}

// fakeRepository mimics the postgres repository. Transactions run one at a
// time, so races are covered by the postgres integration suite instead.
// Constraints are enforced and failed transactions roll back.
type fakeRepository struct {
	txMu sync.Mutex
	mu   sync.Mutex
	data fakeState

	users   map[string]*models.User
	userErr error

	// hideResults makes the in-transaction existence check miss, as a
	// concurrent submit that has not committed yet would
	hideResults bool
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		data:  newFakeState(),
		users: map[string]*models.User{},
	}
}

func (f *fakeRepository) id() uint {
	f.data.nextID++
	return f.data.nextID
}

// ===== seeding =====

func (f *fakeRepository) addTeacher(userID string) *models.Teacher {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := models.Teacher{ID: f.id(), UserID: userID, JoinedAt: time.Now()}
	f.data.teachers[t.ID] = t
	return &t
}

func (f *fakeRepository) addStudent(userID string) *models.Student {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := models.Student{ID: f.id(), UserID: userID, EnrolledAt: time.Now()}
	f.data.students[s.ID] = s
	return &s
}

func (f *fakeRepository) addUser(id, name, email string) {
	f.users[id] = &models.User{ID: id, FullName: name, Email: email}
}

func (f *fakeRepository) maxScore(testID uint) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data.tests[testID].MaxScore
}

func (f *fakeRepository) resultCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.data.results)
}

// ===== Repository =====

func (f *fakeRepository) Teacher() repositories.TeacherRepository       { return fakeTeachers{f} }
func (f *fakeRepository) Student() repositories.StudentRepository       { return fakeStudents{f} }
func (f *fakeRepository) Assignment() repositories.AssignmentRepository { return fakeAssignments{f} }
func (f *fakeRepository) Test() repositories.TestRepository             { return fakeTests{f} }
func (f *fakeRepository) Question() repositories.QuestionRepository     { return fakeQuestions{f} }
func (f *fakeRepository) Option() repositories.OptionRepository         { return fakeOptions{f} }
func (f *fakeRepository) Result() repositories.ResultRepository         { return fakeResults{f} }
func (f *fakeRepository) Dashboard() repositories.DashboardRepository   { return fakeDashboard{f} }
func (f *fakeRepository) User() repositories.UserRepository             { return fakeUsers{f} }

func (f *fakeRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	f.txMu.Lock()
	defer f.txMu.Unlock()

	f.mu.Lock()
	snapshot := f.data.clone()
	f.mu.Unlock()

	if err := fn(f); err != nil {
		f.mu.Lock()
		f.data = snapshot
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeRepository) Ping(ctx context.Context) error { return nil }
func (f *fakeRepository) Close() error                   { return nil }

// ===== profiles =====

type fakeTeachers struct{ f *fakeRepository }

func (r fakeTeachers) Create(ctx context.Context, tx *gorm.DB, teacher *models.Teacher) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, t := range r.f.data.teachers {
		if t.UserID == teacher.UserID {
			return repositories.ErrDuplicate
		}
	}
	teacher.ID = r.f.id()
	teacher.JoinedAt = time.Now()
	r.f.data.teachers[teacher.ID] = *teacher
	return nil
}

func (r fakeTeachers) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Teacher, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	t, ok := r.f.data.teachers[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &t, nil
}

func (r fakeTeachers) GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*models.Teacher, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, t := range r.f.data.teachers {
		if t.UserID == userID {
			return &t, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r fakeTeachers) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.data.teachers[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.f.data.teachers, id)
	for e := range r.f.data.teacherStudents {
		if e.left == id {
			delete(r.f.data.teacherStudents, e)
		}
	}
	for e := range r.f.data.teacherTests {
		if e.left == id {
			delete(r.f.data.teacherTests, e)
		}
	}
	return nil
}

type fakeStudents struct{ f *fakeRepository }

func (r fakeStudents) Create(ctx context.Context, tx *gorm.DB, student *models.Student) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, s := range r.f.data.students {
		if s.UserID == student.UserID {
			return repositories.ErrDuplicate
		}
	}
	student.ID = r.f.id()
	student.EnrolledAt = time.Now()
	r.f.data.students[student.ID] = *student
	return nil
}

func (r fakeStudents) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Student, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	s, ok := r.f.data.students[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &s, nil
}

func (r fakeStudents) GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*models.Student, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, s := range r.f.data.students {
		if s.UserID == userID {
			return &s, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r fakeStudents) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.data.students[id]; !ok {
		return repositories.ErrNotFound
	}
	for _, res := range r.f.data.results {
		if res.StudentID == id {
			return repositories.ErrForeignKey
		}
	}
	delete(r.f.data.students, id)
	for e := range r.f.data.teacherStudents {
		if e.right == id {
			delete(r.f.data.teacherStudents, e)
		}
	}
	return nil
}

func (r fakeStudents) ListExcluding(ctx context.Context, tx *gorm.DB, excludeIDs []uint) ([]*models.Student, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	excluded := make(map[uint]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}
	students := make([]*models.Student, 0)
	for _, s := range r.f.data.students {
		if !excluded[s.ID] {
			s := s
			students = append(students, &s)
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students, nil
}

// ===== graph =====

type fakeAssignments struct{ f *fakeRepository }

func (r fakeAssignments) LinkStudent(ctx context.Context, tx *gorm.DB, teacherID, studentID uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.data.teachers[teacherID]; !ok {
		return repositories.ErrForeignKey
	}
	if _, ok := r.f.data.students[studentID]; !ok {
		return repositories.ErrForeignKey
	}
	e := edge{teacherID, studentID}
	if _, ok := r.f.data.teacherStudents[e]; !ok {
		r.f.data.teacherStudents[e] = time.Now()
	}
	return nil
}

func (r fakeAssignments) UnlinkStudent(ctx context.Context, tx *gorm.DB, teacherID, studentID uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	delete(r.f.data.teacherStudents, edge{teacherID, studentID})
	return nil
}

func (r fakeAssignments) StudentIDsOf(ctx context.Context, tx *gorm.DB, teacherID uint) ([]uint, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	ids := make([]uint, 0)
	for e := range r.f.data.teacherStudents {
		if e.left == teacherID {
			ids = append(ids, e.right)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r fakeAssignments) StudentsOf(ctx context.Context, tx *gorm.DB, teacherID uint) ([]repositories.StudentLinkRow, error) {
	ids, _ := r.StudentIDsOf(ctx, tx, teacherID)

	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	rows := make([]repositories.StudentLinkRow, 0, len(ids))
	for _, id := range ids {
		s := r.f.data.students[id]
		row := repositories.StudentLinkRow{StudentID: s.ID, UserID: s.UserID, EnrolledAt: s.EnrolledAt}
		total := 0
		for _, res := range r.f.data.results {
			if res.StudentID == id {
				row.TestsPassed++
				total += res.Score
			}
		}
		if row.TestsPassed > 0 {
			avg := float64(total) / float64(row.TestsPassed)
			row.AverageScore = &avg
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r fakeAssignments) TeachersOf(ctx context.Context, tx *gorm.DB, studentID uint) ([]repositories.TeacherLinkRow, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	rows := make([]repositories.TeacherLinkRow, 0)
	for e := range r.f.data.teacherStudents {
		if e.right != studentID {
			continue
		}
		t := r.f.data.teachers[e.left]
		row := repositories.TeacherLinkRow{TeacherID: t.ID, UserID: t.UserID, JoinedAt: t.JoinedAt}
		for te := range r.f.data.teacherTests {
			if te.left == t.ID {
				row.TestsCount++
			}
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].TeacherID < rows[j].TeacherID })
	return rows, nil
}

func (r fakeAssignments) LinkTest(ctx context.Context, tx *gorm.DB, teacherID, testID uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.data.tests[testID]; !ok {
		return repositories.ErrForeignKey
	}
	e := edge{teacherID, testID}
	if _, ok := r.f.data.teacherTests[e]; !ok {
		r.f.data.teacherTests[e] = time.Now()
	}
	return nil
}

func (r fakeAssignments) IsTestOwner(ctx context.Context, tx *gorm.DB, teacherID, testID uint) (bool, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	_, ok := r.f.data.teacherTests[edge{teacherID, testID}]
	return ok, nil
}

func (r fakeAssignments) SharesTeacher(ctx context.Context, tx *gorm.DB, studentID, testID uint) (bool, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for e := range r.f.data.teacherTests {
		if e.right != testID {
			continue
		}
		if _, ok := r.f.data.teacherStudents[edge{e.left, studentID}]; ok {
			return true, nil
		}
	}
	return false, nil
}

// ===== authoring =====

type fakeTests struct{ f *fakeRepository }

func (r fakeTests) Create(ctx context.Context, tx *gorm.DB, test *models.Test) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	test.ID = r.f.id()
	test.CreatedAt = time.Now()
	stored := *test
	stored.Questions = nil
	r.f.data.tests[test.ID] = stored
	return nil
}

func (r fakeTests) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	t, ok := r.f.data.tests[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &t, nil
}

func (r fakeTests) GetWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	t, ok := r.f.data.tests[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	t.Questions = r.f.questionsOf(id)
	return &t, nil
}

// questionsOf returns the test's questions with options, both by id. Caller
// holds mu.
func (f *fakeRepository) questionsOf(testID uint) []models.Question {
	questions := make([]models.Question, 0)
	for _, q := range f.data.questions {
		if q.TestID != testID {
			continue
		}
		q.Options = make([]models.Option, 0)
		for _, o := range f.data.options {
			if o.QuestionID == q.ID {
				q.Options = append(q.Options, o)
			}
		}
		sort.Slice(q.Options, func(i, j int) bool { return q.Options[i].ID < q.Options[j].ID })
		questions = append(questions, q)
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].ID < questions[j].ID })
	return questions
}

func (r fakeTests) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.data.tests[id]; !ok {
		return repositories.ErrNotFound
	}
	for _, res := range r.f.data.results {
		if res.TestID == id {
			return repositories.ErrForeignKey
		}
	}
	delete(r.f.data.tests, id)
	for qid, q := range r.f.data.questions {
		if q.TestID != id {
			continue
		}
		delete(r.f.data.questions, qid)
		for oid, o := range r.f.data.options {
			if o.QuestionID == qid {
				delete(r.f.data.options, oid)
			}
		}
	}
	for e := range r.f.data.teacherTests {
		if e.right == id {
			delete(r.f.data.teacherTests, e)
		}
	}
	return nil
}

func (r fakeTests) LockForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Test, error) {
	return r.GetByID(ctx, tx, id)
}

func (r fakeTests) RecomputeMaxScore(ctx context.Context, tx *gorm.DB, id uint) (int, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	t, ok := r.f.data.tests[id]
	if !ok {
		return 0, repositories.ErrNotFound
	}
	t.MaxScore = models.SumPoints(r.f.questionsOf(id))
	r.f.data.tests[id] = t
	return t.MaxScore, nil
}

func (r fakeTests) ListByTeacher(ctx context.Context, tx *gorm.DB, teacherID uint) ([]repositories.TestSummaryRow, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	rows := make([]repositories.TestSummaryRow, 0)
	for e := range r.f.data.teacherTests {
		if e.left != teacherID {
			continue
		}
		t := r.f.data.tests[e.right]
		rows = append(rows, repositories.TestSummaryRow{
			TestID:         t.ID,
			Title:          t.Title,
			Description:    t.Description,
			CreatedAt:      t.CreatedAt,
			MaxScore:       t.MaxScore,
			QuestionsCount: int64(len(r.f.questionsOf(t.ID))),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].TestID < rows[j].TestID })
	return rows, nil
}

func (r fakeTests) ListAvailableForStudent(ctx context.Context, tx *gorm.DB, studentID uint) ([]repositories.AvailableTestRow, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	byTest := map[uint]repositories.AvailableTestRow{}
	owner := map[uint]uint{}
	for e := range r.f.data.teacherTests {
		if _, linked := r.f.data.teacherStudents[edge{e.left, studentID}]; !linked {
			continue
		}
		if prev, seen := owner[e.right]; seen && prev < e.left {
			continue
		}
		owner[e.right] = e.left
		t := r.f.data.tests[e.right]
		byTest[t.ID] = repositories.AvailableTestRow{
			TestID:         t.ID,
			Title:          t.Title,
			MaxScore:       t.MaxScore,
			QuestionsCount: int64(len(r.f.questionsOf(t.ID))),
			TeacherUserID:  r.f.data.teachers[e.left].UserID,
		}
	}
	rows := make([]repositories.AvailableTestRow, 0, len(byTest))
	for _, row := range byTest {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].TestID < rows[j].TestID })
	return rows, nil
}

type fakeQuestions struct{ f *fakeRepository }

func (r fakeQuestions) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.data.tests[question.TestID]; !ok {
		return repositories.ErrForeignKey
	}
	question.ID = r.f.id()
	stored := *question
	stored.Options = nil
	r.f.data.questions[question.ID] = stored
	return nil
}

func (r fakeQuestions) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	q, ok := r.f.data.questions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &q, nil
}

func (r fakeQuestions) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.data.questions[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.f.data.questions, id)
	for oid, o := range r.f.data.options {
		if o.QuestionID == id {
			delete(r.f.data.options, oid)
		}
	}
	return nil
}

type fakeOptions struct{ f *fakeRepository }

func (r fakeOptions) Create(ctx context.Context, tx *gorm.DB, option *models.Option) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.data.questions[option.QuestionID]; !ok {
		return repositories.ErrForeignKey
	}
	option.ID = r.f.id()
	r.f.data.options[option.ID] = *option
	return nil
}

func (r fakeOptions) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Option, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	o, ok := r.f.data.options[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &o, nil
}

func (r fakeOptions) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.data.options[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.f.data.options, id)
	return nil
}

// ===== results =====

type fakeResults struct{ f *fakeRepository }

func (r fakeResults) Create(ctx context.Context, tx *gorm.DB, result *models.TestResult) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.data.tests[result.TestID]; !ok {
		return repositories.ErrForeignKey
	}
	if _, ok := r.f.data.students[result.StudentID]; !ok {
		return repositories.ErrForeignKey
	}
	for _, res := range r.f.data.results {
		if res.StudentID == result.StudentID && res.TestID == result.TestID {
			return repositories.ErrDuplicate
		}
	}
	result.ID = r.f.id()
	r.f.data.results[result.ID] = *result
	return nil
}

func (r fakeResults) GetByStudentAndTest(ctx context.Context, tx *gorm.DB, studentID, testID uint) (*models.TestResult, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if r.f.hideResults {
		return nil, repositories.ErrNotFound
	}
	for _, res := range r.f.data.results {
		if res.StudentID == studentID && res.TestID == testID {
			return &res, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r fakeResults) DeleteByStudentAndTest(ctx context.Context, tx *gorm.DB, studentID, testID uint) (bool, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for id, res := range r.f.data.results {
		if res.StudentID == studentID && res.TestID == testID {
			delete(r.f.data.results, id)
			return true, nil
		}
	}
	return false, nil
}

func (r fakeResults) CountByTest(ctx context.Context, tx *gorm.DB, testID uint) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var n int64
	for _, res := range r.f.data.results {
		if res.TestID == testID {
			n++
		}
	}
	return n, nil
}

func (r fakeResults) CountByStudent(ctx context.Context, tx *gorm.DB, studentID uint) (int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var n int64
	for _, res := range r.f.data.results {
		if res.StudentID == studentID {
			n++
		}
	}
	return n, nil
}

func (r fakeResults) CompletedTestIDs(ctx context.Context, tx *gorm.DB, studentID uint) ([]uint, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	ids := make([]uint, 0)
	for _, res := range r.f.data.results {
		if res.StudentID == studentID {
			ids = append(ids, res.TestID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r fakeResults) ListByTeacher(ctx context.Context, tx *gorm.DB, teacherID uint) ([]repositories.TeacherResultRow, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	type ordered struct {
		id  uint
		row repositories.TeacherResultRow
	}
	list := make([]ordered, 0)
	for id, res := range r.f.data.results {
		if _, owned := r.f.data.teacherTests[edge{teacherID, res.TestID}]; !owned {
			continue
		}
		t := r.f.data.tests[res.TestID]
		list = append(list, ordered{id, repositories.TeacherResultRow{
			TestID:        t.ID,
			TestTitle:     t.Title,
			MaxScore:      t.MaxScore,
			StudentID:     res.StudentID,
			StudentUserID: r.f.data.students[res.StudentID].UserID,
			Score:         res.Score,
			CompletedAt:   res.CompletedAt,
		}})
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].row.CompletedAt.Equal(list[j].row.CompletedAt) {
			return list[i].row.CompletedAt.After(list[j].row.CompletedAt)
		}
		return list[i].id > list[j].id
	})
	rows := make([]repositories.TeacherResultRow, 0, len(list))
	for _, o := range list {
		rows = append(rows, o.row)
	}
	return rows, nil
}

func (r fakeResults) ListByStudent(ctx context.Context, tx *gorm.DB, studentID uint) ([]repositories.StudentResultRow, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	rows := make([]repositories.StudentResultRow, 0)
	for _, res := range r.f.data.results {
		if res.StudentID != studentID {
			continue
		}
		t := r.f.data.tests[res.TestID]
		rows = append(rows, repositories.StudentResultRow{
			TestID:      t.ID,
			TestTitle:   t.Title,
			Score:       res.Score,
			MaxScore:    t.MaxScore,
			CompletedAt: res.CompletedAt,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CompletedAt.After(rows[j].CompletedAt) })
	return rows, nil
}

// ===== dashboard =====

type fakeDashboard struct{ f *fakeRepository }

func (r fakeDashboard) CountStudentsOfTeacher(ctx context.Context, tx *gorm.DB, teacherID uint) (int64, error) {
	ids, _ := fakeAssignments(r).StudentIDsOf(ctx, tx, teacherID)
	return int64(len(ids)), nil
}

func (r fakeDashboard) CountTestsOfTeacher(ctx context.Context, tx *gorm.DB, teacherID uint) (int64, error) {
	rows, _ := fakeTests(r).ListByTeacher(ctx, tx, teacherID)
	return int64(len(rows)), nil
}

func (r fakeDashboard) CountResultsOfTeacher(ctx context.Context, tx *gorm.DB, teacherID uint) (int64, error) {
	rows, _ := fakeResults(r).ListByTeacher(ctx, tx, teacherID)
	return int64(len(rows)), nil
}

func (r fakeDashboard) CountTeachersOfStudent(ctx context.Context, tx *gorm.DB, studentID uint) (int64, error) {
	rows, _ := fakeAssignments(r).TeachersOf(ctx, tx, studentID)
	return int64(len(rows)), nil
}

func (r fakeDashboard) CountAvailableTestsOfStudent(ctx context.Context, tx *gorm.DB, studentID uint) (int64, error) {
	rows, _ := fakeTests(r).ListAvailableForStudent(ctx, tx, studentID)
	return int64(len(rows)), nil
}

func (r fakeDashboard) CountResultsOfStudent(ctx context.Context, tx *gorm.DB, studentID uint) (int64, error) {
	return fakeResults(r).CountByStudent(ctx, tx, studentID)
}

// ===== identity =====

type fakeUsers struct{ f *fakeRepository }

func (r fakeUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	if r.f.userErr != nil {
		return nil, r.f.userErr
	}
	if u, ok := r.f.users[id]; ok {
		return u, nil
	}
	return nil, repositories.ErrNotFound
}

func (r fakeUsers) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	if r.f.userErr != nil {
		return nil, r.f.userErr
	}
	users := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.f.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

var errDirectoryDown = errors.New("directory unavailable")
