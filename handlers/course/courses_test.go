package course_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	course_handlers "github.com/arvind9018/edusource-backend/handlers/course"
	"github.com/arvind9018/edusource-backend/model"
	"github.com/arvind9018/edusource-backend/services"
)

// fakeStorage is an in-memory database.Storage for handler tests
type fakeStorage struct {
	courses  map[string]*model.Course
	enrolled map[string]bool
}

func newFakeStorage(courses ...*model.Course) *fakeStorage {
	s := &fakeStorage{
		courses:  make(map[string]*model.Course),
		enrolled: make(map[string]bool),
	}
	for _, c := range courses {
		s.courses[c.ID] = c
	}
	return s
}

func (f *fakeStorage) Init() error        { return nil }
func (f *fakeStorage) Close() error       { return nil }
func (f *fakeStorage) HealthCheck() error { return nil }
func (f *fakeStorage) GetDB() interface{} { return nil }

func (f *fakeStorage) GetCourse(ctx context.Context, courseID string) (*model.Course, error) {
	course, ok := f.courses[courseID]
	if !ok {
		return nil, services.ErrCourseNotFound
	}
	return course, nil
}

func (f *fakeStorage) IsEnrolled(ctx context.Context, courseID, userID string) (bool, error) {
	return f.enrolled[courseID+"|"+userID], nil
}

func (f *fakeStorage) Enroll(ctx context.Context, record *model.EnrollmentRecord) error {
	f.enrolled[record.CourseID+"|"+record.UserID] = true
	return nil
}

func (f *fakeStorage) ListCourses(ctx context.Context, limit, offset int) ([]model.Course, int64, error) {
	var out []model.Course
	for _, c := range f.courses {
		out = append(out, *c)
	}
	return out, int64(len(f.courses)), nil
}

func newCourseApp(store *fakeStorage) *fiber.App {
	handler := course_handlers.NewCourseHandler(store, nil, nil)

	app := fiber.New()
	app.Get("/api/v1/courses", handler.ListCourses)
	app.Get("/api/v1/courses/:id", handler.GetCourse)
	app.Get("/api/v1/courses/:id/content", handler.GetCourseContent)
	return app
}

func getJSON(t *testing.T, app *fiber.App, path string) (int, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest("GET", path, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var decoded map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp.StatusCode, decoded
}

func paidCourse() *model.Course {
	return &model.Course{
		ID:         "c1",
		Title:      "Go from Scratch",
		Price:      499900,
		Currency:   "INR",
		ContentKey: "courses/c1/content.zip",
	}
}

func TestGetCourseContentRequiresUserID(t *testing.T) {
	app := newCourseApp(newFakeStorage(paidCourse()))

	status, body := getJSON(t, app, "/api/v1/courses/c1/content")
	if status != fiber.StatusBadRequest {
		t.Errorf("expected 400 without userId, got %d", status)
	}
	if body["success"] != false {
		t.Errorf("expected success false, got %v", body["success"])
	}
}

func TestGetCourseContentUnknownCourse(t *testing.T) {
	app := newCourseApp(newFakeStorage())

	status, _ := getJSON(t, app, "/api/v1/courses/ghost/content?userId=u1")
	if status != fiber.StatusNotFound {
		t.Errorf("expected 404 for unknown course, got %d", status)
	}
}

func TestGetCourseContentRejectsUnenrolledUser(t *testing.T) {
	store := newFakeStorage(paidCourse())
	store.enrolled["c1|someone-else"] = true
	app := newCourseApp(store)

	status, body := getJSON(t, app, "/api/v1/courses/c1/content?userId=u1")
	if status != fiber.StatusForbidden {
		t.Errorf("expected 403 for unenrolled user, got %d", status)
	}
	errDetail, _ := body["error"].(map[string]interface{})
	if errDetail == nil || errDetail["message"] != "User is not enrolled in this course" {
		t.Errorf("unexpected error body: %v", body)
	}
}

func TestGetCourseContentEnrolledWithoutStorageBackend(t *testing.T) {
	// An enrolled user on an app without a configured Spaces client
	// must get a 404, never a leaked URL or a 500.
	store := newFakeStorage(paidCourse())
	store.enrolled["c1|u1"] = true
	app := newCourseApp(store)

	status, _ := getJSON(t, app, "/api/v1/courses/c1/content?userId=u1")
	if status != fiber.StatusNotFound {
		t.Errorf("expected 404 when no content backend is configured, got %d", status)
	}
}

func TestGetCourseByID(t *testing.T) {
	app := newCourseApp(newFakeStorage(paidCourse()))

	status, body := getJSON(t, app, "/api/v1/courses/c1")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	data, _ := body["data"].(map[string]interface{})
	if data == nil || data["title"] != "Go from Scratch" {
		t.Errorf("unexpected course body: %v", body)
	}
}

func TestGetCourseNotFound(t *testing.T) {
	app := newCourseApp(newFakeStorage())

	status, _ := getJSON(t, app, "/api/v1/courses/ghost")
	if status != fiber.StatusNotFound {
		t.Errorf("expected 404, got %d", status)
	}
}

func TestListCourses(t *testing.T) {
	app := newCourseApp(newFakeStorage(paidCourse()))

	status, body := getJSON(t, app, "/api/v1/courses")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	pagination, _ := body["pagination"].(map[string]interface{})
	if pagination == nil || pagination["total"].(float64) != 1 {
		t.Errorf("unexpected pagination: %v", body)
	}
}
