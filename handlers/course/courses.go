package course

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/arvind9018/edusource-backend/database"
	"github.com/arvind9018/edusource-backend/model"
	"github.com/arvind9018/edusource-backend/services"
	"github.com/arvind9018/edusource-backend/services/spaces"
	"github.com/arvind9018/edusource-backend/utils/cache"
	"github.com/arvind9018/edusource-backend/utils/response"
)

// catalogCacheTTL is how long a catalog page stays cached in Redis
const catalogCacheTTL = 5 * time.Minute

// CourseHandler handles course catalog requests
type CourseHandler struct {
	store  database.Storage
	cache  *cache.RedisCache // nil when Redis is unavailable
	spaces *spaces.Client    // nil when Spaces is not configured
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(store database.Storage, redisCache *cache.RedisCache, spacesClient *spaces.Client) *CourseHandler {
	return &CourseHandler{
		store:  store,
		cache:  redisCache,
		spaces: spacesClient,
	}
}

// catalogPage is the cached shape of one catalog page
type catalogPage struct {
	Courses []model.Course `json:"courses"`
	Total   int64          `json:"total"`
}

// ListCourses handles GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	cacheKey := "courses:list:" + strconv.Itoa(page) + ":" + strconv.Itoa(limit)
	if h.cache != nil {
		var cached catalogPage
		if err := h.cache.GetJSON(c.Context(), cacheKey, &cached); err == nil {
			pagination := response.CalculatePagination(page, limit, cached.Total)
			return response.Paginated(c, cached.Courses, pagination)
		}
	}

	offset := (page - 1) * limit
	courses, total, err := h.store.ListCourses(c.Context(), limit, offset)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch courses")
	}

	if h.cache != nil {
		h.cache.SetJSON(c.Context(), cacheKey, catalogPage{Courses: courses, Total: total}, catalogCacheTTL)
	}

	pagination := response.CalculatePagination(page, limit, total)
	return response.Paginated(c, courses, pagination)
}

// GetCourse handles GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	id := c.Params("id")

	course, err := h.store.GetCourse(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrCourseNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	return response.Success(c, course)
}

// GetCourseContent handles GET /api/v1/courses/:id/content?userId=...
// Only enrolled users receive a download URL; the URL is presigned and
// short-lived so it cannot be shared around.
func (h *CourseHandler) GetCourseContent(c *fiber.Ctx) error {
	id := c.Params("id")
	userID := c.Query("userId")
	if userID == "" {
		return response.BadRequest(c, "userId query parameter is required")
	}

	course, err := h.store.GetCourse(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrCourseNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	enrolled, err := h.store.IsEnrolled(c.Context(), course.ID, userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to check enrollment")
	}
	if !enrolled {
		return response.Forbidden(c, "User is not enrolled in this course")
	}

	if h.spaces == nil || course.ContentKey == "" {
		return response.NotFound(c, "No content available for this course")
	}

	url, err := h.spaces.PresignedContentURL(course.ContentKey, spaces.DefaultURLExpiry)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate content URL")
	}

	return response.Success(c, fiber.Map{
		"url":        url,
		"expires_in": int(spaces.DefaultURLExpiry.Seconds()),
	})
}
