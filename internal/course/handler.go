package course

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes catalog HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a catalog HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type courseRequest struct {
	Author    string    `json:"author"`
	Title     string    `json:"title"`
	StartDate time.Time `json:"start_date"`
	Price     int64     `json:"price"`
	Available *bool     `json:"available"`
}

type courseResponse struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Title     string    `json:"title"`
	StartDate time.Time `json:"start_date"`
	Price     int64     `json:"price"`
	Available bool      `json:"available"`

	LessonsCount        int     `json:"lessons_count"`
	StudentsCount       int     `json:"students_count"`
	GroupsFilledPercent float64 `json:"groups_filled_percent"`
	DemandPercent       float64 `json:"demand_course_percent"`
}

func (h *Handler) courseResponse(c *fiber.Ctx, crs Course) (courseResponse, error) {
	stats, err := h.service.Stats(c.UserContext(), crs.ID)
	if err != nil {
		return courseResponse{}, err
	}
	return courseResponse{
		ID:                  crs.ID,
		Author:              crs.Author,
		Title:               crs.Title,
		StartDate:           crs.StartDate,
		Price:               crs.Price,
		Available:           crs.Available,
		LessonsCount:        stats.LessonsCount,
		StudentsCount:       stats.StudentsCount,
		GroupsFilledPercent: stats.GroupsFilledPercent,
		DemandPercent:       stats.DemandPercent,
	}, nil
}

// Create registers a new course. Admin only.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req courseRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	available := true
	if req.Available != nil {
		available = *req.Available
	}
	crs, err := h.service.CreateCourse(c.UserContext(), CreateCourseInput{
		Author:    req.Author,
		Title:     req.Title,
		StartDate: req.StartDate,
		Price:     req.Price,
		Available: available,
	})
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"id":         crs.ID,
		"author":     crs.Author,
		"title":      crs.Title,
		"start_date": crs.StartDate,
		"price":      crs.Price,
		"available":  crs.Available,
	})
}

// List returns the catalog with reporting figures per course.
func (h *Handler) List(c *fiber.Ctx) error {
	courses, err := h.service.List(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]courseResponse, 0, len(courses))
	for _, crs := range courses {
		resp, err := h.courseResponse(c, crs)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		out = append(out, resp)
	}
	return c.Status(http.StatusOK).JSON(out)
}

// Get returns one course with its reporting figures.
func (h *Handler) Get(c *fiber.Ctx) error {
	crs, err := h.service.Get(c.UserContext(), c.Params("courseId"))
	if err != nil {
		if errors.Is(err, ErrCourseNotFound) {
			return fiber.NewError(http.StatusNotFound, "course not found")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	resp, err := h.courseResponse(c, crs)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(resp)
}

// Update rewrites a course. Admin only.
func (h *Handler) Update(c *fiber.Ctx) error {
	crs, err := h.service.Get(c.UserContext(), c.Params("courseId"))
	if err != nil {
		if errors.Is(err, ErrCourseNotFound) {
			return fiber.NewError(http.StatusNotFound, "course not found")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	var req courseRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Author != "" {
		crs.Author = req.Author
	}
	if req.Title != "" {
		crs.Title = req.Title
	}
	if !req.StartDate.IsZero() {
		crs.StartDate = req.StartDate
	}
	if req.Price != 0 {
		crs.Price = req.Price
	}
	if req.Available != nil {
		crs.Available = *req.Available
	}
	if err := h.service.Update(c.UserContext(), crs); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"id": crs.ID, "status": "updated"})
}

// Delete removes a course. Admin only.
func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("courseId")); err != nil {
		if errors.Is(err, ErrCourseNotFound) {
			return fiber.NewError(http.StatusNotFound, "course not found")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.SendStatus(http.StatusNoContent)
}

type lessonRequest struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// CreateLesson attaches a lesson to a course. Admin only.
func (h *Handler) CreateLesson(c *fiber.Ctx) error {
	var req lessonRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	lesson, err := h.service.AddLesson(c.UserContext(), c.Params("courseId"), req.Title, req.Link)
	if err != nil {
		if errors.Is(err, ErrCourseNotFound) {
			return fiber.NewError(http.StatusNotFound, "course not found")
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"id":     lesson.ID,
		"course": lesson.CourseID,
		"title":  lesson.Title,
		"link":   lesson.Link,
	})
}

// ListLessons returns a course's lessons.
func (h *Handler) ListLessons(c *fiber.Ctx) error {
	lessons, err := h.service.Lessons(c.UserContext(), c.Params("courseId"))
	if err != nil {
		if errors.Is(err, ErrCourseNotFound) {
			return fiber.NewError(http.StatusNotFound, "course not found")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]fiber.Map, 0, len(lessons))
	for _, l := range lessons {
		out = append(out, fiber.Map{"id": l.ID, "title": l.Title, "link": l.Link})
	}
	return c.Status(http.StatusOK).JSON(out)
}

type groupRequest struct {
	Title string `json:"title"`
}

// CreateGroup attaches a study group to a course. Admin only.
func (h *Handler) CreateGroup(c *fiber.Ctx) error {
	var req groupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	group, err := h.service.AddGroup(c.UserContext(), c.Params("courseId"), req.Title)
	if err != nil {
		if errors.Is(err, ErrCourseNotFound) {
			return fiber.NewError(http.StatusNotFound, "course not found")
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"id":     group.ID,
		"course": group.CourseID,
		"title":  group.Title,
	})
}

// ListGroups returns a course's groups with member counts. Admin only.
func (h *Handler) ListGroups(c *fiber.Ctx) error {
	loads, err := h.service.Groups(c.UserContext(), c.Params("courseId"))
	if err != nil {
		if errors.Is(err, ErrCourseNotFound) {
			return fiber.NewError(http.StatusNotFound, "course not found")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]fiber.Map, 0, len(loads))
	for _, load := range loads {
		members, err := h.service.GroupMembers(c.UserContext(), load.GroupID)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		out = append(out, fiber.Map{
			"id":       load.GroupID,
			"title":    load.Title,
			"members":  members,
			"students": load.Members,
		})
	}
	return c.Status(http.StatusOK).JSON(out)
}
