package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Rajat-oss/GameHubBack/internal/models"
	"github.com/Rajat-oss/GameHubBack/internal/services"
	"github.com/gofiber/fiber/v2"
)

type stubPostService struct {
	createResult *models.Post
	createErr    error
	deleteErr    error
	feedResult   []models.FeedPost
	feedTotal    int

	lastUserID int64
	lastGameID *int64
	lastBody   string
}

func (s *stubPostService) Create(_ context.Context, userID int64, gameID *int64, body string) (*models.Post, error) {
	s.lastUserID = userID
	s.lastGameID = gameID
	s.lastBody = body
	return s.createResult, s.createErr
}

func (s *stubPostService) Delete(_ context.Context, userID, postID int64) error {
	s.lastUserID = userID
	return s.deleteErr
}

func (s *stubPostService) Feed(_ context.Context, userID int64, page, limit int) ([]models.FeedPost, int, error) {
	s.lastUserID = userID
	return s.feedResult, s.feedTotal, nil
}

func newPostTestApp(service *stubPostService) *fiber.App {
	handler := NewPostHandler(service)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", "42")
		return c.Next()
	})
	app.Post("/api/v1/posts", handler.CreatePost)
	app.Delete("/api/v1/posts/:postID", handler.DeletePost)
	app.Get("/api/v1/feed", handler.GetFeed)
	return app
}

func TestCreatePostForwardsGameTag(t *testing.T) {
	service := &stubPostService{
		createResult: &models.Post{ID: 1, UserID: 42, Body: "just beat the final boss"},
	}
	app := newPostTestApp(service)

	req := httptest.NewRequest(
		http.MethodPost,
		"/api/v1/posts",
		strings.NewReader(`{"body":"just beat the final boss","game_id":5}`),
	)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if service.lastGameID == nil || *service.lastGameID != 5 {
		t.Fatalf("expected game id 5, got %+v", service.lastGameID)
	}
}

func TestDeleteForeignPostReturnsNotFound(t *testing.T) {
	service := &stubPostService{deleteErr: services.ErrNotFound}
	app := newPostTestApp(service)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/posts/9", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestGetFeedReturnsPostsWithPagination(t *testing.T) {
	service := &stubPostService{
		feedResult: []models.FeedPost{
			{Post: models.Post{ID: 1, UserID: 7, Body: "anyone up for co-op?"}, AuthorUsername: "bob"},
		},
		feedTotal: 1,
	}
	app := newPostTestApp(service)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/feed", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if service.lastUserID != 42 {
		t.Fatalf("expected user 42, got %d", service.lastUserID)
	}

	var body struct {
		Posts      []models.FeedPost     `json:"posts"`
		Pagination models.PaginationMeta `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(body.Posts) != 1 || body.Posts[0].AuthorUsername != "bob" {
		t.Fatalf("unexpected feed: %+v", body.Posts)
	}
}
