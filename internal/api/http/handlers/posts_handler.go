package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/content-service/internal/api/dto"
	"github.com/spec-kit/content-service/internal/auth"
	"github.com/spec-kit/content-service/internal/service"
	apperrors "github.com/spec-kit/content-service/pkg/util"
)

const imageField = "image"

// PostsHandler manages post endpoints.
type PostsHandler struct {
	posts service.Posts
}

// NewPostsHandler constructs handler.
func NewPostsHandler(posts service.Posts) *PostsHandler {
	return &PostsHandler{posts: posts}
}

// ListPosts GET /api/posts. Only admins may list unpublished posts; everyone
// else always receives the published listing.
func (h *PostsHandler) ListPosts(c *fiber.Ctx) error {
	query, err := parseListQuery(c)
	if err != nil {
		return err
	}
	if !auth.ActorFromContext(c).IsAdmin() {
		query.Published = true
	}
	return h.list(c, query)
}

// AdminListPosts GET /api/admin/posts.
func (h *PostsHandler) AdminListPosts(c *fiber.Ctx) error {
	query, err := parseListQuery(c)
	if err != nil {
		return err
	}
	return h.list(c, query)
}

func (h *PostsHandler) list(c *fiber.Ctx, query service.ListQuery) error {
	page, err := h.posts.ListPosts(c.UserContext(), query)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPostListResponse(page)})
}

// GetPost GET /api/posts/:id.
func (h *PostsHandler) GetPost(c *fiber.Ctx) error {
	post, err := h.posts.GetPost(c.UserContext(), c.Params("id"), auth.ActorFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPostResponse(post)})
}

// Permissions GET /api/posts/:id/permissions.
func (h *PostsHandler) Permissions(c *fiber.Ctx) error {
	allowed, err := h.posts.CanModify(c.UserContext(), c.Params("id"), auth.ActorFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PermissionsResponse{CanModify: allowed}})
}

// CreatePost POST /api/posts. Accepts JSON or a multipart form with an optional image.
func (h *PostsHandler) CreatePost(c *fiber.Ctx) error {
	var (
		req   dto.CreatePostRequest
		asset *service.AssetUpload
	)
	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			return apperrors.NewValidationError("invalid multipart payload", nil)
		}
		req.Title = formValue(form, "title")
		req.Content = formValue(form, "content")
		if raw, ok := formField(form, "published"); ok {
			published, err := strconv.ParseBool(raw)
			if err != nil {
				return apperrors.NewValidationError("validation failed", map[string]any{"published": "must be a boolean"})
			}
			req.Published = published
		}
		if asset, err = readAsset(form); err != nil {
			return err
		}
	} else if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	post, err := h.posts.CreatePost(c.UserContext(), service.PostInput{
		Title:     req.Title,
		Content:   req.Content,
		Published: req.Published,
	}, auth.ActorFromContext(c), asset)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewPostResponse(post)})
}

// UpdatePost PUT /api/posts/:id. Accepts JSON or a multipart form with an optional image.
func (h *PostsHandler) UpdatePost(c *fiber.Ctx) error {
	var (
		req   dto.UpdatePostRequest
		asset *service.AssetUpload
	)
	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			return apperrors.NewValidationError("invalid multipart payload", nil)
		}
		if v, ok := formField(form, "title"); ok {
			req.Title = &v
		}
		if v, ok := formField(form, "content"); ok {
			req.Content = &v
		}
		if raw, ok := formField(form, "published"); ok {
			published, err := strconv.ParseBool(raw)
			if err != nil {
				return apperrors.NewValidationError("validation failed", map[string]any{"published": "must be a boolean"})
			}
			req.Published = &published
		}
		if asset, err = readAsset(form); err != nil {
			return err
		}
	} else if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}

	post, err := h.posts.UpdatePost(c.UserContext(), c.Params("id"), service.PostChanges{
		Title:     req.Title,
		Content:   req.Content,
		Published: req.Published,
	}, auth.ActorFromContext(c), asset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPostResponse(post)})
}

// DeletePost DELETE /api/posts/:id.
func (h *PostsHandler) DeletePost(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.posts.DeletePost(c.UserContext(), id, auth.ActorFromContext(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": id, "deleted": true}})
}

func parseListQuery(c *fiber.Ctx) (service.ListQuery, error) {
	query := service.ListQuery{
		Page:      c.QueryInt("page", 1),
		PageSize:  c.QueryInt("page_size", c.QueryInt("limit", 0)),
		Published: true,
	}
	if raw := strings.TrimSpace(c.Query("published")); raw != "" {
		published, err := strconv.ParseBool(raw)
		if err != nil {
			return query, apperrors.NewValidationError("validation failed", map[string]any{"published": "must be a boolean"})
		}
		query.Published = published
	}
	return query, nil
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm)
}

func formField(form *multipart.Form, key string) (string, bool) {
	values, ok := form.Value[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func formValue(form *multipart.Form, key string) string {
	v, _ := formField(form, key)
	return v
}

func readAsset(form *multipart.Form) (*service.AssetUpload, error) {
	files := form.File[imageField]
	if len(files) == 0 {
		return nil, nil
	}
	header := files[0]
	f, err := header.Open()
	if err != nil {
		return nil, apperrors.NewValidationError("unreadable upload", map[string]any{imageField: err.Error()})
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apperrors.NewValidationError("unreadable upload", map[string]any{imageField: err.Error()})
	}
	return &service.AssetUpload{Data: data, MimeType: header.Header.Get(fiber.HeaderContentType)}, nil
}
