package handlers

import (
	"context"
	"io"

	"github.com/arzan03/FileShare/internal/middleware"
	"github.com/arzan03/FileShare/internal/models"
	"github.com/arzan03/FileShare/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// FileService is the lifecycle API the file routes call.
type FileService interface {
	Upload(ctx context.Context, in services.UploadInput) (models.UploadView, error)
	ListRecent(ctx context.Context, owner string, limit int) ([]models.ListView, error)
	Rename(ctx context.Context, owner, id, newBaseName string) (models.ListView, error)
	Delete(ctx context.Context, owner, id string) error
	Download(ctx context.Context, id string, password *string) (models.DownloadView, error)
}

type FileHandler struct {
	files    FileService
	validate *validator.Validate
}

func NewFileHandler(files FileService) *FileHandler {
	return &FileHandler{files: files, validate: validator.New()}
}

// Register mounts the file routes. auth guards every owner-scoped route;
// downloads stay public.
func (h *FileHandler) Register(router fiber.Router, auth fiber.Handler) {
	router.Post("/upload", auth, h.Upload)
	router.Get("/uploads", auth, h.ListRecent)
	router.Post("/download/:id", h.Download)
	router.Put("/:id/rename", auth, h.Rename)
	router.Delete("/:id", auth, h.Delete)
}

// Upload handles multipart uploads with an optional "password" field.
func (h *FileHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "No file uploaded")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return badRequest(c, "Failed to open file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return badRequest(c, "Failed to read file")
	}

	view, err := h.files.Upload(c.UserContext(), services.UploadInput{
		OwnerID:     middleware.UserID(c),
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get(fiber.HeaderContentType),
		Size:        fileHeader.Size,
		Data:        data,
		Password:    c.FormValue("password"),
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "file": view})
}

func (h *FileHandler) ListRecent(c *fiber.Ctx) error {
	files, err := h.files.ListRecent(c.UserContext(), middleware.UserID(c), c.QueryInt("limit", services.RecentLimit))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "files": files})
}

type renameRequest struct {
	NewName string `json:"newName" validate:"required"`
}

func (h *FileHandler) Rename(c *fiber.Ctx) error {
	var req renameRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return badRequest(c, "newName is required")
	}

	view, err := h.files.Rename(c.UserContext(), middleware.UserID(c), c.Params("id"), req.NewName)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "file": view})
}

func (h *FileHandler) Delete(c *fiber.Ctx) error {
	if err := h.files.Delete(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "File deleted successfully"})
}

type downloadRequest struct {
	Password *string `json:"password" form:"password"`
}

// Download is public: the link plus, for protected files, the password is
// the only credential.
func (h *FileHandler) Download(c *fiber.Ctx) error {
	var req downloadRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}

	view, err := h.files.Download(c.UserContext(), c.Params("id"), req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "file": view})
}
