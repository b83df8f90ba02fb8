package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/Brownie44l1/dermascan-api/internal/apperr"
	"github.com/Brownie44l1/dermascan-api/internal/diagnosis"
	"github.com/Brownie44l1/dermascan-api/internal/imaging"
)

type Handler struct {
	service   *diagnosis.Service
	validator *imaging.Validator
	log       logrus.FieldLogger
}

type PredictionRequest struct {
	Image string `json:"image" validate:"required"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

type ClassesResponse struct {
	Classes []string `json:"classes"`
}

func NewHandler(service *diagnosis.Service, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		service:   service,
		validator: service.Validator(),
		log:       log,
	}
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:      "healthy",
		ModelLoaded: h.service.ModelLoaded(),
	})
}

func (h *Handler) Classes(c echo.Context) error {
	return c.JSON(http.StatusOK, ClassesResponse{Classes: h.service.Classes()})
}

// Predict diagnoses a base64 encoded image sent as {"image": "..."}.
func (h *Handler) Predict(c echo.Context) error {
	if !h.service.ModelLoaded() {
		return h.fail(c, apperr.ErrModelNotLoaded)
	}

	var req PredictionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No image data provided"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No image data provided"})
	}

	result, err := h.service.DiagnoseBase64(c.Request().Context(), req.Image)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// PredictFromImage diagnoses an image uploaded as multipart field "image".
func (h *Handler) PredictFromImage(c echo.Context) error {
	if !h.service.ModelLoaded() {
		return h.fail(c, apperr.ErrModelNotLoaded)
	}

	header, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No image file provided. Use 'image' as the form field name"})
	}
	maxUpload := h.validator.MaxFileSize()
	if header.Size > maxUpload {
		return h.fail(c, h.validator.SizeError(header.Size))
	}
	file, err := header.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Failed to read uploaded file"})
	}
	defer file.Close()

	h.log.WithFields(logrus.Fields{"filename": header.Filename, "size": header.Size}).Debug("received upload")

	raw, err := io.ReadAll(io.LimitReader(file, maxUpload+1))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Failed to read uploaded file"})
	}
	if int64(len(raw)) > maxUpload {
		return h.fail(c, h.validator.SizeError(int64(len(raw))))
	}

	result, err := h.service.Diagnose(c.Request().Context(), raw)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) ListHistory(c echo.Context) error {
	store := h.service.History()
	if store == nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "history is disabled"})
	}

	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a non-negative integer"})
		}
		limit = n
	}

	records, err := store.List(c.Request().Context(), limit)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"predictions": records})
}

func (h *Handler) GetHistory(c echo.Context) error {
	store := h.service.History()
	if store == nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "history is disabled"})
	}

	record, err := store.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, record)
}

func (h *Handler) fail(c echo.Context, err error) error {
	status := apperr.HTTPStatus(err)
	message := apperr.Message(err)

	switch {
	case apperr.IsKind(err, apperr.KindModel):
	case status == http.StatusInternalServerError:
		h.log.WithError(err).Error("Error in prediction")
		message = "Prediction failed: " + message
	default:
		h.log.WithError(err).Debug("rejected request")
	}
	return c.JSON(status, ErrorResponse{Error: message})
}
