package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/gobeaver/imagekit"
)

// ResponseError is the body of every error response.
type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param,omitempty"`
	Code    string `json:"code,omitempty"`
}

var (
	errEmptyUpload = errors.New("request body is empty")
	errUpload      = errors.New("upload exceeds the size limit")
)

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg, "", "")
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg, "", "")
}

func writeError(c *echo.Context, status int, errType, msg, param, code string) error {
	return c.JSON(status, map[string]any{
		"error": ResponseError{
			Message: msg,
			Type:    errType,
			Code:    code,
			Param:   param,
		},
	})
}

// classifyError maps an imagekit error to a status and error type.
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, errUpload):
		return http.StatusRequestEntityTooLarge, "payload_too_large"
	case imagekit.IsUnrecognized(err):
		return http.StatusUnprocessableEntity, "unrecognized_image"
	case errors.Is(err, imagekit.ErrTooLarge):
		return http.StatusUnprocessableEntity, "image_too_large"
	case imagekit.IsNotExist(err):
		return http.StatusNotFound, "not_found_error"
	case errors.Is(err, imagekit.ErrNotAllowed):
		return http.StatusForbidden, "permission_error"
	case errors.Is(err, imagekit.ErrIsDir), errors.Is(err, imagekit.ErrNotDir),
		errors.Is(err, imagekit.ErrNotSupported), errors.Is(err, errEmptyUpload):
		return http.StatusBadRequest, "invalid_request_error"
	default:
		return http.StatusInternalServerError, "server_error"
	}
}

func writeImagekitError(c *echo.Context, err error) error {
	status, errType := classifyError(err)
	var code string
	var de *imagekit.DimensionError
	if errors.As(err, &de) {
		code = "dimension_limit"
	}
	return writeError(c, status, errType, err.Error(), "", code)
}

// readUpload returns the uploaded image and its name. Multipart requests
// carry the image in the "file" field; any other request carries it as the
// raw body. The "name" query parameter overrides the file name.
func readUpload(c *echo.Context, limit int64) (string, []byte, error) {
	req := c.Request()
	name := c.QueryParam("name")

	var src io.Reader = req.Body
	if strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fh, err := c.FormFile("file")
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", errEmptyUpload, err)
		}
		if limit > 0 && fh.Size > limit {
			return "", nil, errUpload
		}
		f, err := fh.Open()
		if err != nil {
			return "", nil, err
		}
		defer f.Close()
		src = f
		if name == "" {
			name = fh.Filename
		}
	}

	if limit > 0 {
		src = io.LimitReader(src, limit+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return "", nil, err
	}
	if limit > 0 && int64(len(data)) > limit {
		return "", nil, errUpload
	}
	if len(data) == 0 {
		return "", nil, errEmptyUpload
	}
	return name, data, nil
}

func newRequestID() string {
	return "req_" + uuid.NewString()
}
