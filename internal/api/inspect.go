package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/gobeaver/imagekit"
	"github.com/gobeaver/imagekit/imageinfo"
)

// FormatDescriptor describes one supported format.
type FormatDescriptor struct {
	Name    string `json:"name"`
	Ext     string `json:"ext"`
	FullExt string `json:"full_ext"`
	MIME    string `json:"mime"`
}

// InspectResponse is returned by the inspect endpoints. Result is present
// for unrecognized and oversized images as well, alongside Error.
type InspectResponse struct {
	ID     string           `json:"id"`
	Result *imagekit.Result `json:"result,omitempty"`
	Error  *ResponseError   `json:"error,omitempty"`
}

// ScanRequest is the body of POST /v1/scan.
type ScanRequest struct {
	Root    string `json:"root"`
	Pattern string `json:"pattern"`
}

func describe(f imageinfo.Format) FormatDescriptor {
	return FormatDescriptor{Name: f.String(), Ext: f.Ext(), FullExt: f.FullExt(), MIME: f.MIME()}
}

func (s *Server) handleFormats(c *echo.Context) error {
	formats := imageinfo.Formats()
	out := make([]FormatDescriptor, 0, len(formats))
	for _, f := range formats {
		out = append(out, describe(f))
	}
	return c.JSON(http.StatusOK, map[string]any{"formats": out})
}

func (s *Server) handleFormat(c *echo.Context) error {
	name := c.Param("name")
	f := imageinfo.ParseFormat(name)
	if !f.Valid() {
		return writeNotFound(c, fmt.Sprintf("unknown format %q", name))
	}
	return c.JSON(http.StatusOK, describe(f))
}

func (s *Server) handleInspect(c *echo.Context) error {
	name, data, err := readUpload(c, s.cfg.MaxUploadSize)
	if err != nil {
		return writeImagekitError(c, err)
	}
	res, err := s.inspector.InspectBytes(c.Request().Context(), name, data)
	return s.writeInspect(c, res, err)
}

func (s *Server) handleInspectFile(c *echo.Context) error {
	path := strings.TrimPrefix(c.Param("*"), "/")
	if path == "" {
		return writeBadRequest(c, "file path is required")
	}
	res, err := s.inspector.Inspect(c.Request().Context(), path)
	return s.writeInspect(c, res, err)
}

func (s *Server) writeInspect(c *echo.Context, res *imagekit.Result, err error) error {
	id := newRequestID()
	if err == nil {
		return c.JSON(http.StatusOK, InspectResponse{ID: id, Result: res})
	}
	if res == nil {
		status, _ := classifyError(err)
		if status == http.StatusInternalServerError {
			s.log.Error("inspect failed", "request_id", id, "error", err)
		}
		return writeImagekitError(c, err)
	}

	status, errType := classifyError(err)
	rerr := &ResponseError{Message: err.Error(), Type: errType}
	var de *imagekit.DimensionError
	if errors.As(err, &de) {
		rerr.Code = "dimension_limit"
	}
	return c.JSON(status, InspectResponse{ID: id, Result: res, Error: rerr})
}

func (s *Server) handleScan(c *echo.Context) error {
	var req ScanRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return writeBadRequest(c, fmt.Sprintf("invalid scan request: %v", err))
	}
	if _, err := imagekit.CompilePattern(req.Pattern); err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error(), "pattern", "")
	}

	rep, err := s.inspector.Scan(c.Request().Context(), req.Root, req.Pattern)
	if err != nil {
		return writeImagekitError(c, err)
	}
	return c.JSON(http.StatusOK, rep)
}
