package api

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v5"

	"github.com/gobeaver/imagekit"
	"github.com/gobeaver/imagekit/blur"
	"github.com/gobeaver/imagekit/imageinfo"
)

// defaultBlurRadius is used when the radius parameter is absent.
const defaultBlurRadius = 10

// decodable lists the formats /v1/blur can decode.
var decodable = map[imageinfo.Format]bool{
	imageinfo.PNG:  true,
	imageinfo.JPEG: true,
	imageinfo.GIF:  true,
}

// handleBlur blurs an uploaded image. Query parameters:
//
//	radius  blur radius, 0 to the configured maximum (default 10)
//	config  pixel layout to blur in: argb8888 (default) or rgb565
//	format  output encoding: png (default) or jpeg
func (s *Server) handleBlur(c *echo.Context) error {
	radius := defaultBlurRadius
	if q := c.QueryParam("radius"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			return writeError(c, http.StatusBadRequest, "invalid_request_error", "radius must be an integer", "radius", "")
		}
		radius = n
	}

	var fromImage func(image.Image) *blur.Bitmap
	switch c.QueryParam("config") {
	case "", "argb8888":
		fromImage = blur.FromImage
	case "rgb565":
		fromImage = blur.FromImageRGB565
	default:
		return writeError(c, http.StatusBadRequest, "invalid_request_error", "config must be argb8888 or rgb565", "config", "")
	}

	output := c.QueryParam("format")
	if output == "" {
		output = "png"
	}
	if output != "png" && output != "jpeg" {
		return writeError(c, http.StatusBadRequest, "invalid_request_error", "format must be png or jpeg", "format", "")
	}

	name, data, err := readUpload(c, s.cfg.MaxUploadSize)
	if err != nil {
		return writeImagekitError(c, err)
	}

	// Identify first so that limits apply before any pixel is decoded.
	res, err := s.inspector.InspectBytes(c.Request().Context(), name, data)
	if err != nil {
		return writeImagekitError(c, err)
	}
	if err := (imagekit.Limits{MaxPixels: s.cfg.BlurMaxPixels}).Check(res.Size()); err != nil {
		return writeImagekitError(c, err)
	}
	if !decodable[res.Format] {
		return writeError(c, http.StatusUnsupportedMediaType, "unsupported_media_type",
			fmt.Sprintf("cannot decode %s images", res.Format), "", "")
	}
	if res.Compression != imagekit.CompressionNone {
		if data, err = imagekit.Inflate(bytes.NewReader(data), res.Compression, s.cfg.MaxUploadSize); err != nil {
			return writeImagekitError(c, err)
		}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return writeError(c, http.StatusUnprocessableEntity, "decode_error", err.Error(), "", "")
	}

	out, err := blur.Apply(fromImage(img), radius, blur.WithMaxRadius(s.cfg.BlurMaxRadius), blur.InPlace())
	if err != nil {
		if errors.Is(err, blur.ErrRadiusOutOfRange) {
			return writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error(), "radius", "")
		}
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "", "")
	}

	var buf bytes.Buffer
	contentType := "image/png"
	if output == "jpeg" {
		contentType = "image/jpeg"
		err = jpeg.Encode(&buf, out.Image(), &jpeg.Options{Quality: 90})
	} else {
		err = png.Encode(&buf, out.Image())
	}
	if err != nil {
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "", "")
	}

	s.log.Debug("blurred image",
		"name", name,
		"format", res.Format,
		"size", res.Size(),
		"radius", radius,
		"config", out.Config,
	)
	c.Response().Header().Set("X-Imagekit-Source-Format", res.Format.String())
	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}
