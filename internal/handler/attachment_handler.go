package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"colistrack/internal/errors"
	"colistrack/internal/model"
	"colistrack/internal/service"
)

// AttachmentHandler handles package document endpoints.
type AttachmentHandler struct {
	attachmentService service.AttachmentService
	packageService    service.PackageService
}

// NewAttachmentHandler creates a new attachment handler.
func NewAttachmentHandler(attachmentService service.AttachmentService, packageService service.PackageService) *AttachmentHandler {
	return &AttachmentHandler{
		attachmentService: attachmentService,
		packageService:    packageService,
	}
}

// Upload godoc
// @Summary Upload a document for a package (admin)
// @Description Multipart form with a "file" part and a "kind" field
// @Description (invoice, delivery-proof or package-photo).
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Package ID"
// @Param kind formData string true "Attachment kind"
// @Param file formData file true "File (max 10 MB)"
// @Success 201 {object} model.Attachment
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 413 {object} errors.ErrorResponse
// @Router /admin/packages/{id}/attachments [post]
func (h *AttachmentHandler) Upload(c echo.Context) error {
	userID, _, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := packageIDParam(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "missing file",
			Code:  "MISSING_FILE",
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "unreadable file",
			Code:  "UNREADABLE_FILE",
		})
	}
	defer src.Close()

	attachment, err := h.attachmentService.Upload(c.Request().Context(), id, service.UploadInput{
		Kind:        c.FormValue("kind"),
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Content:     src,
	}, userID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, attachment)
}

// List godoc
// @Summary List a package's attachments
// @Tags packages
// @Produce json
// @Security BearerAuth
// @Param id path string true "Package ID"
// @Success 200 {array} model.Attachment
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /packages/{id}/attachments [get]
func (h *AttachmentHandler) List(c echo.Context) error {
	_, claims, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := packageIDParam(c)
	if err != nil {
		return err
	}

	// Same visibility rule as the package itself.
	pkg, svcErr := h.packageService.GetByID(c.Request().Context(), id)
	if svcErr != nil {
		httpErr := errors.MapErrorToHTTP(svcErr)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	if claims.Role != model.RoleAdmin && pkg.UserTrackingID != claims.TrackingID {
		httpErr := errors.MapErrorToHTTP(errors.ErrForbidden)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	attachments, err := h.attachmentService.ListByPackage(c.Request().Context(), id)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, attachments)
}

// Download godoc
// @Summary Stream a stored attachment
// @Tags packages
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "Attachment ID"
// @Success 200 {file} binary
// @Failure 404 {object} errors.ErrorResponse
// @Router /attachments/{id}/download [get]
func (h *AttachmentHandler) Download(c echo.Context) error {
	_, claims, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := packageIDParam(c)
	if err != nil {
		return err
	}

	attachment, reader, svcErr := h.attachmentService.Open(c.Request().Context(), id)
	if svcErr != nil {
		httpErr := errors.MapErrorToHTTP(svcErr)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	defer reader.Close()

	if claims.Role != model.RoleAdmin {
		pkg, pkgErr := h.packageService.GetByID(c.Request().Context(), attachment.PackageID)
		if pkgErr != nil || pkg.UserTrackingID != claims.TrackingID {
			httpErr := errors.MapErrorToHTTP(errors.ErrForbidden)
			return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
		}
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+attachment.FileName+`"`)
	return c.Stream(http.StatusOK, attachment.ContentType, reader)
}
