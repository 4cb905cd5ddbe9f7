package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"colistrack/internal/errors"
	"colistrack/internal/model"
	"colistrack/internal/service"
)

// PackageHandler handles package endpoints.
type PackageHandler struct {
	packageService service.PackageService
}

// NewPackageHandler creates a new package handler.
func NewPackageHandler(packageService service.PackageService) *PackageHandler {
	return &PackageHandler{packageService: packageService}
}

// UserCreatePackageRequest is the reduced creation payload accepted from the
// owning user.
type UserCreatePackageRequest struct {
	TrackingNumber string `json:"tracking_number" validate:"required,max=64"`
	Origin         string `json:"origin" validate:"required,max=255"`
	Destination    string `json:"destination" validate:"required,max=255"`
	TransportType  string `json:"transport_type" validate:"omitempty,oneof=maritime aerien"`
	Description    string `json:"description"`
}

// AdminCreatePackageRequest is the full creation payload for admins.
type AdminCreatePackageRequest struct {
	TrackingNumber    string          `json:"tracking_number" validate:"required,max=64"`
	UserTrackingID    string          `json:"user_tracking_id" validate:"required,max=16"`
	Origin            string          `json:"origin" validate:"required,max=255"`
	Destination       string          `json:"destination" validate:"required,max=255"`
	Status            string          `json:"status" validate:"omitempty,oneof=pending in_transit customs delivered lost"`
	TransportType     string          `json:"transport_type" validate:"omitempty,oneof=maritime aerien"`
	Weight            float64         `json:"weight" validate:"gte=0"`
	Length            float64         `json:"length" validate:"gte=0"`
	Width             float64         `json:"width" validate:"gte=0"`
	Height            float64         `json:"height" validate:"gte=0"`
	Description       string          `json:"description"`
	Value             decimal.Decimal `json:"value"`
	Currency          string          `json:"currency" validate:"omitempty,len=3"`
	ShippingDate      *time.Time      `json:"shipping_date"`
	EstimatedDelivery *time.Time      `json:"estimated_delivery"`
	CurrentLocation   string          `json:"current_location"`
	Notes             string          `json:"notes"`
}

// UpdatePackageRequest carries a partial-field merge; absent fields stay
// untouched.
type UpdatePackageRequest struct {
	Origin            *string          `json:"origin" validate:"omitempty,max=255"`
	Destination       *string          `json:"destination" validate:"omitempty,max=255"`
	Status            *string          `json:"status" validate:"omitempty,oneof=pending in_transit customs delivered lost"`
	TransportType     *string          `json:"transport_type" validate:"omitempty,oneof=maritime aerien"`
	Weight            *float64         `json:"weight" validate:"omitempty,gte=0"`
	Length            *float64         `json:"length" validate:"omitempty,gte=0"`
	Width             *float64         `json:"width" validate:"omitempty,gte=0"`
	Height            *float64         `json:"height" validate:"omitempty,gte=0"`
	Description       *string          `json:"description"`
	Value             *decimal.Decimal `json:"value"`
	Currency          *string          `json:"currency" validate:"omitempty,len=3"`
	ShippingDate      *time.Time       `json:"shipping_date"`
	EstimatedDelivery *time.Time       `json:"estimated_delivery"`
	ActualDelivery    *time.Time       `json:"actual_delivery"`
	CurrentLocation   *string          `json:"current_location"`
	Notes             *string          `json:"notes"`
}

// AppendHistoryRequest records one tracking history entry.
type AppendHistoryRequest struct {
	Status      string `json:"status" validate:"required,max=32"`
	Location    string `json:"location" validate:"max=255"`
	Description string `json:"description"`
}

// ListMine godoc
// @Summary List the caller's packages, newest first
// @Tags packages
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Package
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /packages [get]
func (h *PackageHandler) ListMine(c echo.Context) error {
	_, claims, err := currentUserID(c)
	if err != nil {
		return err
	}
	if claims.TrackingID == "" {
		httpErr := errors.MapErrorToHTTP(errors.ErrMissingTrackingID)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	packages, err := h.packageService.ListByOwner(c.Request().Context(), claims.TrackingID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, packages)
}

// CreateMine godoc
// @Summary Register one of the caller's own shipments
// @Description Owner, pending status and value defaults are set server-side.
// @Tags packages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UserCreatePackageRequest true "Package data"
// @Success 201 {object} model.Package
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /packages [post]
func (h *PackageHandler) CreateMine(c echo.Context) error {
	userID, claims, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req UserCreatePackageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pkg, err := h.packageService.CreateForUser(c.Request().Context(), service.UserCreatePackageInput{
		TrackingNumber: req.TrackingNumber,
		Origin:         req.Origin,
		Destination:    req.Destination,
		TransportType:  req.TransportType,
		Description:    req.Description,
	}, claims.TrackingID, userID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, pkg)
}

// Get godoc
// @Summary Get a package by ID
// @Tags packages
// @Produce json
// @Security BearerAuth
// @Param id path string true "Package ID"
// @Success 200 {object} model.Package
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /packages/{id} [get]
func (h *PackageHandler) Get(c echo.Context) error {
	pkg, err := h.loadOwnedPackage(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pkg)
}

// GetByTrackingNumber godoc
// @Summary Point lookup by carrier tracking number
// @Tags packages
// @Produce json
// @Security BearerAuth
// @Param trackingNumber path string true "Carrier tracking number"
// @Success 200 {object} model.Package
// @Failure 404 {object} errors.ErrorResponse
// @Router /packages/track/{trackingNumber} [get]
func (h *PackageHandler) GetByTrackingNumber(c echo.Context) error {
	pkg, err := h.packageService.GetByTrackingNumber(c.Request().Context(), c.Param("trackingNumber"))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, pkg)
}

// History godoc
// @Summary List a package's tracking history, newest first
// @Tags packages
// @Produce json
// @Security BearerAuth
// @Param id path string true "Package ID"
// @Success 200 {array} model.TrackingEvent
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /packages/{id}/history [get]
func (h *PackageHandler) History(c echo.Context) error {
	pkg, err := h.loadOwnedPackage(c)
	if err != nil {
		return err
	}

	history, err := h.packageService.ListHistory(c.Request().Context(), pkg.ID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, history)
}

// ListAll godoc
// @Summary List every package, newest first (admin)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Package
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/packages [get]
func (h *PackageHandler) ListAll(c echo.Context) error {
	packages, err := h.packageService.ListAll(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, packages)
}

// Create godoc
// @Summary Create a package on behalf of any user (admin)
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AdminCreatePackageRequest true "Package data"
// @Success 201 {object} model.Package
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/packages [post]
func (h *PackageHandler) Create(c echo.Context) error {
	userID, _, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req AdminCreatePackageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	input := service.CreatePackageInput{
		TrackingNumber:    req.TrackingNumber,
		UserTrackingID:    req.UserTrackingID,
		Origin:            req.Origin,
		Destination:       req.Destination,
		Status:            req.Status,
		TransportType:     req.TransportType,
		WeightKg:          req.Weight,
		LengthCm:          req.Length,
		WidthCm:           req.Width,
		HeightCm:          req.Height,
		Description:       req.Description,
		Value:             req.Value,
		Currency:          req.Currency,
		EstimatedDelivery: req.EstimatedDelivery,
		CurrentLocation:   req.CurrentLocation,
		Notes:             req.Notes,
	}
	if req.ShippingDate != nil {
		input.ShippingDate = *req.ShippingDate
	}

	pkg, err := h.packageService.Create(c.Request().Context(), input, userID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, pkg)
}

// Update godoc
// @Summary Update package fields (admin)
// @Description Partial merge; status changes must follow the shipment lifecycle.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Package ID"
// @Param request body UpdatePackageRequest true "Fields to change"
// @Success 200 {object} model.Package
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/packages/{id} [put]
func (h *PackageHandler) Update(c echo.Context) error {
	id, err := packageIDParam(c)
	if err != nil {
		return err
	}

	var req UpdatePackageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	pkg, err := h.packageService.Update(c.Request().Context(), id, service.UpdatePackageInput{
		Origin:            req.Origin,
		Destination:       req.Destination,
		Status:            req.Status,
		TransportType:     req.TransportType,
		WeightKg:          req.Weight,
		LengthCm:          req.Length,
		WidthCm:           req.Width,
		HeightCm:          req.Height,
		Description:       req.Description,
		Value:             req.Value,
		Currency:          req.Currency,
		ShippingDate:      req.ShippingDate,
		EstimatedDelivery: req.EstimatedDelivery,
		ActualDelivery:    req.ActualDelivery,
		CurrentLocation:   req.CurrentLocation,
		Notes:             req.Notes,
	})
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, pkg)
}

// Delete godoc
// @Summary Hard-delete a package (admin)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Package ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/packages/{id} [delete]
func (h *PackageHandler) Delete(c echo.Context) error {
	id, err := packageIDParam(c)
	if err != nil {
		return err
	}

	if err := h.packageService.Delete(c.Request().Context(), id); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "package deleted",
	})
}

// AppendHistory godoc
// @Summary Append a tracking history entry (admin)
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Package ID"
// @Param request body AppendHistoryRequest true "History entry"
// @Success 201 {object} model.TrackingEvent
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/packages/{id}/history [post]
func (h *PackageHandler) AppendHistory(c echo.Context) error {
	userID, _, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := packageIDParam(c)
	if err != nil {
		return err
	}

	var req AppendHistoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	event, err := h.packageService.AppendHistory(c.Request().Context(), id, req.Status, req.Location, req.Description, userID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, event)
}

// Stats godoc
// @Summary Aggregate package counts (admin)
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.PackageStats
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/stats [get]
func (h *PackageHandler) Stats(c echo.Context) error {
	stats, err := h.packageService.Stats(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, stats)
}

// loadOwnedPackage fetches the package in the :id param and verifies the
// caller may see it: admins see everything, users only their own.
func (h *PackageHandler) loadOwnedPackage(c echo.Context) (*model.Package, error) {
	_, claims, err := currentUserID(c)
	if err != nil {
		return nil, err
	}
	id, err := packageIDParam(c)
	if err != nil {
		return nil, err
	}

	pkg, svcErr := h.packageService.GetByID(c.Request().Context(), id)
	if svcErr != nil {
		httpErr := errors.MapErrorToHTTP(svcErr)
		return nil, echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	if claims.Role != model.RoleAdmin && pkg.UserTrackingID != claims.TrackingID {
		httpErr := errors.MapErrorToHTTP(errors.ErrForbidden)
		return nil, echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return pkg, nil
}

func packageIDParam(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid package ID",
			Code:  "INVALID_UUID",
		})
	}
	return id, nil
}
