package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"gatepass/internal/errors"
	"gatepass/internal/model"
	"gatepass/internal/service"
)

// GatePassHandler handles gate pass endpoints.
type GatePassHandler struct {
	gatePassService service.GatePassService
}

// NewGatePassHandler creates a new gate pass handler.
func NewGatePassHandler(gatePassService service.GatePassService) *GatePassHandler {
	return &GatePassHandler{gatePassService: gatePassService}
}

// GatePassItemRequest is one line of goods in a create request.
type GatePassItemRequest struct {
	ItemCode        *string `json:"item_code" validate:"omitempty,max=100"`
	ItemDescription string  `json:"item_description" validate:"required,max=500"`
	Qty             int     `json:"qty" validate:"gte=0"`
	RefDocNo        *string `json:"ref_doc_no" validate:"omitempty,max=100"`
	Destination     *string `json:"destination" validate:"omitempty,max=255"`
}

// GatePassRequest represents a gate pass create request. An omitted
// purpose_delivery counts as true.
type GatePassRequest struct {
	PassDate              *model.Date `json:"pass_date" validate:"required"`
	AuthorizedName        string      `json:"authorized_name" validate:"required,max=255"`
	InOrOut               string      `json:"in_or_out"`
	PurposeDelivery       *bool       `json:"purpose_delivery"`
	PurposeReturn         bool        `json:"purpose_return"`
	PurposeInterWarehouse bool        `json:"purpose_inter_warehouse"`
	PurposeOthers         bool        `json:"purpose_others"`
	VehicleType           *string     `json:"vehicle_type" validate:"omitempty,max=100"`
	PlateNo               *string     `json:"plate_no" validate:"omitempty,max=50"`
	Attention             *string     `json:"attention" validate:"omitempty,max=255"`
	PreparedBy            *string     `json:"prepared_by" validate:"omitempty,max=255"`
	CheckedBy             *string     `json:"checked_by" validate:"omitempty,max=255"`
	RecommendedBy         *string     `json:"recommended_by" validate:"omitempty,max=255"`
	ApprovedBy            *string     `json:"approved_by" validate:"omitempty,max=255"`
	TimeOut               *string     `json:"time_out" validate:"omitempty,max=20"`
	TimeIn                *string     `json:"time_in" validate:"omitempty,max=20"`

	Items []GatePassItemRequest `json:"items" validate:"dive"`
}

func (r GatePassRequest) toGatePass() *model.GatePass {
	delivery := true
	if r.PurposeDelivery != nil {
		delivery = *r.PurposeDelivery
	}

	gp := &model.GatePass{
		PassDate:       *r.PassDate,
		AuthorizedName: r.AuthorizedName,
		InOrOut:        model.Direction(r.InOrOut),
		Purposes: model.Purposes{
			Delivery:       delivery,
			Return:         r.PurposeReturn,
			InterWarehouse: r.PurposeInterWarehouse,
			Others:         r.PurposeOthers,
		},
		VehicleType: r.VehicleType,
		PlateNo:     r.PlateNo,
		Attention:   r.Attention,
		Signatories: model.Signatories{
			PreparedBy:    r.PreparedBy,
			CheckedBy:     r.CheckedBy,
			RecommendedBy: r.RecommendedBy,
			ApprovedBy:    r.ApprovedBy,
		},
		TimeOut: r.TimeOut,
		TimeIn:  r.TimeIn,
		Items:   make([]model.GatePassItem, 0, len(r.Items)),
	}
	for _, it := range r.Items {
		gp.Items = append(gp.Items, model.GatePassItem{
			ItemCode:        it.ItemCode,
			ItemDescription: it.ItemDescription,
			Qty:             it.Qty,
			RefDocNo:        it.RefDocNo,
			Destination:     it.Destination,
		})
	}
	return gp
}

// StatusRequest represents a status change.
type StatusRequest struct {
	Status          string  `json:"status"`
	RejectedRemarks *string `json:"rejected_remarks"`
	ApprovedBy      *string `json:"approved_by" validate:"omitempty,max=255"`
}

// ListGatePasses godoc
// @Summary List gate passes
// @Description Newest first, each with its items.
// @Tags gate-passes
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.GatePass
// @Failure 401 {object} errors.ErrorResponse
// @Router /gate-passes [get]
func (h *GatePassHandler) ListGatePasses(c echo.Context) error {
	gatePasses, err := h.gatePassService.List(c.Request().Context())
	if err != nil {
		return respondError(err)
	}
	if gatePasses == nil {
		gatePasses = []model.GatePass{}
	}
	return c.JSON(http.StatusOK, gatePasses)
}

// GetGatePass godoc
// @Summary Get gate pass
// @Tags gate-passes
// @Produce json
// @Security BearerAuth
// @Param id path int true "Gate pass ID"
// @Success 200 {object} model.GatePass
// @Failure 404 {object} errors.ErrorResponse
// @Router /gate-passes/{id} [get]
func (h *GatePassHandler) GetGatePass(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	gp, err := h.gatePassService.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, gp)
}

// GetGatePassByNumber godoc
// @Summary Scanner lookup
// @Description Looks a gate pass up by the number printed on its barcode. No authentication.
// @Tags gate-passes
// @Produce json
// @Param gp_number path string true "GP number"
// @Success 200 {object} model.GatePass
// @Failure 404 {object} errors.ErrorResponse
// @Router /gate-passes/by-number/{gp_number} [get]
func (h *GatePassHandler) GetGatePassByNumber(c echo.Context) error {
	gp, err := h.gatePassService.GetByNumber(c.Request().Context(), c.Param("gp_number"))
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, gp)
}

// CreateGatePass godoc
// @Summary Create gate pass
// @Description Assigns the next number for the pass year and stores the pass as pending.
// @Tags gate-passes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GatePassRequest true "Gate pass"
// @Success 200 {object} model.GatePass
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /gate-passes [post]
func (h *GatePassHandler) CreateGatePass(c echo.Context) error {
	var req GatePassRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.PassDate.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "pass_date is required",
			Code:  "VALIDATION_ERROR",
		})
	}
	gp, err := h.gatePassService.Create(c.Request().Context(), req.toGatePass())
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, gp)
}

// UpdateGatePassStatus godoc
// @Summary Change gate pass status
// @Tags gate-passes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Gate pass ID"
// @Param request body StatusRequest true "New status"
// @Success 200 {object} model.GatePass
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /gate-passes/{id}/status [patch]
func (h *GatePassHandler) UpdateGatePassStatus(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req StatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	gp, err := h.gatePassService.UpdateStatus(c.Request().Context(), id, service.StatusUpdate{
		Status:          req.Status,
		RejectedRemarks: req.RejectedRemarks,
		ApprovedBy:      req.ApprovedBy,
	})
	if err != nil {
		return respondError(err)
	}
	return c.JSON(http.StatusOK, gp)
}
