package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/application/usecase"
)

// OpportunityHandler maneja las peticiones HTTP de oportunidades (protegido).
type OpportunityHandler struct {
	uc         *usecase.OpportunityUseCase
	activities *usecase.ActivityUseCase
}

// NewOpportunityHandler construye el handler.
func NewOpportunityHandler(uc *usecase.OpportunityUseCase, activities *usecase.ActivityUseCase) *OpportunityHandler {
	return &OpportunityHandler{uc: uc, activities: activities}
}

func opportunityListQuery(c *fiber.Ctx) dto.OpportunityListQuery {
	return dto.OpportunityListQuery{
		Search:           c.Query("search"),
		Stage:            c.Query("stage"),
		CustomerID:       c.Query("customerId"),
		PageRequest:      pageRequest(c),
		DateRangeRequest: dateRange(c),
	}
}

// List godoc
// @Summary      Listar oportunidades
// @Tags         opportunities
// @Security     Bearer
// @Produce      json
// @Param        search      query  string  false  "Busca en título y descripción"
// @Param        stage       query  string  false  "Etapa del pipeline"
// @Param        customerId  query  int     false  "Cliente"
// @Param        startDate   query  string  false  "Creada desde"
// @Param        endDate     query  string  false  "Creada hasta (inclusivo)"
// @Param        page        query  int     false  "Página"  default(1)
// @Param        limit       query  int     false  "Límite"  default(20)
// @Success      200  {object}  dto.OpportunityListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/opportunities [get]
func (h *OpportunityHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), opportunityListQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener oportunidad
// @Tags         opportunities
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la oportunidad"
// @Success      200  {object}  dto.OpportunityResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/opportunities/{id} [get]
func (h *OpportunityHandler) GetByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"opportunity": out})
}

// Create godoc
// @Summary      Crear oportunidad
// @Tags         opportunities
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOpportunityRequest  true  "Datos de la oportunidad"
// @Success      201   {object}  dto.OpportunityMutationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/opportunities [post]
func (h *OpportunityHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOpportunityRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.OpportunityMutationResponse{Message: "Oportunidad creada correctamente", Opportunity: *out})
}

// Update godoc
// @Summary      Actualizar oportunidad (solo los campos enviados)
// @Tags         opportunities
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID de la oportunidad"
// @Param        body  body  dto.UpdateOpportunityRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.OpportunityMutationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/opportunities/{id} [put]
func (h *OpportunityHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in dto.UpdateOpportunityRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(dto.OpportunityMutationResponse{Message: "Oportunidad actualizada correctamente", Opportunity: *out})
}

// Close godoc
// @Summary      Cerrar oportunidad como ganada o perdida
// @Tags         opportunities
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID de la oportunidad"
// @Param        body  body  dto.CloseOpportunityRequest  true  "won y motivo"
// @Success      200   {object}  dto.OpportunityMutationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/opportunities/{id}/close [post]
func (h *OpportunityHandler) Close(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in dto.CloseOpportunityRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Close(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	msg := "Oportunidad cerrada como perdida"
	if out.IsWon {
		msg = "Oportunidad cerrada como ganada"
	}
	return c.JSON(dto.OpportunityMutationResponse{Message: msg, Opportunity: *out})
}

// Delete godoc
// @Summary      Eliminar oportunidad
// @Description  409 si la oportunidad tiene actividades.
// @Tags         opportunities
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la oportunidad"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/opportunities/{id} [delete]
func (h *OpportunityHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Oportunidad eliminada correctamente"})
}

// ByStage GET /api/opportunities/stage/:stage
func (h *OpportunityHandler) ByStage(c *fiber.Ctx) error {
	out, err := h.uc.ListByStage(c.UserContext(), c.Params("stage"))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Activities GET /api/opportunities/:id/activities
func (h *OpportunityHandler) Activities(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.activities.ListForOpportunity(c.UserContext(), id, activityListQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}
