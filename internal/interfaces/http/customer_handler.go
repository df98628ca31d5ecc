package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/application/usecase"
)

// CustomerHandler maneja las peticiones HTTP de clientes (protegido).
type CustomerHandler struct {
	uc            *usecase.CustomerUseCase
	opportunities *usecase.OpportunityUseCase
	activities    *usecase.ActivityUseCase
	interactions  *usecase.InteractionUseCase
}

// NewCustomerHandler construye el handler. Los otros casos de uso sirven los listados anidados.
func NewCustomerHandler(
	uc *usecase.CustomerUseCase,
	opportunities *usecase.OpportunityUseCase,
	activities *usecase.ActivityUseCase,
	interactions *usecase.InteractionUseCase,
) *CustomerHandler {
	return &CustomerHandler{uc: uc, opportunities: opportunities, activities: activities, interactions: interactions}
}

func customerListQuery(c *fiber.Ctx) dto.CustomerListQuery {
	return dto.CustomerListQuery{
		Search:           c.Query("search"),
		Status:           c.Query("status"),
		Industry:         c.Query("industry"),
		PageRequest:      pageRequest(c),
		DateRangeRequest: dateRange(c),
	}
}

// List godoc
// @Summary      Listar clientes
// @Tags         customers
// @Security     Bearer
// @Produce      json
// @Param        search     query  string  false  "Busca en nombre, empresa y email"
// @Param        status     query  string  false  "prospect | active | inactive | lost"
// @Param        industry   query  string  false  "Industria"
// @Param        startDate  query  string  false  "Creado desde (RFC 3339 o YYYY-MM-DD)"
// @Param        endDate    query  string  false  "Creado hasta (inclusivo)"
// @Param        page       query  int     false  "Página"  default(1)
// @Param        limit      query  int     false  "Límite"  default(10)
// @Success      200  {object}  dto.CustomerListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/customers [get]
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), customerListQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Stats godoc
// @Summary      Clientes por estado
// @Tags         customers
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CustomerStatsResponse
// @Router       /api/customers/stats [get]
func (h *CustomerHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"stats": out})
}

// GetByID godoc
// @Summary      Obtener cliente con oportunidades e interacciones
// @Tags         customers
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del cliente"
// @Success      200  {object}  dto.CustomerResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/customers/{id} [get]
func (h *CustomerHandler) GetByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"customer": out})
}

// Create godoc
// @Summary      Crear cliente
// @Tags         customers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCustomerRequest  true  "Datos del cliente"
// @Success      201   {object}  dto.CustomerMutationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/customers [post]
func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateCustomerRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CustomerMutationResponse{Message: "Cliente creado correctamente", Customer: *out})
}

// Update godoc
// @Summary      Actualizar cliente (solo los campos enviados)
// @Tags         customers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID del cliente"
// @Param        body  body  dto.UpdateCustomerRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.CustomerMutationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/customers/{id} [put]
func (h *CustomerHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in dto.UpdateCustomerRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(dto.CustomerMutationResponse{Message: "Cliente actualizado correctamente", Customer: *out})
}

// Delete godoc
// @Summary      Eliminar cliente
// @Description  409 si el cliente tiene oportunidades, actividades o interacciones.
// @Tags         customers
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del cliente"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/customers/{id} [delete]
func (h *CustomerHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Cliente eliminado correctamente"})
}

// Summary godoc
// @Summary      Resumen del cliente con agregados
// @Tags         customers
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del cliente"
// @Success      200  {object}  dto.CustomerSummaryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/customers/{id}/summary [get]
func (h *CustomerHandler) Summary(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.uc.Summary(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Opportunities GET /api/customers/:id/opportunities
func (h *CustomerHandler) Opportunities(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.opportunities.ListForCustomer(c.UserContext(), id, opportunityListQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Activities GET /api/customers/:id/activities
func (h *CustomerHandler) Activities(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.activities.ListForCustomer(c.UserContext(), id, activityListQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Interactions GET /api/customers/:id/interactions
func (h *CustomerHandler) Interactions(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.interactions.ListForCustomer(c.UserContext(), id, interactionListQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// ── query helpers compartidos ─────────────────────────────────────────────────

func pageRequest(c *fiber.Ctx) dto.PageRequest {
	return dto.PageRequest{Page: c.Query("page"), Limit: c.Query("limit")}
}

func dateRange(c *fiber.Ctx) dto.DateRangeRequest {
	return dto.DateRangeRequest{StartDate: c.Query("startDate"), EndDate: c.Query("endDate")}
}
