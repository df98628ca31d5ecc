package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/application/usecase"
)

// ActivityHandler maneja las peticiones HTTP de actividades (protegido).
// Los usuarios que no son admin solo ven las actividades asignadas a ellos.
type ActivityHandler struct {
	uc *usecase.ActivityUseCase
}

// NewActivityHandler construye el handler.
func NewActivityHandler(uc *usecase.ActivityUseCase) *ActivityHandler {
	return &ActivityHandler{uc: uc}
}

func activityListQuery(c *fiber.Ctx) dto.ActivityListQuery {
	return dto.ActivityListQuery{
		Search:           c.Query("search"),
		Status:           c.Query("status"),
		Type:             c.Query("type"),
		Priority:         c.Query("priority"),
		CustomerID:       c.Query("customerId"),
		OpportunityID:    c.Query("opportunityId"),
		AssignedToID:     c.Query("assignedToId"),
		PageRequest:      pageRequest(c),
		DateRangeRequest: dateRange(c),
	}
}

// List godoc
// @Summary      Listar actividades
// @Description  status=overdue devuelve las pendientes con fecha vencida. El rango de fechas aplica a dueDate.
// @Tags         activities
// @Security     Bearer
// @Produce      json
// @Param        search        query  string  false  "Busca en título y descripción"
// @Param        status        query  string  false  "pending | in_progress | completed | cancelled | overdue"
// @Param        type          query  string  false  "call | email | meeting | task | note | follow-up"
// @Param        priority      query  string  false  "low | medium | high | urgent"
// @Param        customerId    query  int     false  "Cliente"
// @Param        assignedToId  query  int     false  "Usuario asignado (solo admin)"
// @Param        startDate     query  string  false  "Vence desde"
// @Param        endDate       query  string  false  "Vence hasta (inclusivo)"
// @Param        page          query  int     false  "Página"  default(1)
// @Param        limit         query  int     false  "Límite"  default(10)
// @Success      200  {object}  dto.ActivityListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/activities [get]
func (h *ActivityHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), actor(c), activityListQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// DueToday GET /api/activities/due/today
func (h *ActivityHandler) DueToday(c *fiber.Ctx) error {
	out, err := h.uc.DueToday(c.UserContext(), actor(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Overdue GET /api/activities/due/overdue
func (h *ActivityHandler) Overdue(c *fiber.Ctx) error {
	out, err := h.uc.Overdue(c.UserContext(), actor(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// ByUser GET /api/activities/user/:userId
func (h *ActivityHandler) ByUser(c *fiber.Ctx) error {
	userID, err := paramID(c, "userId")
	if err != nil {
		return err
	}
	out, err := h.uc.ListForUser(c.UserContext(), userID, activityListQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener actividad
// @Tags         activities
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la actividad"
// @Success      200  {object}  dto.ActivityResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/activities/{id} [get]
func (h *ActivityHandler) GetByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"activity": out})
}

// Create godoc
// @Summary      Crear actividad
// @Description  Sin assignedToId la actividad queda asignada al usuario autenticado.
// @Tags         activities
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateActivityRequest  true  "Datos de la actividad"
// @Success      201   {object}  dto.ActivityMutationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/activities [post]
func (h *ActivityHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateActivityRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), actor(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ActivityMutationResponse{Message: "Actividad creada correctamente", Activity: *out})
}

// Update godoc
// @Summary      Actualizar actividad (solo los campos enviados)
// @Description  Los cambios de estado siguen pending → in_progress → completed/cancelled.
// @Tags         activities
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID de la actividad"
// @Param        body  body  dto.UpdateActivityRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.ActivityMutationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/activities/{id} [put]
func (h *ActivityHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in dto.UpdateActivityRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(dto.ActivityMutationResponse{Message: "Actividad actualizada correctamente", Activity: *out})
}

// Complete godoc
// @Summary      Completar actividad
// @Tags         activities
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID de la actividad"
// @Param        body  body  dto.CompleteActivityRequest  false  "Resultado y duración real"
// @Success      200   {object}  dto.ActivityMutationResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/activities/{id}/complete [post]
func (h *ActivityHandler) Complete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in dto.CompleteActivityRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &in); err != nil {
			return err
		}
	}
	out, err := h.uc.Complete(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(dto.ActivityMutationResponse{Message: "Actividad completada", Activity: *out})
}

// Cancel godoc
// @Summary      Cancelar actividad
// @Tags         activities
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID de la actividad"
// @Param        body  body  dto.CancelActivityRequest  false  "Motivo"
// @Success      200   {object}  dto.ActivityMutationResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/activities/{id}/cancel [post]
func (h *ActivityHandler) Cancel(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in dto.CancelActivityRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &in); err != nil {
			return err
		}
	}
	out, err := h.uc.Cancel(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(dto.ActivityMutationResponse{Message: "Actividad cancelada", Activity: *out})
}

// Delete godoc
// @Summary      Eliminar actividad
// @Tags         activities
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la actividad"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/activities/{id} [delete]
func (h *ActivityHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Actividad eliminada correctamente"})
}
