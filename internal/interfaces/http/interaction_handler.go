package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/crm-api/internal/application/dto"
	"github.com/jhoicas/crm-api/internal/application/usecase"
)

// InteractionHandler maneja las peticiones HTTP de interacciones (protegido).
type InteractionHandler struct {
	uc *usecase.InteractionUseCase
}

// NewInteractionHandler construye el handler.
func NewInteractionHandler(uc *usecase.InteractionUseCase) *InteractionHandler {
	return &InteractionHandler{uc: uc}
}

func interactionListQuery(c *fiber.Ctx) dto.InteractionListQuery {
	return dto.InteractionListQuery{
		Search:           c.Query("search"),
		Type:             c.Query("type"),
		Direction:        c.Query("direction"),
		CustomerID:       c.Query("customerId"),
		UserID:           c.Query("userId"),
		Important:        c.Query("isImportant"),
		NeedsFollowUp:    c.Query("needsFollowUp"),
		PageRequest:      pageRequest(c),
		DateRangeRequest: dateRange(c),
	}
}

// List godoc
// @Summary      Listar interacciones
// @Tags         interactions
// @Security     Bearer
// @Produce      json
// @Param        search         query  string  false  "Busca en asunto y descripción"
// @Param        type           query  string  false  "phone | email | meeting | chat | social | website | other"
// @Param        direction      query  string  false  "inbound | outbound"
// @Param        customerId     query  int     false  "Cliente"
// @Param        userId         query  int     false  "Usuario"
// @Param        isImportant    query  bool    false  "Solo importantes"
// @Param        needsFollowUp  query  bool    false  "Con seguimiento pendiente"
// @Param        startDate      query  string  false  "Creada desde"
// @Param        endDate        query  string  false  "Creada hasta (inclusivo)"
// @Param        page           query  int     false  "Página"  default(1)
// @Param        limit          query  int     false  "Límite"  default(10)
// @Success      200  {object}  dto.InteractionListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/interactions [get]
func (h *InteractionHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), interactionListQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// ByCustomer GET /api/interactions/customer/:customerId
func (h *InteractionHandler) ByCustomer(c *fiber.Ctx) error {
	customerID, err := paramID(c, "customerId")
	if err != nil {
		return err
	}
	out, err := h.uc.ListForCustomer(c.UserContext(), customerID, interactionListQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// ByUser GET /api/interactions/user/:userId
func (h *InteractionHandler) ByUser(c *fiber.Ctx) error {
	userID, err := paramID(c, "userId")
	if err != nil {
		return err
	}
	out, err := h.uc.ListForUser(c.UserContext(), userID, interactionListQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Recent GET /api/interactions/recent/:days
func (h *InteractionHandler) Recent(c *fiber.Ctx) error {
	out, err := h.uc.Recent(c.UserContext(), c.Params("days"), interactionListQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Stats godoc
// @Summary      Resumen de interacciones por tipo y dirección
// @Tags         interactions
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.InteractionStatsResponse
// @Router       /api/interactions/stats/summary [get]
func (h *InteractionHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"stats": out})
}

// GetByID godoc
// @Summary      Obtener interacción
// @Tags         interactions
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la interacción"
// @Success      200  {object}  dto.InteractionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/interactions/{id} [get]
func (h *InteractionHandler) GetByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"interaction": out})
}

// Create godoc
// @Summary      Registrar interacción
// @Description  Sin userId la interacción queda a nombre del usuario autenticado.
// @Tags         interactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInteractionRequest  true  "Datos de la interacción"
// @Success      201   {object}  dto.InteractionMutationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/interactions [post]
func (h *InteractionHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInteractionRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), actor(c), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.InteractionMutationResponse{Message: "Interacción registrada correctamente", Interaction: *out})
}

// Update godoc
// @Summary      Actualizar interacción (solo los campos enviados)
// @Tags         interactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID de la interacción"
// @Param        body  body  dto.UpdateInteractionRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.InteractionMutationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/interactions/{id} [put]
func (h *InteractionHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in dto.UpdateInteractionRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(dto.InteractionMutationResponse{Message: "Interacción actualizada correctamente", Interaction: *out})
}

// MarkImportant PATCH /api/interactions/:id/important
func (h *InteractionHandler) MarkImportant(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in dto.MarkImportantRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &in); err != nil {
			return err
		}
	}
	out, err := h.uc.MarkImportant(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(dto.InteractionMutationResponse{Message: "Interacción actualizada", Interaction: *out})
}

// FollowUp PATCH /api/interactions/:id/follow-up
// Con date programa el seguimiento; sin date lo marca como realizado.
func (h *InteractionHandler) FollowUp(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in dto.FollowUpRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &in); err != nil {
			return err
		}
	}
	out, err := h.uc.FollowUp(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	msg := "Seguimiento completado"
	if in.Date != nil {
		msg = "Seguimiento programado"
	}
	return c.JSON(dto.InteractionMutationResponse{Message: msg, Interaction: *out})
}

// Delete godoc
// @Summary      Eliminar interacción
// @Tags         interactions
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la interacción"
// @Success      200  {object}  dto.MessageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/interactions/{id} [delete]
func (h *InteractionHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.uc.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Interacción eliminada correctamente"})
}
