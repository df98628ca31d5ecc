package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/crm-api/internal/domain/entity"
)

// Los mapeos reciben now para calcular los campos derivados de forma determinista.

func nullDecimal(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

// ToCustomerResponse mapea un cliente y sus relaciones cargadas.
func ToCustomerResponse(c *entity.Customer, now time.Time) CustomerResponse {
	out := CustomerResponse{
		ID:             c.ID,
		Name:           c.Name,
		Company:        c.Company,
		Industry:       c.Industry,
		Email:          c.Email,
		Phone:          c.Phone,
		Address:        c.Address,
		City:           c.City,
		PostalCode:     c.PostalCode,
		State:          c.State,
		Country:        c.Country,
		Status:         c.Status,
		Notes:          c.Notes,
		EstimatedValue: nullDecimal(c.EstimatedValue),
		Website:        c.Website,
		EmployeeCount:  c.EmployeeCount,
		Tags:           NonNilTags(c.Tags),
		DisplayName:    c.DisplayName(),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
	if c.Opportunities != nil {
		out.Opportunities = ToOpportunityResponses(c.Opportunities, now)
	}
	if c.Interactions != nil {
		out.Interactions = ToInteractionResponses(c.Interactions, now)
	}
	return out
}

// ToCustomerResponses mapea una lista de clientes.
func ToCustomerResponses(list []*entity.Customer, now time.Time) []CustomerResponse {
	out := make([]CustomerResponse, 0, len(list))
	for _, c := range list {
		out = append(out, ToCustomerResponse(c, now))
	}
	return out
}

func toCustomerRef(r *entity.CustomerRef) *CustomerRefResponse {
	if r == nil {
		return nil
	}
	return &CustomerRefResponse{ID: r.ID, Name: r.Name, Company: r.Company}
}

func toUserRef(r *entity.UserRef) *UserRefResponse {
	if r == nil {
		return nil
	}
	return &UserRefResponse{ID: r.ID, Name: r.Name, Email: r.Email}
}

// ToOpportunityResponse mapea una oportunidad con cliente y actividades cargadas.
func ToOpportunityResponse(o *entity.Opportunity, now time.Time) OpportunityResponse {
	out := OpportunityResponse{
		ID:                o.ID,
		Title:             o.Title,
		Description:       o.Description,
		Value:             nullDecimal(o.Value),
		DisplayValue:      o.DisplayValue(),
		Stage:             o.Stage,
		Probability:       o.Probability,
		ExpectedCloseDate: o.ExpectedCloseDate,
		ActualCloseDate:   o.ActualCloseDate,
		Source:            o.Source,
		LossReason:        o.LossReason,
		Tags:              NonNilTags(o.Tags),
		CustomerID:        o.CustomerID,
		Customer:          toCustomerRef(o.Customer),
		IsClosed:          o.IsClosed(),
		IsWon:             o.IsWon(),
		IsOverdue:         o.IsOverdue(now),
		DaysToClose:       o.DaysToClose(now),
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
	if o.Activities != nil {
		out.Activities = ToActivityResponses(o.Activities, now)
	}
	return out
}

// ToOpportunityResponses mapea una lista de oportunidades.
func ToOpportunityResponses(list []*entity.Opportunity, now time.Time) []OpportunityResponse {
	out := make([]OpportunityResponse, 0, len(list))
	for _, o := range list {
		out = append(out, ToOpportunityResponse(o, now))
	}
	return out
}

// ToActivityResponse mapea una actividad. El estado expuesto es el efectivo.
func ToActivityResponse(a *entity.Activity, now time.Time) ActivityResponse {
	out := ActivityResponse{
		ID:                a.ID,
		Title:             a.Title,
		Description:       a.Description,
		Type:              a.Type,
		Status:            a.EffectiveStatus(now),
		Priority:          a.Priority,
		DueDate:           a.DueDate,
		CompletedAt:       a.CompletedAt,
		EstimatedDuration: a.EstimatedDuration,
		ActualDuration:    a.ActualDuration,
		DisplayDuration:   a.DisplayDuration(),
		Result:            a.Result,
		Notes:             a.Notes,
		Tags:              NonNilTags(a.Tags),
		CustomerID:        a.CustomerID,
		OpportunityID:     a.OpportunityID,
		AssignedToID:      a.AssignedToID,
		Customer:          toCustomerRef(a.Customer),
		AssignedTo:        toUserRef(a.AssignedTo),
		IsOverdue:         a.IsOverdue(now),
		IsDueToday:        a.IsDueToday(now),
		IsDueSoon:         a.IsDueSoon(now),
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
	if a.Opportunity != nil {
		out.Opportunity = &OpportunityRefResponse{ID: a.Opportunity.ID, Title: a.Opportunity.Title, Stage: a.Opportunity.Stage}
	}
	return out
}

// ToActivityResponses mapea una lista de actividades.
func ToActivityResponses(list []*entity.Activity, now time.Time) []ActivityResponse {
	out := make([]ActivityResponse, 0, len(list))
	for _, a := range list {
		out = append(out, ToActivityResponse(a, now))
	}
	return out
}

// ToInteractionResponse mapea una interacción.
func ToInteractionResponse(i *entity.Interaction, now time.Time) InteractionResponse {
	return InteractionResponse{
		ID:                i.ID,
		Type:              i.Type,
		Direction:         i.Direction,
		Subject:           i.Subject,
		Description:       i.Description,
		Notes:             i.Notes,
		Date:              i.Date,
		Duration:          i.Duration,
		DisplayDuration:   i.DisplayDuration(),
		Channel:           i.Channel,
		Tags:              NonNilTags(i.Tags),
		IsImportant:       i.IsImportant,
		NeedsFollowUp:     i.NeedsFollowUp,
		FollowUpDate:      i.FollowUpDate,
		IsRecent:          i.IsRecent(now),
		NeedsFollowUpSoon: i.NeedsFollowUpSoon(now),
		IsFollowUpOverdue: i.IsFollowUpOverdue(now),
		CustomerID:        i.CustomerID,
		UserID:            i.UserID,
		Customer:          toCustomerRef(i.Customer),
		User:              toUserRef(i.User),
		CreatedAt:         i.CreatedAt,
		UpdatedAt:         i.UpdatedAt,
	}
}

// ToInteractionResponses mapea una lista de interacciones.
func ToInteractionResponses(list []*entity.Interaction, now time.Time) []InteractionResponse {
	out := make([]InteractionResponse, 0, len(list))
	for _, i := range list {
		out = append(out, ToInteractionResponse(i, now))
	}
	return out
}

// ToUserResponse mapea un usuario sin exponer el hash.
func ToUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		FullName:    u.FullName(),
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
