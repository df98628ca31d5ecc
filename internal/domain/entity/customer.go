package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de Customer.
const (
	CustomerProspect = "prospect"
	CustomerActive   = "active"
	CustomerInactive = "inactive"
	CustomerLost     = "lost"
)

// CustomerStatuses lista ordenada de estados válidos.
var CustomerStatuses = []string{CustomerProspect, CustomerActive, CustomerInactive, CustomerLost}

// Customer representa un cliente o prospecto del CRM.
// Es padre obligatorio de oportunidades, actividades e interacciones.
type Customer struct {
	ID             int64
	Name           string
	Company        string
	Industry       string
	Email          string
	Phone          string
	Address        string
	City           string
	PostalCode     string
	State          string
	Country        string
	Status         string
	Notes          string
	EstimatedValue decimal.NullDecimal
	Website        string
	EmployeeCount  *int
	Tags           []string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Relaciones (solo en GetByID con detalle)
	Opportunities []*Opportunity
	Interactions  []*Interaction
}

// DisplayName "Nombre (Empresa)" o solo el nombre.
func (c *Customer) DisplayName() string {
	if c.Company != "" {
		return c.Name + " (" + c.Company + ")"
	}
	return c.Name
}

// IsActive indica si el cliente está activo.
func (c *Customer) IsActive() bool { return c.Status == CustomerActive }

// IsProspect indica si el cliente es un prospecto.
func (c *Customer) IsProspect() bool { return c.Status == CustomerProspect }

// TotalOpportunityValue suma el valor de las oportunidades cargadas (nulos cuentan como 0).
func (c *Customer) TotalOpportunityValue() decimal.Decimal {
	total := decimal.Zero
	for _, o := range c.Opportunities {
		total = total.Add(o.ValueOrZero())
	}
	return total
}

// ActiveOpportunities oportunidades cargadas que no están cerradas.
func (c *Customer) ActiveOpportunities() []*Opportunity {
	out := make([]*Opportunity, 0, len(c.Opportunities))
	for _, o := range c.Opportunities {
		if o.IsActive() {
			out = append(out, o)
		}
	}
	return out
}

// CustomerRef resumen de cliente para relaciones.
type CustomerRef struct {
	ID      int64
	Name    string
	Company string
}

// IsValidCustomerStatus valida el estado.
func IsValidCustomerStatus(s string) bool { return contains(CustomerStatuses, s) }
