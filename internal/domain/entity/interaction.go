package entity

import "time"

// Tipos de interacción.
const (
	InteractionPhone   = "phone"
	InteractionEmail   = "email"
	InteractionMeeting = "meeting"
	InteractionChat    = "chat"
	InteractionSocial  = "social"
	InteractionWebsite = "website"
	InteractionOther   = "other"
)

// Dirección de la interacción.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

var (
	InteractionTypes      = []string{InteractionPhone, InteractionEmail, InteractionMeeting, InteractionChat, InteractionSocial, InteractionWebsite, InteractionOther}
	InteractionDirections = []string{DirectionInbound, DirectionOutbound}
)

// RecentInteractionWindow ventana para IsRecent.
const RecentInteractionWindow = 7 * 24 * time.Hour

// Interaction contacto registrado con un cliente (llamada, email, reunión...).
type Interaction struct {
	ID            int64
	Type          string
	Direction     string
	Subject       string
	Description   string
	Notes         string
	Date          time.Time
	Duration      *int // minutos
	Channel       string
	Tags          []string
	IsImportant   bool
	NeedsFollowUp bool
	FollowUpDate  *time.Time
	CustomerID    int64
	UserID        *int64
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Relaciones
	Customer *CustomerRef
	User     *UserRef
}

func (i *Interaction) IsInbound() bool  { return i.Direction == DirectionInbound }
func (i *Interaction) IsOutbound() bool { return i.Direction == DirectionOutbound }

// MarkImportant activa o desactiva el indicador de importancia.
func (i *Interaction) MarkImportant(important bool) { i.IsImportant = important }

// ScheduleFollowUp programa un seguimiento.
func (i *Interaction) ScheduleFollowUp(date time.Time) {
	i.NeedsFollowUp = true
	i.FollowUpDate = &date
}

// CompleteFollowUp limpia el seguimiento pendiente.
func (i *Interaction) CompleteFollowUp() {
	i.NeedsFollowUp = false
	i.FollowUpDate = nil
}

// IsRecent ocurrida en los últimos 7 días.
func (i *Interaction) IsRecent(now time.Time) bool {
	return now.Sub(i.Date) <= RecentInteractionWindow
}

// NeedsFollowUpSoon seguimiento dentro de las próximas 24 horas.
func (i *Interaction) NeedsFollowUpSoon(now time.Time) bool {
	if !i.NeedsFollowUp || i.FollowUpDate == nil {
		return false
	}
	diff := i.FollowUpDate.Sub(now)
	return diff > 0 && diff <= 24*time.Hour
}

// IsFollowUpOverdue seguimiento pendiente con fecha vencida.
func (i *Interaction) IsFollowUpOverdue(now time.Time) bool {
	if !i.NeedsFollowUp || i.FollowUpDate == nil {
		return false
	}
	return now.After(*i.FollowUpDate)
}

// DisplayDuration "1h 5m", "20m" o "N/A".
func (i *Interaction) DisplayDuration() string {
	if i.Duration == nil || *i.Duration == 0 {
		return "N/A"
	}
	return formatMinutes(*i.Duration)
}

// AddTag agrega una etiqueta si no existe.
func (i *Interaction) AddTag(tag string) {
	if tag == "" || contains(i.Tags, tag) {
		return
	}
	i.Tags = append(i.Tags, tag)
}

func IsValidInteractionType(s string) bool      { return contains(InteractionTypes, s) }
func IsValidInteractionDirection(s string) bool { return contains(InteractionDirections, s) }
