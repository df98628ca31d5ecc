package entity

import (
	"fmt"
	"time"
)

// Tipos de actividad.
const (
	ActivityCall     = "call"
	ActivityEmail    = "email"
	ActivityMeeting  = "meeting"
	ActivityTask     = "task"
	ActivityNote     = "note"
	ActivityFollowUp = "follow-up"
)

// Estados de actividad. StatusOverdue nunca se persiste: se calcula al leer
// (pending con dueDate vencido).
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusOverdue    = "overdue"
)

// Prioridades de actividad.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

var (
	ActivityTypes      = []string{ActivityCall, ActivityEmail, ActivityMeeting, ActivityTask, ActivityNote, ActivityFollowUp}
	ActivityStatuses   = []string{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled, StatusOverdue}
	ActivityPriorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}
)

// transiciones permitidas por actualización directa del estado.
var activityTransitions = map[string][]string{
	StatusPending:    {StatusInProgress, StatusCompleted, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

// Activity tarea/llamada/reunión asociada a un cliente y opcionalmente a una oportunidad y un usuario.
type Activity struct {
	ID                int64
	Title             string
	Description       string
	Type              string
	Status            string
	Priority          string
	DueDate           *time.Time
	CompletedAt       *time.Time
	EstimatedDuration *int // minutos
	ActualDuration    *int // minutos
	Result            string
	Notes             string
	Tags              []string
	CustomerID        int64
	OpportunityID     *int64
	AssignedToID      *int64
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// Relaciones
	Customer    *CustomerRef
	Opportunity *OpportunityRef
	AssignedTo  *UserRef
}

func (a *Activity) IsCompleted() bool { return a.Status == StatusCompleted }
func (a *Activity) IsPending() bool   { return a.Status == StatusPending }

// Complete marca la actividad como completada, sin importar el estado previo.
func (a *Activity) Complete(result string, actualDuration *int, now time.Time) {
	a.Status = StatusCompleted
	a.CompletedAt = &now
	if result != "" {
		a.Result = result
	}
	if actualDuration != nil && *actualDuration > 0 {
		d := *actualDuration
		a.ActualDuration = &d
	}
}

// Cancel marca la actividad como cancelada y agrega el motivo a las notas existentes.
func (a *Activity) Cancel(reason string) {
	a.Status = StatusCancelled
	if reason != "" {
		a.Notes += "\nCancelled: " + reason
	}
}

// IsOverdue pending con fecha de vencimiento anterior a now.
func (a *Activity) IsOverdue(now time.Time) bool {
	return a.Status == StatusPending && a.DueDate != nil && a.DueDate.Before(now)
}

// IsDueToday vence en el mismo día calendario que now (zona de now).
func (a *Activity) IsDueToday(now time.Time) bool {
	if a.DueDate == nil || a.isClosed() {
		return false
	}
	due := a.DueDate.In(now.Location())
	y1, m1, d1 := due.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// IsDueSoon vence dentro de las próximas 24 horas.
func (a *Activity) IsDueSoon(now time.Time) bool {
	if a.DueDate == nil || a.isClosed() {
		return false
	}
	diff := a.DueDate.Sub(now)
	return diff > 0 && diff <= 24*time.Hour
}

// EffectiveStatus el estado que se expone en la API: overdue si aplica, si no el persistido.
func (a *Activity) EffectiveStatus(now time.Time) string {
	if a.IsOverdue(now) {
		return StatusOverdue
	}
	return a.Status
}

// DisplayDuration "1h 30m", "45m" o "N/A". Prefiere la duración real sobre la estimada.
func (a *Activity) DisplayDuration() string {
	d := a.ActualDuration
	if d == nil || *d == 0 {
		d = a.EstimatedDuration
	}
	if d == nil || *d == 0 {
		return "N/A"
	}
	return formatMinutes(*d)
}

func (a *Activity) isClosed() bool {
	return a.Status == StatusCompleted || a.Status == StatusCancelled
}

// CanTransitionActivity valida un cambio de estado por actualización directa.
// Mantener el mismo estado siempre es válido. overdue no es un estado asignable.
func CanTransitionActivity(from, to string) bool {
	if to == StatusOverdue {
		return false
	}
	if from == to {
		return true
	}
	return contains(activityTransitions[from], to)
}

func IsValidActivityType(s string) bool     { return contains(ActivityTypes, s) }
func IsValidActivityStatus(s string) bool   { return contains(ActivityStatuses, s) }
func IsValidActivityPriority(s string) bool { return contains(ActivityPriorities, s) }

func formatMinutes(total int) string {
	h, m := total/60, total%60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
