package domain

import "time"

// Intent is a canonical intent label. Labels that face the external
// classifier keep their Spanish wire form.
type Intent string

const (
	IntentGreet        Intent = "greet"
	IntentGoodbye      Intent = "goodbye"
	IntentThanks       Intent = "agradecimiento"
	IntentBook         Intent = "agendar_turno"
	IntentAvailability Intent = "consultar_disponibilidad"
	IntentCost         Intent = "consultar_costo"
	IntentRequirements Intent = "consultar_requisitos"
	IntentLocation     Intent = "consultar_ubicacion"
	IntentWaitTime     Intent = "consulta_tiempo_espera"
	IntentGiveName     Intent = "informar_nombre"
	IntentGiveID       Intent = "informar_cedula"
	IntentGiveDate     Intent = "informar_fecha"
	IntentGiveEmail    Intent = "proporcionar_email"
	IntentChooseTime   Intent = "elegir_horario"
	IntentAffirm       Intent = "affirm"
	IntentNegate       Intent = "deny"
	IntentCancel       Intent = "cancelar_turno"
	IntentChangeField  Intent = "solicitar_cambio_datos"
	IntentAmbiguous    Intent = "frase_ambigua"
	IntentUnknown      Intent = "nlu_fallback"
)

// Source names the classifier (or fusion rule) that produced a signal.
type Source string

const (
	SourceContext   Source = "context"
	SourcePattern   Source = "pattern"
	SourceFuzzy     Source = "fuzzy"
	SourceExternal  Source = "external"
	SourceConsensus Source = "consensus"
	SourceFallback  Source = "fallback"
	SourceNone      Source = "none"
)

// Signal is one classifier's verdict for a message.
type Signal struct {
	Intent     Intent
	Confidence float64
	Source     Source
}

// Slot identifies one piece of booking data.
type Slot string

const (
	SlotName  Slot = "nombre"
	SlotID    Slot = "cedula"
	SlotDate  Slot = "fecha"
	SlotTime  Slot = "hora"
	SlotEmail Slot = "email"
)

// SlotOrder is the order slots are requested in.
var SlotOrder = []Slot{SlotName, SlotID, SlotDate, SlotTime, SlotEmail}

// Slots holds the collected booking data for one conversation.
type Slots struct {
	Name  string `json:"nombre,omitempty"`
	ID    string `json:"cedula,omitempty"`
	Date  string `json:"fecha,omitempty"`
	Time  string `json:"hora,omitempty"`
	Email string `json:"email,omitempty"`
}

func (s *Slots) Get(slot Slot) string {
	switch slot {
	case SlotName:
		return s.Name
	case SlotID:
		return s.ID
	case SlotDate:
		return s.Date
	case SlotTime:
		return s.Time
	case SlotEmail:
		return s.Email
	}
	return ""
}

func (s *Slots) Set(slot Slot, value string) {
	switch slot {
	case SlotName:
		s.Name = value
	case SlotID:
		s.ID = value
	case SlotDate:
		s.Date = value
	case SlotTime:
		s.Time = value
	case SlotEmail:
		s.Email = value
	}
}

func (s *Slots) Clear(slot Slot) { s.Set(slot, "") }

// Missing returns the first unfilled slot in collection order, or "" when
// every slot is filled.
func (s *Slots) Missing() Slot {
	for _, slot := range SlotOrder {
		if s.Get(slot) == "" {
			return slot
		}
	}
	return ""
}

func (s *Slots) Complete() bool { return s.Missing() == "" }

// ConfirmationTicket is the record emitted once the user confirms a
// completed booking.
type ConfirmationTicket struct {
	ConversationID string    `json:"conversation_id"`
	Code           string    `json:"codigo"`
	Name           string    `json:"nombre"`
	NationalID     string    `json:"cedula"`
	Date           string    `json:"fecha"`
	Time           string    `json:"hora"`
	Email          string    `json:"email"`
	IssuedAt       time.Time `json:"issued_at"`
}

// SlotCapacity reports remaining capacity for one bookable time.
type SlotCapacity struct {
	Time      string `json:"hora"`
	Remaining int    `json:"disponibles"`
}

// TurnRequest is one inbound user message.
type TurnRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

// TurnResult is the outcome of processing one turn.
type TurnResult struct {
	ConversationID string              `json:"conversation_id"`
	Intent         Intent              `json:"intent"`
	Confidence     float64             `json:"confidence"`
	Source         Source              `json:"source"`
	Reply          string              `json:"reply"`
	Slots          Slots               `json:"slots"`
	Ticket         *ConfirmationTicket `json:"ticket,omitempty"`
}
