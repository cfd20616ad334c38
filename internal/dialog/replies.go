package dialog

import (
	"fmt"
	"strings"
	"time"

	"turnero/internal/domain"
	"turnero/internal/extract"
	"turnero/internal/session"
)

const (
	msgGreet   = "¡Hola! Soy el asistente de turnos para cédulas. Puedo agendarte un turno o contarte sobre requisitos, costos, horarios y ubicación. ¿En qué te ayudo?"
	msgMenu    = "Puedo ayudarte a agendar un turno para tu cédula, o contarte sobre requisitos, costos, horarios y ubicación. ¿Qué necesitás?"
	msgThanks  = "¡De nada! Cualquier otra cosa, avisame."
	msgGoodbye = "¡Hasta luego! Que tengas un buen día."

	msgCost         = "El trámite de cédula cuesta 25.000 guaraníes. Se paga solo en efectivo."
	msgRequirements = "Para el trámite necesitás: cédula anterior (si es renovación) o certificado de nacimiento original (si es la primera vez), y 25.000 guaraníes en efectivo."
	msgLocation     = "Estamos en Av. Pioneros del Este, Ciudad del Este. Atendemos de lunes a viernes, de 07:00 a 15:00."

	msgCancelled       = "Listo, cancelé el turno y borré tus datos. Si querés empezar de nuevo, decime."
	msgNothingToCancel = "No tenés ningún turno en proceso para cancelar. ¿Querés agendar uno?"
	msgAvailabilityErr = "No pude consultar la disponibilidad en este momento, intentá de nuevo en un rato."
	msgWhichField      = "¿Qué dato querés cambiar: nombre, cédula, fecha, hora o email?"
)

var prompts = map[domain.Slot]string{
	domain.SlotName:  "¿Cuál es tu nombre completo?",
	domain.SlotID:    "¿Cuál es tu número de cédula?",
	domain.SlotDate:  "¿Para qué fecha querés el turno? Atendemos de lunes a viernes.",
	domain.SlotTime:  "¿A qué hora te viene bien? Atendemos de 07:00 a 15:00.",
	domain.SlotEmail: "¿A qué email te enviamos la confirmación?",
}

var slotLabels = map[domain.Slot]string{
	domain.SlotName:  "Nombre",
	domain.SlotID:    "Cédula",
	domain.SlotDate:  "Fecha",
	domain.SlotTime:  "Hora",
	domain.SlotEmail: "Email",
}

func prompt(slot domain.Slot) string { return prompts[slot] }

// summary renders the confirmation recap with correction instructions.
func summary(slots domain.Slots) string {
	var b strings.Builder
	b.WriteString("Perfecto, estos son los datos de tu turno:\n")
	for _, slot := range domain.SlotOrder {
		fmt.Fprintf(&b, "• %s: %s\n", slotLabels[slot], slots.Get(slot))
	}
	b.WriteString("\n¿Confirmás el turno? Respondé \"sí\" para confirmar, \"cambiar <dato>\" para corregir algo, o \"cancelar\".")
	return b.String()
}

// ConfirmedReply renders the post-booking message for a ticket.
func ConfirmedReply(t *domain.ConfirmationTicket) string {
	return fmt.Sprintf(
		"¡Turno confirmado! 🎉\nCódigo: %s\n%s, te esperamos el %s a las %s en Av. Pioneros del Este, Ciudad del Este.\nTe enviamos la confirmación a %s. Recordá traer 25.000 guaraníes en efectivo.",
		t.Code, t.Name, t.Date, t.Time, t.Email,
	)
}

// slotIssue explains why the awaited slot could not be filled from the
// text, naming the expected format.
func slotIssue(slot domain.Slot, text string, today time.Time) string {
	var err error
	switch slot {
	case domain.SlotName:
		_, err = extract.ParseName(text)
	case domain.SlotID:
		_, err = extract.NormalizeID(text)
	case domain.SlotDate:
		_, err = extract.ResolveDate(text, today)
	case domain.SlotTime:
		_, err = extract.ResolveTime(text)
	case domain.SlotEmail:
		_, err = extract.ParseEmail(text)
	}
	if err == nil {
		return prompt(slot)
	}
	return fmt.Sprintf("Hmm, %s. %s", err.Error(), prompt(slot))
}

func reprompt(conv *session.Conversation, answer string) string {
	switch conv.State {
	case session.StateCollecting:
		return answer + "\n\nSeguimos con tu turno: " + prompt(conv.Awaiting)
	case session.StateConfirming:
		return answer + "\n\n" + summary(conv.Slots)
	}
	return answer
}
