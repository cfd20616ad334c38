// Package pattern is the regex tier of the intent cascade. Rules are
// evaluated in order and the first match wins, so booking and data
// patterns sit above the generic ones.
package pattern

import (
	"regexp"
	"strings"

	"turnero/internal/domain"
	"turnero/internal/nlp"
)

type rule struct {
	intent     domain.Intent
	confidence float64
	re         *regexp.Regexp
}

// Rules run against folded text (lowercase, diacritics stripped), so
// they are written without accent alternations.
var rules = []rule{
	// Explicit data first: slot payloads outrank everything else.
	{domain.IntentGiveEmail, 0.97, regexp.MustCompile(`\b[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}\b`)},
	{domain.IntentGiveID, 0.95, regexp.MustCompile(`\b\d{1,2}\.\d{3}\.\d{3}(-\d)?\b`)},
	{domain.IntentGiveID, 0.90, regexp.MustCompile(`\b(ci|cedula)\s*:?\s*\d+`)},
	{domain.IntentGiveName, 0.95, regexp.MustCompile(`\b(mi nombre es|me llamo|soy)\s+[a-z]`)},

	// Booking.
	{domain.IntentBook, 0.95, regexp.MustCompile(`\b(quiero|necesito|deseo|me gustaria)\s+(un\s+)?(turno|cita|hora)\b`)},
	{domain.IntentBook, 0.95, regexp.MustCompile(`\b(sacar|agendar|reservar|apartar|pedir|solicitar)\s+(un\s+|una\s+)?(turno|cita|horario|cupo)\b`)},
	{domain.IntentBook, 0.95, regexp.MustCompile(`^turno$`)},
	{domain.IntentBook, 0.90, regexp.MustCompile(`\b(turno|cita)\s+(por favor|porfavor|porfa|urgente|rapido)\b`)},
	{domain.IntentBook, 0.90, regexp.MustCompile(`\b(podria|quisiera)\s+(agendar|reservar)\b`)},
	{domain.IntentBook, 0.85, regexp.MustCompile(`\bdame\s+(un\s+)?(horario|turno)\b`)},

	// Cancellation beats deny: "cancelar" is stronger than a bare no.
	{domain.IntentCancel, 0.95, regexp.MustCompile(`\b(cancelar|cancelo|anular)\b`)},
	{domain.IntentCancel, 0.90, regexp.MustCompile(`\b(ya no|no)\s+quiero\s+(el\s+)?turno\b`)},
	{domain.IntentCancel, 0.85, regexp.MustCompile(`\bno\s+quiero\s+(mas|seguir)\b`)},

	// Corrections.
	{domain.IntentChangeField, 0.95, regexp.MustCompile(`\b(cambiar|corregir|modificar)\s+(el\s+|la\s+|mi\s+)?(nombre|cedula|fecha|hora|horario|email|correo)\b`)},
	{domain.IntentChangeField, 0.90, regexp.MustCompile(`\bmi\s+(nombre|email|correo|cedula)\s+esta\s+mal\b`)},
	{domain.IntentChangeField, 0.90, regexp.MustCompile(`\bme\s+equivoque\b`)},

	// Informational queries.
	{domain.IntentAvailability, 0.90, regexp.MustCompile(`\b(que|cuales|cual)\s+(horarios|horas|turnos|dias)\s+(hay|tienen|estan|disponible|libre|trabajan|atienden)`)},
	{domain.IntentAvailability, 0.90, regexp.MustCompile(`\bhay\s+(turnos?|horarios|lugar|hueco|espacio)\b`)},
	{domain.IntentAvailability, 0.85, regexp.MustCompile(`\bcuando\s+(puedo|hay|tienen)\b`)},
	{domain.IntentAvailability, 0.85, regexp.MustCompile(`\b(horarios|franjas)\s+(disponibles?|libres?)\b`)},
	{domain.IntentAvailability, 0.80, regexp.MustCompile(`\b(tienen|hay)\s+(algo|algun|lugar)\s+(libre|disponible)\b`)},
	{domain.IntentAvailability, 0.75, regexp.MustCompile(`\bque\s+dias\s+(trabajan|atienden)\b`)},

	{domain.IntentCost, 0.95, regexp.MustCompile(`\b(cuanto)\s+(cuesta|sale|vale|cobran|me sale)\b`)},
	{domain.IntentCost, 0.90, regexp.MustCompile(`\b(precio|costo|arancel)\b`)},
	{domain.IntentCost, 0.85, regexp.MustCompile(`\bdebo\s+pagar\s+algo\b`)},

	{domain.IntentRequirements, 0.90, regexp.MustCompile(`\brequisitos\b`)},
	{domain.IntentRequirements, 0.90, regexp.MustCompile(`\bque\s+(documentos|papeles)\b`)},
	{domain.IntentRequirements, 0.85, regexp.MustCompile(`\bque\s+(necesito|debo)\s+(traer|llevar|presentar)\b`)},
	{domain.IntentRequirements, 0.80, regexp.MustCompile(`\bcomo\s+hago\s+para\s+sacar\s+(la\s+)?cedula\b`)},

	{domain.IntentLocation, 0.90, regexp.MustCompile(`\b(donde|adonde|ubicacion|direccion|como llego)\b`)},
	{domain.IntentLocation, 0.85, regexp.MustCompile(`\b(telefono|celular|contacto|numero|whatsapp)\b`)},
	{domain.IntentLocation, 0.80, regexp.MustCompile(`\bhablar\s+con\s+(un\s+)?(operador|persona|humano|alguien)\b`)},

	{domain.IntentWaitTime, 0.90, regexp.MustCompile(`\bcuanto\s+(tiempo|demora|espera|tarda)\b`)},
	{domain.IntentWaitTime, 0.90, regexp.MustCompile(`\btiempo\s+de\s+espera\b`)},
	{domain.IntentWaitTime, 0.85, regexp.MustCompile(`\bcuanto\s+(hay que|voy a|tengo que)\s+esperar\b`)},

	// Slot payload heuristics.
	{domain.IntentGiveDate, 0.85, regexp.MustCompile(`\b(hoy|manana|pasado manana)\b`)},
	{domain.IntentGiveDate, 0.85, regexp.MustCompile(`\b(lunes|martes|miercoles|jueves|viernes)\b`)},
	{domain.IntentGiveDate, 0.80, regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}([/-]\d{2,4})?\b`)},
	{domain.IntentChooseTime, 0.90, regexp.MustCompile(`\b\d{1,2}:\d{2}\b`)},
	{domain.IntentChooseTime, 0.85, regexp.MustCompile(`\ba\s+las\s+\d{1,2}\b`)},
	{domain.IntentChooseTime, 0.80, regexp.MustCompile(`\b\d{1,2}\s*(am|pm|hs|horas?)\b`)},
	{domain.IntentGiveID, 0.75, regexp.MustCompile(`^\d{6,8}$`)},

	// Ambiguity markers.
	{domain.IntentAmbiguous, 0.80, regexp.MustCompile(`\b(primera hora|temprano|lo antes posible|cuanto antes|lo mas pronto)\b`)},
	{domain.IntentAmbiguous, 0.75, regexp.MustCompile(`\b(que me recomiendas|mejor horario|me conviene)\b`)},

	// Social.
	{domain.IntentGreet, 0.90, regexp.MustCompile(`^(hola|ola|hey|buenas|buen dia|buenos dias|buenas tardes)\b`)},
	{domain.IntentGoodbye, 0.90, regexp.MustCompile(`\b(chau|chao|adios|hasta luego|nos vemos|bye)\b`)},
	{domain.IntentThanks, 0.90, regexp.MustCompile(`\b(gracias|muchas gracias|agradezco|grax)\b`)},

	// Bare yes/no only as full phrases to avoid false positives.
	{domain.IntentAffirm, 0.95, regexp.MustCompile(`^(si|ok|okay|dale|perfecto|correcto|exacto|confirmo|de acuerdo)$`)},
	{domain.IntentAffirm, 0.90, regexp.MustCompile(`^si\s+(por favor|porfa|esta bien|confirmo)$`)},
	{domain.IntentNegate, 0.95, regexp.MustCompile(`^(no|nop|nope)$`)},
	{domain.IntentNegate, 0.85, regexp.MustCompile(`\bno\s+(me\s+)?(sirve|conviene|puedo|viene bien)\b`)},
	{domain.IntentNegate, 0.80, regexp.MustCompile(`\bprefiero\s+(otro|otra)\s+(dia|hora|horario)\b`)},
}

// Classifier matches messages against the ordered rule table.
type Classifier struct{}

func New() *Classifier { return &Classifier{} }

// Classify returns the first matching rule's verdict, or a zero signal
// when nothing matches. Rules run against both the folded text, which
// keeps the punctuation that entity shapes need, and the normalized
// text, where misspellings have been rewritten.
func (c *Classifier) Classify(message string) domain.Signal {
	folded := strings.TrimSpace(nlp.Fold(message))
	normalized := nlp.Normalize(message)
	for _, r := range rules {
		if r.re.MatchString(folded) || r.re.MatchString(normalized) {
			return domain.Signal{Intent: r.intent, Confidence: r.confidence, Source: domain.SourcePattern}
		}
	}
	return domain.Signal{Intent: domain.IntentUnknown, Confidence: 0, Source: domain.SourcePattern}
}
