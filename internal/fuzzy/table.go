package fuzzy

import (
	"encoding/json"
	"fmt"
	"os"

	"turnero/internal/domain"
)

// Tiers groups an intent's keywords by membership strength.
type Tiers struct {
	High   []string `json:"alta"`
	Medium []string `json:"media"`
	Low    []string `json:"baja"`
}

// Table maps each intent to its keyword tiers. Keywords are stored in
// canonical folded form; misspellings are recovered upstream by the
// spelling normalizer.
type Table map[domain.Intent]Tiers

// DefaultTable covers the intents the fuzzy tier is responsible for.
// Slot payloads (dates, times, IDs, emails) are left to the pattern
// tier, which recognizes their shapes directly.
func DefaultTable() Table {
	return Table{
		domain.IntentBook: {
			High:   []string{"quiero", "necesito", "marcar", "agendar", "sacar", "reservar", "turno", "cita"},
			Medium: []string{"dame", "porfavor", "porfa", "hora"},
			Low:    []string{"podria", "me gustaria", "quisiera", "che", "amigo"},
		},
		domain.IntentAvailability: {
			High:   []string{"cuando", "que dia", "que hora", "disponible", "horarios", "turnos", "hay", "tienen", "hueco", "libre"},
			Medium: []string{"puedo", "hoy", "manana", "tarde", "temprano"},
			Low:    []string{"dia", "semana", "mejor", "recomiendas"},
		},
		domain.IntentRequirements: {
			High:   []string{"que documentos", "requisitos", "papeles", "que necesito", "documentos"},
			Medium: []string{"llevar", "presentar", "traer"},
			Low:    []string{"sacar", "tramite", "primera vez"},
		},
		domain.IntentCost: {
			High:   []string{"cuanto", "costo", "precio", "cuanto vale", "cuesta"},
			Medium: []string{"sale", "pagar", "cobran", "gratis"},
			Low:    []string{"hay que", "tengo que"},
		},
		domain.IntentLocation: {
			High:   []string{"donde", "ubicacion", "direccion", "como llego", "contacto", "telefono", "numero"},
			Medium: []string{"quedan", "estan", "llamar", "lejos", "cerca", "llegar"},
			Low:    []string{"oficina", "lugar", "vivo"},
		},
		domain.IntentWaitTime: {
			High:   []string{"cuanto tiempo", "tiempo de espera", "demora", "tarda", "esperar"},
			Medium: []string{"espera", "fila", "gente"},
			Low:    []string{"mucho", "rapido"},
		},
		domain.IntentChooseTime: {
			High:   []string{"a las", "para las", "prefiero"},
			Medium: []string{"horario", "mejor para"},
			Low:    []string{"esa", "ese"},
		},
		domain.IntentChangeField: {
			High:   []string{"cambiar", "corregir", "modificar"},
			Medium: []string{"esta mal", "no es", "no me llamo"},
			Low:    []string{"incorrecto", "erroneo", "equivocado"},
		},
		domain.IntentCancel: {
			High:   []string{"cancelar", "cancelo", "anular", "cancelarlo"},
			Medium: []string{"no quiero", "mejor no", "dejarlo"},
			Low:    []string{"olvidar", "dejar"},
		},
		domain.IntentAffirm: {
			High:   []string{"si", "confirmo", "acepto", "ok", "vale", "correcto", "exacto", "perfecto"},
			Medium: []string{"esta bien", "de acuerdo", "claro"},
			Low:    []string{"bien", "bueno"},
		},
		domain.IntentAmbiguous: {
			High: []string{
				"temprano", "lo antes posible", "el que sea", "cualquiera", "lo que tengan",
				"urgente", "apurado", "rapido", "ahora mismo", "cuanto antes", "lo mas pronto",
			},
			Medium: []string{"da igual", "lo que sea", "pronto", "mejor"},
			Low:    []string{"ahora"},
		},
	}
}

// LoadTable reads a keyword table from a JSON file.
func LoadTable(path string) (Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fuzzy: read table: %w", err)
	}
	var t Table
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("fuzzy: parse table %s: %w", path, err)
	}
	if len(t) == 0 {
		return nil, fmt.Errorf("fuzzy: table %s is empty", path)
	}
	return t, nil
}
