// Package classifier calls an external OpenAI-compatible model to
// label free-form messages with one intent from the catalog.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"turnero/internal/domain"
)

const systemPrompt = `Eres un clasificador de intenciones para un chatbot de turnos de cedula.
Responde con UNA sola palabra: el intent que corresponde al mensaje.
Intents validos: greet, goodbye, agradecimiento, agendar_turno, consultar_disponibilidad,
consultar_costo, consultar_requisitos, consultar_ubicacion, consulta_tiempo_espera,
informar_nombre, informar_cedula, informar_fecha, proporcionar_email, elegir_horario,
affirm, deny, cancelar_turno, solicitar_cambio_datos, frase_ambigua, nlu_fallback.
No expliques. No uses formato. Solo el intent.`

// catalog is the set of labels the model may answer with.
var catalog = map[string]domain.Intent{}

func init() {
	for _, in := range []domain.Intent{
		domain.IntentGreet, domain.IntentGoodbye, domain.IntentThanks,
		domain.IntentBook, domain.IntentAvailability, domain.IntentCost,
		domain.IntentRequirements, domain.IntentLocation, domain.IntentWaitTime,
		domain.IntentGiveName, domain.IntentGiveID, domain.IntentGiveDate,
		domain.IntentGiveEmail, domain.IntentChooseTime,
		domain.IntentAffirm, domain.IntentNegate, domain.IntentCancel,
		domain.IntentChangeField, domain.IntentAmbiguous, domain.IntentUnknown,
	} {
		catalog[string(in)] = in
	}
}

type Client struct {
	baseURL string
	model   string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, model, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		model:   model,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

type chatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stop        []string      `json:"stop,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Classify labels the message with one catalog intent. A successful
// label comes back at fixed confidence; unparseable output degrades to
// nlu_fallback.
func (c *Client) Classify(ctx context.Context, message string) (domain.Signal, error) {
	if !c.Enabled() {
		return domain.Signal{}, fmt.Errorf("external classifier is not configured")
	}
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: message},
		},
		Temperature: 0.1,
		MaxTokens:   10,
		Stop:        []string{"\n", "Usuario:", "Explicación:"},
	}
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return domain.Signal{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Signal{}, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return domain.Signal{}, fmt.Errorf("classifier status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	var out chatResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return domain.Signal{}, err
	}
	if out.Error != nil {
		return domain.Signal{}, fmt.Errorf("classifier error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return domain.Signal{}, fmt.Errorf("classifier returned no choices")
	}

	intent, ok := ExtractLabel(out.Choices[0].Message.Content)
	if !ok {
		return domain.Signal{Intent: domain.IntentUnknown, Confidence: 0.3, Source: domain.SourceExternal}, nil
	}
	return domain.Signal{Intent: intent, Confidence: 0.9, Source: domain.SourceExternal}, nil
}

var (
	boldLabel = regexp.MustCompile(`\*\*([a-z_]+)\*\*`)
	junkChars = regexp.MustCompile(`["'.,\-()*\[\]:]`)
)

// ExtractLabel recovers an intent label from raw model output, which
// often arrives wrapped in arrows, markdown or extra prose.
func ExtractLabel(raw string) (domain.Intent, bool) {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.LastIndex(cleaned, "→"); i >= 0 {
		cleaned = strings.TrimSpace(cleaned[i+len("→"):])
	}
	if m := boldLabel.FindStringSubmatch(cleaned); m != nil {
		cleaned = m[1]
	}
	cleaned = junkChars.ReplaceAllString(cleaned, "")
	if i := strings.IndexByte(cleaned, '\n'); i >= 0 {
		cleaned = cleaned[:i]
	}
	words := strings.Fields(cleaned)
	for _, w := range words {
		if in, ok := catalog[w]; ok {
			return in, true
		}
	}
	return "", false
}
