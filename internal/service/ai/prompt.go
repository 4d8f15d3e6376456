package ai

import (
	"strings"

	"github.com/JuanVML/UCV-GREEN-MOBILITY-sub000/internal/model/chat"
)

// SystemPrompt describes the assistant persona and the area it covers.
const SystemPrompt = `Eres MovilBot, el asistente de movilidad sostenible de la Universidad César Vallejo (UCV), campus Lima Norte.

Ayudas a estudiantes y docentes con:
- Rutas para llegar al campus desde Los Olivos, Comas, Independencia, San Martín de Porres, Puente Piedra, Carabayllo y Tahuantinsuyo.
- Viajes compartidos entre miembros de la comunidad UCV.
- Préstamo de bicicletas, scooters y motos dentro de MovilShare.
- Horarios de salida, estado del tráfico, clima y eventos en el campus.

Reglas:
- Responde siempre en español, con un tono cercano y breve (máximo 4 oraciones).
- Si no sabes algo con certeza, dilo y sugiere revisar la sección correspondiente de la app.
- Prioriza opciones seguras y sostenibles (caminar, bicicleta, viajes compartidos).
- No inventes precios, placas ni datos personales.`

const (
	userLabel      = "Usuario"
	assistantLabel = "Asistente"
)

// FormatTranscript renders turns as "Usuario: …" / "Asistente: …" lines.
func FormatTranscript(history []chat.Turn) string {
	var builder strings.Builder
	for i, turn := range history {
		if i > 0 {
			builder.WriteString("\n")
		}
		if turn.Role == chat.RoleUser {
			builder.WriteString(userLabel)
		} else {
			builder.WriteString(assistantLabel)
		}
		builder.WriteString(": ")
		builder.WriteString(turn.Text)
	}
	return builder.String()
}

// BuildContext prefixes the rendered transcript with the system prompt. This is
// the context string the primary backend expects.
func BuildContext(history []chat.Turn) string {
	if len(history) == 0 {
		return SystemPrompt
	}
	return SystemPrompt + "\n\nConversación previa:\n" + FormatTranscript(history)
}

// ParseTranscript recovers role-tagged turns from a context string produced by
// BuildContext. Lines before the first labelled line are ignored; unlabelled
// lines after it continue the previous turn.
func ParseTranscript(context string) []chat.Turn {
	var turns []chat.Turn
	for _, line := range strings.Split(context, "\n") {
		switch {
		case strings.HasPrefix(line, userLabel+": "):
			turns = append(turns, chat.Turn{Role: chat.RoleUser, Text: strings.TrimPrefix(line, userLabel+": ")})
		case strings.HasPrefix(line, assistantLabel+": "):
			turns = append(turns, chat.Turn{Role: chat.RoleAssistant, Text: strings.TrimPrefix(line, assistantLabel+": ")})
		case len(turns) > 0:
			turns[len(turns)-1].Text += "\n" + line
		}
	}

	out := turns[:0]
	for _, turn := range turns {
		turn.Text = strings.TrimSpace(turn.Text)
		if turn.Text != "" {
			out = append(out, turn)
		}
	}
	return out
}
