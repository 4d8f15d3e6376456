package suggestion

// Category is a presentation tag for a starter prompt.
type Category string

const (
	CategoryRoutes  Category = "routes"
	CategoryWeather Category = "weather"
	CategoryTraffic Category = "traffic"
	CategoryEvents  Category = "events"
	CategoryGeneral Category = "general"
)

// Prompt is a predefined starter message offered before the first turn.
type Prompt struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Category Category `json:"category"`
}

// Seed provides the starter prompts shown on an empty conversation.
func Seed() []Prompt {
	return []Prompt{
		{
			ID:       "best-route",
			Text:     "¿Cuál es la mejor ruta para llegar a la UCV?",
			Category: CategoryRoutes,
		},
		{
			ID:       "traffic-now",
			Text:     "¿Cómo está el tráfico en la Av. Alfredo Mendiola?",
			Category: CategoryTraffic,
		},
		{
			ID:       "campus-events",
			Text:     "¿Qué eventos hay hoy en el campus?",
			Category: CategoryEvents,
		},
	}
}
