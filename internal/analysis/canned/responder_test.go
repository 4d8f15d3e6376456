package canned

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteKeywordAsksForDistrict(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	reply := r.Respond("Hola, necesito una ruta para llegar temprano")
	assert.Contains(t, reply, "¿Desde qué distrito sales?")
}

func TestRouteWinsOverDistrict(t *testing.T) {
	r := MustNew()

	_, rule := r.Match("¿Qué RUTA tomo desde Comas?")
	assert.Equal(t, "route", rule)
}

func TestZoneSpecificReply(t *testing.T) {
	r := MustNew()

	reply, rule := r.Match("vivo en tahuantinsuyo")
	assert.Equal(t, "tahuantinsuyo", rule)
	assert.Contains(t, reply, "Tahuantinsuyo")
}

func TestAccentInsensitiveMatching(t *testing.T) {
	r := MustNew()

	cases := []struct {
		input string
		rule  string
	}{
		{"¿Cómo llego a la universidad?", "route"},
		{"Quiero un PRÉSTAMO de bici", "vehicle"},
		{"¿A qué hora salen los autos?", "schedule"},
		{"Salgo de San Martín de Porres", "san-martin-de-porres"},
		{"Estoy en Los Olivos", "los-olivos"},
	}
	for _, tc := range cases {
		_, rule := r.Match(tc.input)
		assert.Equal(t, tc.rule, rule, "input %q", tc.input)
	}
}

func TestNoMatchReturnsDefault(t *testing.T) {
	r := MustNew()

	reply, rule := r.Match("hola, ¿qué tal?")
	assert.Equal(t, "default", rule)
	assert.Equal(t, r.table.Default, reply)
	assert.NotEmpty(t, reply)
}

func TestEmptyInputReturnsDefault(t *testing.T) {
	r := MustNew()
	assert.Equal(t, r.table.Default, r.Respond("   "))
}

func TestKeywordsMatchWholeWords(t *testing.T) {
	r := MustNew()

	cases := []struct {
		input string
		rule  string
	}{
		{"Quiero disfrutar del evento de hoy", "default"},
		{"¿Hay fruta en la cafetería?", "default"},
		{"¿trabajo remoto?", "default"},
		{"Me encanta el comastro", "default"},
		{"¿Rutas?", "route"},
		{"moto, por favor", "vehicle"},
		{"Vivo en los   olivos.", "los-olivos"},
	}
	for _, tc := range cases {
		_, rule := r.Match(tc.input)
		assert.Equal(t, tc.rule, rule, "input %q", tc.input)
	}
}

func TestParseRejectsTableWithoutDefault(t *testing.T) {
	_, err := Parse([]byte("rules:\n  - name: a\n    keywords: [x]\n    reply: y\n"))
	require.Error(t, err)
}

func TestParseCustomTable(t *testing.T) {
	r, err := Parse([]byte("rules:\n  - name: weather\n    keywords: [Lluvia]\n    reply: Lleva paraguas\ndefault: hola\n"))
	require.NoError(t, err)

	assert.Equal(t, "Lleva paraguas", r.Respond("¿habrá LLUVIA?"))
	assert.Equal(t, "hola", r.Respond("nada"))
}
