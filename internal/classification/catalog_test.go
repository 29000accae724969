package classification

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	require.NotNil(t, c)

	labels := c.OfferLabels()
	require.Len(t, labels, 24)
	assert.Equal(t, "КК", labels[0])
	assert.Equal(t, "БИЗНЕС КАРТА", labels[len(labels)-1])

	reasons := c.ReasonLabels()
	require.Len(t, reasons, 8)
	assert.Equal(t, "недозвон", reasons[0])
	assert.Equal(t, "другое коммент", reasons[len(reasons)-1])
	assert.True(t, c.Fallback().Fallback)
	assert.Empty(t, c.Fallback().Keywords)

	assert.Same(t, c, Default())
}

func TestCatalog_AliasRoundTrip(t *testing.T) {
	c := Default()
	for _, offer := range c.Offers() {
		for _, alias := range offer.Aliases {
			assert.Equal(t, offer.Label, c.NormalizeOffer(alias), "alias %q", alias)
			assert.Equal(t, offer.Label, c.NormalizeOffer("  "+strings.ToUpper(alias)+" "), "alias %q upper", alias)
		}
	}
}

func TestCatalog_NormalizeOffer(t *testing.T) {
	c := Default()
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{name: "exact alias", token: "кк", want: "КК"},
		{name: "mixed case", token: "Кредитка", want: "КК"},
		{name: "padded", token: "\tнс  ", want: "НС"},
		{name: "multi word alias with extra spaces", token: "кредитная   карта", want: "КК"},
		{name: "latin alias", token: "SIM", want: "СИМ"},
		{name: "unknown token uppercased", token: "ипотека", want: "ИПОТЕКА"},
		{name: "unknown latin token", token: "Widget", want: "WIDGET"},
		{name: "empty", token: "   ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.NormalizeOffer(tt.token))
		})
	}
}

func TestCatalog_LookupOffer(t *testing.T) {
	c := Default()

	offer, ok := c.LookupOffer("дебетовка")
	require.True(t, ok)
	assert.Equal(t, "ДК", offer.Label)

	_, ok = c.LookupOffer("ДК-карта")
	assert.False(t, ok)

	assert.True(t, c.IsOfferLabel("СИМ+MNP"))
	assert.False(t, c.IsOfferLabel("сим"))
}

func TestCatalog_MatchReason(t *testing.T) {
	c := Default()
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "keyword at start", text: "недозвон клиент не ответил", want: "недозвон"},
		{name: "keyword with punctuation", text: "Клиент, не взял-трубку!", want: "недозвон"},
		{name: "multi word keyword", text: "клиент ЗА   ГОРОДОМ до пятницы", want: "не в городе"},
		{name: "client initiative", text: "клиент просит перенести на завтра", want: "Инициатива клиента"},
		{name: "documents", text: "пришел без паспорта", want: "нет документов"},
		{name: "first declared wins", text: "недозвон, потом отказ", want: "недозвон"},
		{name: "no keyword falls back", text: "бла-бла-бла", want: "другое коммент"},
		{name: "empty falls back", text: "", want: "другое коммент"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.MatchReason(tt.text).Label)
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "не взял трубку", Normalize("  Не взял—трубку!!! "))
	assert.Equal(t, "a b c", Normalize("A,\tb\n\nc"))
	assert.Equal(t, "", Normalize(".,;"))
}

func TestNew_Validation(t *testing.T) {
	fallback := Reason{Label: "other", Fallback: true}

	tests := []struct {
		wantErr error
		name    string
		offers  []Offer
		reasons []Reason
	}{
		{
			name:    "valid",
			offers:  []Offer{{Label: "A", Aliases: []string{"a"}}},
			reasons: []Reason{{Label: "r", Keywords: []string{"k"}}, fallback},
		},
		{
			name:    "duplicate alias across offers",
			offers:  []Offer{{Label: "A", Aliases: []string{"x"}}, {Label: "B", Aliases: []string{" X "}}},
			reasons: []Reason{fallback},
			wantErr: ErrDuplicateAlias,
		},
		{
			name:    "empty offer label",
			offers:  []Offer{{Label: " ", Aliases: []string{"x"}}},
			reasons: []Reason{fallback},
			wantErr: ErrEmptyLabel,
		},
		{
			name:    "duplicate keyword across reasons",
			reasons: []Reason{{Label: "r1", Keywords: []string{"late"}}, {Label: "r2", Keywords: []string{"Late!"}}, fallback},
			wantErr: ErrDuplicateKeyword,
		},
		{
			name:    "fallback not last",
			reasons: []Reason{fallback, {Label: "r", Keywords: []string{"k"}}},
			wantErr: ErrFallback,
		},
		{
			name:    "missing fallback",
			reasons: []Reason{{Label: "r", Keywords: []string{"k"}}},
			wantErr: ErrFallback,
		},
		{
			name:    "no reasons",
			wantErr: ErrFallback,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.offers, tt.reasons)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, c)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := `
offers:
  - label: WIDGET
    aliases: [widget, w]
reasons:
  - label: sick
    keywords: [заболел]
  - label: other
    fallback: true
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "WIDGET", c.NormalizeOffer("W"))
	assert.Equal(t, "sick", c.MatchReason("Клиент заболел").Label)
	assert.Equal(t, "other", c.MatchReason("whatever").Label)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Parse([]byte("offers: [broken"))
	assert.Error(t, err)
}
