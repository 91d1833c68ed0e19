package cadastre_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/titledeed/internal/apperr"
	"github.com/MrJamesThe3rd/titledeed/internal/cadastre"
)

func TestParse_Matriz(t *testing.T) {
	extract := `Serviço de Finanças;Lisboa 3
Data de emissão;31-01-2026

Artigo matricial;Freguesia;Localização;NIF titular;Carteira;Documentos
U-4411;Arroios;Rua Morais Soares 12;123456789;0xabc;https://docs/a.pdf|https://docs/b.pdf
R-0072;Lumiar;Quinta do Lambert;987654321;;https://docs/c.pdf
;;;;;
Total de artigos;2
`

	got, err := cadastre.Parse(strings.NewReader(extract))
	require.NoError(t, err)

	assert.Equal(t, "matriz", got.Layout)
	require.Len(t, got.Entries, 2)

	first := got.Entries[0]
	assert.Equal(t, 5, first.Row)
	assert.Equal(t, "123456789", first.OwnerID)
	assert.Equal(t, "U-4411", first.Params.ParcelIdentifier)
	assert.Equal(t, "Rua Morais Soares 12, Arroios", first.Params.Location)
	assert.Equal(t, "0xabc", first.Params.OwnerWalletAddress)
	assert.Equal(t, []string{"https://docs/a.pdf", "https://docs/b.pdf"}, first.Params.DocumentURLs)

	assert.Equal(t, "R-0072", got.Entries[1].Params.ParcelIdentifier)
	assert.Empty(t, got.Entries[1].Params.OwnerWalletAddress)
}

func TestParse_MatrizWindows1252(t *testing.T) {
	extract := "Artigo matricial;Freguesia;Localização;NIF titular;Carteira;Documentos\n" +
		"U-1;Penha de França;Rua Conceição;111;;https://docs/x.pdf\n"

	encoded, err := charmap.Windows1252.NewEncoder().Bytes([]byte(extract))
	require.NoError(t, err)

	got, err := cadastre.Parse(bytes.NewReader(encoded))
	require.NoError(t, err)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, "Rua Conceição, Penha de França", got.Entries[0].Params.Location)
}

func TestParse_StandardCommaSeparated(t *testing.T) {
	extract := `parcel_identifier,location,owner_id,owner_wallet_address,document_urls
P-1,"12 High St, Leeds",owner-1,0x01,https://docs/1.pdf
`

	got, err := cadastre.Parse(strings.NewReader(extract))
	require.NoError(t, err)

	assert.Equal(t, "standard", got.Layout)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, "12 High St, Leeds", got.Entries[0].Params.Location)
	assert.Equal(t, "owner-1", got.Entries[0].OwnerID)
}

func TestParse_UnknownHeader(t *testing.T) {
	_, err := cadastre.Parse(strings.NewReader("a;b;c\n1;2;3\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestParse_RowWithoutOwner(t *testing.T) {
	extract := "parcel_identifier,location,owner_id,owner_wallet_address,document_urls\nP-1,Somewhere,,,https://d\n"

	_, err := cadastre.Parse(strings.NewReader(extract))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}
