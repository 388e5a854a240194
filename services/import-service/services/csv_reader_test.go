package services_test

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ElenaCherpakova/e-store-aws-backend/services/import-service/services"
)

func TestRowReader_MapsHeadersToFields(t *testing.T) {
	src := "\ufeffTitle, Description ,PRICE,count\nSofa,A nice sofa,100,5\nLamp,,19.99\n"
	rr, err := services.NewRowReader(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "description", "price", "count"}, rr.Headers())

	row, err := rr.Next()
	require.NoError(t, err)
	assert.Equal(t, 2, row.Line)
	assert.Equal(t, map[string]string{"title": "Sofa", "description": "A nice sofa", "price": "100", "count": "5"}, row.Fields)

	row, err = rr.Next()
	require.NoError(t, err)
	assert.Equal(t, 3, row.Line)
	assert.Equal(t, "", row.Fields["count"])

	_, err = rr.Next()
	assert.ErrorIs(t, err, io.EOF)
	_, err = rr.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestRowReader_EmptyInput(t *testing.T) {
	_, err := services.NewRowReader(strings.NewReader(""))
	assert.ErrorIs(t, err, services.ErrNoHeader)
}

func TestRowReader_QuotedFieldsAndMalformedRow(t *testing.T) {
	src := "title,description,price,count\n\"Chair, oak\",\"Says \"\"hi\"\"\",10,1\nLamp,bad\"quote,1,1\nDesk,,5,2\n"
	rr, err := services.NewRowReader(strings.NewReader(src))
	require.NoError(t, err)

	row, err := rr.Next()
	require.NoError(t, err)
	assert.Equal(t, "Chair, oak", row.Fields["title"])
	assert.Equal(t, `Says "hi"`, row.Fields["description"])

	_, err = rr.Next()
	var parseErr *csv.ParseError
	require.True(t, errors.As(err, &parseErr), "got %v", err)

	row, err = rr.Next()
	require.NoError(t, err)
	assert.Equal(t, "Desk", row.Fields["title"])
	assert.Equal(t, 4, row.Line)
}
