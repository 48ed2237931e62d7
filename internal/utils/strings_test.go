package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty string", input: "", expected: nil},
		{name: "single value", input: "localhost:9092", expected: []string{"localhost:9092"}},
		{name: "varied spacing", input: "a:1,  b:2 , c:3", expected: []string{"a:1", "b:2", "c:3"}},
		{name: "only separators", input: " , ,", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseCSV(tt.input))
		})
	}
}

func TestFoldKey(t *testing.T) {
	assert.Equal(t, "ACAO", FoldKey("Ação"))
	assert.Equal(t, "ACAO", FoldKey(" acao "))
	assert.Equal(t, "RENDAFIXA", FoldKey("Renda Fixa"))
	assert.Equal(t, "PRECOMEDIO", FoldKey("Preço Médio"))
	assert.Equal(t, "105%CDI", FoldKey("105 % cdi"))
	assert.Equal(t, "", FoldKey(""))
}
