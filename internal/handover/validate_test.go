package handover

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() Form {
	return Form{
		Name:       "Ana Silva",
		Role:       "Analista",
		Department: "ti",
		Phone:      "(11) 98765-4321",
		Company:    "Acme",
		Assets:     []FormAsset{{Identifier: "cel001", Observation: "trocar capa"}},
	}
}

func fieldsOf(errs []FieldError) []string {
	var out []string
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func TestValidateAcceptsCompleteForm(t *testing.T) {
	assert.Empty(t, validForm().Validate())
}

func TestValidateCollectsEveryError(t *testing.T) {
	errs := Form{}.Validate()

	assert.ElementsMatch(t,
		[]string{"nome", "funcao", "departamento", "telefone", "empresa", "patrimonio"},
		fieldsOf(errs))
	assert.Contains(t, errs, FieldError{Field: "nome", Message: "Nome é obrigatório"})
	assert.Contains(t, errs, FieldError{Field: "patrimonio", Message: "Pelo menos um patrimônio é obrigatório"})
}

func TestValidateFieldRules(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Form)
		field   string
		message string
	}{
		{"short name", func(f *Form) { f.Name = "A" }, "nome", "Nome deve ter pelo menos 2 caracteres"},
		{"long name", func(f *Form) { f.Name = strings.Repeat("a", 101) }, "nome", "Nome deve ter no máximo 100 caracteres"},
		{"digits in name", func(f *Form) { f.Name = "Ana 2" }, "nome", "Nome deve conter apenas letras e espaços"},
		{"short phone", func(f *Form) { f.Phone = "123456789" }, "telefone", "Telefone deve ter pelo menos 10 dígitos"},
		{"long phone", func(f *Form) { f.Phone = "+55 11 98765-4321" }, "telefone", "Telefone deve ter no máximo 11 dígitos"},
		{"short role", func(f *Form) { f.Role = "TI" }, "funcao", "Função deve ter pelo menos 3 caracteres"},
		{"other role missing", func(f *Form) { f.Role = "outros" }, "outrosFuncao", "Função específica é obrigatório"},
		{"other role too short", func(f *Form) { f.Role = "outros"; f.OtherRole = "ab" }, "outrosFuncao", "Função deve ter pelo menos 3 caracteres"},
		{"unknown department", func(f *Form) { f.Department = "vendas" }, "departamento", "Departamento inválido"},
		{"asset without digits", func(f *Form) { f.Assets[0].Identifier = "CEL" }, "patrimonio_0", "Patrimônio deve ter pelo menos 2 letras seguidas de números"},
		{"asset unknown prefix", func(f *Form) { f.Assets[0].Identifier = "XYZ12" }, "patrimonio_0", "Formato inválido. Use um destes formatos: " + assetExamples},
		{"long observation", func(f *Form) { f.Assets[0].Observation = strings.Repeat("x", 501) }, "observacao_0", "Observação deve ter no máximo 500 caracteres"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)
			errs := form.Validate()
			require.Len(t, errs, 1, "errors: %v", errs)
			assert.Equal(t, FieldError{Field: tt.field, Message: tt.message}, errs[0])
		})
	}
}

func TestValidateAcceptsAccentedNames(t *testing.T) {
	form := validForm()
	form.Name = "João Conceição"
	assert.Empty(t, form.Validate())
}

func TestValidateIndexesAssetErrors(t *testing.T) {
	form := validForm()
	form.Assets = []FormAsset{{Identifier: "CEL001"}, {Identifier: ""}, {Identifier: "ZZ9"}}

	errs := form.Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, "patrimonio_2", errs[0].Field)
}

func TestUserRecord(t *testing.T) {
	form := validForm()
	form.Role = "outros"
	form.OtherRole = "Estagiário de dados"

	assert.Equal(t, UserRecord{
		Name:       "ANA SILVA",
		Role:       "ESTAGIÁRIO DE DADOS",
		Department: "TI",
		Phone:      "(11) 98765-4321",
		Company:    "acme",
	}, form.UserRecord())

	form.Department = "rh"
	assert.Equal(t, "PEOPLE & CULTURE", form.UserRecord().Department)
}

func TestAssetQuery(t *testing.T) {
	form := validForm()
	form.Assets = append(form.Assets, FormAsset{Identifier: "  ", Observation: ""}, FormAsset{Identifier: " not101 "})

	assert.Equal(t, []Asset{
		{Identifier: "CEL001", Observation: "trocar capa"},
		{Identifier: ""},
		{Identifier: "NOT101"},
	}, form.AssetQuery())
}

func TestFormatPhone(t *testing.T) {
	assert.Equal(t, "(11) 98765-4321", FormatPhone("11987654321"))
	assert.Equal(t, "(62) 3333-4444", FormatPhone("(62) 3333-4444"))
	assert.Equal(t, "", FormatPhone("123"))
	assert.Equal(t, "", FormatPhone("5511987654321"))
}

func TestDepartmentsSorted(t *testing.T) {
	deps := Departments()
	require.Len(t, deps, 8)
	assert.Equal(t, Department{Key: "administrativo", Label: "ADM/Financeiro"}, deps[0])
	assert.Equal(t, "ti", deps[len(deps)-1].Key)
}
