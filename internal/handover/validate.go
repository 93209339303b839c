package handover

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Form is the raw handover request as submitted by the web form.
type Form struct {
	Name       string      `json:"nome"`
	Role       string      `json:"funcao"`
	OtherRole  string      `json:"outrosFuncao"`
	Department string      `json:"departamento"`
	Phone      string      `json:"telefone"`
	Company    string      `json:"empresa"`
	Assets     []FormAsset `json:"patrimonios"`
}

type FormAsset struct {
	Identifier  string `json:"patrimonio"`
	Observation string `json:"observacao"`
}

// RoleOther is the role option that requires a free-text role.
const RoleOther = "outros"

var departments = map[string]string{
	"ti":              "TI",
	"rh":              "People & Culture",
	"administrativo":  "ADM/Financeiro",
	"marketing":       "Marketing",
	"comercial":       "Comercial",
	"desenvolvimento": "Desenvolvimento",
	"central":         "Central de REL.",
	"juridico":        "Juridico",
}

// Department is a selectable department.
type Department struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Departments lists the selectable departments sorted by key.
func Departments() []Department {
	out := make([]Department, 0, len(departments))
	for key, label := range departments {
		out = append(out, Department{Key: key, Label: label})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

var (
	namePattern  = regexp.MustCompile(`^[a-zA-ZÀ-ÿ\s]+$`)
	assetPattern = regexp.MustCompile(`^[A-Z]{2,}\d+$`)
	assetKinds   = regexp.MustCompile(`^(CEL|PC|FON|MO|NOT|IMP|FRAG|CAD)\d+$`)
)

const assetExamples = "CEL001, PC123, FON456, MO789, NOT101, IMP202, FRAG303, CAD404"

var requiredLabels = []struct{ field, label string }{
	{"nome", "Nome"},
	{"funcao", "Função"},
	{"departamento", "Departamento"},
	{"telefone", "Telefone"},
	{"empresa", "Empresa"},
}

// Validate checks every field and returns all failures together.
func (f Form) Validate() []FieldError {
	var errs []FieldError
	add := func(field, message string) {
		errs = append(errs, FieldError{Field: field, Message: message})
	}

	values := map[string]string{
		"nome":         f.Name,
		"funcao":       f.Role,
		"departamento": f.Department,
		"telefone":     f.Phone,
		"empresa":      f.Company,
	}
	for _, r := range requiredLabels {
		if strings.TrimSpace(values[r.field]) == "" {
			add(r.field, r.label+" é obrigatório")
		}
	}

	if name := strings.TrimSpace(f.Name); name != "" {
		switch n := utf8.RuneCountInString(name); {
		case n < 2:
			add("nome", "Nome deve ter pelo menos 2 caracteres")
		case n > 100:
			add("nome", "Nome deve ter no máximo 100 caracteres")
		case !namePattern.MatchString(name):
			add("nome", "Nome deve conter apenas letras e espaços")
		}
	}

	if strings.TrimSpace(f.Phone) != "" {
		switch n := len(digitsOnly(f.Phone)); {
		case n < 10:
			add("telefone", "Telefone deve ter pelo menos 10 dígitos")
		case n > 11:
			add("telefone", "Telefone deve ter no máximo 11 dígitos")
		}
	}

	if strings.TrimSpace(f.Role) != "" {
		if msg := checkRole(f.Role); msg != "" {
			add("funcao", msg)
		}
	}
	if f.isOtherRole() {
		if strings.TrimSpace(f.OtherRole) == "" {
			add("outrosFuncao", "Função específica é obrigatório")
		} else if msg := checkRole(f.OtherRole); msg != "" {
			add("outrosFuncao", msg)
		}
	}

	if key := strings.TrimSpace(f.Department); key != "" {
		if _, ok := departments[strings.ToLower(key)]; !ok {
			add("departamento", "Departamento inválido")
		}
	}

	hasAsset := false
	for i, asset := range f.Assets {
		id := strings.ToUpper(strings.TrimSpace(asset.Identifier))
		if id != "" {
			hasAsset = true
			field := fmt.Sprintf("patrimonio_%d", i)
			if !assetPattern.MatchString(id) {
				add(field, "Patrimônio deve ter pelo menos 2 letras seguidas de números")
			} else if !assetKinds.MatchString(id) {
				add(field, "Formato inválido. Use um destes formatos: "+assetExamples)
			}
		}
		if utf8.RuneCountInString(strings.TrimSpace(asset.Observation)) > 500 {
			add(fmt.Sprintf("observacao_%d", i), "Observação deve ter no máximo 500 caracteres")
		}
	}
	if !hasAsset {
		add("patrimonio", "Pelo menos um patrimônio é obrigatório")
	}

	return errs
}

func checkRole(role string) string {
	switch n := utf8.RuneCountInString(strings.TrimSpace(role)); {
	case n < 3:
		return "Função deve ter pelo menos 3 caracteres"
	case n > 100:
		return "Função deve ter no máximo 100 caracteres"
	}
	return ""
}

func (f Form) isOtherRole() bool {
	return strings.EqualFold(strings.TrimSpace(f.Role), RoleOther)
}

// UserRecord normalizes the form into the record written to the document
// and the spreadsheet.
func (f Form) UserRecord() UserRecord {
	role := f.Role
	if f.isOtherRole() {
		role = f.OtherRole
	}
	return UserRecord{
		Name:       strings.ToUpper(strings.TrimSpace(f.Name)),
		Role:       strings.ToUpper(strings.TrimSpace(role)),
		Department: strings.ToUpper(departments[strings.ToLower(strings.TrimSpace(f.Department))]),
		Phone:      FormatPhone(f.Phone),
		Company:    strings.ToLower(strings.TrimSpace(f.Company)),
	}
}

// AssetQuery returns the requested assets in form order with identifiers
// upper-cased. Blank identifiers are kept; the resolver skips them.
func (f Form) AssetQuery() []Asset {
	assets := make([]Asset, 0, len(f.Assets))
	for _, a := range f.Assets {
		assets = append(assets, Asset{
			Identifier:  strings.ToUpper(strings.TrimSpace(a.Identifier)),
			Observation: strings.TrimSpace(a.Observation),
		})
	}
	return assets
}

// FormatPhone masks a 10 or 11 digit number as (DD) DDDD-DDDD or
// (DD) DDDDD-DDDD. Any other length yields "".
func FormatPhone(raw string) string {
	d := digitsOnly(raw)
	switch len(d) {
	case 11:
		return fmt.Sprintf("(%s) %s-%s", d[:2], d[2:7], d[7:])
	case 10:
		return fmt.Sprintf("(%s) %s-%s", d[:2], d[2:6], d[6:])
	default:
		return ""
	}
}

func digitsOnly(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r < utf8.RuneSelf && unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
