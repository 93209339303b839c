package app

import (
	_ "embed"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/kaptinlin/jsonschema"
)

//go:embed handover.schema.json
var handoverSchemaJSON []byte

var handoverSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile(handoverSchemaJSON)
	if err != nil {
		return nil, fmt.Errorf("compile handover schema: %w", err)
	}
	return schema, nil
})

// checkHandoverBody verifies the request body shape. Field rules are
// enforced later by form validation so all field errors are reported at once.
func checkHandoverBody(data []byte) error {
	schema, err := handoverSchema()
	if err != nil {
		return err
	}
	result := schema.ValidateJSON(data)
	if result.IsValid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors))
	for key, evalErr := range result.Errors {
		problems = append(problems, fmt.Sprintf("%s: %v", key, evalErr))
	}
	sort.Strings(problems)
	return domainError(http.StatusBadRequest, "INVALID_BODY", "invalid request body: "+strings.Join(problems, "; "), nil)
}
