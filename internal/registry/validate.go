package registry

import (
	"fmt"
	"regexp"
	"slices"

	"github.com/importls/importls/internal/ierrors"
	"github.com/importls/importls/internal/pathtemplate"
)

// replacementVariableRE matches ${name} and ${{name}} references inside a
// variable's endpoint URL template.
var replacementVariableRE = regexp.MustCompile(`\$\{\{?(\w+)\}?\}`)

// parseReplacementVariables extracts the key names referenced by a URL
// template, in order of appearance.
func parseReplacementVariables(s string) []string {
	matches := replacementVariableRE.FindAllStringSubmatch(s, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// validateConfig checks a decoded configuration document: the version must be
// 1, every schema key must have exactly one variable declaration, every
// variable must name a schema key, and a variable's URL template may only
// reference keys positioned strictly before its own key in the schema.
func validateConfig(cf *configurationFile) error {
	if cf.Version != 1 {
		return ierrors.NewConfigError("", fmt.Sprintf(
			"Invalid registry configuration. Expected version 1 got %d.", cf.Version))
	}
	for i := range cf.Registries {
		reg := &cf.Registries[i]
		tokens, err := pathtemplate.Parse(reg.Schema)
		if err != nil {
			return ierrors.NewConfigError(reg.Schema, fmt.Sprintf(
				"Invalid registry configuration. Could not compile schema %q: %v.",
				reg.Schema, err))
		}
		keyNames := pathtemplate.KeyNames(tokens)

		for _, keyName := range keyNames {
			declared := slices.ContainsFunc(reg.Variables, func(v Variable) bool {
				return v.Key == keyName
			})
			if !declared {
				return ierrors.NewConfigError(reg.Schema, fmt.Sprintf(
					"Invalid registry configuration. Registry with schema %q is missing variable declaration for key %q.",
					reg.Schema, keyName))
			}
		}

		for _, variable := range reg.Variables {
			keyIndex := slices.Index(keyNames, variable.Key)
			if keyIndex < 0 {
				return ierrors.NewConfigError(reg.Schema, fmt.Sprintf(
					"Invalid registry configuration. Registry with schema %q is missing a path parameter in schema for variable %q.",
					reg.Schema, variable.Key))
			}
			// Only keys declared to the left of this variable's key are in
			// scope for its URL template.
			limitedKeys := keyNames[:keyIndex]
			for _, ref := range parseReplacementVariables(variable.URL) {
				if ref == variable.Key {
					return ierrors.NewConfigError(reg.Schema, fmt.Sprintf(
						"Invalid registry configuration. Url %q (for variable %q in registry with schema %q) uses variable %q, which is not allowed because that would be a self reference.",
						variable.URL, variable.Key, reg.Schema, ref))
				}
				if !slices.Contains(limitedKeys, ref) {
					return ierrors.NewConfigError(reg.Schema, fmt.Sprintf(
						"Invalid registry configuration. Url %q (for variable %q in registry with schema %q) uses variable %q, which is not allowed because the schema defines %q to the right of %q.",
						variable.URL, variable.Key, reg.Schema, ref, ref, variable.Key))
				}
			}
		}
	}
	return nil
}
