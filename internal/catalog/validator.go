package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/alexisbeaulieu97/nosleep/internal/domain/setting"
	nosleeperrors "github.com/alexisbeaulieu97/nosleep/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	semverPattern       = regexp.MustCompile(`^\d+\.\d+(?:\.\d+)?$`)
	descriptorIDPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)
	guidPattern         = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	aliasPattern        = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
	classNamePattern    = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("semver", func(fl validator.FieldLevel) bool {
			return semverPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("descriptor_id", func(fl validator.FieldLevel) bool {
			return descriptorIDPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("setting_id", func(fl validator.FieldLevel) bool {
			return isSettingID(fl.Field().String())
		})

		_ = v.RegisterValidation("regexp", func(fl validator.FieldLevel) bool {
			_, err := regexp.Compile(fl.Field().String())
			return err == nil
		})

		validateInst = v
	})

	return validateInst
}

// isSettingID accepts a GUID or a powercfg alias such as SUB_USB.
func isSettingID(s string) bool {
	return guidPattern.MatchString(s) || aliasPattern.MatchString(s)
}

// Validate performs schema and cross-field validation on the catalog.
func Validate(cat *Catalog) error {
	if cat == nil {
		return nosleeperrors.NewValidationError("catalog", "catalog is nil", nil)
	}

	if err := validatorInstance().Struct(cat); err != nil {
		return convertValidationError(err)
	}

	seen := make(map[string]int, len(cat.Entries))
	for i, entry := range cat.Entries {
		if prev, exists := seen[entry.ID]; exists {
			return nosleeperrors.NewValidationError(fieldForEntry(i, "id"),
				fmt.Sprintf("duplicate id %q (first defined at entries[%d])", entry.ID, prev), nil)
		}
		seen[entry.ID] = i

		if err := validateEntry(entry, i); err != nil {
			return err
		}
	}

	return nil
}

func validateEntry(entry Entry, index int) error {
	switch setting.BackendKind(entry.Backend) {
	case setting.BackendSettingsStore:
		if entry.Scope == "" {
			return nosleeperrors.NewValidationError(fieldForEntry(index, "scope"), "scope is required for settings_store", nil)
		}
		if !isSettingID(entry.Setting) {
			return nosleeperrors.NewValidationError(fieldForEntry(index, "setting"), "setting must be a GUID or alias", nil)
		}
	case setting.BackendInstrumentation:
		if !classNamePattern.MatchString(entry.Setting) {
			return nosleeperrors.NewValidationError(fieldForEntry(index, "setting"), "setting must be a WMI class name", nil)
		}
	}

	if err := entry.Descriptor().Validate(); err != nil {
		field := "entry"
		var derr *setting.DomainError
		if errors.As(err, &derr) {
			if f, ok := derr.Context["field"].(string); ok {
				field = f
			}
		}
		return nosleeperrors.NewValidationError(fieldForEntry(index, field), err.Error(), err)
	}
	return nil
}

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		ve := ves[0]
		field := yamlishFieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		return nosleeperrors.NewValidationError(field, msg, err)
	}

	return nosleeperrors.NewValidationError("catalog", err.Error(), err)
}

// yamlishFieldName turns Catalog.Entries[2].FallbackScope into
// entries[2].fallbackscope.
func yamlishFieldName(fe validator.FieldError) string {
	parts := strings.Split(fe.StructNamespace(), ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, part := range parts {
		parts[i] = strings.ToLower(part)
	}
	return strings.Join(parts, ".")
}

func fieldForEntry(index int, field string) string {
	return fmt.Sprintf("entries[%d].%s", index, field)
}
