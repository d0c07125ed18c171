package services

import (
	"errors"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validate checks one line item.
func (li LineItem) Validate() error {
	return validation.ValidateStruct(&li,
		validation.Field(&li.Description, validation.By(notBlank("la descripción es obligatoria"))),
		validation.Field(&li.Quantity, validation.Min(1).Error("la cantidad mínima es 1")),
		validation.Field(&li.UnitPrice, validation.Min(0.0).Error("el precio no puede ser negativo")),
	)
}

// Validate runs the checks that must pass before a quote is saved or
// exported: a client name, at least one item, and sane percentages.
func (d QuoteDocument) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.ClientName, validation.By(notBlank("el nombre del cliente es obligatorio"))),
		validation.Field(&d.Items, validation.Required.Error("agrega al menos un producto")),
		validation.Field(&d.DiscountPercent,
			validation.Min(0.0).Error("el descuento debe estar entre 0 y 100"),
			validation.Max(100.0).Error("el descuento debe estar entre 0 y 100")),
		validation.Field(&d.TaxPercent,
			validation.Min(0.0).Error("el impuesto debe estar entre 0 y 100"),
			validation.Max(100.0).Error("el impuesto debe estar entre 0 y 100")),
		validation.Field(&d.Status, validation.In(anySlice(QuoteStatuses)...).Error("estado desconocido")),
	)
}

func notBlank(msg string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if strings.TrimSpace(s) == "" {
			return errors.New(msg)
		}
		return nil
	}
}

func anySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// FieldErrors flattens validation errors into "field" / "items.0.quantity"
// keys for form rendering. Non-validation errors land under "_".
func FieldErrors(err error) map[string]string {
	out := make(map[string]string)
	if err == nil {
		return out
	}
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		out["_"] = err.Error()
		return out
	}
	flattenErrors("", verrs, out)
	return out
}

func flattenErrors(prefix string, verrs validation.Errors, out map[string]string) {
	for key, e := range verrs {
		name := key
		if prefix != "" {
			name = prefix + "." + key
		}
		var nested validation.Errors
		if errors.As(e, &nested) {
			flattenErrors(name, nested, out)
			continue
		}
		out[name] = e.Error()
	}
}

// FirstError returns a stable single message for toasts.
func FirstError(fieldErrs map[string]string) string {
	if len(fieldErrs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fieldErrs))
	for k := range fieldErrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fieldErrs[keys[0]]
}
