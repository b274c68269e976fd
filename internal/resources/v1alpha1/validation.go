package v1alpha1

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"k8s.io/apimachinery/pkg/api/resource"
	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/stacklok/dbcluster-console/internal/versions"
)

// ErrInvalid matches every error returned by the Validate functions.
var ErrInvalid = errors.New("invalid resource")

// FieldError is a single rejected field.
type FieldError struct {
	// Field is the JSON path of the field, e.g. spec.engine.replicas.
	Field   string
	Message string
}

// Error implements error.
func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// specValidate is shared by all kinds. Custom validations are registered in init().
var specValidate *validator.Validate

func init() {
	specValidate = validator.New(validator.WithRequiredStructEnabled())
	specValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = specValidate.RegisterValidation("quantity", validateQuantity)
	_ = specValidate.RegisterValidation("dns1123", validateDNS1123Label)
	_ = specValidate.RegisterValidation("engineversion", validateEngineVersion)
	specValidate.RegisterStructValidation(validateEngine, Engine{})
}

func validateQuantity(fl validator.FieldLevel) bool {
	_, err := resource.ParseQuantity(fl.Field().String())
	return err == nil
}

func validateDNS1123Label(fl validator.FieldLevel) bool {
	return len(validation.IsDNS1123Label(fl.Field().String())) == 0
}

func validateEngineVersion(fl validator.FieldLevel) bool {
	_, err := versions.ParseEngineVersion(fl.Field().String())
	return err == nil
}

// validateEngine requires an odd member count for engines that elect a primary by quorum.
func validateEngine(sl validator.StructLevel) {
	engine, ok := sl.Current().Interface().(Engine)
	if !ok {
		return
	}
	if engine.Type == EngineTypePostgresql {
		return
	}
	if engine.Replicas%2 == 0 {
		sl.ReportError(engine.Replicas, "replicas", "Replicas", "odd", "")
	}
}

// ValidateDatabaseCluster checks the name and spec of a cluster.
func ValidateDatabaseCluster(dc *DatabaseCluster) error {
	if dc == nil {
		return fmt.Errorf("%w: database cluster is nil", ErrInvalid)
	}
	return validateObject(dc.Name, dc.Spec)
}

// ValidateDatabaseClusterUpdate checks a cluster and the transition from old to updated.
// The engine type cannot change and the engine version cannot go backwards.
func ValidateDatabaseClusterUpdate(old, updated *DatabaseCluster) error {
	if err := ValidateDatabaseCluster(updated); err != nil {
		return err
	}
	if old == nil {
		return nil
	}

	var errs []error
	if old.Spec.Engine.Type != updated.Spec.Engine.Type {
		errs = append(errs, &FieldError{
			Field:   "spec.engine.type",
			Message: fmt.Sprintf("is immutable (was %q)", old.Spec.Engine.Type),
		})
	}
	if old.Spec.Engine.Version != "" && updated.Spec.Engine.Version != "" &&
		versions.IsDowngrade(old.Spec.Engine.Version, updated.Spec.Engine.Version) {
		errs = append(errs, &FieldError{
			Field:   "spec.engine.version",
			Message: fmt.Sprintf("cannot downgrade from %s to %s", old.Spec.Engine.Version, updated.Spec.Engine.Version),
		})
	}
	return joinInvalid(errs)
}

// ValidateBackupStorage checks the name and spec of a backup storage.
func ValidateBackupStorage(bs *BackupStorage) error {
	if bs == nil {
		return fmt.Errorf("%w: backup storage is nil", ErrInvalid)
	}
	return validateObject(bs.Name, bs.Spec)
}

// ValidateBackupStorageUpdate checks a backup storage and forbids changing its type.
func ValidateBackupStorageUpdate(old, updated *BackupStorage) error {
	if err := ValidateBackupStorage(updated); err != nil {
		return err
	}
	if old != nil && old.Spec.Type != updated.Spec.Type {
		return joinInvalid([]error{&FieldError{
			Field:   "spec.type",
			Message: fmt.Sprintf("is immutable (was %q)", old.Spec.Type),
		}})
	}
	return nil
}

// ValidateMonitoringConfig checks the name and spec of a monitoring config.
func ValidateMonitoringConfig(mc *MonitoringConfig) error {
	if mc == nil {
		return fmt.Errorf("%w: monitoring config is nil", ErrInvalid)
	}
	return validateObject(mc.Name, mc.Spec)
}

func validateObject(name string, spec any) error {
	var errs []error

	for _, msg := range validation.IsDNS1123Subdomain(name) {
		errs = append(errs, &FieldError{Field: "metadata.name", Message: msg})
	}

	if err := specValidate.Struct(spec); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
		for _, fe := range verrs {
			errs = append(errs, toFieldError(fe))
		}
	}

	return joinInvalid(errs)
}

func joinInvalid(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

func toFieldError(fe validator.FieldError) *FieldError {
	// Namespace is "<SpecType>.engine.replicas"; swap the Go type for "spec".
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = "spec." + rest
	}

	var msg string
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "required_if":
		msg = "is required for this type"
	case "oneof":
		msg = fmt.Sprintf("must be one of [%s]", fe.Param())
	case "min":
		msg = fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		msg = fmt.Sprintf("must be at most %s", fe.Param())
	case "odd":
		msg = "must be an odd number"
	case "unique":
		msg = fmt.Sprintf("must have unique %s values", strings.ToLower(fe.Param()))
	case "quantity":
		msg = fmt.Sprintf("%q is not a valid quantity", fe.Value())
	case "dns1123":
		msg = fmt.Sprintf("%q is not a valid DNS label", fe.Value())
	case "engineversion":
		msg = fmt.Sprintf("%q is not a valid version", fe.Value())
	case "url":
		msg = "must be a valid URL"
	default:
		msg = fmt.Sprintf("failed %q validation", fe.Tag())
	}

	return &FieldError{Field: field, Message: msg}
}
