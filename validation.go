package logloader

import (
	"sync"

	"github.com/Station-Manager/errors"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate
var once sync.Once

func validatorInstance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

func validateSpecification(spec *Specification) error {
	const op errors.Op = "logloader.validateSpecification"
	if spec == nil {
		return errors.New(op).Msg(errMsgNilSpec)
	}

	if err := validatorInstance().Struct(spec); err != nil {
		return errors.New(op).Err(err).Msg(errMsgSpecInvalid)
	}

	table := spec.LevelTable()
	if !table.Has(spec.LevelOrDefault()) {
		return errors.New(op).Msg(errMsgUnknownLevel + " level=" + spec.LevelOrDefault())
	}
	for name, color := range spec.Colors() {
		if _, ok := ansiSequence(color); !ok {
			return errors.New(op).Msg(errMsgUnknownColor + " " + name + "=" + color)
		}
	}

	return nil
}

// decodeOptions decodes an option bag into a typed options struct, rejecting
// unknown keys, then runs struct validation on the result.
func decodeOptions(in map[string]any, out any) error {
	const op errors.Op = "logloader.decodeOptions"
	if err := decodeMap(in, out, true); err != nil {
		return errors.New(op).Err(err).Msg(errMsgOptionsInvalid)
	}
	if err := validatorInstance().Struct(out); err != nil {
		return errors.New(op).Err(err).Msg(errMsgOptionsInvalid)
	}
	return nil
}
