package access

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator"
)

var validate = validator.New()

// check валидирует структуру и оборачивает ошибки валидатора в ErrInvalid,
// сохраняя validator.ValidationErrors для errors.As на уровне HTTP.
func check(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("%w: %w", ErrInvalid, verrs)
		}
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}
