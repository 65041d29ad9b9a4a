// Package sl содержит вспомогательные атрибуты для структурированного логгера slog.
package sl

import "log/slog"

// Err возвращает атрибут "error" с текстом ошибки. Для nil пишется пустая строка,
// чтобы логирование на путях восстановления не паниковало.
//
//	log.Error("refresh failed", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Op возвращает атрибут "op" с именем операции.
func Op(op string) slog.Attr {
	return slog.String("op", op)
}
