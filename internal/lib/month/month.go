// Package month содержит календарную арифметику по месяцам для расчёта дат окончания подписок.
package month

import (
	"time"
)

// AddMonths прибавляет к дате n календарных месяцев.
// Переполнение дня нормализуется вперёд: 31 января + 1 месяц даёт 2 или 3 марта.
func AddMonths(t time.Time, n int) time.Time {
	return t.AddDate(0, n, 0)
}

// EndDate возвращает дату окончания подписки длительностью months, начинающейся в start.
// Для неположительной длительности дата окончания совпадает с началом.
func EndDate(start time.Time, months int) time.Time {
	if months <= 0 {
		return start
	}
	return AddMonths(start, months)
}

// Within сообщает, попадает ли t в полуинтервал (from, from+window].
func Within(t, from time.Time, window time.Duration) bool {
	return t.After(from) && !t.After(from.Add(window))
}
