// Package storage реализует шлюз к удалённому хранилищу PostgreSQL: единообразные операции
// list/upsert/delete над учётными записями, предложениями и подписками, проверку
// доступности, начальное заполнение и подписку на уведомления об изменениях.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/iptv-panel/internal/models"
)

var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("record not found")
	// ErrProtected — удаление главного администратора запрещено и на уровне шлюза.
	ErrProtected = errors.New("primary administrator cannot be deleted")
)

// Storage инкапсулирует пул соединений с PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New открывает пул соединений. Доступность базы здесь не проверяется:
// для этого есть Probe, результат которого решает, будет ли панель работать.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Storage{DB: db}, nil
}

// Close закрывает пул.
func (s *Storage) Close() error {
	return s.DB.Close()
}

// Probe выполняет дешёвый запрос к таблице учётных записей и сообщает, доступно ли хранилище.
func (s *Storage) Probe(ctx context.Context) bool {
	var n int
	return s.DB.QueryRowContext(ctx, `SELECT count(*) FROM accounts`).Scan(&n) == nil
}

// ===== ACCOUNTS =====

// ListAccounts возвращает все учётные записи.
func (s *Storage) ListAccounts(ctx context.Context) ([]models.Account, error) {
	return listRows(ctx, s.DB, "storage.ListAccounts", selectQuery(tableAccounts, accountColumns),
		func(r *accountRow) []any { return r.dest() }, accountFromRow)
}

// FindAccountByUsername ищет учётную запись по логину.
func (s *Storage) FindAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	return s.findAccount(ctx, "storage.FindAccountByUsername", "username", username)
}

// FindAccountByID ищет учётную запись по идентификатору.
func (s *Storage) FindAccountByID(ctx context.Context, id string) (*models.Account, error) {
	return s.findAccount(ctx, "storage.FindAccountByID", "id", id)
}

func (s *Storage) findAccount(ctx context.Context, op, column, value string) (*models.Account, error) {
	query := selectQuery(tableAccounts, accountColumns) + fmt.Sprintf(` WHERE %s = $1`, column)
	var row accountRow
	err := s.DB.QueryRowContext(ctx, query, value).Scan(row.dest()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	acc := accountFromRow(row)
	return &acc, nil
}

// UpsertAccount вставляет или заменяет учётную запись по идентификатору.
func (s *Storage) UpsertAccount(ctx context.Context, acc models.Account) error {
	return s.upsert(ctx, "storage.UpsertAccount", tableAccounts, accountColumns, accountToRow(acc).args())
}

// DeleteAccount удаляет учётную запись. Главного администратора удалить нельзя.
func (s *Storage) DeleteAccount(ctx context.Context, id string) error {
	const op = "storage.DeleteAccount"
	if id == models.PrimaryAdminID {
		return fmt.Errorf("%s: %w", op, ErrProtected)
	}
	return s.delete(ctx, op, tableAccounts, id)
}

// ===== OFFERS =====

// ListOffers возвращает все предложения.
func (s *Storage) ListOffers(ctx context.Context) ([]models.Offer, error) {
	return listRows(ctx, s.DB, "storage.ListOffers", selectQuery(tableOffers, offerColumns),
		func(r *offerRow) []any { return r.dest() }, offerFromRow)
}

// UpsertOffer вставляет или заменяет предложение.
func (s *Storage) UpsertOffer(ctx context.Context, offer models.Offer) error {
	return s.upsert(ctx, "storage.UpsertOffer", tableOffers, offerColumns, offerToRow(offer).args())
}

// DeleteOffer удаляет предложение. Ссылающиеся подписки остаются с висячей ссылкой.
func (s *Storage) DeleteOffer(ctx context.Context, id string) error {
	return s.delete(ctx, "storage.DeleteOffer", tableOffers, id)
}

// ===== SUBSCRIPTIONS =====

// ListSubscriptions возвращает все подписки без фильтрации:
// разграничение доступа выполняется на стороне панели.
func (s *Storage) ListSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	return listRows(ctx, s.DB, "storage.ListSubscriptions", selectQuery(tableSubscriptions, subscriptionColumns),
		func(r *subscriptionRow) []any { return r.dest() }, subscriptionFromRow)
}

// UpsertSubscription вставляет или заменяет подписку.
func (s *Storage) UpsertSubscription(ctx context.Context, sub models.Subscription) error {
	return s.upsert(ctx, "storage.UpsertSubscription", tableSubscriptions, subscriptionColumns, subscriptionToRow(sub).args())
}

// DeleteSubscription удаляет подписку.
func (s *Storage) DeleteSubscription(ctx context.Context, id string) error {
	return s.delete(ctx, "storage.DeleteSubscription", tableSubscriptions, id)
}

// ===== helpers =====

func selectQuery(table string, columns []string) string {
	return fmt.Sprintf(`SELECT %s FROM %s`, strings.Join(columns, ", "), table)
}

// upsertQuery строит INSERT ... ON CONFLICT (id) DO UPDATE по списку колонок.
// Первая колонка всегда id.
func upsertQuery(table string, columns []string) string {
	placeholders := make([]string, len(columns))
	updates := make([]string, 0, len(columns)-1)
	for i, c := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		if c != "id" {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
		}
	}
	return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (id) DO UPDATE SET %s`,
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "), strings.Join(updates, ", "))
}

// insertQuery строит INSERT ... ON CONFLICT DO NOTHING: существующая строка не меняется.
func insertQuery(table string, columns []string) string {
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) ON CONFLICT DO NOTHING`,
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
}

// insert вставляет строку, если её ещё нет, и сообщает, была ли она вставлена.
func (s *Storage) insert(ctx context.Context, op, table string, columns []string, args []any) (bool, error) {
	res, err := s.DB.ExecContext(ctx, insertQuery(table, columns), args...)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n > 0, nil
}

func (s *Storage) upsert(ctx context.Context, op, table string, columns []string, args []any) error {
	if _, err := s.DB.ExecContext(ctx, upsertQuery(table, columns), args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// delete удаляет строку по id. Отсутствие строки ошибкой не считается.
func (s *Storage) delete(ctx context.Context, op, table, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table)
	if _, err := s.DB.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func listRows[R any, M any](ctx context.Context, db *sql.DB, op, query string, dest func(*R) []any, conv func(R) M) ([]M, error) {
	rows, err := db.QueryContext(ctx, query+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]M, 0)
	for rows.Next() {
		var r R
		if err := rows.Scan(dest(&r)...); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, conv(r))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
