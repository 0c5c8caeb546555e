package database

import (
	"context"
	"database/sql"
	"errors"
	"memo-store/models"
	"memo-store/storage"

	sq "github.com/Masterminds/squirrel"
)

// Repository is the SQLite memo store
type Repository struct {
	db *DB
}

var _ storage.Store = (*Repository)(nil)

func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// sortColumns maps sort fields to columns; only these names ever reach ORDER BY
var sortColumns = map[models.SortField]string{
	models.SortByID:   "id",
	models.SortByText: "text",
}

// ==================== WRITES ====================

func (r *Repository) Create(ctx context.Context, text string) (*models.Memo, error) {
	memo, err := models.NewMemo(text)
	if err != nil {
		return nil, err
	}

	query, args, err := sq.Insert("memos").
		Columns("text").
		Values(memo.Text).
		ToSql()
	if err != nil {
		return nil, storage.Wrap("build create", 0, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, storage.Wrap("create", 0, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, storage.Wrap("create", 0, err)
	}
	memo.ID = id

	return memo, nil
}

func (r *Repository) Update(ctx context.Context, id int64, text string) (*models.Memo, error) {
	memo, err := models.NewMemo(text)
	if err != nil {
		return nil, err
	}

	query, args, err := sq.Update("memos").
		Set("text", memo.Text).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, storage.Wrap("build update", id, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, storage.Wrap("update", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, storage.Wrap("update", id, err)
	}
	if n == 0 {
		return nil, storage.ErrNotFound
	}

	memo.ID = id
	return memo, nil
}

func (r *Repository) DeleteByID(ctx context.Context, id int64) error {
	query, args, err := sq.Delete("memos").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return storage.Wrap("build delete", id, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return storage.Wrap("delete", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return storage.Wrap("delete", id, err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// ==================== READS ====================

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Memo, error) {
	query, args, err := sq.Select("id", "text").
		From("memos").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, storage.Wrap("build find", id, err)
	}

	var memo models.Memo
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&memo.ID, &memo.Text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storage.Wrap("find", id, err)
	}

	return &memo, nil
}

// Page counts and selects inside one transaction so the totals describe the
// same snapshot as the rows
func (r *Repository) Page(ctx context.Context, req models.PageRequest) (*models.Page, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	countQuery, _, err := sq.Select("COUNT(*)").From("memos").ToSql()
	if err != nil {
		return nil, storage.Wrap("build count", 0, err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storage.Wrap("page", 0, err)
	}
	defer tx.Rollback()

	var total int64
	if err := tx.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, storage.Wrap("count", 0, err)
	}
	if req.PastEnd(total) {
		return models.NewPage(req, nil, total), nil
	}

	offset, _ := req.Offset()
	selectQuery, args, err := sq.Select("id", "text").
		From("memos").
		OrderBy(orderClauses(req.OrderBy())...).
		Limit(uint64(req.Size)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, storage.Wrap("build page", 0, err)
	}

	rows, err := tx.QueryContext(ctx, selectQuery, args...)
	if err != nil {
		return nil, storage.Wrap("page", 0, err)
	}
	defer rows.Close()

	memos := make([]models.Memo, 0)
	for rows.Next() {
		var memo models.Memo
		if err := rows.Scan(&memo.ID, &memo.Text); err != nil {
			return nil, storage.Wrap("scan page", 0, err)
		}
		memos = append(memos, memo)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Wrap("page", 0, err)
	}

	return models.NewPage(req, memos, total), nil
}

// ==================== LIFECYCLE ====================

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func orderClauses(order []models.Sort) []string {
	clauses := make([]string, 0, len(order))
	for _, s := range order {
		dir := "ASC"
		if s.Direction == models.Desc {
			dir = "DESC"
		}
		clauses = append(clauses, sortColumns[s.Field]+" "+dir)
	}
	return clauses
}
