package postgres

import (
	"context"
	"memo-store/models"
	"memo-store/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBInterface defines the minimal interface needed by the repository
type DBInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// Repository is the PostgreSQL memo store
type Repository struct {
	db   DBInterface
	pool *pgxpool.Pool
}

var _ storage.Store = (*Repository)(nil)

// NewRepository creates a memo repository over db
func NewRepository(db DBInterface) *Repository {
	return &Repository{db: db}
}

// Text sorts byte-wise so the order matches the other backends regardless of
// the database locale
var sortColumns = map[models.SortField]string{
	models.SortByID:   "id",
	models.SortByText: `text COLLATE "C"`,
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Create inserts a memo and returns it with its generated id
func (r *Repository) Create(ctx context.Context, text string) (*models.Memo, error) {
	memo, err := models.NewMemo(text)
	if err != nil {
		return nil, err
	}

	query, args, err := psql.Insert("memos").
		Columns("text").
		Values(memo.Text).
		Suffix("RETURNING id, text").
		ToSql()
	if err != nil {
		return nil, storage.Wrap("build create", 0, err)
	}

	var created models.Memo
	if err := pgxscan.Get(ctx, r.db, &created, query, args...); err != nil {
		return nil, storage.Wrap("create", 0, err)
	}
	return &created, nil
}

// FindByID returns (nil, nil) when no memo has the id
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Memo, error) {
	query, args, err := psql.Select("id", "text").
		From("memos").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, storage.Wrap("build find", id, err)
	}

	var memo models.Memo
	if err := pgxscan.Get(ctx, r.db, &memo, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, storage.Wrap("find", id, err)
	}
	return &memo, nil
}

// Update replaces a memo's text
func (r *Repository) Update(ctx context.Context, id int64, text string) (*models.Memo, error) {
	memo, err := models.NewMemo(text)
	if err != nil {
		return nil, err
	}

	query, args, err := psql.Update("memos").
		Set("text", memo.Text).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING id, text").
		ToSql()
	if err != nil {
		return nil, storage.Wrap("build update", id, err)
	}

	var updated models.Memo
	if err := pgxscan.Get(ctx, r.db, &updated, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, storage.ErrNotFound
		}
		return nil, storage.Wrap("update", id, err)
	}
	return &updated, nil
}

// DeleteByID removes a memo
func (r *Repository) DeleteByID(ctx context.Context, id int64) error {
	query, args, err := psql.Delete("memos").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return storage.Wrap("build delete", id, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return storage.Wrap("delete", id, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Page reads the count and the rows in one repeatable-read transaction
func (r *Repository) Page(ctx context.Context, req models.PageRequest) (*models.Page, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	countQuery, _, err := psql.Select("COUNT(*)").From("memos").ToSql()
	if err != nil {
		return nil, storage.Wrap("build count", 0, err)
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, storage.Wrap("begin page", 0, err)
	}

	var total int64
	if err := tx.QueryRow(ctx, countQuery).Scan(&total); err != nil {
		_ = tx.Rollback(ctx)
		return nil, storage.Wrap("count", 0, err)
	}

	var memos []models.Memo
	if !req.PastEnd(total) {
		offset, _ := req.Offset()
		selectQuery, args, err := psql.Select("id", "text").
			From("memos").
			OrderBy(orderClauses(req.OrderBy())...).
			Limit(uint64(req.Size)).
			Offset(uint64(offset)).
			ToSql()
		if err != nil {
			_ = tx.Rollback(ctx)
			return nil, storage.Wrap("build page", 0, err)
		}
		if err := pgxscan.Select(ctx, tx, &memos, selectQuery, args...); err != nil {
			_ = tx.Rollback(ctx)
			return nil, storage.Wrap("page", 0, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storage.Wrap("commit page", 0, err)
	}

	return models.NewPage(req, memos, total), nil
}

// Ping verifies the pool can reach the server
func (r *Repository) Ping(ctx context.Context) error {
	if r.pool == nil {
		return nil
	}
	return r.pool.Ping(ctx)
}

// Close shuts down the connection pool
func (r *Repository) Close() error {
	if r.pool != nil {
		r.pool.Close()
	}
	return nil
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
