package sqlboiler

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/aarondl/sqlboiler/v4/boil"
	"github.com/aarondl/sqlboiler/v4/drivers"
	"github.com/aarondl/sqlboiler/v4/queries"
	"github.com/aarondl/sqlboiler/v4/queries/qm"
	"github.com/aarondl/strmangle"
	"github.com/friendsofgo/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/nrfta/admin-go"
	"github.com/nrfta/admin-go/offset"
)

// ErrNotFound is the cause of BackendRejected errors for missing rows.
var ErrNotFound = errors.New("record not found")

var postgresDialect = drivers.Dialect{
	LQ:                   '"',
	RQ:                   '"',
	UseIndexPlaceholders: true,
	UseDefaultKeyword:    true,
}

// Provider is a DataProvider over SQL tables.
//
// Batch verbs run as one UPDATE or DELETE statement, so they apply to every
// listed row or to none. Ids without a row are skipped and left out of the
// returned ids.
type Provider struct {
	db     boil.ContextExecutor
	tables map[string]Table
	config *admin.ListConfig
	logger *zap.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithListConfig sets the page size defaults and the default sort.
func WithListConfig(cfg *admin.ListConfig) Option {
	return func(p *Provider) {
		if cfg != nil {
			p.config = cfg
		}
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a provider serving tables, keyed by resource name.
func New(db boil.ContextExecutor, tables map[string]Table, opts ...Option) *Provider {
	p := &Provider{
		db:     db,
		tables: make(map[string]Table, len(tables)),
		config: admin.NewListConfig(),
		logger: zap.NewNop(),
	}
	for resource, t := range tables {
		p.tables[resource] = t
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) table(verb admin.Verb, resource string) (Table, error) {
	t, ok := p.tables[resource]
	if !ok {
		return Table{}, admin.UnknownResource(verb, resource)
	}
	return t, nil
}

func (p *Provider) newQuery(mods ...qm.QueryMod) *queries.Query {
	q := &queries.Query{}
	queries.SetDialect(q, &postgresDialect)
	qm.Apply(q, mods...)
	return q
}

// fetcher reads rows of t as records.
func (p *Provider) fetcher(t Table) *Fetcher[admin.Record] {
	return NewFetcher(
		func(ctx context.Context, mods ...qm.QueryMod) ([]admin.Record, error) {
			base := []qm.QueryMod{qm.Select(quoteAll(t.selectColumns())...), qm.From(quote(t.Name))}
			rows, err := p.newQuery(append(base, mods...)...).QueryContext(ctx, p.db)
			if err != nil {
				return nil, err
			}
			return scanRecords(rows, t)
		},
		func(ctx context.Context, mods ...qm.QueryMod) (int64, error) {
			q := p.newQuery(append([]qm.QueryMod{qm.From(quote(t.Name))}, mods...)...)
			queries.SetCount(q)

			var count int64
			if err := q.QueryRowContext(ctx, p.db).Scan(&count); err != nil {
				return 0, err
			}
			return count, nil
		},
	)
}

func (p *Provider) GetList(ctx context.Context, resource string, params admin.ListParams) (*admin.ListResult, error) {
	t, err := p.table(admin.GetList, resource)
	if err != nil {
		return nil, err
	}
	return p.list(ctx, admin.GetList, resource, t, params.Pagination, params.Sort, params.Filter)
}

func (p *Provider) GetOne(ctx context.Context, resource string, params admin.GetOneParams) (*admin.RecordResult, error) {
	t, err := p.table(admin.GetOne, resource)
	if err != nil {
		return nil, err
	}

	records, err := p.fetcher(t).queryFunc(ctx,
		qm.Where(quote(t.idColumn())+" = ?", convertValueForSQL(params.ID)),
		qm.Limit(1),
	)
	if err != nil {
		return nil, admin.BackendRejected(admin.GetOne, resource, err)
	}
	if len(records) == 0 {
		return nil, notFound(admin.GetOne, resource, params.ID)
	}
	return &admin.RecordResult{Data: records[0]}, nil
}

func (p *Provider) GetMany(ctx context.Context, resource string, params admin.GetManyParams) (*admin.RecordsResult, error) {
	t, err := p.table(admin.GetMany, resource)
	if err != nil {
		return nil, err
	}
	if len(params.IDs) == 0 {
		return &admin.RecordsResult{Data: []admin.Record{}}, nil
	}

	records, err := p.fetcher(t).queryFunc(ctx, inMod(t.idColumn(), params.IDs))
	if err != nil {
		return nil, admin.BackendRejected(admin.GetMany, resource, err)
	}
	return &admin.RecordsResult{Data: records}, nil
}

func (p *Provider) GetManyReference(ctx context.Context, resource string, params admin.GetManyReferenceParams) (*admin.ListResult, error) {
	t, err := p.table(admin.GetManyReference, resource)
	if err != nil {
		return nil, err
	}

	filter := params.Filter.Clone()
	filter[params.Target] = params.ID
	return p.list(ctx, admin.GetManyReference, resource, t, params.Pagination, params.Sort, filter)
}

func (p *Provider) Create(ctx context.Context, resource string, params admin.CreateParams) (*admin.RecordResult, error) {
	t, err := p.table(admin.Create, resource)
	if err != nil {
		return nil, err
	}

	cols, args, err := writeColumns(t, params.Data, true)
	if err != nil {
		return nil, admin.BackendRejected(admin.Create, resource, err)
	}

	var stmt string
	if len(cols) == 0 {
		stmt = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES RETURNING %s",
			quote(t.Name), returning(t))
	} else {
		stmt = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
			quote(t.Name),
			strings.Join(quoteAll(cols), ", "),
			strmangle.Placeholders(true, len(cols), 1, 1),
			returning(t),
		)
	}

	records, err := p.raw(ctx, t, stmt, args)
	if err != nil {
		return nil, admin.BackendRejected(admin.Create, resource, err)
	}
	if len(records) == 0 {
		return nil, admin.BackendRejected(admin.Create, resource, errors.New("insert returned no row"))
	}
	return &admin.RecordResult{Data: records[0]}, nil
}

func (p *Provider) Update(ctx context.Context, resource string, params admin.UpdateParams) (*admin.RecordResult, error) {
	t, err := p.table(admin.Update, resource)
	if err != nil {
		return nil, err
	}

	cols, args, err := writeColumns(t, params.Data, false)
	if err != nil {
		return nil, admin.BackendRejected(admin.Update, resource, err)
	}
	if len(cols) == 0 {
		return p.GetOne(ctx, resource, admin.GetOneParams{ID: params.ID})
	}

	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d RETURNING %s",
		quote(t.Name),
		strmangle.SetParamNames(`"`, `"`, 1, cols),
		quote(t.idColumn()),
		len(cols)+1,
		returning(t),
	)

	records, err := p.raw(ctx, t, stmt, append(args, convertValueForSQL(params.ID)))
	if err != nil {
		return nil, admin.BackendRejected(admin.Update, resource, err)
	}
	if len(records) == 0 {
		return nil, notFound(admin.Update, resource, params.ID)
	}
	return &admin.RecordResult{Data: records[0]}, nil
}

// UpdateMany applies data to every listed row in one statement.
func (p *Provider) UpdateMany(ctx context.Context, resource string, params admin.UpdateManyParams) (*admin.IDsResult, error) {
	t, err := p.table(admin.UpdateMany, resource)
	if err != nil {
		return nil, err
	}
	if len(params.IDs) == 0 {
		return &admin.IDsResult{Data: []admin.Identifier{}}, nil
	}

	cols, args, err := writeColumns(t, params.Data, false)
	if err != nil {
		return nil, admin.BackendRejected(admin.UpdateMany, resource, err)
	}
	if len(cols) == 0 {
		return nil, admin.BackendRejected(admin.UpdateMany, resource, errors.New("nothing to update"))
	}

	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s IN (%s) RETURNING %s",
		quote(t.Name),
		strmangle.SetParamNames(`"`, `"`, 1, cols),
		quote(t.idColumn()),
		strmangle.Placeholders(true, len(params.IDs), len(cols)+1, 1),
		quote(t.idColumn()),
	)

	ids, err := p.rawIDs(ctx, t, stmt, append(args, sqlArgs(params.IDs)...))
	if err != nil {
		return nil, admin.BackendRejected(admin.UpdateMany, resource, err)
	}
	return &admin.IDsResult{Data: ids}, nil
}

func (p *Provider) Delete(ctx context.Context, resource string, params admin.DeleteParams) (*admin.RecordResult, error) {
	t, err := p.table(admin.Delete, resource)
	if err != nil {
		return nil, err
	}

	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s = $1 RETURNING %s",
		quote(t.Name), quote(t.idColumn()), returning(t))

	records, err := p.raw(ctx, t, stmt, []any{convertValueForSQL(params.ID)})
	if err != nil {
		return nil, admin.BackendRejected(admin.Delete, resource, err)
	}
	if len(records) == 0 {
		return nil, notFound(admin.Delete, resource, params.ID)
	}
	return &admin.RecordResult{Data: records[0]}, nil
}

// DeleteMany deletes every listed row in one statement.
func (p *Provider) DeleteMany(ctx context.Context, resource string, params admin.DeleteManyParams) (*admin.IDsResult, error) {
	t, err := p.table(admin.DeleteMany, resource)
	if err != nil {
		return nil, err
	}
	if len(params.IDs) == 0 {
		return &admin.IDsResult{Data: []admin.Identifier{}}, nil
	}

	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s IN (%s) RETURNING %s",
		quote(t.Name),
		quote(t.idColumn()),
		strmangle.Placeholders(true, len(params.IDs), 1, 1),
		quote(t.idColumn()),
	)

	ids, err := p.rawIDs(ctx, t, stmt, sqlArgs(params.IDs))
	if err != nil {
		return nil, admin.BackendRejected(admin.DeleteMany, resource, err)
	}
	return &admin.IDsResult{Data: ids}, nil
}

func (p *Provider) list(ctx context.Context, verb admin.Verb, resource string, t Table, page admin.Pagination, sort admin.Sort, filter admin.Filter) (*admin.ListResult, error) {
	where, err := FilterMods(t, filter)
	if err != nil {
		return nil, admin.BackendRejected(verb, resource, err)
	}

	sort, err = p.resolveSort(t, sort)
	if err != nil {
		return nil, admin.BackendRejected(verb, resource, err)
	}

	res, err := p.fetcher(t).List(ctx, page, sort, where,
		func(r admin.Record) (admin.Record, error) { return r, nil },
		offset.WithConfig(p.config),
	)
	if err != nil {
		return nil, admin.BackendRejected(verb, resource, err)
	}
	return res, nil
}

// resolveSort maps the sort field onto a column, falling back to the
// configured default sort and then to the primary key.
func (p *Provider) resolveSort(t Table, sort admin.Sort) (admin.Sort, error) {
	if sort.Field == "" {
		sort = p.config.DefaultSort
		if _, ok := t.column(sort.Field); !ok {
			sort.Field = t.idColumn()
		}
	}

	col, ok := t.column(sort.Field)
	if !ok {
		return admin.Sort{}, errors.Wrapf(ErrUnknownColumn, "sort %q", sort.Field)
	}
	return admin.Sort{Field: col, Order: sort.Order}, nil
}

func (p *Provider) raw(ctx context.Context, t Table, stmt string, args []any) ([]admin.Record, error) {
	p.logger.Debug("sql statement", zap.String("table", t.Name), zap.String("sql", stmt))

	rows, err := queries.Raw(stmt, args...).QueryContext(ctx, p.db)
	if err != nil {
		return nil, err
	}
	return scanRecords(rows, t)
}

func (p *Provider) rawIDs(ctx context.Context, t Table, stmt string, args []any) ([]admin.Identifier, error) {
	records, err := p.raw(ctx, t, stmt, args)
	if err != nil {
		return nil, err
	}
	return admin.RecordIDs(records), nil
}

// writeColumns returns the whitelisted columns of data, sorted, with their
// values. The primary key is only written on insert.
func writeColumns(t Table, data admin.Record, withID bool) ([]string, []any, error) {
	fields := lo.Keys(data)
	slices.Sort(fields)

	cols := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields))
	for _, field := range fields {
		col, ok := t.column(field)
		if !ok {
			return nil, nil, errors.Wrapf(ErrUnknownColumn, "field %q", field)
		}
		if col == t.idColumn() {
			if !withID || data[field] == nil {
				continue
			}
		}
		if slices.Contains(cols, col) {
			continue
		}
		cols = append(cols, col)
		args = append(args, convertValueForSQL(data[field]))
	}
	return cols, args, nil
}

func returning(t Table) string {
	return strings.Join(quoteAll(t.selectColumns()), ", ")
}

func sqlArgs(ids []admin.Identifier) []any {
	return lo.Map(ids, func(id admin.Identifier, _ int) any {
		return convertValueForSQL(id)
	})
}

// scanRecords reads every row into a record keyed by column name. The
// primary key is also exposed as "id".
func scanRecords(rows *sql.Rows, t Table) ([]admin.Record, error) {
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	records := []admin.Record{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		record := make(admin.Record, len(cols)+1)
		for i, col := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			record[col] = v
		}
		record[admin.IDField] = record[t.idColumn()]
		records = append(records, record)
	}
	return records, rows.Err()
}

func notFound(verb admin.Verb, resource string, id admin.Identifier) error {
	return admin.BackendRejected(verb, resource, errors.Wrapf(ErrNotFound, "id %v", id))
}

var _ admin.DataProvider = (*Provider)(nil)
