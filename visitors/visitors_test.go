package visitors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bawdo/ksqltree/internal/testutil"
	"github.com/bawdo/ksqltree/nodes"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func name(dotted string) nodes.QualifiedName {
	return must(nodes.ParseQualifiedName(dotted))
}

func table(dotted string) *nodes.Table {
	return must(nodes.NewTable(name(dotted)))
}

func cmp(op nodes.ComparisonOp, l, r nodes.Expression) *nodes.ComparisonExpression {
	return must(nodes.NewComparisonExpression(op, l, r))
}

func star() *nodes.Select {
	return must(nodes.NewSelect(false, []nodes.SelectItem{nodes.NewAllColumns(nodes.QualifiedName{})}))
}

// SELECT * FROM ORDERS WHERE AMOUNT > 100
func ordersQuery() *nodes.Query {
	where := cmp(nodes.OpGreaterThan, nodes.Column("AMOUNT"), nodes.NewIntegerLiteral(100))
	return must(nodes.NewQuery(star(), table("ORDERS"), nodes.QueryClauses{Where: where}))
}

func totalsCTAS(t *testing.T) *nodes.CreateTableAsSelect {
	t.Helper()
	return must(nodes.NewCreateTableAsSelect(name("TOTALS"), ordersQuery(), true,
		testutil.Props(t, "KAFKA_TOPIC", "totals")))
}

// --- Relations ---

func TestVisitTable(t *testing.T) {
	t.Parallel()
	testutil.AssertSQL(t, NewKSQLVisitor(), table("ORDERS"), "ORDERS")
	testutil.AssertSQL(t, NewKSQLVisitor(), table("orders"), "`orders`")
	testutil.AssertSQL(t, NewPostgresVisitor(), table("orders"), `"orders"`)
	testutil.AssertSQL(t, NewMySQLVisitor(), table("orders"), "`orders`")
	testutil.AssertSQL(t, NewSQLiteVisitor(), table("db.orders"), `"db"."orders"`)
}

func TestVisitAliasedRelation(t *testing.T) {
	t.Parallel()
	o := must(nodes.NewAliasedRelation(table("ORDERS"), "O"))
	testutil.AssertSQL(t, NewKSQLVisitor(), o, "ORDERS AS O")
	testutil.AssertSQL(t, NewPostgresVisitor(), o, `"ORDERS" AS "O"`)
}

func TestVisitJoin(t *testing.T) {
	t.Parallel()
	o := must(nodes.NewAliasedRelation(table("ORDERS"), "O"))
	u := must(nodes.NewAliasedRelation(table("USERS"), "U"))
	on := cmp(nodes.OpEqual, nodes.Column("O.USER_ID"), nodes.Column("U.ID"))
	j := must(nodes.NewJoin(nodes.LeftJoin, o, u, on))

	testutil.AssertSQL(t, NewKSQLVisitor(), j, "ORDERS AS O LEFT JOIN USERS AS U ON O.USER_ID = U.ID")
	testutil.AssertSQL(t, NewSQLiteVisitor(), j,
		`"ORDERS" AS "O" LEFT JOIN "USERS" AS "U" ON "O"."USER_ID" = "U"."ID"`)
}

func TestVisitJoinWithoutCriteria(t *testing.T) {
	t.Parallel()
	j := must(nodes.NewJoin(nodes.InnerJoin, table("A"), table("B"), nil))
	testutil.AssertSQL(t, NewKSQLVisitor(), j, "A INNER JOIN B")
}

func TestMySQLRejectsFullOuterJoin(t *testing.T) {
	t.Parallel()
	j := must(nodes.NewJoin(nodes.OuterJoin, table("A"), table("B"), cmp(nodes.OpEqual, nodes.Column("A.ID"), nodes.Column("B.ID"))))
	_, err := NewMySQLVisitor().Format(j)
	require.ErrorIs(t, err, ErrUnsupported)

	testutil.AssertSQL(t, NewKSQLVisitor(), j, "A FULL OUTER JOIN B ON A.ID = B.ID")
}

// --- Literals ---

func TestVisitLiterals(t *testing.T) {
	t.Parallel()
	v := NewKSQLVisitor()
	testutil.AssertSQL(t, v, nodes.NewStringLiteral("it's"), "'it''s'")
	testutil.AssertSQL(t, v, nodes.NewIntegerLiteral(-7), "-7")
	testutil.AssertSQL(t, v, nodes.NewDoubleLiteral(1.5), "1.5")
	testutil.AssertSQL(t, v, nodes.NewDoubleLiteral(2), "2.0")
	testutil.AssertSQL(t, v, nodes.NewBooleanLiteral(true), "TRUE")
	testutil.AssertSQL(t, v, nodes.NewBooleanLiteral(false), "FALSE")
	testutil.AssertSQL(t, v, nodes.NewNullLiteral(), "NULL")
}

func TestMySQLEscapesBackslash(t *testing.T) {
	t.Parallel()
	lit := nodes.NewStringLiteral(`a\b'c`)
	testutil.AssertSQL(t, NewMySQLVisitor(), lit, `'a\\b''c'`)
	testutil.AssertSQL(t, NewPostgresVisitor(), lit, `'a\b''c'`)
}

// --- Expressions ---

func TestVisitArithmeticParenthesizesNested(t *testing.T) {
	t.Parallel()
	sum := must(nodes.NewArithmeticBinaryExpression(nodes.OpAdd, nodes.Column("A"), nodes.NewIntegerLiteral(1)))
	product := must(nodes.NewArithmeticBinaryExpression(nodes.OpMultiply, sum, nodes.NewIntegerLiteral(2)))
	testutil.AssertSQL(t, NewKSQLVisitor(), product, "(A + 1) * 2")
}

func TestVisitLogicalAndNot(t *testing.T) {
	t.Parallel()
	a := cmp(nodes.OpGreaterThan, nodes.Column("A"), nodes.NewIntegerLiteral(1))
	b := cmp(nodes.OpEqual, nodes.Column("B"), nodes.NewStringLiteral("x"))
	and := must(nodes.NewLogicalBinaryExpression(nodes.OpAnd, a, b))
	not := must(nodes.NewNotExpression(and))

	testutil.AssertSQL(t, NewKSQLVisitor(), and, "(A > 1) AND (B = 'x')")
	testutil.AssertSQL(t, NewKSQLVisitor(), not, "NOT ((A > 1) AND (B = 'x'))")
	testutil.AssertSQL(t, NewKSQLVisitor(), must(nodes.NewNotExpression(nodes.Column("FLAG"))), "NOT FLAG")
}

func TestVisitIsDistinctFrom(t *testing.T) {
	t.Parallel()
	c := cmp(nodes.OpIsDistinctFrom, nodes.Column("A"), nodes.Column("B"))
	testutil.AssertSQL(t, NewKSQLVisitor(), c, "A IS DISTINCT FROM B")
	testutil.AssertSQL(t, NewPostgresVisitor(), c, `"A" IS DISTINCT FROM "B"`)
	testutil.AssertSQL(t, NewMySQLVisitor(), c, "NOT (`A` <=> `B`)")
	testutil.AssertSQL(t, NewSQLiteVisitor(), c, `"A" IS NOT "B"`)
}

func TestDialectOverridesApplyToNestedNodes(t *testing.T) {
	t.Parallel()
	c := cmp(nodes.OpIsDistinctFrom, nodes.Column("A"), nodes.NewNullLiteral())
	q := must(nodes.NewQuery(star(), table("T"), nodes.QueryClauses{Where: c}))
	testutil.AssertSQL(t, NewMySQLVisitor(), q, "SELECT * FROM `T` WHERE NOT (`A` <=> NULL)")
}

func TestVisitFunctionCall(t *testing.T) {
	t.Parallel()
	f := must(nodes.NewFunctionCall(name("SUBSTRING"), []nodes.Expression{
		nodes.Column("NAME"), nodes.NewIntegerLiteral(1), nodes.NewIntegerLiteral(3),
	}))
	testutil.AssertSQL(t, NewKSQLVisitor(), f, "SUBSTRING(NAME, 1, 3)")
	testutil.AssertSQL(t, NewPostgresVisitor(), f, `SUBSTRING("NAME", 1, 3)`)
}

// --- Queries ---

func TestVisitQueryAllClauses(t *testing.T) {
	t.Parallel()
	count := must(nodes.NewFunctionCall(name("COUNT"), []nodes.Expression{nodes.Column("ID")}))
	sel := must(nodes.NewSelect(true, []nodes.SelectItem{
		must(nodes.NewSingleColumn(nodes.Column("USER_ID"), "")),
		must(nodes.NewSingleColumn(count, "TOTAL")),
	}))
	limit := 10
	q := must(nodes.NewQuery(sel, table("ORDERS"), nodes.QueryClauses{
		GroupBy: []nodes.Expression{nodes.Column("USER_ID")},
		Having:  cmp(nodes.OpGreaterThan, count, nodes.NewIntegerLiteral(1)),
		Limit:   &limit,
	}))

	testutil.AssertSQL(t, NewKSQLVisitor(), q,
		"SELECT DISTINCT USER_ID, COUNT(ID) AS TOTAL FROM ORDERS GROUP BY USER_ID HAVING COUNT(ID) > 1 LIMIT 10")
	testutil.AssertSQL(t, NewKSQLVisitor(WithPretty()), q,
		"SELECT DISTINCT USER_ID, COUNT(ID) AS TOTAL\nFROM ORDERS\nGROUP BY USER_ID\nHAVING COUNT(ID) > 1\nLIMIT 10")
}

func TestVisitAllColumnsWithPrefix(t *testing.T) {
	t.Parallel()
	testutil.AssertSQL(t, NewKSQLVisitor(), nodes.NewAllColumns(name("O")), "O.*")
	testutil.AssertSQL(t, NewPostgresVisitor(), nodes.NewAllColumns(name("o")), `"o".*`)
}

// --- CREATE ... AS SELECT ---

func TestVisitCreateTableAsSelect(t *testing.T) {
	t.Parallel()
	ctas := totalsCTAS(t)

	testutil.AssertSQL(t, NewKSQLVisitor(), ctas,
		"CREATE TABLE IF NOT EXISTS TOTALS WITH (KAFKA_TOPIC='totals') AS SELECT * FROM ORDERS WHERE AMOUNT > 100")
	testutil.AssertSQL(t, NewKSQLVisitor(WithPretty()), ctas,
		"CREATE TABLE IF NOT EXISTS TOTALS WITH (KAFKA_TOPIC='totals') AS\nSELECT *\nFROM ORDERS\nWHERE AMOUNT > 100")
}

func TestVisitCreateTableAsSelectRelationalDropsProperties(t *testing.T) {
	t.Parallel()
	ctas := totalsCTAS(t)
	testutil.AssertSQL(t, NewPostgresVisitor(), ctas,
		`CREATE TABLE IF NOT EXISTS "TOTALS" AS SELECT * FROM "ORDERS" WHERE "AMOUNT" > 100`)
	testutil.AssertSQL(t, NewMySQLVisitor(), ctas,
		"CREATE TABLE IF NOT EXISTS `TOTALS` AS SELECT * FROM `ORDERS` WHERE `AMOUNT` > 100")
	testutil.AssertSQL(t, NewSQLiteVisitor(), ctas,
		`CREATE TABLE IF NOT EXISTS "TOTALS" AS SELECT * FROM "ORDERS" WHERE "AMOUNT" > 100`)
}

func TestVisitCreateTableAsSelectPropertiesInOrder(t *testing.T) {
	t.Parallel()
	props := testutil.Props(t, "VALUE_FORMAT", "JSON", "KAFKA_TOPIC", "t")
	props = must(props.Merge(nodes.Property{Key: "PARTITIONS", Value: nodes.NewIntegerLiteral(4)}))
	ctas := must(nodes.NewCreateTableAsSelect(name("T"), ordersQuery(), false, props))
	testutil.AssertSQL(t, NewKSQLVisitor(), ctas,
		"CREATE TABLE T WITH (VALUE_FORMAT='JSON', KAFKA_TOPIC='t', PARTITIONS=4) AS SELECT * FROM ORDERS WHERE AMOUNT > 100")
}

func TestVisitCreateStreamAsSelect(t *testing.T) {
	t.Parallel()
	csas := must(nodes.NewCreateStreamAsSelect(name("BIG_ORDERS"), ordersQuery(), false,
		nodes.Properties{}, nodes.Column("ID")))

	testutil.AssertSQL(t, NewKSQLVisitor(), csas,
		"CREATE STREAM BIG_ORDERS AS SELECT * FROM ORDERS WHERE AMOUNT > 100 PARTITION BY ID")

	for _, v := range []Formatter{NewPostgresVisitor(), NewMySQLVisitor(), NewSQLiteVisitor()} {
		_, err := v.Format(csas)
		require.ErrorIs(t, err, ErrUnsupported, v.Dialect())
	}
}

func TestUnsupportedErrorCarriesLocation(t *testing.T) {
	t.Parallel()
	csas := must(nodes.NewCreateStreamAsSelect(name("S"), ordersQuery(), false,
		nodes.Properties{}, nil, nodes.At(nodes.NodeLocation{Line: 3, Column: 4})))
	_, err := NewPostgresVisitor().Format(csas)
	require.ErrorIs(t, err, ErrUnsupported)
	assert.Contains(t, err.Error(), "postgres")
	assert.Contains(t, err.Error(), "Line: 3, Col: 4")
}

// --- Other statements ---

func TestVisitCreateTable(t *testing.T) {
	t.Parallel()
	elems := []*nodes.TableElement{
		must(nodes.NewTableElement("ID", "BIGINT")),
		must(nodes.NewTableElement("NAME", "VARCHAR")),
	}
	ct := must(nodes.NewCreateTable(name("USERS"), elems, false,
		testutil.Props(t, "KAFKA_TOPIC", "users", "VALUE_FORMAT", "JSON")))

	testutil.AssertSQL(t, NewKSQLVisitor(), ct,
		"CREATE TABLE USERS (ID BIGINT, NAME VARCHAR) WITH (KAFKA_TOPIC='users', VALUE_FORMAT='JSON')")
	testutil.AssertSQL(t, NewPostgresVisitor(), ct, `CREATE TABLE "USERS" ("ID" BIGINT, "NAME" VARCHAR)`)
}

func TestVisitCreateTableWithoutColumns(t *testing.T) {
	t.Parallel()
	ct := must(nodes.NewCreateTable(name("USERS"), nil, true, testutil.Props(t, "KAFKA_TOPIC", "users")))
	testutil.AssertSQL(t, NewKSQLVisitor(), ct, "CREATE TABLE IF NOT EXISTS USERS WITH (KAFKA_TOPIC='users')")

	_, err := NewSQLiteVisitor().Format(ct)
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestVisitCreateStream(t *testing.T) {
	t.Parallel()
	cs := must(nodes.NewCreateStream(name("CLICKS"), []*nodes.TableElement{must(nodes.NewTableElement("URL", "STRING"))},
		false, testutil.Props(t, "KAFKA_TOPIC", "clicks")))
	testutil.AssertSQL(t, NewKSQLVisitor(), cs, "CREATE STREAM CLICKS (URL STRING) WITH (KAFKA_TOPIC='clicks')")

	_, err := NewMySQLVisitor().Format(cs)
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestVisitInsertInto(t *testing.T) {
	t.Parallel()
	ins := must(nodes.NewInsertInto(name("TOTALS"), ordersQuery(), nil))
	testutil.AssertSQL(t, NewKSQLVisitor(), ins, "INSERT INTO TOTALS SELECT * FROM ORDERS WHERE AMOUNT > 100")
	testutil.AssertSQL(t, NewPostgresVisitor(), ins, `INSERT INTO "TOTALS" SELECT * FROM "ORDERS" WHERE "AMOUNT" > 100`)

	partitioned := must(nodes.NewInsertInto(name("TOTALS"), ordersQuery(), nodes.Column("ID")))
	testutil.AssertSQL(t, NewKSQLVisitor(), partitioned,
		"INSERT INTO TOTALS SELECT * FROM ORDERS WHERE AMOUNT > 100 PARTITION BY ID")
	_, err := NewPostgresVisitor().Format(partitioned)
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestVisitDrop(t *testing.T) {
	t.Parallel()
	dt := must(nodes.NewDropTable(name("T"), true, true))
	ds := must(nodes.NewDropStream(name("S"), false, false))

	testutil.AssertSQL(t, NewKSQLVisitor(), dt, "DROP TABLE IF EXISTS T DELETE TOPIC")
	testutil.AssertSQL(t, NewKSQLVisitor(), ds, "DROP STREAM S")
	testutil.AssertSQL(t, NewPostgresVisitor(), must(nodes.NewDropTable(name("T"), true, false)), `DROP TABLE IF EXISTS "T"`)

	_, err := NewPostgresVisitor().Format(dt)
	require.ErrorIs(t, err, ErrUnsupported)
	_, err = NewSQLiteVisitor().Format(ds)
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestVisitStatements(t *testing.T) {
	t.Parallel()
	script := must(nodes.NewStatements([]nodes.Statement{
		must(nodes.NewDropTable(name("T"), true, true)),
		must(nodes.NewDropStream(name("S"), false, false)),
	}))
	testutil.AssertSQL(t, NewKSQLVisitor(), script, "DROP TABLE IF EXISTS T DELETE TOPIC;\nDROP STREAM S;")
	testutil.AssertSQL(t, NewKSQLVisitor(WithPretty()), script, "DROP TABLE IF EXISTS T DELETE TOPIC;\n\nDROP STREAM S;")
}

// --- Parameters ---

func TestWithParamsCollectsLiterals(t *testing.T) {
	t.Parallel()
	where := must(nodes.NewLogicalBinaryExpression(nodes.OpAnd,
		cmp(nodes.OpGreaterThan, nodes.Column("AMOUNT"), nodes.NewIntegerLiteral(100)),
		cmp(nodes.OpEqual, nodes.Column("STATUS"), nodes.NewStringLiteral("paid"))))
	q := must(nodes.NewQuery(star(), table("ORDERS"), nodes.QueryClauses{Where: where}))

	pg := NewPostgresVisitor(WithParams())
	testutil.AssertSQL(t, pg, q, `SELECT * FROM "ORDERS" WHERE ("AMOUNT" > $1) AND ("STATUS" = $2)`)
	assert.Equal(t, []any{int64(100), "paid"}, pg.Params())

	my := NewMySQLVisitor(WithParams())
	testutil.AssertSQL(t, my, q, "SELECT * FROM `ORDERS` WHERE (`AMOUNT` > ?) AND (`STATUS` = ?)")
	assert.Equal(t, []any{int64(100), "paid"}, my.Params())
}

func TestWithParamsResetsBetweenCalls(t *testing.T) {
	t.Parallel()
	v := NewSQLiteVisitor(WithParams())
	_, err := v.Format(nodes.NewIntegerLiteral(1))
	require.NoError(t, err)
	_, err = v.Format(nodes.NewIntegerLiteral(2))
	require.NoError(t, err)
	assert.Equal(t, []any{int64(2)}, v.Params())
}

func TestWithParamsKeepsNullInline(t *testing.T) {
	t.Parallel()
	v := NewPostgresVisitor(WithParams())
	testutil.AssertSQL(t, v, nodes.NewNullLiteral(), "NULL")
	assert.Empty(t, v.Params())
}

func TestKSQLIgnoresWithParams(t *testing.T) {
	t.Parallel()
	v := NewKSQLVisitor(WithParams())
	testutil.AssertSQL(t, v, nodes.NewIntegerLiteral(5), "5")
	assert.Empty(t, v.Params())
}

// --- Helpers ---

func TestFormatDefaultsToKSQL(t *testing.T) {
	t.Parallel()
	got, err := Format(table("orders"))
	require.NoError(t, err)
	assert.Equal(t, "`orders`", got)
}

func TestFormatWith(t *testing.T) {
	t.Parallel()
	got, err := FormatWith(NewPostgresVisitor(), table("orders"))
	require.NoError(t, err)
	assert.Equal(t, `"orders"`, got)

	_, err = FormatWith(nil, table("orders"))
	require.Error(t, err)
}

func TestFormatNilNode(t *testing.T) {
	t.Parallel()
	_, err := NewKSQLVisitor().Format(nil)
	require.ErrorIs(t, err, nodes.ErrNilNode)
}

func TestDialectNames(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "ksql", NewKSQLVisitor().Dialect())
	assert.Equal(t, "postgres", NewPostgresVisitor().Dialect())
	assert.Equal(t, "mysql", NewMySQLVisitor().Dialect())
	assert.Equal(t, "sqlite", NewSQLiteVisitor().Dialect())
}
