package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	opaStatusResidual = `{"result": {"queries": [[{"index": 0, "terms": [
		{"type": "ref", "value": [{"type": "var", "value": "eq"}]},
		{"type": "ref", "value": [{"type": "var", "value": "data"}, {"type": "string", "value": "orders"}, {"type": "var", "value": "$0"}, {"type": "string", "value": "status"}]},
		{"type": "string", "value": "paid"}
	]}]]}}`
	opaInputResidual = `{"result": {"queries": [[{"index": 0, "terms": [
		{"type": "ref", "value": [{"type": "var", "value": "eq"}]},
		{"type": "ref", "value": [{"type": "var", "value": "input"}, {"type": "string", "value": "subject"}, {"type": "string", "value": "tenant"}]},
		{"type": "number", "value": 7}
	]}]]}}`
)

// newOPAServer fakes an OPA server for the ksql.orders.allow policy:
// input discovery gets a residual over input.subject.tenant, any other
// compile request the ORDERS status filter, and the masks rule masks.
func newOPAServer(t *testing.T, masks string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/compile", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Unknowns []string `json:"unknowns"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Unknowns) == 0 {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if req.Unknowns[0] == "input" {
			_, _ = w.Write([]byte(opaInputResidual))
			return
		}
		_, _ = w.Write([]byte(opaStatusResidual))
	})
	mux.HandleFunc("/v1/data/ksql/orders/masks", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(masks))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

const cardMasks = `{"result": {"orders": {"card": {"replace": {"value": "****"}}}}}`

func TestOPAFiltersQuery(t *testing.T) {
	t.Parallel()
	srv := newOPAServer(t, `{}`)
	sess, buf := newTestSession(t, "ksql")
	run(t, sess, "plugin opa "+srv.URL+" ksql.orders.allow subject.tenant=7")
	assert.Contains(t, buf.String(), "OPA enabled (policy: data.ksql.orders.allow)")

	run(t, sess, "from orders o", "select o.id, o.card")
	sql, err := sess.GenerateSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT O.ID, O.CARD FROM ORDERS AS O WHERE O.STATUS = 'paid'", sql)

	buf.Reset()
	run(t, sess, "plugins")
	assert.Contains(t, buf.String(), "opa            on   (policy: data.ksql.orders.allow)")
}

func TestOPAMasksProjection(t *testing.T) {
	t.Parallel()
	srv := newOPAServer(t, cardMasks)
	sql := execSQL(t, "ksql", "plugin opa "+srv.URL+" ksql.orders.allow", "from orders", "select id, card")
	assert.Equal(t, "SELECT ID, '****' AS CARD FROM ORDERS WHERE ORDERS.STATUS = 'paid'", sql)
}

func TestOPAMaskedStarUsesSchema(t *testing.T) {
	t.Parallel()
	srv := newOPAServer(t, cardMasks)
	sess, buf := newTestSession(t, "sqlite")
	run(t, sess, "plugin opa "+srv.URL+" ksql.orders.allow", "from orders")

	_, err := sess.GenerateSQL()
	assert.ErrorContains(t, err, "no database connection")

	run(t, sess, "connect :memory:")
	sess.conn.db.SetMaxOpenConns(1)
	_, err = sess.conn.db.Exec("CREATE TABLE ORDERS (ID INTEGER, CARD TEXT, STATUS TEXT)")
	require.NoError(t, err)

	buf.Reset()
	run(t, sess, "ksql")
	assert.Contains(t, buf.String(), "SELECT ORDERS.ID, '****' AS CARD, ORDERS.STATUS FROM ORDERS WHERE ORDERS.STATUS = 'paid';")
}

func TestOPAStatusAndInputs(t *testing.T) {
	t.Parallel()
	srv := newOPAServer(t, `{}`)
	sess, buf := newTestSession(t, "ksql")
	run(t, sess, "opa status")
	assert.Contains(t, buf.String(), "OPA: off")

	run(t, sess, "plugin opa "+srv.URL+" ksql.orders.allow subject.role=analyst", "opa input subject.tenant=7")
	assert.Contains(t, buf.String(), "Set input subject.tenant = 7")
	assert.Equal(t, map[string]any{"role": "analyst", "tenant": float64(7)}, sess.opa.input["subject"])

	buf.Reset()
	run(t, sess, "opa status")
	out := buf.String()
	assert.Contains(t, out, "Server: "+srv.URL)
	assert.Contains(t, out, "Policy: data.ksql.orders.allow")
	assert.Contains(t, out, "      subject:\n        role: analyst\n        tenant: 7\n")

	buf.Reset()
	run(t, sess, "opa inputs")
	assert.Contains(t, buf.String(), "subject.tenant = 7")

	run(t, sess, "opa input subject.tenant")
	buf.Reset()
	run(t, sess, "opa inputs")
	assert.Contains(t, buf.String(), "subject.tenant (unset)")
}

func TestOPAExplainAndConditions(t *testing.T) {
	t.Parallel()
	srv := newOPAServer(t, cardMasks)
	sess, buf := newTestSession(t, "ksql")
	run(t, sess, "plugin opa "+srv.URL+" ksql.orders.allow")

	run(t, sess, "opa explain orders o verbose")
	out := buf.String()
	assert.Contains(t, out, "OPA explain for ORDERS:")
	assert.Contains(t, out, `"unknowns":["data.orders"]`)
	assert.Contains(t, out, "[1] eq(status, paid) -> O.STATUS = 'paid'")
	assert.Contains(t, out, "1 query(ies), 1 expression(s)")
	assert.Contains(t, out, "ORDERS.CARD -> replace: '****'")

	assert.ErrorIs(t, sess.Execute("opa conditions"), errNoQuery)
	buf.Reset()
	run(t, sess, "from orders", "opa conditions", "opa masks")
	assert.Contains(t, buf.String(), "ORDERS: ORDERS.STATUS = 'paid'")
	assert.Contains(t, buf.String(), "ORDERS.CARD -> replace: '****'")
}

func TestOPAOff(t *testing.T) {
	t.Parallel()
	srv := newOPAServer(t, `{}`)
	sess, _ := newTestSession(t, "ksql")
	assert.ErrorIs(t, sess.Execute("opa explain orders"), errOPAOff)
	assert.ErrorContains(t, sess.Execute("plugin opa "+srv.URL+" p bad"), "want key=value")

	run(t, sess, "plugin opa "+srv.URL+" ksql.orders.allow", "from orders", "opa off")
	assert.Nil(t, sess.opa)
	sql, err := sess.GenerateSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM ORDERS", sql)
	assert.ErrorIs(t, sess.Execute("opa masks"), errOPAOff)

	run(t, sess, "plugin opa "+srv.URL+" ksql.orders.allow", "plugin off")
	assert.Nil(t, sess.opa)
}

func TestNestedInputValues(t *testing.T) {
	t.Parallel()
	m := map[string]any{}
	setNestedValue(m, "a.b", parseOPAValue("true"))
	setNestedValue(m, "c", parseOPAValue("1.5"))
	setNestedValue(m, "d", parseOPAValue("x"))
	assert.Equal(t, true, getNestedValue(m, "a.b"))
	assert.Equal(t, 1.5, getNestedValue(m, "c"))
	assert.Equal(t, "x", getNestedValue(m, "d"))
	assert.Nil(t, getNestedValue(m, "a.b.c"))

	deleteNestedValue(m, "a.b")
	assert.Equal(t, map[string]any{}, m["a"])
	deleteNestedValue(m, "missing.key")
}
