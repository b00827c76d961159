package textrewrite

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSources_AliasedJoin(t *testing.T) {
	sql := `select * from "users" as "u" left join "posts" "p" on "u"."id" = "p"."user_id" where "u"."id" = $1`
	m, ok := ResolveSources(sql)
	require.True(t, ok)

	require.Len(t, m.Sources, 2)
	assert.Equal(t, "users", m.Sources[0].Name)
	assert.Equal(t, "u", m.Sources[0].Alias)
	assert.Equal(t, "p", m.Sources[1].Qualifier())
	assert.Less(t, m.Sources[0].Position, m.Sources[1].Position)

	require.Len(t, m.Joins, 1)
	j := m.Joins[0]
	assert.Equal(t, "LEFT JOIN", j.JoinType)
	assert.Equal(t, "posts", j.TableName)
	assert.Equal(t, "p", j.TableAlias)
	assert.Equal(t, "u", j.LeftSource)
	assert.Equal(t, "p", j.RightSource)
	require.True(t, j.HasOn)
	assert.Equal(t, `"u"."id" = "p"."user_id"`, strings.TrimSpace(sql[j.OnStart:j.OnEnd]))

	assert.Equal(t, `"u"."id" = $1`, strings.TrimSpace(sql[m.Where.Start:m.Where.End]))
	assert.True(t, m.OrderBy.Empty())
}

func TestResolveSources_JoinKinds(t *testing.T) {
	sql := "select * from public.a, b x inner join c on a.id = c.id cross join d left outer join e as ee using (id) order by 1"
	m, ok := ResolveSources(sql)
	require.True(t, ok)

	var quals []string
	for _, s := range m.Sources {
		quals = append(quals, s.Qualifier())
	}
	assert.Equal(t, []string{"a", "x", "c", "d", "ee"}, quals)

	require.Len(t, m.Joins, 3)
	assert.Equal(t, "INNER JOIN", m.Joins[0].JoinType)
	assert.Equal(t, "x", m.Joins[0].LeftSource)
	assert.True(t, m.Joins[0].HasOn)
	assert.Equal(t, "a.id = c.id", strings.TrimSpace(sql[m.Joins[0].OnStart:m.Joins[0].OnEnd]))

	assert.Equal(t, "CROSS JOIN", m.Joins[1].JoinType)
	assert.Equal(t, "c", m.Joins[1].LeftSource)
	assert.False(t, m.Joins[1].HasOn)

	assert.Equal(t, "LEFT OUTER JOIN", m.Joins[2].JoinType)
	assert.Equal(t, "d", m.Joins[2].LeftSource)
	assert.Equal(t, "ee", m.Joins[2].RightSource)
	assert.False(t, m.Joins[2].HasOn)

	assert.True(t, m.Where.Empty())
	assert.Equal(t, "1", strings.TrimSpace(sql[m.OrderBy.Start:m.OrderBy.End]))
}

func TestResolveSources_Subquery(t *testing.T) {
	m, ok := ResolveSources("select * from (select id from t) as s join u on s.id = u.id")
	require.True(t, ok)
	require.Len(t, m.Sources, 2)
	assert.True(t, m.Sources[0].Subquery)
	assert.Equal(t, "s", m.Sources[0].Qualifier())
	assert.Equal(t, "s", m.Joins[0].LeftSource)
}

func TestResolveSources_TableFunction(t *testing.T) {
	m, ok := ResolveSources("select * from generate_series(1, 3) g join t on t.n = g")
	require.True(t, ok)
	assert.Equal(t, "generate_series", m.Sources[0].Name)
	assert.Equal(t, "g", m.Sources[0].Alias)
}

func TestResolveSources_SkipsCTEBodies(t *testing.T) {
	sql := `with c as (select * from x join y on "id" = "id") select * from c join d on "c"."k" = "d"."k"`
	m, ok := ResolveSources(sql)
	require.True(t, ok)
	require.Len(t, m.Sources, 2)
	assert.Equal(t, "c", m.Sources[0].Name)
	assert.Equal(t, "d", m.Sources[1].Name)
	require.Len(t, m.Joins, 1)
	assert.Greater(t, m.Joins[0].OnStart, strings.Index(sql, ") select"))
}

func TestResolveSources_SetOperation(t *testing.T) {
	sql := "select a from x join y on 1=1 union select b from z order by 1"
	m, ok := ResolveSources(sql)
	require.True(t, ok)
	require.Len(t, m.Joins, 1)
	assert.Equal(t, "1=1", strings.TrimSpace(sql[m.Joins[0].OnStart:m.Joins[0].OnEnd]))
	assert.True(t, m.OrderBy.Empty(), "ORDER BY of a set operation belongs to no single arm")
}

func TestResolveSources_Unresolvable(t *testing.T) {
	for _, sql := range []string{
		"select 1",
		"update t set x = 1",
		"",
		"with broken as (select 1",
	} {
		_, ok := ResolveSources(sql)
		assert.False(t, ok, sql)
	}
}
