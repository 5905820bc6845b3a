package rbt_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/fivetwenty-io/rbt/pkg/rbt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleComponent(t *testing.T) *rbt.Component {
	t.Helper()

	payload := decode(t, `{
		"stat": "ok",
		"total_results": 2,
		"ratio": 0.5,
		"review_requests": [
			{"id": 1, "summary": "first"},
			{"id": 2, "summary": "second"}
		],
		"product": {"name": "Review Board", "is-release": true}
	}`)

	component, err := rbt.Build("review_requests", payload, nil)
	require.NoError(t, err)

	return component
}

func TestComponent_Get(t *testing.T) {
	t.Parallel()

	component := sampleComponent(t)

	value, err := component.Get("stat")
	require.NoError(t, err)
	assert.Equal(t, "ok", value)

	_, err = component.Get("missing")
	require.Error(t, err)

	fieldErr := &rbt.FieldError{}
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "review_requests", fieldErr.Component)
	assert.Equal(t, "missing", fieldErr.Name)
	require.ErrorIs(t, err, rbt.ErrMissingField)

	assert.True(t, component.Has("product"))
	assert.True(t, component.Has(rbt.JSONField))
	assert.False(t, component.Has("missing"))
}

func TestComponent_TypedGetters(t *testing.T) {
	t.Parallel()

	component := sampleComponent(t)

	total, err := component.GetInt64("total_results")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	ratio, err := component.GetFloat64("ratio")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, ratio, 0.0001)

	product, err := component.GetComponent("product")
	require.NoError(t, err)

	release, err := product.GetBool("is_release")
	require.NoError(t, err)
	assert.True(t, release)

	list, err := component.GetList("review_requests")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = component.GetString("total_results")
	require.ErrorIs(t, err, rbt.ErrFieldType)

	_, err = component.GetInt64("stat")
	require.ErrorIs(t, err, rbt.ErrFieldType)

	_, err = component.GetComponent("review_requests")
	require.ErrorIs(t, err, rbt.ErrFieldType)

	_, err = component.GetList("product")
	require.ErrorIs(t, err, rbt.ErrFieldType)

	_, err = component.GetBool("missing")
	require.ErrorIs(t, err, rbt.ErrMissingField)
}

func TestComponent_JSONNumbers(t *testing.T) {
	t.Parallel()

	component, err := rbt.Build("thing", map[string]interface{}{
		"big":   json.Number("9007199254740993"),
		"float": json.Number("1.25"),
	}, nil)
	require.NoError(t, err)

	big, err := component.GetInt64("big")
	require.NoError(t, err)
	assert.Equal(t, int64(9007199254740993), big)

	f, err := component.GetFloat64("float")
	require.NoError(t, err)
	assert.InDelta(t, 1.25, f, 0)

	_, err = component.GetInt64("float")
	require.ErrorIs(t, err, rbt.ErrFieldType)
}

func TestComponent_Lookup(t *testing.T) {
	t.Parallel()

	component := sampleComponent(t)

	summary, err := component.Lookup("review_requests", "1", "summary")
	require.NoError(t, err)
	assert.Equal(t, "second", summary)

	name, err := component.Lookup("product", "name")
	require.NoError(t, err)
	assert.Equal(t, "Review Board", name)

	self, err := component.Lookup()
	require.NoError(t, err)
	assert.Same(t, component, self)

	_, err = component.Lookup("review_requests", "5")
	require.ErrorIs(t, err, rbt.ErrMissingField)

	_, err = component.Lookup("review_requests", "first")
	require.ErrorIs(t, err, rbt.ErrMissingField)

	_, err = component.Lookup("stat", "anything")
	require.ErrorIs(t, err, rbt.ErrMissingField)
}

func TestComponent_Marshal(t *testing.T) {
	t.Parallel()

	payload := map[string]interface{}{"stat": "ok", "time-added": "2016-01-01"}

	component, err := rbt.Build("thing", payload, nil)
	require.NoError(t, err)

	data, err := json.Marshal(component)
	require.NoError(t, err)
	assert.JSONEq(t, `{"stat": "ok", "time-added": "2016-01-01"}`, string(data))

	out, err := yaml.Marshal(component)
	require.NoError(t, err)

	var decoded map[string]interface{}

	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Equal(t, payload, decoded)
}

func TestComponent_LinkMissing(t *testing.T) {
	t.Parallel()

	component := sampleComponent(t)

	assert.Empty(t, component.Links())

	_, err := component.Link("create")
	require.Error(t, err)
	assert.True(t, rbt.IsMissingLink(err))

	missing := &rbt.MissingLinkError{}
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "create", missing.Name)
}
