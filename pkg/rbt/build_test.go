package rbt_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/fivetwenty-io/rbt/pkg/rbt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, body string) map[string]interface{} {
	t.Helper()

	var payload map[string]interface{}

	require.NoError(t, json.Unmarshal([]byte(body), &payload))

	return payload
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"counts-only", "counts_only"},
		{"time-added-from", "time_added_from"},
		{"review_requests", "review_requests"},
		{"", ""},
		{"--", "__"},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, rbt.Sanitize(tt.input))
		})
	}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestBuild(t *testing.T) {
	t.Parallel()

	t.Run("flat payload", func(t *testing.T) {
		t.Parallel()

		payload := decode(t, `{"stat": "ok", "total-results": 3, "public": true}`)

		component, err := rbt.Build("review-requests", payload, nil)
		require.NoError(t, err)

		assert.Equal(t, "review_requests", component.Name())
		assert.Equal(t, []string{"public", "stat", "total_results"}, component.Fields())

		stat, err := component.GetString("stat")
		require.NoError(t, err)
		assert.Equal(t, "ok", stat)

		total, err := component.GetInt64("total_results")
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)

		public, err := component.GetBool("public")
		require.NoError(t, err)
		assert.True(t, public)
	})

	t.Run("extra fields come first", func(t *testing.T) {
		t.Parallel()

		payload := map[string]interface{}{"b": "payload-b", "a": "payload-a"}
		extra := map[string]interface{}{"z": "extra-z"}

		component, err := rbt.Build("thing", payload, extra)
		require.NoError(t, err)

		assert.Equal(t, []string{"z", "a", "b"}, component.Fields())
		assert.Equal(t, map[string]interface{}{"a": "payload-a", "b": "payload-b", "z": "extra-z"}, component.JSON())
	})

	t.Run("extra is not applied to nested components", func(t *testing.T) {
		t.Parallel()

		payload := map[string]interface{}{"child": map[string]interface{}{"x": 1}}
		extra := map[string]interface{}{"y": 2}

		component, err := rbt.Build("parent", payload, extra)
		require.NoError(t, err)

		child, err := component.GetComponent("child")
		require.NoError(t, err)
		assert.Equal(t, []string{"x"}, child.Fields())
	})

	t.Run("nested objects and lists", func(t *testing.T) {
		t.Parallel()

		payload := decode(t, `{
			"review_request": {"id": 7, "target-people": [{"title": "doc"}, "plain", 3]},
			"tags": ["a", "b"]
		}`)

		component, err := rbt.Build("root", payload, nil)
		require.NoError(t, err)

		review, err := component.GetComponent("review_request")
		require.NoError(t, err)
		assert.Equal(t, "review_request", review.Name())

		people, err := review.GetList("target_people")
		require.NoError(t, err)
		require.Len(t, people, 3)

		person, ok := people[0].(*rbt.Component)
		require.True(t, ok)
		assert.Equal(t, "target_people", person.Name())

		title, err := person.GetString("title")
		require.NoError(t, err)
		assert.Equal(t, "doc", title)

		assert.Equal(t, "plain", people[1])
		assert.InDelta(t, 3.0, people[2], 0)

		tags, err := component.GetList("tags")
		require.NoError(t, err)
		assert.Equal(t, rbt.List{"a", "b"}, tags)
	})

	t.Run("empty payload", func(t *testing.T) {
		t.Parallel()

		component, err := rbt.Build("empty", map[string]interface{}{}, nil)
		require.NoError(t, err)
		assert.Empty(t, component.Fields())
		assert.Empty(t, component.JSON())
	})

	t.Run("json is reserved", func(t *testing.T) {
		t.Parallel()

		_, err := rbt.Build("thing", map[string]interface{}{"json": 1}, nil)
		require.ErrorIs(t, err, rbt.ErrFieldCollision)
	})

	t.Run("reserved name nested", func(t *testing.T) {
		t.Parallel()

		_, err := rbt.Build("thing", map[string]interface{}{"child": map[string]interface{}{"json": 1}}, nil)
		require.ErrorIs(t, err, rbt.ErrFieldCollision)
	})
}

func TestBuild_Collisions(t *testing.T) {
	t.Parallel()

	payload := map[string]interface{}{"time-added": "first", "time_added": "second"}

	t.Run("rejected by default", func(t *testing.T) {
		t.Parallel()

		_, err := rbt.Build("review_request", payload, nil)
		require.Error(t, err)

		collision := &rbt.CollisionError{}
		require.True(t, errors.As(err, &collision))
		assert.Equal(t, "time_added", collision.Field)
		assert.Equal(t, []string{"time-added", "time_added"}, collision.Keys)
	})

	t.Run("last wins", func(t *testing.T) {
		t.Parallel()

		component, err := rbt.Build("review_request", payload, nil, rbt.WithCollisionPolicy(rbt.CollisionLastWins))
		require.NoError(t, err)

		value, err := component.GetString("time_added")
		require.NoError(t, err)
		assert.Equal(t, "second", value)
		assert.Equal(t, []string{"time_added"}, component.Fields())
		assert.Equal(t, payload, component.JSON())
	})

	t.Run("extra collides with payload", func(t *testing.T) {
		t.Parallel()

		_, err := rbt.Build("thing", map[string]interface{}{"name": "payload"}, map[string]interface{}{"name": "extra"})
		require.ErrorIs(t, err, rbt.ErrFieldCollision)

		component, err := rbt.Build("thing", map[string]interface{}{"name": "payload"}, map[string]interface{}{"name": "extra"},
			rbt.WithCollisionPolicy(rbt.CollisionLastWins))
		require.NoError(t, err)

		name, err := component.GetString("name")
		require.NoError(t, err)
		assert.Equal(t, "payload", name)
	})

	t.Run("payload beats extra whatever the sort order", func(t *testing.T) {
		t.Parallel()

		component, err := rbt.Build("thing",
			map[string]interface{}{"time-added": "payload"},
			map[string]interface{}{"time_added": "extra"},
			rbt.WithCollisionPolicy(rbt.CollisionLastWins))
		require.NoError(t, err)

		value, err := component.GetString("time_added")
		require.NoError(t, err)
		assert.Equal(t, "payload", value)
	})
}

// Every attribute reachable through the component is reachable through its
// raw payload under the unsanitized key, and vice versa.
func TestBuild_DeepEquivalence(t *testing.T) {
	t.Parallel()

	payload := decode(t, `{
		"stat": "ok",
		"counts-only": false,
		"review-request": {
			"id": 12,
			"extra-data": {"nested-key": "value"},
			"reviewers": [{"user-name": "doc"}, {"user-name": "grumpy"}]
		}
	}`)

	component, err := rbt.Build("root", payload, nil)
	require.NoError(t, err)

	var check func(t *testing.T, value interface{}, raw interface{})

	check = func(t *testing.T, value interface{}, raw interface{}) {
		t.Helper()

		switch v := value.(type) {
		case *rbt.Component:
			rawMap, ok := raw.(map[string]interface{})
			require.True(t, ok)
			assert.Equal(t, rawMap, v.JSON())
			assert.Len(t, v.Fields(), len(rawMap))

			for key, item := range rawMap {
				attr, err := v.Get(rbt.Sanitize(key))
				require.NoError(t, err)
				check(t, attr, item)
			}
		case rbt.List:
			rawList, ok := raw.([]interface{})
			require.True(t, ok)
			require.Len(t, v, len(rawList))

			for i := range v {
				check(t, v[i], rawList[i])
			}
		default:
			assert.Equal(t, raw, v)
		}
	}

	check(t, component, payload)

	viaJSON, err := component.Get(rbt.JSONField)
	require.NoError(t, err)
	assert.Equal(t, payload, viaJSON)
}

func TestBuild_JSONIsACopy(t *testing.T) {
	t.Parallel()

	payload := map[string]interface{}{"child": map[string]interface{}{"x": "original"}}

	component, err := rbt.Build("thing", payload, nil)
	require.NoError(t, err)

	copied := component.JSON()
	child, ok := copied["child"].(map[string]interface{})
	require.True(t, ok)

	child["x"] = "mutated"

	again, ok := component.JSON()["child"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "original", again["x"])
}

func TestBuild_KeepsItsOwnPayload(t *testing.T) {
	t.Parallel()

	child := map[string]interface{}{"x": "original"}
	tags := []interface{}{"a", "b"}
	payload := map[string]interface{}{"child": child, "tags": tags}
	extra := map[string]interface{}{"meta": map[string]interface{}{"y": "original"}}

	component, err := rbt.Build("thing", payload, extra)
	require.NoError(t, err)

	child["x"] = "mutated"
	tags[0] = "mutated"
	extra["meta"].(map[string]interface{})["y"] = "mutated"

	attr, err := component.Get("child")
	require.NoError(t, err)

	sub, ok := attr.(*rbt.Component)
	require.True(t, ok)

	x, err := sub.Get("x")
	require.NoError(t, err)
	assert.Equal(t, "original", x)

	raw := component.JSON()
	rawChild, ok := raw["child"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "original", rawChild["x"])
	assert.Equal(t, []interface{}{"a", "b"}, raw["tags"])

	rawMeta, ok := raw["meta"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "original", rawMeta["y"])
}
