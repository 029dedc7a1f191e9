package listing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestVersions_Set(t *testing.T) {
	t.Parallel()

	var v Versions
	require.Equal(t, 0, v.Len())

	v.Set("v2", "two")
	v.Set("v1", "one")
	v.Set("v2", "two again")

	require.Equal(t, []string{"v2", "v1"}, v.Tags())
	require.Equal(t, 2, v.Len())
	got, ok := v.Get("v2")
	require.True(t, ok)
	require.Equal(t, "two again", got)

	_, ok = v.Get("v3")
	require.False(t, ok)
}

func TestVersions_NilReceiver(t *testing.T) {
	t.Parallel()

	var v *Versions
	require.Equal(t, 0, v.Len())
	require.Nil(t, v.Tags())
	_, ok := v.Get("x")
	require.False(t, ok)
}

func TestVersions_MarshalJSON_InsertionOrder(t *testing.T) {
	t.Parallel()

	var v Versions
	v.Set("v1.1.0", `{"version":"1.1.0"}`)
	v.Set("v1.0.0", "plain \"quoted\"\ntext")
	v.Set("a-first-alphabetically", "")

	data, err := json.Marshal(&v)
	require.NoError(t, err)
	require.Equal(t,
		`{"v1.1.0":"{\"version\":\"1.1.0\"}","v1.0.0":"plain \"quoted\"\ntext","a-first-alphabetically":""}`,
		string(data),
	)

	var rt Versions
	require.NoError(t, json.Unmarshal(data, &rt))
	require.Equal(t, v.Tags(), rt.Tags())
	for _, tag := range v.Tags() {
		want, _ := v.Get(tag)
		got, _ := rt.Get(tag)
		require.Equal(t, want, got)
	}
}

func TestVersions_UnmarshalJSON_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
	}{
		{name: "array", data: `["v1"]`},
		{name: "non-string value", data: `{"v1": 1}`},
		{name: "object value", data: `{"v1": {"version": "1"}}`},
		{name: "truncated", data: `{"v1": "x"`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var v Versions
			require.Error(t, json.Unmarshal([]byte(tc.data), &v))
		})
	}
}

func TestVersions_MarshalYAML_InsertionOrder(t *testing.T) {
	t.Parallel()

	l := New(DefaultMetadata(), "com.acme.widget")
	l.Versions("com.acme.widget").Set("v2.0.0", "two")
	l.Versions("com.acme.widget").Set("v1.0.0", "one")

	data, err := yaml.Marshal(l)
	require.NoError(t, err)
	require.Equal(t, `name: MyRepoName
author: developer@vrchat.com
url: https://urlParameter
packages:
    com.acme.widget:
        versions:
            v2.0.0: two
            v1.0.0: one
`, string(data))
}

func TestListing_JSON(t *testing.T) {
	t.Parallel()

	l := New(Metadata{Name: "n", Author: "a", URL: "u"}, "pkg")
	l.Versions("pkg").Set("v1", "x")
	l.Skipped = []SkippedRelease{{Tag: "v0"}}

	data, err := l.JSON()
	require.NoError(t, err)
	require.Equal(t, `{
  "name": "n",
  "author": "a",
  "url": "u",
  "packages": {
    "pkg": {
      "versions": {
        "v1": "x"
      }
    }
  }
}`, string(data))
}

func TestListing_Versions_UnknownPackage(t *testing.T) {
	t.Parallel()

	l := New(DefaultMetadata(), "pkg")
	require.Nil(t, l.Versions("other"))
}

func TestListing_Validate(t *testing.T) {
	t.Parallel()

	l := New(DefaultMetadata(), "pkg")
	require.NoError(t, l.Validate())

	empty := &Listing{Name: "n", Author: "a", URL: "u", Packages: map[string]*Package{}}
	err := empty.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid listing")
}

func TestPolicy_Set(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		want    Policy
		wantErr bool
	}{
		{name: "skip", value: "skip", want: PolicySkip},
		{name: "abort mixed case and spaces", value: "  AbOrT ", want: PolicyAbort},
		{name: "invalid", value: "retry", wantErr: true},
		{name: "empty", value: "", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var p Policy
			err := p.Set(tc.value)
			if tc.wantErr {
				require.Error(t, err)
				require.Contains(t, err.Error(), "abort, skip")
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, p)
			require.Equal(t, "policy", p.Type())
		})
	}
}

func TestNewOptions_Defaults(t *testing.T) {
	t.Parallel()

	o, err := NewOptions()
	require.NoError(t, err)
	require.Equal(t, DefaultMetadata(), o.Metadata)
	require.Equal(t, DefaultWorkers, o.Workers)
	require.Equal(t, PolicySkip, o.Policy)
	require.Equal(t, DefaultRequestTimeout, o.RequestTimeout)
	require.Equal(t, DefaultDeadline, o.Deadline)
	require.Equal(t, "VCCBootstrap 1.0", o.UserAgent)
	require.Equal(t, "package.json", o.AssetName)
}

func TestNewOptions_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opt  Option
	}{
		{name: "zero workers", opt: WithWorkers(0)},
		{name: "bad policy", opt: WithPolicy(Policy("retry"))},
		{name: "zero request timeout", opt: WithRequestTimeout(0)},
		{name: "negative deadline", opt: WithDeadline(-1)},
		{name: "empty user agent", opt: WithUserAgent("")},
		{name: "empty asset name", opt: WithAssetName(" ")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewOptions(tc.opt)
			require.Error(t, err)
		})
	}
}
