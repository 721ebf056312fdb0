package capsolver

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariants(t *testing.T) {
	names := Variants()
	assert.Len(t, names, len(variants))
	assert.True(t, sort.StringsAreSorted(names))
	assert.Contains(t, names, "recaptchav2proxyless")
	assert.Contains(t, names, "geetest")
}

func TestVariantTypesAreUnique(t *testing.T) {
	seen := map[string]string{}
	for _, v := range variants {
		key := strings.ToLower(v.Type)
		if prev, ok := seen[key]; ok {
			t.Fatalf("type %s used by both %s and %s", v.Type, prev, v.Name)
		}
		seen[key] = v.Name
		assert.Equal(t, strings.ToLower(v.Name), v.Name, "variant names are lowercase")
	}
}

func TestTaskType(t *testing.T) {
	tests := []struct {
		task Task
		want string
	}{
		{ReCaptchaV2{}, "ReCaptchaV2TaskProxyLess"},
		{ReCaptchaV2{Proxy: "http://p:1"}, "ReCaptchaV2Task"},
		{ReCaptchaV2{Enterprise: true}, "ReCaptchaV2EnterpriseTaskProxyLess"},
		{ReCaptchaV2{Enterprise: true, Proxy: "http://p:1"}, "ReCaptchaV2EnterpriseTask"},
		{ReCaptchaV3{}, "ReCaptchaV3TaskProxyLess"},
		{ReCaptchaV3{Enterprise: true, Proxy: "p"}, "ReCaptchaV3EnterpriseTask"},
		{HCaptcha{}, "HCaptchaTaskProxyLess"},
		{HCaptcha{Proxy: "p"}, "HCaptchaTask"},
		{FunCaptcha{}, "FunCaptchaTaskProxyLess"},
		{GeeTest{Proxy: "p"}, "GeeTestTask"},
		{GeeTest{}, "GeeTestTaskProxyLess"},
		{ImageToText{}, "ImageToTextTask"},
		{Datadome{}, "DatadomeSliderTask"},
		{CustomTask{"type": "Foo"}, "Foo"},
		{CustomTask{"type": 42}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.task.TaskType())
		})
	}
}

func TestTypedTasksHaveTableRows(t *testing.T) {
	for _, task := range []Task{
		MTCaptcha{}, AntiTurnstile{}, AntiCloudflare{}, ImageToText{}, HCaptchaClassification{},
		HCaptcha{}, HCaptcha{Proxy: "p"}, ReCaptchaV2{}, ReCaptchaV2{Enterprise: true, Proxy: "p"},
		ReCaptchaV3{}, ReCaptchaV3{Enterprise: true}, Datadome{}, FunCaptcha{}, FunCaptcha{Proxy: "p"},
		FunCaptchaClassification{}, GeeTest{}, GeeTest{Proxy: "p"},
	} {
		_, ok := lookupType(task.TaskType())
		assert.True(t, ok, task.TaskType())
	}
}

func TestMustPoll(t *testing.T) {
	assert.True(t, mustPoll("ReCaptchaV2TaskProxyLess"))
	assert.True(t, mustPoll("recaptchav2taskproxyless"))
	assert.False(t, mustPoll("ImageToTextTask"))
	assert.False(t, mustPoll("HCaptchaClassification"))
	assert.False(t, mustPoll("FunCaptchaClassification"))
	assert.True(t, mustPoll("SomethingNewTask"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		payload   map[string]any
		wantKnown bool
		wantField string
	}{
		{"missing type", map[string]any{}, false, "type"},
		{"unknown type", map[string]any{"type": "SomethingNewTask"}, false, ""},
		{"complete", map[string]any{"type": "HCaptchaTaskProxyLess", "websiteURL": "u", "websiteKey": "k"}, true, ""},
		{"empty string", map[string]any{"type": "HCaptchaTaskProxyLess", "websiteURL": "", "websiteKey": "k"}, true, "websiteURL"},
		{"wrong kind", map[string]any{"type": "HCaptchaTaskProxyLess", "websiteURL": 7, "websiteKey": "k"}, true, "websiteURL"},
		{"nil value", map[string]any{"type": "HCaptchaTaskProxyLess", "websiteURL": "u", "websiteKey": nil}, true, "websiteKey"},
		{"empty list", map[string]any{"type": "HCaptchaClassification", "queries": []any{}, "question": "q"}, true, "queries"},
		{"list", map[string]any{"type": "HCaptchaClassification", "queries": []string{"a"}, "question": "q"}, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			known, err := validate(tt.payload)
			assert.Equal(t, tt.wantKnown, known)
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestKindOfAndIsEmpty(t *testing.T) {
	assert.Equal(t, KindString, kindOf("x"))
	assert.Equal(t, KindBool, kindOf(false))
	assert.Equal(t, KindNumber, kindOf(3))
	assert.Equal(t, KindNumber, kindOf(0.5))
	assert.Equal(t, KindObject, kindOf(map[string]any{}))
	assert.Equal(t, KindObject, kindOf([]string{}))
	assert.Equal(t, Kind(""), kindOf(nil))

	assert.True(t, isEmpty(nil))
	assert.True(t, isEmpty(""))
	assert.True(t, isEmpty(0))
	assert.True(t, isEmpty(false))
	assert.True(t, isEmpty(map[string]any{}))
	assert.False(t, isEmpty("x"))
	assert.False(t, isEmpty(true))
	assert.False(t, isEmpty([]int{1}))
}

func TestBuildVariant(t *testing.T) {
	task, poll, err := buildVariant("GeeTestProxyLess", map[string]any{"websiteURL": "u", "gt": "g", "proxy": "ignored"})
	require.NoError(t, err)
	assert.True(t, poll)
	assert.Equal(t, CustomTask{"type": "GeeTestTaskProxyLess", "websiteURL": "u", "gt": "g"}, task)

	task, poll, err = buildVariant("image2text", map[string]any{"body": "b", "case": false})
	require.NoError(t, err)
	assert.False(t, poll)
	assert.Equal(t, false, task["case"])

	_, _, err = buildVariant("nope", nil)
	assert.ErrorIs(t, err, ErrUnknownVariant)
}

func TestTaskPayload(t *testing.T) {
	payload, err := taskPayload(ReCaptchaV2{WebsiteURL: "u", WebsiteKey: "k", Enterprise: true})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"type":       "ReCaptchaV2EnterpriseTaskProxyLess",
		"websiteURL": "u",
		"websiteKey": "k",
	}, payload)

	src := CustomTask{"type": "X", "a": 1}
	payload, err = taskPayload(src)
	require.NoError(t, err)
	payload["a"] = 2
	assert.Equal(t, 1, src["a"], "custom tasks are copied")
}

func TestMTCaptchaProxyOptional(t *testing.T) {
	payload, err := taskPayload(MTCaptcha{WebsiteURL: "u", WebsiteKey: "k"})
	require.NoError(t, err)
	assert.NotContains(t, payload, "proxy")

	known, err := validate(payload)
	assert.True(t, known)
	assert.NoError(t, err)
}
