package capsolver

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Kind is the expected JSON kind of a task field.
type Kind string

const (
	KindString Kind = "string"
	KindBool   Kind = "boolean"
	KindNumber Kind = "number"
	KindObject Kind = "object" // objects and arrays
)

// Param describes one task field.
type Param struct {
	Name     string // wire name
	Arg      string // caller-facing name when it differs from Name
	Required bool
	Kind     Kind
	Default  any
}

// variant is one row of the task table: a caller-facing name bound to a remote type tag.
type variant struct {
	Name     string
	Type     string
	MustPoll bool
	Params   []Param
}

func req(name string, k Kind) Param { return Param{Name: name, Required: true, Kind: k} }

func opt(name string, k Kind) Param { return Param{Name: name, Kind: k} }

var (
	recaptchaV2Optional = []Param{
		opt("pageAction", KindString),
		opt("enterprisePayload", KindObject),
		{Name: "isInvisible", Kind: KindBool, Default: false},
		opt("apiDomain", KindString),
		opt("userAgent", KindString),
		opt("cookie", KindString),
	}
	recaptchaV3Optional = []Param{
		opt("enterprisePayload", KindObject),
		opt("apiDomain", KindString),
		opt("userAgent", KindString),
		opt("cookies", KindString),
	}
	hcaptchaOptional = []Param{
		opt("isInvisible", KindBool),
		opt("enterprisePayload", KindObject),
		opt("userAgent", KindString),
	}
	geetestOptional = []Param{
		opt("gt", KindString),
		opt("challenge", KindString),
		opt("captchaId", KindString),
		opt("geetestApiServerSubdomain", KindString),
	}
)

func params(groups ...[]Param) []Param {
	var out []Param
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

var siteParams = []Param{req("websiteURL", KindString), req("websiteKey", KindString)}

var proxyParams = []Param{req("proxy", KindString)}

// variants is the task table. Remote type tags are unique across rows.
var variants = []variant{
	{Name: "mtcaptcha", Type: "MTCaptchaTask", MustPoll: true,
		Params: params(siteParams, []Param{opt("proxy", KindString)})},
	{Name: "antiturnstile", Type: "AntiTurnstileTaskProxyLess", MustPoll: true,
		Params: params(siteParams, []Param{opt("metadata", KindObject)})},
	{Name: "anticloudflare", Type: "AntiCloudflareTask", MustPoll: true,
		Params: params([]Param{req("websiteURL", KindString)}, proxyParams, []Param{opt("metadata", KindObject), opt("html", KindString)})},
	{Name: "image2text", Type: "ImageToTextTask", MustPoll: false,
		Params: []Param{
			opt("websiteURL", KindString),
			req("body", KindString),
			opt("module", KindString),
			opt("score", KindNumber),
			{Name: "case", Arg: "caseSensitive", Kind: KindBool},
		}},
	{Name: "hcaptchaclassification", Type: "HCaptchaClassification", MustPoll: false,
		Params: []Param{
			opt("websiteURL", KindString),
			opt("websiteKey", KindString),
			req("queries", KindObject),
			req("question", KindString),
		}},
	{Name: "hcaptcha", Type: "HCaptchaTask", MustPoll: true,
		Params: params(siteParams, proxyParams, hcaptchaOptional)},
	{Name: "hcaptchaproxyless", Type: "HCaptchaTaskProxyLess", MustPoll: true,
		Params: params(siteParams, hcaptchaOptional)},
	{Name: "recaptchav2", Type: "ReCaptchaV2Task", MustPoll: true,
		Params: params(siteParams, proxyParams, recaptchaV2Optional)},
	{Name: "recaptchav2proxyless", Type: "ReCaptchaV2TaskProxyLess", MustPoll: true,
		Params: params(siteParams, recaptchaV2Optional)},
	{Name: "recaptchav2enterprise", Type: "ReCaptchaV2EnterpriseTask", MustPoll: true,
		Params: params(siteParams, proxyParams, recaptchaV2Optional)},
	{Name: "recaptchav2enterpriseproxyless", Type: "ReCaptchaV2EnterpriseTaskProxyLess", MustPoll: true,
		Params: params(siteParams, recaptchaV2Optional)},
	{Name: "recaptchav3", Type: "ReCaptchaV3Task", MustPoll: true,
		Params: params(siteParams, proxyParams, []Param{req("pageAction", KindString)}, recaptchaV3Optional)},
	{Name: "recaptchav3proxyless", Type: "ReCaptchaV3TaskProxyLess", MustPoll: true,
		Params: params(siteParams, []Param{req("pageAction", KindString)}, recaptchaV3Optional)},
	{Name: "recaptchav3enterprise", Type: "ReCaptchaV3EnterpriseTask", MustPoll: true,
		Params: params(siteParams, proxyParams, []Param{req("pageAction", KindString)}, recaptchaV3Optional)},
	{Name: "recaptchav3enterpriseproxyless", Type: "ReCaptchaV3EnterpriseTaskProxyLess", MustPoll: true,
		Params: params(siteParams, []Param{req("pageAction", KindString)}, recaptchaV3Optional)},
	{Name: "datadome", Type: "DatadomeSliderTask", MustPoll: true,
		Params: []Param{
			req("websiteURL", KindString),
			req("userAgent", KindString),
			req("captchaUrl", KindString),
			req("proxy", KindString),
		}},
	{Name: "funcaptcha", Type: "FunCaptchaTask", MustPoll: true,
		Params: []Param{
			req("websiteURL", KindString),
			req("websitePublicKey", KindString),
			opt("data", KindString),
			opt("userAgent", KindString),
			req("proxy", KindString),
		}},
	{Name: "funcaptchaproxyless", Type: "FunCaptchaTaskProxyLess", MustPoll: true,
		Params: []Param{
			req("websiteURL", KindString),
			req("websitePublicKey", KindString),
			opt("data", KindString),
			opt("userAgent", KindString),
		}},
	{Name: "funcaptchaclassification", Type: "FunCaptchaClassification", MustPoll: false,
		Params: []Param{
			opt("websiteURL", KindString),
			opt("websiteKey", KindString),
			req("images", KindObject),
			opt("module", KindString),
			req("question", KindString),
		}},
	{Name: "geetest", Type: "GeeTestTask", MustPoll: true,
		Params: params([]Param{req("websiteURL", KindString)}, proxyParams, geetestOptional)},
	{Name: "geetestproxyless", Type: "GeeTestTaskProxyLess", MustPoll: true,
		Params: params([]Param{req("websiteURL", KindString)}, geetestOptional)},
}

var (
	variantsByName = map[string]*variant{}
	variantsByType = map[string]*variant{}
)

func init() {
	for i := range variants {
		v := &variants[i]
		variantsByName[v.Name] = v
		variantsByType[strings.ToLower(v.Type)] = v
	}
}

// Variants returns the supported variant names in sorted order.
func Variants() []string {
	names := make([]string, 0, len(variants))
	for _, v := range variants {
		names = append(names, v.Name)
	}
	sort.Strings(names)
	return names
}

// lookupType finds the table row for a remote type tag, ignoring case.
func lookupType(taskType string) (*variant, bool) {
	v, ok := variantsByType[strings.ToLower(taskType)]
	return v, ok
}

// mustPoll reports whether a task type is solved asynchronously.
// Unknown types are assumed asynchronous.
func mustPoll(taskType string) bool {
	if v, ok := lookupType(taskType); ok {
		return v.MustPoll
	}
	return true
}

// validate checks required fields of a wire payload. It reports whether the
// type was found in the table; unknown types are not validated.
func validate(payload map[string]any) (known bool, err error) {
	taskType, _ := payload["type"].(string)
	if taskType == "" {
		return false, &ValidationError{Field: "type", Kind: KindString, Reason: "task type is required"}
	}
	v, ok := lookupType(taskType)
	if !ok {
		return false, nil
	}
	for _, p := range v.Params {
		if !p.Required {
			continue
		}
		value, present := payload[p.Name]
		if !present || isEmpty(value) || kindOf(value) != p.Kind {
			return true, &ValidationError{
				TaskType: taskType,
				Field:    p.Name,
				Kind:     p.Kind,
				Reason:   fmt.Sprintf("must be of type %s and not empty", p.Kind),
			}
		}
	}
	return true, nil
}

// buildVariant shapes a caller parameter bundle into a task using the table.
func buildVariant(name string, args map[string]any) (CustomTask, bool, error) {
	v, ok := variantsByName[strings.ToLower(name)]
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", ErrUnknownVariant, name)
	}
	task := CustomTask{"type": v.Type}
	for _, p := range v.Params {
		value, found := args[p.Name]
		if !found && p.Arg != "" {
			value, found = args[p.Arg]
		}
		switch {
		case found && value != nil:
			task[p.Name] = value
		case p.Default != nil:
			task[p.Name] = p.Default
		}
	}
	return task, v.MustPoll, nil
}

// kindOf maps a Go value to its JSON kind.
func kindOf(v any) Kind {
	switch v.(type) {
	case string:
		return KindString
	case bool:
		return KindBool
	case json.Number:
		return KindNumber
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return KindNumber
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Pointer:
		return KindObject
	}
	return ""
}

// isEmpty treats nil, zero scalars and empty collections as missing.
func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.String:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return rv.IsZero()
}
