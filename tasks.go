package capsolver

// proxyLess appends the ProxyLess suffix when no proxy is given.
func proxyLess(tag, proxy string) string {
	if proxy == "" {
		return tag + "ProxyLess"
	}
	return tag
}

// MTCaptcha is an MTCaptcha challenge. Proxy is optional.
type MTCaptcha struct {
	WebsiteURL string `json:"websiteURL"`
	WebsiteKey string `json:"websiteKey"`
	Proxy      string `json:"proxy,omitempty"`
}

func (MTCaptcha) TaskType() string { return "MTCaptchaTask" }

// AntiTurnstile is a Cloudflare Turnstile widget.
type AntiTurnstile struct {
	WebsiteURL string         `json:"websiteURL"`
	WebsiteKey string         `json:"websiteKey"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

func (AntiTurnstile) TaskType() string { return "AntiTurnstileTaskProxyLess" }

// AntiCloudflare is a Cloudflare interstitial challenge page.
type AntiCloudflare struct {
	WebsiteURL string         `json:"websiteURL"`
	Proxy      string         `json:"proxy"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	HTML       string         `json:"html,omitempty"`
}

func (AntiCloudflare) TaskType() string { return "AntiCloudflareTask" }

// ImageToText recognizes text in a base64 image. Solved synchronously.
type ImageToText struct {
	WebsiteURL    string  `json:"websiteURL,omitempty"`
	Body          string  `json:"body"`
	Module        string  `json:"module,omitempty"`
	Score         float64 `json:"score,omitempty"`
	CaseSensitive *bool   `json:"case,omitempty"`
}

func (ImageToText) TaskType() string { return "ImageToTextTask" }

// HCaptchaClassification classifies hCaptcha images against a question. Solved synchronously.
type HCaptchaClassification struct {
	WebsiteURL string   `json:"websiteURL,omitempty"`
	WebsiteKey string   `json:"websiteKey,omitempty"`
	Queries    []string `json:"queries"`
	Question   string   `json:"question"`
}

func (HCaptchaClassification) TaskType() string { return "HCaptchaClassification" }

// HCaptcha is an hCaptcha widget. An empty Proxy selects the proxyless task.
type HCaptcha struct {
	WebsiteURL        string         `json:"websiteURL"`
	WebsiteKey        string         `json:"websiteKey"`
	Proxy             string         `json:"proxy,omitempty"`
	IsInvisible       bool           `json:"isInvisible,omitempty"`
	EnterprisePayload map[string]any `json:"enterprisePayload,omitempty"`
	UserAgent         string         `json:"userAgent,omitempty"`
}

func (t HCaptcha) TaskType() string { return proxyLess("HCaptchaTask", t.Proxy) }

// ReCaptchaV2 is a reCAPTCHA v2 widget. Enterprise and an empty Proxy select
// the matching remote task type.
type ReCaptchaV2 struct {
	WebsiteURL        string         `json:"websiteURL"`
	WebsiteKey        string         `json:"websiteKey"`
	Proxy             string         `json:"proxy,omitempty"`
	PageAction        string         `json:"pageAction,omitempty"`
	EnterprisePayload map[string]any `json:"enterprisePayload,omitempty"`
	IsInvisible       bool           `json:"isInvisible,omitempty"`
	APIDomain         string         `json:"apiDomain,omitempty"`
	UserAgent         string         `json:"userAgent,omitempty"`
	Cookie            string         `json:"cookie,omitempty"`
	Enterprise        bool           `json:"-"`
}

func (t ReCaptchaV2) TaskType() string {
	if t.Enterprise {
		return proxyLess("ReCaptchaV2EnterpriseTask", t.Proxy)
	}
	return proxyLess("ReCaptchaV2Task", t.Proxy)
}

// ReCaptchaV3 is a score-based reCAPTCHA v3 challenge.
type ReCaptchaV3 struct {
	WebsiteURL        string         `json:"websiteURL"`
	WebsiteKey        string         `json:"websiteKey"`
	Proxy             string         `json:"proxy,omitempty"`
	PageAction        string         `json:"pageAction"`
	EnterprisePayload map[string]any `json:"enterprisePayload,omitempty"`
	APIDomain         string         `json:"apiDomain,omitempty"`
	UserAgent         string         `json:"userAgent,omitempty"`
	Cookies           string         `json:"cookies,omitempty"`
	Enterprise        bool           `json:"-"`
}

func (t ReCaptchaV3) TaskType() string {
	if t.Enterprise {
		return proxyLess("ReCaptchaV3EnterpriseTask", t.Proxy)
	}
	return proxyLess("ReCaptchaV3Task", t.Proxy)
}

// Datadome is a DataDome slider. A proxy is required.
type Datadome struct {
	WebsiteURL string `json:"websiteURL"`
	UserAgent  string `json:"userAgent"`
	CaptchaURL string `json:"captchaUrl"`
	Proxy      string `json:"proxy"`
}

func (Datadome) TaskType() string { return "DatadomeSliderTask" }

// FunCaptcha is an Arkose Labs challenge.
type FunCaptcha struct {
	WebsiteURL       string `json:"websiteURL"`
	WebsitePublicKey string `json:"websitePublicKey"`
	Data             string `json:"data,omitempty"`
	UserAgent        string `json:"userAgent,omitempty"`
	Proxy            string `json:"proxy,omitempty"`
}

func (t FunCaptcha) TaskType() string { return proxyLess("FunCaptchaTask", t.Proxy) }

// FunCaptchaClassification classifies Arkose images. Solved synchronously.
type FunCaptchaClassification struct {
	WebsiteURL string   `json:"websiteURL,omitempty"`
	WebsiteKey string   `json:"websiteKey,omitempty"`
	Images     []string `json:"images"`
	Module     string   `json:"module,omitempty"`
	Question   string   `json:"question"`
}

func (FunCaptchaClassification) TaskType() string { return "FunCaptchaClassification" }

// GeeTest covers GeeTest v3 (GT + Challenge) and v4 (CaptchaID).
type GeeTest struct {
	WebsiteURL                string `json:"websiteURL"`
	GT                        string `json:"gt,omitempty"`
	Challenge                 string `json:"challenge,omitempty"`
	CaptchaID                 string `json:"captchaId,omitempty"`
	GeetestAPIServerSubdomain string `json:"geetestApiServerSubdomain,omitempty"`
	Proxy                     string `json:"proxy,omitempty"`
}

func (t GeeTest) TaskType() string { return proxyLess("GeeTestTask", t.Proxy) }
