package config

// GenerateDefault returns the built-in default configuration: the
// same seed rule set and URL-finding regexes the original tool ships
// in its generated settings.yml.
func GenerateDefault() *Settings {
	return &Settings{
		Verbose:         false,
		Debug:           false,
		LogLevel:        "warning",
		LogPath:         "log",
		Proxy:           "",
		MaxDepth:        1,
		MaxPageNum:      1000,
		Timeout:         5,
		FollowRedirects: false,
		WorkersNum:      1000,
		Headers: map[string]string{
			"Accept":     "*/*",
			"Cookie":     "",
			"User-Agent": "Mozilla/5.0 (Windows NT 10.0; WOW64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/80.0.3987.87 Safari/537.36 SE 2.X MetaSr 1.0",
		},
		URLFind: []string{
			`["'‘“` + "`" + `]\s{0,6}(https{0,1}:[-a-zA-Z0-9()@:%_\+.~#?&//={}]{2,100}?)\s{0,6}["'‘“` + "`" + `]`,
			`=\s{0,6}(https{0,1}:[-a-zA-Z0-9()@:%_\+.~#?&//={}]{2,100})`,
			`["'‘“` + "`" + `]\s{0,6}([#,.]{0,2}/[-a-zA-Z0-9()@:%_\+.~#?&//={}]{2,100}?)\s{0,6}["'‘“` + "`" + `]`,
			`"([-a-zA-Z0-9()@:%_\+.~#?&//={}]+?[/]{1}[-a-zA-Z0-9()@:%_\+.~#?&//={}]+?)"`,
			`href\s{0,6}=\s{0,6}["'‘“` + "`" + `]{0,1}\s{0,6}([-a-zA-Z0-9()@:%_\+.~#?&//={}]{2,100})|action\s{0,6}=\s{0,6}["'‘“` + "`" + `]{0,1}\s{0,6}([-a-zA-Z0-9()@:%_\+.~#?&//={}]{2,100})`,
		},
		JSFind: []string{
			`(https{0,1}:[-a-zA-Z0-9（）@:%_\+.~#?&//=]{2,100}?[-a-zA-Z0-9（）@:%_\+.~#?&//=]{3}[.]js)`,
			`["'‘“` + "`" + `]\s{0,6}(/{0,1}[-a-zA-Z0-9（）@:%_\+.~#?&//=]{2,100}?[-a-zA-Z0-9（）@:%_\+.~#?&//=]{3}[.]js)`,
			`=\s{0,6}["',’”]{0,1}\s{0,6}(/{0,1}[-a-zA-Z0-9（）@:%_\+.~#?&//=]{2,100}?[-a-zA-Z0-9（）@:%_\+.~#?&//=]{3}[.]js)`,
		},
		Rules: []Rule{
			{Name: "Swagger", Regex: `\b[\w/]+?((swagger-ui.html)|("swagger":)|(Swagger UI)|(swaggerUi)|(swaggerVersion))\b`, Loaded: true},
			{Name: "ID Card", Regex: `\b((\d{8}(0\d|10|11|12)([0-2]\d|30|31)\d{3}\$)|(\d{6}(18|19|20)\d{2}(0[1-9]|10|11|12)([0-2]\d|30|31)\d{3}(\d|X|x)))\b`, Loaded: true},
			{Name: "Phone", Regex: `\b((?:(?:\+|00)86)?1(?:(?:3[\d])|(?:4[5-79])|(?:5[0-35-9])|(?:6[5-7])|(?:7[0-8])|(?:8[\d])|(?:9[189]))\d{8})\b`, Loaded: true},
			{Name: "JS Map", Regex: `\b([\w/]+?\.js\.map)`, Loaded: true},
			{Name: "URL as a Value", Regex: `(\b\w+?=(https?)(://|%3a%2f%2f))`, Loaded: true},
			{Name: "Email", Regex: `\b(([a-z0-9][_|\.])*[a-z0-9]+@([a-z0-9][-|_|\.])*[a-z0-9]+\.([a-z]{2,}))\b`, Loaded: true},
			{Name: "Internal IP", Regex: `[^0-9]((127\.0\.0\.1)|(10\.\d{1,3}\.\d{1,3}\.\d{1,3})|(172\.((1[6-9])|(2\d)|(3[01]))\.\d{1,3}\.\d{1,3})|(192\.168\.\d{1,3}\.\d{1,3}))`, Loaded: true},
			{Name: "Cloud Key", Regex: `\b((accesskeyid)|(accesskeysecret)|\b(LTAI[a-z0-9]{12,20}))\b`, Loaded: true},
			{Name: "Shiro", Regex: `(=deleteMe|rememberMe=)`, Loaded: true},
			{Name: "Suspicious API Key", Regex: `["'][0-9a-zA-Z]{32}['"]`, Loaded: true},
		},
		DangerousPath: nil,
	}
}
