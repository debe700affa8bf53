// Command secretscraper crawls a site (or scans a local file tree)
// looking for leaked secrets: API keys, internal IPs, JS source maps,
// and whatever else the configured rule set matches.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/recon-suite/secretscraper/config"
	"github.com/recon-suite/secretscraper/crawl"
	"github.com/recon-suite/secretscraper/extract"
	"github.com/recon-suite/secretscraper/fetch"
	"github.com/recon-suite/secretscraper/localscan"
	"github.com/recon-suite/secretscraper/output"
	"github.com/recon-suite/secretscraper/secrets"
	"github.com/recon-suite/secretscraper/urlfilter"
)

const version = "2.0.0"

type cliFlags struct {
	url        string
	urlFile    string
	localPath  string
	allow      string
	deny       string
	mode       int
	maxPage    int
	maxDepth   int
	proxy      string
	userAgent  string
	cookie     string
	follow     bool
	statusSpec string
	outFile    string
	hideRegex  bool
	detail     bool
	configPath string
	debug      bool
	showVer    bool
}

func parseFlags(args []string) *cliFlags {
	fs := flag.NewFlagSet("secretscraper", flag.ExitOnError)
	f := &cliFlags{}
	fs.StringVar(&f.url, "u", "", "seed URL")
	fs.StringVar(&f.urlFile, "f", "", "file of seed URLs, one per line")
	fs.StringVar(&f.urlFile, "url-file", "", "alias of -f")
	fs.StringVar(&f.localPath, "l", "", "local-scan mode: path to a file or directory")
	fs.StringVar(&f.allow, "d", "", "comma-separated host allow-list globs")
	fs.StringVar(&f.deny, "D", "", "comma-separated host deny-list globs")
	fs.IntVar(&f.mode, "m", 0, "convenience mode: 1 or 2 sets max-depth")
	fs.IntVar(&f.maxPage, "max-page", 0, "maximum pages to visit")
	fs.IntVar(&f.maxDepth, "max-depth", 0, "maximum crawl depth")
	fs.StringVar(&f.proxy, "x", "", "proxy URL")
	fs.StringVar(&f.userAgent, "a", "", "User-Agent header")
	fs.StringVar(&f.cookie, "c", "", "Cookie header")
	fs.StringVar(&f.cookie, "cookie", "", "alias of -c")
	fs.BoolVar(&f.follow, "F", false, "follow redirects")
	fs.StringVar(&f.statusSpec, "s", "", "status filter, e.g. 200,300-400")
	fs.StringVar(&f.outFile, "o", "", "output file (.csv for CSV output)")
	fs.BoolVar(&f.hideRegex, "H", false, "hide secrets in the report")
	fs.BoolVar(&f.detail, "detail", false, "emit the detailed report format")
	fs.StringVar(&f.configPath, "i", "settings.yml", "path to settings.yml")
	fs.BoolVar(&f.debug, "debug", false, "enable debug logging")
	fs.BoolVar(&f.showVer, "V", false, "print version and exit")
	_ = fs.Parse(args)
	return f
}

func main() {
	f := parseFlags(os.Args[1:])

	if f.showVer {
		fmt.Println("secretscraper " + version)
		os.Exit(0)
	}

	logger := newLogger(f.debug)
	slog.SetDefault(logger)

	if err := run(f, logger); err != nil {
		logger.Error("fatal", "error", err)
		if _, ok := err.(*crawl.ConfigError); ok {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func run(f *cliFlags, logger *slog.Logger) error {
	if err := config.WriteDefault(f.configPath); err != nil {
		logger.Warn("could not write default settings", "path", f.configPath, "error", err)
	}
	settings, err := config.Load(f.configPath)
	if err != nil {
		return &crawl.ConfigError{Msg: err.Error()}
	}
	applyOverrides(settings, f)

	ranges, err := output.ParseRanges(f.statusSpec)
	if err != nil {
		return &crawl.ConfigError{Msg: err.Error()}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if f.localPath != "" {
		return runLocalScan(f, settings)
	}

	seeds, err := collectSeeds(f)
	if err != nil {
		return err
	}
	if len(seeds) == 0 {
		return &crawl.ConfigError{Msg: "no seed URL: pass -u, -f, or -l"}
	}

	filter := buildFilter(f)

	fetcher, err := fetch.New(fetch.Options{
		Timeout:         time.Duration(settings.Timeout) * time.Second,
		FollowRedirects: settings.FollowRedirects,
		Proxy:           settings.Proxy,
		Headers:         settings.Headers,
		UserAgent:       settings.Headers["User-Agent"],
	})
	if err != nil {
		return &crawl.ConfigError{Msg: err.Error()}
	}

	secretMatcher, err := secrets.NewWithDetectedBackend(settings.LoadedRules())
	if err != nil {
		return &crawl.ConfigError{Msg: err.Error()}
	}

	urlRules := extract.BuildFinderRules(settings.URLFind, settings.JSFind)
	urlMatcher, err := secrets.New(urlRules, secrets.BackendFallback)
	if err != nil {
		return &crawl.ConfigError{Msg: err.Error()}
	}
	extractor := extract.New(urlMatcher)

	engine := crawl.New(ctx, crawl.Options{
		MaxDepth:       settings.MaxDepth,
		MaxPageNum:     settings.MaxPageNum,
		WorkersNum:     settings.WorkersNum,
		DangerousPaths: settings.DangerousPath,
	}, filter, fetcher, extractor, secretMatcher, logger)

	engine.Seed(seeds)
	engine.Run(ctx)

	crawl.PostValidate(ctx, engine.State(), settings.WorkersNum, time.Duration(settings.Timeout)*time.Second)

	return writeCrawlReport(f, engine.State(), ranges)
}

func applyOverrides(s *config.Settings, f *cliFlags) {
	switch f.mode {
	case 1:
		s.MaxDepth = 1
	case 2:
		s.MaxDepth = 2
	}
	if f.maxDepth > 0 {
		s.MaxDepth = f.maxDepth
	}
	if f.maxPage > 0 {
		s.MaxPageNum = f.maxPage
	}
	if f.proxy != "" {
		s.Proxy = f.proxy
	}
	if f.follow {
		s.FollowRedirects = true
	}
	if f.debug {
		s.Debug = true
		s.LogLevel = "debug"
	}
	if s.Headers == nil {
		s.Headers = map[string]string{}
	}
	if f.userAgent != "" {
		s.Headers["User-Agent"] = f.userAgent
	}
	if f.cookie != "" {
		s.Headers["Cookie"] = f.cookie
	}
}

func collectSeeds(f *cliFlags) ([]string, error) {
	var seeds []string
	if f.url != "" {
		seeds = append(seeds, f.url)
	}
	if f.urlFile != "" {
		raw, err := os.ReadFile(f.urlFile)
		if err != nil {
			return nil, &crawl.ConfigError{Msg: fmt.Sprintf("reading %q: %v", f.urlFile, err)}
		}
		for _, line := range strings.Split(string(raw), "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				seeds = append(seeds, line)
			}
		}
	}
	return seeds, nil
}

func buildFilter(f *cliFlags) urlfilter.Filter {
	var chain []urlfilter.Filter
	if f.allow != "" {
		chain = append(chain, urlfilter.NewAllowList(strings.Split(f.allow, ",")))
	}
	if f.deny != "" {
		chain = append(chain, urlfilter.NewDenyList(strings.Split(f.deny, ",")))
	}
	return urlfilter.NewChain(chain...)
}

func writeCrawlReport(f *cliFlags, state *crawl.State, ranges []output.Range) error {
	out, path, err := openReportOutput(f.outFile, "crawler.log")
	if err != nil {
		return err
	}
	defer out.Close()

	if strings.HasSuffix(strings.ToLower(path), ".csv") {
		return output.WriteCSV(out, output.BuildRows(state, ranges))
	}
	return output.New(f.hideRegex, f.detail).WriteReport(out, state, ranges)
}

func runLocalScan(f *cliFlags, settings *config.Settings) error {
	matcher, err := secrets.NewWithDetectedBackend(settings.LoadedRules())
	if err != nil {
		return &crawl.ConfigError{Msg: err.Error()}
	}
	result, err := localscan.New(matcher).Scan(f.localPath)
	if err != nil {
		return err
	}

	out, _, err := openReportOutput(f.outFile, "scanner.log")
	if err != nil {
		return err
	}
	defer out.Close()

	for _, path := range sortedKeys(result.Secrets) {
		fmt.Fprintf(out, "%s:\n", path)
		if f.hideRegex {
			continue
		}
		for _, s := range result.Secrets[path] {
			fmt.Fprintf(out, "\t%s: %s\n", s.Type, s.Data)
		}
	}
	return nil
}

func sortedKeys(m map[string][]secrets.Secret) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

func openReportOutput(outFile, defaultName string) (*os.File, string, error) {
	path := outFile
	if path == "" {
		exe, err := os.Executable()
		if err == nil {
			path = filepath.Join(filepath.Dir(exe), defaultName)
		} else {
			path = defaultName
		}
	}
	fh, err := os.Create(path)
	if err != nil {
		return nil, "", &crawl.ConfigError{Msg: fmt.Sprintf("creating %q: %v", path, err)}
	}
	return fh, path, nil
}
